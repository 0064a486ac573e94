package redis

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "busgo:v1"

func KeyTrip(tripID uuid.UUID) string {
	return fmt.Sprintf("%s:trip:%s", ns, tripID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func KeyIdemBooking(tripID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:idem:bookings:%s:%s", ns, tripID, idemKey)
}

func ChannelTripsChanged() string {
	return ns + ":trips:changed"
}
