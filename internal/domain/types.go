package domain

import (
	"time"

	"github.com/google/uuid"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatBooked    SeatStatus = "booked"
	SeatReserved  SeatStatus = "reserved"
)

type SeatClass string

const (
	SeatWindow SeatClass = "window"
	SeatAisle  SeatClass = "aisle"
)

type BusType string

const (
	BusAC          BusType = "ac"
	BusNonAC       BusType = "non_ac"
	BusSleeper     BusType = "sleeper"
	BusSemiSleeper BusType = "semi_sleeper"
)

func (t BusType) Valid() bool {
	switch t {
	case BusAC, BusNonAC, BusSleeper, BusSemiSleeper:
		return true
	}
	return false
}

type BookingStatus string

const BookingConfirmed BookingStatus = "confirmed"

// Seat is one bookable unit of a trip. PassengerName and PassengerEmail are
// set only while Status is SeatBooked.
type Seat struct {
	Number         string     `json:"seat_number"`
	Class          SeatClass  `json:"seat_type"`
	Price          float64    `json:"price"`
	Status         SeatStatus `json:"status"`
	PassengerName  string     `json:"passenger_name,omitempty"`
	PassengerEmail string     `json:"passenger_email,omitempty"`
}

type Trip struct {
	ID             uuid.UUID `json:"id"`
	BusNumber      string    `json:"bus_number"`
	BusName        string    `json:"bus_name"`
	BusType        BusType   `json:"bus_type"`
	Source         string    `json:"source"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	BookedSeats    int       `json:"booked_seats"`
	Seats          []Seat    `json:"seats"`
	CreatedAt      time.Time `json:"created_at"`
}

// Seat returns the seat with the given number.
func (t *Trip) Seat(number string) (Seat, bool) {
	for _, s := range t.Seats {
		if s.Number == number {
			return s, true
		}
	}
	return Seat{}, false
}

// Clone returns a deep copy of the trip.
func (t *Trip) Clone() *Trip {
	cp := *t
	cp.Seats = append([]Seat(nil), t.Seats...)
	return &cp
}

// TripPatch holds the trip fields an operator may change after creation.
// Nil fields are left untouched.
type TripPatch struct {
	BusName       *string
	BusType       *BusType
	Source        *string
	Destination   *string
	DepartureTime *time.Time
	ArrivalTime   *time.Time
}

func (p TripPatch) Empty() bool {
	return p.BusName == nil &&
		p.BusType == nil &&
		p.Source == nil &&
		p.Destination == nil &&
		p.DepartureTime == nil &&
		p.ArrivalTime == nil
}

// Apply writes the non-nil patch fields onto t.
func (p TripPatch) Apply(t *Trip) {
	if p.BusName != nil {
		t.BusName = *p.BusName
	}
	if p.BusType != nil {
		t.BusType = *p.BusType
	}
	if p.Source != nil {
		t.Source = *p.Source
	}
	if p.Destination != nil {
		t.Destination = *p.Destination
	}
	if p.DepartureTime != nil {
		t.DepartureTime = *p.DepartureTime
	}
	if p.ArrivalTime != nil {
		t.ArrivalTime = *p.ArrivalTime
	}
}

type Passenger struct {
	Name  string
	Email string
}

type Booking struct {
	ID             uuid.UUID     `json:"booking_id"`
	TripID         uuid.UUID     `json:"trip_id"`
	BusNumber      string        `json:"bus_number"`
	Source         string        `json:"source"`
	Destination    string        `json:"destination"`
	DepartureTime  time.Time     `json:"departure_time"`
	SeatNumbers    []string      `json:"seat_numbers"`
	PassengerName  string        `json:"passenger_name"`
	PassengerEmail string        `json:"passenger_email"`
	PassengerPhone string        `json:"passenger_phone"`
	TotalAmount    float64       `json:"total_amount"`
	Status         BookingStatus `json:"booking_status"`
	BookedAt       time.Time     `json:"booked_at"`
}
