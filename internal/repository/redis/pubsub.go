package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TripsPubSub fans trip changes out to every service instance so each can
// drop its cached copy.
type TripsPubSub struct {
	rdb     *redis.Client
	channel string
	now     func() time.Time
}

func NewTripsPubSub(rdb *redis.Client) *TripsPubSub {
	return &TripsPubSub{
		rdb:     rdb,
		channel: ChannelTripsChanged(),
		now:     time.Now,
	}
}

type tripChangedMsg struct {
	Type   string    `json:"type"`
	TripID uuid.UUID `json:"trip_id"`
	TsUnix int64     `json:"ts_unix"`
}

func (p *TripsPubSub) PublishTripChanged(ctx context.Context, tripID uuid.UUID) error {
	if p == nil {
		return nil
	}

	msg := tripChangedMsg{
		Type:   "trip_changed",
		TripID: tripID,
		TsUnix: p.now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe calls handler for every trip change until ctx is done.
func (p *TripsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, tripID uuid.UUID)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			handleMessage(ctx, m.Payload, handler)
		}
	}
}

func handleMessage(ctx context.Context, payload string, handler func(ctx context.Context, tripID uuid.UUID)) {
	var ev tripChangedMsg
	if err := json.Unmarshal([]byte(payload), &ev); err == nil &&
		ev.TripID != uuid.Nil {
		handler(ctx, ev.TripID)
	}
}
