package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS trips (
		id              UUID PRIMARY KEY,
		bus_number      TEXT NOT NULL,
		bus_name        TEXT NOT NULL,
		bus_type        TEXT NOT NULL,
		source          TEXT NOT NULL,
		destination     TEXT NOT NULL,
		departure_time  TIMESTAMPTZ NOT NULL,
		arrival_time    TIMESTAMPTZ NOT NULL,
		total_seats     INT NOT NULL CHECK (total_seats > 0),
		available_seats INT NOT NULL CHECK (available_seats >= 0),
		booked_seats    INT NOT NULL CHECK (booked_seats >= 0),
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (available_seats + booked_seats = total_seats)
	)`,
	`CREATE INDEX IF NOT EXISTS trips_route_departure_idx
		ON trips (lower(source), lower(destination), departure_time)`,
	`CREATE TABLE IF NOT EXISTS trip_seats (
		trip_id         UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		seat_number     TEXT NOT NULL,
		position        INT NOT NULL,
		seat_type       TEXT NOT NULL,
		price           DOUBLE PRECISION NOT NULL CHECK (price > 0),
		status          TEXT NOT NULL DEFAULT 'available',
		passenger_name  TEXT,
		passenger_email TEXT,
		PRIMARY KEY (trip_id, seat_number),
		CHECK ((status = 'booked') = (passenger_name IS NOT NULL AND passenger_email IS NOT NULL))
	)`,
}

// EnsureSchema creates the trip tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const op = "postgres.Store.EnsureSchema"

	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
	}

	return nil
}
