package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/busgo/internal/domain"
	"github.com/kirinyoku/busgo/internal/repository"
)

const tripColumns = `id, bus_number, bus_name, bus_type, source, destination,
	departure_time, arrival_time, total_seats, available_seats, booked_seats, created_at`

// snapshotRead makes the trip row and its seats come from one snapshot.
var snapshotRead = &pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

type TripRepo struct {
	store *Store
}

func (r *TripRepo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// Create inserts a trip together with its seat map.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - trip: trip to persist; a nil ID is replaced with a fresh one.
//
// Returns:
//   - uuid.UUID: the trip ID when successful.
//   - error: repository.ErrConflict if a trip with the same ID exists.
func (r *TripRepo) Create(ctx context.Context, trip *domain.Trip) (uuid.UUID, error) {
	const op = "postgres.TripRepo.Create"

	id := trip.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	err := r.store.RunTx(ctx, &pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	}, func(ctx context.Context, tx DB) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO trips(`+tripColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			id, trip.BusNumber, trip.BusName, string(trip.BusType),
			trip.Source, trip.Destination, trip.DepartureTime, trip.ArrivalTime,
			trip.TotalSeats, trip.AvailableSeats, trip.BookedSeats, trip.CreatedAt,
		); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, s := range trip.Seats {
			batch.Queue(
				`INSERT INTO trip_seats(trip_id, seat_number, position, seat_type, price,
				 	status, passenger_name, passenger_email)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				id, s.Number, i, string(s.Class), s.Price,
				string(s.Status), nullable(s.PassengerName), nullable(s.PassengerEmail),
			)
		}

		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return id, nil
}

// Get retrieves a trip with its seats by ID.
//
// Returns:
//   - *domain.Trip: the trip when found.
//   - error: repository.ErrNotFound if the trip is not found.
func (r *TripRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	const op = "postgres.TripRepo.Get"

	var trip *domain.Trip

	err := r.store.RunTx(ctx, snapshotRead, func(ctx context.Context, tx DB) error {
		t, err := scanTrip(tx.QueryRow(ctx,
			`SELECT `+tripColumns+` FROM trips WHERE id = $1`,
			id,
		))
		if err != nil {
			return err
		}

		seats, err := loadSeats(ctx, tx, []uuid.UUID{t.ID})
		if err != nil {
			return err
		}

		t.Seats = seats[t.ID]
		trip = t

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return trip, nil
}

// List lists all trips ordered by departure time.
func (r *TripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const op = "postgres.TripRepo.List"

	trips, err := r.queryTrips(ctx,
		`SELECT `+tripColumns+` FROM trips ORDER BY departure_time, created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return trips, nil
}

// FindByRouteAndDate lists trips whose source and destination equal the given
// ones ignoring case and whose departure lies in [from, to).
func (r *TripRepo) FindByRouteAndDate(
	ctx context.Context,
	source, destination string,
	from, to time.Time,
) ([]domain.Trip, error) {
	const op = "postgres.TripRepo.FindByRouteAndDate"

	trips, err := r.queryTrips(ctx,
		`SELECT `+tripColumns+`
		 FROM trips
		 WHERE lower(source) = lower($1)
		 	AND lower(destination) = lower($2)
		 	AND departure_time >= $3
		 	AND departure_time < $4
		 ORDER BY departure_time`,
		source, destination, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return trips, nil
}

// UpdateFields applies a partial update to the trip's descriptive fields.
//
// Returns:
//   - error: repository.ErrNotFound if the trip is not found.
func (r *TripRepo) UpdateFields(ctx context.Context, id uuid.UUID, patch domain.TripPatch) error {
	const op = "postgres.TripRepo.UpdateFields"

	var busType *string
	if patch.BusType != nil {
		s := string(*patch.BusType)
		busType = &s
	}

	tag, err := r.store.pool.Exec(ctx,
		`UPDATE trips
		 SET bus_name = COALESCE($2::text, bus_name),
		 	bus_type = COALESCE($3::text, bus_type),
		 	source = COALESCE($4::text, source),
		 	destination = COALESCE($5::text, destination),
		 	departure_time = COALESCE($6::timestamptz, departure_time),
		 	arrival_time = COALESCE($7::timestamptz, arrival_time)
		 WHERE id = $1`,
		id, patch.BusName, busType, patch.Source, patch.Destination,
		patch.DepartureTime, patch.ArrivalTime,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

// Delete removes a trip and its seats.
//
// Returns:
//   - error: repository.ErrNotFound if the trip is not found.
func (r *TripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.TripRepo.Delete"

	tag, err := r.store.pool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

// BookSeats marks the given seats as booked for the passenger and moves the
// trip counters in one transaction. The update only applies to seats that are
// still available; when fewer rows match than requested the transaction is
// rolled back and nothing changes.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - id: trip ID.
//   - seatNumbers: distinct seat numbers to book.
//   - p: passenger to attach to every seat.
//
// Returns:
//   - error: repository.ErrNotFound if the trip is not found.
//   - error: repository.ErrSeatsUnavailable if any seat is no longer available.
func (r *TripRepo) BookSeats(
	ctx context.Context,
	id uuid.UUID,
	seatNumbers []string,
	p domain.Passenger,
) error {
	const op = "postgres.TripRepo.BookSeats"

	// Row locks on the seats serialize overlapping bookings; the counters are
	// moved relative to their current value so disjoint bookings both apply.
	err := r.store.RunTx(ctx, &pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	}, func(ctx context.Context, tx DB) error {
		return bookSeats(ctx, tx, id, seatNumbers, p)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return nil
}

func bookSeats(
	ctx context.Context,
	db DB,
	id uuid.UUID,
	seatNumbers []string,
	p domain.Passenger,
) error {
	// Lock the trip row first so every booking takes locks in the same order.
	var available int
	if err := db.QueryRow(ctx,
		`SELECT available_seats FROM trips WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&available); err != nil {
		return err
	}

	tag, err := db.Exec(ctx,
		`UPDATE trip_seats
		 SET status = 'booked', passenger_name = $3, passenger_email = $4
		 WHERE trip_id = $1
		 	AND seat_number = ANY($2)
		 	AND status = 'available'`,
		id, seatNumbers, p.Name, p.Email,
	)
	if err != nil {
		return err
	}

	if int(tag.RowsAffected()) != len(seatNumbers) {
		return repository.ErrSeatsUnavailable
	}

	if _, err := db.Exec(ctx,
		`UPDATE trips
		 SET available_seats = available_seats - $2,
		 	booked_seats = booked_seats + $2
		 WHERE id = $1`,
		id, len(seatNumbers),
	); err != nil {
		return err
	}

	return nil
}

func (r *TripRepo) queryTrips(ctx context.Context, sql string, args ...any) ([]domain.Trip, error) {
	out := []domain.Trip{}

	err := r.store.RunTx(ctx, snapshotRead, func(ctx context.Context, tx DB) error {
		trips, err := scanTrips(ctx, tx, sql, args...)
		if err != nil {
			return err
		}

		if len(trips) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(trips))
		for _, t := range trips {
			ids = append(ids, t.ID)
		}

		seats, err := loadSeats(ctx, tx, ids)
		if err != nil {
			return err
		}

		for i := range trips {
			trips[i].Seats = seats[trips[i].ID]
		}

		out = trips

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func scanTrips(ctx context.Context, db DB, sql string, args ...any) ([]domain.Trip, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *trip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var t domain.Trip
	var busType string

	if err := row.Scan(
		&t.ID,
		&t.BusNumber,
		&t.BusName,
		&busType,
		&t.Source,
		&t.Destination,
		&t.DepartureTime,
		&t.ArrivalTime,
		&t.TotalSeats,
		&t.AvailableSeats,
		&t.BookedSeats,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}

	t.BusType = domain.BusType(busType)

	return &t, nil
}

func loadSeats(ctx context.Context, db DB, tripIDs []uuid.UUID) (map[uuid.UUID][]domain.Seat, error) {
	rows, err := db.Query(ctx,
		`SELECT trip_id, seat_number, seat_type, price, status, passenger_name, passenger_email
		 FROM trip_seats
		 WHERE trip_id = ANY($1)
		 ORDER BY trip_id, position`,
		tripIDs,
	)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make(map[uuid.UUID][]domain.Seat, len(tripIDs))
	for rows.Next() {
		var tripID uuid.UUID
		var s domain.Seat
		var class, status string
		var name, email *string

		if err := rows.Scan(
			&tripID,
			&s.Number,
			&class,
			&s.Price,
			&status,
			&name,
			&email,
		); err != nil {
			return nil, err
		}

		s.Class = domain.SeatClass(class)
		s.Status = domain.SeatStatus(status)
		if name != nil {
			s.PassengerName = *name
		}
		if email != nil {
			s.PassengerEmail = *email
		}

		out[tripID] = append(out[tripID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
