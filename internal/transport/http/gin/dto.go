package httpgin

import (
	"time"

	"github.com/kirinyoku/busgo/internal/domain"
	"github.com/kirinyoku/busgo/internal/service/trips"
)

type SeatRequest struct {
	SeatNumber string  `json:"seat_number" binding:"required"`
	SeatType   string  `json:"seat_type" binding:"required,oneof=window aisle"`
	Price      float64 `json:"price" binding:"required,gt=0"`
}

type CreateTripRequest struct {
	BusNumber     string        `json:"bus_number" binding:"required,min=3,max=20"`
	BusName       string        `json:"bus_name" binding:"required,min=2,max=50"`
	BusType       string        `json:"bus_type" binding:"required,oneof=ac non_ac sleeper semi_sleeper"`
	Source        string        `json:"source" binding:"required,min=2,max=50"`
	Destination   string        `json:"destination" binding:"required,min=2,max=50"`
	DepartureTime time.Time     `json:"departure_time" binding:"required"`
	ArrivalTime   time.Time     `json:"arrival_time" binding:"required"`
	TotalSeats    int           `json:"total_seats" binding:"required,gt=0,lte=100"`
	Seats         []SeatRequest `json:"seats" binding:"omitempty,dive"`
}

func (r CreateTripRequest) toInput() trips.CreateInput {
	in := trips.CreateInput{
		BusNumber:     r.BusNumber,
		BusName:       r.BusName,
		BusType:       domain.BusType(r.BusType),
		Source:        r.Source,
		Destination:   r.Destination,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
		TotalSeats:    r.TotalSeats,
	}
	for _, s := range r.Seats {
		in.Seats = append(in.Seats, trips.SeatInput{
			Number: s.SeatNumber,
			Class:  domain.SeatClass(s.SeatType),
			Price:  s.Price,
		})
	}
	return in
}

type UpdateTripRequest struct {
	BusName       *string    `json:"bus_name" binding:"omitempty,min=2,max=50"`
	BusType       *string    `json:"bus_type" binding:"omitempty,oneof=ac non_ac sleeper semi_sleeper"`
	Source        *string    `json:"source" binding:"omitempty,min=2,max=50"`
	Destination   *string    `json:"destination" binding:"omitempty,min=2,max=50"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
}

func (r UpdateTripRequest) toPatch() domain.TripPatch {
	p := domain.TripPatch{
		BusName:       r.BusName,
		Source:        r.Source,
		Destination:   r.Destination,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
	}
	if r.BusType != nil {
		bt := domain.BusType(*r.BusType)
		p.BusType = &bt
	}
	return p
}

type SearchTripsQuery struct {
	Source      string `form:"source" binding:"required"`
	Destination string `form:"destination" binding:"required"`
	TravelDate  string `form:"travel_date" binding:"required"`
}

type BookTicketsRequest struct {
	SeatNumbers    []string `json:"seat_numbers" binding:"required,min=1,dive,required"`
	PassengerName  string   `json:"passenger_name" binding:"required,min=2,max=50"`
	PassengerEmail string   `json:"passenger_email" binding:"required,email"`
	PassengerPhone string   `json:"passenger_phone" binding:"required,min=10,max=15"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreateTripResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type SeatView struct {
	SeatNumber     string  `json:"seat_number"`
	SeatType       string  `json:"seat_type"`
	Price          float64 `json:"price"`
	Status         string  `json:"status"`
	PassengerName  *string `json:"passenger_name"`
	PassengerEmail *string `json:"passenger_email"`
}

type TripView struct {
	ID             string     `json:"id"`
	BusNumber      string     `json:"bus_number"`
	BusName        string     `json:"bus_name"`
	BusType        string     `json:"bus_type"`
	Source         string     `json:"source"`
	Destination    string     `json:"destination"`
	DepartureTime  time.Time  `json:"departure_time"`
	ArrivalTime    time.Time  `json:"arrival_time"`
	TotalSeats     int        `json:"total_seats"`
	AvailableSeats int        `json:"available_seats"`
	BookedSeats    int        `json:"booked_seats"`
	Seats          []SeatView `json:"seats"`
	CreatedAt      time.Time  `json:"created_at"`
}

type BookingView struct {
	BookingID      string    `json:"booking_id"`
	TripID         string    `json:"trip_id"`
	BusNumber      string    `json:"bus_number"`
	Source         string    `json:"source"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	SeatNumbers    []string  `json:"seat_numbers"`
	PassengerName  string    `json:"passenger_name"`
	PassengerEmail string    `json:"passenger_email"`
	PassengerPhone string    `json:"passenger_phone"`
	TotalAmount    float64   `json:"total_amount"`
	BookingStatus  string    `json:"booking_status"`
	BookedAt       time.Time `json:"booked_at"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type RootResponse struct {
	Message        string `json:"message"`
	Docs           string `json:"docs"`
	Version        string `json:"version"`
	DatabaseStatus string `json:"database_status"`
}

func toTripView(t *domain.Trip) TripView {
	v := TripView{
		ID:             t.ID.String(),
		BusNumber:      t.BusNumber,
		BusName:        t.BusName,
		BusType:        string(t.BusType),
		Source:         t.Source,
		Destination:    t.Destination,
		DepartureTime:  t.DepartureTime,
		ArrivalTime:    t.ArrivalTime,
		TotalSeats:     t.TotalSeats,
		AvailableSeats: t.AvailableSeats,
		BookedSeats:    t.BookedSeats,
		Seats:          make([]SeatView, 0, len(t.Seats)),
		CreatedAt:      t.CreatedAt,
	}
	for _, s := range t.Seats {
		v.Seats = append(v.Seats, SeatView{
			SeatNumber:     s.Number,
			SeatType:       string(s.Class),
			Price:          s.Price,
			Status:         string(s.Status),
			PassengerName:  optional(s.PassengerName),
			PassengerEmail: optional(s.PassengerEmail),
		})
	}
	return v
}

func toTripViews(in []domain.Trip) []TripView {
	out := make([]TripView, 0, len(in))
	for i := range in {
		out = append(out, toTripView(&in[i]))
	}
	return out
}

func toBookingView(b *domain.Booking) BookingView {
	return BookingView{
		BookingID:      b.ID.String(),
		TripID:         b.TripID.String(),
		BusNumber:      b.BusNumber,
		Source:         b.Source,
		Destination:    b.Destination,
		DepartureTime:  b.DepartureTime,
		SeatNumbers:    b.SeatNumbers,
		PassengerName:  b.PassengerName,
		PassengerEmail: b.PassengerEmail,
		PassengerPhone: b.PassengerPhone,
		TotalAmount:    b.TotalAmount,
		BookingStatus:  string(b.Status),
		BookedAt:       b.BookedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
