package domain

import "strconv"

// UnitSeatPrice is the fixed price of every generated seat.
const UnitSeatPrice = 500.0

const seatsPerRow = 4

var columnClasses = [seatsPerRow]SeatClass{SeatWindow, SeatAisle, SeatAisle, SeatWindow}

// GenerateSeats builds the initial seat map for a bus with total seats.
// Rows are lettered from 'A' with four seats each. When total is not a
// multiple of four the last row is short, so the result always holds
// exactly total seats.
func GenerateSeats(total int) []Seat {
	if total <= 0 {
		return []Seat{}
	}

	seats := make([]Seat, 0, total)
	for i := 0; i < total; i++ {
		row := i / seatsPerRow
		col := i % seatsPerRow
		seats = append(seats, Seat{
			Number: SeatNumber(row, col+1),
			Class:  columnClasses[col],
			Price:  UnitSeatPrice,
			Status: SeatAvailable,
		})
	}

	return seats
}

// SeatNumber formats a zero-based row and one-based column as "<letter><column>".
func SeatNumber(row, col int) string {
	return string(rune('A'+row)) + strconv.Itoa(col)
}
