package httpgin

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/busgo/internal/repository/memory"
	"github.com/kirinyoku/busgo/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.TripRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewTripRepo()
	svcs := service.NewServices(repo, nil, nil, nil, logger, service.Config{})

	return NewRouter(svcs, nil, logger), repo
}

func do(r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		buf = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTrip(t *testing.T, r http.Handler, source, destination, departure string) string {
	t.Helper()

	w := do(r, http.MethodPost, "/trips", map[string]any{
		"bus_number":     "BUS001",
		"bus_name":       "Express Travels",
		"bus_type":       "ac",
		"source":         source,
		"destination":    destination,
		"departure_time": departure,
		"arrival_time":   "2024-01-31T23:00:00Z",
		"total_seats":    40,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CreateTripResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Trip created successfully", resp.Message)

	return resp.ID
}

func bookBody(seats ...string) map[string]any {
	return map[string]any{
		"seat_numbers":    seats,
		"passenger_name":  "John Doe",
		"passenger_email": "john@example.com",
		"passenger_phone": "+1234567890",
	}
}

func TestBookTickets_Flow(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createTrip(t, r, "NYC", "Boston", "2024-01-15T09:00:00Z")

	w := do(r, http.MethodPost, "/trips/"+id+"/book", bookBody("A1", "A2"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var b BookingView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, id, b.TripID)
	assert.Equal(t, []string{"A1", "A2"}, b.SeatNumbers)
	assert.InDelta(t, 1000.0, b.TotalAmount, 0.001)
	assert.Equal(t, "confirmed", b.BookingStatus)
	_, err := uuid.Parse(b.BookingID)
	assert.NoError(t, err)

	w = do(r, http.MethodPost, "/trips/"+id+"/book", bookBody("A2", "A3"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "seat A2 is not available")

	w = do(r, http.MethodPost, "/trips/"+id+"/book", bookBody("A3", "Z9"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "seat Z9 not found")

	w = do(r, http.MethodGet, "/trips/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var trip TripView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trip))
	assert.Equal(t, 38, trip.AvailableSeats)
	assert.Equal(t, 2, trip.BookedSeats)
	require.NotNil(t, trip.Seats[0].PassengerName)
	assert.Equal(t, "John Doe", *trip.Seats[0].PassengerName)
	assert.Nil(t, trip.Seats[2].PassengerName)
	assert.Equal(t, "available", trip.Seats[2].Status)
}

func TestBookTickets_Validation(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createTrip(t, r, "NYC", "Boston", "2024-01-15T09:00:00Z")

	body := bookBody("A1")
	body["passenger_email"] = "not-an-email"
	w := do(r, http.MethodPost, "/trips/"+id+"/book", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/trips/"+id+"/book", bookBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/trips/"+uuid.NewString()+"/book", bookBody("A1"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/trips/not-a-uuid/book", bookBody("A1"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTrip_Validation(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/trips", map[string]any{
		"bus_number":     "B1",
		"bus_name":       "Express Travels",
		"bus_type":       "ac",
		"source":         "NYC",
		"destination":    "Boston",
		"departure_time": "2024-01-15T09:00:00Z",
		"arrival_time":   "2024-01-15T13:00:00Z",
		"total_seats":    40,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/trips", map[string]any{
		"bus_number":     "BUS001",
		"bus_name":       "Express Travels",
		"bus_type":       "ac",
		"source":         "NYC",
		"destination":    "Boston",
		"departure_time": "2024-01-15T09:00:00Z",
		"arrival_time":   "2024-01-15T08:00:00Z",
		"total_seats":    40,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "arrival must not precede departure")
}

func TestSearchTrips(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createTrip(t, r, "NYC", "Boston", "2024-01-15T09:00:00Z")
	createTrip(t, r, "NYC", "Boston", "2024-01-16T09:00:00Z")

	w := do(r, http.MethodGet, "/trips/search?source=nyc&destination=boston&travel_date=2024-01-15", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []TripView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)

	w = do(r, http.MethodGet, "/trips/search?source=NYC&destination=Boston&travel_date=15/01/2024", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(r, http.MethodGet, "/trips/search?source=NYC", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUpdateDeleteTrip(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createTrip(t, r, "NYC", "Boston", "2024-01-15T09:00:00Z")

	w := do(r, http.MethodGet, "/trips", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []TripView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = do(r, http.MethodPut, "/trips/"+id, map[string]any{"bus_name": "Night Liner"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPatch, "/trips/"+id, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/trips/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodDelete, "/trips/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTrip_ETag(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createTrip(t, r, "NYC", "Boston", "2024-01-15T09:00:00Z")

	w := do(r, http.MethodGet, "/trips/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)

	w = do(r, http.MethodGet, "/trips/"+id, nil, "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = do(r, http.MethodPost, "/trips/"+id+"/book", bookBody("A1"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodGet, "/trips/"+id, nil, "If-None-Match", tag)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth(t *testing.T) {
	r, repo := newTestRouter(t)

	w := do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"connected"}`, w.Body.String())

	w = do(r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database_status":"connected"`)

	repo.Close()

	w = do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "disconnected")

	w = do(r, http.MethodGet, "/trips", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEtagMatches(t *testing.T) {
	tag := `W/"abc"`
	assert.True(t, etagMatches(`W/"abc"`, tag))
	assert.True(t, etagMatches(`"x", W/"abc"`, tag))
	assert.True(t, etagMatches(`"abc"`, tag))
	assert.True(t, etagMatches(`*`, tag))
	assert.False(t, etagMatches(`"other"`, tag))
	assert.False(t, etagMatches(``, tag))
}
