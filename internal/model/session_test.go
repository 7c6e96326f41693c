package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-event-booking/pkg/apperrors"
)

func newTestSession(t *testing.T, capacity, booked int, basePrice string) *Session {
	t.Helper()
	start := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)
	return RestoreSession(
		uuid.New(), uuid.New(),
		start, start.Add(2*time.Hour),
		capacity, booked,
		decimal.RequireFromString(basePrice),
	)
}

func TestSessionCurrentPriceByOccupancy(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		booked   int
		want     string
	}{
		{"empty session discounted", 100, 0, "80"},
		{"low boundary inclusive", 100, 20, "80"},
		{"just above low is base price", 100, 21, "100"},
		{"below mid is base price", 100, 59, "100"},
		{"mid boundary inclusive", 100, 60, "120"},
		{"just below high stays mid", 100, 79, "120"},
		{"high boundary inclusive", 100, 80, "150"},
		{"full session", 100, 100, "150"},
		{"zero capacity counts as empty", 0, 0, "80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, tt.capacity, tt.booked, "100")
			want := decimal.RequireFromString(tt.want)
			assert.True(t, s.GetCurrentPrice().Equal(want),
				"want %s, got %s", want, s.GetCurrentPrice())
		})
	}
}

func TestSessionBookSeatsAdjustsPrice(t *testing.T) {
	s := newTestSession(t, 10, 0, "100")

	// 0/10 occupancy, discounted tier.
	assert.True(t, s.GetCurrentPrice().Equal(decimal.RequireFromString("80")))

	ok, err := s.BookSeats(8)
	require.NoError(t, err)
	require.True(t, ok)

	// 8/10 occupancy pushes into the surge tier immediately.
	assert.Equal(t, 8, s.BookedSeats)
	assert.Equal(t, 2, s.AvailableSeats())
	assert.True(t, s.GetCurrentPrice().Equal(decimal.RequireFromString("150")))

	ok, err = s.ReleaseSeats(5)
	require.NoError(t, err)
	require.True(t, ok)

	// Back to 3/10, base price.
	assert.True(t, s.GetCurrentPrice().Equal(decimal.RequireFromString("100")))
}

func TestSessionBookSeatsInsufficient(t *testing.T) {
	s := newTestSession(t, 10, 9, "100")

	ok, err := s.BookSeats(2)
	require.NoError(t, err)
	assert.False(t, ok)

	// Failed booking leaves the session untouched.
	assert.Equal(t, 9, s.BookedSeats)

	ok, err = s.BookSeats(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, s.IsAvailable())
}

func TestSessionBookSeatsNonPositive(t *testing.T) {
	s := newTestSession(t, 10, 0, "100")

	for _, n := range []int{0, -1} {
		ok, err := s.BookSeats(n)
		assert.False(t, ok)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
	assert.Equal(t, 0, s.BookedSeats)
}

func TestSessionReleaseMoreThanBooked(t *testing.T) {
	s := newTestSession(t, 10, 3, "100")

	ok, err := s.ReleaseSeats(4)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, s.BookedSeats)
}

func TestSessionAvailableSeatsClamped(t *testing.T) {
	// Drifted stored state: booked above capacity must not go negative.
	s := newTestSession(t, 5, 7, "100")
	assert.Equal(t, 0, s.AvailableSeats())
	assert.False(t, s.IsAvailable())
}

func TestSessionValidate(t *testing.T) {
	start := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	price := decimal.RequireFromString("50")

	tests := []struct {
		name   string
		mutate func(*Session)
		valid  bool
	}{
		{"valid", func(s *Session) {}, true},
		{"end before start", func(s *Session) { s.EndTime = start.Add(-time.Hour) }, false},
		{"end equals start", func(s *Session) { s.EndTime = start }, false},
		{"zero capacity", func(s *Session) { s.Capacity = 0 }, false},
		{"negative base price", func(s *Session) { s.BasePrice = decimal.RequireFromString("-1") }, false},
		{"zero base price", func(s *Session) { s.BasePrice = decimal.Zero }, false},
		{"negative booked seats", func(s *Session) { s.BookedSeats = -1 }, false},
		{"booked above capacity", func(s *Session) { s.BookedSeats = s.Capacity + 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(uuid.New(), start, end, 10, price)
			tt.mutate(s)
			err := s.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			}
		})
	}
}

func TestSessionToResponse(t *testing.T) {
	s := newTestSession(t, 10, 6, "100")

	resp := s.ToResponse()
	assert.Equal(t, s.ID, resp.ID)
	assert.Equal(t, 4, resp.AvailableSeats)
	assert.True(t, resp.CurrentPrice.Equal(decimal.RequireFromString("120")))

	price := s.ToPriceResponse()
	assert.Equal(t, s.ID, price.SessionID)
	assert.Equal(t, 4, price.AvailableSeats)
	assert.True(t, price.CurrentPrice.Equal(resp.CurrentPrice))
}
