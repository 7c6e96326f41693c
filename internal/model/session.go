package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-event-booking/pkg/apperrors"
)

// Occupancy tiers for dynamic pricing, first match wins.
var (
	occupancyHigh = decimal.RequireFromString("0.8")
	occupancyMid  = decimal.RequireFromString("0.6")
	occupancyLow  = decimal.RequireFromString("0.2")

	factorHigh   = decimal.RequireFromString("1.5")
	factorMid    = decimal.RequireFromString("1.2")
	factorLow    = decimal.RequireFromString("0.8")
	factorNormal = decimal.RequireFromString("1.0")
)

// Session is a time-bounded seat pool owned by an Event. Seat counts change
// only through BookSeats/ReleaseSeats, which keep the hidden price adjustment
// factor in step with occupancy.
type Session struct {
	ID          uuid.UUID       `json:"id"`
	EventID     uuid.UUID       `json:"event_id"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	Capacity    int             `json:"capacity"`
	BookedSeats int             `json:"booked_seats"`
	BasePrice   decimal.Decimal `json:"base_price"`

	priceFactor decimal.Decimal
}

// NewSession creates a session with no seats booked yet.
func NewSession(eventID uuid.UUID, start, end time.Time, capacity int, basePrice decimal.Decimal) *Session {
	return RestoreSession(uuid.New(), eventID, start, end, capacity, 0, basePrice)
}

// RestoreSession rebuilds a session from persisted state. The price factor is
// a pure function of occupancy, so it is recomputed rather than stored.
func RestoreSession(id, eventID uuid.UUID, start, end time.Time, capacity, bookedSeats int, basePrice decimal.Decimal) *Session {
	s := &Session{
		ID:          id,
		EventID:     eventID,
		StartTime:   start,
		EndTime:     end,
		Capacity:    capacity,
		BookedSeats: bookedSeats,
		BasePrice:   basePrice,
	}
	s.adjustPriceFactor()
	return s
}

// IsAvailable reports whether any seats are left.
func (s *Session) IsAvailable() bool {
	return s.AvailableSeats() > 0
}

// AvailableSeats never goes negative even if stored state drifted.
func (s *Session) AvailableSeats() int {
	if s.Capacity < s.BookedSeats {
		return 0
	}
	return s.Capacity - s.BookedSeats
}

// OccupancyRate returns booked/capacity; zero capacity counts as empty.
func (s *Session) OccupancyRate() decimal.Decimal {
	if s.Capacity == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.BookedSeats)).Div(decimal.NewFromInt(int64(s.Capacity)))
}

// BookSeats books numSeats seats. A non-positive count is a validation error;
// asking for more than the available seats returns false and leaves the
// session untouched. Callers must check the boolean.
func (s *Session) BookSeats(numSeats int) (bool, error) {
	if numSeats <= 0 {
		return false, apperrors.NewValidationError("seats", "number of seats must be positive")
	}
	if numSeats > s.AvailableSeats() {
		return false, nil
	}
	s.BookedSeats += numSeats
	s.adjustPriceFactor()
	return true, nil
}

// ReleaseSeats frees previously booked seats. Releasing more than are booked
// returns false.
func (s *Session) ReleaseSeats(numSeats int) (bool, error) {
	if numSeats <= 0 {
		return false, apperrors.NewValidationError("seats", "number of seats must be positive")
	}
	if numSeats > s.BookedSeats {
		return false, nil
	}
	s.BookedSeats -= numSeats
	s.adjustPriceFactor()
	return true, nil
}

// GetCurrentPrice returns the price in effect right now. It reflects the
// occupancy after the latest seat mutation, not a cached value.
func (s *Session) GetCurrentPrice() decimal.Decimal {
	return s.BasePrice.Mul(s.priceFactor)
}

func (s *Session) adjustPriceFactor() {
	rate := s.OccupancyRate()
	switch {
	case rate.GreaterThanOrEqual(occupancyHigh):
		s.priceFactor = factorHigh
	case rate.GreaterThanOrEqual(occupancyMid):
		s.priceFactor = factorMid
	case rate.LessThanOrEqual(occupancyLow):
		s.priceFactor = factorLow
	default:
		s.priceFactor = factorNormal
	}
}

// Validate checks session invariants and names the violated field.
func (s *Session) Validate() error {
	if !s.StartTime.Before(s.EndTime) {
		return apperrors.NewValidationError("end_time", "end time must be after start time")
	}
	if s.Capacity <= 0 {
		return apperrors.NewValidationError("capacity", "capacity must be positive")
	}
	if s.BasePrice.LessThanOrEqual(decimal.Zero) {
		return apperrors.NewValidationError("base_price", "base price must be positive")
	}
	if s.BookedSeats < 0 {
		return apperrors.NewValidationError("booked_seats", "booked seats cannot be negative")
	}
	if s.BookedSeats > s.Capacity {
		return apperrors.NewValidationError("booked_seats", "booked seats cannot exceed capacity")
	}
	return nil
}

// SessionResponse is the outward-facing shape of a session, including the
// derived availability and the price currently in effect.
type SessionResponse struct {
	ID             uuid.UUID       `json:"id"`
	EventID        uuid.UUID       `json:"event_id"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        time.Time       `json:"end_time"`
	Capacity       int             `json:"capacity"`
	BookedSeats    int             `json:"booked_seats"`
	AvailableSeats int             `json:"available_seats"`
	BasePrice      decimal.Decimal `json:"base_price"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
}

// SessionPriceResponse is the quote fast-path payload.
type SessionPriceResponse struct {
	SessionID      uuid.UUID       `json:"session_id"`
	AvailableSeats int             `json:"available_seats"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
}

func (s *Session) ToPriceResponse() SessionPriceResponse {
	return SessionPriceResponse{
		SessionID:      s.ID,
		AvailableSeats: s.AvailableSeats(),
		CurrentPrice:   s.GetCurrentPrice(),
	}
}

func (s *Session) ToResponse() SessionResponse {
	return SessionResponse{
		ID:             s.ID,
		EventID:        s.EventID,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		Capacity:       s.Capacity,
		BookedSeats:    s.BookedSeats,
		AvailableSeats: s.AvailableSeats(),
		BasePrice:      s.BasePrice,
		CurrentPrice:   s.GetCurrentPrice(),
	}
}
