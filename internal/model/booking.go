package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-event-booking/pkg/apperrors"
)

// BookingStatus is the booking lifecycle state.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks whether the target state is reachable from s.
// CANCELLED is terminal.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	transitions := map[BookingStatus][]BookingStatus{
		BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
		BookingStatusConfirmed: {BookingStatusCancelled},
		BookingStatusCancelled: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Booking references a session by id and carries the price per seat that was
// in effect when it was created. Later price tier changes never touch it.
type Booking struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	SessionID    uuid.UUID       `json:"session_id"`
	Seats        int             `json:"seats"`
	PricePerSeat decimal.Decimal `json:"price_per_seat"`
	Status       BookingStatus   `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	ConfirmedAt  *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
}

// NewBooking creates a PENDING booking with the quoted price snapshot.
func NewBooking(userID, sessionID uuid.UUID, seats int, pricePerSeat decimal.Decimal) *Booking {
	return &Booking{
		ID:           uuid.New(),
		UserID:       userID,
		SessionID:    sessionID,
		Seats:        seats,
		PricePerSeat: pricePerSeat,
		Status:       BookingStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
}

// Confirm moves a PENDING booking to CONFIRMED and stamps confirmed_at once.
func (b *Booking) Confirm() error {
	if b.Status != BookingStatusPending {
		return fmt.Errorf("can only confirm pending bookings: %w", apperrors.ErrInvalidStatusTransition)
	}
	now := time.Now().UTC()
	b.Status = BookingStatusConfirmed
	b.ConfirmedAt = &now
	return nil
}

// Cancel moves the booking to CANCELLED. Re-cancelling fails; cancelling a
// PENDING booking is allowed here, the orchestration layer gates that path on
// IsCancellable.
func (b *Booking) Cancel() error {
	if b.Status == BookingStatusCancelled {
		return fmt.Errorf("booking is already cancelled: %w", apperrors.ErrInvalidStatusTransition)
	}
	now := time.Now().UTC()
	b.Status = BookingStatusCancelled
	b.CancelledAt = &now
	return nil
}

// IsCancellable reports whether the service-level cancellation path applies:
// only CONFIRMED bookings may be cancelled there.
func (b *Booking) IsCancellable() bool {
	return b.Status == BookingStatusConfirmed
}

// CalculateTotalPrice multiplies the immutable price snapshot by seat count.
func (b *Booking) CalculateTotalPrice() decimal.Decimal {
	return b.PricePerSeat.Mul(decimal.NewFromInt(int64(b.Seats)))
}

// Validate checks booking invariants, including that lifecycle timestamps
// match the status. Mismatches are reported, never repaired.
func (b *Booking) Validate() error {
	if b.Seats <= 0 {
		return apperrors.NewValidationError("seats", "number of seats must be positive")
	}
	if b.PricePerSeat.LessThanOrEqual(decimal.Zero) {
		return apperrors.NewValidationError("price_per_seat", "price per seat must be positive")
	}
	if b.Status == BookingStatusConfirmed && b.ConfirmedAt == nil {
		return apperrors.NewValidationError("confirmed_at", "confirmed bookings must have confirmation timestamp")
	}
	if b.Status == BookingStatusCancelled && b.CancelledAt == nil {
		return apperrors.NewValidationError("cancelled_at", "cancelled bookings must have cancellation timestamp")
	}
	return nil
}

// CreateBookingRequest is the JSON body for POST /bookings.
type CreateBookingRequest struct {
	UserID    uuid.UUID `json:"user_id" binding:"required"`
	SessionID uuid.UUID `json:"session_id" binding:"required"`
	Seats     int       `json:"seats" binding:"required,min=1"`
}

// BookingResponse includes the derived total alongside the stored fields.
type BookingResponse struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	SessionID    uuid.UUID       `json:"session_id"`
	Seats        int             `json:"seats"`
	PricePerSeat decimal.Decimal `json:"price_per_seat"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	Status       BookingStatus   `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	ConfirmedAt  *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
}

func (b *Booking) ToResponse() BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		SessionID:    b.SessionID,
		Seats:        b.Seats,
		PricePerSeat: b.PricePerSeat,
		TotalPrice:   b.CalculateTotalPrice(),
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
		ConfirmedAt:  b.ConfirmedAt,
		CancelledAt:  b.CancelledAt,
	}
}
