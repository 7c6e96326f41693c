package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	ErrEventNotFound   = errors.New("event not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrBookingNotFound = errors.New("booking not found")

	ErrInsufficientSeats = errors.New("not enough seats available")

	ErrSessionOverlap     = errors.New("session overlaps with existing session")
	ErrSessionHasBookings = errors.New("session has existing bookings")
	ErrEventHasBookings   = errors.New("event has existing bookings")

	ErrBookingNotCancellable   = errors.New("booking cannot be cancelled")
	ErrInvalidStatusTransition = errors.New("invalid booking status transition")

	// ErrBookingFailed signals a seat mutation that failed after its
	// availability check already passed. The transaction boundary should make
	// this unreachable; treat it as retry-worthy at most once.
	ErrBookingFailed = errors.New("failed to book seats")

	ErrInternalServerError = errors.New("internal server error")
)

// ValidationError names the field that violated an entity invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets callers branch on ErrInvalidInput without knowing the field.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
