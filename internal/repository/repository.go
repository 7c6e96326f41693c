package repository

import (
	"context"

	"github.com/google/uuid"

	"go-event-booking/internal/model"
)

// TxManager runs fn inside a single transaction scope: commit when fn returns
// nil, rollback otherwise. Repository calls made with the ctx passed to fn
// join that transaction. Nested WithinTx calls join the outer scope.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventRepository persists Event aggregates (event, categories and sessions
// as one consistent unit).
type EventRepository interface {
	Save(ctx context.Context, event *model.Event) (*model.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	// FindByIDForUpdate locks the event row until the surrounding transaction
	// ends. The event row is the single lock point for aggregate writes: every
	// path that mutates the event or its sessions takes it first, so bookings
	// and event edits serialize without deadlocking on session rows. Must be
	// called inside WithinTx.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Event, error)
	FindAll(ctx context.Context) ([]*model.Event, error)
	FindByCategory(ctx context.Context, category string) ([]*model.Event, error)
	// FindBySessionID resolves the event owning the given session.
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.Event, error)
	// FindBySessionIDForUpdate resolves the owning event and locks its row the
	// same way FindByIDForUpdate does. Must be called inside WithinTx.
	FindBySessionIDForUpdate(ctx context.Context, sessionID uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, event *model.Event) (*model.Event, error)
	// Delete reports whether an event was actually removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// BookingRepository persists bookings as standalone rows keyed by id.
type BookingRepository interface {
	Save(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// FindByIDForUpdate locks the booking row so that status transitions are
	// compare-and-set rather than last-write-wins. Must be called inside
	// WithinTx.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Booking, error)
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*model.Booking, error)
	FindByStatus(ctx context.Context, status model.BookingStatus) ([]*model.Booking, error)
	// FindActiveBySessionID returns the non-cancelled bookings of a session.
	FindActiveBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*model.Booking, error)
	Update(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
