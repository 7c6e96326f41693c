package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"go-event-booking/internal/model"
	"go-event-booking/internal/repository"
	"go-event-booking/pkg/apperrors"
)

type BookingRepository struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*model.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		bookings: make(map[uuid.UUID]*model.Booking),
	}
}

var _ repository.BookingRepository = (*BookingRepository)(nil)

func (r *BookingRepository) Save(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookings[booking.ID] = cloneBooking(booking)
	return cloneBooking(booking), nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	return cloneBooking(booking), nil
}

// FindByIDForUpdate relies on the TxManager mutex for isolation.
func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *BookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.UserID == userID })
}

func (r *BookingRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.SessionID == sessionID })
}

func (r *BookingRepository) FindByStatus(ctx context.Context, status model.BookingStatus) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.Status == status })
}

func (r *BookingRepository) FindActiveBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool {
		return b.SessionID == sessionID && b.Status != model.BookingStatusCancelled
	})
}

func (r *BookingRepository) Update(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[booking.ID]; !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	r.bookings[booking.ID] = cloneBooking(booking)
	return cloneBooking(booking), nil
}

func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return false, nil
	}
	delete(r.bookings, id)
	return true, nil
}

func (r *BookingRepository) filter(keep func(*model.Booking) bool) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookings := make([]*model.Booking, 0)
	for _, b := range r.bookings {
		if keep(b) {
			bookings = append(bookings, cloneBooking(b))
		}
	}
	return bookings, nil
}

// snapshot deep-copies the store state and returns a closure restoring it.
func (r *BookingRepository) snapshot() func() {
	r.mu.RLock()
	bookings := make(map[uuid.UUID]*model.Booking, len(r.bookings))
	for id, booking := range r.bookings {
		bookings[id] = cloneBooking(booking)
	}
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		r.bookings = bookings
		r.mu.Unlock()
	}
}

func cloneBooking(booking *model.Booking) *model.Booking {
	clone := *booking
	if booking.ConfirmedAt != nil {
		t := *booking.ConfirmedAt
		clone.ConfirmedAt = &t
	}
	if booking.CancelledAt != nil {
		t := *booking.CancelledAt
		clone.CancelledAt = &t
	}
	return &clone
}
