package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-event-booking/internal/model"
	"go-event-booking/pkg/apperrors"
)

func TestBookingRepositoryRoundTrip(t *testing.T) {
	r := NewBookingRepository()
	ctx := context.Background()

	booking := model.NewBooking(uuid.New(), uuid.New(), 2, decimal.RequireFromString("80"))
	_, err := r.Save(ctx, booking)
	require.NoError(t, err)

	loaded, err := r.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, loaded.ID)
	assert.True(t, loaded.PricePerSeat.Equal(booking.PricePerSeat))

	// Mutating the loaded copy does not leak into the store.
	require.NoError(t, loaded.Confirm())
	fresh, err := r.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, fresh.Status)

	_, err = r.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
}

func TestBookingRepositoryFinders(t *testing.T) {
	r := NewBookingRepository()
	ctx := context.Background()
	sessionID := uuid.New()

	pending := model.NewBooking(uuid.New(), sessionID, 1, decimal.RequireFromString("80"))
	confirmed := model.NewBooking(uuid.New(), sessionID, 1, decimal.RequireFromString("80"))
	require.NoError(t, confirmed.Confirm())
	cancelled := model.NewBooking(uuid.New(), sessionID, 1, decimal.RequireFromString("80"))
	require.NoError(t, cancelled.Cancel())
	other := model.NewBooking(uuid.New(), uuid.New(), 1, decimal.RequireFromString("80"))

	for _, b := range []*model.Booking{pending, confirmed, cancelled, other} {
		_, err := r.Save(ctx, b)
		require.NoError(t, err)
	}

	bySession, err := r.FindBySessionID(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, bySession, 3)

	// Active excludes the cancelled one.
	active, err := r.FindActiveBySessionID(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	confirmedOnly, err := r.FindByStatus(ctx, model.BookingStatusConfirmed)
	require.NoError(t, err)
	require.Len(t, confirmedOnly, 1)
	assert.Equal(t, confirmed.ID, confirmedOnly[0].ID)

	byUser, err := r.FindByUserID(ctx, other.UserID)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, other.ID, byUser[0].ID)
}

func TestBookingRepositoryUpdateAndDelete(t *testing.T) {
	r := NewBookingRepository()
	ctx := context.Background()

	booking := model.NewBooking(uuid.New(), uuid.New(), 2, decimal.RequireFromString("80"))
	_, err := r.Update(ctx, booking)
	assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)

	_, err = r.Save(ctx, booking)
	require.NoError(t, err)
	require.NoError(t, booking.Confirm())
	updated, err := r.Update(ctx, booking)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, updated.Status)

	deleted, err := r.Delete(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = r.Delete(ctx, booking.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
