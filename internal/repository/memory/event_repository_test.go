package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-event-booking/internal/model"
	"go-event-booking/pkg/apperrors"
)

func newStoredEvent(t *testing.T, r *EventRepository) (*model.Event, *model.Session) {
	t.Helper()
	event := model.NewEvent("Go Conference", "", "City Hall", []string{"tech"})
	start := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)
	session := model.NewSession(event.ID, start, start.Add(2*time.Hour), 10, decimal.RequireFromString("100"))
	event.AddSession(session)

	_, err := r.Save(context.Background(), event)
	require.NoError(t, err)
	return event, session
}

func TestEventRepositoryIsolation(t *testing.T) {
	r := NewEventRepository()
	ctx := context.Background()
	event, session := newStoredEvent(t, r)

	// Mutating a loaded copy must not leak into the store.
	loaded, err := r.FindByID(ctx, event.ID)
	require.NoError(t, err)
	loaded.Name = "changed"
	ok, err := loaded.GetSession(session.ID).BookSeats(5)
	require.NoError(t, err)
	require.True(t, ok)

	fresh, err := r.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Conference", fresh.Name)
	assert.Equal(t, 0, fresh.GetSession(session.ID).BookedSeats)
}

func TestEventRepositoryClonePreservesPricing(t *testing.T) {
	r := NewEventRepository()
	ctx := context.Background()
	event, session := newStoredEvent(t, r)

	loaded, err := r.FindByID(ctx, event.ID)
	require.NoError(t, err)
	got := loaded.GetSession(session.ID)

	// The occupancy-derived price survives the round trip.
	assert.True(t, got.GetCurrentPrice().Equal(decimal.RequireFromString("80")),
		"got %s", got.GetCurrentPrice())
}

func TestEventRepositoryFindBySessionID(t *testing.T) {
	r := NewEventRepository()
	ctx := context.Background()
	event, session := newStoredEvent(t, r)

	found, err := r.FindBySessionID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, found.ID)

	_, err = r.FindBySessionID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestEventRepositoryUpdateMaintainsSessionIndex(t *testing.T) {
	r := NewEventRepository()
	ctx := context.Background()
	event, session := newStoredEvent(t, r)

	// Drop the session through an aggregate update; the index must follow.
	event.RemoveSession(session.ID)
	_, err := r.Update(ctx, event)
	require.NoError(t, err)

	_, err = r.FindBySessionID(ctx, session.ID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestEventRepositoryDelete(t *testing.T) {
	r := NewEventRepository()
	ctx := context.Background()
	event, session := newStoredEvent(t, r)

	deleted, err := r.Delete(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = r.FindByID(ctx, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	_, err = r.FindBySessionID(ctx, session.ID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	deleted, err = r.Delete(ctx, event.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
