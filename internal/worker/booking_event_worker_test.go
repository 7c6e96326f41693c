package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-event-booking/internal/cache"
	"go-event-booking/internal/model"
	"go-event-booking/internal/queue"
	"go-event-booking/internal/repository/memory"
	"go-event-booking/pkg/apperrors"
)

type fakeInventory struct {
	mu      sync.Mutex
	entries map[uuid.UUID]cache.SessionInfo
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{entries: make(map[uuid.UUID]cache.SessionInfo)}
}

func (f *fakeInventory) WarmUp(ctx context.Context, session *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[session.ID] = cache.SessionInfo{
		AvailableSeats: session.AvailableSeats(),
		CurrentPrice:   session.GetCurrentPrice(),
	}
	return nil
}

func (f *fakeInventory) Get(ctx context.Context, sessionID uuid.UUID) (cache.SessionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.entries[sessionID]
	if !ok {
		return cache.SessionInfo{}, apperrors.ErrSessionNotFound
	}
	return info, nil
}

func (f *fakeInventory) Refresh(ctx context.Context, session *model.Session) error {
	return f.WarmUp(ctx, session)
}

func (f *fakeInventory) Invalidate(ctx context.Context, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, sessionID)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorkerRefreshesInventoryOnBookingEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := memory.NewEventRepository()
	inventory := newFakeInventory()
	q := queue.NewBookingQueue(10)

	event := model.NewEvent("Go Conference", "", "City Hall", []string{"tech"})
	start := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)
	session := model.NewSession(event.ID, start, start.Add(2*time.Hour), 10, decimal.RequireFromString("100"))
	ok, err := session.BookSeats(6)
	require.NoError(t, err)
	require.True(t, ok)
	event.AddSession(session)
	_, err = events.Save(ctx, event)
	require.NoError(t, err)

	w := NewBookingEventWorker(events, inventory, q)
	require.NoError(t, w.Start(ctx))

	require.NoError(t, q.PublishBookingEvent(ctx, &queue.BookingEvent{
		Type:       queue.BookingCreated,
		BookingID:  uuid.New(),
		SessionID:  session.ID,
		OccurredAt: time.Now().UTC(),
	}))

	waitFor(t, func() bool {
		_, err := inventory.Get(ctx, session.ID)
		return err == nil
	})

	info, err := inventory.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, info.AvailableSeats)
	// 6/10 occupancy is the mid tier.
	assert.True(t, info.CurrentPrice.Equal(decimal.RequireFromString("120")))
}

func TestWorkerInvalidatesOnUnknownSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := memory.NewEventRepository()
	inventory := newFakeInventory()
	q := queue.NewBookingQueue(10)

	// A stale snapshot for a session that no longer exists.
	staleID := uuid.New()
	stale := model.RestoreSession(staleID, uuid.New(),
		time.Now(), time.Now().Add(time.Hour), 10, 0, decimal.RequireFromString("10"))
	require.NoError(t, inventory.WarmUp(ctx, stale))

	w := NewBookingEventWorker(events, inventory, q)
	require.NoError(t, w.Start(ctx))

	require.NoError(t, q.PublishBookingEvent(ctx, &queue.BookingEvent{
		Type:       queue.BookingCancelled,
		BookingID:  uuid.New(),
		SessionID:  staleID,
		OccurredAt: time.Now().UTC(),
	}))

	waitFor(t, func() bool {
		_, err := inventory.Get(ctx, staleID)
		return err != nil
	})
}
