package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"go-event-booking/internal/model"
	"go-event-booking/internal/repository"
	"go-event-booking/pkg/apperrors"
)

// EventRepository is an arena-style map store. Aggregates are deep-copied on
// the way in and out so callers never share state with the store.
type EventRepository struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*model.Event
	// session id -> owning event id index
	sessions map[uuid.UUID]uuid.UUID
}

func NewEventRepository() *EventRepository {
	return &EventRepository{
		events:   make(map[uuid.UUID]*model.Event),
		sessions: make(map[uuid.UUID]uuid.UUID),
	}
}

var _ repository.EventRepository = (*EventRepository)(nil)

func (r *EventRepository) Save(ctx context.Context, event *model.Event) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store(event)
	return cloneEvent(event), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return cloneEvent(event), nil
}

func (r *EventRepository) FindAll(ctx context.Context) ([]*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*model.Event, 0, len(r.events))
	for _, event := range r.events {
		events = append(events, cloneEvent(event))
	}
	return events, nil
}

func (r *EventRepository) FindByCategory(ctx context.Context, category string) ([]*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*model.Event, 0)
	for _, event := range r.events {
		for _, c := range event.Categories {
			if c == category {
				events = append(events, cloneEvent(event))
				break
			}
		}
	}
	return events, nil
}

func (r *EventRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	eventID, ok := r.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	event, ok := r.events[eventID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return cloneEvent(event), nil
}

// FindByIDForUpdate relies on the TxManager mutex for isolation, so it is a
// plain lookup here.
func (r *EventRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	return r.FindByID(ctx, id)
}

// FindBySessionIDForUpdate relies on the TxManager mutex for isolation, so it
// is a plain indexed lookup here.
func (r *EventRepository) FindBySessionIDForUpdate(ctx context.Context, sessionID uuid.UUID) (*model.Event, error) {
	return r.FindBySessionID(ctx, sessionID)
}

func (r *EventRepository) Update(ctx context.Context, event *model.Event) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.events[event.ID]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	for _, s := range stored.Sessions {
		delete(r.sessions, s.ID)
	}
	r.store(event)
	return cloneEvent(event), nil
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return false, nil
	}
	for _, s := range event.Sessions {
		delete(r.sessions, s.ID)
	}
	delete(r.events, id)
	return true, nil
}

// store must be called with the write lock held.
func (r *EventRepository) store(event *model.Event) {
	clone := cloneEvent(event)
	r.events[clone.ID] = clone
	for _, s := range clone.Sessions {
		r.sessions[s.ID] = clone.ID
	}
}

// snapshot deep-copies the store state and returns a closure restoring it.
func (r *EventRepository) snapshot() func() {
	r.mu.RLock()
	events := make(map[uuid.UUID]*model.Event, len(r.events))
	for id, event := range r.events {
		events[id] = cloneEvent(event)
	}
	sessions := make(map[uuid.UUID]uuid.UUID, len(r.sessions))
	for id, eventID := range r.sessions {
		sessions[id] = eventID
	}
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		r.events = events
		r.sessions = sessions
		r.mu.Unlock()
	}
}

func cloneEvent(event *model.Event) *model.Event {
	clone := *event
	clone.Categories = append([]string(nil), event.Categories...)
	clone.Sessions = make([]*model.Session, 0, len(event.Sessions))
	for _, s := range event.Sessions {
		sc := *s
		clone.Sessions = append(clone.Sessions, &sc)
	}
	return &clone
}
