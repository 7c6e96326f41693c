package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"go-event-booking/pkg/apperrors"
)

// Event is the aggregate root owning its sessions. Sessions are kept in
// insertion order and are unique by id. No locking here: callers serialize
// access through the repository transaction boundary.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Venue       string     `json:"venue"`
	Categories  []string   `json:"categories"`
	CreatedAt   time.Time  `json:"created_at"`
	Sessions    []*Session `json:"sessions"`
}

func NewEvent(name, description, venue string, categories []string) *Event {
	return &Event{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Venue:       venue,
		Categories:  categories,
		CreatedAt:   time.Now().UTC(),
	}
}

// AddSession appends a session. Re-adding an id already present is a no-op.
func (e *Event) AddSession(session *Session) {
	for _, s := range e.Sessions {
		if s.ID == session.ID {
			return
		}
	}
	e.Sessions = append(e.Sessions, session)
}

// RemoveSession drops the session unconditionally; booking checks are the
// caller's responsibility.
func (e *Event) RemoveSession(sessionID uuid.UUID) {
	kept := e.Sessions[:0]
	for _, s := range e.Sessions {
		if s.ID != sessionID {
			kept = append(kept, s)
		}
	}
	e.Sessions = kept
}

// GetAvailableSessions returns the sessions that still have free seats.
func (e *Event) GetAvailableSessions() []*Session {
	available := make([]*Session, 0)
	for _, s := range e.Sessions {
		if s.IsAvailable() {
			available = append(available, s)
		}
	}
	return available
}

// GetSession returns the session with the given id, or nil.
func (e *Event) GetSession(sessionID uuid.UUID) *Session {
	for _, s := range e.Sessions {
		if s.ID == sessionID {
			return s
		}
	}
	return nil
}

// Validate checks event invariants and names the violated field.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return apperrors.NewValidationError("name", "event name cannot be empty")
	}
	if strings.TrimSpace(e.Venue) == "" {
		return apperrors.NewValidationError("venue", "venue cannot be empty")
	}
	if len(e.Categories) == 0 {
		return apperrors.NewValidationError("categories", "event must have at least one category")
	}
	return nil
}

// UpdateEventParams carries a partial update; nil fields are left unchanged.
type UpdateEventParams struct {
	Name        *string
	Description *string
	Venue       *string
	Categories  []string
}
