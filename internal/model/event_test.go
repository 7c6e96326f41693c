package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-event-booking/pkg/apperrors"
)

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name       string
		eventName  string
		venue      string
		categories []string
		valid      bool
	}{
		{"valid", "Go Conference", "City Hall", []string{"tech"}, true},
		{"empty name", "", "City Hall", []string{"tech"}, false},
		{"whitespace name", "   ", "City Hall", []string{"tech"}, false},
		{"empty venue", "Go Conference", "", []string{"tech"}, false},
		{"no categories", "Go Conference", "City Hall", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvent(tt.eventName, "", tt.venue, tt.categories)
			err := e.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			}
		})
	}
}

func TestEventAddSessionIdempotent(t *testing.T) {
	e := NewEvent("Go Conference", "", "City Hall", []string{"tech"})
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	s := NewSession(e.ID, start, start.Add(time.Hour), 10, decimal.RequireFromString("50"))

	e.AddSession(s)
	e.AddSession(s)

	assert.Len(t, e.Sessions, 1)
}

func TestEventRemoveSession(t *testing.T) {
	e := NewEvent("Go Conference", "", "City Hall", []string{"tech"})
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	first := NewSession(e.ID, start, start.Add(time.Hour), 10, decimal.RequireFromString("50"))
	second := NewSession(e.ID, start.Add(2*time.Hour), start.Add(3*time.Hour), 10, decimal.RequireFromString("50"))
	e.AddSession(first)
	e.AddSession(second)

	e.RemoveSession(first.ID)

	require.Len(t, e.Sessions, 1)
	assert.Equal(t, second.ID, e.Sessions[0].ID)
	assert.Nil(t, e.GetSession(first.ID))

	// Removing an unknown id is a no-op.
	e.RemoveSession(uuid.New())
	assert.Len(t, e.Sessions, 1)
}

func TestEventGetAvailableSessions(t *testing.T) {
	e := NewEvent("Go Conference", "", "City Hall", []string{"tech"})
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	open := NewSession(e.ID, start, start.Add(time.Hour), 10, decimal.RequireFromString("50"))
	full := RestoreSession(uuid.New(), e.ID, start.Add(2*time.Hour), start.Add(3*time.Hour), 5, 5, decimal.RequireFromString("50"))
	e.AddSession(open)
	e.AddSession(full)

	available := e.GetAvailableSessions()
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].ID)
}
