package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-event-booking/internal/cache"
	"go-event-booking/internal/model"
	"go-event-booking/internal/repository"
	"go-event-booking/pkg/apperrors"
	"go-event-booking/pkg/logger"
)

type EventService interface {
	CreateEvent(ctx context.Context, name, description, venue string, categories []string) (*model.Event, error)
	GetEvent(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	ListEvents(ctx context.Context) ([]*model.Event, error)
	GetEventsByCategory(ctx context.Context, category string) ([]*model.Event, error)
	// AddSession validates the session and rejects any overlap with the
	// event's existing sessions.
	AddSession(ctx context.Context, eventID uuid.UUID, start, end time.Time, capacity int, basePrice decimal.Decimal) (*model.Session, error)
	// RemoveSession refuses to drop a session that has booked seats.
	RemoveSession(ctx context.Context, eventID, sessionID uuid.UUID) error
	GetAvailableSessions(ctx context.Context, eventID uuid.UUID) ([]*model.Session, error)
	// GetSessionPrice serves a quote from the cache when possible, falling
	// back to the store and re-warming the cache on a miss.
	GetSessionPrice(ctx context.Context, sessionID uuid.UUID) (model.SessionPriceResponse, error)
	UpdateEvent(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
	// DeleteEvent refuses while any session has booked seats.
	DeleteEvent(ctx context.Context, eventID uuid.UUID) error
}

type EventServiceImpl struct {
	repo      repository.EventRepository
	tx        repository.TxManager
	inventory cache.SessionInventoryManager
}

// NewEventService builds the event lifecycle service. Mutating flows run in a
// transaction scope with a locked aggregate read, so they serialize against
// concurrent bookings instead of overwriting their seat counts. inventory may
// be nil when no cache is wired.
func NewEventService(repo repository.EventRepository, tx repository.TxManager, inventory cache.SessionInventoryManager) EventService {
	return &EventServiceImpl{repo: repo, tx: tx, inventory: inventory}
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, name, description, venue string, categories []string) (*model.Event, error) {
	event := model.NewEvent(name, description, venue, categories)
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, event)
}

func (s *EventServiceImpl) GetEvent(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	return s.repo.FindByID(ctx, eventID)
}

func (s *EventServiceImpl) ListEvents(ctx context.Context) ([]*model.Event, error) {
	return s.repo.FindAll(ctx)
}

func (s *EventServiceImpl) GetEventsByCategory(ctx context.Context, category string) ([]*model.Event, error) {
	return s.repo.FindByCategory(ctx, category)
}

func (s *EventServiceImpl) AddSession(ctx context.Context, eventID uuid.UUID, start, end time.Time, capacity int, basePrice decimal.Decimal) (*model.Session, error) {
	session := model.NewSession(eventID, start, end, capacity, basePrice)
	if err := session.Validate(); err != nil {
		return nil, err
	}

	var created *model.Session
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Locked read: concurrent bookings on this event commit before or
		// after this write, never in between.
		event, err := s.repo.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		// Half-open overlap: sessions may touch, never intersect.
		for _, existing := range event.Sessions {
			if existing.StartTime.Before(end) && existing.EndTime.After(start) {
				return apperrors.ErrSessionOverlap
			}
		}

		event.AddSession(session)
		updated, err := s.repo.Update(ctx, event)
		if err != nil {
			return err
		}
		created = updated.GetSession(session.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.warmUp(ctx, created)
	return created, nil
}

func (s *EventServiceImpl) RemoveSession(ctx context.Context, eventID, sessionID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.repo.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		session := event.GetSession(sessionID)
		if session == nil {
			return apperrors.ErrSessionNotFound
		}
		if session.BookedSeats > 0 {
			return apperrors.ErrSessionHasBookings
		}

		event.RemoveSession(sessionID)
		_, err = s.repo.Update(ctx, event)
		return err
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, sessionID)
	return nil
}

func (s *EventServiceImpl) GetAvailableSessions(ctx context.Context, eventID uuid.UUID) ([]*model.Session, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return event.GetAvailableSessions(), nil
}

func (s *EventServiceImpl) GetSessionPrice(ctx context.Context, sessionID uuid.UUID) (model.SessionPriceResponse, error) {
	if s.inventory != nil {
		info, err := s.inventory.Get(ctx, sessionID)
		if err == nil {
			return model.SessionPriceResponse{
				SessionID:      sessionID,
				AvailableSeats: info.AvailableSeats,
				CurrentPrice:   info.CurrentPrice,
			}, nil
		}
	}

	event, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return model.SessionPriceResponse{}, err
	}
	session := event.GetSession(sessionID)
	if session == nil {
		return model.SessionPriceResponse{}, apperrors.ErrSessionNotFound
	}

	s.warmUp(ctx, session)
	return session.ToPriceResponse(), nil
}

func (s *EventServiceImpl) UpdateEvent(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	var updated *model.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.repo.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		if params.Name != nil {
			event.Name = *params.Name
		}
		if params.Description != nil {
			event.Description = *params.Description
		}
		if params.Venue != nil {
			event.Venue = *params.Venue
		}
		if params.Categories != nil {
			event.Categories = params.Categories
		}

		if err := event.Validate(); err != nil {
			return err
		}
		updated, err = s.repo.Update(ctx, event)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EventServiceImpl) DeleteEvent(ctx context.Context, eventID uuid.UUID) error {
	var sessionIDs []uuid.UUID
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.repo.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		for _, session := range event.Sessions {
			if session.BookedSeats > 0 {
				return apperrors.ErrEventHasBookings
			}
			sessionIDs = append(sessionIDs, session.ID)
		}

		deleted, err := s.repo.Delete(ctx, eventID)
		if err != nil {
			return err
		}
		if !deleted {
			return apperrors.ErrEventNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, sessionID := range sessionIDs {
		s.invalidate(ctx, sessionID)
	}
	return nil
}

func (s *EventServiceImpl) warmUp(ctx context.Context, session *model.Session) {
	if s.inventory == nil || session == nil {
		return
	}
	if err := s.inventory.WarmUp(ctx, session); err != nil {
		logger.WithComponent("service").Warn("warm up session cache failed",
			zap.String("session_id", session.ID.String()), zap.Error(err))
	}
}

func (s *EventServiceImpl) invalidate(ctx context.Context, sessionID uuid.UUID) {
	if s.inventory == nil {
		return
	}
	if err := s.inventory.Invalidate(ctx, sessionID); err != nil {
		logger.WithComponent("service").Warn("invalidate session cache failed",
			zap.String("session_id", sessionID.String()), zap.Error(err))
	}
}
