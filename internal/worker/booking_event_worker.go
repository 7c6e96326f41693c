package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"go-event-booking/internal/cache"
	"go-event-booking/internal/queue"
	"go-event-booking/internal/repository"
	"go-event-booking/pkg/apperrors"
	"go-event-booking/pkg/logger"
)

// BookingEventWorker consumes booking lifecycle events and keeps the session
// availability cache in step with the store.
type BookingEventWorker interface {
	Start(ctx context.Context) error
}

type BookingEventWorkerImpl struct {
	events    repository.EventRepository
	inventory cache.SessionInventoryManager
	queue     queue.BookingQueue
}

func NewBookingEventWorker(
	events repository.EventRepository,
	inventory cache.SessionInventoryManager,
	bookingQueue queue.BookingQueue,
) BookingEventWorker {
	return &BookingEventWorkerImpl{
		events:    events,
		inventory: inventory,
		queue:     bookingQueue,
	}
}

func (w *BookingEventWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeBookingEvents(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := w.handle(ctx, msg.Data); err != nil {
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}

func (w *BookingEventWorkerImpl) handle(ctx context.Context, event *queue.BookingEvent) error {
	log := logger.WithComponent("worker").With(
		zap.String("type", string(event.Type)),
		zap.String("session_id", event.SessionID.String()))

	owner, err := w.events.FindBySessionID(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			// Session removed since the event was published; drop the stale
			// snapshot and ack.
			log.Info("session gone, invalidating cache entry")
			return w.inventory.Invalidate(ctx, event.SessionID)
		}
		return err
	}

	session := owner.GetSession(event.SessionID)
	if session == nil {
		return w.inventory.Invalidate(ctx, event.SessionID)
	}

	if err := w.inventory.Refresh(ctx, session); err != nil {
		log.Warn("refresh session cache failed", zap.Error(err))
		return err
	}
	return nil
}
