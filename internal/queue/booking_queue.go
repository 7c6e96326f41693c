package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingEventType identifies a booking lifecycle transition.
type BookingEventType string

const (
	BookingCreated   BookingEventType = "booking.created"
	BookingConfirmed BookingEventType = "booking.confirmed"
	BookingCancelled BookingEventType = "booking.cancelled"
)

// BookingEvent is the message published after a booking transaction commits.
// It carries ids only; consumers re-read current state from the repository.
type BookingEvent struct {
	Type       BookingEventType `json:"type"`
	BookingID  uuid.UUID        `json:"booking_id"`
	SessionID  uuid.UUID        `json:"session_id"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type Delivery struct {
	Data *BookingEvent
	Ack  func()
	Nack func(requeue bool)
}

type BookingQueue interface {
	PublishBookingEvent(ctx context.Context, event *BookingEvent) error
	SubscribeBookingEvents(ctx context.Context) (<-chan Delivery, error)
}

// BookingQueueImpl is a channel-backed queue for tests and single-process
// runs; the Redis Streams implementation replaces it in production wiring.
type BookingQueueImpl struct {
	ch chan *BookingEvent
}

func NewBookingQueue(bufferSize int) BookingQueue {
	return &BookingQueueImpl{
		ch: make(chan *BookingEvent, bufferSize),
	}
}

func (q *BookingQueueImpl) PublishBookingEvent(ctx context.Context, event *BookingEvent) error {
	q.ch <- event
	return nil
}

func (q *BookingQueueImpl) SubscribeBookingEvents(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: event,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- event
						}
					},
				}
			}
		}
	}()

	return out, nil
}
