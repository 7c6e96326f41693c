package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-event-booking/internal/model"
	"go-event-booking/internal/queue"
	"go-event-booking/internal/repository"
	"go-event-booking/pkg/apperrors"
	"go-event-booking/pkg/logger"
)

type BookingService interface {
	// CreateBooking quotes the price at current occupancy, books the seats
	// and persists booking and event as one atomic unit.
	CreateBooking(ctx context.Context, userID, sessionID uuid.UUID, numSeats int) (*model.Booking, error)
	ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error)
	// CancelBooking releases the seats of a CONFIRMED booking.
	CancelBooking(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error)
	GetBookingStatus(ctx context.Context, bookingID uuid.UUID) (model.BookingStatus, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]*model.Booking, error)
}

type BookingServiceImpl struct {
	bookings repository.BookingRepository
	events   repository.EventRepository
	tx       repository.TxManager
	queue    queue.BookingQueue
}

// NewBookingService wires the booking workflow. bookingQueue may be nil when
// no downstream consumers run (tests, tooling).
func NewBookingService(
	bookings repository.BookingRepository,
	events repository.EventRepository,
	tx repository.TxManager,
	bookingQueue queue.BookingQueue,
) BookingService {
	return &BookingServiceImpl{
		bookings: bookings,
		events:   events,
		tx:       tx,
		queue:    bookingQueue,
	}
}

func (s *BookingServiceImpl) CreateBooking(ctx context.Context, userID, sessionID uuid.UUID, numSeats int) (*model.Booking, error) {
	var booking *model.Booking

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Locks the session row: concurrent bookings on the same session
		// serialize here, bookings on other sessions do not.
		event, err := s.events.FindBySessionIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		session := event.GetSession(sessionID)
		if session == nil {
			return apperrors.ErrSessionNotFound
		}

		if !session.IsAvailable() || session.AvailableSeats() < numSeats {
			return apperrors.ErrInsufficientSeats
		}

		// Quote before mutating: the buyer pays the price at pre-booking
		// occupancy, not the tier their own seats push the session into.
		currentPrice := session.GetCurrentPrice()

		booking = model.NewBooking(userID, sessionID, numSeats, currentPrice)

		ok, err := session.BookSeats(numSeats)
		if err != nil {
			return err
		}
		if !ok {
			// Availability passed just above, so this means the stored state
			// changed underneath us despite the lock.
			return fmt.Errorf("book seats: %w", apperrors.ErrBookingFailed)
		}

		if booking, err = s.bookings.Save(ctx, booking); err != nil {
			return err
		}
		_, err = s.events.Update(ctx, event)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, queue.BookingCreated, booking)
	return booking, nil
}

func (s *BookingServiceImpl) ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	var booking *model.Booking

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		// Load-with-lock plus the status check makes the transition a
		// compare-and-set; two racing confirms cannot both pass.
		booking, err = s.bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := booking.Confirm(); err != nil {
			return err
		}
		booking, err = s.bookings.Update(ctx, booking)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, queue.BookingConfirmed, booking)
	return booking, nil
}

func (s *BookingServiceImpl) CancelBooking(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	var booking *model.Booking

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		// Only CONFIRMED bookings go through here; a PENDING booking is
		// abandoned, not cancelled.
		if !booking.IsCancellable() {
			return apperrors.ErrBookingNotCancellable
		}

		// The session vanishing while a confirmed booking points at it is a
		// real inconsistency; surface it, don't swallow it.
		event, err := s.events.FindBySessionIDForUpdate(ctx, booking.SessionID)
		if err != nil {
			return err
		}
		session := event.GetSession(booking.SessionID)
		if session == nil {
			return apperrors.ErrSessionNotFound
		}

		ok, err := session.ReleaseSeats(booking.Seats)
		if err != nil {
			return err
		}
		if !ok {
			// booked_seats and booking.Seats have drifted apart.
			return fmt.Errorf("release seats: %w", apperrors.ErrBookingFailed)
		}

		if err := booking.Cancel(); err != nil {
			return err
		}

		if _, err = s.events.Update(ctx, event); err != nil {
			return err
		}
		booking, err = s.bookings.Update(ctx, booking)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, queue.BookingCancelled, booking)
	return booking, nil
}

func (s *BookingServiceImpl) GetBooking(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	return s.bookings.FindByID(ctx, bookingID)
}

func (s *BookingServiceImpl) GetBookingStatus(ctx context.Context, bookingID uuid.UUID) (model.BookingStatus, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	return booking.Status, nil
}

func (s *BookingServiceImpl) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]*model.Booking, error) {
	return s.bookings.FindByUserID(ctx, userID)
}

// publish is best-effort: the booking transaction already committed, a lost
// event only delays cache refresh and notifications.
func (s *BookingServiceImpl) publish(ctx context.Context, eventType queue.BookingEventType, booking *model.Booking) {
	if s.queue == nil {
		return
	}
	event := &queue.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		SessionID:  booking.SessionID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.queue.PublishBookingEvent(ctx, event); err != nil {
		logger.WithComponent("service").Warn("publish booking event failed",
			zap.String("type", string(eventType)),
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err))
	}
}
