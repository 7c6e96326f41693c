package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"go-event-booking/internal/model"
	"go-event-booking/internal/repository"
	"go-event-booking/pkg/apperrors"
)

const bookingColumns = `id, user_id, session_id, seats, price_per_seat::text, status, created_at, confirmed_at, cancelled_at`

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) repository.BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) Save(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	q := queryerFrom(ctx, r.pool)

	query := `
		INSERT INTO bookings (id, user_id, session_id, seats, price_per_seat, status, created_at, confirmed_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9)
	`
	_, err := q.Exec(ctx, query,
		booking.ID, booking.UserID, booking.SessionID, booking.Seats,
		booking.PricePerSeat.String(), booking.Status, booking.CreatedAt,
		booking.ConfirmedAt, booking.CancelledAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return booking, nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return r.findByID(ctx, id, false)
}

func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return r.findByID(ctx, id, true)
}

func (r *BookingRepository) findByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*model.Booking, error) {
	q := queryerFrom(ctx, r.pool)

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	booking, err := scanBooking(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`
	return r.findMany(ctx, query, userID)
}

func (r *BookingRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE session_id = $1 ORDER BY created_at DESC`
	return r.findMany(ctx, query, sessionID)
}

func (r *BookingRepository) FindByStatus(ctx context.Context, status model.BookingStatus) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 ORDER BY created_at DESC`
	return r.findMany(ctx, query, status)
}

func (r *BookingRepository) FindActiveBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE session_id = $1 AND status <> $2
		ORDER BY created_at DESC
	`
	return r.findMany(ctx, query, sessionID, model.BookingStatusCancelled)
}

func (r *BookingRepository) Update(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	q := queryerFrom(ctx, r.pool)

	query := `
		UPDATE bookings
		SET status = $1, confirmed_at = $2, cancelled_at = $3
		WHERE id = $4
	`
	tag, err := q.Exec(ctx, query, booking.Status, booking.ConfirmedAt, booking.CancelledAt, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrBookingNotFound
	}
	return booking, nil
}

func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	q := queryerFrom(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *BookingRepository) findMany(ctx context.Context, query string, args ...any) ([]*model.Booking, error) {
	q := queryerFrom(ctx, r.pool)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		booking  model.Booking
		priceStr string
	)
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.SessionID,
		&booking.Seats,
		&priceStr,
		&booking.Status,
		&booking.CreatedAt,
		&booking.ConfirmedAt,
		&booking.CancelledAt,
	)
	if err != nil {
		return nil, err
	}

	booking.PricePerSeat, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("parse price per seat: %w", err)
	}
	return &booking, nil
}
