package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"go-event-booking/internal/model"
	"go-event-booking/internal/repository"
	"go-event-booking/pkg/apperrors"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) repository.EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Save(ctx context.Context, event *model.Event) (*model.Event, error) {
	err := withTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO events (id, name, description, venue, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, query,
			event.ID, event.Name, event.Description, event.Venue, event.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		if err := replaceCategories(ctx, tx, event); err != nil {
			return err
		}
		return upsertSessions(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	return r.findByID(ctx, id, false)
}

func (r *EventRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	return r.findByID(ctx, id, true)
}

// findByID loads the full aggregate. With forUpdate the event row stays locked
// until the surrounding transaction ends; the event row is the single lock
// point that serializes every write touching the aggregate, bookings included.
func (r *EventRepository) findByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*model.Event, error) {
	q := queryerFrom(ctx, r.pool)

	query := `
		SELECT id, name, description, venue, created_at
		FROM events
		WHERE id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var event model.Event
	err := q.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Venue,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	if event.Categories, err = loadCategories(ctx, q, id); err != nil {
		return nil, err
	}
	if event.Sessions, err = loadSessions(ctx, q, id); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) FindAll(ctx context.Context) ([]*model.Event, error) {
	return r.findByIDs(ctx, `SELECT id FROM events ORDER BY created_at DESC`)
}

func (r *EventRepository) FindByCategory(ctx context.Context, category string) ([]*model.Event, error) {
	query := `
		SELECT id
		FROM events e
		WHERE EXISTS (
			SELECT 1 FROM event_categories ec
			WHERE ec.event_id = e.id AND ec.category = $1
		)
		ORDER BY created_at DESC
	`
	return r.findByIDs(ctx, query, category)
}

func (r *EventRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.Event, error) {
	return r.findBySessionID(ctx, sessionID, false)
}

func (r *EventRepository) FindBySessionIDForUpdate(ctx context.Context, sessionID uuid.UUID) (*model.Event, error) {
	return r.findBySessionID(ctx, sessionID, true)
}

// findBySessionID resolves the owning event through the session index. The
// index read is unlocked; with forUpdate the event row lock is taken and the
// aggregate re-read under it, so callers see post-lock state. A session
// removed in between surfaces as a nil GetSession on the loaded event.
func (r *EventRepository) findBySessionID(ctx context.Context, sessionID uuid.UUID, forUpdate bool) (*model.Event, error) {
	q := queryerFrom(ctx, r.pool)

	var eventID uuid.UUID
	err := q.QueryRow(ctx, `SELECT event_id FROM sessions WHERE id = $1`, sessionID).Scan(&eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}
	return r.findByID(ctx, eventID, forUpdate)
}

func (r *EventRepository) Update(ctx context.Context, event *model.Event) (*model.Event, error) {
	err := withTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			UPDATE events
			SET name = $1, description = $2, venue = $3
			WHERE id = $4
		`
		tag, err := tx.Exec(ctx, query, event.Name, event.Description, event.Venue, event.ID)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrEventNotFound
		}

		if err := replaceCategories(ctx, tx, event); err != nil {
			return err
		}
		if err := upsertSessions(ctx, tx, event); err != nil {
			return err
		}

		// Drop sessions removed from the aggregate.
		ids := make([]string, 0, len(event.Sessions))
		for _, s := range event.Sessions {
			ids = append(ids, s.ID.String())
		}
		_, err = tx.Exec(ctx,
			`DELETE FROM sessions WHERE event_id = $1 AND id <> ALL($2::uuid[])`,
			event.ID, ids,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	q := queryerFrom(ctx, r.pool)

	// Categories and sessions go with the event via ON DELETE CASCADE.
	tag, err := q.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EventRepository) findByIDs(ctx context.Context, query string, args ...any) ([]*model.Event, error) {
	q := queryerFrom(ctx, r.pool)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	events := make([]*model.Event, 0, len(ids))
	for _, id := range ids {
		event, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func replaceCategories(ctx context.Context, tx pgx.Tx, event *model.Event) error {
	if _, err := tx.Exec(ctx, `DELETE FROM event_categories WHERE event_id = $1`, event.ID); err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	for _, category := range event.Categories {
		_, err := tx.Exec(ctx,
			`INSERT INTO event_categories (event_id, category) VALUES ($1, $2)`,
			event.ID, category,
		)
		if err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
	}
	return nil
}

func upsertSessions(ctx context.Context, tx pgx.Tx, event *model.Event) error {
	query := `
		INSERT INTO sessions (id, event_id, start_time, end_time, capacity, booked_seats, base_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric)
		ON CONFLICT (id) DO UPDATE SET
			start_time   = EXCLUDED.start_time,
			end_time     = EXCLUDED.end_time,
			capacity     = EXCLUDED.capacity,
			booked_seats = EXCLUDED.booked_seats,
			base_price   = EXCLUDED.base_price
	`
	for _, s := range event.Sessions {
		_, err := tx.Exec(ctx, query,
			s.ID, event.ID, s.StartTime, s.EndTime, s.Capacity, s.BookedSeats, s.BasePrice.String(),
		)
		if err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}
	}
	return nil
}

func loadCategories(ctx context.Context, q querier, eventID uuid.UUID) ([]string, error) {
	rows, err := q.Query(ctx,
		`SELECT category FROM event_categories WHERE event_id = $1 ORDER BY category`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func loadSessions(ctx context.Context, q querier, eventID uuid.UUID) ([]*model.Session, error) {
	query := `
		SELECT id, event_id, start_time, end_time, capacity, booked_seats, base_price::text
		FROM sessions
		WHERE event_id = $1
		ORDER BY seq
	`
	rows, err := q.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*model.Session, 0)
	for rows.Next() {
		var (
			id, evtID        uuid.UUID
			start, end       time.Time
			capacity, booked int
			basePriceStr     string
		)
		if err := rows.Scan(&id, &evtID, &start, &end, &capacity, &booked, &basePriceStr); err != nil {
			return nil, err
		}
		basePrice, err := decimal.NewFromString(basePriceStr)
		if err != nil {
			return nil, fmt.Errorf("parse base price: %w", err)
		}
		sessions = append(sessions, model.RestoreSession(id, evtID, start, end, capacity, booked, basePrice))
	}
	return sessions, rows.Err()
}
