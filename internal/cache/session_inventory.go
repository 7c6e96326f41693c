package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"go-event-booking/internal/model"
	"go-event-booking/pkg/apperrors"
)

// SessionInfo is the cached availability snapshot of a session. It serves
// read fast-paths only; booking decisions always go through the transactional
// store.
type SessionInfo struct {
	AvailableSeats int
	CurrentPrice   decimal.Decimal
}

type SessionInventoryManager interface {
	// WarmUp seeds the snapshot when a session goes on sale.
	WarmUp(ctx context.Context, session *model.Session) error
	// Get returns the snapshot, or ErrSessionNotFound when not cached.
	Get(ctx context.Context, sessionID uuid.UUID) (SessionInfo, error)
	// Refresh overwrites the snapshot after a seat-count change.
	Refresh(ctx context.Context, session *model.Session) error
	// Invalidate drops the snapshot.
	Invalidate(ctx context.Context, sessionID uuid.UUID) error
}

type RedisSessionInventoryManager struct {
	client *redis.Client
}

func NewRedisSessionInventoryManager(client *redis.Client) SessionInventoryManager {
	return &RedisSessionInventoryManager{client: client}
}

func (m *RedisSessionInventoryManager) getInfoKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session:%s:info", sessionID)
}

func (m *RedisSessionInventoryManager) WarmUp(ctx context.Context, session *model.Session) error {
	key := m.getInfoKey(session.ID)
	return m.client.HSet(ctx, key, map[string]interface{}{
		"available": session.AvailableSeats(),
		"price":     session.GetCurrentPrice().String(),
	}).Err()
}

func (m *RedisSessionInventoryManager) Get(ctx context.Context, sessionID uuid.UUID) (SessionInfo, error) {
	key := m.getInfoKey(sessionID)
	result, err := m.client.HGetAll(ctx, key).Result()
	if err != nil {
		return SessionInfo{}, err
	}

	if len(result) == 0 {
		return SessionInfo{}, apperrors.ErrSessionNotFound
	}

	available, err := strconv.Atoi(result["available"])
	if err != nil {
		return SessionInfo{}, fmt.Errorf("invalid available seats: %v", err)
	}

	price, err := decimal.NewFromString(result["price"])
	if err != nil {
		return SessionInfo{}, fmt.Errorf("invalid price: %v", err)
	}

	return SessionInfo{
		AvailableSeats: available,
		CurrentPrice:   price,
	}, nil
}

func (m *RedisSessionInventoryManager) Refresh(ctx context.Context, session *model.Session) error {
	return m.WarmUp(ctx, session)
}

func (m *RedisSessionInventoryManager) Invalidate(ctx context.Context, sessionID uuid.UUID) error {
	return m.client.Del(ctx, m.getInfoKey(sessionID)).Err()
}
