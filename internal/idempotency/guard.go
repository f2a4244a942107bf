package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warungpos/backend/pkg/enums"
	"github.com/warungpos/backend/pkg/redis"
)

// Guard short-circuits replayed CREATE mutations using Redis SETNX with a
// TTL. It is advisory only: the unique (tenant, device, local) index on every
// synced table remains the authoritative duplicate barrier, so a lost Redis
// key never causes a duplicate row.
type Guard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewGuard builds a create-replay guard that marks mutations as seen for the
// given TTL.
func NewGuard(store redis.IdempotencyStore, ttl time.Duration) (*Guard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Guard{store: store, ttl: ttl}, nil
}

// CheckAndMark returns true if the create was already seen and otherwise
// marks it for the configured TTL.
func (g *Guard) CheckAndMark(ctx context.Context, tenantID uuid.UUID, deviceID string, table enums.SyncTable, localID string) (bool, error) {
	key, err := g.key(tenantID, deviceID, table, localID)
	if err != nil {
		return false, err
	}
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Unmark removes a previously set mark, used when the guarded write failed
// and the client must be allowed to retry as a fresh create.
func (g *Guard) Unmark(ctx context.Context, tenantID uuid.UUID, deviceID string, table enums.SyncTable, localID string) error {
	key, err := g.key(tenantID, deviceID, table, localID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *Guard) key(tenantID uuid.UUID, deviceID string, table enums.SyncTable, localID string) (string, error) {
	if tenantID == uuid.Nil {
		return "", errors.New("tenant id is required")
	}
	if deviceID == "" {
		return "", errors.New("device id is required")
	}
	if localID == "" {
		return "", errors.New("local id is required")
	}
	scope := fmt.Sprintf("create:%s:%s:%s", tenantID, deviceID, table)
	return g.store.IdempotencyKey(scope, localID), nil
}
