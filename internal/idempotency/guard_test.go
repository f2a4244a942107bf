package idempotency

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warungpos/backend/pkg/enums"
)

type fakeStore struct {
	mu       sync.Mutex
	keys     map[string]struct{}
	setNXErr error
	delErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: map[string]struct{}{}}
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setNXErr != nil {
		return false, f.setNXErr
	}
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = struct{}{}
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return strings.Join([]string{"test", scope, id}, ":")
}

func TestCheckAndMarkDetectsReplay(t *testing.T) {
	guard, err := NewGuard(newFakeStore(), time.Hour)
	require.NoError(t, err)

	tenantID := uuid.New()
	ctx := context.Background()

	seen, err := guard.CheckAndMark(ctx, tenantID, "till-1", enums.SyncTableOrders, "local-1")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = guard.CheckAndMark(ctx, tenantID, "till-1", enums.SyncTableOrders, "local-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMarkIsScopedPerDeviceAndTable(t *testing.T) {
	guard, err := NewGuard(newFakeStore(), time.Hour)
	require.NoError(t, err)

	tenantID := uuid.New()
	ctx := context.Background()

	_, err = guard.CheckAndMark(ctx, tenantID, "till-1", enums.SyncTableOrders, "local-1")
	require.NoError(t, err)

	seen, err := guard.CheckAndMark(ctx, tenantID, "till-2", enums.SyncTableOrders, "local-1")
	require.NoError(t, err)
	assert.False(t, seen, "another device may reuse the local id")

	seen, err = guard.CheckAndMark(ctx, tenantID, "till-1", enums.SyncTableMenu, "local-1")
	require.NoError(t, err)
	assert.False(t, seen, "another table may reuse the local id")
}

func TestUnmarkAllowsRetryAfterFailure(t *testing.T) {
	guard, err := NewGuard(newFakeStore(), time.Hour)
	require.NoError(t, err)

	tenantID := uuid.New()
	ctx := context.Background()

	_, err = guard.CheckAndMark(ctx, tenantID, "till-1", enums.SyncTableOrders, "local-1")
	require.NoError(t, err)
	require.NoError(t, guard.Unmark(ctx, tenantID, "till-1", enums.SyncTableOrders, "local-1"))

	seen, err := guard.CheckAndMark(ctx, tenantID, "till-1", enums.SyncTableOrders, "local-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestGuardPropagatesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.setNXErr = errors.New("redis down")
	guard, err := NewGuard(store, time.Hour)
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), uuid.New(), "till-1", enums.SyncTableOrders, "local-1")
	require.Error(t, err)
}

func TestGuardValidatesKeyParts(t *testing.T) {
	guard, err := NewGuard(newFakeStore(), time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = guard.CheckAndMark(ctx, uuid.Nil, "till-1", enums.SyncTableOrders, "local-1")
	require.Error(t, err)
	_, err = guard.CheckAndMark(ctx, uuid.New(), "", enums.SyncTableOrders, "local-1")
	require.Error(t, err)
	_, err = guard.CheckAndMark(ctx, uuid.New(), "till-1", enums.SyncTableOrders, "")
	require.Error(t, err)
}
