package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/warungpos/backend/pkg/db/models"
	"github.com/warungpos/backend/pkg/enums"
)

const testMaxRetries = 3

func setupQueue(t *testing.T) Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PendingMutation{}))

	repo, err := NewRepository(db)
	require.NoError(t, err)
	return repo
}

func enqueueN(t *testing.T, repo Repository, n int) []uint {
	t.Helper()
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		entry, err := repo.Enqueue(
			context.Background(),
			enums.MutationActionCreate,
			enums.SyncTableOrders,
			fmt.Sprintf("local-%d", i),
			json.RawMessage(`{"totalAmount":"1000"}`),
		)
		require.NoError(t, err)
		ids = append(ids, entry.ID)
		time.Sleep(time.Millisecond)
	}
	return ids
}

func TestFetchDueReturnsOldestFirst(t *testing.T) {
	repo := setupQueue(t)
	ids := enqueueN(t, repo, 3)

	due, err := repo.FetchDue(context.Background(), testMaxRetries, 0)
	require.NoError(t, err)
	require.Len(t, due, 3)
	for i, entry := range due {
		assert.Equal(t, ids[i], entry.ID)
	}
}

func TestMarkSyncedExcludesFromFetch(t *testing.T) {
	repo := setupQueue(t)
	ids := enqueueN(t, repo, 2)

	require.NoError(t, repo.MarkSynced(context.Background(), ids[0]))

	due, err := repo.FetchDue(context.Background(), testMaxRetries, 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, ids[1], due[0].ID)
}

func TestRetryCeilingParksEntry(t *testing.T) {
	repo := setupQueue(t)
	ids := enqueueN(t, repo, 1)

	for i := 0; i < testMaxRetries; i++ {
		require.NoError(t, repo.MarkFailed(context.Background(), ids[0], errors.New("server unreachable")))
	}

	due, err := repo.FetchDue(context.Background(), testMaxRetries, 0)
	require.NoError(t, err)
	assert.Empty(t, due)

	failed, err := repo.CountFailed(context.Background(), testMaxRetries)
	require.NoError(t, err)
	assert.Equal(t, int64(1), failed)
}

func TestResetFailedRestoresEntries(t *testing.T) {
	repo := setupQueue(t)
	ids := enqueueN(t, repo, 2)

	for i := 0; i < testMaxRetries; i++ {
		require.NoError(t, repo.MarkFailed(context.Background(), ids[0], errors.New("boom")))
	}

	reset, err := repo.ResetFailed(context.Background(), testMaxRetries)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reset)

	due, err := repo.FetchDue(context.Background(), testMaxRetries, 0)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, 0, due[0].RetryCount)
	assert.Nil(t, due[0].LastError)
}

func TestMarkFailedRecordsLastError(t *testing.T) {
	repo := setupQueue(t)
	ids := enqueueN(t, repo, 1)

	require.NoError(t, repo.MarkFailed(context.Background(), ids[0], errors.New("timeout talking to server")))

	due, err := repo.FetchDue(context.Background(), testMaxRetries, 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 1, due[0].RetryCount)
	require.NotNil(t, due[0].LastError)
	assert.Equal(t, "timeout talking to server", *due[0].LastError)
}

func TestEnqueueValidatesInput(t *testing.T) {
	repo := setupQueue(t)

	_, err := repo.Enqueue(context.Background(), enums.MutationAction("SQUASH"), enums.SyncTableOrders, "local-1", nil)
	require.Error(t, err)

	_, err = repo.Enqueue(context.Background(), enums.MutationActionCreate, enums.SyncTable("mystery"), "local-1", nil)
	require.Error(t, err)

	_, err = repo.Enqueue(context.Background(), enums.MutationActionCreate, enums.SyncTableOrders, "", nil)
	require.Error(t, err)
}
