package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/warungpos/backend/pkg/db/models"
	"github.com/warungpos/backend/pkg/enums"
)

// Repository is the device-local pending mutation queue. Entries drain in
// enqueue order and are retained after success for local bookkeeping.
type Repository interface {
	Enqueue(ctx context.Context, action enums.MutationAction, table enums.SyncTable, localID string, payload json.RawMessage) (*models.PendingMutation, error)
	// FetchDue returns unsynced entries below the retry ceiling, oldest
	// first. limit <= 0 means no limit.
	FetchDue(ctx context.Context, maxRetries, limit int) ([]models.PendingMutation, error)
	MarkSynced(ctx context.Context, id uint) error
	// MarkFailed increments the retry counter and records the error text.
	MarkFailed(ctx context.Context, id uint, cause error) error
	// ResetFailed clears retry counters on terminally failed entries so a
	// manual resync can pick them up again. Returns how many were reset.
	ResetFailed(ctx context.Context, maxRetries int) (int64, error)
	CountPending(ctx context.Context, maxRetries int) (int64, error)
	CountFailed(ctx context.Context, maxRetries int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a queue repository over the local store.
func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("local database required")
	}
	return &repository{db: db}, nil
}

func (r *repository) Enqueue(ctx context.Context, action enums.MutationAction, table enums.SyncTable, localID string, payload json.RawMessage) (*models.PendingMutation, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("invalid action %q", action)
	}
	if !table.IsValid() {
		return nil, fmt.Errorf("invalid table %q", table)
	}
	if localID == "" {
		return nil, fmt.Errorf("local id is required")
	}
	entry := &models.PendingMutation{
		Action:     action,
		Table:      table,
		LocalID:    localID,
		Payload:    payload,
		EnqueuedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("enqueueing mutation: %w", err)
	}
	return entry, nil
}

func (r *repository) FetchDue(ctx context.Context, maxRetries, limit int) ([]models.PendingMutation, error) {
	var entries []models.PendingMutation
	q := r.db.WithContext(ctx).
		Where("synced = ? AND retry_count < ?", false, maxRetries).
		Order("enqueued_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("fetching due mutations: %w", err)
	}
	return entries, nil
}

func (r *repository) MarkSynced(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.PendingMutation{}).
		Where("id = ?", id).
		Updates(map[string]any{"synced": true, "last_error": nil})
	if res.Error != nil {
		return fmt.Errorf("marking mutation synced: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pending mutation %d not found", id)
	}
	return nil
}

func (r *repository) MarkFailed(ctx context.Context, id uint, cause error) error {
	updates := map[string]any{"retry_count": gorm.Expr("retry_count + 1")}
	if cause != nil {
		updates["last_error"] = cause.Error()
	}
	res := r.db.WithContext(ctx).
		Model(&models.PendingMutation{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("marking mutation failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pending mutation %d not found", id)
	}
	return nil
}

func (r *repository) ResetFailed(ctx context.Context, maxRetries int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PendingMutation{}).
		Where("synced = ? AND retry_count >= ?", false, maxRetries).
		Updates(map[string]any{"retry_count": 0, "last_error": nil})
	if res.Error != nil {
		return 0, fmt.Errorf("resetting failed mutations: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *repository) CountPending(ctx context.Context, maxRetries int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PendingMutation{}).
		Where("synced = ? AND retry_count < ?", false, maxRetries).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting pending mutations: %w", err)
	}
	return count, nil
}

func (r *repository) CountFailed(ctx context.Context, maxRetries int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PendingMutation{}).
		Where("synced = ? AND retry_count >= ?", false, maxRetries).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting failed mutations: %w", err)
	}
	return count, nil
}
