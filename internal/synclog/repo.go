package synclog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warungpos/backend/pkg/db/models"
)

// Repository manages persistence for the append-only sync audit log.
type Repository interface {
	Create(ctx context.Context, entry *models.SyncLogEntry) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.SyncLogEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sync log repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *models.SyncLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.SyncLogEntry, error) {
	var entries []models.SyncLogEntry
	q := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
