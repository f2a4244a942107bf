package conflict

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warungpos/backend/pkg/db/models"
)

// Repository manages persistence for conflict records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.ConflictRecord) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.ConflictRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a conflict repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.ConflictRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.ConflictRecord, error) {
	var records []models.ConflictRecord
	q := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
