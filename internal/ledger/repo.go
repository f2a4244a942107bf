package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warungpos/backend/pkg/db/models"
)

// Repository manages persistence for inventory ledger events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.InventoryEvent) error
	ListByInventoryID(ctx context.Context, inventoryID uuid.UUID) ([]models.InventoryEvent, error)
	ListByTenantAndInventory(ctx context.Context, tenantID, inventoryID uuid.UUID) ([]models.InventoryEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.InventoryEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListByInventoryID(ctx context.Context, inventoryID uuid.UUID) ([]models.InventoryEvent, error) {
	var events []models.InventoryEvent
	if err := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("created_at ASC").
		Order("version ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) ListByTenantAndInventory(ctx context.Context, tenantID, inventoryID uuid.UUID) ([]models.InventoryEvent, error) {
	var events []models.InventoryEvent
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND inventory_id = ?", tenantID, inventoryID).
		Order("created_at ASC").
		Order("version ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
