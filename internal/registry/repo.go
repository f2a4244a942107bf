package registry

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/warungpos/backend/pkg/db/models"
)

// Repository manages persistence for devices and their tenant ownership.
type Repository interface {
	FindDevice(ctx context.Context, deviceID string) (*models.Device, error)
	CreateDevice(ctx context.Context, device *models.Device) error
	TouchLastSeen(ctx context.Context, deviceID string, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a registry repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).
		Where("id = ?", deviceID).
		First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *repository) CreateDevice(ctx context.Context, device *models.Device) error {
	return r.db.WithContext(ctx).Create(device).Error
}

func (r *repository) TouchLastSeen(ctx context.Context, deviceID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("id = ?", deviceID).
		Update("last_seen_at", at).Error
}
