package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/warungpos/backend/pkg/enums"
)

// InventoryEvent is one append-only entry in the stock ledger. Quantity is
// always a positive magnitude; the event type carries the sign.
type InventoryEvent struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	TenantID      uuid.UUID                `gorm:"column:tenant_id;type:uuid;not null"`
	InventoryID   uuid.UUID                `gorm:"column:inventory_id;type:uuid;not null;index"`
	EventType     enums.InventoryEventType `gorm:"column:event_type;not null"`
	Quantity      int                      `gorm:"column:quantity;not null"`
	Unit          string                   `gorm:"column:unit"`
	Reason        string                   `gorm:"column:reason"`
	ReferenceType string                   `gorm:"column:reference_type"`
	DeviceID      string                   `gorm:"column:device_id;not null"`
	Version       int                      `gorm:"column:version;not null"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
}
