package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is the server-owned projection of a stock row. The mutable
// Stock counter is cross-checked against the append-only inventory event
// ledger.
type InventoryItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID       uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_inventory_items_tenant_device_local,priority:1" json:"tenantId"`
	DeviceID       string    `gorm:"column:device_id;not null;uniqueIndex:ux_inventory_items_tenant_device_local,priority:2" json:"deviceId"`
	LocalID        string    `gorm:"column:local_id;not null;uniqueIndex:ux_inventory_items_tenant_device_local,priority:3" json:"localId"`
	Version        int       `gorm:"column:version;not null;default:1" json:"version"`
	LastModifiedBy string    `gorm:"column:last_modified_by;not null" json:"lastModifiedBy"`
	Name           string    `gorm:"column:name;not null" json:"name"`
	Unit           string    `gorm:"column:unit" json:"unit"`
	Stock          int       `gorm:"column:stock;not null;default:0" json:"stock"`
	MinStock       int       `gorm:"column:min_stock;not null;default:0" json:"minStock"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updatedAt"`
}
