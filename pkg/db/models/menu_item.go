package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem is the server-owned projection of a menu entry.
type MenuItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID       uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_menu_items_tenant_device_local,priority:1" json:"tenantId"`
	DeviceID       string          `gorm:"column:device_id;not null;uniqueIndex:ux_menu_items_tenant_device_local,priority:2" json:"deviceId"`
	LocalID        string          `gorm:"column:local_id;not null;uniqueIndex:ux_menu_items_tenant_device_local,priority:3" json:"localId"`
	Version        int             `gorm:"column:version;not null;default:1" json:"version"`
	LastModifiedBy string          `gorm:"column:last_modified_by;not null" json:"lastModifiedBy"`
	Name           string          `gorm:"column:name;not null" json:"name"`
	Category       string          `gorm:"column:category" json:"category"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Available      bool            `gorm:"column:available;not null;default:true" json:"available"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"column:updated_at" json:"updatedAt"`
}
