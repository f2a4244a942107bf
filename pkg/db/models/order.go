package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the server-owned projection of a till order. Version increments by
// exactly one on every accepted update; local copies are read-only.
type Order struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID       uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_orders_tenant_device_local,priority:1" json:"tenantId"`
	DeviceID       string          `gorm:"column:device_id;not null;uniqueIndex:ux_orders_tenant_device_local,priority:2" json:"deviceId"`
	LocalID        string          `gorm:"column:local_id;not null;uniqueIndex:ux_orders_tenant_device_local,priority:3" json:"localId"`
	Version        int             `gorm:"column:version;not null;default:1" json:"version"`
	LastModifiedBy string          `gorm:"column:last_modified_by;not null" json:"lastModifiedBy"`
	CustomerName   string          `gorm:"column:customer_name" json:"customerName"`
	Status         string          `gorm:"column:status;not null;default:'open'" json:"status"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null" json:"totalAmount"`
	PaidAmount     decimal.Decimal `gorm:"column:paid_amount;type:numeric(14,2);not null" json:"paidAmount"`
	Items          json.RawMessage `gorm:"column:items;type:jsonb" json:"items"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"column:updated_at" json:"updatedAt"`
}
