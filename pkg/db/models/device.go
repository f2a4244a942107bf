package models

import (
	"time"

	"github.com/google/uuid"
)

// Device is one till/terminal belonging to a tenant. The device chooses its
// own stable identifier before first contact, so the key is a string rather
// than a server-assigned UUID.
type Device struct {
	ID          string     `gorm:"column:id;primaryKey"`
	TenantID    uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index"`
	DisplayName string     `gorm:"column:display_name"`
	LastSeenAt  *time.Time `gorm:"column:last_seen_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
