package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/warungpos/backend/pkg/enums"
)

// SyncLogEntry records every accepted or rejected sync attempt. It is an
// operational side channel distinct from the conflict record log.
type SyncLogEntry struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	TenantID  uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null;index"`
	DeviceID  string               `gorm:"column:device_id;not null"`
	Action    enums.MutationAction `gorm:"column:action;not null"`
	Table     enums.SyncTable      `gorm:"column:table_name;not null"`
	RecordID  string               `gorm:"column:record_id"`
	Data      json.RawMessage      `gorm:"column:data;type:jsonb"`
	Success   bool                 `gorm:"column:success;not null"`
	Error     *string              `gorm:"column:error"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the storage name explicit since the struct field set
// includes a column called table_name.
func (SyncLogEntry) TableName() string {
	return "sync_log_entries"
}
