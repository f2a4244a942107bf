package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/warungpos/backend/pkg/enums"
)

// ConflictRecord preserves both sides of a version-mismatched update.
// Immutable once written except Resolution/ResolvedAt/Notes, which an
// administrative workflow may later change.
type ConflictRecord struct {
	ID           uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	TenantID     uuid.UUID                `gorm:"column:tenant_id;type:uuid;not null;index"`
	EntityType   enums.SyncTable          `gorm:"column:entity_type;not null"`
	EntityID     uuid.UUID                `gorm:"column:entity_id;type:uuid;not null"`
	ConflictType enums.ConflictType       `gorm:"column:conflict_type;not null"`
	ClientData   json.RawMessage          `gorm:"column:client_data;type:jsonb"`
	ServerData   json.RawMessage          `gorm:"column:server_data;type:jsonb"`
	Resolution   enums.ConflictResolution `gorm:"column:resolution;not null"`
	ResolvedBy   string                   `gorm:"column:resolved_by;not null"`
	Notes        *string                  `gorm:"column:notes"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	ResolvedAt   *time.Time               `gorm:"column:resolved_at"`
}
