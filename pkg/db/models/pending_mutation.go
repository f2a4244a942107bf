package models

import (
	"encoding/json"
	"time"

	"github.com/warungpos/backend/pkg/enums"
)

// PendingMutation is one local write awaiting transmission, stored in the
// device-local SQLite queue. Entries are never deleted: the dispatcher flips
// Synced on success and increments RetryCount on failure. An entry past the
// retry ceiling is terminally failed until a manual resync resets it.
type PendingMutation struct {
	ID         uint                 `gorm:"column:id;primaryKey;autoIncrement"`
	Action     enums.MutationAction `gorm:"column:action;not null"`
	Table      enums.SyncTable      `gorm:"column:table_name;not null"`
	LocalID    string               `gorm:"column:local_id;not null"`
	Payload    json.RawMessage      `gorm:"column:payload"`
	EnqueuedAt time.Time            `gorm:"column:enqueued_at;not null"`
	Synced     bool                 `gorm:"column:synced;not null;default:false"`
	RetryCount int                  `gorm:"column:retry_count;not null;default:0"`
	LastError  *string              `gorm:"column:last_error"`
}

// TableName pins the queue table name in the local store.
func (PendingMutation) TableName() string {
	return "pending_mutations"
}
