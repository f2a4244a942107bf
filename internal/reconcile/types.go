package reconcile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warungpos/backend/pkg/enums"
)

// Mutation is one device write, authorized and ready to apply against the
// tenant store.
type Mutation struct {
	TenantID  uuid.UUID
	DeviceID  string
	Action    enums.MutationAction
	Table     enums.SyncTable
	LocalID   string
	Data      json.RawMessage
	Timestamp time.Time
	// Replay marks a CREATE the replay guard has already seen; the
	// reconciler resolves it to the existing row instead of inserting.
	Replay bool
}

// Result is the outcome of applying one mutation.
type Result struct {
	ServerID string
	// Conflict carries SERVER_WINS outcomes: the stored row was not
	// modified and ServerData holds its authoritative state.
	Conflict   bool
	ServerData json.RawMessage
	// AlreadyApplied marks a replayed CREATE resolved to its original row.
	AlreadyApplied bool
}

// Reconciler applies mutations for exactly one logical table. Implementations
// run inside the transaction the service opens and must keep the
// version-check-then-write step a single conditional update.
type Reconciler interface {
	Table() enums.SyncTable
	Apply(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error)
}

// Registry selects a reconciler by table tag at the boundary.
type Registry struct {
	byTable map[enums.SyncTable]Reconciler
}

// NewRegistry builds a registry from the provided reconcilers.
func NewRegistry(reconcilers ...Reconciler) *Registry {
	byTable := make(map[enums.SyncTable]Reconciler, len(reconcilers))
	for _, r := range reconcilers {
		byTable[r.Table()] = r
	}
	return &Registry{byTable: byTable}
}

// Resolve returns the reconciler for a table, or false when none is bound.
func (r *Registry) Resolve(table enums.SyncTable) (Reconciler, bool) {
	rec, ok := r.byTable[table]
	return rec, ok
}
