package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warungpos/backend/internal/idempotency"
	"github.com/warungpos/backend/internal/registry"
	"github.com/warungpos/backend/internal/synclog"
	"github.com/warungpos/backend/pkg/enums"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/logger"
	"github.com/warungpos/backend/pkg/metrics"
	"github.com/warungpos/backend/pkg/syncwire"
)

// Submission is one wire-level mutation after authentication: the table from
// the URL plus the decoded request body and the claims-derived identity.
type Submission struct {
	TenantID uuid.UUID
	DeviceID string
	Table    enums.SyncTable
	Request  syncwire.MutationRequest
}

// Service is the server-side entry point for the sync protocol. It
// authorizes, applies and audits one mutation per call.
type Service interface {
	Submit(ctx context.Context, sub Submission) (*syncwire.MutationResponse, error)
}

// TxRunner runs fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx       TxRunner
	registry *Registry
	devices  registry.Service
	guard    *idempotency.Guard
	audit    synclog.Service
	metrics  *metrics.SyncMetrics
	logg     *logger.Logger
}

// NewService wires the reconcile service. guard and metrics may be nil; the
// unique index on every synced table keeps creates idempotent without the
// advisory Redis guard.
func NewService(
	tx TxRunner,
	reg *Registry,
	devices registry.Service,
	guard *idempotency.Guard,
	audit synclog.Service,
	m *metrics.SyncMetrics,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if reg == nil {
		return nil, fmt.Errorf("reconciler registry required")
	}
	if devices == nil {
		return nil, fmt.Errorf("device registry service required")
	}
	if audit == nil {
		return nil, fmt.Errorf("sync log service required")
	}
	return &service{
		tx:       tx,
		registry: reg,
		devices:  devices,
		guard:    guard,
		audit:    audit,
		metrics:  m,
		logg:     logg,
	}, nil
}

func (s *service) Submit(ctx context.Context, sub Submission) (*syncwire.MutationResponse, error) {
	started := time.Now()

	mut, err := s.validate(sub)
	if err != nil {
		s.reject(ctx, sub, err, "validation")
		return nil, err
	}

	if err := s.devices.Authorize(ctx, mut.DeviceID, mut.TenantID); err != nil {
		s.reject(ctx, sub, err, "authorization")
		return nil, err
	}
	s.devices.Touch(ctx, mut.DeviceID)

	rec, ok := s.registry.Resolve(mut.Table)
	if !ok {
		err := pkgerrors.New(pkgerrors.CodeValidation, "unknown sync table")
		s.reject(ctx, sub, err, "validation")
		return nil, err
	}

	guarded := s.markCreate(ctx, &mut)

	var result *Result
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		res, err := rec.Apply(ctx, tx, mut)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if txErr != nil {
		if guarded {
			s.unmarkCreate(ctx, mut)
		}
		s.reject(ctx, sub, txErr, rejectReason(txErr))
		return nil, txErr
	}

	s.audit.Record(ctx, synclog.Entry{
		TenantID: mut.TenantID,
		DeviceID: mut.DeviceID,
		Action:   mut.Action,
		Table:    mut.Table,
		RecordID: result.ServerID,
		Data:     mut.Data,
		Success:  true,
	})

	if s.metrics != nil {
		s.metrics.ObserveDuration(string(mut.Table), string(mut.Action), time.Since(started))
		if result.Conflict {
			s.metrics.IncConflict(string(mut.Table))
		} else {
			s.metrics.IncApplied(string(mut.Table), string(mut.Action))
		}
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"table":    string(mut.Table),
			"action":   string(mut.Action),
			"conflict": result.Conflict,
		})
		s.logg.Info(logCtx, "mutation reconciled")
	}

	return toResponse(result), nil
}

func (s *service) validate(sub Submission) (Mutation, error) {
	if !sub.Table.IsValid() {
		return Mutation{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown sync table")
	}
	if !sub.Request.Action.IsValid() {
		return Mutation{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown mutation action")
	}
	if sub.Request.RecordID == "" {
		return Mutation{}, pkgerrors.New(pkgerrors.CodeValidation, "recordId is required")
	}
	if sub.DeviceID == "" {
		return Mutation{}, pkgerrors.New(pkgerrors.CodeValidation, "device id is required")
	}
	if sub.Request.DeviceID != "" && sub.Request.DeviceID != sub.DeviceID {
		return Mutation{}, pkgerrors.New(pkgerrors.CodeForbidden, "body device id does not match credentials")
	}
	if len(sub.Request.Data) > 0 && !json.Valid(sub.Request.Data) {
		return Mutation{}, pkgerrors.New(pkgerrors.CodeValidation, "payload is not valid JSON")
	}
	return Mutation{
		TenantID:  sub.TenantID,
		DeviceID:  sub.DeviceID,
		Action:    sub.Request.Action,
		Table:     sub.Table,
		LocalID:   sub.Request.RecordID,
		Data:      sub.Request.Data,
		Timestamp: sub.Request.Timestamp,
	}, nil
}

// markCreate consults the advisory replay guard for CREATE mutations. Guard
// failures degrade to a plain create; the unique index still protects us.
// Returns true when this call set the mark and owns its cleanup on failure.
func (s *service) markCreate(ctx context.Context, mut *Mutation) bool {
	if s.guard == nil || mut.Action != enums.MutationActionCreate {
		return false
	}
	seen, err := s.guard.CheckAndMark(ctx, mut.TenantID, mut.DeviceID, mut.Table, mut.LocalID)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithTable(ctx, string(mut.Table)), "replay guard unavailable, continuing without it")
		}
		return false
	}
	mut.Replay = seen
	return !seen
}

func (s *service) unmarkCreate(ctx context.Context, mut Mutation) {
	if err := s.guard.Unmark(ctx, mut.TenantID, mut.DeviceID, mut.Table, mut.LocalID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithTable(ctx, string(mut.Table)), "failed to clear replay guard mark")
	}
}

func (s *service) reject(ctx context.Context, sub Submission, cause error, reason string) {
	s.audit.Record(ctx, synclog.Entry{
		TenantID: sub.TenantID,
		DeviceID: sub.DeviceID,
		Action:   sub.Request.Action,
		Table:    sub.Table,
		RecordID: sub.Request.RecordID,
		Data:     sub.Request.Data,
		Success:  false,
		Error:    cause,
	})
	if s.metrics != nil {
		s.metrics.IncRejected(string(sub.Table), reason)
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"table":  string(sub.Table),
			"action": string(sub.Request.Action),
			"reason": reason,
		})
		s.logg.Warn(logCtx, "mutation rejected")
	}
}

func rejectReason(err error) string {
	if coded := pkgerrors.As(err); coded != nil {
		return string(coded.Code())
	}
	return string(pkgerrors.CodeInternal)
}

func toResponse(result *Result) *syncwire.MutationResponse {
	resp := &syncwire.MutationResponse{
		Success: true,
		Data: &syncwire.MutationResult{
			ServerID:  result.ServerID,
			Synced:    true,
			Timestamp: time.Now(),
		},
	}
	if result.Conflict {
		resp.Conflict = true
		resp.ServerData = result.ServerData
	}
	return resp
}
