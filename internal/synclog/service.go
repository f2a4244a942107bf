package synclog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warungpos/backend/pkg/db/models"
	"github.com/warungpos/backend/pkg/enums"
	"github.com/warungpos/backend/pkg/logger"
)

// Service records every accepted or rejected sync attempt.
type Service interface {
	// Record appends one audit entry. A log write failure is swallowed with
	// a warning: the audit side channel must never fail the primary request.
	Record(ctx context.Context, entry Entry)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.SyncLogEntry, error)
}

// Entry captures one sync attempt's outcome.
type Entry struct {
	TenantID uuid.UUID
	DeviceID string
	Action   enums.MutationAction
	Table    enums.SyncTable
	RecordID string
	Data     json.RawMessage
	Success  bool
	Error    error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires a sync log service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sync log repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Record(ctx context.Context, entry Entry) {
	row := &models.SyncLogEntry{
		ID:        uuid.New(),
		TenantID:  entry.TenantID,
		DeviceID:  entry.DeviceID,
		Action:    entry.Action,
		Table:     entry.Table,
		RecordID:  entry.RecordID,
		Data:      entry.Data,
		Success:   entry.Success,
		CreatedAt: time.Now(),
	}
	if entry.Error != nil {
		msg := entry.Error.Error()
		row.Error = &msg
	}
	if err := s.repo.Create(ctx, row); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"table":  string(entry.Table),
			"action": string(entry.Action),
		})
		s.logg.Warn(logCtx, "failed to append sync log entry")
	}
}

func (s *service) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.SyncLogEntry, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	return s.repo.ListByTenant(ctx, tenantID, limit)
}
