package conflict

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warungpos/backend/pkg/db/models"
	"github.com/warungpos/backend/pkg/enums"
)

// Service records version-mismatch conflicts. The automatic resolution is
// always SERVER_WINS: the stored row stays authoritative and the losing
// client is handed the current server state to rebase against.
type Service interface {
	RecordVersionMismatch(ctx context.Context, tx *gorm.DB, input VersionMismatchInput) (*models.ConflictRecord, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.ConflictRecord, error)
}

// VersionMismatchInput captures both sides of a conflicting update.
type VersionMismatchInput struct {
	TenantID   uuid.UUID
	EntityType enums.SyncTable
	EntityID   uuid.UUID
	ClientData json.RawMessage
	ServerData json.RawMessage
}

type service struct {
	repo Repository
}

// NewService wires a conflict service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("conflict repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RecordVersionMismatch(ctx context.Context, tx *gorm.DB, input VersionMismatchInput) (*models.ConflictRecord, error) {
	if input.TenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	if !input.EntityType.IsValid() {
		return nil, fmt.Errorf("invalid entity type %q", input.EntityType)
	}
	if input.EntityID == uuid.Nil {
		return nil, fmt.Errorf("entity id is required")
	}

	now := time.Now()
	record := &models.ConflictRecord{
		ID:           uuid.New(),
		TenantID:     input.TenantID,
		EntityType:   input.EntityType,
		EntityID:     input.EntityID,
		ConflictType: enums.ConflictTypeVersionMismatch,
		ClientData:   input.ClientData,
		ServerData:   input.ServerData,
		Resolution:   enums.ConflictResolutionServerWins,
		ResolvedBy:   "system",
		ResolvedAt:   &now,
	}

	if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.ConflictRecord, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	return s.repo.ListByTenant(ctx, tenantID, limit)
}
