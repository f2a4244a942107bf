package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warungpos/backend/pkg/db/models"
	"github.com/warungpos/backend/pkg/enums"
)

// Service defines operations on the append-only inventory ledger. Events are
// never mutated or deleted; the signed sum of a row's events must equal its
// mutable stock counter at every observed point.
type Service interface {
	RecordEvent(ctx context.Context, tx *gorm.DB, input RecordEventInput) (*models.InventoryEvent, error)
	History(ctx context.Context, inventoryID uuid.UUID) ([]models.InventoryEvent, error)
	// HistoryForTenant is History constrained to one tenant's rows, for the
	// authenticated read path.
	HistoryForTenant(ctx context.Context, tenantID, inventoryID uuid.UUID) ([]models.InventoryEvent, error)
	SumForInventory(ctx context.Context, inventoryID uuid.UUID) (int, error)
}

// RecordEventInput captures the immutable data an inventory event requires.
type RecordEventInput struct {
	TenantID      uuid.UUID
	InventoryID   uuid.UUID
	EventType     enums.InventoryEventType
	Quantity      int
	Unit          string
	Reason        string
	ReferenceType string
	DeviceID      string
	Version       int
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RecordEvent(ctx context.Context, tx *gorm.DB, input RecordEventInput) (*models.InventoryEvent, error) {
	if input.TenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	if input.InventoryID == uuid.Nil {
		return nil, fmt.Errorf("inventory id is required")
	}
	if !input.EventType.IsValid() {
		return nil, fmt.Errorf("invalid inventory event type %q", input.EventType)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be a positive magnitude, got %d", input.Quantity)
	}
	if input.DeviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}

	event := &models.InventoryEvent{
		ID:            uuid.New(),
		TenantID:      input.TenantID,
		InventoryID:   input.InventoryID,
		EventType:     input.EventType,
		Quantity:      input.Quantity,
		Unit:          input.Unit,
		Reason:        input.Reason,
		ReferenceType: input.ReferenceType,
		DeviceID:      input.DeviceID,
		Version:       input.Version,
	}

	if err := s.repo.WithTx(tx).Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) History(ctx context.Context, inventoryID uuid.UUID) ([]models.InventoryEvent, error) {
	if inventoryID == uuid.Nil {
		return nil, fmt.Errorf("inventory id is required")
	}
	return s.repo.ListByInventoryID(ctx, inventoryID)
}

func (s *service) HistoryForTenant(ctx context.Context, tenantID, inventoryID uuid.UUID) ([]models.InventoryEvent, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	if inventoryID == uuid.Nil {
		return nil, fmt.Errorf("inventory id is required")
	}
	return s.repo.ListByTenantAndInventory(ctx, tenantID, inventoryID)
}

// SumForInventory folds the ledger for one inventory row into its signed sum.
// Used as the consistency cross-check against the mutable stock counter.
func (s *service) SumForInventory(ctx context.Context, inventoryID uuid.UUID) (int, error) {
	events, err := s.History(ctx, inventoryID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, event := range events {
		total += event.EventType.Sign() * event.Quantity
	}
	return total, nil
}
