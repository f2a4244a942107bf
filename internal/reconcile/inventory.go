package reconcile

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warungpos/backend/internal/conflict"
	"github.com/warungpos/backend/internal/ledger"
	"github.com/warungpos/backend/pkg/db/models"
	"github.com/warungpos/backend/pkg/enums"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
)

type inventoryPayload struct {
	Version   int       `json:"version"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	MinStock  int       `json:"minStock"`
	Unit      string    `json:"unit"`
	Reason    string    `json:"reason"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type inventoryReconciler struct {
	conflicts conflict.Service
	events    ledger.Service
}

// NewInventoryReconciler builds the reconciler for the inventory table.
// Every accepted stock change is mirrored into the inventory event ledger
// inside the same transaction.
func NewInventoryReconciler(conflicts conflict.Service, events ledger.Service) Reconciler {
	return &inventoryReconciler{conflicts: conflicts, events: events}
}

func (r *inventoryReconciler) Table() enums.SyncTable {
	return enums.SyncTableInventory
}

func (r *inventoryReconciler) Apply(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	switch mut.Action {
	case enums.MutationActionCreate:
		return r.create(ctx, tx, mut)
	case enums.MutationActionUpdate:
		return r.update(ctx, tx, mut)
	case enums.MutationActionDelete:
		return r.delete(ctx, tx, mut)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported action for inventory")
	}
}

func (r *inventoryReconciler) create(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	payload, err := parseInventoryPayload(mut.Data)
	if err != nil {
		return nil, err
	}
	if payload.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	if mut.Replay {
		if existing, err := r.find(ctx, tx, mut); err == nil {
			return &Result{ServerID: existing.ID.String(), AlreadyApplied: true}, nil
		}
	}

	row := &models.InventoryItem{
		ID:             uuid.New(),
		TenantID:       mut.TenantID,
		DeviceID:       mut.DeviceID,
		LocalID:        mut.LocalID,
		Version:        1,
		LastModifiedBy: mut.DeviceID,
		Name:           payload.Name,
		Stock:          payload.Stock,
		MinStock:       payload.MinStock,
		Unit:           payload.Unit,
		UpdatedAt:      updateTime(payload.UpdatedAt, mut.Timestamp),
	}
	// DO NOTHING instead of a plain insert: a unique violation would abort
	// the surrounding postgres transaction and take the recovery lookup
	// down with it. RowsAffected 0 means the row already exists.
	res := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "device_id"}, {Name: "local_id"}},
		DoNothing: true,
	}).Create(row)
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "inserting inventory item")
	}
	if res.RowsAffected == 0 {
		existing, findErr := r.find(ctx, tx, mut)
		if findErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "loading existing inventory item")
		}
		return &Result{ServerID: existing.ID.String(), AlreadyApplied: true}, nil
	}

	if payload.Stock > 0 {
		_, err := r.events.RecordEvent(ctx, tx, ledger.RecordEventInput{
			TenantID:    mut.TenantID,
			InventoryID: row.ID,
			EventType:   enums.InventoryEventTypeInitial,
			Quantity:    payload.Stock,
			Unit:        payload.Unit,
			Reason:      "initial stock",
			DeviceID:    mut.DeviceID,
			Version:     row.Version,
		})
		if err != nil {
			return nil, err
		}
	}
	return &Result{ServerID: row.ID.String()}, nil
}

func (r *inventoryReconciler) update(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	payload, err := parseInventoryPayload(mut.Data)
	if err != nil {
		return nil, err
	}
	if payload.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	existing, err := r.find(ctx, tx, mut)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return r.create(ctx, tx, mut)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up inventory item")
	}

	res := tx.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND version = ?", existing.ID, payload.Version).
		Updates(map[string]any{
			"name":             payload.Name,
			"stock":            payload.Stock,
			"min_stock":        payload.MinStock,
			"unit":             payload.Unit,
			"version":          gorm.Expr("version + 1"),
			"last_modified_by": mut.DeviceID,
			"updated_at":       updateTime(payload.UpdatedAt, mut.Timestamp),
		})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating inventory item")
	}
	if res.RowsAffected == 0 {
		// A concurrent accepted write bumps the version, so the guarded
		// update above cannot race past a stale snapshot of existing.
		return r.conflictResult(ctx, tx, mut, existing.ID)
	}

	if delta := payload.Stock - existing.Stock; delta != 0 {
		eventType := enums.InventoryEventTypeStockIn
		quantity := delta
		if delta < 0 {
			eventType = enums.InventoryEventTypeStockOut
			quantity = -delta
		}
		reason := payload.Reason
		if reason == "" {
			reason = "stock adjustment"
		}
		_, err := r.events.RecordEvent(ctx, tx, ledger.RecordEventInput{
			TenantID:    mut.TenantID,
			InventoryID: existing.ID,
			EventType:   eventType,
			Quantity:    quantity,
			Unit:        payload.Unit,
			Reason:      reason,
			DeviceID:    mut.DeviceID,
			Version:     payload.Version + 1,
		})
		if err != nil {
			return nil, err
		}
	}
	return &Result{ServerID: existing.ID.String()}, nil
}

func (r *inventoryReconciler) delete(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	payload, err := parseInventoryPayload(mut.Data)
	if err != nil {
		return nil, err
	}

	existing, err := r.find(ctx, tx, mut)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return &Result{AlreadyApplied: true}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up inventory item")
	}

	res := tx.WithContext(ctx).
		Where("id = ? AND version = ?", existing.ID, payload.Version).
		Delete(&models.InventoryItem{})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "deleting inventory item")
	}
	if res.RowsAffected == 0 {
		return r.conflictResult(ctx, tx, mut, existing.ID)
	}
	return &Result{ServerID: existing.ID.String()}, nil
}

func (r *inventoryReconciler) find(ctx context.Context, tx *gorm.DB, mut Mutation) (*models.InventoryItem, error) {
	var row models.InventoryItem
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND device_id = ? AND local_id = ?", mut.TenantID, mut.DeviceID, mut.LocalID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *inventoryReconciler) conflictResult(ctx context.Context, tx *gorm.DB, mut Mutation, entityID uuid.UUID) (*Result, error) {
	var current models.InventoryItem
	if err := tx.WithContext(ctx).Where("id = ?", entityID).First(&current).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading inventory item for conflict")
	}
	serverData, err := json.Marshal(current)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding inventory item state")
	}
	if _, err := r.conflicts.RecordVersionMismatch(ctx, tx, conflict.VersionMismatchInput{
		TenantID:   mut.TenantID,
		EntityType: mut.Table,
		EntityID:   entityID,
		ClientData: mut.Data,
		ServerData: serverData,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording conflict")
	}
	return &Result{ServerID: entityID.String(), Conflict: true, ServerData: serverData}, nil
}

func parseInventoryPayload(data []byte) (*inventoryPayload, error) {
	var payload inventoryPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inventory payload")
		}
	}
	return &payload, nil
}
