package reconcile

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warungpos/backend/internal/conflict"
	"github.com/warungpos/backend/pkg/db/models"
	"github.com/warungpos/backend/pkg/enums"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
)

type menuPayload struct {
	Version   int             `json:"version"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type menuReconciler struct {
	conflicts conflict.Service
}

// NewMenuReconciler builds the reconciler for the menu table.
func NewMenuReconciler(conflicts conflict.Service) Reconciler {
	return &menuReconciler{conflicts: conflicts}
}

func (r *menuReconciler) Table() enums.SyncTable {
	return enums.SyncTableMenu
}

func (r *menuReconciler) Apply(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	switch mut.Action {
	case enums.MutationActionCreate:
		return r.create(ctx, tx, mut)
	case enums.MutationActionUpdate:
		return r.update(ctx, tx, mut)
	case enums.MutationActionDelete:
		return r.delete(ctx, tx, mut)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported action for menu")
	}
}

func (r *menuReconciler) create(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	payload, err := parseMenuPayload(mut.Data)
	if err != nil {
		return nil, err
	}

	if mut.Replay {
		if existing, err := r.find(ctx, tx, mut); err == nil {
			return &Result{ServerID: existing.ID.String(), AlreadyApplied: true}, nil
		}
	}

	row := &models.MenuItem{
		ID:             uuid.New(),
		TenantID:       mut.TenantID,
		DeviceID:       mut.DeviceID,
		LocalID:        mut.LocalID,
		Version:        1,
		LastModifiedBy: mut.DeviceID,
		Name:           payload.Name,
		Category:       payload.Category,
		Price:          payload.Price,
		Available:      payload.Available,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "inserting menu item")
	}
	if res.RowsAffected == 0 {
		existing, findErr := r.find(ctx, tx, mut)
		if findErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "loading existing menu item")
		}
		return &Result{ServerID: existing.ID.String(), AlreadyApplied: true}, nil
	}
	return &Result{ServerID: row.ID.String()}, nil
}

func (r *menuReconciler) update(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	payload, err := parseMenuPayload(mut.Data)
	if err != nil {
		return nil, err
	}

	existing, err := r.find(ctx, tx, mut)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return r.create(ctx, tx, mut)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up menu item")
	}

	res := tx.WithContext(ctx).
		Model(&models.MenuItem{}).
		Where("id = ? AND version = ?", existing.ID, payload.Version).
		Updates(map[string]any{
			"name":             payload.Name,
			"category":         payload.Category,
			"price":            payload.Price,
			"available":        payload.Available,
			"version":          gorm.Expr("version + 1"),
			"last_modified_by": mut.DeviceID,
			"updated_at":       updateTime(payload.UpdatedAt, mut.Timestamp),
		})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating menu item")
	}
	if res.RowsAffected == 0 {
		return r.conflictResult(ctx, tx, mut, existing.ID)
	}
	return &Result{ServerID: existing.ID.String()}, nil
}

func (r *menuReconciler) delete(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	payload, err := parseMenuPayload(mut.Data)
	if err != nil {
		return nil, err
	}

	existing, err := r.find(ctx, tx, mut)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return &Result{AlreadyApplied: true}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up menu item")
	}

	res := tx.WithContext(ctx).
		Where("id = ? AND version = ?", existing.ID, payload.Version).
		Delete(&models.MenuItem{})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "deleting menu item")
	}
	if res.RowsAffected == 0 {
		return r.conflictResult(ctx, tx, mut, existing.ID)
	}
	return &Result{ServerID: existing.ID.String()}, nil
}

func (r *menuReconciler) find(ctx context.Context, tx *gorm.DB, mut Mutation) (*models.MenuItem, error) {
	var row models.MenuItem
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND device_id = ? AND local_id = ?", mut.TenantID, mut.DeviceID, mut.LocalID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *menuReconciler) conflictResult(ctx context.Context, tx *gorm.DB, mut Mutation, entityID uuid.UUID) (*Result, error) {
	var current models.MenuItem
	if err := tx.WithContext(ctx).Where("id = ?", entityID).First(&current).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading menu item for conflict")
	}
	serverData, err := json.Marshal(current)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding menu item state")
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

func parseMenuPayload(data []byte) (*menuPayload, error) {
	var payload menuPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid menu payload")
		}
	}
	return &payload, nil
}
