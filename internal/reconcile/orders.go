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

type orderPayload struct {
	Version      int             `json:"version"`
	CustomerName string          `json:"customerName"`
	Status       string          `json:"status"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	PaidAmount   decimal.Decimal `json:"paidAmount"`
	Items        json.RawMessage `json:"items"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type orderReconciler struct {
	conflicts conflict.Service
}

// NewOrderReconciler builds the reconciler for the orders table.
func NewOrderReconciler(conflicts conflict.Service) Reconciler {
	return &orderReconciler{conflicts: conflicts}
}

func (r *orderReconciler) Table() enums.SyncTable {
	return enums.SyncTableOrders
}

func (r *orderReconciler) Apply(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	switch mut.Action {
	case enums.MutationActionCreate:
		return r.create(ctx, tx, mut)
	case enums.MutationActionUpdate:
		return r.update(ctx, tx, mut)
	case enums.MutationActionDelete:
		return r.delete(ctx, tx, mut)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported action for orders")
	}
}

func (r *orderReconciler) create(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	payload, err := parseOrderPayload(mut.Data)
	if err != nil {
		return nil, err
	}

	if mut.Replay {
		if existing, err := r.find(ctx, tx, mut); err == nil {
			return &Result{ServerID: existing.ID.String(), AlreadyApplied: true}, nil
		}
	}

	row := &models.Order{
		ID:             uuid.New(),
		TenantID:       mut.TenantID,
		DeviceID:       mut.DeviceID,
		LocalID:        mut.LocalID,
		Version:        1,
		LastModifiedBy: mut.DeviceID,
		CustomerName:   payload.CustomerName,
		Status:         payload.Status,
		TotalAmount:    payload.TotalAmount,
		PaidAmount:     payload.PaidAmount,
		Items:          payload.Items,
		UpdatedAt:      updateTime(payload.UpdatedAt, mut.Timestamp),
	}
	if row.Status == "" {
		row.Status = "open"
	}
	// DO NOTHING instead of a plain insert: a unique violation would abort
	// the surrounding postgres transaction and take the recovery lookup
	// down with it. RowsAffected 0 means the row already exists.
	res := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "device_id"}, {Name: "local_id"}},
		DoNothing: true,
	}).Create(row)
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "inserting order")
	}
	if res.RowsAffected == 0 {
		existing, findErr := r.find(ctx, tx, mut)
		if findErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "loading existing order")
		}
		return &Result{ServerID: existing.ID.String(), AlreadyApplied: true}, nil
	}
	return &Result{ServerID: row.ID.String()}, nil
}

func (r *orderReconciler) update(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	payload, err := parseOrderPayload(mut.Data)
	if err != nil {
		return nil, err
	}

	existing, err := r.find(ctx, tx, mut)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			// Idempotent recovery for a lost prior create.
			return r.create(ctx, tx, mut)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up order")
	}

	res := tx.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND version = ?", existing.ID, payload.Version).
		Updates(map[string]any{
			"customer_name":    payload.CustomerName,
			"status":           payload.Status,
			"total_amount":     payload.TotalAmount,
			"paid_amount":      payload.PaidAmount,
			"items":            payload.Items,
			"version":          gorm.Expr("version + 1"),
			"last_modified_by": mut.DeviceID,
			"updated_at":       updateTime(payload.UpdatedAt, mut.Timestamp),
		})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating order")
	}
	if res.RowsAffected == 0 {
		return r.conflictResult(ctx, tx, mut, existing.ID)
	}
	return &Result{ServerID: existing.ID.String()}, nil
}

func (r *orderReconciler) delete(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	payload, err := parseOrderPayload(mut.Data)
	if err != nil {
		return nil, err
	}

	existing, err := r.find(ctx, tx, mut)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			// Already gone; a replayed delete succeeds.
			return &Result{AlreadyApplied: true}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up order")
	}

	res := tx.WithContext(ctx).
		Where("id = ? AND version = ?", existing.ID, payload.Version).
		Delete(&models.Order{})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "deleting order")
	}
	if res.RowsAffected == 0 {
		return r.conflictResult(ctx, tx, mut, existing.ID)
	}
	return &Result{ServerID: existing.ID.String()}, nil
}

func (r *orderReconciler) find(ctx context.Context, tx *gorm.DB, mut Mutation) (*models.Order, error) {
	var row models.Order
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND device_id = ? AND local_id = ?", mut.TenantID, mut.DeviceID, mut.LocalID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *orderReconciler) conflictResult(ctx context.Context, tx *gorm.DB, mut Mutation, entityID uuid.UUID) (*Result, error) {
	var current models.Order
	if err := tx.WithContext(ctx).Where("id = ?", entityID).First(&current).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading order for conflict")
	}
	serverData, err := json.Marshal(current)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding order state")
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

func parseOrderPayload(data []byte) (*orderPayload, error) {
	var payload orderPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order payload")
		}
	}
	return &payload, nil
}

func updateTime(payloadTime, requestTime time.Time) time.Time {
	if !payloadTime.IsZero() {
		return payloadTime
	}
	if !requestTime.IsZero() {
		return requestTime
	}
	return time.Now()
}
