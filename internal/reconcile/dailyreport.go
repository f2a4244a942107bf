package reconcile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warungpos/backend/pkg/db/models"
	"github.com/warungpos/backend/pkg/enums"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
)

type dailyReportPayload struct {
	ReportDate string          `json:"reportDate"`
	TotalSales decimal.Decimal `json:"totalSales"`
	CashTotal  decimal.Decimal `json:"cashTotal"`
	OrderCount int             `json:"orderCount"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// dailyReportReconciler upserts on (tenant, report date). Reports carry no
// version column: the newest upload for a date wins outright.
type dailyReportReconciler struct{}

// NewDailyReportReconciler builds the reconciler for the dailyReport table.
func NewDailyReportReconciler() Reconciler {
	return &dailyReportReconciler{}
}

func (r *dailyReportReconciler) Table() enums.SyncTable {
	return enums.SyncTableDailyReport
}

func (r *dailyReportReconciler) Apply(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	switch mut.Action {
	case enums.MutationActionCreate, enums.MutationActionUpdate:
		return r.upsert(ctx, tx, mut)
	case enums.MutationActionDelete:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "daily reports cannot be deleted")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported action for daily reports")
	}
}

func (r *dailyReportReconciler) upsert(ctx context.Context, tx *gorm.DB, mut Mutation) (*Result, error) {
	var payload dailyReportPayload
	if len(mut.Data) > 0 {
		if err := json.Unmarshal(mut.Data, &payload); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid daily report payload")
		}
	}
	if payload.ReportDate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reportDate is required")
	}
	if _, err := time.Parse("2006-01-02", payload.ReportDate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reportDate must be YYYY-MM-DD")
	}

	row := &models.DailyReport{
		ID:             uuid.New(),
		TenantID:       mut.TenantID,
		LastModifiedBy: mut.DeviceID,
		ReportDate:     payload.ReportDate,
		TotalSales:     payload.TotalSales,
		CashTotal:      payload.CashTotal,
		OrderCount:     payload.OrderCount,
		UpdatedAt:      updateTime(payload.UpdatedAt, mut.Timestamp),
	}
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "report_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"last_modified_by", "total_sales", "cash_total",
				"order_count", "updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upserting daily report")
	}

	var saved models.DailyReport
	err = tx.WithContext(ctx).
		Where("tenant_id = ? AND report_date = ?", mut.TenantID, payload.ReportDate).
		First(&saved).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading daily report")
	}
	return &Result{ServerID: saved.ID.String()}, nil
}
