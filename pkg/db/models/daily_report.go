package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyReport is keyed by report date per tenant and reconciled without a
// version check: the latest accepted write simply overwrites.
type DailyReport struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID       uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_daily_reports_tenant_date,priority:1"`
	ReportDate     string          `gorm:"column:report_date;not null;uniqueIndex:ux_daily_reports_tenant_date,priority:2"`
	LastModifiedBy string          `gorm:"column:last_modified_by;not null"`
	TotalSales     decimal.Decimal `gorm:"column:total_sales;type:numeric(14,2);not null"`
	OrderCount     int             `gorm:"column:order_count;not null;default:0"`
	CashTotal      decimal.Decimal `gorm:"column:cash_total;type:numeric(14,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}
