package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warungpos/backend/api/middleware"
	"github.com/warungpos/backend/api/responses"
	"github.com/warungpos/backend/internal/ledger"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/logger"
)

// InventoryLedger returns the append-only event history for one inventory
// row along with its signed sum, which must match the row's stock counter.
func InventoryLedger(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		inventoryID, err := uuid.Parse(chi.URLParam(r, "inventoryId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory id"))
			return
		}

		events, err := svc.HistoryForTenant(ctx, middleware.TenantIDFromContext(ctx), inventoryID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sum := 0
		for _, event := range events {
			sum += event.EventType.Sign() * event.Quantity
		}
		responses.WriteSuccess(w, map[string]any{
			"events":   events,
			"stockSum": sum,
		})
	}
}
