package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warungpos/backend/api/middleware"
	"github.com/warungpos/backend/api/responses"
	"github.com/warungpos/backend/api/validators"
	"github.com/warungpos/backend/internal/reconcile"
	"github.com/warungpos/backend/pkg/enums"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/logger"
	"github.com/warungpos/backend/pkg/syncwire"
)

// tableByWirePath maps URL path segments to logical table tags. The daily
// report endpoint is kebab-case on the wire while its tag is camelCase.
var tableByWirePath = map[string]enums.SyncTable{
	"pesanan":      enums.SyncTableOrders,
	"menu":         enums.SyncTableMenu,
	"inventory":    enums.SyncTableInventory,
	"daily-report": enums.SyncTableDailyReport,
}

// SyncMutation accepts one mutation for the table named in the URL and runs
// it through the reconciler. Conflicts come back as HTTP 200 with the
// conflict flag set; the queued client treats them as resolved.
func SyncMutation(svc reconcile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		table, ok := tableByWirePath[chi.URLParam(r, "table")]
		if !ok {
			responses.WriteSyncError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown sync table"))
			return
		}

		var req syncwire.MutationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteSyncError(ctx, logg, w, err)
			return
		}

		resp, err := svc.Submit(ctx, reconcile.Submission{
			TenantID: middleware.TenantIDFromContext(ctx),
			DeviceID: middleware.DeviceIDFromContext(ctx),
			Table:    table,
			Request:  req,
		})
		if err != nil {
			responses.WriteSyncError(ctx, logg, w, err)
			return
		}
		responses.WriteSyncResponse(w, resp)
	}
}
