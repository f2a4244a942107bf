package controllers

import (
	"net/http"
	"strconv"

	"github.com/warungpos/backend/api/middleware"
	"github.com/warungpos/backend/api/responses"
	"github.com/warungpos/backend/internal/conflict"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/logger"
)

const defaultConflictLimit = 50

// ListConflicts returns the tenant's conflict audit trail, newest first.
func ListConflicts(svc conflict.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit := defaultConflictLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			limit = parsed
		}

		records, err := svc.ListByTenant(ctx, middleware.TenantIDFromContext(ctx), limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"conflicts": records})
	}
}
