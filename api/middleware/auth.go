package middleware

import (
	"net/http"
	"strings"

	"github.com/warungpos/backend/api/responses"
	pkgauth "github.com/warungpos/backend/pkg/auth"
	"github.com/warungpos/backend/pkg/config"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/logger"
)

// Auth validates a device bearer token and seeds the request context with the
// tenant and device identity.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseSyncToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithIdentity(r.Context(), claims.TenantID, claims.DeviceID)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"tenant_id": claims.TenantID.String(),
					"device_id": claims.DeviceID,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
