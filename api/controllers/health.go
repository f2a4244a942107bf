package controllers

import (
	"net/http"

	"github.com/warungpos/backend/api/responses"
	"github.com/warungpos/backend/pkg/config"
	"github.com/warungpos/backend/pkg/db"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/logger"
	"github.com/warungpos/backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WarungPOS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores. Redis is optional: the reconciler
// degrades without its replay guard, so a missing client does not fail
// readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-WarungPOS-Env", cfg.App.Env)

		deps := map[string]string{}
		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
			deps["database"] = "ok"
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				deps["redis"] = "degraded"
				if logg != nil {
					logg.Warn(ctx, "redis ping failed, replay guard degraded")
				}
			} else {
				deps["redis"] = "ok"
			}
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": deps})
	}
}
