package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warungpos/backend/api/controllers"
	"github.com/warungpos/backend/api/middleware"
	"github.com/warungpos/backend/internal/conflict"
	"github.com/warungpos/backend/internal/ledger"
	"github.com/warungpos/backend/internal/reconcile"
	"github.com/warungpos/backend/internal/registry"
	"github.com/warungpos/backend/pkg/config"
	"github.com/warungpos/backend/pkg/db"
	"github.com/warungpos/backend/pkg/logger"
	"github.com/warungpos/backend/pkg/redis"
)

// NewRouter wires the sync server's HTTP surface. Every /api/v1 route runs
// behind device bearer auth; health and metrics stay open.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	reconcileService reconcile.Service,
	registryService registry.Service,
	conflictService conflict.Service,
	ledgerService ledger.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisP redis.Pinger
	if redisClient != nil {
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/devices/register", controllers.RegisterDevice(registryService, logg))
		r.Get("/sync/conflicts", controllers.ListConflicts(conflictService, logg))
		r.Post("/sync/{table}", controllers.SyncMutation(reconcileService, logg))
		r.Get("/inventory/{inventoryId}/ledger", controllers.InventoryLedger(ledgerService, logg))
	})

	return r
}
