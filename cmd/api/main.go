package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/warungpos/backend/api/routes"
	"github.com/warungpos/backend/internal/conflict"
	"github.com/warungpos/backend/internal/idempotency"
	"github.com/warungpos/backend/internal/ledger"
	"github.com/warungpos/backend/internal/reconcile"
	"github.com/warungpos/backend/internal/registry"
	"github.com/warungpos/backend/internal/synclog"
	"github.com/warungpos/backend/pkg/config"
	"github.com/warungpos/backend/pkg/db"
	"github.com/warungpos/backend/pkg/logger"
	"github.com/warungpos/backend/pkg/metrics"
	"github.com/warungpos/backend/pkg/migrate"
	"github.com/warungpos/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis only backs the advisory create-replay guard; the server runs
	// without it.
	var guard *idempotency.Guard
	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Warn(context.Background(), "redis unavailable, create replay guard disabled")
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		guard, err = idempotency.NewGuard(redisClient, cfg.Sync.CreateGuardTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to build replay guard", err)
			os.Exit(1)
		}
	}

	registryService, err := registry.NewService(registry.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create registry service", err)
		os.Exit(1)
	}
	synclogService, err := synclog.NewService(synclog.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync log service", err)
		os.Exit(1)
	}
	conflictService, err := conflict.NewService(conflict.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create conflict service", err)
		os.Exit(1)
	}
	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	reconcilers := reconcile.NewRegistry(
		reconcile.NewOrderReconciler(conflictService),
		reconcile.NewMenuReconciler(conflictService),
		reconcile.NewInventoryReconciler(conflictService, ledgerService),
		reconcile.NewDailyReportReconciler(),
	)
	reconcileService, err := reconcile.NewService(
		dbClient,
		reconcilers,
		registryService,
		guard,
		synclogService,
		metrics.NewSyncMetrics(prometheus.DefaultRegisterer),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting sync api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient,
			reconcileService, registryService, conflictService, ledgerService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "sync api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
