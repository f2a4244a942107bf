package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/warungpos/backend/internal/dispatcher"
	"github.com/warungpos/backend/internal/queue"
	"github.com/warungpos/backend/internal/syncclient"
	"github.com/warungpos/backend/pkg/config"
	"github.com/warungpos/backend/pkg/db"
	"github.com/warungpos/backend/pkg/logger"
	"github.com/warungpos/backend/pkg/metrics"
)

// syncd is the device-side daemon: it owns the local SQLite queue and drains
// it toward the sync server on a timer and on demand.
func main() {
	logg := logger.New(logger.Options{ServiceName: "syncd"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "syncd",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	localDB, err := db.OpenLocal(cfg.Local.QueuePath)
	if err != nil {
		logg.Error(context.Background(), "failed to open local queue store", err)
		os.Exit(1)
	}

	queueRepo, err := queue.NewRepository(localDB)
	if err != nil {
		logg.Error(context.Background(), "failed to create queue repository", err)
		os.Exit(1)
	}

	client, err := syncclient.New(cfg.Local)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync client", err)
		os.Exit(1)
	}

	svc, err := dispatcher.New(dispatcher.Options{
		Queue:         queueRepo,
		Transport:     client,
		Connectivity:  client,
		DeviceID:      cfg.Local.DeviceID,
		DrainInterval: cfg.Local.DrainInterval,
		MaxRetries:    cfg.Local.MaxRetries,
		Metrics:       metrics.NewDispatcherMetrics(prometheus.DefaultRegisterer),
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"device_id":      cfg.Local.DeviceID,
		"drain_interval": cfg.Local.DrainInterval.String(),
	})

	if pending, err := queueRepo.CountPending(ctx, cfg.Local.MaxRetries); err == nil {
		if failed, err := queueRepo.CountFailed(ctx, cfg.Local.MaxRetries); err == nil {
			startCtx := logg.WithFields(ctx, map[string]any{
				"pending": pending,
				"failed":  failed,
			})
			logg.Info(startCtx, "local queue state")
		}
	}
	logg.Info(ctx, "starting sync dispatcher")

	// SIGHUP is the manual resync: terminally failed entries get their
	// retry counters cleared and go back on the wire.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				reset, err := svc.ResetFailed(ctx)
				if err != nil {
					logg.Error(ctx, "manual resync failed", err)
					continue
				}
				logg.Info(logg.WithField(ctx, "reset", reset), "manual resync requested")
			}
		}
	}()

	// Push whatever accumulated while the daemon was down.
	svc.TriggerNow()
	svc.Run(ctx)

	logg.Info(ctx, "sync dispatcher stopped")
}
