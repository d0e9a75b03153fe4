package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"finledger/internal/config"
	"finledger/internal/core"
	applog "finledger/internal/log"
	"finledger/internal/services"
	"finledger/internal/storage"
)

// recurring-worker runs the daily recurring-transaction sweep on a cron
// schedule. Each run materializes the rules due on the current date through
// the same mutation path the API uses.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     cfg.LogLevel,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	processor := services.NewRecurringProcessor(repo, services.NewTransactionService(repo))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweep := func() {
		target := core.Today()
		result, err := processor.ProcessDue(ctx, defaultUserID, target)
		if err != nil {
			logger.Error("Sweep failed", "error", err, "target_date", target.String())
			return
		}
		logger.Info("Sweep complete",
			"processed", result.ProcessedCount,
			"target_date", result.Date.String())
	}

	// Catch up immediately on startup, then follow the schedule.
	logger.Info("Running initial sweep")
	sweep()

	c := cron.New()
	if _, err := c.AddFunc(cfg.RecurringCron, sweep); err != nil {
		logger.Error("Invalid cron schedule", "error", err, "schedule", cfg.RecurringCron)
		os.Exit(1)
	}
	c.Start()
	logger.Info("Recurring worker started", "schedule", cfg.RecurringCron, "db", cfg.SQLiteDBPath)

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached while waiting for running sweep")
	}
	logger.Info("Recurring worker stopped")
}

// defaultUserID mirrors the API boundary's owner resolution for this
// single-user deployment.
const defaultUserID int64 = 1
