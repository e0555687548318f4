// Command finboard-audit-worker consumes chat audit events from AMQP and
// stores them in SQLite.
package main

import (
	"context"
	"errors"
	"os"

	"finboard/internal/amqp"
	"finboard/internal/cli"
	applog "finboard/internal/log"
	"finboard/internal/storage"
	"finboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentAudit)

	cfg, err := cli.LoadConfig(logger)
	if err != nil {
		logger.Error("Configuration failed", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker", applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to connect to AMQP", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	w := worker.NewAuditWorker(repo, logger)
	logger.Info("Audit worker started", applog.FieldOperation, applog.OpConsume, "queue", cfg.AMQPQueue)

	err = client.ConsumeChatAudit(ctx, w.HandleAuditMessage)
	handled, dups, failures := w.Stats()
	if counts, cerr := repo.ChatAuditCounts(context.Background()); cerr == nil {
		logger.Info("Audit trail totals", "by_outcome", counts)
	}
	logger.Info("Audit worker stopped", "handled", handled, "duplicates", dups, "failures", failures)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer failed", applog.FieldError, err)
		os.Exit(1)
	}
}
