package main

import (
	"context"
	"errors"
	"os"
	"time"

	"pokerledger/internal/amqp"
	"pokerledger/internal/cli"
	"pokerledger/internal/storage"
	"pokerledger/internal/worker"
)

// The audit worker consumes record change events from the broker and archives
// them into the SQLite audit log. Unlike the web binary, a missing broker is
// fatal here: the worker has nothing else to do.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open audit database", "db_path", cfg.SQLiteDBPath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	archiver := worker.NewArchiver(repo)

	_, done := cli.GracefulShutdown(logger, 10*time.Second, cancel)

	logger.Info("Starting audit worker",
		"db_path", cfg.SQLiteDBPath,
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	if err := archiver.Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	<-done
	logger.Info("Worker stopped")
}
