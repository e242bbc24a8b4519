// Command gastos-sync appends refreshed monthly summaries to a Google Sheets
// spreadsheet. It consumes the events published by the gastos server.
package main

import (
	"context"
	"errors"
	"os"

	"gastos/internal/amqp"
	"gastos/internal/cli"
	"gastos/internal/config"
	"gastos/internal/log"
	gsheet "gastos/internal/sheets/google"
	"gastos/internal/storage"
	"gastos/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateSync)
	logger = cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting gastos-sync")

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	store, err := storage.NewSQLiteStore(ctx, cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(cli.ExitStoreUnavailable)
	}
	defer store.Close()

	sheetsClient, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSummarySheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(cli.ExitConfig)
	}

	events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(cli.ExitConfig)
	}
	defer events.Close()

	syncWorker := worker.NewSummarySyncWorker(store, sheetsClient, logger.WithComponent(log.ComponentWorker))
	if err := syncWorker.Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Summary consumption failed", "error", err)
		return
	}
	logger.Info("Worker shutdown complete")
}
