package main

import (
	"context"
	"os"
	"time"

	"salesplot/internal/cli"
	"salesplot/internal/core"
	"salesplot/internal/log"
	"salesplot/internal/sources/csvfile"
)

// sales-import loads CSV_PATH into the SQLite store at SQLITE_DB_PATH so later
// report runs can use DATA_BACKEND=sqlite.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentImport)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	start := time.Now()
	table, err := csvfile.New(cfg.CSVPath).ReadTransactions(ctx)
	if err != nil {
		logger.Error("Failed to read CSV", log.FieldError, err, log.FieldPath, cfg.CSVPath)
		stop()
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	n, err := importTable(ctx, repo, table, cfg.ImportReplace, logger)
	if err != nil {
		logger.Error("Import failed", log.FieldError, err, "db_path", cfg.SQLiteDBPath)
		repo.Close()
		stop()
		os.Exit(1)
	}

	logger.Info("Import complete",
		log.FieldOperation, log.OpImport,
		log.FieldRows, n,
		"db_path", cfg.SQLiteDBPath,
		log.FieldDuration, time.Since(start).Milliseconds())
}

type importStore interface {
	ImportTransactions(ctx context.Context, t core.Table) (int, error)
	ReplaceTransactions(ctx context.Context, t core.Table) (removed int64, inserted int, err error)
}

// importTable appends the table, or swaps it for the stored rows in one
// transaction when replace is set.
func importTable(ctx context.Context, store importStore, table core.Table, replace bool, logger *log.Logger) (int, error) {
	if !replace {
		return store.ImportTransactions(ctx, table)
	}
	removed, n, err := store.ReplaceTransactions(ctx, table)
	if err != nil {
		return 0, err
	}
	logger.Info("Existing transactions replaced", "removed", removed, log.FieldRows, n)
	return n, nil
}
