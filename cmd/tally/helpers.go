package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/tally/internal/engine"
	"github.com/Veraticus/tally/internal/importer"
	"github.com/Veraticus/tally/internal/storage"
)

// openLedger opens the configured ledger and brings its schema up to date.
func openLedger(ctx context.Context) (*storage.SQLiteStorage, func(), error) {
	store, err := storage.NewSQLiteStorage(appConfig.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}
	return store, cleanup, nil
}

func newEngine(store *storage.SQLiteStorage) *engine.ReconciliationEngine {
	return engine.New(store, engine.WithLogger(slog.Default()))
}

func newOrchestrator(store *storage.SQLiteStorage, opts ...importer.OrchestratorOption) *importer.Orchestrator {
	registry := importer.DefaultRegistry(importer.Account{
		Type:   appConfig.Import.AccountType,
		Number: appConfig.Import.AccountNumber,
	})
	opts = append([]importer.OrchestratorOption{
		importer.WithSkipExisting(appConfig.Import.SkipExisting),
		importer.WithOrchestratorLogger(slog.Default()),
	}, opts...)
	return importer.NewOrchestrator(registry, newEngine(store), store, opts...)
}

func printf(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

func printLine(w io.Writer, s string) {
	printf(w, "%s\n", s)
}
