// Package testutil provides test helpers for building ledgers and records.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/storage"
)

// TestLedger is a migrated SQLite ledger living in the test's temp directory.
type TestLedger struct {
	*storage.SQLiteStorage
	t *testing.T
}

// NewTestLedger creates a fresh ledger and closes it when the test ends.
func NewTestLedger(t *testing.T) *TestLedger {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestLedger{SQLiteStorage: store, t: t}
}

// MustAppend appends rows at the ledger's next id or fails the test.
func (l *TestLedger) MustAppend(rows ...model.Payload) []model.Record {
	l.t.Helper()
	ctx := context.Background()

	next, err := l.NextID(ctx)
	if err != nil {
		l.t.Fatalf("failed to read next id: %v", err)
	}
	records, err := l.Append(ctx, rows, next)
	if err != nil {
		l.t.Fatalf("failed to append rows: %v", err)
	}
	return records
}

// MustScan returns every record or fails the test.
func (l *TestLedger) MustScan() []model.Record {
	l.t.Helper()

	records, err := l.Scan(context.Background())
	if err != nil {
		l.t.Fatalf("failed to scan ledger: %v", err)
	}
	return records
}

// MustGet returns the record with the given id or fails the test.
func (l *TestLedger) MustGet(id int64) model.Record {
	l.t.Helper()

	for _, r := range l.MustScan() {
		if r.ID == id {
			return r
		}
	}
	l.t.Fatalf("transaction %d not found", id)
	return model.Record{}
}
