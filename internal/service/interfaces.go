// Package service defines the interfaces shared between the application's components.
package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
)

// LedgerReader is the read side of the ledger.
type LedgerReader interface {
	// Scan returns every record in id order.
	Scan(ctx context.Context) ([]model.Record, error)
	// NextID returns the id the next appended record will receive.
	NextID(ctx context.Context) (int64, error)
	// ConfirmedCount returns how many records carry a non-empty category.
	ConfirmedCount(ctx context.Context) (int, error)
}

// LedgerWriter is the mutating side of the ledger.
type LedgerWriter interface {
	// Append assigns consecutive ids starting at nextID and writes every row, or none.
	Append(ctx context.Context, rows []model.Payload, nextID int64) ([]model.Record, error)
	// UpdateFields applies a partial update to exactly one record.
	UpdateFields(ctx context.Context, id int64, fields model.Fields) error
	// DeleteMany removes the given ids; ids that do not exist are ignored.
	DeleteMany(ctx context.Context, ids []int64) (int, error)
}

// LedgerTx is a ledger unit of work. Nothing it writes is visible until Commit.
type LedgerTx interface {
	LedgerReader
	LedgerWriter
	Commit() error
	Rollback() error
}

// Ledger is the persistent transaction ledger.
type Ledger interface {
	LedgerReader
	LedgerWriter
	BeginTx(ctx context.Context) (LedgerTx, error)
	// DropAll destroys every record and resets the id sequence.
	DropAll(ctx context.Context) error
	// CategorySummary sums amounts by category for dates in [start, end], compared lexically.
	CategorySummary(ctx context.Context, start, end string) (map[string]decimal.Decimal, error)
	// DateBounds returns the lexically first and last stored transaction dates.
	DateBounds(ctx context.Context) (first, last string, err error)
}

// Predictor assigns a category to each description, in input order.
type Predictor interface {
	Predict(descriptions []string) ([]string, error)
}
