// Package engine reconciles editing-surface diffs and import batches into the ledger.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/classifier"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// EligibilityThreshold is the number of confirmed rows the ledger must exceed before
// imported rows are categorized automatically.
const EligibilityThreshold = 10

// ModelLoader builds a predictor from the current ledger contents.
type ModelLoader func(records []model.Record) service.Predictor

// ReconciliationEngine applies diffs and import batches to a ledger.
type ReconciliationEngine struct {
	ledger    service.Ledger
	loadModel ModelLoader
	logger    *slog.Logger
}

// Option configures a ReconciliationEngine.
type Option func(*ReconciliationEngine)

// WithModelLoader replaces the classifier used for imports.
func WithModelLoader(fn ModelLoader) Option {
	return func(e *ReconciliationEngine) {
		e.loadModel = fn
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *ReconciliationEngine) {
		e.logger = l.With("component", "engine")
	}
}

// DefaultModelLoader retrains the naive Bayes classifier from every confirmed record.
func DefaultModelLoader(records []model.Record) service.Predictor {
	return classifier.LoadData(records)
}

// New creates a reconciliation engine over the given ledger.
func New(ledger service.Ledger, opts ...Option) *ReconciliationEngine {
	e := &ReconciliationEngine{
		ledger:    ledger,
		loadModel: DefaultModelLoader,
		logger:    slog.Default().With("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ItemError is the failure of a single edit within a diff.
type ItemError struct {
	Err error
	ID  int64
}

func (e ItemError) Error() string {
	return fmt.Sprintf("transaction %d: %v", e.ID, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// DiffResult reports what a diff changed. Edits that failed are listed in Errors;
// they did not prevent the rest of the diff from being applied.
type DiffResult struct {
	Updated []int64        `json:"updated"`
	Added   []model.Record `json:"added"`
	Errors  []ItemError    `json:"-"`
	Deleted int            `json:"deleted"`
}

// Err joins the per-item failures, or returns nil when every edit succeeded.
func (r *DiffResult) Err() error {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// ImportResult reports the outcome of an import batch.
type ImportResult struct {
	Records   []model.Record `json:"records"`
	Inserted  int            `json:"inserted"`
	Confirmed int            `json:"confirmed"`
	Predicted bool           `json:"predicted"`
}
