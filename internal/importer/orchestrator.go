package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/tally/internal/engine"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// BatchImporter commits a normalized batch to the ledger.
type BatchImporter interface {
	ImportBatch(ctx context.Context, payloads []model.Payload) (*engine.ImportResult, error)
}

// ProgressFunc is called after each file is normalized.
type ProgressFunc func(done, total int, path string)

// Orchestrator runs file imports end to end: normalize, de-duplicate, then hand the
// batch to the reconciliation engine.
type Orchestrator struct {
	registry     *Registry
	importer     BatchImporter
	ledger       service.LedgerReader
	logger       *slog.Logger
	progress     ProgressFunc
	skipExisting bool
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithSkipExisting drops rows whose key already exists in the ledger.
func WithSkipExisting(skip bool) OrchestratorOption {
	return func(o *Orchestrator) {
		o.skipExisting = skip
	}
}

// WithProgress reports per-file progress.
func WithProgress(fn ProgressFunc) OrchestratorOption {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// WithOrchestratorLogger sets the orchestrator's logger.
func WithOrchestratorLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = l.With("component", "importer")
	}
}

// NewOrchestrator creates an orchestrator. ledger is only read, to skip existing rows.
func NewOrchestrator(registry *Registry, importer BatchImporter, ledger service.LedgerReader, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		importer: importer,
		ledger:   ledger,
		logger:   slog.Default().With("component", "importer"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Batch is a normalized import that has not been committed yet.
type Batch struct {
	Payloads   []model.Payload
	Files      int
	Normalized int
	Duplicates int
	Existing   int
}

// Result is a committed import.
type Result struct {
	*engine.ImportResult
	Batch *Batch `json:"batch"`
}

// Prepare normalizes every file and filters duplicates without writing anything.
func (o *Orchestrator) Prepare(ctx context.Context, format string, paths []string) (*Batch, error) {
	normalizer, err := o.registry.Get(format)
	if err != nil {
		return nil, err
	}

	files := make([][]model.Payload, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := normalizeFile(normalizer, path)
		if err != nil {
			return nil, err
		}
		o.logger.Debug("Normalized file", "path", path, "rows", len(rows), "format", normalizer.Format())
		files = append(files, rows)
		if o.progress != nil {
			o.progress(i+1, len(paths), path)
		}
	}

	batch, err := o.filter(ctx, files...)
	if err != nil {
		return nil, err
	}
	batch.Files = len(paths)
	return batch, nil
}

// ImportFiles normalizes paths with the named format and imports them as one batch.
func (o *Orchestrator) ImportFiles(ctx context.Context, format string, paths []string) (*Result, error) {
	batch, err := o.Prepare(ctx, format, paths)
	if err != nil {
		return nil, err
	}
	return o.Commit(ctx, batch)
}

// ImportReader imports a single export already held in memory.
func (o *Orchestrator) ImportReader(ctx context.Context, format string, r io.Reader) (*Result, error) {
	normalizer, err := o.registry.Get(format)
	if err != nil {
		return nil, err
	}
	rows, err := normalizer.Normalize(r)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s import: %w", normalizer.Format(), err)
	}
	return o.ImportPayloads(ctx, rows)
}

// ImportPayloads imports rows from a source that is already canonical.
func (o *Orchestrator) ImportPayloads(ctx context.Context, payloads []model.Payload) (*Result, error) {
	batch, err := o.filter(ctx, payloads)
	if err != nil {
		return nil, err
	}
	return o.Commit(ctx, batch)
}

// Commit hands a prepared batch to the reconciliation engine.
func (o *Orchestrator) Commit(ctx context.Context, batch *Batch) (*Result, error) {
	res, err := o.importer.ImportBatch(ctx, batch.Payloads)
	if err != nil {
		return nil, err
	}
	o.logger.Info("Import complete",
		"files", batch.Files,
		"normalized", batch.Normalized,
		"duplicates", batch.Duplicates,
		"existing", batch.Existing,
		"inserted", res.Inserted)
	return &Result{ImportResult: res, Batch: batch}, nil
}

// filter drops rows that overlapping exports repeat and, when configured, rows already
// stored. Rows are counted per key: a file may hold the same key several times, and the
// import keeps as many copies as the file that holds the most of them.
func (o *Orchestrator) filter(ctx context.Context, files ...[]model.Payload) (*Batch, error) {
	batch := &Batch{}

	stored := map[string]int{}
	if o.skipExisting && o.ledger != nil {
		records, err := o.ledger.Scan(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			stored[r.Payload().Key()]++
		}
	}

	kept := map[string]int{}
	for _, rows := range files {
		batch.Normalized += len(rows)
		inFile := make(map[string]int, len(rows))
		for _, p := range rows {
			p.Category = ""
			key := p.Key()
			inFile[key]++
			switch {
			case inFile[key] <= kept[key]:
				batch.Duplicates++
				continue
			case stored[key] > 0:
				stored[key]--
				batch.Existing++
			default:
				batch.Payloads = append(batch.Payloads, p)
			}
			kept[key]++
		}
	}
	if batch.Payloads == nil {
		batch.Payloads = []model.Payload{}
	}
	return batch, nil
}

func normalizeFile(n Normalizer, path string) ([]model.Payload, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := n.Normalize(f)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", path, err)
	}
	return rows, nil
}
