package engine

import (
	"context"
	"fmt"

	"github.com/Veraticus/tally/internal/model"
)

// ApplyDiff applies an editing-surface diff in a fixed order: edits, then additions,
// then deletions, all inside one ledger transaction.
//
// A failing edit is recorded in the result and skipped. A failing addition or deletion
// aborts the diff and nothing is written.
func (e *ReconciliationEngine) ApplyDiff(ctx context.Context, diff model.Diff) (*DiffResult, error) {
	result := &DiffResult{
		Updated: []int64{},
		Added:   []model.Record{},
	}
	if diff.Empty() {
		return result, nil
	}

	// Added rows are one batch; reject it before touching the ledger.
	added := make([]model.Payload, 0, len(diff.Added))
	for i, raw := range diff.Added {
		p, err := model.PayloadFromFields(raw)
		if err != nil {
			return nil, fmt.Errorf("added row %d: %w", i, err)
		}
		added = append(added, p)
	}

	tx, err := e.ledger.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range diff.EditedIDs() {
		fields, err := model.ParseFields(diff.Edited[id])
		if err == nil {
			err = tx.UpdateFields(ctx, id, fields)
		}
		if err != nil {
			e.logger.Warn("Skipping failed edit", "id", id, "error", err)
			result.Errors = append(result.Errors, ItemError{ID: id, Err: err})
			continue
		}
		result.Updated = append(result.Updated, id)
	}

	if len(added) > 0 {
		// Read the id sequence after the edits, from the store itself.
		next, err := tx.NextID(ctx)
		if err != nil {
			return nil, err
		}
		records, err := tx.Append(ctx, added, next)
		if err != nil {
			return nil, fmt.Errorf("failed to add rows: %w", err)
		}
		result.Added = records
	}

	if ids := diff.DeletedIDs(); len(ids) > 0 {
		deleted, err := tx.DeleteMany(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to delete rows: %w", err)
		}
		result.Deleted = deleted
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	e.logger.Info("Applied diff",
		"updated", len(result.Updated),
		"added", len(result.Added),
		"deleted", result.Deleted,
		"failed_edits", len(result.Errors))

	return result, nil
}
