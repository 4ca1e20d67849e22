package engine

import (
	"context"
	"fmt"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// ImportBatch appends normalized payloads to the ledger. When more than
// EligibilityThreshold rows are confirmed, the classifier is retrained from the ledger
// and its predictions become the imported rows' categories; otherwise the rows are
// stored unlabeled. Either every row is inserted or none is.
func (e *ReconciliationEngine) ImportBatch(ctx context.Context, payloads []model.Payload) (*ImportResult, error) {
	result := &ImportResult{Records: []model.Record{}}
	if len(payloads) == 0 {
		return result, nil
	}

	rows := make([]model.Payload, len(payloads))
	for i, p := range payloads {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("imported row %d: %w", i, err)
		}
		p.Category = ""
		rows[i] = p
	}

	tx, err := e.ledger.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	confirmed, err := tx.ConfirmedCount(ctx)
	if err != nil {
		return nil, err
	}
	result.Confirmed = confirmed

	if confirmed > EligibilityThreshold {
		if err := e.predict(ctx, tx, rows); err != nil {
			return nil, err
		}
		result.Predicted = true
	} else {
		e.logger.Info("Too few confirmed transactions to predict categories",
			"confirmed", confirmed,
			"threshold", EligibilityThreshold)
	}

	next, err := tx.NextID(ctx)
	if err != nil {
		return nil, err
	}
	records, err := tx.Append(ctx, rows, next)
	if err != nil {
		return nil, fmt.Errorf("failed to append import batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	result.Records = records
	result.Inserted = len(records)

	e.logger.Info("Imported transactions",
		"inserted", result.Inserted,
		"first_id", next,
		"predicted", result.Predicted)

	return result, nil
}

// predict retrains from the ledger and writes one predicted category into each row.
func (e *ReconciliationEngine) predict(ctx context.Context, tx service.LedgerReader, rows []model.Payload) error {
	records, err := tx.Scan(ctx)
	if err != nil {
		return err
	}

	predictor := e.loadModel(records)
	predictions, err := predictor.Predict(model.Descriptions(rows))
	if err != nil {
		return fmt.Errorf("failed to predict categories: %w", err)
	}
	if len(predictions) != len(rows) {
		return fmt.Errorf("%w: got %d predictions for %d descriptions",
			common.ErrClassifierContract, len(predictions), len(rows))
	}

	for i := range rows {
		rows[i].Category = predictions[i]
	}
	return nil
}
