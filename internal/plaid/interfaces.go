package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// Source fetches transactions from an aggregator as ledger payloads.
type Source interface {
	FetchPayloads(ctx context.Context, startDate, endDate time.Time) ([]model.Payload, error)
}
