package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
)

// CategorySummary returns the signed sum of amounts per category for transactions dated
// within [start, end]. Dates are compared as MM/DD/YYYY strings, so bounds should fall in
// the same year for calendar-accurate results.
func (s *SQLiteStorage) CategorySummary(ctx context.Context, start, end string) (map[string]decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, amount
		FROM transactions
		WHERE transaction_date >= ? AND transaction_date <= ?
	`, start, end)
	if err != nil {
		return nil, readError("failed to query category summary", err)
	}
	defer func() { _ = rows.Close() }()

	// Amounts are decimal strings, so they are summed here rather than by SQLite.
	summary := make(map[string]decimal.Decimal)
	for rows.Next() {
		var category string
		var amount decimal.Decimal
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, readError("failed to scan category summary", err)
		}
		summary[category] = summary[category].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, readError("failed to read category summary", err)
	}

	return summary, nil
}

// DateBounds returns the lexically first and last stored transaction dates.
// It fails with common.ErrNotFound on an empty ledger.
func (s *SQLiteStorage) DateBounds(ctx context.Context) (string, string, error) {
	if err := validateContext(ctx); err != nil {
		return "", "", err
	}

	var first, last sql.NullString
	if err := s.db.QueryRowContext(ctx,
		`SELECT MIN(transaction_date), MAX(transaction_date) FROM transactions`,
	).Scan(&first, &last); err != nil {
		return "", "", readError("failed to query date bounds", err)
	}
	if !first.Valid || !last.Valid {
		return "", "", fmt.Errorf("%w: ledger is empty", common.ErrNotFound)
	}
	return first.String, last.String, nil
}
