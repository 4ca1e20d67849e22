package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// maxDeleteParams keeps IN lists below SQLite's bound-parameter limit.
const maxDeleteParams = 500

const selectRecords = `
	SELECT id, account_type, account_number, transaction_date, amount, description, category
	FROM transactions`

// Scan returns every record in id order.
func (s *SQLiteStorage) Scan(ctx context.Context) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return scanRecords(ctx, s.db)
}

// NextID returns the id the next appended record will receive.
func (s *SQLiteStorage) NextID(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return nextID(ctx, s.db)
}

// ConfirmedCount counts records whose category is non-empty.
func (s *SQLiteStorage) ConfirmedCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return confirmedCount(ctx, s.db)
}

// Append writes rows with consecutive ids starting at next as one atomic batch.
func (s *SQLiteStorage) Append(ctx context.Context, rows []model.Payload, next int64) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, readError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	records, err := appendRecords(ctx, tx, rows, next)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, writeError("failed to commit append", err)
	}
	return records, nil
}

// UpdateFields applies a partial update to one record.
func (s *SQLiteStorage) UpdateFields(ctx context.Context, id int64, fields model.Fields) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateFields(ctx, s.db, id, fields)
}

// DeleteMany removes every listed id in one transaction. Missing ids are ignored.
func (s *SQLiteStorage) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, readError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleted, err := deleteMany(ctx, tx, ids)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, writeError("failed to commit delete", err)
	}
	return deleted, nil
}

// DropAll destroys every record and resets the id sequence.
func (s *SQLiteStorage) DropAll(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return readError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return writeError("failed to clear transactions", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE ledger_sequence SET next_id = 0 WHERE name = ?`, ledgerSequence); err != nil {
		return writeError("failed to reset id sequence", err)
	}

	if err := tx.Commit(); err != nil {
		return writeError("failed to commit clear", err)
	}

	s.logger.Info("Cleared ledger")
	return nil
}

// Transaction methods share the helpers below with the storage.

func (t *sqliteTransaction) Scan(ctx context.Context) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return scanRecords(ctx, t.tx)
}

func (t *sqliteTransaction) NextID(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return nextID(ctx, t.tx)
}

func (t *sqliteTransaction) ConfirmedCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return confirmedCount(ctx, t.tx)
}

func (t *sqliteTransaction) Append(ctx context.Context, rows []model.Payload, next int64) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return appendRecords(ctx, t.tx, rows, next)
}

func (t *sqliteTransaction) UpdateFields(ctx context.Context, id int64, fields model.Fields) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateFields(ctx, t.tx, id, fields)
}

func (t *sqliteTransaction) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return deleteMany(ctx, t.tx, ids)
}

func scanRecords(ctx context.Context, q queryable) ([]model.Record, error) {
	rows, err := q.QueryContext(ctx, selectRecords+` ORDER BY id ASC`)
	if err != nil {
		return nil, readError("failed to query transactions", err)
	}
	defer func() { _ = rows.Close() }()

	records := []model.Record{}
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(
			&r.ID,
			&r.AccountType,
			&r.AccountNumber,
			&r.Date,
			&r.Amount,
			&r.Description,
			&r.Category,
		); err != nil {
			return nil, readError("failed to scan transaction", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, readError("failed to read transactions", err)
	}
	return records, nil
}

func nextID(ctx context.Context, q queryable) (int64, error) {
	var next int64
	err := q.QueryRowContext(ctx,
		`SELECT next_id FROM ledger_sequence WHERE name = ?`, ledgerSequence).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		// Sequence row missing: fall back to the highest id ever stored.
		err = q.QueryRowContext(ctx, `SELECT COALESCE(MAX(id) + 1, 0) FROM transactions`).Scan(&next)
	}
	if err != nil {
		return 0, readError("failed to read id sequence", err)
	}
	return next, nil
}

func confirmedCount(ctx context.Context, q queryable) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category <> ''`).Scan(&n); err != nil {
		return 0, readError("failed to count confirmed transactions", err)
	}
	return n, nil
}

func appendRecords(ctx context.Context, tx *sql.Tx, rows []model.Payload, next int64) ([]model.Record, error) {
	if len(rows) == 0 {
		return []model.Record{}, nil
	}
	if next < 0 {
		return nil, fmt.Errorf("%w: negative starting id %d", common.ErrInvalidValue, next)
	}
	if err := validatePayloads(rows); err != nil {
		return nil, err
	}

	issued, err := nextID(ctx, tx)
	if err != nil {
		return nil, err
	}
	if next < issued {
		return nil, fmt.Errorf("%w: id %d was already issued (next id is %d)", common.ErrWriteConflict, next, issued)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			id, account_type, account_number, transaction_date, amount, description, category
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, writeError("failed to prepare statement", err)
	}
	defer func() { _ = stmt.Close() }()

	records := make([]model.Record, 0, len(rows))
	for i, p := range rows {
		r := p.Record(next + int64(i))
		if _, err := stmt.ExecContext(ctx,
			r.ID,
			r.AccountType,
			r.AccountNumber,
			r.Date,
			r.Amount.String(),
			r.Description,
			r.Category,
		); err != nil {
			return nil, writeError(fmt.Sprintf("failed to insert transaction %d", r.ID), err)
		}
		records = append(records, r)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_sequence (name, next_id) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET next_id = excluded.next_id`,
		ledgerSequence, next+int64(len(rows))); err != nil {
		return nil, writeError("failed to advance id sequence", err)
	}

	return records, nil
}

func updateFields(ctx context.Context, q queryable, id int64, fields model.Fields) error {
	if err := validateFields(fields); err != nil {
		return err
	}

	cols := fields.Sorted()
	assignments := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		// Column names come from the canonical schema, never from callers.
		assignments = append(assignments, string(col)+" = ?")
		args = append(args, sqlValue(fields[col]))
	}
	args = append(args, id)

	query := "UPDATE transactions SET " + strings.Join(assignments, ", ") + " WHERE id = ?"
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return writeError(fmt.Sprintf("failed to update transaction %d", id), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return readError("failed to read update result", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}
	return nil
}

func deleteMany(ctx context.Context, q queryable, ids []int64) (int, error) {
	deleted := 0
	for start := 0; start < len(ids); start += maxDeleteParams {
		end := start + maxDeleteParams
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(chunk)), ", ")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		result, err := q.ExecContext(ctx, "DELETE FROM transactions WHERE id IN ("+placeholders+")", args...)
		if err != nil {
			return 0, writeError("failed to delete transactions", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, readError("failed to read delete result", err)
		}
		deleted += int(n)
	}
	return deleted, nil
}

// sqlValue renders validated field values in their stored form.
func sqlValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.String()
	}
	return v
}
