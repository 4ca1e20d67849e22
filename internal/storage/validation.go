package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validatePayloads validates every row of an append batch.
func validatePayloads(rows []model.Payload) error {
	for i, p := range rows {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("row at index %d: %w", i, err)
		}
	}
	return nil
}

// validateFields rejects anything that is not a writable column.
func validateFields(fields model.Fields) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields to update", common.ErrInvalidValue)
	}
	for col := range fields {
		if col == model.ColumnID {
			return fmt.Errorf("%w: id cannot be updated", common.ErrInvalidField)
		}
		if _, err := model.ParseColumn(string(col)); err != nil {
			return err
		}
	}
	return nil
}

// validateDateRange checks both bounds are MM/DD/YYYY and ordered lexically.
func validateDateRange(start, end string) error {
	for _, d := range []string{start, end} {
		normalized, err := model.NormalizeDate(d)
		if err != nil {
			return err
		}
		if normalized != d {
			return fmt.Errorf("%w: %q is not in MM/DD/YYYY form", common.ErrInvalidValue, d)
		}
	}
	if start > end {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, start, end)
	}
	return nil
}
