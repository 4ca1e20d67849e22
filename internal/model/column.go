package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
)

// Column names a field of the canonical schema.
type Column string

// Canonical schema columns, in storage order.
const (
	ColumnID            Column = "id"
	ColumnAccountType   Column = "account_type"
	ColumnAccountNumber Column = "account_number"
	ColumnDate          Column = "transaction_date"
	ColumnAmount        Column = "amount"
	ColumnDescription   Column = "description"
	ColumnCategory      Column = "category"
)

// Columns lists every column of the transactions table.
var Columns = []Column{
	ColumnID,
	ColumnAccountType,
	ColumnAccountNumber,
	ColumnDate,
	ColumnAmount,
	ColumnDescription,
	ColumnCategory,
}

// requiredColumns must be present when a row is added from an editing surface.
var requiredColumns = []Column{
	ColumnAccountType,
	ColumnAccountNumber,
	ColumnDate,
	ColumnAmount,
	ColumnDescription,
}

// ParseColumn validates an external field name. Unknown names fail with ErrInvalidField.
func ParseColumn(name string) (Column, error) {
	for _, c := range Columns {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidField, name)
}

// Coerce converts a loosely typed value into the column's storage type:
// string for text columns, int64 for account_number and decimal.Decimal for amount.
func (c Column) Coerce(v any) (any, error) {
	switch c {
	case ColumnAccountType:
		s, err := coerceString(c, v)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: %s cannot be empty", common.ErrInvalidValue, c)
		}
		return s, nil
	case ColumnDescription:
		s, err := coerceString(c, v)
		if err != nil {
			return nil, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("%w: %s cannot be empty", common.ErrInvalidValue, c)
		}
		return s, nil
	case ColumnCategory:
		s, err := coerceString(c, v)
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(s), nil
	case ColumnDate:
		s, err := coerceString(c, v)
		if err != nil {
			return nil, err
		}
		return NormalizeDate(s)
	case ColumnAccountNumber:
		return coerceInt(c, v)
	case ColumnAmount:
		return coerceDecimal(c, v)
	case ColumnID:
		return nil, fmt.Errorf("%w: id is assigned by the ledger and cannot be set", common.ErrInvalidField)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidField, c)
	}
}

func coerceString(c Column, v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("%w: %s expects text, got %T", common.ErrInvalidValue, c, v)
	}
}

func coerceInt(c Column, v any) (int64, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) || math.IsNaN(val) {
			return 0, fmt.Errorf("%w: %s expects an integer, got %v", common.ErrInvalidValue, c, val)
		}
		return int64(val), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s expects an integer, got %q", common.ErrInvalidValue, c, val)
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s expects an integer, got %q", common.ErrInvalidValue, c, val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s expects an integer, got %T", common.ErrInvalidValue, c, v)
	}
}

func coerceDecimal(c Column, v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case float64:
		return decimal.NewFromFloat(val), nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s expects a number, got %q", common.ErrInvalidValue, c, val)
		}
		return d, nil
	case string:
		d, err := ParseAmount(val)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s: %v", common.ErrInvalidValue, c, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s expects a number, got %T", common.ErrInvalidValue, c, v)
	}
}

// ParseAmount parses a currency amount such as "-12.50", "$1,024.00" or "(4.99)".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// Fields is a validated partial update: every key is a known, writable column and every
// value already has its storage type.
type Fields map[Column]any

// ParseFields validates an external field map against the canonical schema.
func ParseFields(raw map[string]any) (Fields, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", common.ErrInvalidValue)
	}
	fields := make(Fields, len(raw))
	for name, v := range raw {
		col, err := ParseColumn(name)
		if err != nil {
			return nil, err
		}
		val, err := col.Coerce(v)
		if err != nil {
			return nil, err
		}
		fields[col] = val
	}
	return fields, nil
}

// Sorted returns the columns of f in schema order.
func (f Fields) Sorted() []Column {
	cols := make([]Column, 0, len(f))
	for c := range f {
		cols = append(cols, c)
	}
	order := make(map[Column]int, len(Columns))
	for i, c := range Columns {
		order[c] = i
	}
	sort.Slice(cols, func(i, j int) bool { return order[cols[i]] < order[cols[j]] })
	return cols
}

// PayloadFromFields builds a new row from an editing surface's field map.
// All columns except category are required.
func PayloadFromFields(raw map[string]any) (Payload, error) {
	fields, err := ParseFields(raw)
	if err != nil {
		return Payload{}, err
	}
	for _, c := range requiredColumns {
		if _, ok := fields[c]; !ok {
			return Payload{}, fmt.Errorf("%w: missing required field %s", common.ErrInvalidValue, c)
		}
	}
	var p Payload
	for c, v := range fields {
		p.set(c, v)
	}
	return p, nil
}

// Validate checks a payload produced by code rather than by ParseFields.
func (p Payload) Validate() error {
	if strings.TrimSpace(p.AccountType) == "" {
		return fmt.Errorf("%w: account_type cannot be empty", common.ErrInvalidValue)
	}
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("%w: description cannot be empty", common.ErrInvalidValue)
	}
	if normalized, err := NormalizeDate(p.Date); err != nil {
		return err
	} else if normalized != p.Date {
		return fmt.Errorf("%w: transaction_date %q is not in MM/DD/YYYY form", common.ErrInvalidValue, p.Date)
	}
	return nil
}

func (p *Payload) set(c Column, v any) {
	switch c {
	case ColumnAccountType:
		p.AccountType = v.(string)
	case ColumnAccountNumber:
		p.AccountNumber = v.(int64)
	case ColumnDate:
		p.Date = v.(string)
	case ColumnAmount:
		p.Amount = v.(decimal.Decimal)
	case ColumnDescription:
		p.Description = v.(string)
	case ColumnCategory:
		p.Category = v.(string)
	}
}

// Apply returns a copy of r with the validated fields applied.
func (f Fields) Apply(r Record) Record {
	p := r.Payload()
	for c, v := range f {
		p.set(c, v)
	}
	return p.Record(r.ID)
}
