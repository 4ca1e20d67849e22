package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/common"
)

func TestParseColumn(t *testing.T) {
	for _, c := range Columns {
		got, err := ParseColumn(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseColumn("merchant")
	assert.ErrorIs(t, err, common.ErrInvalidField)

	_, err = ParseColumn("Category")
	assert.ErrorIs(t, err, common.ErrInvalidField, "column names are case sensitive")
}

func TestColumnCoerce(t *testing.T) {
	tests := []struct {
		input   any
		want    any
		wantErr error
		name    string
		column  Column
	}{
		{name: "category trimmed", column: ColumnCategory, input: "  Dining ", want: "Dining"},
		{name: "category cleared", column: ColumnCategory, input: "", want: ""},
		{name: "category null", column: ColumnCategory, input: nil, want: ""},
		{name: "description trimmed", column: ColumnDescription, input: " COFFEE ", want: "COFFEE"},
		{name: "empty description", column: ColumnDescription, input: "   ", wantErr: common.ErrInvalidValue},
		{name: "empty account type", column: ColumnAccountType, input: "", wantErr: common.ErrInvalidValue},
		{name: "account number from json", column: ColumnAccountNumber, input: json.Number("4500123412341234"), want: int64(4500123412341234)},
		{name: "account number from float", column: ColumnAccountNumber, input: float64(12), want: int64(12)},
		{name: "fractional account number", column: ColumnAccountNumber, input: 1.5, wantErr: common.ErrInvalidValue},
		{name: "account number from text", column: ColumnAccountNumber, input: " 77 ", want: int64(77)},
		{name: "account number garbage", column: ColumnAccountNumber, input: "abc", wantErr: common.ErrInvalidValue},
		{name: "category wrong type", column: ColumnCategory, input: 5, wantErr: common.ErrInvalidValue},
		{name: "date normalized", column: ColumnDate, input: "2024-03-09", want: "03/09/2024"},
		{name: "bad date", column: ColumnDate, input: "13/45/2024", wantErr: common.ErrInvalidValue},
		{name: "id is immutable", column: ColumnID, input: int64(1), wantErr: common.ErrInvalidField},
		{name: "unknown column", column: Column("memo"), input: "x", wantErr: common.ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.column.Coerce(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnCoerce_Amount(t *testing.T) {
	tests := []struct {
		input any
		name  string
		want  string
	}{
		{name: "json number", input: json.Number("-12.50"), want: "-12.5"},
		{name: "currency text", input: "$1,024.00", want: "1024"},
		{name: "accounting negative", input: "(4.99)", want: "-4.99"},
		{name: "int", input: 7, want: "7"},
		{name: "decimal", input: decimal.RequireFromString("0.10"), want: "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ColumnAmount.Coerce(tt.input)
			require.NoError(t, err)
			d, ok := got.(decimal.Decimal)
			require.True(t, ok, "amount must coerce to decimal.Decimal, got %T", got)
			assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", d, tt.want)
		})
	}

	_, err := ColumnAmount.Coerce("twelve")
	assert.ErrorIs(t, err, common.ErrInvalidValue)
	_, err = ColumnAmount.Coerce(true)
	assert.ErrorIs(t, err, common.ErrInvalidValue)
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("  -1,234.56 ")
	require.NoError(t, err)
	assert.Equal(t, "-1234.56", d.String())

	_, err = ParseAmount("")
	assert.Error(t, err)
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields(map[string]any{
		"category": "Groceries",
		"amount":   json.Number("-3.10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", fields[ColumnCategory])
	assert.Equal(t, []Column{ColumnAmount, ColumnCategory}, fields.Sorted())

	_, err = ParseFields(map[string]any{})
	assert.ErrorIs(t, err, common.ErrInvalidValue)

	_, err = ParseFields(map[string]any{"id": json.Number("3")})
	assert.ErrorIs(t, err, common.ErrInvalidField)

	_, err = ParseFields(map[string]any{"vendor": "x"})
	assert.ErrorIs(t, err, common.ErrInvalidField)
}

func TestFieldsApply(t *testing.T) {
	r := Record{
		ID:            9,
		AccountType:   "Chequing",
		AccountNumber: 1,
		Date:          "01/02/2024",
		Amount:        decimal.NewFromInt(-1),
		Description:   "TEA",
	}
	fields, err := ParseFields(map[string]any{"category": "Dining"})
	require.NoError(t, err)

	updated := fields.Apply(r)
	assert.Equal(t, int64(9), updated.ID)
	assert.Equal(t, "Dining", updated.Category)
	assert.Equal(t, "TEA", updated.Description)
	assert.Empty(t, r.Category, "Apply must not modify its input")
}

func TestPayloadFromFields(t *testing.T) {
	raw := map[string]any{
		"account_type":     "Chequing",
		"account_number":   json.Number("5"),
		"transaction_date": "3/7/2024",
		"amount":           json.Number("20"),
		"description":      "REFUND",
	}

	p, err := PayloadFromFields(raw)
	require.NoError(t, err)
	assert.Equal(t, "03/07/2024", p.Date)
	assert.Equal(t, int64(5), p.AccountNumber)
	assert.Empty(t, p.Category)
	require.NoError(t, p.Validate())

	delete(raw, "description")
	_, err = PayloadFromFields(raw)
	assert.ErrorIs(t, err, common.ErrInvalidValue)
}
