package model

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadKey(t *testing.T) {
	base := Payload{
		AccountType:   "Credit Card",
		AccountNumber: 4500,
		Date:          "01/15/2024",
		Amount:        decimal.RequireFromString("-10.5"),
		Description:   "Coffee Shop",
	}

	same := base
	same.Amount = decimal.RequireFromString("-10.50")
	same.Description = "  COFFEE SHOP "
	same.Category = "Dining"
	assert.Equal(t, base.Key(), same.Key(), "key ignores category, case, padding and trailing zeros")

	other := base
	other.Date = "01/16/2024"
	assert.NotEqual(t, base.Key(), other.Key())

	other = base
	other.AccountNumber = 4501
	assert.NotEqual(t, base.Key(), other.Key())
}

func TestRecordPayloadRoundTrip(t *testing.T) {
	p := Payload{
		AccountType:   "Chequing",
		AccountNumber: 1,
		Date:          "02/02/2024",
		Amount:        decimal.NewFromInt(3),
		Description:   "DEPOSIT",
		Category:      "Income",
	}
	r := p.Record(12)
	assert.Equal(t, int64(12), r.ID)
	assert.True(t, r.Confirmed())
	assert.Equal(t, p, r.Payload())
}

func TestCountConfirmedAndDescriptions(t *testing.T) {
	records := []Record{{Category: "A"}, {}, {Category: "B"}}
	assert.Equal(t, 2, CountConfirmed(records))

	got := Descriptions([]Payload{{Description: "X"}, {Description: "Y"}})
	assert.Equal(t, []string{"X", "Y"}, got)
}

func TestDecodeDiff(t *testing.T) {
	input := `{
		"edited": {"3": {"category": "Dining"}, "1": {"amount": -4.25}},
		"added": [{"description": "NEW"}],
		"deleted": [7, 2, 7]
	}`

	d, err := DecodeDiff(strings.NewReader(input))
	require.NoError(t, err)
	assert.False(t, d.Empty())
	assert.Equal(t, []int64{1, 3}, d.EditedIDs())
	assert.Equal(t, []int64{2, 7}, d.DeletedIDs())
	require.Len(t, d.Added, 1)

	fields, err := ParseFields(d.Edited[1])
	require.NoError(t, err)
	amount, ok := fields[ColumnAmount].(decimal.Decimal)
	require.True(t, ok)
	assert.Equal(t, "-4.25", amount.String())
}

func TestDecodeDiff_Invalid(t *testing.T) {
	_, err := DecodeDiff(strings.NewReader(`{"edited": {"x": {}}}`))
	assert.Error(t, err)

	_, err = DecodeDiff(strings.NewReader(`{"renamed": []}`))
	assert.Error(t, err, "unknown top-level keys are rejected")

	d, err := DecodeDiff(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.True(t, d.Empty())
}
