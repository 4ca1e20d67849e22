package cli

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmountStyle(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "expense", amount: "-4.50", want: "expense"},
		{name: "income", amount: "1200", want: "income"},
		{name: "zero", amount: "0", want: "income"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AmountStyle(decimal.RequireFromString(tt.amount)).GetForeground()
			if tt.want == "expense" {
				assert.Equal(t, expenseColor, got)
			} else {
				assert.Equal(t, incomeColor, got)
			}
		})
	}
}

func TestFormatHelpersKeepMessage(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), "saved")
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatTitle("Ledger"), "Ledger")
	assert.Contains(t, formatPrompt("Continue?"), "Continue?")

	box := RenderBox("Import Summary", "Files: 2")
	assert.Contains(t, box, "Import Summary")
	assert.Contains(t, box, "Files: 2")
}
