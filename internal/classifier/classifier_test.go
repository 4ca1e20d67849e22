package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

func labeled(pairs ...string) []model.Record {
	records := make([]model.Record, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		records = append(records, model.Record{
			ID:          int64(i / 2),
			Description: pairs[i],
			Category:    pairs[i+1],
		})
	}
	return records
}

func TestPredict_ReproducesTrainingLabels(t *testing.T) {
	records := labeled(
		"STARBUCKS #1234", "Dining",
		"SAFEWAY STORE 88", "Groceries",
		"SHELL OIL 5521", "Transport",
		"NETFLIX.COM", "Subscriptions",
		"TIM HORTONS #22", "Dining",
		"LOBLAWS 1001", "Groceries",
	)

	m := LoadData(records)
	require.True(t, m.Trained())
	assert.Equal(t, len(records), m.Examples())

	descriptions := make([]string, len(records))
	want := make([]string, len(records))
	for i, r := range records {
		descriptions[i] = r.Description
		want[i] = r.Category
	}

	got, err := m.Predict(descriptions)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPredict_ConflictingLabelsUseMostFrequent(t *testing.T) {
	m := LoadData(labeled(
		"AMAZON", "Shopping",
		"AMAZON", "Shopping",
		"AMAZON", "Books",
		"UBER", "Transport",
	))

	got, err := m.Predict([]string{"amazon", "UBER"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Shopping", "Transport"}, got)
}

func TestPredict_UnseenDescriptions(t *testing.T) {
	m := LoadData(labeled(
		"COFFEE SHOP DOWNTOWN", "Dining",
		"COFFEE HOUSE UPTOWN", "Dining",
		"GAS STATION HWY 1", "Transport",
		"GAS STATION MAIN ST", "Transport",
	))

	got, err := m.Predict([]string{"COFFEE SHOP AIRPORT", "GAS STATION 99", ""})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Dining", got[0])
	assert.Equal(t, "Transport", got[1])
	assert.Contains(t, m.Classes(), got[2])
}

func TestPredict_SingleClass(t *testing.T) {
	m := LoadData(labeled("RENT", "Housing", "RENT MARCH", "Housing"))

	got, err := m.Predict([]string{"SOMETHING ELSE", "RENT"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Housing", "Housing"}, got)
}

func TestPredict_Untrained(t *testing.T) {
	tests := map[string]*Model{
		"nil model":        nil,
		"no records":       LoadData(nil),
		"only unconfirmed": LoadData([]model.Record{{Description: "A"}, {Description: "B"}}),
	}
	for name, m := range tests {
		t.Run(name, func(t *testing.T) {
			assert.False(t, m.Trained())
			_, err := m.Predict([]string{"A"})
			assert.ErrorIs(t, err, common.ErrModelNotTrained)
		})
	}
}

func TestPredict_EmptyInput(t *testing.T) {
	m := LoadData(labeled("A", "X"))
	got, err := m.Predict(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadData_IgnoresUnconfirmedRows(t *testing.T) {
	records := append(labeled("PAYROLL", "Income", "GYM", "Health"),
		model.Record{Description: "PAYROLL"})

	m := LoadData(records)
	assert.Equal(t, 2, m.Examples())
	assert.Equal(t, []string{"Health", "Income"}, m.Classes())
}

func TestLoadData_DoesNotShareState(t *testing.T) {
	first := LoadData(labeled("SHOP", "A", "OTHER", "B"))
	second := LoadData(labeled("SHOP", "C", "OTHER", "D"))

	got, err := first.Predict([]string{"SHOP"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got)

	got, err = second.Predict([]string{"SHOP"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, got)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"tim", "hortons", "22"}, Tokenize("TIM HORTONS #22"))
	assert.Empty(t, Tokenize("  -- "))
}

func TestPredict_Memorization(t *testing.T) {
	m := LoadData(labeled(
		"STARBUCKS #123", "Coffee",
		"STARBUCKS #456", "Coffee",
		"UBER TRIP", "Transport",
	))

	got, err := m.Predict([]string{"STARBUCKS #123"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Coffee"}, got)
}
