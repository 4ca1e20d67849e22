// Package report builds the income and expense flow shown by the summary views.
package report

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
)

// UncategorizedLabel names the group of rows without a confirmed category.
const UncategorizedLabel = "Uncategorized"

// Summarizer is the part of the ledger reports read from.
type Summarizer interface {
	CategorySummary(ctx context.Context, start, end string) (map[string]decimal.Decimal, error)
	DateBounds(ctx context.Context) (first, last string, err error)
}

// Line is one category's share of the flow. Amount is always positive.
type Line struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
}

// Flow splits category totals into money in and money out.
type Flow struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
	Start        string          `json:"start"`
	End          string          `json:"end"`
	Incomes      []Line          `json:"incomes"`
	Expenses     []Line          `json:"expenses"`
}

// Empty reports whether the range held no money movement.
func (f *Flow) Empty() bool {
	return len(f.Incomes) == 0 && len(f.Expenses) == 0
}

// BuildFlow turns signed category totals into a flow. Positive totals are incomes,
// negative totals are expenses reported as magnitudes, and zero totals are dropped.
// Lines are ordered largest first.
func BuildFlow(start, end string, summary map[string]decimal.Decimal) *Flow {
	f := &Flow{
		Start:    start,
		End:      end,
		Incomes:  []Line{},
		Expenses: []Line{},
	}

	for category, total := range summary {
		if category == "" {
			category = UncategorizedLabel
		}
		switch total.Sign() {
		case 1:
			f.Incomes = append(f.Incomes, Line{Category: category, Amount: total})
			f.TotalIncome = f.TotalIncome.Add(total)
		case -1:
			f.Expenses = append(f.Expenses, Line{Category: category, Amount: total.Abs()})
			f.TotalExpense = f.TotalExpense.Add(total.Abs())
		}
	}

	sortLines(f.Incomes)
	sortLines(f.Expenses)
	f.Net = f.TotalIncome.Sub(f.TotalExpense)
	return f
}

func sortLines(lines []Line) {
	sort.Slice(lines, func(i, j int) bool {
		if c := lines[i].Amount.Cmp(lines[j].Amount); c != 0 {
			return c > 0
		}
		return lines[i].Category < lines[j].Category
	})
}

// Summarize builds the flow for [start, end]. Empty bounds default to the first and
// last stored dates; an empty ledger yields an empty flow.
func Summarize(ctx context.Context, ledger Summarizer, start, end string) (*Flow, error) {
	if start == "" || end == "" {
		first, last, err := ledger.DateBounds(ctx)
		if errors.Is(err, common.ErrNotFound) {
			return BuildFlow(start, end, nil), nil
		}
		if err != nil {
			return nil, err
		}
		if start == "" {
			start = first
		}
		if end == "" {
			end = last
		}
	}

	summary, err := ledger.CategorySummary(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return BuildFlow(start, end, summary), nil
}
