package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/tally/internal/model"
)

var recordHeaders = []string{"ID", "DATE", "ACCOUNT", "NUMBER", "AMOUNT", "DESCRIPTION", "CATEGORY"}

// RenderRecords renders records as an aligned table.
func RenderRecords(records []model.Record) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		category := r.Category
		if category == "" {
			category = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.ID),
			r.Date,
			r.AccountType,
			fmt.Sprintf("%d", r.AccountNumber),
			r.Amount.StringFixed(2),
			r.Description,
			category,
		})
	}

	widths := make([]int, len(recordHeaders))
	for i, h := range recordHeaders {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(joinCells(recordHeaders, widths)))
	b.WriteString("\n")
	for _, row := range rows {
		line := joinCells(row, widths)
		if row[len(row)-1] == "-" {
			line = uncategorizedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func joinCells(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		// Amounts and ids read better right-aligned.
		if i == 0 || i == 4 {
			parts[i] = fmt.Sprintf("%*s", widths[i], c)
		} else {
			parts[i] = fmt.Sprintf("%-*s", widths[i], c)
		}
	}
	return strings.Join(parts, "  ")
}
