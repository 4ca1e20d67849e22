package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/tally/internal/cli"
)

// Render draws the flow as two aligned columns of category totals.
func Render(f *Flow) string {
	var b strings.Builder

	b.WriteString(cli.FormatTitle(fmt.Sprintf("Cash flow %s to %s", f.Start, f.End)))
	b.WriteString("\n")

	if f.Empty() {
		b.WriteString(cli.FormatInfo("No transactions in range"))
		b.WriteString("\n")
		return b.String()
	}

	incomes := renderLines("Income", f.Incomes, cli.SuccessStyle)
	expenses := renderLines("Expenses", f.Expenses, cli.ErrorStyle)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, incomes, "    ", expenses))
	b.WriteString("\n\n")

	totals := fmt.Sprintf("%s %s\n%s %s\n%s %s",
		cli.BoldStyle.Render("Total income: "), f.TotalIncome.StringFixed(2),
		cli.BoldStyle.Render("Total expense:"), f.TotalExpense.StringFixed(2),
		cli.BoldStyle.Render("Net:          "), cli.AmountStyle(f.Net).Render(f.Net.StringFixed(2)))
	b.WriteString(cli.BoxStyle.Render(totals))
	b.WriteString("\n")
	return b.String()
}

func renderLines(title string, lines []Line, style lipgloss.Style) string {
	width := len(title)
	for _, l := range lines {
		if len(l.Category) > width {
			width = len(l.Category)
		}
	}

	rows := []string{cli.TableHeaderStyle.Render(title)}
	for _, l := range lines {
		rows = append(rows, cli.TableCellStyle.Render(fmt.Sprintf("%-*s", width, l.Category))+
			style.Render(fmt.Sprintf("%12s", l.Amount.StringFixed(2))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
