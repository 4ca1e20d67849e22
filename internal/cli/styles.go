// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	accentColor  = lipgloss.Color("#5B8DEF")
	incomeColor  = lipgloss.Color("#4ECDC4")
	expenseColor = lipgloss.Color("#FF6B6B")
	cautionColor = lipgloss.Color("#FFE66D")
	noteColor    = lipgloss.Color("#95E1D3")
	mutedColor   = lipgloss.Color("#666666")
	borderColor  = lipgloss.Color("#333")
)

var (
	// SuccessStyle renders completed operations and money coming in.
	SuccessStyle = lipgloss.NewStyle().Foreground(incomeColor)

	// ErrorStyle renders failures and money going out.
	ErrorStyle = lipgloss.NewStyle().Foreground(expenseColor)

	BoldStyle = lipgloss.NewStyle().Bold(true)

	// BoxStyle frames summaries such as import and migration status.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(borderColor)

	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginBottom(1)
	warningStyle = lipgloss.NewStyle().Foreground(cautionColor)
	infoStyle    = lipgloss.NewStyle().Foreground(noteColor)
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)

	// uncategorizedStyle dims ledger rows that still wait for a category.
	uncategorizedStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// AmountStyle colors a signed ledger amount: negative amounts are expenses.
func AmountStyle(amount decimal.Decimal) lipgloss.Style {
	if amount.IsNegative() {
		return ErrorStyle
	}
	return SuccessStyle
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render("✓ " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render("✗ " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return warningStyle.Render("⚠️ " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return infoStyle.Render("ℹ️ " + message)
}

// FormatTitle formats a title with the ledger icon.
func FormatTitle(title string) string {
	return titleStyle.Render("📒 " + title)
}

func formatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox renders content under a title in a bordered box.
func RenderBox(title, content string) string {
	heading := titleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
