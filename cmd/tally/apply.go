package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/model"
)

func applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <diff.json|->",
		Short: "Apply an edit diff to the ledger",
		Long: `Apply a diff produced by an editing grid: edited fields keyed by transaction id,
added rows, and deleted ids. Edits are applied first, then additions, then
deletions. A failed edit is reported and skipped; a failed addition or deletion
leaves the ledger untouched.

Example diff:
  {"edited": {"3": {"category": "Groceries"}},
   "added": [{"account_type": "Credit Card", "account_number": 1234,
              "transaction_date": "01/15/2024", "amount": -4.5,
              "description": "COFFEE", "category": "Dining"}],
   "deleted": [7]}`,
		Args: cobra.ExactArgs(1),
		RunE: runApply,
	}
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open diff: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	diff, err := model.DecodeDiff(r)
	if err != nil {
		return err
	}

	store, cleanup, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := newEngine(store).ApplyDiff(ctx, diff)
	if err != nil {
		return err
	}

	printLine(out, cli.FormatSuccess(fmt.Sprintf("Updated %d, added %d, deleted %d",
		len(result.Updated), len(result.Added), result.Deleted)))
	for _, e := range result.Errors {
		printLine(out, cli.FormatWarning(e.Error()))
	}
	return nil
}
