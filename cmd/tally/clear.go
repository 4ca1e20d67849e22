package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
)

func clearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every transaction in the ledger",
		Long: `Delete every transaction and reset transaction ids. This cannot be undone.
Every confirmed category is lost, so predictions stop until you confirm more
than 10 again.`,
		RunE: runClear,
	}
	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")
	return cmd
}

func runClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	store, cleanup, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := store.Scan(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		printLine(out, "No transactions found. Nothing to clear.")
		return nil
	}

	if force, _ := cmd.Flags().GetBool("force"); !force {
		printf(out, "This will delete %d transactions.\n", len(records))
		ok, err := cli.Confirm(ctx, cmd.InOrStdin(), out, "Are you sure you want to continue?")
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if !ok {
			printLine(out, "Clear canceled.")
			return nil
		}
	}

	if err := store.DropAll(ctx); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}
	printLine(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d transactions", len(records))))
	return nil
}
