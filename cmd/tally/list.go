package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every transaction in the ledger",
		RunE:  runList,
	}
	cmd.Flags().Bool("json", false, "Print JSON instead of a table")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
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

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		printLine(out, cli.FormatInfo("The ledger is empty"))
		return nil
	}
	printf(out, "%s", cli.RenderRecords(records))
	return nil
}
