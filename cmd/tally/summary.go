package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/report"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income and expenses by category",
		Long: `Sum transaction amounts by category between two dates (MM/DD/YYYY, inclusive)
and split them into income and expenses. Without dates, the whole ledger is
summarized. Dates are compared as text, so a range should stay within one year.`,
		RunE: runSummary,
	}
	cmd.Flags().String("start", "", "First date to include (MM/DD/YYYY)")
	cmd.Flags().String("end", "", "Last date to include (MM/DD/YYYY)")
	cmd.Flags().Bool("json", false, "Print JSON instead of a chart")
	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	store, cleanup, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	flow, err := report.Summarize(ctx, store, start, end)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(flow)
	}
	printf(out, "%s", report.Render(flow))
	return nil
}
