package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/plaid"
)

const isoDate = "2006-01-02"

func importPlaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-plaid",
		Short: "Import transactions from Plaid",
		Long: `Fetch posted transactions from the Plaid account configured under plaid.* and
import them like a file import. Plaid reports spending as positive amounts; they
are stored as negative amounts like every other source.`,
		RunE: runImportPlaid,
	}

	cmd.Flags().StringP("start-date", "s", "", "Start date (format: 2006-01-02)")
	cmd.Flags().StringP("end-date", "e", "", "End date (format: 2006-01-02)")
	cmd.Flags().IntP("days", "d", 30, "Number of days to import (used if start/end dates not specified)")
	cmd.Flags().Bool("dry-run", false, "Show what would be imported without saving")

	return cmd
}

func runImportPlaid(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	startDate, endDate, err := parseDateRange(cmd, time.Now())
	if err != nil {
		return err
	}

	client, err := plaid.NewClient(plaid.Config{
		ClientID:    appConfig.Plaid.ClientID,
		Secret:      appConfig.Plaid.Secret,
		Environment: appConfig.Plaid.Environment,
		AccessToken: appConfig.Plaid.AccessToken,
	})
	if err != nil {
		return fmt.Errorf("failed to create Plaid client: %w", err)
	}

	printLine(out, cli.FormatTitle(fmt.Sprintf("Importing Plaid transactions %s to %s",
		startDate.Format(isoDate), endDate.Format(isoDate))))

	payloads, err := client.FetchPayloads(ctx, startDate, endDate)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		printLine(out, cli.FormatWarning(fmt.Sprintf("Dry run mode - %d transactions fetched, not saving", len(payloads))))
		return nil
	}

	store, cleanup, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := newOrchestrator(store).ImportPayloads(ctx, payloads)
	if err != nil {
		return err
	}

	printLine(out, cli.FormatSuccess(fmt.Sprintf("Imported %d of %d fetched transactions", result.Inserted, len(payloads))))
	return nil
}

// parseDateRange reads --start-date/--end-date, falling back to the last --days days.
func parseDateRange(cmd *cobra.Command, now time.Time) (time.Time, time.Time, error) {
	startStr, _ := cmd.Flags().GetString("start-date")
	endStr, _ := cmd.Flags().GetString("end-date")

	if startStr != "" && endStr != "" {
		startDate, err := time.Parse(isoDate, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date format: %w", err)
		}
		endDate, err := time.Parse(isoDate, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date format: %w", err)
		}
		return startDate, endDate, nil
	}

	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		days = 30
	}
	return now.AddDate(0, 0, -days), now, nil
}
