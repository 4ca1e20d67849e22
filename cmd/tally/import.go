package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/importer"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import bank export files into the ledger",
		Long: `Normalize one or more bank export files and append them to the ledger as a
single batch. Rows repeated across the files are imported once.

When more than 10 transactions in the ledger have a confirmed category, each
imported transaction is given the category predicted from them. Otherwise the
new rows are stored without a category.

Supported formats: rbc (RBC CSV), chase (Chase CSV), ofx (OFX/QFX).`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("format", "f", "rbc", "Export format of the files")
	cmd.Flags().String("account-type", "", "Account type for formats that do not export one")
	cmd.Flags().Int64("account-number", 0, "Account number for formats that do not export one")
	cmd.Flags().Bool("skip-existing", false, "Skip rows already present in the ledger")
	cmd.Flags().Bool("dry-run", false, "Show what would be imported without saving")

	_ = viper.BindPFlag("import.format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("import.account_type", cmd.Flags().Lookup("account-type"))
	_ = viper.BindPFlag("import.account_number", cmd.Flags().Lookup("account-number"))
	_ = viper.BindPFlag("import.skip_existing", cmd.Flags().Lookup("skip-existing"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	store, cleanup, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(args), "Reading files...")
	orchestrator := newOrchestrator(store, importer.WithProgress(func(int, int, string) {
		_ = bar.Add(1)
	}))

	format := appConfig.Import.Format
	batch, err := orchestrator.Prepare(ctx, format, args)
	if err != nil {
		return err
	}

	if dryRun {
		printLine(out, cli.FormatWarning("Dry run mode - not saving to database"))
		printLine(out, cli.RenderBox("Import Preview", batchSummary(batch)))
		return nil
	}

	result, err := orchestrator.Commit(ctx, batch)
	if err != nil {
		return err
	}

	printLine(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", result.Inserted)))
	if result.Predicted {
		printLine(out, cli.FormatInfo(fmt.Sprintf("Categories predicted from %d confirmed transactions", result.Confirmed)))
	} else {
		printLine(out, cli.FormatInfo(fmt.Sprintf(
			"Only %d confirmed transactions; confirm more than 10 to enable predictions", result.Confirmed)))
	}
	printLine(out, cli.RenderBox("Import Summary", batchSummary(result.Batch)))
	return nil
}

func batchSummary(b *importer.Batch) string {
	return fmt.Sprintf("Files: %d\nRows read: %d\nDuplicates skipped: %d\nAlready in ledger: %d\nTo import: %d",
		b.Files, b.Normalized, b.Duplicates, b.Existing, len(b.Payloads))
}
