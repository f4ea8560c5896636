package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ledgermint/ledgermint/internal/cli"
	"github.com/ledgermint/ledgermint/internal/engine"
	"github.com/ledgermint/ledgermint/internal/model"
)

func init() {
	reclassifyCmd := &cobra.Command{
		Use:   "reclassify",
		Short: "Recompute every transaction's type from the current rules",
		Long: `Run the type classifier over every stored transaction using only its
amount, merchant, and description. Provider hints recorded at sync time are
ignored, so the result reflects the current rules alone. Transactions that
become transfers, income, or investments lose their spending category.`,
		RunE: runReclassify,
	}

	recategorizeCmd := &cobra.Command{
		Use:   "recategorize",
		Short: "Re-run category assignment over expenses and returns",
		RunE:  runRecategorize,
	}
	recategorizeCmd.Flags().Bool("force", false, "Reassign even already-categorized transactions")
	recategorizeCmd.Flags().Bool("include-manual", false, "Also touch merchants with manual mappings")

	backfillCmd := &cobra.Command{
		Use:   "backfill-categories",
		Short: "Assign the fixed category to income or investment rows lacking one",
		RunE:  runBackfill,
	}
	backfillCmd.Flags().String("type", "income", "transaction type to backfill (income, investment)")

	clearTransfersCmd := &cobra.Command{
		Use:   "clear-transfer-categories",
		Short: "Remove spending categories from transfer transactions",
		RunE:  runClearTransfers,
	}

	rootCmd.AddCommand(reclassifyCmd)
	rootCmd.AddCommand(recategorizeCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(clearTransfersCmd)
}

func runReclassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	bar := progressbar.Default(-1, "reclassifying")
	report, err := eng.ReclassifyAll(ctx)
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("reclassify failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Reclassified %d of %d transactions (%d categories cleared, %d failed)",
		report.Changed, report.Total, report.CategoriesCleared, report.Failed)))
	for txnType, count := range report.ByType {
		fmt.Printf("  %s: %d\n", txnType, count)
	}

	return nil
}

func runRecategorize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	force, _ := cmd.Flags().GetBool("force")
	includeManual, _ := cmd.Flags().GetBool("include-manual")

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	opts := engine.DefaultRecategorizeOptions()
	opts.Force = force
	opts.SkipManual = !includeManual

	bar := progressbar.Default(-1, "recategorizing")
	report, err := eng.RecategorizeAll(ctx, opts)
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("recategorize failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Recategorized %d of %d transactions (%d skipped, %d marked for review)",
		report.Recategorized, report.Total, report.Skipped, report.MarkedForReview)))
	for category, count := range report.PerCategory {
		fmt.Printf("  %s: %d\n", category, count)
	}

	return nil
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	typeFlag, _ := cmd.Flags().GetString("type")

	txnType := model.TransactionType(typeFlag)

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	report, err := eng.BackfillTypeCategories(ctx, txnType)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Assigned categories to %d of %d %s transactions",
		report.Assigned, report.Total, txnType)))

	return nil
}

func runClearTransfers(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	report, err := eng.ClearTransferCategories(ctx)
	if err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Cleared categories on %d of %d transfers", report.Cleared, report.Total)))

	return nil
}
