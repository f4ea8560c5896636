package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgermint/ledgermint/internal/cli"
	"github.com/ledgermint/ledgermint/internal/recurring"
)

func init() {
	recurringCmd := &cobra.Command{
		Use:   "recurring",
		Short: "Detect and manage recurring charges",
	}

	detectCmd := &cobra.Command{
		Use:   "detect",
		Short: "Scan the last year of transactions for recurring charges",
		RunE:  runRecurringDetect,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List detected recurring charges",
		RunE:  runRecurringList,
	}
	listCmd.Flags().Bool("all", false, "Include hidden recurring charges")

	hideCmd := &cobra.Command{
		Use:   "hide [id]",
		Short: "Hide a recurring charge from listings",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecurringHide,
	}

	recurringCmd.AddCommand(detectCmd)
	recurringCmd.AddCommand(listCmd)
	recurringCmd.AddCommand(hideCmd)

	rootCmd.AddCommand(recurringCmd)
}

func runRecurringDetect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	detector := recurring.NewDetector(store)
	report, err := detector.Detect(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Found %d recurring merchants across %d candidate groups (%d transactions marked)",
		report.Detected, report.GroupsConsidered, report.Marked)))
	if report.Failed > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%d groups failed to persist", report.Failed)))
	}

	return nil
}

func runRecurringList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	all, _ := cmd.Flags().GetBool("all")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	items, err := store.GetRecurringTransactions(ctx, !all)
	if err != nil {
		return fmt.Errorf("failed to list recurring charges: %w", err)
	}

	if len(items) == 0 {
		fmt.Println(cli.FormatInfo("No recurring charges detected yet. Run 'ledgermint recurring detect' first."))
		return nil
	}

	fmt.Println(cli.FormatTitle("Recurring charges"))
	for _, item := range items {
		status := ""
		if !item.IsActive {
			status = " (hidden)"
		}
		fmt.Printf("  %s  %-30s %9.2f  %-8s last %s%s\n",
			item.ID,
			item.MerchantName,
			item.Amount,
			item.Frequency,
			item.LastDate.Format("2006-01-02"),
			status)
	}

	return nil
}

func runRecurringHide(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SetRecurringActive(ctx, args[0], false); err != nil {
		return fmt.Errorf("failed to hide recurring charge: %w", err)
	}

	fmt.Println(cli.FormatSuccess("Recurring charge hidden"))
	return nil
}
