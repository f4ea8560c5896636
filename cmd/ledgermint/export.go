package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgermint/ledgermint/internal/cli"
	"github.com/ledgermint/ledgermint/internal/config"
	"github.com/ledgermint/ledgermint/internal/service"
	"github.com/ledgermint/ledgermint/internal/sheets"
)

func init() {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export classified transactions to Google Sheets",
		Long: `Write classified transactions, category totals, and recurring charges
for a month to a Google Sheet.

Authentication uses either a service account key or OAuth2 credentials;
see the sheets section of the config file.`,
		RunE: runExport,
	}

	exportCmd.Flags().String("month", "", "month to export (YYYY-MM, default last month)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	month, _ := cmd.Flags().GetString("month")
	if month == "" {
		month = time.Now().AddDate(0, -1, 0).Format("2006-01")
	}
	dateRange, err := parseMonth(month)
	if err != nil {
		return err
	}

	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return fmt.Errorf("sheets configuration error: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	transactions, err := store.ListTransactions(ctx, service.TransactionFilter{
		StartDate: &dateRange.Start,
		EndDate:   &dateRange.End,
	})
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(transactions) == 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("No transactions found for %s", month)))
		return nil
	}

	categories, err := store.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	recurring, err := store.GetRecurringTransactions(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to load recurring charges: %w", err)
	}

	writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default().With("component", "sheets"))
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	summary := sheets.Summarize(transactions, categories, dateRange)
	if err := writer.Write(ctx, transactions, summary, categories, recurring); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Exported %d transactions for %s (income %.2f, expenses %.2f)",
		len(transactions), month, summary.TotalIncome, summary.TotalExpenses)))

	return nil
}
