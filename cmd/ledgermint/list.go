package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgermint/ledgermint/internal/cli"
	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/service"
)

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored transactions",
		RunE:  runList,
	}

	listCmd.Flags().String("month", "", "restrict to a month (YYYY-MM)")
	listCmd.Flags().String("type", "", "restrict to a type (expense, income, transfer, investment, return)")
	listCmd.Flags().String("merchant", "", "restrict to a merchant")
	listCmd.Flags().Bool("needs-review", false, "only transactions flagged for review")
	listCmd.Flags().Bool("uncategorized", false, "only transactions without a category")
	listCmd.Flags().Int("limit", 50, "maximum rows to show (0 for all)")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	filter := service.TransactionFilter{}
	if v, _ := cmd.Flags().GetString("month"); v != "" {
		dateRange, err := parseMonth(v)
		if err != nil {
			return err
		}
		filter.StartDate = &dateRange.Start
		filter.EndDate = &dateRange.End
	}
	if v, _ := cmd.Flags().GetString("type"); v != "" {
		txnType := model.TransactionType(v)
		if !txnType.Valid() {
			return fmt.Errorf("invalid transaction type %q", v)
		}
		filter.Type = &txnType
	}
	if v, _ := cmd.Flags().GetString("merchant"); v != "" {
		filter.Merchant = v
	}
	if v, _ := cmd.Flags().GetBool("needs-review"); v {
		needsReview := true
		filter.NeedsReview = &needsReview
	}
	if v, _ := cmd.Flags().GetBool("uncategorized"); v {
		filter.Uncategorized = true
	}
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	transactions, err := store.ListTransactions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}

	if len(transactions) == 0 {
		fmt.Println(cli.FormatInfo("No transactions match"))
		return nil
	}

	categories, err := store.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	categoryNames := make(map[int]string, len(categories))
	for _, cat := range categories {
		categoryNames[cat.ID] = cat.Name
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%d transactions", len(transactions))))
	for _, txn := range transactions {
		category := ""
		if txn.CategoryID != nil {
			category = categoryNames[*txn.CategoryID]
		}
		flags := ""
		if txn.NeedsReview {
			flags += " ?"
		}
		if txn.IsRecurring {
			flags += " ↻"
		}
		if txn.IsSplit {
			flags += " ÷"
		}
		id := txn.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Printf("  %s  %s  %-30s %9.2f  %-10s %s%s\n",
			id,
			txn.Date.Format("2006-01-02"),
			txn.EffectiveMerchant(),
			txn.Amount,
			txn.Type,
			category,
			flags)
	}

	return nil
}
