package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgermint/ledgermint/internal/cli"
	"github.com/ledgermint/ledgermint/internal/engine"
	"github.com/ledgermint/ledgermint/internal/model"
)

func init() {
	editCmd := &cobra.Command{
		Use:   "edit [transaction-id]",
		Short: "Edit a transaction's category, name, type, or notes",
		Long: `Edit one transaction. With --all, the category and display name are also
applied to every other transaction from the same merchant, and the choice
is remembered for future syncs.

Examples:
  ledgermint edit txn-123 --category Groceries --all
  ledgermint edit txn-123 --name "Corner Cafe" --notes "team lunch"
  ledgermint edit txn-123 --type transfer`,
		Args: cobra.ExactArgs(1),
		RunE: runEdit,
	}

	editCmd.Flags().String("category", "", "category name to assign")
	editCmd.Flags().Bool("clear-category", false, "remove the category")
	editCmd.Flags().String("name", "", "display name for the merchant")
	editCmd.Flags().String("type", "", "transaction type (expense, income, transfer, investment, return)")
	editCmd.Flags().String("notes", "", "free-form notes")
	editCmd.Flags().Bool("recurring", false, "mark as recurring")
	editCmd.Flags().Bool("all", false, "apply category and name to all transactions from this merchant")

	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	edit := engine.Edit{}

	if v, _ := cmd.Flags().GetString("category"); v != "" {
		category, catErr := store.GetCategoryByName(ctx, v)
		if catErr != nil {
			return fmt.Errorf("unknown category %q: %w", v, catErr)
		}
		edit.CategoryID = &category.ID
	}
	if v, _ := cmd.Flags().GetBool("clear-category"); v {
		edit.ClearCategory = true
	}
	if v, _ := cmd.Flags().GetString("name"); v != "" {
		edit.DisplayName = &v
	}
	if v, _ := cmd.Flags().GetString("type"); v != "" {
		txnType := model.TransactionType(v)
		edit.Type = &txnType
	}
	if cmd.Flags().Changed("notes") {
		v, _ := cmd.Flags().GetString("notes")
		edit.Notes = &v
	}
	if cmd.Flags().Changed("recurring") {
		v, _ := cmd.Flags().GetBool("recurring")
		edit.IsRecurring = &v
	}
	if v, _ := cmd.Flags().GetBool("all"); v {
		edit.ApplyToAll = true
	}

	if err := eng.ApplyEdit(ctx, args[0], edit); err != nil {
		return fmt.Errorf("edit failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess("Transaction updated"))
	return nil
}
