package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ledgermint/ledgermint/internal/cli"
	"github.com/ledgermint/ledgermint/internal/model"
)

func init() {
	splitCmd := &cobra.Command{
		Use:   "split",
		Short: "Split a transaction into shares",
		Long: `Split a transaction into shares, for example when a charge was shared
with a roommate. Only shares marked as yours count toward your spending
totals.`,
	}

	addCmd := &cobra.Command{
		Use:   "add [transaction-id]",
		Short: "Add a share to a transaction",
		Args:  cobra.ExactArgs(1),
		RunE:  runSplitAdd,
	}
	addCmd.Flags().Float64("amount", 0, "share amount (required)")
	addCmd.Flags().String("description", "", "what this share covers")
	addCmd.Flags().Bool("mine", false, "this share is my own spending")
	_ = addCmd.MarkFlagRequired("amount")

	listCmd := &cobra.Command{
		Use:   "list [transaction-id]",
		Short: "List a transaction's shares",
		Args:  cobra.ExactArgs(1),
		RunE:  runSplitList,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [split-id]",
		Short: "Delete a share",
		Args:  cobra.ExactArgs(1),
		RunE:  runSplitDelete,
	}

	splitCmd.AddCommand(addCmd)
	splitCmd.AddCommand(listCmd)
	splitCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(splitCmd)
}

func runSplitAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	amount, _ := cmd.Flags().GetFloat64("amount")
	description, _ := cmd.Flags().GetString("description")
	mine, _ := cmd.Flags().GetBool("mine")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	split := &model.TransactionSplit{
		ID:            uuid.NewString(),
		TransactionID: args[0],
		Amount:        amount,
		Description:   description,
		IsMyShare:     mine,
	}
	if err := store.SaveSplit(ctx, split); err != nil {
		return fmt.Errorf("failed to save split: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added share %.2f (id %s)", amount, split.ID)))
	return nil
}

func runSplitList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	txn, err := store.GetTransactionByID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load transaction: %w", err)
	}

	splits, err := store.GetSplitsByTransaction(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load splits: %w", err)
	}

	if len(splits) == 0 {
		fmt.Println(cli.FormatInfo("Transaction has no splits"))
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%s  %.2f", txn.EffectiveMerchant(), txn.Amount)))
	for _, split := range splits {
		owner := "other"
		if split.IsMyShare {
			owner = "mine"
		}
		fmt.Printf("  %s  %9.2f  %-5s %s\n", split.ID, split.Amount, owner, split.Description)
	}
	fmt.Printf("\nMy effective amount: %.2f\n", txn.EffectiveAmount(splits))

	return nil
}

func runSplitDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.DeleteSplit(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete split: %w", err)
	}

	fmt.Println(cli.FormatSuccess("Share deleted"))
	return nil
}
