package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgermint/ledgermint/internal/cli"
)

func init() {
	merchantsCmd := &cobra.Command{
		Use:   "merchants",
		Short: "Inspect and manage merchant memory",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List learned merchant mappings",
		RunE:  runMerchantsList,
	}

	forgetCmd := &cobra.Command{
		Use:   "forget [merchant]",
		Short: "Forget a merchant's learned category and display name",
		Args:  cobra.ExactArgs(1),
		RunE:  runMerchantsForget,
	}

	merchantsCmd.AddCommand(listCmd)
	merchantsCmd.AddCommand(forgetCmd)

	rootCmd.AddCommand(merchantsCmd)
}

func runMerchantsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	mappings, err := store.GetAllMerchantMappings(ctx)
	if err != nil {
		return fmt.Errorf("failed to list merchant mappings: %w", err)
	}

	if len(mappings) == 0 {
		fmt.Println(cli.FormatInfo("No merchant mappings learned yet"))
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

	fmt.Println(cli.FormatTitle("Merchant memory"))
	for _, mapping := range mappings {
		category := "-"
		if mapping.CategoryID != nil {
			category = categoryNames[*mapping.CategoryID]
		}
		display := mapping.DisplayName
		if display == "" {
			display = "-"
		}
		fmt.Printf("  %-30s → %-25s %-20s %-14s used %d\n",
			mapping.Merchant, display, category, mapping.Source, mapping.UseCount)
	}

	return nil
}

func runMerchantsForget(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.DeleteMerchantMapping(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to forget merchant: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Forgot merchant %q", args[0])))
	return nil
}
