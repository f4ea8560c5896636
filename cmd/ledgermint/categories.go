package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgermint/ledgermint/internal/cli"
)

func init() {
	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending categories",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE:  runCategoriesList,
	}

	addCmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategoriesAdd,
	}
	addCmd.Flags().String("icon", "", "emoji icon for the category")
	addCmd.Flags().String("color", "", "hex color for the category")

	categoriesCmd.AddCommand(listCmd)
	categoriesCmd.AddCommand(addCmd)

	rootCmd.AddCommand(categoriesCmd)
}

func runCategoriesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	categories, err := store.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	fmt.Println(cli.FormatTitle("Categories"))
	for _, cat := range categories {
		marker := ""
		if cat.IsDefault {
			marker = " (default)"
		}
		fmt.Printf("  %3d  %s %s%s\n", cat.ID, cat.Icon, cat.Name, marker)
	}

	return nil
}

func runCategoriesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	icon, _ := cmd.Flags().GetString("icon")
	color, _ := cmd.Flags().GetString("color")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	category, err := store.CreateCategory(ctx, args[0], icon, color)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created category %q (id %d)", category.Name, category.ID)))
	return nil
}
