package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgermint/ledgermint/internal/cli"
	"github.com/ledgermint/ledgermint/internal/dedupe"
	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/service"
)

func init() {
	duplicatesCmd := &cobra.Command{
		Use:   "duplicates",
		Short: "Find and remove duplicate transactions",
	}

	findCmd := &cobra.Command{
		Use:   "find",
		Short: "List groups of probable duplicate transactions",
		RunE:  runDuplicatesFind,
	}

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete duplicate copies, keeping the oldest of each group",
		RunE:  runDuplicatesPurge,
	}
	purgeCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	duplicatesCmd.AddCommand(findCmd)
	duplicatesCmd.AddCommand(purgeCmd)

	rootCmd.AddCommand(duplicatesCmd)
}

func runDuplicatesFind(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	grouper := dedupe.NewGrouper(store)
	groups, err := grouper.FindDuplicates(ctx, service.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("failed to find duplicates: %w", err)
	}

	if len(groups) == 0 {
		fmt.Println(cli.FormatSuccess("No duplicates found"))
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%d duplicate groups", len(groups))))
	for _, group := range groups {
		fmt.Printf("\n%s  %-30s %9.2f  (%d copies)\n",
			group.Date.Format("2006-01-02"),
			group.Merchant,
			group.Amount,
			len(group.Transactions))
		for i, txn := range group.Transactions {
			marker := "would remove"
			if i == 0 {
				marker = "keep (oldest)"
			}
			source := ""
			if txn.Source == model.SourceFile {
				source = " [file import]"
			}
			fmt.Printf("    %s  %s%s\n", txn.ID, marker, source)
		}
	}

	fmt.Println(cli.FormatInfo("\nRun 'ledgermint duplicates purge' to remove the extra copies."))
	return nil
}

func runDuplicatesPurge(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	yes, _ := cmd.Flags().GetBool("yes")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	grouper := dedupe.NewGrouper(store)
	groups, err := grouper.FindDuplicates(ctx, service.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("failed to find duplicates: %w", err)
	}

	if len(groups) == 0 {
		fmt.Println(cli.FormatSuccess("No duplicates found"))
		return nil
	}

	toRemove := 0
	for _, group := range groups {
		toRemove += len(group.RemoveCandidates())
	}

	if !yes {
		fmt.Printf("%s ", cli.FormatPrompt(fmt.Sprintf(
			"Delete %d duplicate copies across %d groups? [y/N]", toRemove, len(groups))))
		var answer string
		if _, scanErr := fmt.Scanln(&answer); scanErr != nil || (answer != "y" && answer != "Y") {
			fmt.Println(cli.FormatInfo("Aborted, nothing deleted"))
			return nil
		}
	}

	deleted, err := grouper.Purge(ctx, groups)
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted %d duplicate transactions", deleted)))
	return nil
}
