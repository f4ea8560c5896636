package main

import (
	"github.com/spf13/cobra"

	"github.com/ledgermint/ledgermint/internal/tui"
)

func init() {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Review transactions the classifier was unsure about",
		Long: `Open an interactive screen listing every transaction flagged for review.
Pick a category for each one; choices can be remembered per merchant so
future syncs categorize them automatically.`,
		RunE: runReview,
	}

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return tui.Run(ctx, store, eng)
}
