package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgermint/ledgermint/internal/cli"
)

func init() {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Create or upgrade the local database schema. Safe to run repeatedly.`,
		RunE:  runMigrate,
	}

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// initStorage migrates as part of opening the database
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	count, err := store.GetTransactionCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify database: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Database ready (%d transactions)", count)))
	return nil
}
