package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ledgermint/ledgermint/internal/cli"
	"github.com/ledgermint/ledgermint/internal/plaid"
)

func init() {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch new transactions from your bank via Plaid",
		Long: `Fetch transactions from all linked accounts, classify them, and save
them to the local database. Re-running over an overlapping window is safe:
already-synced rows are skipped by hash.`,
		RunE: runSync,
	}

	syncCmd.Flags().String("from", "", "start date (YYYY-MM-DD, default 30 days ago)")
	syncCmd.Flags().String("to", "", "end date (YYYY-MM-DD, default today)")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -30)

	if v, _ := cmd.Flags().GetString("from"); v != "" {
		parsed, err := parseDateFlag(v)
		if err != nil {
			return err
		}
		startDate = parsed
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		parsed, err := parseDateFlag(v)
		if err != nil {
			return err
		}
		endDate = parsed
	}

	client, err := plaid.NewClient(plaid.Config{
		ClientID:    viper.GetString("plaid.client_id"),
		Secret:      viper.GetString("plaid.secret"),
		Environment: viper.GetString("plaid.environment"),
		AccessToken: viper.GetString("plaid.access_token"),
	})
	if err != nil {
		return fmt.Errorf("failed to create Plaid client: %w", err)
	}

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	slog.Info("Fetching transactions",
		"from", startDate.Format("2006-01-02"),
		"to", endDate.Format("2006-01-02"))

	transactions, err := client.GetTransactions(ctx, startDate, endDate)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	stats, err := eng.Ingest(ctx, transactions)
	if err != nil {
		return fmt.Errorf("failed to ingest transactions: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Synced %d transactions (%d new, %d need review)",
		stats.Total, stats.Saved, stats.NeedsReview)))
	for txnType, count := range stats.ByType {
		fmt.Printf("  %s: %d\n", txnType, count)
	}

	return nil
}
