package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ledgermint/ledgermint/internal/config"
	"github.com/ledgermint/ledgermint/internal/engine"
	"github.com/ledgermint/ledgermint/internal/rules"
	"github.com/ledgermint/ledgermint/internal/service"
	"github.com/ledgermint/ledgermint/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/ledgermint/ledgermint.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine builds the classification engine over a migrated store.
func initEngine(ctx context.Context) (*engine.Engine, service.Storage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	return engine.New(store, rules.MustDefaultRuleset()), store, nil
}

// parseMonth turns "2024-03" into that month's date range.
func parseMonth(month string) (service.DateRange, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return service.DateRange{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", month, err)
	}
	return service.DateRange{
		Start: start,
		End:   start.AddDate(0, 1, 0).Add(-time.Second),
	}, nil
}

// parseDateFlag parses a --from/--to style flag value.
func parseDateFlag(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return t, nil
}
