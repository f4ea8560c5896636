package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					icon TEXT NOT NULL DEFAULT '',
					color TEXT NOT NULL DEFAULT '',
					is_default INTEGER NOT NULL DEFAULT 0,
					is_active INTEGER NOT NULL DEFAULT 1
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					account_id TEXT NOT NULL,
					hash TEXT UNIQUE NOT NULL,
					date DATETIME NOT NULL,
					merchant_name TEXT NOT NULL,
					name TEXT NOT NULL DEFAULT '',
					original_name TEXT NOT NULL DEFAULT '',
					display_name TEXT NOT NULL DEFAULT '',
					amount REAL NOT NULL,
					type TEXT NOT NULL,
					category_id INTEGER REFERENCES categories(id),
					hint_primary TEXT NOT NULL DEFAULT '',
					hint_detailed TEXT NOT NULL DEFAULT '',
					legacy_hints TEXT NOT NULL DEFAULT '',
					needs_review INTEGER NOT NULL DEFAULT 0,
					pending INTEGER NOT NULL DEFAULT 0,
					source TEXT NOT NULL DEFAULT 'sync',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_merchant ON transactions(merchant_name)`,
				`CREATE INDEX idx_transactions_type ON transactions(type)`,

				`CREATE TABLE IF NOT EXISTS merchant_mappings (
					merchant TEXT PRIMARY KEY,
					display_name TEXT NOT NULL DEFAULT '',
					category_id INTEGER REFERENCES categories(id),
					source TEXT NOT NULL,
					use_count INTEGER NOT NULL DEFAULT 0,
					last_updated DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Seed default categories",
		Up: func(tx *sql.Tx) error {
			defaults := []struct {
				name, icon, color string
				isDefault         bool
			}{
				{"Groceries", "🛒", "#7FB069", false},
				{"Food & Dining", "🍜", "#E08E45", false},
				{"Shopping", "🛍️", "#B388EB", false},
				{"Subscriptions", "📺", "#6C91BF", false},
				{"Transportation", "🚗", "#5BC0BE", false},
				{"Travel", "✈️", "#3A86FF", false},
				{"Entertainment", "🎟️", "#FF6B9D", false},
				{"Bills & Utilities", "💡", "#FFD166", false},
				{"Health", "🏥", "#EF476F", false},
				{"Personal Care", "💇", "#F4A5AE", false},
				{"Home", "🏠", "#8D6A9F", false},
				{"Pets", "🐾", "#A98467", false},
				{"Education", "📚", "#118AB2", false},
				{"Services", "🛠️", "#9097A6", false},
				{"Cash & ATM", "💵", "#6A994E", false},
				{"Fees", "🧾", "#BC4749", false},
				{"Income", "💰", "#06D6A0", false},
				{"Investments", "📈", "#073B4C", false},
				{"Miscellaneous", "🔖", "#ADB5BD", true},
			}

			stmt, err := tx.Prepare(`
				INSERT OR IGNORE INTO categories (name, icon, color, is_default, is_active)
				VALUES (?, ?, ?, ?, 1)
			`)
			if err != nil {
				return fmt.Errorf("failed to prepare category insert: %w", err)
			}
			defer func() { _ = stmt.Close() }()

			for _, c := range defaults {
				if _, err := stmt.Exec(c.name, c.icon, c.color, c.isDefault); err != nil {
					return fmt.Errorf("failed to seed category %s: %w", c.name, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Add transaction splits",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transaction_splits (
					id TEXT PRIMARY KEY,
					transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
					amount REAL NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					is_my_share INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_splits_transaction_id ON transaction_splits(transaction_id)`,
				`ALTER TABLE transactions ADD COLUMN is_split INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE transactions ADD COLUMN notes TEXT NOT NULL DEFAULT ''`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     4,
		Description: "Add recurring transactions",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS recurring_transactions (
					id TEXT PRIMARY KEY,
					merchant_name TEXT UNIQUE NOT NULL,
					amount REAL NOT NULL,
					frequency TEXT NOT NULL,
					last_date DATETIME NOT NULL,
					is_active INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`ALTER TABLE transactions ADD COLUMN is_recurring INTEGER NOT NULL DEFAULT 0`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
