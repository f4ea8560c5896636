package storage

import (
	"context"
	"testing"
	"time"

	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/stretchr/testify/require"
)

// createTestStorage returns a migrated in-memory store. Default
// categories are seeded by the migrations themselves.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)

	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// testTransaction builds a valid transaction for storage tests.
func testTransaction(id, merchant string, amount float64, date time.Time) model.Transaction {
	txn := model.Transaction{
		ID:           id,
		AccountID:    "acct-1",
		Date:         date,
		MerchantName: merchant,
		Name:         merchant,
		Amount:       amount,
		Type:         model.TypeExpense,
		Source:       model.SourceSync,
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

func TestSQLiteStorage_Migrate(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	// Migrations are idempotent
	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	require.Equal(t, ExpectedSchemaVersion, version)
}

func TestSQLiteStorage_MigrationsSeedDefaultCategories(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, categories)

	byName := make(map[string]model.Category)
	for _, cat := range categories {
		byName[cat.Name] = cat
	}

	for _, name := range []string{"Groceries", "Income", "Investments", "Miscellaneous"} {
		_, ok := byName[name]
		require.True(t, ok, "expected seeded category %s", name)
	}
	require.True(t, byName["Miscellaneous"].IsDefault)
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("")
	require.Error(t, err)
}
