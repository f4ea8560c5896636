package engine

import (
	"context"
	"testing"
	"time"

	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/rules"
	"github.com/ledgermint/ledgermint/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine returns an engine backed by a migrated in-memory store.
func newTestEngine(t *testing.T) (*Engine, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = store.Close()
	})

	return New(store, rules.MustDefaultRuleset()), store
}

// ingestTxn builds a raw provider transaction, pre-classification.
func ingestTxn(id, merchant string, amount float64, date time.Time) model.Transaction {
	return model.Transaction{
		ID:           id,
		AccountID:    "acct-1",
		Date:         date,
		MerchantName: merchant,
		Name:         merchant,
		Amount:       amount,
		Source:       model.SourceSync,
	}
}

func TestEngine_Ingest_ClassifiesAndCategorizes(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	txns := []model.Transaction{
		ingestTxn("txn-netflix", "Netflix", 15.49, date),
		ingestTxn("txn-payroll", "EMPLOYER PAYROLL", -2500.00, date),
		ingestTxn("txn-venmo", "VENMO PAYMENT", 80.00, date),
		ingestTxn("txn-broker", "ROBINHOOD", 400.00, date),
		ingestTxn("txn-unknown", "XYZZY LLC", 20.00, date),
	}

	stats, err := engine.Ingest(ctx, txns)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 5, stats.Saved)
	assert.Equal(t, 2, stats.ByType[model.TypeExpense])
	assert.Equal(t, 1, stats.ByType[model.TypeIncome])
	assert.Equal(t, 1, stats.ByType[model.TypeTransfer])
	assert.Equal(t, 1, stats.ByType[model.TypeInvestment])
	assert.Equal(t, 1, stats.NeedsReview)

	subscriptions, err := store.GetCategoryByName(ctx, "Subscriptions")
	require.NoError(t, err)

	netflix, err := store.GetTransactionByID(ctx, "txn-netflix")
	require.NoError(t, err)
	assert.Equal(t, model.TypeExpense, netflix.Type)
	require.NotNil(t, netflix.CategoryID)
	assert.Equal(t, subscriptions.ID, *netflix.CategoryID)
	assert.False(t, netflix.NeedsReview)

	// Non-spending types never receive a category at ingest
	for _, id := range []string{"txn-payroll", "txn-venmo", "txn-broker"} {
		got, getErr := store.GetTransactionByID(ctx, id)
		require.NoError(t, getErr)
		assert.Nil(t, got.CategoryID, "transaction %s", id)
	}

	// No rule matched: default category, flagged for review
	misc, err := store.GetCategoryByName(ctx, rules.FallbackCategory)
	require.NoError(t, err)
	unknown, err := store.GetTransactionByID(ctx, "txn-unknown")
	require.NoError(t, err)
	require.NotNil(t, unknown.CategoryID)
	assert.Equal(t, misc.ID, *unknown.CategoryID)
	assert.True(t, unknown.NeedsReview)
}

func TestEngine_Ingest_MerchantMemoryWins(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// The user filed Netflix under Entertainment; memory must beat the
	// keyword rule that says Subscriptions.
	entertainment, err := store.GetCategoryByName(ctx, "Entertainment")
	require.NoError(t, err)
	require.NoError(t, store.SaveMerchantMapping(ctx, &model.MerchantMapping{
		Merchant:    "netflix.com *8123",
		DisplayName: "Netflix",
		CategoryID:  &entertainment.ID,
		Source:      model.MappingSourceManual,
		UseCount:    3,
	}))

	stats, err := engine.Ingest(ctx, []model.Transaction{
		ingestTxn("txn-1", "NETFLIX.COM *8123", 15.49, date),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.NeedsReview)

	got, err := store.GetTransactionByID(ctx, "txn-1")
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, entertainment.ID, *got.CategoryID)
	assert.Equal(t, "Netflix", got.DisplayName)
	assert.False(t, got.NeedsReview)

	mapping, err := store.GetMerchantMapping(ctx, "NETFLIX.COM *8123")
	require.NoError(t, err)
	assert.Equal(t, 4, mapping.UseCount)
}

func TestEngine_Ingest_ResyncSkipsDuplicates(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := engine.Ingest(ctx, []model.Transaction{
		ingestTxn("txn-1", "Netflix", 15.49, date),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Saved)

	// Same transaction under a fresh provider ID, as a re-sync delivers it
	second, err := engine.Ingest(ctx, []model.Transaction{
		ingestTxn("txn-1-again", "Netflix", 15.49, date),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Saved)
}

func TestEngine_Ingest_GeneratesIDs(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	txn := ingestTxn("", "Corner Cafe", 8.50, date)
	stats, err := engine.Ingest(ctx, []model.Transaction{txn})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Saved)

	count, err := store.GetTransactionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
