package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgermint/ledgermint/internal/common"
	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_SaveTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	txns := []model.Transaction{
		testTransaction("txn-1", "Netflix", 15.49, date),
		testTransaction("txn-2", "Uber", 54.20, date),
	}

	saved, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	count, err := store.GetTransactionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSQLiteStorage_SaveTransactions_SkipsDuplicateHash(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first := testTransaction("txn-1", "Netflix", 15.49, date)
	saved, err := store.SaveTransactions(ctx, []model.Transaction{first})
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	// Same hash, different provider ID: a double sync
	resynced := testTransaction("txn-1-resync", "Netflix", 15.49, date)
	saved, err = store.SaveTransactions(ctx, []model.Transaction{resynced})
	require.NoError(t, err)
	assert.Equal(t, 0, saved)

	count, err := store.GetTransactionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteStorage_GetTransactionByID(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	txn := testTransaction("txn-1", "Amazn Mktp", 23.99, date)
	txn.Hint = &model.CategoryHint{Primary: "GENERAL_MERCHANDISE", Detailed: "GENERAL_MERCHANDISE_ONLINE"}
	txn.LegacyHints = []string{"Shops", "Digital Purchase"}
	txn.Notes = "birthday gift"

	_, err := store.SaveTransactions(ctx, []model.Transaction{txn})
	require.NoError(t, err)

	got, err := store.GetTransactionByID(ctx, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, "Amazn Mktp", got.MerchantName)
	assert.Equal(t, model.TypeExpense, got.Type)
	require.NotNil(t, got.Hint)
	assert.Equal(t, "GENERAL_MERCHANDISE", got.Hint.Primary)
	assert.Equal(t, []string{"Shops", "Digital Purchase"}, got.LegacyHints)
	assert.Equal(t, "birthday gift", got.Notes)

	_, err = store.GetTransactionByID(ctx, "missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSQLiteStorage_ListTransactions_Filters(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	income := testTransaction("txn-income", "Employer", -2500.00, feb)
	income.Type = model.TypeIncome

	reviewed := testTransaction("txn-review", "Mystery Shop", 12.00, mar)
	reviewed.NeedsReview = true

	txns := []model.Transaction{
		testTransaction("txn-jan", "Netflix", 15.49, jan),
		income,
		reviewed,
	}
	_, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)

	t.Run("date range", func(t *testing.T) {
		start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
		got, listErr := store.ListTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
		require.NoError(t, listErr)
		require.Len(t, got, 1)
		assert.Equal(t, "txn-income", got[0].ID)
	})

	t.Run("by type", func(t *testing.T) {
		typ := model.TypeIncome
		got, listErr := store.ListTransactions(ctx, service.TransactionFilter{Type: &typ})
		require.NoError(t, listErr)
		require.Len(t, got, 1)
		assert.Equal(t, "txn-income", got[0].ID)
	})

	t.Run("needs review", func(t *testing.T) {
		review := true
		got, listErr := store.ListTransactions(ctx, service.TransactionFilter{NeedsReview: &review})
		require.NoError(t, listErr)
		require.Len(t, got, 1)
		assert.Equal(t, "txn-review", got[0].ID)
	})

	t.Run("by merchant", func(t *testing.T) {
		got, listErr := store.ListTransactions(ctx, service.TransactionFilter{Merchant: "Netflix"})
		require.NoError(t, listErr)
		require.Len(t, got, 1)
		assert.Equal(t, "txn-jan", got[0].ID)
	})

	t.Run("invalid range", func(t *testing.T) {
		start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		_, listErr := store.ListTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
		assert.ErrorIs(t, listErr, ErrInvalidDateRange)
	})
}

func TestSQLiteStorage_ListTransactions_MerchantUsesDisplayName(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	txn := testTransaction("txn-1", "NETFLIX.COM *8123", 15.49, date)
	_, err := store.SaveTransactions(ctx, []model.Transaction{txn})
	require.NoError(t, err)

	txn.DisplayName = "Netflix"
	require.NoError(t, store.UpdateTransaction(ctx, &txn))

	got, err := store.ListTransactions(ctx, service.TransactionFilter{Merchant: "Netflix"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "txn-1", got[0].ID)
}

func TestSQLiteStorage_SetTransactionCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := store.SaveTransactions(ctx, []model.Transaction{testTransaction("txn-1", "Netflix", 15.49, date)})
	require.NoError(t, err)

	cat, err := store.GetCategoryByName(ctx, "Subscriptions")
	require.NoError(t, err)

	require.NoError(t, store.SetTransactionCategory(ctx, "txn-1", &cat.ID, false))

	got, err := store.GetTransactionByID(ctx, "txn-1")
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, cat.ID, *got.CategoryID)
	assert.False(t, got.NeedsReview)

	// Clearing the category
	require.NoError(t, store.SetTransactionCategory(ctx, "txn-1", nil, false))
	got, err = store.GetTransactionByID(ctx, "txn-1")
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	err = store.SetTransactionCategory(ctx, "missing", &cat.ID, false)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_SetTransactionType(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := store.SaveTransactions(ctx, []model.Transaction{testTransaction("txn-1", "Vanguard", 400.00, date)})
	require.NoError(t, err)

	require.NoError(t, store.SetTransactionType(ctx, "txn-1", model.TypeInvestment))

	got, err := store.GetTransactionByID(ctx, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, model.TypeInvestment, got.Type)

	err = store.SetTransactionType(ctx, "txn-1", model.TransactionType("bogus"))
	assert.Error(t, err)
}

func TestSQLiteStorage_PropagateMerchantEdit(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	txns := []model.Transaction{
		testTransaction("txn-1", "AMZN MKTP US", 10.00, date),
		testTransaction("txn-2", "AMZN MKTP US", 20.00, date.AddDate(0, 0, 1)),
		testTransaction("txn-3", "Uber", 30.00, date),
	}
	for i := range txns {
		txns[i].NeedsReview = true
	}
	_, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)

	cat, err := store.GetCategoryByName(ctx, "Shopping")
	require.NoError(t, err)

	updated, err := store.PropagateMerchantEdit(ctx, "amzn mktp us", "Amazon", &cat.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	got, err := store.GetTransactionByID(ctx, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, "Amazon", got.DisplayName)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, cat.ID, *got.CategoryID)
	assert.False(t, got.NeedsReview)

	// Unrelated merchant untouched
	other, err := store.GetTransactionByID(ctx, "txn-3")
	require.NoError(t, err)
	assert.Empty(t, other.DisplayName)
	assert.True(t, other.NeedsReview)
}

func TestSQLiteStorage_MarkTransactionsRecurring(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	txns := []model.Transaction{
		testTransaction("txn-1", "Netflix", 15.49, date),
		testTransaction("txn-2", "Netflix", 15.99, date.AddDate(0, 1, 0)),
		testTransaction("txn-3", "Netflix", 120.00, date.AddDate(0, 2, 0)), // gift card, outside band
		testTransaction("txn-4", "Uber", 15.49, date),                      // same amount, other merchant
	}
	_, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)

	marked, err := store.MarkTransactionsRecurring(ctx, "Netflix", 14.00, 17.00)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	got, err := store.GetTransactionByID(ctx, "txn-3")
	require.NoError(t, err)
	assert.False(t, got.IsRecurring)

	got, err = store.GetTransactionByID(ctx, "txn-4")
	require.NoError(t, err)
	assert.False(t, got.IsRecurring)
}

func TestSQLiteStorage_DeleteTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := store.SaveTransactions(ctx, []model.Transaction{
		testTransaction("txn-1", "Uber", 54.20, date),
		testTransaction("txn-2", "Uber", 12.00, date.AddDate(0, 0, 1)),
	})
	require.NoError(t, err)

	deleted, err := store.DeleteTransactions(ctx, []string{"txn-1", "missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	count, err := store.GetTransactionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
