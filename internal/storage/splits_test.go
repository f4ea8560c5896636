package storage

import (
	"context"
	"testing"
	"time"

	"github.com/ledgermint/ledgermint/internal/common"
	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_SaveAndGetSplits(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	txn := testTransaction("txn-1", "Fancy Dinner", 100.00, date)
	_, err := store.SaveTransactions(ctx, []model.Transaction{txn})
	require.NoError(t, err)

	splits := []*model.TransactionSplit{
		{ID: "split-1", TransactionID: "txn-1", Amount: 60.00, Description: "my half", IsMyShare: true},
		{ID: "split-2", TransactionID: "txn-1", Amount: 40.00, Description: "roommate", IsMyShare: false},
	}
	for _, s := range splits {
		require.NoError(t, store.SaveSplit(ctx, s))
	}

	// Parent is flagged as split
	parent, err := store.GetTransactionByID(ctx, "txn-1")
	require.NoError(t, err)
	assert.True(t, parent.IsSplit)

	got, err := store.GetSplitsByTransaction(ctx, "txn-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Split-aware totals count only the user's share
	assert.InDelta(t, 60.00, parent.EffectiveAmount(got), 0.001)
}

func TestSQLiteStorage_DeleteSplit(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	txn := testTransaction("txn-1", "Fancy Dinner", 100.00, date)
	_, err := store.SaveTransactions(ctx, []model.Transaction{txn})
	require.NoError(t, err)

	require.NoError(t, store.SaveSplit(ctx, &model.TransactionSplit{
		ID: "split-1", TransactionID: "txn-1", Amount: 100.00, IsMyShare: true,
	}))

	require.NoError(t, store.DeleteSplit(ctx, "split-1"))

	// Last split removed clears the parent flag
	parent, err := store.GetTransactionByID(ctx, "txn-1")
	require.NoError(t, err)
	assert.False(t, parent.IsSplit)

	err = store.DeleteSplit(ctx, "split-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
