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

func TestSQLiteStorage_UpsertRecurringTransaction(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	recurring := &model.RecurringTransaction{
		MerchantName: "Netflix",
		Amount:       15.49,
		Frequency:    model.FrequencyMonthly,
		LastDate:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
	}
	require.NoError(t, store.UpsertRecurringTransaction(ctx, recurring))
	assert.NotEmpty(t, recurring.ID)

	// Second upsert for the same merchant updates in place
	recurring.Amount = 15.99
	recurring.LastDate = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpsertRecurringTransaction(ctx, recurring))

	all, err := store.GetRecurringTransactions(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.InDelta(t, 15.99, all[0].Amount, 0.001)
	assert.Equal(t, model.FrequencyMonthly, all[0].Frequency)
}

func TestSQLiteStorage_UpsertRecurringTransaction_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	err := store.UpsertRecurringTransaction(ctx, &model.RecurringTransaction{
		MerchantName: "Netflix",
		Frequency:    model.Frequency("fortnightly"),
		LastDate:     time.Now(),
	})
	assert.ErrorIs(t, err, ErrInvalidRecurring)
}

func TestSQLiteStorage_SetRecurringActive(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	recurring := &model.RecurringTransaction{
		MerchantName: "Spotify",
		Amount:       9.99,
		Frequency:    model.FrequencyMonthly,
		LastDate:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
	}
	require.NoError(t, store.UpsertRecurringTransaction(ctx, recurring))

	require.NoError(t, store.SetRecurringActive(ctx, recurring.ID, false))

	active, err := store.GetRecurringTransactions(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	// Hidden rows survive; they are deactivated, not deleted
	all, err := store.GetRecurringTransactions(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)

	err = store.SetRecurringActive(ctx, "missing", false)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
