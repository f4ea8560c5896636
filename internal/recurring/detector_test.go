package recurring

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/service"
	"github.com/ledgermint/ledgermint/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(t *testing.T) (*Detector, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = store.Close()
	})

	return NewDetector(store), store
}

func saveTxns(t *testing.T, store *storage.SQLiteStorage, txns []model.Transaction) {
	t.Helper()

	for i := range txns {
		txns[i].Hash = txns[i].GenerateHash()
	}
	saved, err := store.SaveTransactions(context.Background(), txns)
	require.NoError(t, err)
	require.Equal(t, len(txns), saved)
}

func monthlyCharges(merchant string, amount float64, months int, last time.Time) []model.Transaction {
	txns := make([]model.Transaction, 0, months)
	for i := months - 1; i >= 0; i-- {
		date := last.AddDate(0, -i, 0)
		txns = append(txns, model.Transaction{
			ID:           fmt.Sprintf("%s-%d", merchant, i),
			AccountID:    "acct-1",
			Date:         date,
			MerchantName: merchant,
			Name:         merchant,
			Amount:       amount,
			Type:         model.TypeExpense,
			Source:       model.SourceSync,
		})
	}
	return txns
}

func TestDetector_Detect_MonthlySubscription(t *testing.T) {
	detector, store := newTestDetector(t)
	ctx := context.Background()
	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	saveTxns(t, store, monthlyCharges("Netflix", 15.49, 12, asOf.AddDate(0, 0, -3)))

	report, err := detector.Detect(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, report.GroupsConsidered)
	assert.Equal(t, 1, report.Detected)
	assert.Equal(t, 12, report.Marked)
	assert.Equal(t, 0, report.Failed)

	patterns, err := store.GetRecurringTransactions(ctx, true)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "Netflix", patterns[0].MerchantName)
	assert.Equal(t, model.FrequencyMonthly, patterns[0].Frequency)
	assert.InDelta(t, 15.49, patterns[0].Amount, 0.001)

	// Every member of the series carries the recurring flag
	txns, err := store.ListTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	for _, txn := range txns {
		assert.True(t, txn.IsRecurring, "transaction %s", txn.ID)
	}
}

func TestDetector_Detect_UnstableAmountsRejected(t *testing.T) {
	detector, store := newTestDetector(t)
	ctx := context.Background()
	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// Monthly cadence but wildly varying totals: a warehouse run, not a
	// subscription.
	amounts := []float64{89.12, 240.55, 132.08, 61.40}
	txns := make([]model.Transaction, 0, len(amounts))
	for i, amount := range amounts {
		txns = append(txns, model.Transaction{
			ID:           fmt.Sprintf("costco-%d", i),
			AccountID:    "acct-1",
			Date:         asOf.AddDate(0, -i, 0),
			MerchantName: "Costco Whse",
			Name:         "Costco Whse",
			Amount:       amount,
			Type:         model.TypeExpense,
			Source:       model.SourceSync,
		})
	}
	saveTxns(t, store, txns)

	report, err := detector.Detect(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, report.GroupsConsidered)
	assert.Equal(t, 0, report.Detected)
	assert.Equal(t, 0, report.Marked)

	patterns, err := store.GetRecurringTransactions(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, patterns)
}

func TestDetector_Detect_WeeklyCadence(t *testing.T) {
	detector, store := newTestDetector(t)
	ctx := context.Background()
	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	txns := make([]model.Transaction, 0, 6)
	for i := 0; i < 6; i++ {
		txns = append(txns, model.Transaction{
			ID:           fmt.Sprintf("cleaner-%d", i),
			AccountID:    "acct-1",
			Date:         asOf.AddDate(0, 0, -7*i-2),
			MerchantName: "Sparkle Cleaning",
			Name:         "Sparkle Cleaning",
			Amount:       60.00,
			Type:         model.TypeExpense,
			Source:       model.SourceSync,
		})
	}
	saveTxns(t, store, txns)

	report, err := detector.Detect(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Detected)

	patterns, err := store.GetRecurringTransactions(ctx, true)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, model.FrequencyWeekly, patterns[0].Frequency)
}

func TestDetector_Detect_GroupsByDisplayName(t *testing.T) {
	detector, store := newTestDetector(t)
	ctx := context.Background()
	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// Raw descriptors differ per charge; the shared display name ties
	// the series together.
	txns := make([]model.Transaction, 0, 3)
	for i := 0; i < 3; i++ {
		txns = append(txns, model.Transaction{
			ID:           fmt.Sprintf("spotify-%d", i),
			AccountID:    "acct-1",
			Date:         asOf.AddDate(0, -i, 0),
			MerchantName: fmt.Sprintf("SPOTIFY *REF%04d", i),
			Name:         "Spotify",
			DisplayName:  "Spotify",
			Amount:       9.99,
			Type:         model.TypeExpense,
			Source:       model.SourceSync,
		})
	}
	saveTxns(t, store, txns)

	report, err := detector.Detect(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Detected)
	assert.Equal(t, 3, report.Marked)

	patterns, err := store.GetRecurringTransactions(ctx, true)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "Spotify", patterns[0].MerchantName)
}

func TestDetector_Detect_Idempotent(t *testing.T) {
	detector, store := newTestDetector(t)
	ctx := context.Background()
	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	saveTxns(t, store, monthlyCharges("Netflix", 15.49, 6, asOf.AddDate(0, 0, -3)))

	first, err := detector.Detect(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Detected)

	second, err := detector.Detect(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Detected)

	// Still exactly one pattern row for the merchant
	patterns, err := store.GetRecurringTransactions(ctx, false)
	require.NoError(t, err)
	assert.Len(t, patterns, 1)
}

func TestDetector_Detect_SingleChargeIgnored(t *testing.T) {
	detector, store := newTestDetector(t)
	ctx := context.Background()
	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	saveTxns(t, store, monthlyCharges("One Off Shop", 42.00, 1, asOf.AddDate(0, 0, -3)))

	report, err := detector.Detect(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, report.GroupsConsidered)
	assert.Equal(t, 0, report.Detected)
}
