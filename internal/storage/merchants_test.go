package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/ledgermint/ledgermint/internal/common"
	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_SaveAndGetMerchantMapping(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	cat, err := store.GetCategoryByName(ctx, "Shopping")
	require.NoError(t, err)

	mapping := &model.MerchantMapping{
		Merchant:    "amzn mktp",
		DisplayName: "Amazon",
		CategoryID:  &cat.ID,
		Source:      model.MappingSourceManual,
		UseCount:    1,
	}
	require.NoError(t, store.SaveMerchantMapping(ctx, mapping))

	// Lookup is case-insensitive on the raw merchant text
	got, err := store.GetMerchantMapping(ctx, "  AMZN MKTP ")
	require.NoError(t, err)
	assert.Equal(t, "Amazon", got.DisplayName)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, cat.ID, *got.CategoryID)
	assert.Equal(t, model.MappingSourceManual, got.Source)

	_, err = store.GetMerchantMapping(ctx, "unknown vendor")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSQLiteStorage_SaveMerchantMapping_Upserts(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	mapping := &model.MerchantMapping{
		Merchant:    "netflix.com",
		DisplayName: "Netflix",
		Source:      model.MappingSourceAuto,
	}
	require.NoError(t, store.SaveMerchantMapping(ctx, mapping))

	mapping.DisplayName = "Netflix Subscription"
	mapping.Source = model.MappingSourceAutoConfirmed
	mapping.UseCount = 7
	require.NoError(t, store.SaveMerchantMapping(ctx, mapping))

	got, err := store.GetMerchantMapping(ctx, "netflix.com")
	require.NoError(t, err)
	assert.Equal(t, "Netflix Subscription", got.DisplayName)
	assert.Equal(t, model.MappingSourceAutoConfirmed, got.Source)
	assert.Equal(t, 7, got.UseCount)

	mappings, err := store.GetAllMerchantMappings(ctx)
	require.NoError(t, err)
	assert.Len(t, mappings, 1)
}

func TestSQLiteStorage_SaveMerchantMapping_RequiresNormalizedKey(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	err := store.SaveMerchantMapping(ctx, &model.MerchantMapping{
		Merchant:    "Amzn Mktp",
		DisplayName: "Amazon",
		Source:      model.MappingSourceManual,
	})
	assert.ErrorIs(t, err, ErrInvalidMapping)
}

func TestSQLiteStorage_DeleteMerchantMapping(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveMerchantMapping(ctx, &model.MerchantMapping{
		Merchant:    "uber",
		DisplayName: "Uber",
		Source:      model.MappingSourceManual,
	}))

	require.NoError(t, store.DeleteMerchantMapping(ctx, "UBER"))

	_, err := store.GetMerchantMapping(ctx, "uber")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.DeleteMerchantMapping(ctx, "uber")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_MappingCache(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	mappings := []*model.MerchantMapping{
		{Merchant: "netflix.com", DisplayName: "Netflix", Source: model.MappingSourceAuto},
		{Merchant: "uber", DisplayName: "Uber", Source: model.MappingSourceManual},
	}
	for _, m := range mappings {
		require.NoError(t, store.SaveMerchantMapping(ctx, m))
	}

	// Simulate a fresh process and warm the cache
	store.mappingCache = make(map[string]*model.MerchantMapping)
	require.NoError(t, store.WarmMappingCache(ctx))

	for _, m := range mappings {
		cached := store.getCachedMapping(m.Merchant)
		require.NotNil(t, cached, "mapping %s not cached after warming", m.Merchant)
		assert.Equal(t, m.DisplayName, cached.DisplayName)
	}
}
