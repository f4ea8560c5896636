package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ledgermint/ledgermint/internal/common"
	"github.com/ledgermint/ledgermint/internal/model"
)

// GetMerchantMapping retrieves the learned mapping for a normalized
// merchant key, or common.ErrNotFound when none exists.
func (s *SQLiteStorage) GetMerchantMapping(ctx context.Context, merchant string) (*model.MerchantMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(merchant, "merchant"); err != nil {
		return nil, err
	}

	key := model.NormalizeMerchant(merchant)

	if mapping := s.getCachedMapping(key); mapping != nil {
		return mapping, nil
	}

	var (
		mapping    model.MerchantMapping
		source     string
		categoryID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT merchant, display_name, category_id, source, use_count, last_updated
		FROM merchant_mappings
		WHERE merchant = ?
	`, key).Scan(
		&mapping.Merchant,
		&mapping.DisplayName,
		&categoryID,
		&source,
		&mapping.UseCount,
		&mapping.LastUpdated,
	)

	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant mapping: %w", err)
	}

	mapping.Source = model.MappingSource(source)
	if categoryID.Valid {
		id := int(categoryID.Int64)
		mapping.CategoryID = &id
	}

	s.cacheMapping(&mapping)
	return &mapping, nil
}

// SaveMerchantMapping creates or updates a merchant mapping.
func (s *SQLiteStorage) SaveMerchantMapping(ctx context.Context, mapping *model.MerchantMapping) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMapping(mapping); err != nil {
		return err
	}

	if mapping.LastUpdated.IsZero() {
		mapping.LastUpdated = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merchant_mappings (merchant, display_name, category_id, source, use_count, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(merchant) DO UPDATE SET
			display_name = excluded.display_name,
			category_id = excluded.category_id,
			source = excluded.source,
			use_count = excluded.use_count,
			last_updated = excluded.last_updated
	`, mapping.Merchant, mapping.DisplayName, mapping.CategoryID,
		string(mapping.Source), mapping.UseCount, mapping.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to save merchant mapping: %w", err)
	}

	s.cacheMapping(mapping)
	return nil
}

// GetAllMerchantMappings retrieves every merchant mapping, ordered by key.
func (s *SQLiteStorage) GetAllMerchantMappings(ctx context.Context) ([]model.MerchantMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT merchant, display_name, category_id, source, use_count, last_updated
		FROM merchant_mappings
		ORDER BY merchant
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant mappings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var mappings []model.MerchantMapping
	for rows.Next() {
		var (
			mapping    model.MerchantMapping
			source     string
			categoryID sql.NullInt64
		)
		err := rows.Scan(
			&mapping.Merchant,
			&mapping.DisplayName,
			&categoryID,
			&source,
			&mapping.UseCount,
			&mapping.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan merchant mapping: %w", err)
		}
		mapping.Source = model.MappingSource(source)
		if categoryID.Valid {
			id := int(categoryID.Int64)
			mapping.CategoryID = &id
		}
		mappings = append(mappings, mapping)
	}

	return mappings, rows.Err()
}

// DeleteMerchantMapping removes a learned mapping.
func (s *SQLiteStorage) DeleteMerchantMapping(ctx context.Context, merchant string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(merchant, "merchant"); err != nil {
		return err
	}

	key := model.NormalizeMerchant(merchant)

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM merchant_mappings WHERE merchant = ?
	`, key)
	if err != nil {
		return fmt.Errorf("failed to delete merchant mapping: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}

	s.cacheMutex.Lock()
	delete(s.mappingCache, key)
	s.cacheMutex.Unlock()

	return nil
}

// getCachedMapping retrieves a mapping from the read cache.
func (s *SQLiteStorage) getCachedMapping(merchant string) *model.MerchantMapping {
	s.cacheMutex.RLock()

	if time.Now().After(s.cacheExpiry) {
		// Cache expired; upgrade to write lock and clear
		s.cacheMutex.RUnlock()
		s.cacheMutex.Lock()
		defer s.cacheMutex.Unlock()

		if time.Now().After(s.cacheExpiry) {
			s.mappingCache = make(map[string]*model.MerchantMapping)
		}
		return nil
	}

	mapping := s.mappingCache[merchant]
	s.cacheMutex.RUnlock()
	return mapping
}

// cacheMapping adds a mapping to the read cache.
func (s *SQLiteStorage) cacheMapping(mapping *model.MerchantMapping) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	if len(s.mappingCache) == 0 {
		s.cacheExpiry = time.Now().Add(5 * time.Minute)
	}
	s.mappingCache[mapping.Merchant] = mapping
}

// WarmMappingCache loads all merchant mappings into the cache.
func (s *SQLiteStorage) WarmMappingCache(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	mappings, err := s.GetAllMerchantMappings(ctx)
	if err != nil {
		return err
	}

	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	s.mappingCache = make(map[string]*model.MerchantMapping)
	for i := range mappings {
		s.mappingCache[mappings[i].Merchant] = &mappings[i]
	}

	s.cacheExpiry = time.Now().Add(5 * time.Minute)
	return nil
}
