// Package engine orchestrates transaction classification and category
// assignment on top of the rules package and the storage layer.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ledgermint/ledgermint/internal/common"
	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/rules"
	"github.com/ledgermint/ledgermint/internal/service"
)

// Engine runs the ingest pipeline and the batch maintenance jobs.
type Engine struct {
	storage service.Storage
	rules   *rules.Ruleset
}

// Config holds configuration options for the engine.
type Config struct {
	BatchSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{BatchSize: 500}
}

// New creates an engine with the given storage and ruleset.
func New(storage service.Storage, ruleset *rules.Ruleset) *Engine {
	return &Engine{
		storage: storage,
		rules:   ruleset,
	}
}

// Ingest classifies a batch of freshly fetched transactions and persists
// them. Rows whose hash already exists in storage are silently skipped,
// so re-running a sync over an overlapping window is safe.
func (e *Engine) Ingest(ctx context.Context, txns []model.Transaction) (*service.IngestStats, error) {
	if len(txns) == 0 {
		return &service.IngestStats{ByType: make(map[model.TransactionType]int)}, nil
	}

	categoryIDs, err := e.loadCategoryIDs(ctx)
	if err != nil {
		return nil, err
	}

	stats := &service.IngestStats{
		ByType: make(map[model.TransactionType]int),
		Total:  len(txns),
	}

	for i := range txns {
		txn := &txns[i]
		if txn.ID == "" {
			txn.ID = uuid.NewString()
		}
		if txn.CreatedAt.IsZero() {
			txn.CreatedAt = time.Now()
		}
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		// The classifier never produces the return type; a file import
		// that tagged a refund keeps its tag.
		if txn.Type != model.TypeReturn {
			txn.Type = e.rules.ClassifyType(*txn)
		}
		stats.ByType[txn.Type]++

		if txn.Type != model.TypeExpense && txn.Type != model.TypeReturn {
			continue
		}

		categoryID, displayName, needsReview, resolveErr := e.resolveCategory(ctx, *txn, categoryIDs, true)
		if resolveErr != nil {
			return nil, resolveErr
		}
		txn.CategoryID = categoryID
		txn.NeedsReview = needsReview
		if txn.DisplayName == "" {
			txn.DisplayName = displayName
		}
		if needsReview {
			stats.NeedsReview++
		}
	}

	saved, err := e.storage.SaveTransactions(ctx, txns)
	if err != nil {
		return nil, fmt.Errorf("failed to save transactions: %w", err)
	}
	stats.Saved = saved

	slog.Info("Ingest complete",
		"total", stats.Total,
		"saved", stats.Saved,
		"needs_review", stats.NeedsReview)

	return stats, nil
}

// resolveCategory applies the two-tier category resolver: an exact
// merchant-memory hit wins unconditionally, otherwise the rule tier
// proposes a category with a confidence that drives the review flag.
// recordUse bumps the mapping's use count on a hit. Only the ingest
// path records usage; batch jobs leave merchant memory untouched so
// re-running them with the same inputs reads the same state.
func (e *Engine) resolveCategory(ctx context.Context, txn model.Transaction, categoryIDs map[string]int, recordUse bool) (*int, string, bool, error) {
	mapping, err := e.storage.GetMerchantMapping(ctx, txn.MerchantName)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, "", false, fmt.Errorf("failed to look up merchant mapping: %w", err)
	}

	if mapping != nil && mapping.CategoryID != nil {
		if recordUse {
			mapping.UseCount++
			if saveErr := e.storage.SaveMerchantMapping(ctx, mapping); saveErr != nil {
				slog.Warn("Failed to bump mapping use count", "merchant", mapping.Merchant, "error", saveErr)
			}
		}
		return mapping.CategoryID, mapping.DisplayName, false, nil
	}

	suggestion := e.rules.SuggestCategory(txn)
	id, ok := categoryIDs[suggestion.Category]
	if !ok {
		// Suggested category missing from the table; leave the row
		// uncategorized and let a human sort it out.
		return nil, "", true, nil
	}
	return &id, "", suggestion.NeedsReview(), nil
}

// loadCategoryIDs builds a name to ID lookup over the active categories.
func (e *Engine) loadCategoryIDs(ctx context.Context) (map[string]int, error) {
	categories, err := e.storage.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories found: %w", common.ErrUnknownCategory)
	}

	byName := make(map[string]int, len(categories))
	for _, cat := range categories {
		byName[cat.Name] = cat.ID
	}
	return byName, nil
}

// forEachTransaction pages through every transaction matching the filter
// and invokes fn for each one. Paging keeps memory flat on large ledgers.
func (e *Engine) forEachTransaction(ctx context.Context, filter service.TransactionFilter, fn func(txn model.Transaction) error) error {
	batchSize := DefaultConfig().BatchSize
	filter.Limit = batchSize

	for offset := 0; ; offset += batchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		filter.Offset = offset
		batch, err := e.storage.ListTransactions(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}

		for _, txn := range batch {
			if err := fn(txn); err != nil {
				return err
			}
		}

		if len(batch) < batchSize {
			return nil
		}
	}
}
