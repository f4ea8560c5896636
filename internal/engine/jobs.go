package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ledgermint/ledgermint/internal/common"
	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/service"
)

// typeCategories maps the types that carry a fixed category to its name.
var typeCategories = map[model.TransactionType]string{
	model.TypeIncome:     "Income",
	model.TypeInvestment: "Investments",
}

// ReclassifyAll recomputes the semantic type of every stored transaction
// from its amount, merchant, and description text alone. Persisted
// provider hints are deliberately ignored so the run is reproducible
// from the ledger itself. Spending categories are cleared on rows whose
// new type is transfer, income, or investment.
//
// The job is idempotent: a second run changes nothing.
func (e *Engine) ReclassifyAll(ctx context.Context) (*service.ReclassifyReport, error) {
	report := &service.ReclassifyReport{
		ByType: make(map[model.TransactionType]int),
	}

	err := e.forEachTransaction(ctx, service.TransactionFilter{}, func(txn model.Transaction) error {
		report.Total++

		stripped := txn
		stripped.Hint = nil
		stripped.LegacyHints = nil
		newType := e.rules.ClassifyType(stripped)
		report.ByType[newType]++

		if newType != txn.Type {
			if err := e.storage.SetTransactionType(ctx, txn.ID, newType); err != nil {
				slog.Warn("Failed to reclassify transaction", "id", txn.ID, "error", err)
				report.Failed++
				return nil
			}
			report.Changed++
		}

		if typeClearsCategory(newType) && txn.CategoryID != nil {
			if err := e.storage.SetTransactionCategory(ctx, txn.ID, nil, false); err != nil {
				slog.Warn("Failed to clear category", "id", txn.ID, "error", err)
				report.Failed++
				return nil
			}
			report.CategoriesCleared++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Reclassify complete",
		"total", report.Total,
		"changed", report.Changed,
		"categories_cleared", report.CategoriesCleared,
		"failed", report.Failed)
	return report, nil
}

// RecategorizeOptions controls a RecategorizeAll run.
type RecategorizeOptions struct {
	// SkipManual leaves rows alone when their merchant has a manual
	// mapping, protecting user decisions from rule churn.
	SkipManual bool
	// Force recomputes categories even on rows that already have one.
	Force bool
}

// DefaultRecategorizeOptions returns the safe defaults: respect manual
// mappings, leave confirmed categories alone.
func DefaultRecategorizeOptions() RecategorizeOptions {
	return RecategorizeOptions{SkipManual: true, Force: false}
}

// RecategorizeAll re-runs the category resolver over every expense and
// return transaction. With the default options only rows flagged for
// review or lacking a category are touched; a row whose category was
// confirmed keeps it, which makes repeated runs no-ops.
func (e *Engine) RecategorizeAll(ctx context.Context, opts RecategorizeOptions) (*service.RecategorizeReport, error) {
	categoryIDs, err := e.loadCategoryIDs(ctx)
	if err != nil {
		return nil, err
	}
	categoryNames := make(map[int]string, len(categoryIDs))
	for name, id := range categoryIDs {
		categoryNames[id] = name
	}

	report := &service.RecategorizeReport{
		PerCategory: make(map[string]int),
	}

	process := func(txn model.Transaction) error {
		if txn.Type != model.TypeExpense && txn.Type != model.TypeReturn {
			return nil
		}
		report.Total++

		// A flagged row is not confirmed; it stays in scope so a fixed
		// merchant mapping reaches it on the next run.
		confirmed := txn.CategoryID != nil && !txn.NeedsReview
		if confirmed && !opts.Force {
			report.Skipped++
			return nil
		}
		if opts.SkipManual && confirmed && e.hasManualMapping(ctx, txn.MerchantName) {
			report.Skipped++
			return nil
		}

		categoryID, _, needsReview, resolveErr := e.resolveCategory(ctx, txn, categoryIDs, false)
		if resolveErr != nil {
			slog.Warn("Failed to resolve category", "id", txn.ID, "error", resolveErr)
			report.Failed++
			return nil
		}

		if err := e.storage.SetTransactionCategory(ctx, txn.ID, categoryID, needsReview); err != nil {
			slog.Warn("Failed to recategorize transaction", "id", txn.ID, "error", err)
			report.Failed++
			return nil
		}

		report.Recategorized++
		if needsReview {
			report.MarkedForReview++
		}
		if categoryID != nil {
			report.PerCategory[categoryNames[*categoryID]]++
		}
		return nil
	}

	if err := e.forEachTransaction(ctx, service.TransactionFilter{}, process); err != nil {
		return nil, err
	}

	slog.Info("Recategorize complete",
		"total", report.Total,
		"recategorized", report.Recategorized,
		"skipped", report.Skipped,
		"marked_for_review", report.MarkedForReview,
		"failed", report.Failed)
	return report, nil
}

// BackfillTypeCategories assigns the fixed category for the given type
// (Income or Investments) to rows of that type that lack one.
func (e *Engine) BackfillTypeCategories(ctx context.Context, txnType model.TransactionType) (*service.BackfillReport, error) {
	categoryName, ok := typeCategories[txnType]
	if !ok {
		return nil, fmt.Errorf("type %q has no fixed category: %w", txnType, common.ErrUnknownCategory)
	}

	category, err := e.storage.GetCategoryByName(ctx, categoryName)
	if err != nil {
		return nil, fmt.Errorf("failed to load category %q: %w", categoryName, err)
	}

	report := &service.BackfillReport{}
	filter := service.TransactionFilter{Type: &txnType}

	err = e.forEachTransaction(ctx, filter, func(txn model.Transaction) error {
		report.Total++
		if txn.CategoryID != nil {
			return nil
		}
		if setErr := e.storage.SetTransactionCategory(ctx, txn.ID, &category.ID, false); setErr != nil {
			slog.Warn("Failed to backfill category", "id", txn.ID, "error", setErr)
			report.Failed++
			return nil
		}
		report.Assigned++
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Backfill complete",
		"type", txnType,
		"total", report.Total,
		"assigned", report.Assigned,
		"failed", report.Failed)
	return report, nil
}

// ClearTransferCategories nulls the spending category on every transfer
// row. Transfers move money between the user's own accounts and must not
// show up in spending totals.
func (e *Engine) ClearTransferCategories(ctx context.Context) (*service.ClearTransfersReport, error) {
	report := &service.ClearTransfersReport{}
	transfer := model.TypeTransfer
	filter := service.TransactionFilter{Type: &transfer}

	err := e.forEachTransaction(ctx, filter, func(txn model.Transaction) error {
		report.Total++
		if txn.CategoryID == nil {
			return nil
		}
		if setErr := e.storage.SetTransactionCategory(ctx, txn.ID, nil, false); setErr != nil {
			slog.Warn("Failed to clear transfer category", "id", txn.ID, "error", setErr)
			report.Failed++
			return nil
		}
		report.Cleared++
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Clear transfers complete",
		"total", report.Total,
		"cleared", report.Cleared,
		"failed", report.Failed)
	return report, nil
}

func typeClearsCategory(txnType model.TransactionType) bool {
	switch txnType {
	case model.TypeTransfer, model.TypeIncome, model.TypeInvestment:
		return true
	default:
		return false
	}
}

func (e *Engine) hasManualMapping(ctx context.Context, merchant string) bool {
	mapping, err := e.storage.GetMerchantMapping(ctx, merchant)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			slog.Warn("Failed to check merchant mapping", "merchant", merchant, "error", err)
		}
		return false
	}
	return mapping.Source == model.MappingSourceManual
}
