package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ledgermint/ledgermint/internal/common"
	"github.com/ledgermint/ledgermint/internal/model"
)

// Edit is a set of user-requested field changes for one transaction.
// Nil fields are left untouched.
type Edit struct {
	CategoryID  *int
	DisplayName *string
	Type        *model.TransactionType
	IsRecurring *bool
	Notes       *string

	// ClearCategory removes the spending category. It wins over
	// CategoryID when both are set.
	ClearCategory bool

	// ApplyToAll propagates the category and display name to every
	// transaction sharing the merchant and records the decision in
	// merchant memory so future syncs inherit it.
	ApplyToAll bool
}

// ApplyEdit applies a user edit to a transaction. Any edit clears the
// review flag: a human has looked at the row.
func (e *Engine) ApplyEdit(ctx context.Context, id string, edit Edit) error {
	txn, err := e.storage.GetTransactionByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load transaction: %w", err)
	}

	if edit.Type != nil {
		if !edit.Type.Valid() {
			return fmt.Errorf("invalid transaction type %q", *edit.Type)
		}
		txn.Type = *edit.Type
	}
	if edit.ClearCategory {
		txn.CategoryID = nil
	} else if edit.CategoryID != nil {
		if _, catErr := e.storage.GetCategoryByID(ctx, *edit.CategoryID); catErr != nil {
			return fmt.Errorf("failed to load category %d: %w", *edit.CategoryID, catErr)
		}
		txn.CategoryID = edit.CategoryID
	}
	if edit.DisplayName != nil {
		txn.DisplayName = *edit.DisplayName
	}
	if edit.IsRecurring != nil {
		txn.IsRecurring = *edit.IsRecurring
	}
	if edit.Notes != nil {
		txn.Notes = *edit.Notes
	}
	txn.NeedsReview = false

	if err := e.storage.UpdateTransaction(ctx, txn); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if !edit.ApplyToAll {
		return nil
	}
	return e.propagateEdit(ctx, txn, edit)
}

// propagateEdit pushes a confirmed category or display name onto every
// transaction of the same merchant and upserts the merchant mapping.
func (e *Engine) propagateEdit(ctx context.Context, txn *model.Transaction, edit Edit) error {
	displayName := ""
	if edit.DisplayName != nil {
		displayName = *edit.DisplayName
	}

	if _, err := e.storage.PropagateMerchantEdit(ctx, txn.MerchantName, displayName, txn.CategoryID); err != nil {
		return fmt.Errorf("failed to propagate merchant edit: %w", err)
	}

	mapping, err := e.storage.GetMerchantMapping(ctx, txn.MerchantName)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to load merchant mapping: %w", err)
	}
	if mapping == nil {
		mapping = &model.MerchantMapping{
			Merchant: model.NormalizeMerchant(txn.MerchantName),
		}
	}

	// A user-chosen category makes the mapping manual; confirming the
	// existing assignment only upgrades it to confirmed.
	if edit.CategoryID != nil || edit.ClearCategory {
		mapping.Source = model.MappingSourceManual
	} else if mapping.Source != model.MappingSourceManual {
		mapping.Source = model.MappingSourceAutoConfirmed
	}
	if displayName != "" {
		mapping.DisplayName = displayName
	}
	if txn.CategoryID != nil {
		mapping.CategoryID = txn.CategoryID
	} else if edit.ClearCategory {
		mapping.CategoryID = nil
	}
	if mapping.DisplayName == "" && mapping.CategoryID == nil {
		// Nothing worth remembering about this merchant.
		return nil
	}
	mapping.UseCount++
	mapping.LastUpdated = time.Now()

	if err := e.storage.SaveMerchantMapping(ctx, mapping); err != nil {
		return fmt.Errorf("failed to save merchant mapping: %w", err)
	}
	return nil
}
