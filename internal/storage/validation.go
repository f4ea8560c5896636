package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledgermint/ledgermint/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidMapping     = errors.New("invalid merchant mapping")
	ErrInvalidRecurring   = errors.New("invalid recurring transaction")
	ErrInvalidSplit       = errors.New("invalid transaction split")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.MerchantName == "" {
		return fmt.Errorf("%w: missing merchant name", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.Type != "" && !txn.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, txn.Type)
	}
	return nil
}

// validateMapping validates a merchant mapping.
func validateMapping(mapping *model.MerchantMapping) error {
	if mapping == nil {
		return fmt.Errorf("%w: mapping", ErrNilParameter)
	}
	if strings.TrimSpace(mapping.Merchant) == "" {
		return fmt.Errorf("%w: missing merchant", ErrInvalidMapping)
	}
	if mapping.Merchant != model.NormalizeMerchant(mapping.Merchant) {
		return fmt.Errorf("%w: merchant key must be normalized", ErrInvalidMapping)
	}
	if mapping.DisplayName == "" && mapping.CategoryID == nil {
		return fmt.Errorf("%w: mapping must carry a display name or a category", ErrInvalidMapping)
	}
	return nil
}

// validateRecurring validates a recurring transaction.
func validateRecurring(recurring *model.RecurringTransaction) error {
	if recurring == nil {
		return fmt.Errorf("%w: recurring", ErrNilParameter)
	}
	if strings.TrimSpace(recurring.MerchantName) == "" {
		return fmt.Errorf("%w: missing merchant name", ErrInvalidRecurring)
	}
	switch recurring.Frequency {
	case model.FrequencyWeekly, model.FrequencyMonthly, model.FrequencyYearly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurring, recurring.Frequency)
	}
	if recurring.LastDate.IsZero() {
		return fmt.Errorf("%w: missing last date", ErrInvalidRecurring)
	}
	return nil
}

// validateSplit validates a transaction split.
func validateSplit(split *model.TransactionSplit) error {
	if split == nil {
		return fmt.Errorf("%w: split", ErrNilParameter)
	}
	if split.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidSplit)
	}
	if split.TransactionID == "" {
		return fmt.Errorf("%w: missing transaction ID", ErrInvalidSplit)
	}
	return nil
}
