package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledgermint/ledgermint/internal/common"
	"github.com/ledgermint/ledgermint/internal/model"
)

// UpsertRecurringTransaction creates or updates the recurring record for
// a merchant. The merchant name is the upsert key; the single-statement
// upsert keeps each write atomic even when detector runs overlap.
func (s *SQLiteStorage) UpsertRecurringTransaction(ctx context.Context, recurring *model.RecurringTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecurring(recurring); err != nil {
		return err
	}

	if recurring.ID == "" {
		recurring.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions (id, merchant_name, amount, frequency, last_date, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(merchant_name) DO UPDATE SET
			amount = excluded.amount,
			frequency = excluded.frequency,
			last_date = excluded.last_date,
			is_active = excluded.is_active
	`, recurring.ID, recurring.MerchantName, recurring.Amount,
		string(recurring.Frequency), recurring.LastDate, recurring.IsActive)
	if err != nil {
		return fmt.Errorf("failed to upsert recurring transaction: %w", err)
	}
	return nil
}

// GetRecurringTransactions retrieves recurring records, optionally only
// active ones, ordered by merchant name.
func (s *SQLiteStorage) GetRecurringTransactions(ctx context.Context, activeOnly bool) ([]model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, merchant_name, amount, frequency, last_date, is_active, created_at
		FROM recurring_transactions`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY merchant_name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recurring []model.RecurringTransaction
	for rows.Next() {
		var (
			r         model.RecurringTransaction
			frequency string
			lastDate  time.Time
		)
		err := rows.Scan(&r.ID, &r.MerchantName, &r.Amount, &frequency, &lastDate, &r.IsActive, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring transaction: %w", err)
		}
		r.Frequency = model.Frequency(frequency)
		r.LastDate = lastDate
		recurring = append(recurring, r)
	}

	return recurring, rows.Err()
}

// SetRecurringActive toggles a recurring record's active flag. Hiding a
// recurring charge deactivates it rather than deleting it, so detection
// history is preserved.
func (s *SQLiteStorage) SetRecurringActive(ctx context.Context, id string, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE recurring_transactions SET is_active = ? WHERE id = ?
	`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update recurring transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}
