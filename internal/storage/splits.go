package storage

import (
	"context"
	"fmt"

	"github.com/ledgermint/ledgermint/internal/common"
	"github.com/ledgermint/ledgermint/internal/model"
)

// SaveSplit creates or updates a transaction split and flags the parent
// as split.
func (s *SQLiteStorage) SaveSplit(ctx context.Context, split *model.TransactionSplit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSplit(split); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transaction_splits (id, transaction_id, amount, description, is_my_share)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			description = excluded.description,
			is_my_share = excluded.is_my_share
	`, split.ID, split.TransactionID, split.Amount, split.Description, split.IsMyShare)
	if err != nil {
		return fmt.Errorf("failed to save split: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions SET is_split = 1 WHERE id = ?
	`, split.TransactionID)
	if err != nil {
		return fmt.Errorf("failed to flag parent transaction: %w", err)
	}

	return tx.Commit()
}

// GetSplitsByTransaction retrieves all splits belonging to a transaction.
func (s *SQLiteStorage) GetSplitsByTransaction(ctx context.Context, transactionID string) ([]model.TransactionSplit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, amount, description, is_my_share
		FROM transaction_splits
		WHERE transaction_id = ?
		ORDER BY id
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var splits []model.TransactionSplit
	for rows.Next() {
		var split model.TransactionSplit
		if err := rows.Scan(&split.ID, &split.TransactionID, &split.Amount, &split.Description, &split.IsMyShare); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}

	return splits, rows.Err()
}

// DeleteSplit removes a split. The parent's is_split flag is cleared
// when no splits remain.
func (s *SQLiteStorage) DeleteSplit(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var transactionID string
	err = tx.QueryRowContext(ctx, `
		SELECT transaction_id FROM transaction_splits WHERE id = ?
	`, id).Scan(&transactionID)
	if err != nil {
		return common.ErrNotFound
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM transaction_splits WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete split: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions
		SET is_split = EXISTS(SELECT 1 FROM transaction_splits WHERE transaction_id = ?)
		WHERE id = ?
	`, transactionID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update parent transaction: %w", err)
	}

	return tx.Commit()
}
