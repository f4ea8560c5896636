package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ledgermint/ledgermint/internal/common"
	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/service"
)

const transactionColumns = `
	id, account_id, hash, date, merchant_name, name, original_name, display_name,
	amount, type, category_id, hint_primary, hint_detailed, legacy_hints,
	needs_review, pending, source, is_split, is_recurring, notes, created_at`

// SaveTransactions saves multiple transactions, skipping rows whose hash
// is already present. Returns the number of newly inserted rows.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, account_id, hash, date, merchant_name, name, original_name, display_name,
			amount, type, category_id, hint_primary, hint_detailed, legacy_hints,
			needs_review, pending, source, is_split, is_recurring, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	saved := 0
	for _, txn := range transactions {
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		hintPrimary, hintDetailed := "", ""
		if txn.Hint != nil {
			hintPrimary = txn.Hint.Primary
			hintDetailed = txn.Hint.Detailed
		}

		legacyJSON := ""
		if len(txn.LegacyHints) > 0 {
			if b, marshalErr := json.Marshal(txn.LegacyHints); marshalErr == nil {
				legacyJSON = string(b)
			}
		}

		createdAt := txn.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		res, execErr := stmt.ExecContext(ctx,
			txn.ID, txn.AccountID, txn.Hash, txn.Date, txn.MerchantName,
			txn.Name, txn.OriginalName, txn.DisplayName,
			txn.Amount, string(txn.Type), txn.CategoryID,
			hintPrimary, hintDetailed, legacyJSON,
			txn.NeedsReview, txn.Pending, string(txn.Source),
			txn.IsSplit, txn.IsRecurring, txn.Notes, createdAt,
		)
		if execErr != nil {
			return saved, fmt.Errorf("failed to save transaction %s: %w", txn.ID, execErr)
		}
		if n, raErr := res.RowsAffected(); raErr == nil {
			saved += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transactions: %w", err)
	}
	return saved, nil
}

// GetTransactionByID retrieves a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE id = ?
	`, id)

	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// ListTransactions retrieves transactions matching the filter, newest first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, ErrInvalidDateRange
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []any

	if filter.StartDate != nil {
		query += ` AND date >= ?`
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += ` AND date <= ?`
		args = append(args, *filter.EndDate)
	}
	if filter.Type != nil {
		query += ` AND type = ?`
		args = append(args, string(*filter.Type))
	}
	if filter.Merchant != "" {
		query += ` AND (CASE WHEN display_name != '' THEN display_name ELSE merchant_name END) = ?`
		args = append(args, filter.Merchant)
	}
	if filter.NeedsReview != nil {
		query += ` AND needs_review = ?`
		args = append(args, *filter.NeedsReview)
	}
	if filter.Uncategorized {
		query += ` AND category_id IS NULL`
	}

	query += ` ORDER BY date DESC, created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// UpdateTransaction persists the mutable fields of a transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET display_name = ?, amount = ?, type = ?, category_id = ?,
			needs_review = ?, pending = ?, is_split = ?, is_recurring = ?, notes = ?
		WHERE id = ?
	`, txn.DisplayName, txn.Amount, string(txn.Type), txn.CategoryID,
		txn.NeedsReview, txn.Pending, txn.IsSplit, txn.IsRecurring, txn.Notes, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SetTransactionCategory updates only a transaction's category and review flag.
// A nil categoryID clears the category.
func (s *SQLiteStorage) SetTransactionCategory(ctx context.Context, id string, categoryID *int, needsReview bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET category_id = ?, needs_review = ? WHERE id = ?
	`, categoryID, needsReview, id)
	if err != nil {
		return fmt.Errorf("failed to set transaction category: %w", err)
	}
	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SetTransactionType updates only a transaction's semantic type.
func (s *SQLiteStorage) SetTransactionType(ctx context.Context, id string, txnType model.TransactionType) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if !txnType.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, txnType)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET type = ? WHERE id = ?
	`, string(txnType), id)
	if err != nil {
		return fmt.Errorf("failed to set transaction type: %w", err)
	}
	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// PropagateMerchantEdit applies a display name and category to every
// transaction whose raw merchant text normalizes to the given key.
// Either field may be zero-valued to leave it untouched. Returns the
// number of rows updated.
func (s *SQLiteStorage) PropagateMerchantEdit(ctx context.Context, merchant string, displayName string, categoryID *int) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(merchant, "merchant"); err != nil {
		return 0, err
	}

	sets := []string{"needs_review = 0"}
	var args []any
	if displayName != "" {
		sets = append(sets, "display_name = ?")
		args = append(args, displayName)
	}
	if categoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *categoryID)
	}
	args = append(args, model.NormalizeMerchant(merchant))

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET `+strings.Join(sets, ", ")+`
		WHERE LOWER(TRIM(merchant_name)) = ?
	`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to propagate merchant edit: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// MarkTransactionsRecurring flags every transaction whose effective
// merchant matches and whose absolute amount falls inside the given
// band. This is a deliberate best-effort join on merchant + amount, not
// transaction ID: unrelated same-amount charges from the same merchant
// can be mis-tagged.
func (s *SQLiteStorage) MarkTransactionsRecurring(ctx context.Context, merchant string, minAmount, maxAmount float64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(merchant, "merchant"); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET is_recurring = 1
		WHERE (CASE WHEN display_name != '' THEN display_name ELSE merchant_name END) = ?
		  AND ABS(amount) BETWEEN ? AND ?
	`, merchant, minAmount, maxAmount)
	if err != nil {
		return 0, fmt.Errorf("failed to mark transactions recurring: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// DeleteTransactions removes the given transactions. Returns the number
// of rows actually deleted.
func (s *SQLiteStorage) DeleteTransactions(ctx context.Context, ids []string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: ids", ErrEmptySlice)
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM transactions WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// GetTransactionCount returns the total number of stored transactions.
func (s *SQLiteStorage) GetTransactionCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for transaction scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*model.Transaction, error) {
	var (
		txn          model.Transaction
		txnType      string
		source       string
		hintPrimary  string
		hintDetailed string
		legacyJSON   string
		categoryID   sql.NullInt64
	)

	err := row.Scan(
		&txn.ID, &txn.AccountID, &txn.Hash, &txn.Date, &txn.MerchantName,
		&txn.Name, &txn.OriginalName, &txn.DisplayName,
		&txn.Amount, &txnType, &categoryID, &hintPrimary, &hintDetailed, &legacyJSON,
		&txn.NeedsReview, &txn.Pending, &source,
		&txn.IsSplit, &txn.IsRecurring, &txn.Notes, &txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.Type = model.TransactionType(txnType)
	txn.Source = model.TransactionSource(source)

	if categoryID.Valid {
		id := int(categoryID.Int64)
		txn.CategoryID = &id
	}
	if hintPrimary != "" || hintDetailed != "" {
		txn.Hint = &model.CategoryHint{Primary: hintPrimary, Detailed: hintDetailed}
	}
	if legacyJSON != "" {
		if err := json.Unmarshal([]byte(legacyJSON), &txn.LegacyHints); err != nil {
			return nil, fmt.Errorf("failed to decode legacy hints: %w", err)
		}
	}

	return &txn, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}
