// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/ledgermint/ledgermint/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	Type          *model.TransactionType
	Merchant      string // Matches effective merchant (display name, else raw)
	NeedsReview   *bool
	Uncategorized bool
	Limit         int
	Offset        int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	SetTransactionCategory(ctx context.Context, id string, categoryID *int, needsReview bool) error
	SetTransactionType(ctx context.Context, id string, txnType model.TransactionType) error
	PropagateMerchantEdit(ctx context.Context, merchant string, displayName string, categoryID *int) (int, error)
	MarkTransactionsRecurring(ctx context.Context, merchant string, minAmount, maxAmount float64) (int, error)
	DeleteTransactions(ctx context.Context, ids []string) (int, error)
	GetTransactionCount(ctx context.Context) (int, error)

	// Split operations
	SaveSplit(ctx context.Context, split *model.TransactionSplit) error
	GetSplitsByTransaction(ctx context.Context, transactionID string) ([]model.TransactionSplit, error)
	DeleteSplit(ctx context.Context, id string) error

	// Merchant memory operations
	GetMerchantMapping(ctx context.Context, merchant string) (*model.MerchantMapping, error)
	SaveMerchantMapping(ctx context.Context, mapping *model.MerchantMapping) error
	GetAllMerchantMappings(ctx context.Context) ([]model.MerchantMapping, error)
	DeleteMerchantMapping(ctx context.Context, merchant string) error

	// Recurring operations
	UpsertRecurringTransaction(ctx context.Context, recurring *model.RecurringTransaction) error
	GetRecurringTransactions(ctx context.Context, activeOnly bool) ([]model.RecurringTransaction, error)
	SetRecurringActive(ctx context.Context, id string, active bool) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	CreateCategory(ctx context.Context, name, icon, color string) (*model.Category, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// IngestStats summarizes one ingest run through the classification pipeline.
type IngestStats struct {
	ByType      map[model.TransactionType]int
	Total       int
	Saved       int
	NeedsReview int
}

// ReclassifyReport summarizes a reclassify-all-by-rule run.
type ReclassifyReport struct {
	ByType            map[model.TransactionType]int
	Total             int
	Changed           int
	CategoriesCleared int
	Failed            int
}

// RecategorizeReport summarizes a recategorize-all run.
type RecategorizeReport struct {
	PerCategory     map[string]int
	Total           int
	Recategorized   int
	Skipped         int
	MarkedForReview int
	Failed          int
}

// BackfillReport summarizes an assign-category-for-type run.
type BackfillReport struct {
	Total    int
	Assigned int
	Failed   int
}

// ClearTransfersReport summarizes a clear-transfer-categories run.
type ClearTransfersReport struct {
	Total   int
	Cleared int
	Failed  int
}

// RecurringReport summarizes a recurring-detection run.
type RecurringReport struct {
	GroupsConsidered int
	Detected         int
	Marked           int
	Failed           int
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// CategorySummary aggregates spending for a single category.
type CategorySummary struct {
	Count  int
	Amount float64
}

// ReportSummary aggregates a set of transactions for export.
type ReportSummary struct {
	ByCategory    map[string]CategorySummary
	ByType        map[model.TransactionType]CategorySummary
	DateRange     DateRange
	TotalIncome   float64
	TotalExpenses float64
	NetFlow       float64
}

// ReportWriter exports transactions and their summary to an external
// destination.
type ReportWriter interface {
	Write(ctx context.Context, transactions []model.Transaction, summary *ReportSummary, categories []model.Category, recurring []model.RecurringTransaction) error
}
