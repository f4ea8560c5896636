// Package model defines the core data structures for the ledgermint application.
package model

import (
	"crypto/sha256"
	"fmt"
	"math"
	"strings"
	"time"
)

// TransactionType is the semantic classification of a transaction.
type TransactionType string

const (
	// TypeExpense is money spent on goods or services.
	TypeExpense TransactionType = "expense"
	// TypeIncome is money arriving from an external source.
	TypeIncome TransactionType = "income"
	// TypeTransfer is money moving between the user's own accounts.
	TypeTransfer TransactionType = "transfer"
	// TypeInvestment is money moving into a brokerage or retirement account.
	TypeInvestment TransactionType = "investment"
	// TypeReturn is a refund of a prior expense. Never produced by the
	// rule classifier; assigned by users or file imports.
	TypeReturn TransactionType = "return"
)

// Valid reports whether t is one of the five known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeExpense, TypeIncome, TypeTransfer, TypeInvestment, TypeReturn:
		return true
	}
	return false
}

// TransactionSource indicates how a transaction entered the system.
type TransactionSource string

const (
	// SourceSync marks transactions fetched from the aggregation provider.
	SourceSync TransactionSource = "sync"
	// SourceFile marks transactions imported from an uploaded file.
	SourceFile TransactionSource = "file"
	// SourceManual marks transactions entered by hand.
	SourceManual TransactionSource = "manual"
)

// CategoryHint is a structured category label from the aggregation provider.
// It is a weak signal, never ground truth.
type CategoryHint struct {
	Primary  string
	Detailed string
}

// Transaction represents a single financial transaction from any source.
//
// Amount is signed: positive means money out, negative means money in.
// Type reinterprets the sign downstream (a return reduces expenses even
// though its amount is negative).
type Transaction struct {
	Date         time.Time
	CreatedAt    time.Time
	Hint         *CategoryHint
	CategoryID   *int
	ID           string
	AccountID    string
	MerchantName string // Raw merchant text from the provider
	Name         string // Full bank description
	OriginalName string // Unmodified provider description, when available
	DisplayName  string // User-assigned name, overrides MerchantName
	Notes        string
	Hash         string
	Type         TransactionType
	Source       TransactionSource
	LegacyHints  []string // Legacy provider category strings
	Amount       float64
	IsSplit      bool
	IsRecurring  bool
	NeedsReview  bool
	Pending      bool
}

// EffectiveMerchant returns the name used to group this transaction:
// the user-assigned display name when set, the raw merchant text otherwise.
func (t *Transaction) EffectiveMerchant() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.MerchantName
}

// EffectiveAmount returns the amount that counts toward the user.
// For split transactions it is the sum of the user's own shares;
// otherwise the absolute amount.
func (t *Transaction) EffectiveAmount(splits []TransactionSplit) float64 {
	if t.IsSplit && len(splits) > 0 {
		var total float64
		for _, s := range splits {
			if s.IsMyShare {
				total += math.Abs(s.Amount)
			}
		}
		return total
	}
	return math.Abs(t.Amount)
}

// GenerateHash creates a stable hash used to reject double-synced rows.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.MerchantName,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// NormalizeMerchant lowercases and trims merchant text so that lookups
// into merchant memory are case-insensitive.
func NormalizeMerchant(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
