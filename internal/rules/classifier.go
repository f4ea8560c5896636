package rules

import (
	"strings"

	"github.com/ledgermint/ledgermint/internal/model"
)

// Hint primary values the provider uses for transfer-like activity.
var transferHintPrimaries = map[string]bool{
	"TRANSFER_IN":   true,
	"TRANSFER_OUT":  true,
	"LOAN_PAYMENTS": true,
	"BANK_FEES":     true,
}

// ClassifyType assigns exactly one semantic type to a transaction. It is
// total: every well-formed input produces a type, falling back to the
// amount sign when nothing else matches.
//
// Decision order, first match wins:
//  1. Transfer pattern on merchant/description text. Transfer semantics
//     override everything, including investment-platform merchants.
//  2. Investment pattern on the same text.
//  3. Provider hint with an investment or retirement detail.
//  4. Provider hint with a transfer-like primary.
//  5. Legacy provider category list containing a transfer term.
//  6. Sign fallback: negative amount is income, anything else expense.
//
// TypeReturn is never produced here; refunds are user- or import-assigned.
func (r *Ruleset) ClassifyType(txn model.Transaction) model.TransactionType {
	searchText := strings.ToLower(txn.MerchantName + " " + txn.Name + " " + txn.OriginalName)

	for _, rule := range r.transferRules {
		if rule.regex.MatchString(searchText) {
			return model.TypeTransfer
		}
	}

	for _, rule := range r.investmentRules {
		if rule.regex.MatchString(searchText) {
			return model.TypeInvestment
		}
	}

	if txn.Hint != nil {
		detailed := strings.ToUpper(txn.Hint.Detailed)
		if strings.Contains(detailed, "INVESTMENT") || strings.Contains(detailed, "RETIREMENT") {
			return model.TypeInvestment
		}
		if transferHintPrimaries[strings.ToUpper(txn.Hint.Primary)] {
			return model.TypeTransfer
		}
	}

	for _, hint := range txn.LegacyHints {
		if strings.Contains(strings.ToLower(hint), "transfer") {
			return model.TypeTransfer
		}
	}

	if txn.Amount < 0 {
		return model.TypeIncome
	}
	return model.TypeExpense
}
