package rules

import (
	"strings"

	"github.com/ledgermint/ledgermint/internal/model"
)

// Confidence levels attached to category suggestions. Keyword hits are
// trusted; provider hints are weak signals that should be reviewed.
const (
	ConfidenceKeyword = 0.85
	ConfidenceHint    = 0.60
	ConfidenceLegacy  = 0.55
	ConfidenceNone    = 0.0

	// ReviewThreshold is the confidence below which a transaction is
	// flagged for human review.
	ReviewThreshold = 0.70
)

// FallbackCategory receives transactions no rule can place.
const FallbackCategory = "Miscellaneous"

// Suggestion is a rule-based category proposal with a confidence signal.
type Suggestion struct {
	Category   string
	Confidence float64
}

// NeedsReview reports whether the suggestion is too weak to trust
// without human confirmation.
func (s Suggestion) NeedsReview() bool {
	return s.Confidence < ReviewThreshold
}

// SuggestCategory proposes a spending category for a transaction from
// keyword rules and provider hints. It is total: when nothing matches it
// returns the fallback category at zero confidence.
//
// Merchant memory is consulted by the caller before this runs; this
// function is the pure rule tier of the two-tier resolver.
func (r *Ruleset) SuggestCategory(txn model.Transaction) Suggestion {
	searchText := strings.ToLower(txn.EffectiveMerchant() + " " + txn.Name)

	for _, rule := range r.categoryRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(searchText, kw) {
				return Suggestion{Category: rule.Category, Confidence: ConfidenceKeyword}
			}
		}
	}

	if txn.Hint != nil {
		if cat, ok := r.hintCategories[strings.ToUpper(txn.Hint.Primary)]; ok {
			return Suggestion{Category: cat, Confidence: ConfidenceHint}
		}
	}

	for _, hint := range txn.LegacyHints {
		if cat, ok := r.legacyCategories[hint]; ok {
			return Suggestion{Category: cat, Confidence: ConfidenceLegacy}
		}
	}

	return Suggestion{Category: FallbackCategory, Confidence: ConfidenceNone}
}
