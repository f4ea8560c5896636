package rules

import (
	"testing"

	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestRuleset_SuggestCategory(t *testing.T) {
	rs := MustDefaultRuleset()

	tests := []struct {
		hint       *model.CategoryHint
		name       string
		merchant   string
		desc       string
		legacy     []string
		wantCat    string
		wantReview bool
	}{
		{
			name:       "keyword hit is confident",
			merchant:   "NETFLIX.COM",
			wantCat:    "Subscriptions",
			wantReview: false,
		},
		{
			name:       "keyword hit on description",
			merchant:   "SQ *BLUE BOTTLE",
			desc:       "COFFEE PURCHASE",
			wantCat:    "Food & Dining",
			wantReview: false,
		},
		{
			name:       "display name participates in matching",
			merchant:   "AMZN MKTP US*Z12AB",
			wantCat:    "Shopping",
			wantReview: false,
		},
		{
			name:       "provider hint is low confidence",
			merchant:   "UNKNOWN VENDOR 9912",
			hint:       &model.CategoryHint{Primary: "FOOD_AND_DRINK", Detailed: "FOOD_AND_DRINK_FAST_FOOD"},
			wantCat:    "Food & Dining",
			wantReview: true,
		},
		{
			name:       "legacy hint is low confidence",
			merchant:   "UNKNOWN VENDOR 9912",
			legacy:     []string{"Shops"},
			wantCat:    "Shopping",
			wantReview: true,
		},
		{
			name:       "no signal falls back to miscellaneous",
			merchant:   "XQJ-7781 LLC",
			wantCat:    FallbackCategory,
			wantReview: true,
		},
		{
			name:       "keyword beats provider hint",
			merchant:   "UBER TRIP",
			hint:       &model.CategoryHint{Primary: "FOOD_AND_DRINK"},
			wantCat:    "Transportation",
			wantReview: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := model.Transaction{
				MerchantName: tt.merchant,
				Name:         tt.desc,
				Hint:         tt.hint,
				LegacyHints:  tt.legacy,
			}
			got := rs.SuggestCategory(txn)
			assert.Equal(t, tt.wantCat, got.Category)
			assert.Equal(t, tt.wantReview, got.NeedsReview())
		})
	}
}

func TestRuleset_SuggestCategory_UsesDisplayName(t *testing.T) {
	rs := MustDefaultRuleset()

	txn := model.Transaction{
		MerchantName: "POS 8810021 0093",
		DisplayName:  "Trader Joe's",
	}
	got := rs.SuggestCategory(txn)
	assert.Equal(t, "Groceries", got.Category)
	assert.False(t, got.NeedsReview())
}
