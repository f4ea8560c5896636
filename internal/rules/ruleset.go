// Package rules provides the pattern library and rule-based classifiers
// for transaction types and spending categories.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ledgermint/ledgermint/internal/model"
)

// TypeRule matches transaction text against a regular expression and,
// when it hits, forces a transaction type.
type TypeRule struct {
	Name     string
	Regex    string
	Type     model.TransactionType
	Priority int // Higher priority rules are checked first
}

// CategoryRule maps keyword hits in transaction text to a category name.
type CategoryRule struct {
	Category string
	Keywords []string
}

// compiledRule holds a compiled regex with its rule metadata.
type compiledRule struct {
	regex *regexp.Regexp
	TypeRule
}

// Ruleset is the immutable, injected pattern library the classifiers
// evaluate against. Behavior is a pure function of (input, ruleset);
// there is no module-level mutable state.
type Ruleset struct {
	hintCategories   map[string]string
	legacyCategories map[string]string
	transferRules    []compiledRule
	investmentRules  []compiledRule
	categoryRules    []CategoryRule
}

// NewRuleset compiles the given rules into a Ruleset. Rules are grouped
// by type and sorted by priority, highest first.
func NewRuleset(typeRules []TypeRule, categoryRules []CategoryRule, hintCategories, legacyCategories map[string]string) (*Ruleset, error) {
	rs := &Ruleset{
		categoryRules:    categoryRules,
		hintCategories:   hintCategories,
		legacyCategories: legacyCategories,
	}

	for _, r := range typeRules {
		regexStr := r.Regex
		if !strings.HasPrefix(regexStr, "(?i)") {
			regexStr = "(?i)" + regexStr // Case-insensitive by default
		}

		re, err := regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule %s: %w", r.Name, err)
		}

		compiled := compiledRule{TypeRule: r, regex: re}
		switch r.Type {
		case model.TypeTransfer:
			rs.transferRules = append(rs.transferRules, compiled)
		case model.TypeInvestment:
			rs.investmentRules = append(rs.investmentRules, compiled)
		default:
			return nil, fmt.Errorf("rule %s: type rules must be transfer or investment, got %s", r.Name, r.Type)
		}
	}

	sortByPriority(rs.transferRules)
	sortByPriority(rs.investmentRules)

	return rs, nil
}

// MustDefaultRuleset returns the curated default ruleset, panicking on a
// bad built-in pattern. Only for use at startup.
func MustDefaultRuleset() *Ruleset {
	rs, err := NewRuleset(DefaultTypeRules(), DefaultCategoryRules(), DefaultHintCategories(), DefaultLegacyCategories())
	if err != nil {
		panic(err)
	}
	return rs
}

// sortByPriority orders rules highest priority first. The sort is
// stable so equal-priority rules keep their declaration order.
func sortByPriority(rules []compiledRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
}

// DefaultTypeRules returns the curated transfer and investment patterns.
// Transfer patterns are evaluated before investment patterns: a
// brokerage-initiated card auto-pay is a transfer, not an investment.
func DefaultTypeRules() []TypeRule {
	return []TypeRule{
		// Transfer patterns
		{
			Name:     "Card Auto-Pay",
			Type:     model.TypeTransfer,
			Regex:    `\b(AUTOPAY|AUTO\s*PAY|AUTOMATIC\s*PAYMENT|CARD[-\s]?PAYMENT|CRCARDPMT|PAYMENT\s*[-\s]?\s*THANK\s*YOU)\b`,
			Priority: 100,
		},
		{
			Name:     "Wire/ACH Transfer",
			Type:     model.TypeTransfer,
			Regex:    `\b(WIRE\s*(TRANSFER|OUT|IN)?|ACH\s*(TRANSFER|CREDIT|DEBIT)|FUNDS\s*TRANSFER|ONLINE\s*TRANSFER|XFER)\b`,
			Priority: 95,
		},
		{
			Name:     "Bill Pay",
			Type:     model.TypeTransfer,
			Regex:    `\b(BILL\s*PAY(MENT)?|BILLPAY|E-?PAYMENT)\b`,
			Priority: 90,
		},
		{
			Name:     "Peer Payment",
			Type:     model.TypeTransfer,
			Regex:    `\b(VENMO|ZELLE|CASH\s*APP|CASHAPP|APPLE\s*CASH|PAYPAL\s*(TRANSFER|INST\s*XFER))\b`,
			Priority: 85,
		},
		{
			Name:     "Account Verification",
			Type:     model.TypeTransfer,
			Regex:    `\b(ACCTVERIFY|ACCT\s*VERIFY|ACCOUNT\s*VERIFICATION|MICRO[-\s]?DEPOSIT|TRIAL\s*DEPOSIT)\b`,
			Priority: 80,
		},
		{
			Name:     "Bucket Transfer",
			Type:     model.TypeTransfer,
			Regex:    `\b(MONEY\s*(IN|OUT)|TO\s*SAVINGS|FROM\s*CHECKING|ROUND[-\s]?UP\s*TRANSFER)\b`,
			Priority: 75,
		},

		// Investment patterns, only reached when no transfer pattern hit
		{
			Name:     "Brokerage",
			Type:     model.TypeInvestment,
			Regex:    `\b(ROBINHOOD|FIDELITY|VANGUARD|SCHWAB|E\*?TRADE|WEALTHFRONT|BETTERMENT|ACORNS|COINBASE|WEBULL|M1\s*FINANCE|PUBLIC\.COM)\b`,
			Priority: 100,
		},
		{
			Name:     "Investment Debits",
			Type:     model.TypeInvestment,
			Regex:    `\b(INVST|INVESTMENT\s*DEBITS?|BROKERAGE\s*DEBITS?|401K\s*CONTRIB|IRA\s*CONTRIB)\b`,
			Priority: 90,
		},
	}
}

// DefaultCategoryRules returns the keyword table used when merchant
// memory has no answer. First match wins, so more specific rows come
// before catch-alls.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Category: "Groceries", Keywords: []string{"grocery", "supermarket", "whole foods", "trader joe", "safeway", "kroger", "aldi", "wegmans", "costco whse", "market basket"}},
		{Category: "Food & Dining", Keywords: []string{"restaurant", "cafe", "coffee", "pizza", "doordash", "grubhub", "ubereats", "uber eats", "chipotle", "mcdonald", "starbucks", "bakery", "deli", "bar & grill"}},
		{Category: "Subscriptions", Keywords: []string{"netflix", "spotify", "hulu", "disney plus", "disney+", "youtube premium", "apple.com/bill", "audible", "patreon", "substack", "membership"}},
		{Category: "Transportation", Keywords: []string{"uber", "lyft", "taxi", "transit", "metro", "parking", "shell", "chevron", "exxon", "gas station", "fuel", "toll"}},
		{Category: "Travel", Keywords: []string{"airline", "airways", "delta air", "united air", "southwest", "hotel", "airbnb", "expedia", "booking.com", "hertz", "avis"}},
		{Category: "Entertainment", Keywords: []string{"cinema", "theater", "theatre", "ticketmaster", "steam", "playstation", "nintendo", "xbox", "concert"}},
		{Category: "Bills & Utilities", Keywords: []string{"electric", "utility", "utilities", "water bill", "internet", "comcast", "xfinity", "verizon", "t-mobile", "at&t", "insurance", "rent", "mortgage"}},
		{Category: "Health", Keywords: []string{"pharmacy", "cvs", "walgreens", "clinic", "dental", "doctor", "hospital", "urgent care", "optical"}},
		{Category: "Personal Care", Keywords: []string{"salon", "barber", "spa", "gym", "fitness", "planet fitness", "yoga"}},
		{Category: "Home", Keywords: []string{"home depot", "lowes", "ikea", "furniture", "hardware", "cleaning"}},
		{Category: "Pets", Keywords: []string{"petco", "petsmart", "veterinary", "vet clinic", "chewy"}},
		{Category: "Education", Keywords: []string{"tuition", "university", "college", "udemy", "coursera", "bookstore"}},
		{Category: "Shopping", Keywords: []string{"amazon", "amzn", "target", "walmart", "best buy", "ebay", "etsy", "nike", "zara", "uniqlo", "shopping"}},
		{Category: "Cash & ATM", Keywords: []string{"atm withdrawal", "cash withdrawal", "atm fee"}},
		{Category: "Fees", Keywords: []string{"overdraft", "service charge", "late fee", "annual fee", "foreign transaction"}},
	}
}

// DefaultHintCategories maps provider primary category hints to our
// category names. Hints are a weak signal; matches carry low confidence.
func DefaultHintCategories() map[string]string {
	return map[string]string{
		"FOOD_AND_DRINK":      "Food & Dining",
		"GENERAL_MERCHANDISE": "Shopping",
		"TRANSPORTATION":      "Transportation",
		"TRAVEL":              "Travel",
		"ENTERTAINMENT":       "Entertainment",
		"RENT_AND_UTILITIES":  "Bills & Utilities",
		"MEDICAL":             "Health",
		"PERSONAL_CARE":       "Personal Care",
		"HOME_IMPROVEMENT":    "Home",
		"GENERAL_SERVICES":    "Services",
	}
}

// DefaultLegacyCategories maps legacy provider category strings to our
// category names.
func DefaultLegacyCategories() map[string]string {
	return map[string]string{
		"Food and Drink": "Food & Dining",
		"Restaurants":    "Food & Dining",
		"Shops":          "Shopping",
		"Travel":         "Travel",
		"Recreation":     "Entertainment",
		"Healthcare":     "Health",
		"Service":        "Services",
		"Bank Fees":      "Fees",
		"Cash & ATM":     "Cash & ATM",
	}
}
