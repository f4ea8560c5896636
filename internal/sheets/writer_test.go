package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/service"
)

func intPtr(i int) *int { return &i }

func testCategories() []model.Category {
	return []model.Category{
		{ID: 1, Name: "Groceries", IsActive: true},
		{ID: 2, Name: "Subscriptions", IsActive: true},
		{ID: 3, Name: "Income", IsActive: true},
	}
}

func testDateRange() service.DateRange {
	return service.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestSummarize(t *testing.T) {
	txns := []model.Transaction{
		{ID: "t1", Type: model.TypeExpense, Amount: 120.00, CategoryID: intPtr(1)},
		{ID: "t2", Type: model.TypeExpense, Amount: 15.99, CategoryID: intPtr(2)},
		{ID: "t3", Type: model.TypeReturn, Amount: -20.00, CategoryID: intPtr(1)},
		{ID: "t4", Type: model.TypeIncome, Amount: -2500.00, CategoryID: intPtr(3)},
		{ID: "t5", Type: model.TypeTransfer, Amount: 500.00},
		{ID: "t6", Type: model.TypeExpense, Amount: 42.00}, // no category
	}

	summary := Summarize(txns, testCategories(), testDateRange())

	assert.InDelta(t, 2500.00, summary.TotalIncome, 0.001)
	assert.InDelta(t, 157.99, summary.TotalExpenses, 0.001) // 120 + 15.99 - 20 + 42
	assert.InDelta(t, 2342.01, summary.NetFlow, 0.001)

	// The return shrinks the Groceries bucket
	groceries := summary.ByCategory["Groceries"]
	assert.Equal(t, 2, groceries.Count)
	assert.InDelta(t, 100.00, groceries.Amount, 0.001)

	uncategorized := summary.ByCategory["Uncategorized"]
	assert.Equal(t, 1, uncategorized.Count)
	assert.InDelta(t, 42.00, uncategorized.Amount, 0.001)

	// Transfers stay out of category buckets but show in type counts
	assert.NotContains(t, summary.ByCategory, "transfer")
	assert.Equal(t, 1, summary.ByType[model.TypeTransfer].Count)
	assert.Equal(t, 3, summary.ByType[model.TypeExpense].Count)
}

func TestPrepareReportData(t *testing.T) {
	txns := []model.Transaction{
		{
			ID:           "t1",
			Date:         time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			MerchantName: "SAFEWAY #1234",
			DisplayName:  "Safeway",
			Amount:       120.00,
			Type:         model.TypeExpense,
			CategoryID:   intPtr(1),
		},
		{
			ID:           "t2",
			Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			MerchantName: "Netflix",
			Amount:       15.99,
			Type:         model.TypeExpense,
			CategoryID:   intPtr(2),
			IsRecurring:  true,
		},
	}
	recurring := []model.RecurringTransaction{
		{
			MerchantName: "Netflix",
			Frequency:    model.FrequencyMonthly,
			Amount:       15.99,
			LastDate:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			IsActive:     true,
		},
	}

	categories := testCategories()
	summary := Summarize(txns, categories, testDateRange())
	w := &Writer{config: DefaultConfig()}

	values := w.prepareReportData(txns, summary, categories, recurring)
	require.NotEmpty(t, values)

	// Title row carries the report name and date range
	require.Len(t, values[0], 2)
	assert.Equal(t, "Ledgermint Report", values[0][0])
	assert.Contains(t, values[0][1], "Jan 1, 2024")

	var flat [][]any
	flat = append(flat, values...)

	findRow := func(label string) int {
		for i, row := range flat {
			if len(row) > 0 && row[0] == label {
				return i
			}
		}
		return -1
	}

	// Category breakdown sorted by amount descending
	catHeader := findRow("Category Breakdown")
	require.GreaterOrEqual(t, catHeader, 0)
	assert.Equal(t, "Groceries", flat[catHeader+2][0])
	assert.Equal(t, "Subscriptions", flat[catHeader+3][0])

	recHeader := findRow("Recurring Charges")
	require.GreaterOrEqual(t, recHeader, 0)
	assert.Equal(t, "Netflix", flat[recHeader+2][0])
	assert.Equal(t, "monthly", flat[recHeader+2][1])

	// Transaction details sorted newest first, with display name,
	// category name and recurring marker resolved
	detailHeader := findRow("Transaction Details")
	require.GreaterOrEqual(t, detailHeader, 0)
	first := flat[detailHeader+2]
	assert.Equal(t, "2024-01-15", first[0])
	assert.Equal(t, "Netflix", first[1])
	assert.Equal(t, "Subscriptions", first[4])
	assert.Equal(t, "yes", first[5])
	second := flat[detailHeader+3]
	assert.Equal(t, "2024-01-05", second[0])
	assert.Equal(t, "Safeway", second[1])
	assert.Equal(t, "Groceries", second[4])
	assert.Equal(t, "", second[5])
}

func TestPrepareReportDataNoRecurring(t *testing.T) {
	txns := []model.Transaction{
		{
			ID:           "t1",
			Date:         time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			MerchantName: "Safeway",
			Amount:       120.00,
			Type:         model.TypeExpense,
			CategoryID:   intPtr(1),
		},
	}
	categories := testCategories()
	summary := Summarize(txns, categories, testDateRange())
	w := &Writer{config: DefaultConfig()}

	values := w.prepareReportData(txns, summary, categories, nil)
	for _, row := range values {
		if len(row) > 0 {
			assert.NotEqual(t, "Recurring Charges", row[0])
		}
	}
}
