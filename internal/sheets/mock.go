package sheets

import (
	"context"
	"sync"

	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/service"
)

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	WriteFunc        func(ctx context.Context, transactions []model.Transaction, summary *service.ReportSummary, categories []model.Category, recurring []model.RecurringTransaction) error
	LastSummary      *service.ReportSummary
	LastTransactions []model.Transaction
	WriteCallCount   int
	mu               sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements the ReportWriter interface.
func (m *MockWriter) Write(ctx context.Context, transactions []model.Transaction, summary *service.ReportSummary, categories []model.Category, recurring []model.RecurringTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastTransactions = transactions
	m.LastSummary = summary

	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, transactions, summary, categories, recurring)
	}
	return nil
}

// Reset clears all recorded calls.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount = 0
	m.LastTransactions = nil
	m.LastSummary = nil
}
