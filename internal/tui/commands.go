package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ledgermint/ledgermint/internal/engine"
	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/service"
)

type dataLoadedMsg struct {
	err          error
	transactions []model.Transaction
	categories   []model.Category
}

type editAppliedMsg struct {
	err           error
	transactionID string
}

// loadData fetches the review queue and the category table.
func (m Model) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		needsReview := true
		transactions, err := m.storage.ListTransactions(ctx, service.TransactionFilter{
			NeedsReview: &needsReview,
		})
		if err != nil {
			return dataLoadedMsg{err: err}
		}

		categories, err := m.storage.GetCategories(ctx)
		if err != nil {
			return dataLoadedMsg{err: err}
		}

		return dataLoadedMsg{transactions: transactions, categories: categories}
	}
}

// applyEdit persists a review decision through the engine.
func (m Model) applyEdit(id string, edit engine.Edit) tea.Cmd {
	return func() tea.Msg {
		err := m.engine.ApplyEdit(context.Background(), id, edit)
		return editAppliedMsg{err: err, transactionID: id}
	}
}
