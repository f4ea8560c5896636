// Package tui implements the interactive review screen for transactions
// the classifier was not confident about.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ledgermint/ledgermint/internal/engine"
	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/service"
)

// State represents the current state of the review screen.
type State int

const (
	StateLoading State = iota
	StateList
	StatePickCategory
	StateDone
)

// Config holds configuration for the review session.
type Config struct {
	Storage service.Storage
	Engine  *engine.Engine
	Width   int
	Height  int
}

// Model holds the review screen state.
type Model struct {
	startTime    time.Time
	storage      service.Storage
	engine       *engine.Engine
	lastError    error
	keymap       KeyMap
	transactions []model.Transaction
	categories   []model.Category
	cursor       int
	pickerCursor int
	reviewed     int
	width        int
	height       int
	state        State
	applyToAll   bool
	quitting     bool
}

// newModel creates a review model with the given configuration.
func newModel(cfg Config) Model {
	return Model{
		state:     StateLoading,
		keymap:    DefaultKeyMap(),
		storage:   cfg.Storage,
		engine:    cfg.Engine,
		startTime: time.Now(),
		width:     cfg.Width,
		height:    cfg.Height,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.loadData())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			m.quitting = true
			return m, tea.Quit
		}
		m.transactions = msg.transactions
		m.categories = msg.categories
		if len(m.transactions) == 0 {
			m.state = StateDone
		} else {
			m.state = StateList
		}
		return m, nil

	case editAppliedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.reviewed++
		m.removeCurrent()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case StateList, StateDone:
		return m.handleListKey(msg)
	case StatePickCategory:
		return m.handlePickerKey(msg)
	case StateLoading:
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "j", "down":
		if m.cursor < len(m.transactions)-1 {
			m.cursor++
		}
	case "enter", "c":
		if m.state == StateList {
			m.state = StatePickCategory
			m.pickerCursor = m.currentPickerIndex()
			m.applyToAll = false
		}
	case "a":
		if m.state == StateList {
			m.state = StatePickCategory
			m.pickerCursor = m.currentPickerIndex()
			m.applyToAll = true
		}
	case "y":
		// Confirm the suggested category as-is
		if m.state == StateList {
			txn := m.transactions[m.cursor]
			if txn.CategoryID != nil {
				return m, m.applyEdit(txn.ID, engine.Edit{CategoryID: txn.CategoryID, ApplyToAll: true})
			}
		}
	case "s", " ":
		// Keep the current assignment, just drop the review flag
		if m.state == StateList {
			return m, m.applyEdit(m.transactions[m.cursor].ID, engine.Edit{})
		}
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = StateList
	case "k", "up":
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case "j", "down":
		if m.pickerCursor < len(m.categories)-1 {
			m.pickerCursor++
		}
	case "enter":
		category := m.categories[m.pickerCursor]
		txn := m.transactions[m.cursor]
		m.state = StateList
		return m, m.applyEdit(txn.ID, engine.Edit{
			CategoryID: &category.ID,
			ApplyToAll: m.applyToAll,
		})
	}
	return m, nil
}

// currentPickerIndex positions the picker on the current suggestion.
func (m Model) currentPickerIndex() int {
	txn := m.transactions[m.cursor]
	if txn.CategoryID == nil {
		return 0
	}
	for i, cat := range m.categories {
		if cat.ID == *txn.CategoryID {
			return i
		}
	}
	return 0
}

// removeCurrent drops the reviewed transaction from the queue.
func (m *Model) removeCurrent() {
	if m.cursor >= len(m.transactions) {
		return
	}
	m.transactions = append(m.transactions[:m.cursor], m.transactions[m.cursor+1:]...)
	if m.cursor >= len(m.transactions) && m.cursor > 0 {
		m.cursor--
	}
	if len(m.transactions) == 0 {
		m.state = StateDone
	}
}

// categoryName resolves a category ID to its display name.
func (m Model) categoryName(id *int) string {
	if id == nil {
		return "uncategorized"
	}
	for _, cat := range m.categories {
		if cat.ID == *id {
			return cat.Name
		}
	}
	return fmt.Sprintf("category %d", *id)
}
