package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3EB489")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3EB489"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	amountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)
)

// View renders the review screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case StateLoading:
		return titleStyle.Render("🌿 Loading review queue...")
	case StateDone:
		return m.renderDone()
	case StatePickCategory:
		return m.renderPicker()
	case StateList:
	}
	return m.renderList()
}

func (m Model) renderList() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("🌿 Review Queue (%d remaining)", len(m.transactions))))
	b.WriteString("\n")

	visible := m.visibleWindow()
	for i, txn := range m.transactions {
		if i < visible.start || i >= visible.end {
			continue
		}

		line := fmt.Sprintf("%s  %-30s %s  %s",
			txn.Date.Format("2006-01-02"),
			truncate(txn.EffectiveMerchant(), 30),
			amountStyle.Render(fmt.Sprintf("%9.2f", txn.Amount)),
			dimStyle.Render(m.categoryName(txn.CategoryID)))

		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.lastError != nil {
		b.WriteString(errorStyle.Render("✗ " + m.lastError.Error()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓ move · Enter pick category · y confirm · a apply to merchant · s keep · q quit"))
	return b.String()
}

func (m Model) renderPicker() string {
	var b strings.Builder

	txn := m.transactions[m.cursor]
	scope := "this transaction"
	if m.applyToAll {
		scope = "all from " + txn.EffectiveMerchant()
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("🌿 Category for %s (%s)", txn.EffectiveMerchant(), scope)))
	b.WriteString("\n")

	for i, cat := range m.categories {
		label := cat.Name
		if cat.Icon != "" {
			label = cat.Icon + " " + label
		}
		if i == m.pickerCursor {
			b.WriteString(selectedStyle.Render("> " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓ move · Enter assign · Esc back"))
	return b.String()
}

func (m Model) renderDone() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🌿 Review Queue"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("All caught up! Reviewed %d transactions this session.\n", m.reviewed))
	b.WriteString(helpStyle.Render("q quit"))
	return b.String()
}

type window struct {
	start int
	end   int
}

// visibleWindow keeps the cursor on screen for long queues.
func (m Model) visibleWindow() window {
	rows := m.height - 5
	if rows < 5 {
		rows = 20
	}
	if len(m.transactions) <= rows {
		return window{0, len(m.transactions)}
	}

	start := m.cursor - rows/2
	if start < 0 {
		start = 0
	}
	end := start + rows
	if end > len(m.transactions) {
		end = len(m.transactions)
		start = end - rows
	}
	return window{start, end}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return s[:maxLen]
	}
	return s[:maxLen-1] + "…"
}
