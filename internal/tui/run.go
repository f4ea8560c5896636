package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ledgermint/ledgermint/internal/engine"
	"github.com/ledgermint/ledgermint/internal/service"
)

// Run starts the interactive review session and blocks until the user
// quits or the context is canceled.
func Run(ctx context.Context, storage service.Storage, eng *engine.Engine) error {
	m := newModel(Config{
		Storage: storage,
		Engine:  eng,
	})

	program := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("review session failed: %w", err)
	}

	if fm, ok := final.(Model); ok && fm.lastError != nil {
		return fm.lastError
	}
	return nil
}
