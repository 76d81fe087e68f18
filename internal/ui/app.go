package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// New creates the Bubble Tea program for a survey run.
func New(cfg Config) (*tea.Program, error) {
	if cfg.Document == nil {
		return nil, fmt.Errorf("survey document is required")
	}
	if err := cfg.Document.Validate(); err != nil {
		return nil, fmt.Errorf("invalid survey document: %w", err)
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("llm provider is required")
	}

	model := NewModel(cfg)

	return tea.NewProgram(model, tea.WithAltScreen()), nil
}
