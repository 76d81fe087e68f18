package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts available in the survey TUI.
// It implements the help.KeyMap interface for automatic help text
// generation.
type KeyMap struct {
	// Submit records the current input (answer or follow-up answer).
	Submit key.Binding

	// Next moves to the next question, subject to the follow-up gate.
	Next key.Binding

	// Prev moves to the previous question. Never gated.
	Prev key.Binding

	// Finish completes the survey from the last question.
	Finish key.Binding

	// Up and Down move the choice cursor on categorical questions.
	Up   key.Binding
	Down key.Binding

	// Analyse submits the analysis query on the summary screen.
	Analyse key.Binding

	// Restart resets the survey to the start screen.
	Restart key.Binding

	// Help toggles the help overlay.
	Help key.Binding

	// Quit exits the application.
	Quit key.Binding
}

// DefaultKeyMap returns the standard key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Next: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "next question"),
		),
		Prev: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "previous question"),
		),
		Finish: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "finish survey"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "choice up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "choice down"),
		),
		Analyse: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "analyse"),
		),
		Restart: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "restart"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the mini help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Next, k.Prev, k.Help, k.Quit}
}

// FullHelp returns all bindings grouped for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Next, k.Prev, k.Finish},
		{k.Up, k.Down, k.Restart},
		{k.Help, k.Quit},
	}
}
