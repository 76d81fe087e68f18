// Package ui provides the Charmbracelet TUI for running a survey: the
// question flow, follow-up prompts, the completion summary, and the
// grounded analysis view.
package ui

// Theme defines the color palette for the survey TUI. Colors are hex
// strings for compatibility with lipgloss.Color().
type Theme struct {
	Name string

	Foreground string
	Border     string

	Primary   string // emphasis, focused elements
	Secondary string // supporting text
	Success   string // answered markers
	Warning   string // pending follow-up notices
	Error     string // gate refusals, failures
	Muted     string // placeholders, dimmed text

	HeaderBg string
	FooterBg string

	// GlamourStyle is the glamour theme used to render analysis markdown.
	GlamourStyle string
}

// ThemeDefault is a dark palette tuned for readability.
var ThemeDefault = Theme{
	Name: "default",

	Foreground: "#d4d4d4",
	Border:     "#3e3e42",

	Primary:   "#007acc",
	Secondary: "#9cdcfe",
	Success:   "#4ec9b0",
	Warning:   "#dcdcaa",
	Error:     "#f44747",
	Muted:     "#6a6a6a",

	HeaderBg: "#252526",
	FooterBg: "#007acc",

	GlamourStyle: "dark",
}
