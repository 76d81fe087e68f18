package ui

import "github.com/charmbracelet/lipgloss"

// Styles contains pre-computed lipgloss styles for all survey UI
// components, separating visual styling from layout code.
type Styles struct {
	theme Theme

	// Layout regions
	Header lipgloss.Style
	Footer lipgloss.Style

	// Question card
	QuestionCard  lipgloss.Style
	QuestionText  lipgloss.Style
	QuestionIndex lipgloss.Style

	// Choice list
	Choice         lipgloss.Style
	ChoiceSelected lipgloss.Style
	ChoiceCursor   lipgloss.Style

	// Follow-up block
	FollowUpCard     lipgloss.Style
	FollowUpQuestion lipgloss.Style
	FollowUpPending  lipgloss.Style
	Rationale        lipgloss.Style

	// Status and feedback
	StatusInfo  lipgloss.Style
	StatusError lipgloss.Style
	Spinner     lipgloss.Style

	// Start and summary screens
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Answered lipgloss.Style

	// Help overlay
	HelpBox   lipgloss.Style
	HelpTitle lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		theme: theme,

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.HeaderBg)).
			Foreground(lipgloss.Color(theme.Foreground)).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.FooterBg)).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1),

		QuestionCard: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.Border)).
			Padding(0, 1).
			MarginTop(1),

		QuestionText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Foreground)).
			Bold(true),

		QuestionIndex: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Secondary)),

		Choice: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Foreground)).
			PaddingLeft(2),

		ChoiceSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Success)).
			PaddingLeft(2),

		ChoiceCursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Primary)).
			Bold(true),

		FollowUpCard: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.Warning)).
			Padding(0, 1).
			MarginTop(1),

		FollowUpQuestion: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Warning)).
			Bold(true),

		FollowUpPending: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Muted)).
			Italic(true),

		Rationale: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Muted)).
			Italic(true),

		StatusInfo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Secondary)),

		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Error)),

		Spinner: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Primary)),

		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Primary)).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Secondary)),

		Answered: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Success)),

		HelpBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.Primary)).
			Padding(1, 2),

		HelpTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Primary)).
			Bold(true),
	}
}
