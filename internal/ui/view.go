package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/nkemp/canvass/pkg/types"
)

// view renders the complete TUI.
func view(m Model) string {
	if !m.ready {
		return "Loading survey..."
	}

	var body string
	switch m.phase {
	case PhaseStart:
		body = viewStart(m)
	case PhaseSurvey:
		body = viewSurvey(m)
	case PhaseSummary:
		body = viewSummary(m)
	}

	main := lipgloss.JoinVertical(
		lipgloss.Left,
		viewHeader(m),
		body,
		viewFooter(m),
	)

	if m.showHelp {
		return overlayHelp(m, main)
	}

	return main
}

func viewHeader(m Model) string {
	title := m.doc.Title
	if title == "" {
		title = "Survey"
	}

	left := fmt.Sprintf("📋 %s", title)
	right := fmt.Sprintf("%d/%d answered", m.sess.AnsweredCount(), m.doc.Len())

	spacerWidth := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if spacerWidth < 1 {
		spacerWidth = 1
	}

	return m.styles.Header.Width(m.width).Render(
		left + strings.Repeat(" ", spacerWidth) + right,
	)
}

func viewFooter(m Model) string {
	if m.status != "" {
		style := m.styles.StatusInfo
		if m.statusErr {
			style = m.styles.StatusError
		}
		return m.styles.Footer.Width(m.width).Render(style.Render(m.status))
	}
	return m.styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func viewStart(m Model) string {
	lines := []string{
		"",
		m.styles.Title.Render("Welcome!"),
		"",
		m.styles.Subtitle.Render(fmt.Sprintf("This survey has %d questions. Some answers may prompt", m.doc.Len())),
		m.styles.Subtitle.Render("a short follow-up to capture more detail."),
		"",
		m.styles.StatusInfo.Render("Press enter to begin."),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func viewSurvey(m Model) string {
	index := m.sess.CurrentIndex()
	q := m.currentQuestion()

	sections := []string{
		m.styles.QuestionCard.Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.QuestionIndex.Render(fmt.Sprintf("Question %d of %d", index+1, m.doc.Len())),
			m.styles.QuestionText.Render(q.Text),
		)),
	}

	if q.IsFreeText() {
		sections = append(sections, m.answerInput.View())
	} else {
		sections = append(sections, viewChoices(m, q.Choices))
	}

	if block := viewFollowUp(m, index); block != "" {
		sections = append(sections, block)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func viewChoices(m Model, choices []string) string {
	selected, _ := m.sess.Response(m.sess.CurrentIndex())

	lines := make([]string, 0, len(choices))
	for i, choice := range choices {
		cursor := "  "
		if i == m.choiceCursor {
			cursor = m.styles.ChoiceCursor.Render("> ")
		}
		label := m.styles.Choice.Render(choice)
		if choice == selected {
			label = m.styles.ChoiceSelected.Render(choice + " ✓")
		}
		lines = append(lines, cursor+label)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// viewFollowUp renders the follow-up block for the current question:
// a spinner while the decision is in flight, the follow-up question and
// its input once displayed, or nothing when no follow-up applies.
func viewFollowUp(m Model, index int) string {
	if m.sess.Generating(index) {
		return m.styles.FollowUpPending.Render(
			m.spinner.View() + " Checking whether a follow-up is needed...",
		)
	}

	entry, ok := m.sess.FollowUp(index)
	if !ok || !entry.ShouldAsk || !entry.Displayed {
		return ""
	}

	parts := []string{
		m.styles.FollowUpQuestion.Render(entry.Text),
	}
	if entry.Rationale != "" {
		parts = append(parts, m.styles.Rationale.Render(entry.Rationale))
	}
	parts = append(parts, m.followUpInput.View())

	if _, answered := m.sess.FollowUpResponse(index); answered {
		parts = append(parts, m.styles.Answered.Render("✓ follow-up answered"))
	}

	return m.styles.FollowUpCard.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func viewSummary(m Model) string {
	sections := []string{
		m.styles.Title.Render("Survey complete — thank you!"),
		"",
		viewResponsesTable(m),
		"",
		m.styles.Subtitle.Render("Ask a question about the responses:"),
		m.queryInput.View(),
	}

	if m.analysisRunning {
		sections = append(sections, "",
			m.spinner.View()+" "+m.styles.FollowUpPending.Render(stageLabel(m.analysisStage)),
			m.progressBar.ViewAs(stageFraction(m.analysisStage)),
		)
	} else if m.sess.IsAnalysisVisible() && m.analysisText != "" {
		sections = append(sections, "", m.viewport.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewResponsesTable renders the recorded answers as a table.
func viewResponsesTable(m Model) string {
	columns := []table.Column{
		table.NewColumn("question", "Question", 36),
		table.NewColumn("answer", "Answer", 24),
		table.NewColumn("followup", "Follow-up", 30),
	}

	rows := make([]table.Row, 0, m.doc.Len())
	for _, q := range m.doc.Questions {
		answer, _ := m.sess.Response(q.Index)
		if answer == "" {
			answer = "—"
		}

		followUp := "—"
		if entry, ok := m.sess.FollowUp(q.Index); ok && entry.ShouldAsk {
			if response, ok := m.sess.FollowUpResponse(q.Index); ok {
				followUp = response
			} else {
				followUp = entry.Text
			}
		}

		rows = append(rows, table.NewRow(table.RowData{
			"question": q.Text,
			"answer":   answer,
			"followup": followUp,
		}))
	}

	return table.New(columns).WithRows(rows).View()
}

func stageLabel(stage types.ProgressStage) string {
	switch stage {
	case types.StageFetching:
		return "Fetching responses..."
	case types.StageReading:
		return "Reading responses..."
	case types.StageThinking:
		return "Thinking..."
	case types.StageCompleted:
		return "Done."
	default:
		return "Working..."
	}
}

func stageFraction(stage types.ProgressStage) float64 {
	switch stage {
	case types.StageFetching:
		return 0.25
	case types.StageReading:
		return 0.5
	case types.StageThinking:
		return 0.75
	case types.StageCompleted:
		return 1.0
	default:
		return 0.0
	}
}

// staticView adapts a rendered string to tea.Model for overlay
// composition.
type staticView string

func (s staticView) Init() tea.Cmd                       { return nil }
func (s staticView) Update(tea.Msg) (tea.Model, tea.Cmd) { return s, nil }
func (s staticView) View() string                        { return string(s) }

// overlayHelp composites the help box over the main view.
func overlayHelp(m Model, main string) string {
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.HelpTitle.Render("Keyboard shortcuts"),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		m.styles.Rationale.Render("press any key to close"),
	)
	box := m.styles.HelpBox.Render(content)

	return overlay.New(
		staticView(box),
		staticView(main),
		overlay.Center,
		overlay.Center,
		0,
		0,
	).View()
}
