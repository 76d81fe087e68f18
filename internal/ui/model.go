package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/nkemp/canvass/internal/followup"
	"github.com/nkemp/canvass/internal/llm"
	"github.com/nkemp/canvass/internal/results"
	"github.com/nkemp/canvass/internal/session"
	"github.com/nkemp/canvass/internal/survey"
	"github.com/nkemp/canvass/pkg/types"
)

// Phase represents the current screen of the survey TUI.
type Phase int

const (
	// PhaseStart is the welcome screen before the survey begins.
	PhaseStart Phase = iota

	// PhaseSurvey is the question-by-question flow.
	PhaseSurvey

	// PhaseSummary is the completion screen with the response table and
	// the analysis section.
	PhaseSummary
)

// Focus identifies which input currently receives keystrokes.
type Focus int

const (
	// FocusAnswer targets the primary answer input (or choice list).
	FocusAnswer Focus = iota

	// FocusFollowUp targets the follow-up answer input.
	FocusFollowUp

	// FocusQuery targets the analysis query input on the summary screen.
	FocusQuery
)

// Model is the main Bubble Tea model for the survey TUI. It implements
// the tea.Model interface and follows Elm Architecture principles: all
// session mutations happen in the update loop, and background follow-up
// decisions re-enter as messages.
type Model struct {
	width  int
	height int
	ready  bool

	styles Styles
	keys   KeyMap
	help   help.Model

	phase Phase
	focus Focus

	doc  *survey.Document
	sess *session.Session

	followupSvc *followup.Service
	provider    llm.Provider
	store       *results.Store // nil disables persistence

	// answerInput captures free-text primary answers.
	answerInput textarea.Model

	// followUpInput captures follow-up answers.
	followUpInput textarea.Model

	// queryInput captures the analysis question on the summary screen.
	queryInput textinput.Model

	// choiceCursor is the highlighted choice on categorical questions.
	choiceCursor int

	spinner     spinner.Model
	progressBar progress.Model
	viewport    viewport.Model
	renderer    *glamour.TermRenderer

	// Analysis run state.
	analysisRunning bool
	analysisStage   types.ProgressStage
	analysisText    string
	stages          chan types.ProgressStage

	showHelp bool

	// status is the transient message in the footer; statusErr styles it
	// as an error (gate refusals, provider failures).
	status    string
	statusErr bool
}

// Config holds the dependencies for initializing the survey TUI.
type Config struct {
	Document *survey.Document
	Provider llm.Provider
	Store    *results.Store
	Theme    Theme
}

// NewModel builds the initial model for a survey run.
func NewModel(cfg Config) Model {
	theme := cfg.Theme
	if theme.Name == "" {
		theme = ThemeDefault
	}
	styles := NewStyles(theme)

	answerInput := textarea.New()
	answerInput.Placeholder = "Type your answer..."
	answerInput.SetHeight(3)
	answerInput.ShowLineNumbers = false
	answerInput.KeyMap.InsertNewline.SetEnabled(false)
	answerInput.Focus()

	followUpInput := textarea.New()
	followUpInput.Placeholder = "Answer the follow-up..."
	followUpInput.SetHeight(3)
	followUpInput.ShowLineNumbers = false
	followUpInput.KeyMap.InsertNewline.SetEnabled(false)

	queryInput := textinput.New()
	queryInput.Placeholder = "Ask about the responses..."

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.GlamourStyle),
		glamour.WithWordWrap(80),
	)

	return Model{
		styles:        styles,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		phase:         PhaseStart,
		focus:         FocusAnswer,
		doc:           cfg.Document,
		sess:          session.New(),
		followupSvc:   followup.NewService(cfg.Provider),
		provider:      cfg.Provider,
		store:         cfg.Store,
		answerInput:   answerInput,
		followUpInput: followUpInput,
		queryInput:    queryInput,
		spinner:       sp,
		progressBar:   progress.New(progress.WithDefaultGradient()),
		viewport:      viewport.New(80, 12),
		renderer:      renderer,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model; the implementation lives in update.go.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return update(m, msg)
}

// View implements tea.Model; the implementation lives in view.go.
func (m Model) View() string {
	return view(m)
}

// currentQuestion returns the question under the cursor.
func (m Model) currentQuestion() survey.Question {
	return m.doc.Questions[m.sess.CurrentIndex()]
}

// syncQuestion loads the stored state for the current question into the
// input components and marks a resolved follow-up as displayed. Called
// after every navigation.
func (m *Model) syncQuestion() {
	index := m.sess.CurrentIndex()
	q := m.currentQuestion()

	answer, _ := m.sess.Response(index)
	if q.IsFreeText() {
		m.answerInput.SetValue(answer)
	} else {
		m.choiceCursor = 0
		for i, choice := range q.Choices {
			if choice == answer {
				m.choiceCursor = i
				break
			}
		}
	}

	m.sess.MarkFollowUpDisplayed(index)
	followUpAnswer, _ := m.sess.FollowUpResponse(index)
	m.followUpInput.SetValue(followUpAnswer)

	m.focus = FocusAnswer
	m.applyFocus()
	m.status = ""
	m.statusErr = false
}

// applyFocus routes keyboard focus to the component selected by m.focus.
func (m *Model) applyFocus() {
	m.answerInput.Blur()
	m.followUpInput.Blur()
	m.queryInput.Blur()

	switch m.focus {
	case FocusAnswer:
		if m.currentQuestion().IsFreeText() {
			m.answerInput.Focus()
		}
	case FocusFollowUp:
		m.followUpInput.Focus()
	case FocusQuery:
		m.queryInput.Focus()
	}
}

// setStatus records a transient footer message.
func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}
