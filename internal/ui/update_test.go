package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkemp/canvass/internal/llm"
	"github.com/nkemp/canvass/internal/survey"
)

type stubProvider struct {
	content string
	err     error
}

func (p *stubProvider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llm.ChatResponse{Content: p.content, Model: "stub"}, nil
}

func (p *stubProvider) Name() string    { return "stub" }
func (p *stubProvider) Available() bool { return true }

func testDoc() *survey.Document {
	return &survey.Document{
		ID:    "active",
		Title: "Test survey",
		Questions: []survey.Question{
			{Index: 0, Text: "How was onboarding?", Kind: survey.KindFreeText},
			{Index: 1, Text: "Pick a color", Kind: survey.KindCategorical, Choices: []string{"Red", "Blue"}},
		},
	}
}

// startSurvey sizes the terminal and dismisses the start screen.
func startSurvey(t *testing.T, provider llm.Provider) Model {
	t.Helper()
	m := NewModel(Config{Document: testDoc(), Provider: provider})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)
	require.True(t, m.ready)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.Equal(t, PhaseSurvey, m.phase)
	return m
}

func keyMsg(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func TestFreeTextAnswerGatesNavigation(t *testing.T) {
	provider := &stubProvider{content: `{"should_ask": true, "follow_up_question": "What stood out?"}`}
	m := startSurvey(t, provider)

	m.answerInput.SetValue("Smooth overall.")
	updated, cmd := m.Update(keyMsg(tea.KeyEnter))
	m = updated.(Model)
	require.NotNil(t, cmd, "free-text answer must dispatch a decision")
	assert.True(t, m.sess.Generating(0))

	// Navigation is refused while the decision is in flight.
	updated, _ = m.Update(keyMsg(tea.KeyCtrlN))
	m = updated.(Model)
	assert.Equal(t, 0, m.sess.CurrentIndex())
	assert.NotEmpty(t, m.status)

	// The background command completes and re-enters as a message.
	msg := cmd()
	result, ok := msg.(followUpResultMsg)
	require.True(t, ok)
	assert.Equal(t, 0, result.index)

	updated, _ = m.Update(result)
	m = updated.(Model)
	entry, ok := m.sess.FollowUp(0)
	require.True(t, ok)
	assert.Equal(t, "What stood out?", entry.Text)
	assert.True(t, entry.Displayed)
	assert.Equal(t, FocusFollowUp, m.focus)

	// Still blocked: the follow-up awaits an answer.
	updated, _ = m.Update(keyMsg(tea.KeyCtrlN))
	m = updated.(Model)
	assert.Equal(t, 0, m.sess.CurrentIndex())

	// Answering the follow-up clears the gate.
	m.followUpInput.SetValue("The checklist.")
	updated, _ = m.Update(keyMsg(tea.KeyEnter))
	m = updated.(Model)
	assert.False(t, m.sess.RequirementPending(0))

	updated, _ = m.Update(keyMsg(tea.KeyCtrlN))
	m = updated.(Model)
	assert.Equal(t, 1, m.sess.CurrentIndex())
}

func TestCategoricalSelectionNeverGenerates(t *testing.T) {
	provider := &stubProvider{content: `{"should_ask": true, "follow_up_question": "?"}`}
	m := startSurvey(t, provider)

	// Skip past the free-text question without answering it.
	updated, _ := m.Update(keyMsg(tea.KeyCtrlN))
	m = updated.(Model)
	require.Equal(t, 1, m.sess.CurrentIndex())

	updated, _ = m.Update(keyMsg(tea.KeyDown))
	m = updated.(Model)
	updated, cmd := m.Update(keyMsg(tea.KeyEnter))
	m = updated.(Model)

	assert.Nil(t, cmd, "categorical selection must not dispatch a decision")
	answer, _ := m.sess.Response(1)
	assert.Equal(t, "Blue", answer)
	assert.False(t, m.sess.RequirementPending(1))
}

func TestProviderFailureFallsBack(t *testing.T) {
	provider := &stubProvider{err: errors.New("provider down")}
	m := startSurvey(t, provider)

	m.answerInput.SetValue("I loved the onboarding flow")
	updated, cmd := m.Update(keyMsg(tea.KeyEnter))
	m = updated.(Model)
	require.NotNil(t, cmd)

	updated, _ = m.Update(cmd())
	m = updated.(Model)

	entry, ok := m.sess.FollowUp(0)
	require.True(t, ok)
	assert.Contains(t, entry.Text, "I loved the onboarding flow")
	assert.Contains(t, entry.Text, "How was onboarding?")
	assert.True(t, m.sess.RequirementPending(0))
	assert.True(t, m.statusErr)
}

func TestStaleDecisionRegenerates(t *testing.T) {
	provider := &stubProvider{content: `{"should_ask": false}`}
	m := startSurvey(t, provider)

	m.answerInput.SetValue("First answer")
	updated, cmd := m.Update(keyMsg(tea.KeyEnter))
	m = updated.(Model)
	require.NotNil(t, cmd)
	firstResult := cmd()

	// The answer changes while the first decision is still in flight.
	m.answerInput.SetValue("Second answer")
	updated, _ = m.Update(keyMsg(tea.KeyEnter))
	m = updated.(Model)

	updated, regen := m.Update(firstResult)
	m = updated.(Model)
	require.NotNil(t, regen, "stale result must trigger regeneration")
	assert.True(t, m.sess.Generating(0))

	updated, _ = m.Update(regen())
	m = updated.(Model)
	assert.False(t, m.sess.Generating(0))
	assert.False(t, m.sess.RequirementPending(0), "skip verdict clears the requirement")
}

func TestFinishOnlyFromLastQuestion(t *testing.T) {
	provider := &stubProvider{content: `{"should_ask": false}`}
	m := startSurvey(t, provider)

	updated, _ := m.Update(keyMsg(tea.KeyCtrlF))
	m = updated.(Model)
	assert.Equal(t, PhaseSurvey, m.phase)
	assert.NotEmpty(t, m.status)

	updated, _ = m.Update(keyMsg(tea.KeyCtrlN))
	m = updated.(Model)
	updated, _ = m.Update(keyMsg(tea.KeyCtrlF))
	m = updated.(Model)
	assert.Equal(t, PhaseSummary, m.phase)
	assert.True(t, m.sess.IsComplete())
}

func TestBackFromSummaryHidesAnalysis(t *testing.T) {
	provider := &stubProvider{content: `{"should_ask": false}`}
	m := startSurvey(t, provider)

	updated, _ := m.Update(keyMsg(tea.KeyCtrlN))
	m = updated.(Model)
	updated, _ = m.Update(keyMsg(tea.KeyCtrlF))
	m = updated.(Model)
	require.Equal(t, PhaseSummary, m.phase)

	updated, _ = m.Update(analysisResultMsg{answer: "- all good"})
	m = updated.(Model)
	assert.True(t, m.sess.IsAnalysisVisible())

	updated, _ = m.Update(keyMsg(tea.KeyCtrlP))
	m = updated.(Model)
	assert.Equal(t, PhaseSurvey, m.phase)
	assert.False(t, m.sess.IsComplete())
	assert.False(t, m.sess.IsAnalysisVisible())
}

func TestRestartResetsEverything(t *testing.T) {
	provider := &stubProvider{content: `{"should_ask": false}`}
	m := startSurvey(t, provider)

	m.answerInput.SetValue("Something")
	updated, _ := m.Update(keyMsg(tea.KeyEnter))
	m = updated.(Model)

	updated, _ = m.Update(keyMsg(tea.KeyCtrlR))
	m = updated.(Model)

	assert.Equal(t, PhaseStart, m.phase)
	assert.Equal(t, 0, m.sess.AnsweredCount())
	assert.Empty(t, m.answerInput.Value())
}
