package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nkemp/canvass/internal/analysis"
	"github.com/nkemp/canvass/internal/results"
	"github.com/nkemp/canvass/internal/session"
	"github.com/nkemp/canvass/pkg/types"
)

// update is the central message handler for the survey TUI.
func update(m Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return updateWindowSize(m, msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case followUpResultMsg:
		return updateFollowUpResult(m, msg)

	case analysisStageMsg:
		m.analysisStage = msg.stage
		return m, listenStages(m.stages)

	case analysisResultMsg:
		return updateAnalysisResult(m, msg)

	case resultsSavedMsg:
		if msg.err != nil {
			m.setStatus("Saving results failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Results saved.", false)
		}
		return m, nil

	case tea.KeyMsg:
		return updateKey(m, msg)
	}

	return m, nil
}

func updateWindowSize(m Model, msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	inputWidth := msg.Width - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	m.answerInput.SetWidth(inputWidth)
	m.followUpInput.SetWidth(inputWidth)
	m.queryInput.Width = inputWidth
	m.progressBar.Width = inputWidth
	m.viewport.Width = inputWidth
	m.help.Width = msg.Width

	return m, nil
}

// updateFollowUpResult applies a finished decision to the gate. A stale
// result (the answer changed mid-flight) triggers a regeneration for the
// current answer.
func updateFollowUpResult(m Model, msg followUpResultMsg) (tea.Model, tea.Cmd) {
	q := m.doc.Questions[msg.index]

	if stale := m.sess.ApplyDecision(q, msg.answer, msg.decision, msg.err); stale {
		current, ok := m.sess.Response(msg.index)
		if ok {
			if err := m.sess.BeginGeneration(msg.index); err == nil {
				return m, decideFollowUp(m.followupSvc, q, current)
			}
		}
		return m, nil
	}

	if msg.err != nil {
		m.setStatus("Follow-up service unavailable; using a standard follow-up.", true)
	}

	if msg.index == m.sess.CurrentIndex() {
		m.sess.MarkFollowUpDisplayed(msg.index)
		if entry, ok := m.sess.FollowUp(msg.index); ok && entry.ShouldAsk {
			m.focus = FocusFollowUp
			m.applyFocus()
		}
	}

	return m, nil
}

func updateAnalysisResult(m Model, msg analysisResultMsg) (tea.Model, tea.Cmd) {
	m.analysisRunning = false
	m.analysisStage = types.StageCompleted
	m.analysisText = msg.answer
	m.sess.SetAnalysisVisible(true)

	rendered := msg.answer
	if m.renderer != nil {
		if out, err := m.renderer.Render(msg.answer); err == nil {
			rendered = out
		}
	}
	m.viewport.SetContent(rendered)
	m.viewport.GotoTop()

	return m, nil
}

func updateKey(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = true
		return m, nil
	}

	if key.Matches(msg, m.keys.Restart) {
		return restart(m)
	}

	switch m.phase {
	case PhaseStart:
		if msg.Type == tea.KeyEnter {
			m.sess.SetStarted(true)
			m.phase = PhaseSurvey
			m.syncQuestion()
		}
		return m, nil

	case PhaseSurvey:
		return updateSurveyKey(m, msg)

	case PhaseSummary:
		return updateSummaryKey(m, msg)
	}

	return m, nil
}

func restart(m Model) (tea.Model, tea.Cmd) {
	m.sess.Reset()
	m.phase = PhaseStart
	m.focus = FocusAnswer
	m.answerInput.Reset()
	m.followUpInput.Reset()
	m.queryInput.Reset()
	m.analysisText = ""
	m.analysisRunning = false
	m.status = ""
	m.statusErr = false
	return m, nil
}

func updateSurveyKey(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := m.currentQuestion()
	total := m.doc.Len()

	switch {
	case key.Matches(msg, m.keys.Next):
		if err := m.sess.Advance(total); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.syncQuestion()
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.sess.Retreat()
		m.syncQuestion()
		return m, nil

	case key.Matches(msg, m.keys.Finish):
		return finishSurvey(m)

	case msg.Type == tea.KeyTab:
		if entry, ok := m.sess.FollowUp(q.Index); ok && entry.ShouldAsk && entry.Displayed {
			if m.focus == FocusAnswer {
				m.focus = FocusFollowUp
			} else {
				m.focus = FocusAnswer
			}
			m.applyFocus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return submitInput(m)
	}

	// Choice navigation on categorical questions.
	if m.focus == FocusAnswer && !q.IsFreeText() {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.choiceCursor > 0 {
				m.choiceCursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.choiceCursor < len(q.Choices)-1 {
				m.choiceCursor++
			}
			return m, nil
		}
		return m, nil
	}

	// Everything else goes to the focused text input.
	var cmd tea.Cmd
	switch m.focus {
	case FocusAnswer:
		m.answerInput, cmd = m.answerInput.Update(msg)
	case FocusFollowUp:
		m.followUpInput, cmd = m.followUpInput.Update(msg)
	}
	return m, cmd
}

// submitInput records the focused input through the gate.
func submitInput(m Model) (tea.Model, tea.Cmd) {
	q := m.currentQuestion()

	if m.focus == FocusFollowUp {
		m.sess.ApplyFollowUpAnswer(q.Index, m.followUpInput.Value())
		if m.sess.RequirementPending(q.Index) {
			m.setStatus("A follow-up answer is required before continuing.", true)
		} else {
			m.setStatus("Follow-up answer recorded.", false)
		}
		return m, nil
	}

	var raw string
	if q.IsFreeText() {
		raw = m.answerInput.Value()
	} else {
		raw = q.Choices[m.choiceCursor]
	}

	needsGeneration := m.sess.ApplyAnswer(q, raw)
	if !needsGeneration {
		m.setStatus("Answer recorded.", false)
		return m, nil
	}

	if err := m.sess.BeginGeneration(q.Index); err != nil {
		// An earlier generation is still running; its completion will be
		// detected as stale and regenerated for this answer.
		return m, nil
	}

	answer, _ := m.sess.Response(q.Index)
	m.setStatus("Checking whether a follow-up is needed...", false)
	return m, decideFollowUp(m.followupSvc, q, answer)
}

func finishSurvey(m Model) (tea.Model, tea.Cmd) {
	total := m.doc.Len()
	if err := m.sess.Finish(total); err != nil {
		if errors.Is(err, session.ErrNotLastQuestion) {
			m.setStatus("Finish is only available on the last question.", true)
		} else {
			m.setStatus(err.Error(), true)
		}
		return m, nil
	}

	m.phase = PhaseSummary
	m.focus = FocusQuery
	m.applyFocus()
	m.setStatus("Survey complete.", false)

	if m.store != nil {
		return m, saveResults(m.store, results.NewRecord(m.doc, m.sess))
	}
	return m, nil
}

func updateSummaryKey(m Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Prev):
		// Back into the survey; leaving completion hides the analysis.
		m.sess.Retreat()
		m.phase = PhaseSurvey
		m.syncQuestion()
		return m, nil

	case key.Matches(msg, m.keys.Analyse):
		return startAnalysis(m)
	}

	// Scroll the analysis viewport or type the query.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func startAnalysis(m Model) (tea.Model, tea.Cmd) {
	if m.analysisRunning {
		return m, nil
	}

	query := strings.TrimSpace(m.queryInput.Value())
	if query == "" {
		m.setStatus("Type a question about the responses first.", true)
		return m, nil
	}

	m.analysisRunning = true
	m.analysisStage = types.StageFetching
	m.stages = make(chan types.ProgressStage, 8)

	snap := analysis.BuildSnapshot(m.doc, m.sess)
	return m, tea.Batch(
		runAnalysis(m.provider, query, snap, m.stages),
		listenStages(m.stages),
	)
}
