package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nkemp/canvass/internal/analysis"
	"github.com/nkemp/canvass/internal/followup"
	"github.com/nkemp/canvass/internal/llm"
	"github.com/nkemp/canvass/internal/results"
	"github.com/nkemp/canvass/internal/survey"
	"github.com/nkemp/canvass/pkg/types"
)

// decideFollowUp runs the follow-up decision in the background and
// delivers the verdict as a followUpResultMsg.
func decideFollowUp(svc *followup.Service, q survey.Question, answer string) tea.Cmd {
	return func() tea.Msg {
		task := svc.Start(context.Background(), q.Index, q.Text, answer)
		decision, err := task.Wait()
		return followUpResultMsg{
			index:    task.Index(),
			answer:   task.Answer(),
			decision: decision,
			err:      err,
		}
	}
}

// runAnalysis executes the analysis agent against a snapshot, feeding
// stage notifications into the given channel. The channel is closed when
// the run finishes; listenStages drains it into stage messages.
func runAnalysis(provider llm.Provider, query string, snap analysis.Snapshot, stages chan types.ProgressStage) tea.Cmd {
	return func() tea.Msg {
		agent := analysis.NewAgent(provider, func(stage types.ProgressStage) {
			select {
			case stages <- stage:
			default:
			}
		})

		answer, err := agent.Answer(context.Background(), query, snap)
		close(stages)
		if err != nil {
			// Only validation errors reach here; provider failures are
			// absorbed into the answer text.
			return analysisResultMsg{answer: err.Error()}
		}
		return analysisResultMsg{answer: answer}
	}
}

// listenStages waits for the next progress stage. The update loop
// re-issues it after each stage message until the channel closes.
func listenStages(stages <-chan types.ProgressStage) tea.Cmd {
	return func() tea.Msg {
		stage, ok := <-stages
		if !ok {
			return nil
		}
		return analysisStageMsg{stage: stage}
	}
}

// saveResults persists the finished survey in the background.
func saveResults(store *results.Store, record *results.Record) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return resultsSavedMsg{err: store.Save(ctx, record)}
	}
}
