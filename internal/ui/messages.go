package ui

import (
	"github.com/nkemp/canvass/internal/followup"
	"github.com/nkemp/canvass/pkg/types"
)

// followUpResultMsg carries a finished follow-up decision back into the
// update loop. The answer is the primary response the generation was
// requested for; the gate compares it against the current response to
// detect staleness.
type followUpResultMsg struct {
	index    int
	answer   string
	decision followup.Decision
	err      error
}

// analysisStageMsg reports a progress stage from a running analysis.
type analysisStageMsg struct {
	stage types.ProgressStage
}

// analysisResultMsg carries the finished analysis answer.
type analysisResultMsg struct {
	answer string
}

// resultsSavedMsg reports the outcome of persisting the finished survey.
type resultsSavedMsg struct {
	err error
}
