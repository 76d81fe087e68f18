// Package types holds contracts shared across Canvass components: the
// validation error sentinel and the analysis progress stages observed by
// the UI.
package types

import "errors"

// ErrValidation marks input-validation failures: empty queries, questions,
// or answers passed to a core operation. These are rejected synchronously
// and never reach an external call. Check with errors.Is.
var ErrValidation = errors.New("validation failed")

// ProgressStage identifies a step in an analysis run. Stages are purely
// informational; they never alter the result.
type ProgressStage string

const (
	StageFetching  ProgressStage = "fetching"
	StageReading   ProgressStage = "reading"
	StageThinking  ProgressStage = "thinking"
	StageCompleted ProgressStage = "completed"
)

// ProgressFunc receives ordered stage notifications during an analysis run.
type ProgressFunc func(ProgressStage)
