// Package session owns all mutable state for one survey run: primary
// responses, generated follow-ups, follow-up answers, outstanding
// follow-up requirements, and the navigation cursor. The gate logic in
// gate.go consumes this state to decide whether forward navigation is
// permitted.
//
// A Session is confined to the render loop's goroutine. Background
// generation results re-enter through gate events, never by direct
// mutation, so the session carries no lock.
package session

// FollowUpSource records where a follow-up question came from, for
// diagnostics and persistence.
type FollowUpSource string

const (
	// SourceAgent marks a follow-up produced by the decision model.
	SourceAgent FollowUpSource = "agent"

	// SourceAgentSkip marks a verdict that no follow-up is needed.
	SourceAgentSkip FollowUpSource = "agent_skip"

	// SourceFallback marks the deterministic template used after a
	// provider failure.
	SourceFallback FollowUpSource = "fallback"

	// SourceFallbackEmpty marks the template used when the model asked
	// for a follow-up but returned an empty question.
	SourceFallbackEmpty FollowUpSource = "fallback_empty"
)

// FollowUpEntry caches the follow-up verdict for one question. The cache
// key is the (question, SourceAnswer) pair: the entry is stale as soon as
// SourceAnswer no longer matches the current primary response.
type FollowUpEntry struct {
	// SourceAnswer is the primary answer this follow-up was generated for.
	SourceAnswer string

	// Text is the follow-up question. Empty with ShouldAsk false means
	// the model decided no follow-up is needed.
	Text string

	// Displayed is true once the follow-up has been rendered (or when no
	// follow-up will ever be shown).
	Displayed bool

	// ShouldAsk reports whether a follow-up answer is expected.
	ShouldAsk bool

	// Rationale is the model's reasoning, when provided.
	Rationale string

	// Source records how the entry was produced.
	Source FollowUpSource
}

// Session is the process-wide state for one survey run.
type Session struct {
	current         int
	complete        bool
	started         bool
	analysisVisible bool

	responses         map[int]string
	followUps         map[int]FollowUpEntry
	followUpResponses map[int]string
	required          map[int]bool
	generating        map[int]bool
}

// New creates an empty session positioned at the first question.
func New() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset atomically replaces all session state, returning to the start
// screen with no recorded responses.
func (s *Session) Reset() {
	s.current = 0
	s.complete = false
	s.started = false
	s.analysisVisible = false
	s.responses = make(map[int]string)
	s.followUps = make(map[int]FollowUpEntry)
	s.followUpResponses = make(map[int]string)
	s.required = make(map[int]bool)
	s.generating = make(map[int]bool)
}

// CurrentIndex returns the active question index.
func (s *Session) CurrentIndex() int { return s.current }

// Clamp constrains the cursor to [0, total-1] after a document change.
func (s *Session) Clamp(total int) {
	if total <= 0 {
		s.current = 0
		return
	}
	if s.current >= total {
		s.current = total - 1
	}
}

// IsComplete reports whether the survey has been finished.
func (s *Session) IsComplete() bool { return s.complete }

// setComplete records completion. Leaving the completed state hides the
// analysis section until it is re-triggered.
func (s *Session) setComplete(complete bool) {
	s.complete = complete
	if !complete {
		s.analysisVisible = false
	}
}

// IsStarted reports whether the start screen has been dismissed.
func (s *Session) IsStarted() bool { return s.started }

// SetStarted records whether the survey has left the start screen.
func (s *Session) SetStarted(started bool) { s.started = started }

// IsAnalysisVisible reports whether the analysis section should be shown.
func (s *Session) IsAnalysisVisible() bool { return s.analysisVisible }

// SetAnalysisVisible toggles the analysis section.
func (s *Session) SetAnalysisVisible(visible bool) { s.analysisVisible = visible }

// Response returns the recorded primary response for a question.
func (s *Session) Response(index int) (string, bool) {
	value, ok := s.responses[index]
	return value, ok
}

// Responses returns a copy of all recorded responses keyed by question index.
func (s *Session) Responses() map[int]string {
	out := make(map[int]string, len(s.responses))
	for k, v := range s.responses {
		out[k] = v
	}
	return out
}

// AnsweredCount returns how many questions have recorded responses.
func (s *Session) AnsweredCount() int { return len(s.responses) }

// FollowUp returns a copy of the follow-up entry for a question.
func (s *Session) FollowUp(index int) (FollowUpEntry, bool) {
	entry, ok := s.followUps[index]
	return entry, ok
}

// FollowUps returns a copy of all follow-up entries.
func (s *Session) FollowUps() map[int]FollowUpEntry {
	out := make(map[int]FollowUpEntry, len(s.followUps))
	for k, v := range s.followUps {
		out[k] = v
	}
	return out
}

// FollowUpResponse returns the recorded follow-up answer for a question.
func (s *Session) FollowUpResponse(index int) (string, bool) {
	value, ok := s.followUpResponses[index]
	return value, ok
}

// FollowUpResponses returns a copy of all follow-up answers.
func (s *Session) FollowUpResponses() map[int]string {
	out := make(map[int]string, len(s.followUpResponses))
	for k, v := range s.followUpResponses {
		out[k] = v
	}
	return out
}

// RequirementPending reports whether navigation past the question is
// blocked pending follow-up resolution.
func (s *Session) RequirementPending(index int) bool { return s.required[index] }

// Generating reports whether a follow-up generation is in flight for the
// question.
func (s *Session) Generating(index int) bool { return s.generating[index] }

// GeneratingAny reports whether any generation is in flight.
func (s *Session) GeneratingAny() bool { return len(s.generating) > 0 }
