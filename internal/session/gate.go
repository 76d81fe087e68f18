package session

import (
	"errors"
	"strings"

	"github.com/nkemp/canvass/internal/followup"
	"github.com/nkemp/canvass/internal/survey"
)

// Navigation gate errors. The UI maps these to status messages; they are
// expected outcomes, not faults.
var (
	// ErrFollowUpRequired means the current question still awaits a
	// follow-up answer.
	ErrFollowUpRequired = errors.New("a follow-up answer is required before continuing")

	// ErrGenerationPending means a follow-up question is still being
	// generated for the current question.
	ErrGenerationPending = errors.New("a follow-up question is still being generated")

	// ErrGenerationInFlight means a generation was requested while one is
	// already running for the same question.
	ErrGenerationInFlight = errors.New("a generation is already in flight for this question")

	// ErrNotLastQuestion means finish was requested before the last
	// question.
	ErrNotLastQuestion = errors.New("finish is only available on the last question")
)

// Every method below is a gate transition: an idempotent function of
// (current state, event). The render loop may re-apply any of them to
// unchanged state without effect.

// ApplyAnswer records a primary answer and reports whether a follow-up
// generation should be started for the question.
//
// An empty (after trimming) answer removes the response and discards any
// follow-up artifacts without marking a requirement. Categorical answers
// must be one of the question's choices and never need a follow-up.
// A free-text answer that differs from the cached entry's source answer
// marks the question REQUIRED, discards the stale follow-up question and
// answer, and asks the caller to generate.
func (s *Session) ApplyAnswer(q survey.Question, raw string) (needsGeneration bool) {
	answer := strings.TrimSpace(raw)

	if answer == "" {
		delete(s.responses, q.Index)
		s.discardFollowUp(q.Index)
		return false
	}

	if q.Kind == survey.KindCategorical {
		if !q.HasChoice(answer) {
			return false
		}
		s.responses[q.Index] = answer
		s.discardFollowUp(q.Index)
		return false
	}

	s.responses[q.Index] = answer

	if entry, ok := s.followUps[q.Index]; ok && entry.SourceAnswer == answer {
		// Entry is current for this exact answer; nothing to regenerate.
		return false
	}

	delete(s.followUps, q.Index)
	delete(s.followUpResponses, q.Index)
	s.required[q.Index] = true
	return true
}

// BeginGeneration marks a generation in flight for the question. At most
// one generation may run per index.
func (s *Session) BeginGeneration(index int) error {
	if s.generating[index] {
		return ErrGenerationInFlight
	}
	s.generating[index] = true
	return nil
}

// ApplyDecision applies a finished generation to the gate. The answer the
// generation was requested for is compared against the current response;
// a mismatch means the result is stale and must be regenerated, reported
// through the return value.
//
// A provider failure (callErr non-nil) or an affirmative verdict with an
// empty question synthesizes the deterministic fallback question, so the
// survey is never blocked indefinitely by the provider.
func (s *Session) ApplyDecision(q survey.Question, answer string, dec followup.Decision, callErr error) (stale bool) {
	delete(s.generating, q.Index)

	current, ok := s.responses[q.Index]
	if !ok || !q.IsFreeText() {
		// Answer cleared (or question cannot take follow-ups) while the
		// call was running; artifacts were already discarded.
		return false
	}
	if current != answer {
		return true
	}

	switch {
	case callErr != nil:
		s.followUps[q.Index] = FollowUpEntry{
			SourceAnswer: answer,
			Text:         followup.FallbackQuestion(q.Text, answer),
			ShouldAsk:    true,
			Source:       SourceFallback,
		}

	case !dec.ShouldAsk:
		s.followUps[q.Index] = FollowUpEntry{
			SourceAnswer: answer,
			Displayed:    true,
			Rationale:    dec.Rationale,
			Source:       SourceAgentSkip,
		}
		delete(s.required, q.Index)

	default:
		text := strings.TrimSpace(dec.FollowUpQuestion)
		source := SourceAgent
		if text == "" {
			text = followup.FallbackQuestion(q.Text, answer)
			source = SourceFallbackEmpty
		}
		s.followUps[q.Index] = FollowUpEntry{
			SourceAnswer: answer,
			Text:         text,
			ShouldAsk:    true,
			Rationale:    dec.Rationale,
			Source:       source,
		}
	}

	return false
}

// MarkFollowUpDisplayed records that the follow-up question has been
// rendered. Navigation stays blocked until a displayed follow-up is
// answered.
func (s *Session) MarkFollowUpDisplayed(index int) {
	entry, ok := s.followUps[index]
	if !ok || entry.Text == "" || entry.Displayed {
		return
	}
	entry.Displayed = true
	s.followUps[index] = entry
}

// ApplyFollowUpAnswer records the respondent's answer to a displayed
// follow-up. A non-empty answer clears the requirement; clearing the
// answer re-marks it while the follow-up question still stands.
func (s *Session) ApplyFollowUpAnswer(index int, raw string) {
	entry, ok := s.followUps[index]
	if !ok || entry.Text == "" {
		return
	}

	answer := strings.TrimSpace(raw)
	if answer == "" {
		delete(s.followUpResponses, index)
		s.required[index] = true
		return
	}

	if !entry.Displayed {
		return
	}

	s.followUpResponses[index] = answer
	delete(s.required, index)
}

// CanAdvance reports whether forward navigation past the question is
// currently permitted.
func (s *Session) CanAdvance(index int) bool {
	return s.gateCheck(index) == nil
}

// gateCheck returns why forward navigation is refused, or nil. An
// in-flight generation blocks even when an answer was separately
// supplied; the requirement can only clear after the generation resolves
// and is displayed.
func (s *Session) gateCheck(index int) error {
	if s.GeneratingAny() {
		return ErrGenerationPending
	}
	if s.required[index] {
		return ErrFollowUpRequired
	}
	return nil
}

// Advance moves to the next question when the gate permits. Leaving the
// completed state (navigating after finish) re-arms normal gating.
func (s *Session) Advance(total int) error {
	if err := s.gateCheck(s.current); err != nil {
		return err
	}
	if s.current < total-1 {
		s.current++
	}
	s.setComplete(false)
	return nil
}

// Retreat moves to the previous question. Backward navigation is never
// gated; it also clears completion, which hides the analysis section.
func (s *Session) Retreat() {
	if s.current > 0 {
		s.current--
	}
	s.setComplete(false)
}

// Finish marks the survey complete. Only permitted from the last question
// and subject to the same gate as Advance.
func (s *Session) Finish(total int) error {
	if err := s.gateCheck(s.current); err != nil {
		return err
	}
	if s.current != total-1 {
		return ErrNotLastQuestion
	}
	s.setComplete(true)
	return nil
}

// discardFollowUp removes all follow-up artifacts for a question: the
// cached entry, any follow-up answer, and the requirement flag.
func (s *Session) discardFollowUp(index int) {
	delete(s.followUps, index)
	delete(s.followUpResponses, index)
	delete(s.required, index)
}
