// Package analysis answers free-form questions about a captured survey,
// grounded exclusively in the recorded responses. The agent builds an
// immutable snapshot of the session, renders it into a prompt, and runs a
// single LLM call; fixed messages cover the empty-survey and no-response
// short circuits without touching the provider.
package analysis

import (
	"strings"

	"github.com/nkemp/canvass/internal/session"
	"github.com/nkemp/canvass/internal/survey"
)

// QuestionInsight pairs one survey question with everything the session
// captured for it. Empty strings mean "not recorded".
type QuestionInsight struct {
	Index            int
	Question         string
	Kind             survey.Kind
	Choices          []string
	Response         string
	FollowUpQuestion string
	FollowUpResponse string
}

// HasPrimaryResponse reports whether the main question has an answer.
func (q QuestionInsight) HasPrimaryResponse() bool {
	return strings.TrimSpace(q.Response) != ""
}

// HasFollowUpResponse reports whether a follow-up reply exists.
func (q QuestionInsight) HasFollowUpResponse() bool {
	return strings.TrimSpace(q.FollowUpResponse) != ""
}

// Snapshot is a point-in-time copy of a survey run, detached from the
// live session. Mutating the session after the snapshot is taken never
// changes an analysis already in progress.
type Snapshot struct {
	SurveyID  string
	Title     string
	Questions []QuestionInsight
}

// TotalQuestions returns how many questions the snapshot covers.
func (s Snapshot) TotalQuestions() int { return len(s.Questions) }

// AnsweredCount returns how many questions have a primary response.
func (s Snapshot) AnsweredCount() int {
	count := 0
	for _, q := range s.Questions {
		if q.HasPrimaryResponse() {
			count++
		}
	}
	return count
}

// BuildSnapshot captures the current session state for a document. All
// strings are trimmed and all slices copied, so the snapshot stays valid
// regardless of what the session does next.
func BuildSnapshot(doc *survey.Document, sess *session.Session) Snapshot {
	snap := Snapshot{
		SurveyID: doc.ID,
		Title:    doc.Title,
	}

	responses := sess.Responses()
	followUps := sess.FollowUps()
	followUpResponses := sess.FollowUpResponses()

	snap.Questions = make([]QuestionInsight, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		insight := QuestionInsight{
			Index:    q.Index,
			Question: q.Text,
			Kind:     q.Kind,
			Response: strings.TrimSpace(responses[q.Index]),
		}
		if len(q.Choices) > 0 {
			insight.Choices = append([]string(nil), q.Choices...)
		}
		if entry, ok := followUps[q.Index]; ok {
			insight.FollowUpQuestion = strings.TrimSpace(entry.Text)
		}
		insight.FollowUpResponse = strings.TrimSpace(followUpResponses[q.Index])

		snap.Questions = append(snap.Questions, insight)
	}

	return snap
}
