package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nkemp/canvass/internal/llm"
	"github.com/nkemp/canvass/pkg/types"
)

// Fixed responses for states where no model call is useful.
const (
	msgNoQuestions = "No survey questions are available to analyse."
	msgNoResponses = "No responses have been recorded for this survey yet."
	msgNoAnswer    = "I couldn't find relevant information to answer that question."
)

const analysisSystemPrompt = `You are a survey analysis assistant. You will receive a collection of survey questions
along with the participant's primary answers and optional follow-up discussions that are not necessarily the same for each survey.
Use only this information to answer the user's question. Do not invent data and make clear
when the available responses are insufficient.`

// Agent answers analyst questions grounded in a survey snapshot. Errors
// from the provider are absorbed into an apology message rather than
// propagated; analysis is best-effort and never fails the caller.
type Agent struct {
	provider llm.Provider
	progress types.ProgressFunc
}

// NewAgent creates an analysis agent backed by the given provider. The
// optional progress callback receives ordered stage notifications; pass
// nil to disable them.
func NewAgent(provider llm.Provider, progress types.ProgressFunc) *Agent {
	return &Agent{provider: provider, progress: progress}
}

// Answer responds to a free-form question about the snapshot. The query
// must be non-empty after trimming. Short circuits (no questions, no
// responses) return their fixed message without a provider call.
func (a *Agent) Answer(ctx context.Context, query string, snap Snapshot) (string, error) {
	cleaned := strings.TrimSpace(query)
	if cleaned == "" {
		return "", fmt.Errorf("%w: query must be a non-empty string", types.ErrValidation)
	}

	a.notify(types.StageFetching)

	if snap.TotalQuestions() == 0 {
		a.notify(types.StageCompleted)
		return msgNoQuestions, nil
	}
	if snap.AnsweredCount() == 0 {
		a.notify(types.StageCompleted)
		return msgNoResponses, nil
	}

	a.notify(types.StageReading)
	prompt := buildPrompt(cleaned, snap)

	a.notify(types.StageThinking)
	resp, err := a.provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: analysisSystemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
		Temperature:  0.3,
	})
	if err != nil {
		log.Warn().Err(err).Str("provider", a.provider.Name()).Msg("analysis call failed")
		a.notify(types.StageCompleted)
		return fmt.Sprintf("I couldn't generate an answer right now: %v", err), nil
	}

	a.notify(types.StageCompleted)

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return msgNoAnswer, nil
	}
	return answer, nil
}

func (a *Agent) notify(stage types.ProgressStage) {
	if a.progress != nil {
		a.progress(stage)
	}
}

// buildPrompt renders the snapshot and query into the grounded analysis
// prompt. Only questions with at least one recorded answer contribute
// context.
func buildPrompt(query string, snap Snapshot) string {
	var sections []string
	for _, q := range snap.Questions {
		if q.HasPrimaryResponse() || q.HasFollowUpResponse() {
			sections = append(sections, formatQuestionSection(q))
		}
	}

	contextBlock := "No answered questions."
	if len(sections) > 0 {
		contextBlock = strings.Join(sections, "\n\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Survey overview:\n")
	fmt.Fprintf(&b, "  - Survey id: %s\n", snap.SurveyID)
	fmt.Fprintf(&b, "  - Answered questions: %d / %d\n\n", snap.AnsweredCount(), snap.TotalQuestions())
	fmt.Fprintf(&b, "Survey responses:\n%s\n\n", contextBlock)
	fmt.Fprintf(&b, "User question: %s\n\n", query)
	b.WriteString("The format of the answer should be structured in bullet points and concise")
	return b.String()
}

// formatQuestionSection renders one question's captured context.
func formatQuestionSection(q QuestionInsight) string {
	response := q.Response
	if response == "" {
		response = "No response provided."
	}

	lines := []string{
		fmt.Sprintf("Question %d: %s", q.Index+1, q.Question),
		fmt.Sprintf("Primary answer: %s", response),
	}
	if q.FollowUpQuestion != "" {
		lines = append(lines, fmt.Sprintf("Follow-up question: %s", q.FollowUpQuestion))
		if q.FollowUpResponse != "" {
			lines = append(lines, fmt.Sprintf("Follow-up answer: %s", q.FollowUpResponse))
		} else {
			lines = append(lines, "Follow-up answer: Not provided.")
		}
	} else if q.FollowUpResponse != "" {
		lines = append(lines, fmt.Sprintf("Follow-up answer: %s", q.FollowUpResponse))
	}

	return strings.Join(lines, "\n")
}
