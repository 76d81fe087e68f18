// Package followup decides whether a free-text survey answer warrants a
// probing follow-up question, and produces that question. It wraps a
// single unreliable LLM call; callers convert failures into the
// deterministic fallback so the survey is never blocked by the provider.
package followup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nkemp/canvass/internal/llm"
	"github.com/nkemp/canvass/pkg/types"
)

// Decision is the structured verdict returned by the decision model.
type Decision struct {
	// ShouldAsk reports whether the respondent should be asked a follow-up.
	ShouldAsk bool `json:"should_ask"`

	// FollowUpQuestion is the follow-up text when ShouldAsk is true.
	FollowUpQuestion string `json:"follow_up_question,omitempty"`

	// Rationale is the model's short reasoning for the recommendation.
	Rationale string `json:"rationale,omitempty"`
}

const decisionInstructions = `You are a professional survey assistant tasked with judging whether a follow-up question is needed.
Consider the original survey question and the respondent's answer.

- Return "should_ask": true when you need more detail to understand the answer.
  Include a concise "follow_up_question" that invites elaboration.
- Return "should_ask": false when the answer is already specific enough or a follow-up question would not make sense.
  Set "follow_up_question" to null in that case.

Avoid repeating the original question verbatim and keep follow-up questions single-sentence and neutral.

Respond with a single JSON object and nothing else:
{"should_ask": <bool>, "follow_up_question": <string or null>, "rationale": <string>}`

// Service runs the follow-up decision against an injected LLM provider.
// One attempt per call; no retry.
type Service struct {
	provider llm.Provider
}

// NewService creates a decision service backed by the given provider.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider}
}

// Decide asks the model whether answerText to questionText needs a
// follow-up. Both arguments must be non-empty after trimming. Provider
// failures are returned to the caller, who applies the fallback policy.
func (s *Service) Decide(ctx context.Context, questionText, answerText string) (Decision, error) {
	question := strings.TrimSpace(questionText)
	answer := strings.TrimSpace(answerText)
	if question == "" || answer == "" {
		return Decision{}, fmt.Errorf("%w: both question and answer must be provided", types.ErrValidation)
	}

	prompt := fmt.Sprintf("Survey question: %s\nRespondent answer: %s\n\nProvide your recommendation.", question, answer)

	resp, err := s.provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: decisionInstructions,
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
		Temperature:  0.2,
	})
	if err != nil {
		return Decision{}, fmt.Errorf("follow-up decision call failed: %w", err)
	}

	decision, err := parseDecision(resp.Content)
	if err != nil {
		log.Warn().Err(err).Str("provider", s.provider.Name()).Msg("malformed follow-up decision output")
		return Decision{}, fmt.Errorf("parse follow-up decision: %w", err)
	}

	return decision, nil
}

// parseDecision extracts the Decision JSON from model output, tolerating
// markdown code fences and surrounding prose.
func parseDecision(content string) (Decision, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Decision{}, fmt.Errorf("empty model output")
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return Decision{}, fmt.Errorf("no JSON object in model output")
	}

	var decision Decision
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &decision); err != nil {
		return Decision{}, fmt.Errorf("decode decision: %w", err)
	}

	decision.FollowUpQuestion = strings.TrimSpace(decision.FollowUpQuestion)
	decision.Rationale = strings.TrimSpace(decision.Rationale)
	return decision, nil
}
