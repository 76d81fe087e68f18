package followup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkemp/canvass/internal/llm"
	"github.com/nkemp/canvass/pkg/types"
)

// stubProvider returns canned content or a canned error, counting calls.
type stubProvider struct {
	content string
	err     error
	calls   atomic.Int64
}

func (p *stubProvider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return &llm.ChatResponse{Content: p.content, Model: "stub"}, nil
}

func (p *stubProvider) Name() string    { return "stub" }
func (p *stubProvider) Available() bool { return true }

func TestDecide(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty question", func(t *testing.T) {
		provider := &stubProvider{}
		svc := NewService(provider)

		_, err := svc.Decide(ctx, "  ", "an answer")
		require.ErrorIs(t, err, types.ErrValidation)
		assert.EqualValues(t, 0, provider.calls.Load())
	})

	t.Run("rejects empty answer", func(t *testing.T) {
		provider := &stubProvider{}
		svc := NewService(provider)

		_, err := svc.Decide(ctx, "A question?", "\n\t")
		require.ErrorIs(t, err, types.ErrValidation)
		assert.EqualValues(t, 0, provider.calls.Load())
	})

	t.Run("returns structured verdict", func(t *testing.T) {
		provider := &stubProvider{content: `{"should_ask": true, "follow_up_question": "Why was that?", "rationale": "vague"}`}
		svc := NewService(provider)

		dec, err := svc.Decide(ctx, "How was it?", "Fine.")
		require.NoError(t, err)
		assert.True(t, dec.ShouldAsk)
		assert.Equal(t, "Why was that?", dec.FollowUpQuestion)
		assert.Equal(t, "vague", dec.Rationale)
		assert.EqualValues(t, 1, provider.calls.Load())
	})

	t.Run("tolerates code-fenced output", func(t *testing.T) {
		provider := &stubProvider{content: "```json\n{\"should_ask\": false, \"follow_up_question\": null}\n```"}
		svc := NewService(provider)

		dec, err := svc.Decide(ctx, "How was it?", "Detailed enough already.")
		require.NoError(t, err)
		assert.False(t, dec.ShouldAsk)
		assert.Empty(t, dec.FollowUpQuestion)
	})

	t.Run("propagates provider failure", func(t *testing.T) {
		boom := errors.New("provider down")
		provider := &stubProvider{err: boom}
		svc := NewService(provider)

		_, err := svc.Decide(ctx, "How was it?", "Fine.")
		require.ErrorIs(t, err, boom)
	})

	t.Run("rejects non-JSON output", func(t *testing.T) {
		provider := &stubProvider{content: "I think you should ask a follow-up."}
		svc := NewService(provider)

		_, err := svc.Decide(ctx, "How was it?", "Fine.")
		require.Error(t, err)
	})

	t.Run("single attempt per call", func(t *testing.T) {
		provider := &stubProvider{err: errors.New("timeout")}
		svc := NewService(provider)

		_, _ = svc.Decide(ctx, "How was it?", "Fine.")
		assert.EqualValues(t, 1, provider.calls.Load())
	})
}

func TestFallbackQuestion(t *testing.T) {
	t.Run("embeds short answers verbatim", func(t *testing.T) {
		answer := "I loved the onboarding flow"
		question := "What did you think of onboarding?"

		got := FallbackQuestion(question, answer)
		assert.Contains(t, got, answer)
		assert.Contains(t, got, question)
		assert.NotContains(t, got, "...")
	})

	t.Run("truncates answers over 120 characters", func(t *testing.T) {
		answer := strings.Repeat("x", 200)

		got := FallbackQuestion("Q?", answer)
		assert.Contains(t, got, strings.Repeat("x", 117)+"...")
		assert.NotContains(t, got, strings.Repeat("x", 118))
	})

	t.Run("keeps answers at exactly the limit", func(t *testing.T) {
		answer := strings.Repeat("y", 120)

		got := FallbackQuestion("Q?", answer)
		assert.Contains(t, got, answer)
		assert.NotContains(t, got, "...")
	})
}

func TestTask(t *testing.T) {
	ctx := context.Background()

	t.Run("join returns the decision", func(t *testing.T) {
		provider := &stubProvider{content: `{"should_ask": true, "follow_up_question": "Tell me more?"}`}
		svc := NewService(provider)

		task := svc.Start(ctx, 3, "How was it?", "Fine.")
		dec, err := task.Wait()
		require.NoError(t, err)
		assert.True(t, dec.ShouldAsk)
		assert.Equal(t, 3, task.Index())
		assert.Equal(t, "Fine.", task.Answer())
		assert.False(t, task.InFlight())
	})

	t.Run("join surfaces the call error", func(t *testing.T) {
		provider := &stubProvider{err: fmt.Errorf("unreachable")}
		svc := NewService(provider)

		task := svc.Start(ctx, 0, "How was it?", "Fine.")
		_, err := task.Wait()
		require.Error(t, err)
	})
}
