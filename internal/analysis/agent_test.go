package analysis

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkemp/canvass/internal/followup"
	"github.com/nkemp/canvass/internal/llm"
	"github.com/nkemp/canvass/internal/session"
	"github.com/nkemp/canvass/internal/survey"
	"github.com/nkemp/canvass/pkg/types"
)

type stubProvider struct {
	content    string
	err        error
	calls      atomic.Int64
	lastPrompt string
}

func (p *stubProvider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	p.calls.Add(1)
	p.lastPrompt = req.Messages[len(req.Messages)-1].Content
	if p.err != nil {
		return nil, p.err
	}
	return &llm.ChatResponse{Content: p.content, Model: "stub"}, nil
}

func (p *stubProvider) Name() string    { return "stub" }
func (p *stubProvider) Available() bool { return true }

func testDocument(t *testing.T) *survey.Document {
	t.Helper()
	return &survey.Document{
		ID:    "active",
		Title: "Onboarding survey",
		Questions: []survey.Question{
			{Index: 0, Text: "How was onboarding?", Kind: survey.KindFreeText},
			{Index: 1, Text: "Pick a color", Kind: survey.KindCategorical, Choices: []string{"Red", "Blue"}},
			{Index: 2, Text: "Anything else?", Kind: survey.KindFreeText},
		},
	}
}

func TestBuildSnapshot(t *testing.T) {
	doc := testDocument(t)
	sess := session.New()

	q0 := doc.Questions[0]
	require.True(t, sess.ApplyAnswer(q0, "  Smooth overall.  "))
	require.NoError(t, sess.BeginGeneration(0))
	sess.ApplyDecision(q0, "Smooth overall.", followup.Decision{ShouldAsk: true, FollowUpQuestion: "What stood out?"}, nil)
	sess.MarkFollowUpDisplayed(0)
	sess.ApplyFollowUpAnswer(0, "The checklist.")
	sess.ApplyAnswer(doc.Questions[1], "Red")

	snap := BuildSnapshot(doc, sess)

	assert.Equal(t, "active", snap.SurveyID)
	assert.Equal(t, 3, snap.TotalQuestions())
	assert.Equal(t, 2, snap.AnsweredCount())

	first := snap.Questions[0]
	assert.Equal(t, "Smooth overall.", first.Response)
	assert.Equal(t, "What stood out?", first.FollowUpQuestion)
	assert.Equal(t, "The checklist.", first.FollowUpResponse)
	assert.True(t, first.HasPrimaryResponse())
	assert.True(t, first.HasFollowUpResponse())

	assert.Equal(t, "Red", snap.Questions[1].Response)
	assert.Equal(t, []string{"Red", "Blue"}, snap.Questions[1].Choices)
	assert.False(t, snap.Questions[2].HasPrimaryResponse())

	// The snapshot is detached: later session edits do not leak in.
	sess.ApplyAnswer(q0, "Changed my mind")
	assert.Equal(t, "Smooth overall.", snap.Questions[0].Response)
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty query", func(t *testing.T) {
		provider := &stubProvider{}
		agent := NewAgent(provider, nil)

		_, err := agent.Answer(ctx, "   ", Snapshot{})
		require.ErrorIs(t, err, types.ErrValidation)
		assert.EqualValues(t, 0, provider.calls.Load())
	})

	t.Run("short-circuits when no questions exist", func(t *testing.T) {
		provider := &stubProvider{}
		agent := NewAgent(provider, nil)

		got, err := agent.Answer(ctx, "What did people say?", Snapshot{SurveyID: "active"})
		require.NoError(t, err)
		assert.Equal(t, "No survey questions are available to analyse.", got)
		assert.EqualValues(t, 0, provider.calls.Load())
	})

	t.Run("short-circuits when nothing is answered", func(t *testing.T) {
		provider := &stubProvider{}
		agent := NewAgent(provider, nil)
		snap := BuildSnapshot(testDocument(t), session.New())

		got, err := agent.Answer(ctx, "What did people say?", snap)
		require.NoError(t, err)
		assert.Equal(t, "No responses have been recorded for this survey yet.", got)
		assert.EqualValues(t, 0, provider.calls.Load())
	})

	t.Run("grounds the prompt in recorded responses only", func(t *testing.T) {
		provider := &stubProvider{content: "- Onboarding went well"}
		agent := NewAgent(provider, nil)

		doc := testDocument(t)
		sess := session.New()
		sess.ApplyAnswer(doc.Questions[1], "Blue")
		snap := BuildSnapshot(doc, sess)

		got, err := agent.Answer(ctx, "Which color won?", snap)
		require.NoError(t, err)
		assert.Equal(t, "- Onboarding went well", got)

		assert.Contains(t, provider.lastPrompt, "Question 2: Pick a color")
		assert.Contains(t, provider.lastPrompt, "Primary answer: Blue")
		assert.Contains(t, provider.lastPrompt, "Answered questions: 1 / 3")
		assert.Contains(t, provider.lastPrompt, "User question: Which color won?")
		assert.NotContains(t, provider.lastPrompt, "How was onboarding?",
			"unanswered questions contribute no context")
	})

	t.Run("absorbs provider failure into apology", func(t *testing.T) {
		provider := &stubProvider{err: errors.New("connection refused")}
		agent := NewAgent(provider, nil)

		doc := testDocument(t)
		sess := session.New()
		sess.ApplyAnswer(doc.Questions[1], "Red")

		got, err := agent.Answer(ctx, "Anything?", BuildSnapshot(doc, sess))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, "I couldn't generate an answer right now:"))
		assert.Contains(t, got, "connection refused")
	})

	t.Run("replaces blank model output with fixed message", func(t *testing.T) {
		provider := &stubProvider{content: "   \n  "}
		agent := NewAgent(provider, nil)

		doc := testDocument(t)
		sess := session.New()
		sess.ApplyAnswer(doc.Questions[1], "Red")

		got, err := agent.Answer(ctx, "Anything?", BuildSnapshot(doc, sess))
		require.NoError(t, err)
		assert.Equal(t, "I couldn't find relevant information to answer that question.", got)
	})

	t.Run("reports ordered progress stages", func(t *testing.T) {
		provider := &stubProvider{content: "- ok"}
		var stages []types.ProgressStage
		agent := NewAgent(provider, func(stage types.ProgressStage) {
			stages = append(stages, stage)
		})

		doc := testDocument(t)
		sess := session.New()
		sess.ApplyAnswer(doc.Questions[1], "Red")

		_, err := agent.Answer(ctx, "Anything?", BuildSnapshot(doc, sess))
		require.NoError(t, err)
		assert.Equal(t, []types.ProgressStage{
			types.StageFetching,
			types.StageReading,
			types.StageThinking,
			types.StageCompleted,
		}, stages)
	})

	t.Run("short circuits still complete the progress sequence", func(t *testing.T) {
		var stages []types.ProgressStage
		agent := NewAgent(&stubProvider{}, func(stage types.ProgressStage) {
			stages = append(stages, stage)
		})

		_, err := agent.Answer(ctx, "Anything?", Snapshot{})
		require.NoError(t, err)
		assert.Equal(t, []types.ProgressStage{types.StageFetching, types.StageCompleted}, stages)
	})
}
