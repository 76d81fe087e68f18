package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkemp/canvass/internal/survey"
)

func chartSnapshot() Snapshot {
	return Snapshot{
		SurveyID: "active",
		Title:    "Onboarding survey",
		Questions: []QuestionInsight{
			{
				Index:    0,
				Question: "How was onboarding?",
				Kind:     survey.KindFreeText,
				Response: "Smooth smooth setup, very smooth setup overall",
			},
			{
				Index:    1,
				Question: "Pick a color",
				Kind:     survey.KindCategorical,
				Choices:  []string{"Red", "Blue", "Green"},
				Response: "Blue",
			},
			{
				Index:    2,
				Question: "Anything else?",
				Kind:     survey.KindFreeText,
			},
		},
	}
}

func TestCompletionSummary(t *testing.T) {
	builder := NewChartBuilder(0)
	chart := builder.CompletionSummary(chartSnapshot())

	assert.Equal(t, ChartBar, chart.Type)
	assert.Equal(t, -1, chart.QuestionIndex)
	assert.Equal(t, []string{"Answered", "Unanswered"}, chart.Labels)
	assert.Equal(t, []float64{2, 1}, chart.Values)
}

func TestQuestionChart(t *testing.T) {
	builder := NewChartBuilder(2)
	snap := chartSnapshot()

	t.Run("categorical distribution marks the recorded choice", func(t *testing.T) {
		chart, err := builder.QuestionChart(snap, 1, "")
		require.NoError(t, err)
		assert.Equal(t, ChartBar, chart.Type)
		assert.Equal(t, "Responses for question 2", chart.Title)
		assert.Equal(t, map[string]float64{"Red": 0, "Blue": 1, "Green": 0}, chart.Series())
	})

	t.Run("free text counts terms capped at max", func(t *testing.T) {
		chart, err := builder.QuestionChart(snap, 0, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"smooth", "setup"}, chart.Labels)
		assert.Equal(t, []float64{3, 2}, chart.Values)
	})

	t.Run("unanswered free text gets a placeholder", func(t *testing.T) {
		chart, err := builder.QuestionChart(snap, 2, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"No response recorded"}, chart.Labels)
	})

	t.Run("unanswered categorical keeps choices plus placeholder", func(t *testing.T) {
		unanswered := snap
		unanswered.Questions = append([]QuestionInsight(nil), snap.Questions...)
		unanswered.Questions[1].Response = ""

		chart, err := builder.QuestionChart(unanswered, 1, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"Red", "Blue", "Green", "No response recorded"}, chart.Labels)
		assert.Equal(t, []float64{0, 0, 0, 1}, chart.Values)
	})

	t.Run("pie refused for free text", func(t *testing.T) {
		_, err := builder.QuestionChart(snap, 0, ChartPie)
		assert.Error(t, err)
	})

	t.Run("pie allowed for categorical", func(t *testing.T) {
		chart, err := builder.QuestionChart(snap, 1, ChartPie)
		require.NoError(t, err)
		assert.Equal(t, ChartPie, chart.Type)
	})

	t.Run("unknown chart type refused", func(t *testing.T) {
		_, err := builder.QuestionChart(snap, 1, ChartType("radar"))
		assert.Error(t, err)
	})

	t.Run("index out of range refused", func(t *testing.T) {
		_, err := builder.QuestionChart(snap, 9, "")
		assert.Error(t, err)
	})
}

func TestAllQuestionCharts(t *testing.T) {
	builder := NewChartBuilder(0)
	charts, err := builder.AllQuestionCharts(chartSnapshot(), "")
	require.NoError(t, err)

	// The unanswered question is skipped.
	require.Len(t, charts, 2)
	assert.Equal(t, 0, charts[0].QuestionIndex)
	assert.Equal(t, 1, charts[1].QuestionIndex)
}
