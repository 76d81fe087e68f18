package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nkemp/canvass/internal/survey"
)

// ChartType identifies the shape of a prepared chart.
type ChartType string

const (
	// ChartBar is a bar chart. The default for every question kind.
	ChartBar ChartType = "bar"

	// ChartPie is a pie chart. Only valid for categorical questions.
	ChartPie ChartType = "pie"
)

// defaultMaxTerms caps how many terms a free-text frequency chart carries.
const defaultMaxTerms = 10

// ChartData is a chart-ready projection of survey responses: parallel
// label/value slices plus enough context to title and caption the chart.
// QuestionIndex is -1 for survey-level charts.
type ChartData struct {
	Type          ChartType
	Labels        []string
	Values        []float64
	Title         string
	QuestionIndex int
	QuestionText  string
	Description   string
}

// Series returns the chart as a label -> value mapping.
func (c ChartData) Series() map[string]float64 {
	series := make(map[string]float64, len(c.Labels))
	for i, label := range c.Labels {
		series[label] = c.Values[i]
	}
	return series
}

// ChartBuilder prepares chart data from a survey snapshot. It is pure
// projection logic; rendering is left to the caller.
type ChartBuilder struct {
	maxTerms int
}

// NewChartBuilder returns a builder. maxTerms caps free-text term
// frequency charts; non-positive values use the default.
func NewChartBuilder(maxTerms int) *ChartBuilder {
	if maxTerms <= 0 {
		maxTerms = defaultMaxTerms
	}
	return &ChartBuilder{maxTerms: maxTerms}
}

// CompletionSummary charts answered against unanswered questions.
func (b *ChartBuilder) CompletionSummary(snap Snapshot) ChartData {
	answered := snap.AnsweredCount()
	unanswered := snap.TotalQuestions() - answered
	if unanswered < 0 {
		unanswered = 0
	}

	return ChartData{
		Type:          ChartBar,
		Labels:        []string{"Answered", "Unanswered"},
		Values:        []float64{float64(answered), float64(unanswered)},
		Title:         "Survey completion overview",
		QuestionIndex: -1,
		Description:   "Shows how many questions include a primary response.",
	}
}

// QuestionChart charts one question's recorded responses. An empty
// chartType picks the default (bar). Pie charts are refused for
// free-text questions.
func (b *ChartBuilder) QuestionChart(snap Snapshot, index int, chartType ChartType) (ChartData, error) {
	if index < 0 || index >= len(snap.Questions) {
		return ChartData{}, fmt.Errorf("question index %d out of range", index)
	}
	q := snap.Questions[index]

	resolved, err := resolveChartType(chartType, q)
	if err != nil {
		return ChartData{}, err
	}

	var labels []string
	var values []float64
	var description string
	if q.Kind == survey.KindCategorical {
		labels, values = categoricalDistribution(q)
		description = "Choice distribution for the recorded response."
	} else {
		labels, values = b.termFrequency(q)
		description = "Most common terms found in the recorded response."
	}

	return ChartData{
		Type:          resolved,
		Labels:        labels,
		Values:        values,
		Title:         fmt.Sprintf("Responses for question %d", q.Index+1),
		QuestionIndex: q.Index,
		QuestionText:  q.Question,
		Description:   description,
	}, nil
}

// AllQuestionCharts charts every question with at least one recorded
// response, primary or follow-up.
func (b *ChartBuilder) AllQuestionCharts(snap Snapshot, chartType ChartType) ([]ChartData, error) {
	var charts []ChartData
	for _, q := range snap.Questions {
		if !q.HasPrimaryResponse() && !q.HasFollowUpResponse() {
			continue
		}
		chart, err := b.QuestionChart(snap, q.Index, chartType)
		if err != nil {
			return nil, err
		}
		charts = append(charts, chart)
	}
	return charts, nil
}

func resolveChartType(chartType ChartType, q QuestionInsight) (ChartType, error) {
	switch chartType {
	case "":
		return ChartBar, nil
	case ChartBar:
		return ChartBar, nil
	case ChartPie:
		if q.Kind != survey.KindCategorical {
			return "", fmt.Errorf("pie charts are only supported for categorical questions")
		}
		return ChartPie, nil
	default:
		return "", fmt.Errorf("unknown chart type %q", chartType)
	}
}

// categoricalDistribution marks the recorded choice with 1 and the rest
// with 0. A missing response gets its own "No response recorded" slot.
func categoricalDistribution(q QuestionInsight) ([]string, []float64) {
	recorded := strings.TrimSpace(q.Response)

	var labels []string
	var values []float64
	for _, choice := range q.Choices {
		labels = append(labels, choice)
		if choice == recorded {
			values = append(values, 1)
		} else {
			values = append(values, 0)
		}
	}

	if len(labels) == 0 {
		labels = append(labels, "No choices configured")
		values = append(values, 0)
	}
	if recorded == "" {
		labels = append(labels, "No response recorded")
		values = append(values, 1)
	}

	return labels, values
}

var termPattern = regexp.MustCompile(`[a-z0-9']+`)

// termFrequency counts the most common terms in a free-text response,
// capped at maxTerms. Ties keep first-occurrence order.
func (b *ChartBuilder) termFrequency(q QuestionInsight) ([]string, []float64) {
	response := strings.TrimSpace(q.Response)
	if response == "" {
		return []string{"No response recorded"}, []float64{1}
	}

	tokens := termPattern.FindAllString(strings.ToLower(response), -1)
	if len(tokens) == 0 {
		return []string{"No tokens extracted"}, []float64{1}
	}

	counts := make(map[string]int, len(tokens))
	firstSeen := make(map[string]int, len(tokens))
	var terms []string
	for i, token := range tokens {
		if _, ok := counts[token]; !ok {
			firstSeen[token] = i
			terms = append(terms, token)
		}
		counts[token]++
	}

	sort.SliceStable(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return firstSeen[terms[i]] < firstSeen[terms[j]]
	})

	if len(terms) > b.maxTerms {
		terms = terms[:b.maxTerms]
	}

	values := make([]float64, len(terms))
	for i, term := range terms {
		values[i] = float64(counts[term])
	}
	return terms, values
}
