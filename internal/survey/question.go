// Package survey defines the immutable survey document model: an ordered
// list of typed questions loaded once at startup and never mutated.
package survey

import (
	"fmt"
	"strings"
)

// Kind identifies how a question expects to be answered.
type Kind string

const (
	// KindCategorical questions offer a fixed set of choices.
	KindCategorical Kind = "categorical"

	// KindFreeText questions accept arbitrary text.
	KindFreeText Kind = "free_text"
)

// Question is a single survey item. Index is the question's stable,
// zero-based position in the document.
type Question struct {
	Index   int      `json:"index"`
	Text    string   `json:"text"`
	Kind    Kind     `json:"kind"`
	Choices []string `json:"choices,omitempty"`
}

// IsFreeText reports whether the question accepts arbitrary text.
func (q Question) IsFreeText() bool {
	return q.Kind == KindFreeText
}

// HasChoice reports whether value is one of the question's choices.
// Always false for free-text questions.
func (q Question) HasChoice(value string) bool {
	for _, choice := range q.Choices {
		if choice == value {
			return true
		}
	}
	return false
}

// Validate enforces the per-question invariants: categorical questions
// carry at least one unique choice, free-text questions carry none.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question %d: text cannot be empty", q.Index)
	}

	switch q.Kind {
	case KindCategorical:
		if len(q.Choices) == 0 {
			return fmt.Errorf("question %d: categorical question must define at least one choice", q.Index)
		}
		seen := make(map[string]struct{}, len(q.Choices))
		for _, choice := range q.Choices {
			if strings.TrimSpace(choice) == "" {
				return fmt.Errorf("question %d: choice cannot be empty", q.Index)
			}
			if _, dup := seen[choice]; dup {
				return fmt.Errorf("question %d: duplicate choice %q", q.Index, choice)
			}
			seen[choice] = struct{}{}
		}
	case KindFreeText:
		if len(q.Choices) > 0 {
			return fmt.Errorf("question %d: free-text question cannot define choices", q.Index)
		}
	default:
		return fmt.Errorf("question %d: unknown kind %q", q.Index, q.Kind)
	}

	return nil
}

// Document is an immutable, ordered set of survey questions.
type Document struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}

// Len returns the number of questions in the document.
func (d *Document) Len() int {
	return len(d.Questions)
}

// Question returns the question at index, or false when out of range.
func (d *Document) Question(index int) (Question, bool) {
	if index < 0 || index >= len(d.Questions) {
		return Question{}, false
	}
	return d.Questions[index], true
}

// Validate checks every question and the index ordering invariant.
func (d *Document) Validate() error {
	for i, q := range d.Questions {
		if q.Index != i {
			return fmt.Errorf("question at position %d has index %d", i, q.Index)
		}
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}
