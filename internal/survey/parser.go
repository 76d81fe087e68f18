package survey

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ParseDocument reads a survey definition from r. The format is
// line-oriented:
//
//	# comment lines and blank lines are ignored
//	What did you think of the onboarding flow?
//	What is your favourite colour? | Red, Blue, Green
//
// A bare line is a free-text question. A line with a "|" separator is a
// categorical question whose choices follow as a comma-separated list.
func ParseDocument(r io.Reader, title string) (*Document, error) {
	doc := &Document{
		ID:    uuid.NewString(),
		Title: title,
	}

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		question, err := parseLine(line, lineno)
		if err != nil {
			return nil, err
		}
		question.Index = len(doc.Questions)
		doc.Questions = append(doc.Questions, question)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read survey: %w", err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// LoadFile parses a survey document from a file on disk. The file's base
// name (without extension) becomes the document title.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open survey file: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))

	doc, err := ParseDocument(f, title)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func parseLine(line string, lineno int) (Question, error) {
	text, choicesPart, hasChoices := strings.Cut(line, "|")
	text = strings.TrimSpace(text)
	if text == "" {
		return Question{}, fmt.Errorf("line %d: question text cannot be empty", lineno)
	}

	if !hasChoices {
		return Question{Text: text, Kind: KindFreeText}, nil
	}

	var choices []string
	for _, raw := range strings.Split(choicesPart, ",") {
		if choice := strings.TrimSpace(raw); choice != "" {
			choices = append(choices, choice)
		}
	}
	if len(choices) == 0 {
		return Question{}, fmt.Errorf("line %d: categorical question must define at least one choice", lineno)
	}

	return Question{Text: text, Kind: KindCategorical, Choices: choices}, nil
}
