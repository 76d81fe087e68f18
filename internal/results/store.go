package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nkemp/canvass/internal/analysis"
	"github.com/nkemp/canvass/internal/session"
	"github.com/nkemp/canvass/internal/survey"
)

// ErrNotFound is returned when no record exists for the requested survey.
var ErrNotFound = errors.New("survey results not found")

// StoredFollowUp is the persisted form of one follow-up verdict.
type StoredFollowUp struct {
	SourceAnswer string `json:"source_answer"`
	Text         string `json:"text,omitempty"`
	ShouldAsk    bool   `json:"should_ask"`
	Rationale    string `json:"rationale,omitempty"`
	Source       string `json:"source"`
}

// Record is one completed survey run. Maps are keyed by question index;
// JSON encodes the keys as strings and decoding restores them.
type Record struct {
	SurveyID          string
	Title             string
	Responses         map[int]string
	FollowUps         map[int]StoredFollowUp
	FollowUpResponses map[int]string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewRecord captures a finished session as a persistable record.
func NewRecord(doc *survey.Document, sess *session.Session) *Record {
	followUps := make(map[int]StoredFollowUp)
	for index, entry := range sess.FollowUps() {
		followUps[index] = StoredFollowUp{
			SourceAnswer: entry.SourceAnswer,
			Text:         entry.Text,
			ShouldAsk:    entry.ShouldAsk,
			Rationale:    entry.Rationale,
			Source:       string(entry.Source),
		}
	}

	return &Record{
		SurveyID:          doc.ID,
		Title:             doc.Title,
		Responses:         sess.Responses(),
		FollowUps:         followUps,
		FollowUpResponses: sess.FollowUpResponses(),
	}
}

// Save upserts the record for its survey id. Re-finishing a survey
// replaces the stored results.
func (s *Store) Save(ctx context.Context, record *Record) error {
	if record.SurveyID == "" {
		return fmt.Errorf("survey id cannot be empty")
	}

	responsesJSON, err := json.Marshal(record.Responses)
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}
	followUpsJSON, err := json.Marshal(record.FollowUps)
	if err != nil {
		return fmt.Errorf("marshal follow-ups: %w", err)
	}
	followUpResponsesJSON, err := json.Marshal(record.FollowUpResponses)
	if err != nil {
		return fmt.Errorf("marshal follow-up responses: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO survey_results (
			survey_id, title, responses, follow_ups, follow_up_responses,
			answered_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(survey_id) DO UPDATE SET
			title = excluded.title,
			responses = excluded.responses,
			follow_ups = excluded.follow_ups,
			follow_up_responses = excluded.follow_up_responses,
			answered_count = excluded.answered_count,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		record.SurveyID, record.Title,
		string(responsesJSON), string(followUpsJSON), string(followUpResponsesJSON),
		len(record.Responses), now, now,
	)
	if err != nil {
		return fmt.Errorf("save survey results: %w", err)
	}

	return nil
}

// Load returns the stored record for a survey id.
func (s *Store) Load(ctx context.Context, surveyID string) (*Record, error) {
	query := `
		SELECT survey_id, title, responses, follow_ups, follow_up_responses,
		       created_at, updated_at
		FROM survey_results
		WHERE survey_id = ?
	`
	return s.scanRecord(s.db.QueryRowContext(ctx, query, surveyID))
}

// Latest returns the most recently updated record.
func (s *Store) Latest(ctx context.Context) (*Record, error) {
	query := `
		SELECT survey_id, title, responses, follow_ups, follow_up_responses,
		       created_at, updated_at
		FROM survey_results
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return s.scanRecord(s.db.QueryRowContext(ctx, query))
}

// List returns survey ids ordered newest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT survey_id FROM survey_results ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list survey results: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan survey id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) scanRecord(row *sql.Row) (*Record, error) {
	var record Record
	var title sql.NullString
	var responsesJSON, followUpsJSON, followUpResponsesJSON string

	err := row.Scan(
		&record.SurveyID, &title,
		&responsesJSON, &followUpsJSON, &followUpResponsesJSON,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query survey results: %w", err)
	}

	record.Title = title.String
	if err := json.Unmarshal([]byte(responsesJSON), &record.Responses); err != nil {
		return nil, fmt.Errorf("unmarshal responses: %w", err)
	}
	if err := json.Unmarshal([]byte(followUpsJSON), &record.FollowUps); err != nil {
		return nil, fmt.Errorf("unmarshal follow-ups: %w", err)
	}
	if err := json.Unmarshal([]byte(followUpResponsesJSON), &record.FollowUpResponses); err != nil {
		return nil, fmt.Errorf("unmarshal follow-up responses: %w", err)
	}

	return &record, nil
}

// Snapshot rebuilds an analysis snapshot from a stored record and the
// survey document it was captured for, so analysis can run against saved
// results without a live session.
func (r *Record) Snapshot(doc *survey.Document) analysis.Snapshot {
	snap := analysis.Snapshot{
		SurveyID: r.SurveyID,
		Title:    r.Title,
	}

	snap.Questions = make([]analysis.QuestionInsight, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		insight := analysis.QuestionInsight{
			Index:    q.Index,
			Question: q.Text,
			Kind:     q.Kind,
			Response: r.Responses[q.Index],
		}
		if len(q.Choices) > 0 {
			insight.Choices = append([]string(nil), q.Choices...)
		}
		if entry, ok := r.FollowUps[q.Index]; ok {
			insight.FollowUpQuestion = entry.Text
		}
		insight.FollowUpResponse = r.FollowUpResponses[q.Index]

		snap.Questions = append(snap.Questions, insight)
	}

	return snap
}
