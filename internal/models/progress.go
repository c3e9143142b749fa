package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CompletionRecord struct {
	UserID      uuid.UUID `json:"user_id"`
	MaterialID  uuid.UUID `json:"material_id"`
	CompletedAt time.Time `json:"completed_at"`
}

type CompleteRequest struct {
	Responses map[string]json.RawMessage `json:"responses,omitempty"`
	Answers   map[string]string          `json:"answers,omitempty"`
}

type CompletionOutcome struct {
	MaterialID  uuid.UUID       `json:"material_id"`
	CompletedAt time.Time       `json:"completed_at"`
	Score       *int            `json:"score,omitempty"`
	MaxScore    *int            `json:"max_score,omitempty"`
	Correct     map[string]bool `json:"correct,omitempty"`
}

// SubmissionView is what a learner sees when reopening a completed form or quiz.
type SubmissionView struct {
	Kind           string          `json:"kind"`
	Form           *Form           `json:"form,omitempty"`
	FormSubmission *FormSubmission `json:"form_submission,omitempty"`
	Quiz           *Quiz           `json:"quiz,omitempty"`
	QuizSubmission *QuizSubmission `json:"quiz_submission,omitempty"`
	Correct        map[string]bool `json:"correct,omitempty"`
}

type ProgressUpdate struct {
	MaterialID  uuid.UUID `json:"material_id"`
	DayNumber   int       `json:"day_number"`
	CompletedAt time.Time `json:"completed_at"`
}
