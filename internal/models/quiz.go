package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	QuestionMCQ         = "mcq"
	QuestionTrueFalse   = "true_false"
	QuestionShortAnswer = "short_answer"
)

// AnswerKey holds the accepted answers of a question. On the wire it is
// either a single string or an array of strings.
type AnswerKey []string

func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*k = AnswerKey{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*k = AnswerKey(many)
	return nil
}

func (k AnswerKey) MarshalJSON() ([]byte, error) {
	if len(k) == 1 {
		return json.Marshal(k[0])
	}
	return json.Marshal([]string(k))
}

type Question struct {
	ID            string    `json:"id" validate:"notblank"`
	Type          string    `json:"type" validate:"required,oneof=mcq true_false short_answer"`
	Question      string    `json:"question" validate:"notblank"`
	Options       []string  `json:"options,omitempty"`
	CorrectAnswer AnswerKey `json:"correctAnswer"`
	Points        int       `json:"points,omitempty" validate:"min=0"`
}

type Quiz struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Description       *string    `json:"description"`
	PointsPerQuestion int        `json:"points_per_question"`
	Questions         []Question `json:"questions"`
	CreatedBy         *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type QuizRequest struct {
	Name              string     `json:"name" validate:"notblank"`
	Description       *string    `json:"description"`
	PointsPerQuestion int        `json:"points_per_question" validate:"min=1"`
	Questions         []Question `json:"questions" validate:"min=1,dive"`
}

// PublicQuestion is a question with its answer key removed.
type PublicQuestion struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Points   int      `json:"points"`
}

type PublicQuiz struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	Description       *string          `json:"description"`
	PointsPerQuestion int              `json:"points_per_question"`
	Questions         []PublicQuestion `json:"questions"`
}

func (q *Quiz) Public() *PublicQuiz {
	out := &PublicQuiz{
		ID:                q.ID,
		Name:              q.Name,
		Description:       q.Description,
		PointsPerQuestion: q.PointsPerQuestion,
		Questions:         make([]PublicQuestion, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		points := question.Points
		if points <= 0 {
			points = q.PointsPerQuestion
		}
		out.Questions = append(out.Questions, PublicQuestion{
			ID:       question.ID,
			Type:     question.Type,
			Question: question.Question,
			Options:  question.Options,
			Points:   points,
		})
	}
	return out
}

type QuizSubmission struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	MaterialID  uuid.UUID         `json:"material_id"`
	QuizID      uuid.UUID         `json:"quiz_id"`
	Answers     map[string]string `json:"answers"`
	Score       int               `json:"score"`
	MaxScore    int               `json:"max_score"`
	SubmittedAt time.Time         `json:"submitted_at"`
}
