// Package grading scores quiz answers against an answer key.
package grading

import (
	"strings"

	"qurba-backend/internal/models"
)

type Result struct {
	Score    int             `json:"score"`
	MaxScore int             `json:"max_score"`
	Correct  map[string]bool `json:"correct"`
}

// Grade compares trimmed, lower-cased answers with the accepted answers of
// each question. Questions without points use pointsPerQuestion. A question
// whose answer key is empty can never be answered correctly.
func Grade(questions []models.Question, answers map[string]string, pointsPerQuestion int) Result {
	res := Result{Correct: make(map[string]bool, len(questions))}

	for _, q := range questions {
		points := QuestionPoints(q, pointsPerQuestion)
		res.MaxScore += points

		ok := IsCorrect(q, answers[q.ID])
		res.Correct[q.ID] = ok
		if ok {
			res.Score += points
		}
	}

	return res
}

func QuestionPoints(q models.Question, pointsPerQuestion int) int {
	if q.Points > 0 {
		return q.Points
	}
	return pointsPerQuestion
}

func IsCorrect(q models.Question, answer string) bool {
	given := normalize(answer)
	for _, accepted := range q.CorrectAnswer {
		want := normalize(accepted)
		if want == "" {
			continue
		}
		if given == want {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
