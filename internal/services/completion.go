package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"qurba-backend/internal/grading"
	"qurba-backend/internal/models"
)

// Complete records that a learner finished a material. Forms and quizzes are
// stored first and the completion marker second; a failure between the two
// is reported as PartiallyRecordedError so the client can retry.
func (s *CourseService) Complete(ctx context.Context, userID, materialID uuid.UUID, req models.CompleteRequest) (*models.CompletionOutcome, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "Account not found")
	}
	if profile.IsBlocked {
		return nil, &ForbiddenError{Code: "ACCOUNT_BLOCKED", Message: "Your account has been blocked. Please contact support."}
	}

	m, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, notFound(err, "Material not found")
	}
	if _, err := s.checkUnlocked(ctx, userID, m); err != nil {
		return nil, err
	}

	content, err := m.Content()
	if err != nil {
		log.Printf("course: material %s is misconfigured: %v", m.ID, err)
		return nil, errContentUnavailable
	}

	outcome := &models.CompletionOutcome{MaterialID: m.ID}
	submissionID := ""

	switch c := content.(type) {
	case models.FormContent:
		id, err := s.submitForm(ctx, userID, m.ID, c, req)
		if err != nil {
			return nil, err
		}
		submissionID = id
	case models.QuizContent:
		id, result, err := s.submitQuiz(ctx, userID, m.ID, c, req)
		if err != nil {
			return nil, err
		}
		submissionID = id
		outcome.Score = &result.Score
		outcome.MaxScore = &result.MaxScore
		outcome.Correct = result.Correct
	case models.MediaContent, models.LinkContent:
	default:
		return nil, fmt.Errorf("unhandled material content %T", content)
	}

	record, err := s.completions.MarkComplete(ctx, userID, m.ID)
	if err != nil {
		if submissionID != "" {
			return nil, &PartiallyRecordedError{SubmissionID: submissionID, Err: err}
		}
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}
	outcome.CompletedAt = record.CompletedAt

	if s.notifier != nil {
		s.notifier.PublishUpdate(ctx, userID, models.WSMessage{
			Type: "progress_update",
			Payload: models.ProgressUpdate{
				MaterialID:  m.ID,
				DayNumber:   m.DayNumber,
				CompletedAt: record.CompletedAt,
			},
		})
		if _, ok := content.(models.QuizContent); ok {
			if err := s.notifier.EnqueueLeaderboardRefresh(ctx, profile.BatchNumber); err != nil {
				log.Printf("course: %v", err)
			}
		}
	}

	return outcome, nil
}

func (s *CourseService) submitForm(ctx context.Context, userID, materialID uuid.UUID, c models.FormContent, req models.CompleteRequest) (string, error) {
	form, err := s.forms.GetByID(ctx, c.FormID)
	if err != nil {
		return "", notFound(err, "Form not found")
	}

	clean, fieldErrs := ValidateResponses(form.Fields, req.Responses)
	if fieldErrs != nil {
		return "", &ValidationError{Fields: fieldErrs}
	}

	sub := &models.FormSubmission{
		UserID:     userID,
		MaterialID: materialID,
		FormID:     form.ID,
		Responses:  clean,
	}
	if err := s.submissions.UpsertForm(ctx, sub); err != nil {
		return "", err
	}
	return sub.ID.String(), nil
}

func (s *CourseService) submitQuiz(ctx context.Context, userID, materialID uuid.UUID, c models.QuizContent, req models.CompleteRequest) (string, grading.Result, error) {
	quiz, err := s.quizzes.GetByID(ctx, c.QuizID)
	if err != nil {
		return "", grading.Result{}, notFound(err, "Quiz not found")
	}

	answers := make(map[string]string, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if a, ok := req.Answers[q.ID]; ok {
			answers[q.ID] = a
		}
	}
	result := grading.Grade(quiz.Questions, answers, quiz.PointsPerQuestion)

	sub := &models.QuizSubmission{
		UserID:     userID,
		MaterialID: materialID,
		QuizID:     quiz.ID,
		Answers:    answers,
		Score:      result.Score,
		MaxScore:   result.MaxScore,
	}
	if err := s.submissions.RecordQuiz(ctx, sub); err != nil {
		return "", grading.Result{}, err
	}

	// sub now holds the first attempt, which is what a retake reports.
	result = grading.Grade(quiz.Questions, sub.Answers, quiz.PointsPerQuestion)
	result.Score, result.MaxScore = sub.Score, sub.MaxScore
	return sub.ID.String(), result, nil
}

