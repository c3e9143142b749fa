package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"qurba-backend/internal/grading"
	"qurba-backend/internal/models"
	"qurba-backend/internal/progress"
)

type materialStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error)
	ListUpToDay(ctx context.Context, day int) ([]*models.Material, error)
}

type completionStore interface {
	MarkComplete(ctx context.Context, userID, materialID uuid.UUID) (*models.CompletionRecord, error)
	CompletedMaterialIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type submissionStore interface {
	UpsertForm(ctx context.Context, s *models.FormSubmission) error
	RecordQuiz(ctx context.Context, s *models.QuizSubmission) error
	GetForm(ctx context.Context, userID, materialID uuid.UUID) (*models.FormSubmission, error)
	GetFormByID(ctx context.Context, id uuid.UUID) (*models.FormSubmission, error)
	GetQuiz(ctx context.Context, userID, materialID uuid.UUID) (*models.QuizSubmission, error)
	UpdateFormResponses(ctx context.Context, id, userID uuid.UUID, responses map[string]json.RawMessage) error
}

type formStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Form, error)
}

type quizStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
}

type profileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type totalDaysSource interface {
	TotalDays(ctx context.Context) (int, error)
}

// Notifier receives side effects of a recorded completion.
type Notifier interface {
	PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage)
	EnqueueLeaderboardRefresh(ctx context.Context, batch int) error
}

type CourseStores struct {
	Materials   materialStore
	Completions completionStore
	Submissions submissionStore
	Forms       formStore
	Quizzes     quizStore
	Profiles    profileStore
	Settings    totalDaysSource
}

// CourseService serves the learner side of the course: the day grid, day
// contents, gated form and quiz access, and completion recording.
type CourseService struct {
	materials   materialStore
	completions completionStore
	submissions submissionStore
	forms       formStore
	quizzes     quizStore
	profiles    profileStore
	settings    totalDaysSource
	notifier    Notifier
}

func NewCourseService(stores CourseStores, notifier Notifier) *CourseService {
	return &CourseService{
		materials:   stores.Materials,
		completions: stores.Completions,
		submissions: stores.Submissions,
		forms:       stores.Forms,
		quizzes:     stores.Quizzes,
		profiles:    stores.Profiles,
		settings:    stores.Settings,
		notifier:    notifier,
	}
}

type CourseProgress struct {
	Days    []progress.DayProgress `json:"days"`
	Summary progress.Summary       `json:"summary"`
}

var errContentUnavailable = &NotFoundError{Message: "This content is not available"}

func (s *CourseService) Progress(ctx context.Context, userID uuid.UUID) (*CourseProgress, error) {
	totalDays, err := s.settings.TotalDays(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.completedSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	materials, err := s.materials.ListUpToDay(ctx, totalDays)
	if err != nil {
		return nil, err
	}

	days := progress.ComputeDayProgress(totalDays, progress.GroupByDay(materials), completed)
	return &CourseProgress{Days: days, Summary: progress.Summarize(days)}, nil
}

// DayDetail lists a day's materials with per-learner lock state. A locked day
// is reported as forbidden rather than returned empty.
func (s *CourseService) DayDetail(ctx context.Context, userID uuid.UUID, day int) (*models.DayDetail, error) {
	totalDays, err := s.settings.TotalDays(ctx)
	if err != nil {
		return nil, err
	}
	if day < 1 || day > totalDays {
		return nil, &NotFoundError{Message: "Day not found"}
	}

	completed, err := s.completedSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	materials, err := s.materials.ListUpToDay(ctx, day)
	if err != nil {
		return nil, err
	}
	byDay := progress.GroupByDay(materials)
	days := progress.ComputeDayProgress(day, byDay, completed)
	if !days[day-1].IsUnlocked {
		return nil, &ForbiddenError{Code: "DAY_LOCKED", Message: "Complete the previous day to unlock this one"}
	}

	list := byDay[day]
	views := make([]*models.MaterialView, len(list))
	for i, m := range list {
		views[i] = &models.MaterialView{
			Material:    m,
			IsUnlocked:  progress.IsMaterialUnlocked(list, completed, i),
			IsCompleted: completed.Has(m.ID),
		}
	}

	return &models.DayDetail{
		DayNumber:   day,
		Materials:   views,
		IsCompleted: days[day-1].IsCompleted,
	}, nil
}

// FormForMaterial returns the form attached to an unlocked material.
func (s *CourseService) FormForMaterial(ctx context.Context, userID, materialID uuid.UUID) (*models.Form, error) {
	m, err := s.accessibleMaterial(ctx, userID, materialID)
	if err != nil {
		return nil, err
	}
	content, err := m.Content()
	if err != nil {
		return nil, errContentUnavailable
	}
	fc, ok := content.(models.FormContent)
	if !ok {
		return nil, &NotFoundError{Message: "This material has no form"}
	}
	form, err := s.forms.GetByID(ctx, fc.FormID)
	if err != nil {
		return nil, notFound(err, "Form not found")
	}
	return form, nil
}

// QuizForMaterial returns the quiz attached to an unlocked material with the
// answer key removed.
func (s *CourseService) QuizForMaterial(ctx context.Context, userID, materialID uuid.UUID) (*models.PublicQuiz, error) {
	m, err := s.accessibleMaterial(ctx, userID, materialID)
	if err != nil {
		return nil, err
	}
	content, err := m.Content()
	if err != nil {
		return nil, errContentUnavailable
	}
	qc, ok := content.(models.QuizContent)
	if !ok {
		return nil, &NotFoundError{Message: "This material has no quiz"}
	}
	quiz, err := s.quizzes.GetByID(ctx, qc.QuizID)
	if err != nil {
		return nil, notFound(err, "Quiz not found")
	}
	return quiz.Public(), nil
}

// Submission returns the learner's own earlier answers for a form or quiz
// material. Quiz answers are only revealed with their correctness once the
// quiz has been submitted.
func (s *CourseService) Submission(ctx context.Context, userID, materialID uuid.UUID) (*models.SubmissionView, error) {
	m, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, notFound(err, "Material not found")
	}
	content, err := m.Content()
	if err != nil {
		return nil, errContentUnavailable
	}

	switch c := content.(type) {
	case models.FormContent:
		sub, err := s.submissions.GetForm(ctx, userID, materialID)
		if err != nil {
			return nil, notFound(err, "No submission yet")
		}
		form, err := s.forms.GetByID(ctx, c.FormID)
		if err != nil {
			return nil, notFound(err, "Form not found")
		}
		return &models.SubmissionView{Kind: models.MaterialForm, Form: form, FormSubmission: sub}, nil
	case models.QuizContent:
		sub, err := s.submissions.GetQuiz(ctx, userID, materialID)
		if err != nil {
			return nil, notFound(err, "No submission yet")
		}
		quiz, err := s.quizzes.GetByID(ctx, c.QuizID)
		if err != nil {
			return nil, notFound(err, "Quiz not found")
		}
		result := grading.Grade(quiz.Questions, sub.Answers, quiz.PointsPerQuestion)
		return &models.SubmissionView{Kind: models.MaterialQuiz, Quiz: quiz, QuizSubmission: sub, Correct: result.Correct}, nil
	default:
		return nil, &NotFoundError{Message: "This material has no submission"}
	}
}

// EditFormResponses lets a learner correct their own form answers. The
// responses are validated against the form exactly like a first submission.
func (s *CourseService) EditFormResponses(ctx context.Context, userID, submissionID uuid.UUID, responses map[string]json.RawMessage) (*models.FormSubmission, error) {
	sub, err := s.submissions.GetFormByID(ctx, submissionID)
	if err != nil {
		return nil, notFound(err, "Submission not found")
	}
	if sub.UserID != userID {
		return nil, &NotFoundError{Message: "Submission not found"}
	}

	form, err := s.forms.GetByID(ctx, sub.FormID)
	if err != nil {
		return nil, notFound(err, "Form not found")
	}
	clean, fieldErrs := ValidateResponses(form.Fields, responses)
	if fieldErrs != nil {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	if err := s.submissions.UpdateFormResponses(ctx, submissionID, userID, clean); err != nil {
		return nil, notFound(err, "Submission not found")
	}
	sub.Responses = clean
	return sub, nil
}

func (s *CourseService) completedSet(ctx context.Context, userID uuid.UUID) (progress.Set, error) {
	ids, err := s.completions.CompletedMaterialIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return progress.NewSet(ids...), nil
}

func (s *CourseService) accessibleMaterial(ctx context.Context, userID, materialID uuid.UUID) (*models.Material, error) {
	m, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, notFound(err, "Material not found")
	}
	if _, err := s.checkUnlocked(ctx, userID, m); err != nil {
		return nil, err
	}
	return m, nil
}

// checkUnlocked enforces day and material order on the server. Completed
// materials always stay reachable.
func (s *CourseService) checkUnlocked(ctx context.Context, userID uuid.UUID, m *models.Material) (progress.Set, error) {
	totalDays, err := s.settings.TotalDays(ctx)
	if err != nil {
		return nil, err
	}
	if m.DayNumber < 1 || m.DayNumber > totalDays {
		return nil, errContentUnavailable
	}

	completed, err := s.completedSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if completed.Has(m.ID) {
		return completed, nil
	}

	materials, err := s.materials.ListUpToDay(ctx, m.DayNumber)
	if err != nil {
		return nil, err
	}
	byDay := progress.GroupByDay(materials)
	days := progress.ComputeDayProgress(m.DayNumber, byDay, completed)
	if !days[m.DayNumber-1].IsUnlocked {
		return nil, &ForbiddenError{Code: "DAY_LOCKED", Message: "Complete the previous day to unlock this one"}
	}

	list := byDay[m.DayNumber]
	for i, item := range list {
		if item.ID != m.ID {
			continue
		}
		if !progress.IsMaterialUnlocked(list, completed, i) {
			return nil, &ForbiddenError{Code: "MATERIAL_LOCKED", Message: "Complete the previous material first"}
		}
		return completed, nil
	}
	return nil, errContentUnavailable
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
