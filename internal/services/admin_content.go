package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"qurba-backend/internal/models"
	"qurba-backend/internal/repository"
	"qurba-backend/internal/validation"
)

const defaultSlideDuration = 5

type durationProber interface {
	VideoDurationSeconds(ctx context.Context, url string) (int, error)
}

// ContentService manages course materials, forms, quizzes and hero slides
// for admins.
type ContentService struct {
	materials *repository.MaterialRepo
	forms     *repository.FormRepo
	quizzes   *repository.QuizRepo
	slides    *repository.HeroRepo
	videos    durationProber
}

func NewContentService(materials *repository.MaterialRepo, forms *repository.FormRepo, quizzes *repository.QuizRepo, slides *repository.HeroRepo, videos durationProber) *ContentService {
	return &ContentService{
		materials: materials,
		forms:     forms,
		quizzes:   quizzes,
		slides:    slides,
		videos:    videos,
	}
}

// Materials

func (s *ContentService) ListMaterials(ctx context.Context) ([]*models.Material, error) {
	return s.materials.ListAll(ctx)
}

func (s *ContentService) CreateMaterial(ctx context.Context, adminID uuid.UUID, req models.MaterialRequest) (*models.Material, error) {
	m, err := s.materialFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	m.CreatedBy = &adminID
	if err := s.materials.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	return m, nil
}

func (s *ContentService) UpdateMaterial(ctx context.Context, id uuid.UUID, req models.MaterialRequest) (*models.Material, error) {
	m, err := s.materialFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	m.ID = id
	if err := s.materials.Update(ctx, m); err != nil {
		return nil, notFound(err, "Material not found")
	}
	return m, nil
}

func (s *ContentService) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	return notFound(s.materials.Delete(ctx, id), "Material not found")
}

func (s *ContentService) materialFromRequest(ctx context.Context, req models.MaterialRequest) (*models.Material, error) {
	fields := validation.Struct(req)
	if fields == nil {
		fields = map[string]string{}
	}
	for k, v := range CheckMaterialRefs(req) {
		fields[k] = v
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if req.FormID != nil {
		if _, err := s.forms.GetByID(ctx, *req.FormID); err != nil {
			if isNoRows(err) {
				return nil, &ValidationError{Fields: map[string]string{"form_id": "Form does not exist"}}
			}
			return nil, err
		}
	}
	if req.QuizID != nil {
		if _, err := s.quizzes.GetByID(ctx, *req.QuizID); err != nil {
			if isNoRows(err) {
				return nil, &ValidationError{Fields: map[string]string{"quiz_id": "Quiz does not exist"}}
			}
			return nil, err
		}
	}

	m := &models.Material{
		DayNumber:         req.DayNumber,
		Title:             strings.TrimSpace(req.Title),
		Details:           req.Details,
		Kind:              req.Kind,
		MediaURL:          req.MediaURL,
		FormID:            req.FormID,
		QuizID:            req.QuizID,
		MinCompletionTime: req.MinCompletionTime,
		OrderIndex:        req.OrderIndex,
	}

	if m.Kind == models.MaterialVideo && m.MinCompletionTime == 0 && m.MediaURL != nil && IsYouTubeURL(*m.MediaURL) && s.videos != nil {
		secs, err := s.videos.VideoDurationSeconds(ctx, *m.MediaURL)
		if err != nil {
			log.Printf("content: could not read video length for %s: %v", *m.MediaURL, err)
		} else {
			m.MinCompletionTime = secs
		}
	}
	return m, nil
}

// CheckMaterialRefs enforces that form and quiz materials point at their
// content and media materials carry a URL.
func CheckMaterialRefs(req models.MaterialRequest) map[string]string {
	fields := map[string]string{}
	switch req.Kind {
	case models.MaterialForm:
		if req.FormID == nil {
			fields["form_id"] = "Select a form for this material"
		}
	case models.MaterialQuiz:
		if req.QuizID == nil {
			fields["quiz_id"] = "Select a quiz for this material"
		}
	case models.MaterialImage, models.MaterialVideo, models.MaterialAudio, models.MaterialLink:
		if req.MediaURL == nil || strings.TrimSpace(*req.MediaURL) == "" {
			fields["media_url"] = "A URL is required for this kind of material"
		}
	}
	return fields
}

// Forms

func (s *ContentService) ListForms(ctx context.Context) ([]*models.Form, error) {
	return s.forms.List(ctx)
}

func (s *ContentService) GetForm(ctx context.Context, id uuid.UUID) (*models.Form, error) {
	f, err := s.forms.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Form not found")
	}
	return f, nil
}

func (s *ContentService) CreateForm(ctx context.Context, adminID uuid.UUID, req models.FormRequest) (*models.Form, error) {
	f, err := formFromRequest(req)
	if err != nil {
		return nil, err
	}
	f.CreatedBy = &adminID
	if err := s.forms.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}
	return f, nil
}

func (s *ContentService) UpdateForm(ctx context.Context, id uuid.UUID, req models.FormRequest) (*models.Form, error) {
	f, err := formFromRequest(req)
	if err != nil {
		return nil, err
	}
	f.ID = id
	if err := s.forms.Update(ctx, f); err != nil {
		return nil, notFound(err, "Form not found")
	}
	return f, nil
}

func (s *ContentService) DeleteForm(ctx context.Context, id uuid.UUID) error {
	return notFound(s.forms.Delete(ctx, id), "Form not found")
}

func formFromRequest(req models.FormRequest) (*models.Form, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	normalized, fieldErrs := NormalizeFields(req.Fields)
	if fieldErrs != nil {
		return nil, &ValidationError{Fields: fieldErrs}
	}
	return &models.Form{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Fields:      normalized,
	}, nil
}

// Quizzes

func (s *ContentService) ListQuizzes(ctx context.Context) ([]*models.Quiz, error) {
	return s.quizzes.List(ctx)
}

func (s *ContentService) GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	q, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Quiz not found")
	}
	return q, nil
}

func (s *ContentService) CreateQuiz(ctx context.Context, adminID uuid.UUID, req models.QuizRequest) (*models.Quiz, error) {
	q, err := quizFromRequest(req)
	if err != nil {
		return nil, err
	}
	q.CreatedBy = &adminID
	if err := s.quizzes.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}
	return q, nil
}

func (s *ContentService) UpdateQuiz(ctx context.Context, id uuid.UUID, req models.QuizRequest) (*models.Quiz, error) {
	q, err := quizFromRequest(req)
	if err != nil {
		return nil, err
	}
	q.ID = id
	if err := s.quizzes.Update(ctx, q); err != nil {
		return nil, notFound(err, "Quiz not found")
	}
	return q, nil
}

func (s *ContentService) DeleteQuiz(ctx context.Context, id uuid.UUID) error {
	return notFound(s.quizzes.Delete(ctx, id), "Quiz not found")
}

func quizFromRequest(req models.QuizRequest) (*models.Quiz, error) {
	if req.PointsPerQuestion == 0 {
		req.PointsPerQuestion = 1
	}
	fields := validation.Struct(req)
	if fields == nil {
		fields = map[string]string{}
	}

	seen := make(map[string]bool, len(req.Questions))
	for i, q := range req.Questions {
		if seen[q.ID] {
			fields[fieldKey("questions", i, "id")] = "Question ids must be unique"
		}
		seen[q.ID] = true

		switch q.Type {
		case models.QuestionMCQ:
			if len(q.Options) < 2 {
				fields[fieldKey("questions", i, "options")] = "Multiple choice questions need at least two options"
			}
			if len(q.CorrectAnswer) == 0 {
				fields[fieldKey("questions", i, "correctAnswer")] = "Select the correct answer"
			}
		case models.QuestionTrueFalse:
			if len(q.CorrectAnswer) == 0 {
				fields[fieldKey("questions", i, "correctAnswer")] = "Select true or false"
			}
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return &models.Quiz{
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		PointsPerQuestion: req.PointsPerQuestion,
		Questions:         req.Questions,
	}, nil
}

// Hero slides

func (s *ContentService) ListSlides(ctx context.Context, activeOnly bool) ([]*models.HeroSlide, error) {
	return s.slides.List(ctx, activeOnly)
}

// CreateSlide appends a slide after the existing ones unless an explicit
// position is given.
func (s *ContentService) CreateSlide(ctx context.Context, adminID uuid.UUID, req models.HeroSlideRequest) (*models.HeroSlide, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	slide := slideFromRequest(req)
	if req.OrderIndex == nil {
		count, err := s.slides.Count(ctx)
		if err != nil {
			return nil, err
		}
		slide.OrderIndex = count
	}
	slide.CreatedBy = &adminID

	if err := s.slides.Create(ctx, slide); err != nil {
		return nil, fmt.Errorf("failed to create hero slide: %w", err)
	}
	return slide, nil
}

func (s *ContentService) UpdateSlide(ctx context.Context, id uuid.UUID, req models.HeroSlideRequest) (*models.HeroSlide, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	existing, err := s.slides.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Slide not found")
	}

	slide := slideFromRequest(req)
	slide.ID = id
	slide.CreatedBy = existing.CreatedBy
	if req.OrderIndex == nil {
		slide.OrderIndex = existing.OrderIndex
	}
	if req.IsActive == nil {
		slide.IsActive = existing.IsActive
	}

	if err := s.slides.Update(ctx, slide); err != nil {
		return nil, notFound(err, "Slide not found")
	}
	return slide, nil
}

func (s *ContentService) SetSlideActive(ctx context.Context, id uuid.UUID, active bool) error {
	return notFound(s.slides.SetActive(ctx, id, active), "Slide not found")
}

func (s *ContentService) DeleteSlide(ctx context.Context, id uuid.UUID) error {
	return notFound(s.slides.Delete(ctx, id), "Slide not found")
}

func slideFromRequest(req models.HeroSlideRequest) *models.HeroSlide {
	slide := &models.HeroSlide{
		MediaType:       req.MediaType,
		MediaURL:        strings.TrimSpace(req.MediaURL),
		Title:           req.Title,
		Subtitle:        req.Subtitle,
		DisplayDuration: req.DisplayDuration,
		IsActive:        true,
	}
	if slide.DisplayDuration == 0 {
		slide.DisplayDuration = defaultSlideDuration
	}
	if req.IsActive != nil {
		slide.IsActive = *req.IsActive
	}
	if req.OrderIndex != nil {
		slide.OrderIndex = *req.OrderIndex
	}
	return slide
}

func fieldKey(list string, index int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, index, field)
}
