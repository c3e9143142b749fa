package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"qurba-backend/internal/models"
	"qurba-backend/internal/repository"
	"qurba-backend/internal/validation"
)

const defaultSupportMessage = "Hi, I need help with the course."

// PublicService backs the unauthenticated landing page: course applications,
// hero slides and the support link.
type PublicService struct {
	applications  *repository.ApplicationRepo
	slides        *repository.HeroRepo
	supportNumber string
}

func NewPublicService(applications *repository.ApplicationRepo, slides *repository.HeroRepo, supportNumber string) *PublicService {
	return &PublicService{applications: applications, slides: slides, supportNumber: supportNumber}
}

func (s *PublicService) Apply(ctx context.Context, req models.ApplicationRequest) (*models.Application, error) {
	fields := validation.Struct(req)
	if fields == nil && CountDigits(req.WhatsAppNumber) < 10 {
		fields = map[string]string{"whatsapp_number": "Enter a valid WhatsApp number"}
	}
	if fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	app := &models.Application{
		FullName:       strings.TrimSpace(req.FullName),
		Place:          strings.TrimSpace(req.Place),
		Gender:         req.Gender,
		Age:            req.Age,
		WhatsAppNumber: NormalizePhone(req.WhatsAppNumber),
		ScreenshotURL:  req.ScreenshotURL,
	}
	if code := strings.TrimSpace(req.ReferredByCode); code != "" {
		code = strings.ToUpper(code)
		app.ReferredByCode = &code
	}

	if err := s.applications.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}
	return app, nil
}

func (s *PublicService) ActiveSlides(ctx context.Context) ([]*models.HeroSlide, error) {
	return s.slides.List(ctx, true)
}

func (s *PublicService) SupportLink(message string) string {
	return WhatsAppLink(s.supportNumber, message)
}

// WhatsAppLink builds a wa.me link with a prefilled message.
func WhatsAppLink(number, message string) string {
	if strings.TrimSpace(message) == "" {
		message = defaultSupportMessage
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", NormalizePhone(number), url.QueryEscape(message))
}
