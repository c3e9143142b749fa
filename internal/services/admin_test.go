package services

import (
	"errors"
	"strings"
	"testing"

	"qurba-backend/internal/models"
)

func TestParseBulkWhitelist(t *testing.T) {
	text := "9876543210\n+91 91234 56789; Mentor@Example.com,12345\n\n9876543210"

	entries, skipped := ParseBulkWhitelist(text, 2)

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].PhoneNumber == nil || *entries[0].PhoneNumber != "9876543210" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].PhoneNumber == nil || *entries[1].PhoneNumber != "919123456789" {
		t.Fatalf("expected normalized phone, got %+v", entries[1])
	}
	if entries[2].Email == nil || *entries[2].Email != "mentor@example.com" {
		t.Fatalf("expected lowercased email, got %+v", entries[2])
	}
	for _, e := range entries {
		if e.BatchNumber != 2 {
			t.Fatalf("expected batch 2, got %d", e.BatchNumber)
		}
	}
	if len(skipped) != 1 || skipped[0] != "12345" {
		t.Fatalf("expected 12345 to be skipped, got %v", skipped)
	}
}

func TestCheckMaterialRefs(t *testing.T) {
	url := "https://example.com/a.png"

	if errs := CheckMaterialRefs(models.MaterialRequest{Kind: models.MaterialForm}); errs["form_id"] == "" {
		t.Fatalf("expected form_id error, got %v", errs)
	}
	if errs := CheckMaterialRefs(models.MaterialRequest{Kind: models.MaterialQuiz}); errs["quiz_id"] == "" {
		t.Fatalf("expected quiz_id error, got %v", errs)
	}
	if errs := CheckMaterialRefs(models.MaterialRequest{Kind: models.MaterialImage}); errs["media_url"] == "" {
		t.Fatalf("expected media_url error, got %v", errs)
	}
	if errs := CheckMaterialRefs(models.MaterialRequest{Kind: models.MaterialImage, MediaURL: &url}); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestQuizFromRequest(t *testing.T) {
	req := models.QuizRequest{
		Name: "Day 1 check",
		Questions: []models.Question{
			{ID: "q1", Type: models.QuestionMCQ, Question: "Pick one", Options: []string{"a"}},
			{ID: "q1", Type: models.QuestionShortAnswer, Question: "Explain"},
		},
	}

	_, err := quizFromRequest(req)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, key := range []string{"questions[0].options", "questions[0].correctAnswer", "questions[1].id"} {
		if _, ok := verr.Fields[key]; !ok {
			t.Errorf("expected error on %s, got %v", key, verr.Fields)
		}
	}
}

func TestQuizFromRequest_DefaultsPoints(t *testing.T) {
	req := models.QuizRequest{
		Name: "Day 1 check",
		Questions: []models.Question{
			{ID: "q1", Type: models.QuestionTrueFalse, Question: "Water is wet", CorrectAnswer: models.AnswerKey{"True"}},
		},
	}

	quiz, err := quizFromRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quiz.PointsPerQuestion != 1 {
		t.Fatalf("expected default of 1 point per question, got %d", quiz.PointsPerQuestion)
	}
}

func TestFormFromRequest_RequiresLabels(t *testing.T) {
	_, err := formFromRequest(models.FormRequest{
		Name:   "Feedback",
		Fields: []models.FieldSpec{{ID: "f1", Type: models.FieldShortText, Label: " "}},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["fields[0].label"]; !ok {
		t.Fatalf("expected label error, got %v", verr.Fields)
	}

	_, err = formFromRequest(models.FormRequest{Name: "Empty"})
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for a form without fields, got %v", err)
	}
}

func TestSlideFromRequest_Defaults(t *testing.T) {
	slide := slideFromRequest(models.HeroSlideRequest{MediaType: "image", MediaURL: " https://example.com/a.png "})

	if slide.DisplayDuration != 5 {
		t.Fatalf("expected default duration 5, got %d", slide.DisplayDuration)
	}
	if !slide.IsActive {
		t.Fatalf("expected new slides to be active")
	}
	if slide.MediaURL != "https://example.com/a.png" {
		t.Fatalf("expected trimmed URL, got %q", slide.MediaURL)
	}
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("+91 75938 79279", "I need help with Day 3 & the quiz")
	if !strings.HasPrefix(link, "https://wa.me/917593879279?text=") {
		t.Fatalf("unexpected link %q", link)
	}
	if !strings.Contains(link, "Day+3+%26+the+quiz") {
		t.Fatalf("expected message to be query-escaped, got %q", link)
	}

	if got := WhatsAppLink("917593879279", ""); !strings.Contains(got, "text=Hi") {
		t.Fatalf("expected default message, got %q", got)
	}
}

func TestParseTotalDays(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"45", 45},
		{"abc", 30},
		{"0", 30},
		{"-3", 30},
	}
	for _, tc := range tests {
		if got := parseTotalDays(tc.in, 30); got != tc.want {
			t.Errorf("parseTotalDays(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
