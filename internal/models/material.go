package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MaterialImage = "image"
	MaterialVideo = "video"
	MaterialAudio = "audio"
	MaterialLink  = "link"
	MaterialForm  = "form"
	MaterialQuiz  = "quiz"
)

type Material struct {
	ID                uuid.UUID  `json:"id"`
	DayNumber         int        `json:"day_number"`
	Title             string     `json:"title"`
	Details           *string    `json:"details"`
	Kind              string     `json:"kind"`
	MediaURL          *string    `json:"media_url"`
	FormID            *uuid.UUID `json:"form_id"`
	QuizID            *uuid.UUID `json:"quiz_id"`
	MinCompletionTime int        `json:"min_completion_time"`
	OrderIndex        int        `json:"order_index"`
	CreatedBy         *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// MaterialContent is the resolved shape of a material. The set of
// implementations is closed: MediaContent, LinkContent, FormContent, QuizContent.
type MaterialContent interface {
	materialContent()
}

type MediaContent struct {
	Kind string
	URL  string
}

type LinkContent struct {
	URL string
}

type FormContent struct {
	FormID uuid.UUID
}

type QuizContent struct {
	QuizID uuid.UUID
}

func (MediaContent) materialContent() {}
func (LinkContent) materialContent()  {}
func (FormContent) materialContent()  {}
func (QuizContent) materialContent()  {}

// Content resolves the material kind. A quiz or form reference wins over the
// declared kind, so a video with an attached form still completes as a form.
func (m *Material) Content() (MaterialContent, error) {
	if m.QuizID != nil {
		return QuizContent{QuizID: *m.QuizID}, nil
	}
	if m.FormID != nil {
		return FormContent{FormID: *m.FormID}, nil
	}

	url := ""
	if m.MediaURL != nil {
		url = *m.MediaURL
	}

	switch m.Kind {
	case MaterialImage, MaterialVideo, MaterialAudio:
		return MediaContent{Kind: m.Kind, URL: url}, nil
	case MaterialLink:
		return LinkContent{URL: url}, nil
	case MaterialForm:
		return nil, fmt.Errorf("form material %s has no form attached", m.ID)
	case MaterialQuiz:
		return nil, fmt.Errorf("quiz material %s has no quiz attached", m.ID)
	default:
		return nil, fmt.Errorf("unknown material kind %q", m.Kind)
	}
}

type MaterialRequest struct {
	DayNumber         int        `json:"day_number" validate:"min=1"`
	Title             string     `json:"title" validate:"notblank"`
	Details           *string    `json:"details"`
	Kind              string     `json:"kind" validate:"required,oneof=image video audio link form quiz"`
	MediaURL          *string    `json:"media_url" validate:"omitempty,url"`
	FormID            *uuid.UUID `json:"form_id"`
	QuizID            *uuid.UUID `json:"quiz_id"`
	MinCompletionTime int        `json:"min_completion_time" validate:"min=0"`
	OrderIndex        int        `json:"order_index" validate:"min=0"`
}

// MaterialView is a material as seen by one learner inside a day.
type MaterialView struct {
	*Material
	IsUnlocked  bool `json:"is_unlocked"`
	IsCompleted bool `json:"is_completed"`
}

type DayDetail struct {
	DayNumber   int             `json:"day_number"`
	Materials   []*MaterialView `json:"materials"`
	IsCompleted bool            `json:"is_completed"`
}
