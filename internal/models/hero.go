package models

import (
	"time"

	"github.com/google/uuid"
)

type HeroSlide struct {
	ID              uuid.UUID  `json:"id"`
	MediaType       string     `json:"media_type"`
	MediaURL        string     `json:"media_url"`
	Title           *string    `json:"title"`
	Subtitle        *string    `json:"subtitle"`
	DisplayDuration int        `json:"display_duration"`
	IsActive        bool       `json:"is_active"`
	OrderIndex      int        `json:"order_index"`
	CreatedBy       *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type HeroSlideRequest struct {
	MediaType       string  `json:"media_type" validate:"required,oneof=image video"`
	MediaURL        string  `json:"media_url" validate:"notblank"`
	Title           *string `json:"title"`
	Subtitle        *string `json:"subtitle"`
	DisplayDuration int     `json:"display_duration" validate:"min=0,max=120"`
	IsActive        *bool   `json:"is_active"`
	OrderIndex      *int    `json:"order_index"`
}

type ToggleActiveRequest struct {
	IsActive bool `json:"is_active"`
}
