package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	FieldShortText    = "short_text"
	FieldLongText     = "long_text"
	FieldSingleChoice = "single_choice"
	FieldMultiChoice  = "multi_choice"
	FieldDropdown     = "dropdown"
	FieldRating       = "rating"
	FieldFileUpload   = "file_upload"
)

// Older clients send these names for the choice fields.
var fieldTypeAliases = map[string]string{
	"multiple_choice": FieldSingleChoice,
	"checkboxes":      FieldMultiChoice,
}

// NormalizeFieldType maps legacy names onto the canonical field types and
// reports whether the result is a known type.
func NormalizeFieldType(t string) (string, bool) {
	if alias, ok := fieldTypeAliases[t]; ok {
		t = alias
	}
	switch t {
	case FieldShortText, FieldLongText, FieldSingleChoice, FieldMultiChoice, FieldDropdown, FieldRating, FieldFileUpload:
		return t, true
	}
	return t, false
}

type FieldSpec struct {
	ID       string   `json:"id" validate:"notblank"`
	Type     string   `json:"type" validate:"required"`
	Label    string   `json:"label" validate:"notblank"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

type Form struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Fields      []FieldSpec `json:"fields"`
	CreatedBy   *uuid.UUID  `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type FormRequest struct {
	Name        string      `json:"name" validate:"notblank"`
	Description *string     `json:"description"`
	Fields      []FieldSpec `json:"fields" validate:"min=1,dive"`
}

type FormSubmission struct {
	ID          uuid.UUID                  `json:"id"`
	UserID      uuid.UUID                  `json:"user_id"`
	MaterialID  uuid.UUID                  `json:"material_id"`
	FormID      uuid.UUID                  `json:"form_id"`
	Responses   map[string]json.RawMessage `json:"responses"`
	SubmittedAt time.Time                  `json:"submitted_at"`
}

type UpdateResponsesRequest struct {
	Responses map[string]json.RawMessage `json:"responses"`
}
