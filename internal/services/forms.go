package services

import (
	"bytes"
	"encoding/json"
	"strings"

	"qurba-backend/internal/models"
)

// ValidateResponses checks answers against the form's fields. It returns the
// responses restricted to known fields, or per-field error messages.
func ValidateResponses(fields []models.FieldSpec, responses map[string]json.RawMessage) (map[string]json.RawMessage, map[string]string) {
	clean := make(map[string]json.RawMessage, len(fields))
	errs := make(map[string]string)

	for _, field := range fields {
		raw, present := responses[field.ID]
		if !present || isEmptyResponse(raw) {
			if field.Required {
				errs[field.ID] = "This field is required"
			}
			continue
		}

		fieldType, _ := models.NormalizeFieldType(field.Type)
		if msg := checkFieldValue(fieldType, field.Options, raw); msg != "" {
			errs[field.ID] = msg
			continue
		}
		clean[field.ID] = raw
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return clean, nil
}

func checkFieldValue(fieldType string, options []string, raw json.RawMessage) string {
	switch fieldType {
	case models.FieldShortText, models.FieldLongText, models.FieldFileUpload:
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return "Must be text"
		}
	case models.FieldSingleChoice, models.FieldDropdown:
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return "Must be a single option"
		}
		if len(options) > 0 && !contains(options, s) {
			return "Not one of the available options"
		}
	case models.FieldMultiChoice:
		var list []string
		if json.Unmarshal(raw, &list) != nil {
			return "Must be a list of options"
		}
		for _, s := range list {
			if len(options) > 0 && !contains(options, s) {
				return "Not one of the available options"
			}
		}
	case models.FieldRating:
		var n float64
		if json.Unmarshal(raw, &n) != nil || n != float64(int(n)) || n < 1 || n > 5 {
			return "Rating must be a whole number from 1 to 5"
		}
	default:
		return "Unsupported field type"
	}
	return ""
}

func isEmptyResponse(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", `""`, "[]":
		return true
	}
	var s string
	if json.Unmarshal(trimmed, &s) == nil && strings.TrimSpace(s) == "" {
		return true
	}
	return false
}

// NormalizeFields maps legacy field type names and rejects unknown types.
func NormalizeFields(fields []models.FieldSpec) ([]models.FieldSpec, map[string]string) {
	out := make([]models.FieldSpec, len(fields))
	errs := make(map[string]string)
	seen := make(map[string]bool, len(fields))

	for i, f := range fields {
		t, ok := models.NormalizeFieldType(f.Type)
		if !ok {
			errs[fieldKey("fields", i, "type")] = "Unknown field type"
		}
		if seen[f.ID] {
			errs[fieldKey("fields", i, "id")] = "Field ids must be unique"
		}
		seen[f.ID] = true

		needsOptions := t == models.FieldSingleChoice || t == models.FieldMultiChoice || t == models.FieldDropdown
		if needsOptions && len(f.Options) == 0 {
			errs[fieldKey("fields", i, "options")] = "Choice fields need at least one option"
		}

		f.Type = t
		out[i] = f
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
