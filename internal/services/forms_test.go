package services

import (
	"encoding/json"
	"testing"

	"qurba-backend/internal/models"
)

func TestValidateResponses(t *testing.T) {
	fields := []models.FieldSpec{
		{ID: "name", Type: models.FieldShortText, Label: "Name", Required: true},
		{ID: "color", Type: models.FieldDropdown, Label: "Color", Options: []string{"red", "blue"}},
		{ID: "topics", Type: "checkboxes", Label: "Topics", Options: []string{"grammar", "speaking"}},
		{ID: "rating", Type: models.FieldRating, Label: "Rating"},
	}

	tests := []struct {
		name      string
		responses map[string]json.RawMessage
		wantErr   string
	}{
		{"valid", map[string]json.RawMessage{
			"name":   json.RawMessage(`"Asha"`),
			"color":  json.RawMessage(`"red"`),
			"topics": json.RawMessage(`["grammar","speaking"]`),
			"rating": json.RawMessage(`4`),
		}, ""},
		{"missing required", map[string]json.RawMessage{}, "name"},
		{"null required", map[string]json.RawMessage{"name": json.RawMessage(`null`)}, "name"},
		{"wrong option", map[string]json.RawMessage{"name": json.RawMessage(`"A"`), "color": json.RawMessage(`"green"`)}, "color"},
		{"checkbox outside options", map[string]json.RawMessage{"name": json.RawMessage(`"A"`), "topics": json.RawMessage(`["math"]`)}, "topics"},
		{"checkbox not a list", map[string]json.RawMessage{"name": json.RawMessage(`"A"`), "topics": json.RawMessage(`"grammar"`)}, "topics"},
		{"rating too high", map[string]json.RawMessage{"name": json.RawMessage(`"A"`), "rating": json.RawMessage(`6`)}, "rating"},
		{"rating fraction", map[string]json.RawMessage{"name": json.RawMessage(`"A"`), "rating": json.RawMessage(`2.5`)}, "rating"},
		{"text given a number", map[string]json.RawMessage{"name": json.RawMessage(`12`)}, "name"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clean, errs := ValidateResponses(fields, tc.responses)
			if tc.wantErr == "" {
				if errs != nil {
					t.Fatalf("expected no errors, got %v", errs)
				}
				if len(clean) != len(tc.responses) {
					t.Fatalf("expected %d clean responses, got %d", len(tc.responses), len(clean))
				}
				return
			}
			if _, ok := errs[tc.wantErr]; !ok {
				t.Fatalf("expected error on %q, got %v", tc.wantErr, errs)
			}
		})
	}
}

func TestValidateResponses_OptionalEmptySkipped(t *testing.T) {
	fields := []models.FieldSpec{{ID: "notes", Type: models.FieldLongText, Label: "Notes"}}

	clean, errs := ValidateResponses(fields, map[string]json.RawMessage{"notes": json.RawMessage(`""`)})
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if _, ok := clean["notes"]; ok {
		t.Fatalf("expected empty optional answer to be left out")
	}
}

func TestNormalizeFields(t *testing.T) {
	fields := []models.FieldSpec{
		{ID: "a", Type: "multiple_choice", Label: "A", Options: []string{"x"}},
		{ID: "b", Type: "checkboxes", Label: "B", Options: []string{"y"}},
		{ID: "c", Type: models.FieldShortText, Label: "C"},
	}

	out, errs := NormalizeFields(fields)
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if out[0].Type != models.FieldSingleChoice || out[1].Type != models.FieldMultiChoice {
		t.Fatalf("expected aliases to be mapped, got %q and %q", out[0].Type, out[1].Type)
	}
	if fields[0].Type != "multiple_choice" {
		t.Fatalf("expected input to be left untouched")
	}
}

func TestNormalizeFields_Rejects(t *testing.T) {
	fields := []models.FieldSpec{
		{ID: "a", Type: "slider", Label: "A"},
		{ID: "a", Type: models.FieldDropdown, Label: "B"},
	}

	_, errs := NormalizeFields(fields)
	for _, key := range []string{"fields[0].type", "fields[1].id", "fields[1].options"} {
		if _, ok := errs[key]; !ok {
			t.Errorf("expected error on %s, got %v", key, errs)
		}
	}
}
