package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"qurba-backend/internal/models"
)

type stubMaterials []*models.Material

func (s stubMaterials) GetByID(_ context.Context, id uuid.UUID) (*models.Material, error) {
	for _, m := range s {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s stubMaterials) ListUpToDay(_ context.Context, day int) ([]*models.Material, error) {
	var out []*models.Material
	for _, m := range s {
		if m.DayNumber <= day {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubCompletions struct {
	done    map[uuid.UUID]time.Time
	markErr error
}

func (s *stubCompletions) MarkComplete(_ context.Context, userID, materialID uuid.UUID) (*models.CompletionRecord, error) {
	if s.markErr != nil {
		return nil, s.markErr
	}
	at, ok := s.done[materialID]
	if !ok {
		at = time.Now().UTC()
		s.done[materialID] = at
	}
	return &models.CompletionRecord{UserID: userID, MaterialID: materialID, CompletedAt: at}, nil
}

func (s *stubCompletions) CompletedMaterialIDs(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(s.done))
	for id := range s.done {
		ids = append(ids, id)
	}
	return ids, nil
}

type stubSubmissions struct {
	forms   map[uuid.UUID]*models.FormSubmission
	quizzes map[uuid.UUID]*models.QuizSubmission
}

func newStubSubmissions() *stubSubmissions {
	return &stubSubmissions{
		forms:   map[uuid.UUID]*models.FormSubmission{},
		quizzes: map[uuid.UUID]*models.QuizSubmission{},
	}
}

func (s *stubSubmissions) UpsertForm(_ context.Context, sub *models.FormSubmission) error {
	for _, existing := range s.forms {
		if existing.UserID == sub.UserID && existing.MaterialID == sub.MaterialID {
			sub.ID = existing.ID
		}
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	sub.SubmittedAt = time.Now().UTC()
	s.forms[sub.ID] = sub
	return nil
}

func (s *stubSubmissions) RecordQuiz(_ context.Context, sub *models.QuizSubmission) error {
	if existing, ok := s.quizzes[sub.MaterialID]; ok && existing.UserID == sub.UserID {
		*sub = *existing
		return nil
	}
	sub.ID = uuid.New()
	stored := *sub
	s.quizzes[sub.MaterialID] = &stored
	return nil
}

func (s *stubSubmissions) GetForm(_ context.Context, userID, materialID uuid.UUID) (*models.FormSubmission, error) {
	for _, sub := range s.forms {
		if sub.UserID == userID && sub.MaterialID == materialID {
			return sub, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubSubmissions) GetFormByID(_ context.Context, id uuid.UUID) (*models.FormSubmission, error) {
	if sub, ok := s.forms[id]; ok {
		return sub, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubSubmissions) GetQuiz(_ context.Context, _, materialID uuid.UUID) (*models.QuizSubmission, error) {
	if sub, ok := s.quizzes[materialID]; ok {
		return sub, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubSubmissions) UpdateFormResponses(_ context.Context, id, userID uuid.UUID, responses map[string]json.RawMessage) error {
	sub, ok := s.forms[id]
	if !ok || sub.UserID != userID {
		return pgx.ErrNoRows
	}
	sub.Responses = responses
	return nil
}

type stubForms map[uuid.UUID]*models.Form

func (s stubForms) GetByID(_ context.Context, id uuid.UUID) (*models.Form, error) {
	if f, ok := s[id]; ok {
		return f, nil
	}
	return nil, pgx.ErrNoRows
}

type stubQuizzes map[uuid.UUID]*models.Quiz

func (s stubQuizzes) GetByID(_ context.Context, id uuid.UUID) (*models.Quiz, error) {
	if q, ok := s[id]; ok {
		return q, nil
	}
	return nil, pgx.ErrNoRows
}

type stubProfiles struct{ profile *models.Profile }

func (s stubProfiles) GetByID(_ context.Context, _ uuid.UUID) (*models.Profile, error) {
	return s.profile, nil
}

type stubDays int

func (d stubDays) TotalDays(context.Context) (int, error) { return int(d), nil }

type stubNotifier struct {
	published []models.WSMessage
	enqueued  []int
}

func (n *stubNotifier) PublishUpdate(_ context.Context, _ uuid.UUID, msg models.WSMessage) {
	n.published = append(n.published, msg)
}

func (n *stubNotifier) EnqueueLeaderboardRefresh(_ context.Context, batch int) error {
	n.enqueued = append(n.enqueued, batch)
	return nil
}

type courseFixture struct {
	svc         *CourseService
	userID      uuid.UUID
	profile     *models.Profile
	completions *stubCompletions
	submissions *stubSubmissions
	notifier    *stubNotifier
	video       *models.Material
	form        *models.Material
	quiz        *models.Material
	day2        *models.Material
	broken      *models.Material
}

func newCourseFixture(t *testing.T) *courseFixture {
	t.Helper()

	url := "https://cdn.example.com/intro.mp4"
	formID := uuid.New()
	quizID := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	f := &courseFixture{
		userID:      uuid.New(),
		completions: &stubCompletions{done: map[uuid.UUID]time.Time{}},
		submissions: newStubSubmissions(),
		notifier:    &stubNotifier{},
	}
	f.profile = &models.Profile{UserID: f.userID, BatchNumber: 3, Role: models.RoleUser}

	f.video = &models.Material{ID: uuid.New(), DayNumber: 1, Kind: models.MaterialVideo, MediaURL: &url, OrderIndex: 0, CreatedAt: base}
	f.form = &models.Material{ID: uuid.New(), DayNumber: 1, Kind: models.MaterialForm, FormID: &formID, OrderIndex: 1, CreatedAt: base}
	f.quiz = &models.Material{ID: uuid.New(), DayNumber: 1, Kind: models.MaterialQuiz, QuizID: &quizID, OrderIndex: 2, CreatedAt: base}
	f.day2 = &models.Material{ID: uuid.New(), DayNumber: 2, Kind: models.MaterialLink, MediaURL: &url, OrderIndex: 0, CreatedAt: base}
	f.broken = &models.Material{ID: uuid.New(), DayNumber: 3, Kind: models.MaterialForm, OrderIndex: 0, CreatedAt: base}

	forms := stubForms{formID: {
		ID: formID,
		Fields: []models.FieldSpec{
			{ID: "name", Type: models.FieldShortText, Label: "Name", Required: true},
			{ID: "level", Type: "multiple_choice", Label: "Level", Options: []string{"beginner", "advanced"}},
		},
	}}
	quizzes := stubQuizzes{quizID: {
		ID:                quizID,
		PointsPerQuestion: 1,
		Questions: []models.Question{
			{ID: "q1", Type: models.QuestionMCQ, Question: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswer: models.AnswerKey{"Paris"}},
			{ID: "q2", Type: models.QuestionTrueFalse, Question: "The sky is blue", CorrectAnswer: models.AnswerKey{"True"}},
		},
	}}

	f.svc = NewCourseService(CourseStores{
		Materials:   stubMaterials{f.video, f.form, f.quiz, f.day2, f.broken},
		Completions: f.completions,
		Submissions: f.submissions,
		Forms:       forms,
		Quizzes:     quizzes,
		Profiles:    stubProfiles{profile: f.profile},
		Settings:    stubDays(3),
	}, f.notifier)
	return f
}

func (f *courseFixture) markDone(ids ...uuid.UUID) {
	for _, id := range ids {
		f.completions.done[id] = time.Now().UTC()
	}
}

func TestComplete_MediaMaterial(t *testing.T) {
	f := newCourseFixture(t)

	outcome, err := f.svc.Complete(context.Background(), f.userID, f.video.ID, models.CompleteRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Score != nil {
		t.Fatalf("expected no score for a video, got %d", *outcome.Score)
	}
	if _, ok := f.completions.done[f.video.ID]; !ok {
		t.Fatalf("expected completion to be recorded")
	}
	if len(f.notifier.published) != 1 || f.notifier.published[0].Type != "progress_update" {
		t.Fatalf("expected one progress_update, got %+v", f.notifier.published)
	}
	if len(f.notifier.enqueued) != 0 {
		t.Fatalf("expected no leaderboard refresh for a video")
	}
}

func TestComplete_MaterialLockedUntilPredecessorDone(t *testing.T) {
	f := newCourseFixture(t)

	_, err := f.svc.Complete(context.Background(), f.userID, f.form.ID, models.CompleteRequest{
		Responses: map[string]json.RawMessage{"name": json.RawMessage(`"Asha"`)},
	})

	var forbidden *ForbiddenError
	if !errors.As(err, &forbidden) || forbidden.Code != "MATERIAL_LOCKED" {
		t.Fatalf("expected MATERIAL_LOCKED, got %v", err)
	}
	if len(f.submissions.forms) != 0 {
		t.Fatalf("expected nothing stored for a locked material")
	}
}

func TestComplete_DayLockedUntilPreviousDayDone(t *testing.T) {
	f := newCourseFixture(t)
	f.markDone(f.video.ID, f.form.ID)

	_, err := f.svc.Complete(context.Background(), f.userID, f.day2.ID, models.CompleteRequest{})

	var forbidden *ForbiddenError
	if !errors.As(err, &forbidden) || forbidden.Code != "DAY_LOCKED" {
		t.Fatalf("expected DAY_LOCKED, got %v", err)
	}
}

func TestComplete_BlockedAccount(t *testing.T) {
	f := newCourseFixture(t)
	f.profile.IsBlocked = true

	_, err := f.svc.Complete(context.Background(), f.userID, f.video.ID, models.CompleteRequest{})

	var forbidden *ForbiddenError
	if !errors.As(err, &forbidden) || forbidden.Code != "ACCOUNT_BLOCKED" {
		t.Fatalf("expected ACCOUNT_BLOCKED, got %v", err)
	}
}

func TestComplete_FormStoresValidatedResponses(t *testing.T) {
	f := newCourseFixture(t)
	f.markDone(f.video.ID)

	_, err := f.svc.Complete(context.Background(), f.userID, f.form.ID, models.CompleteRequest{
		Responses: map[string]json.RawMessage{
			"name":    json.RawMessage(`"Asha"`),
			"level":   json.RawMessage(`"advanced"`),
			"unknown": json.RawMessage(`"dropped"`),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub, err := f.submissions.GetForm(context.Background(), f.userID, f.form.ID)
	if err != nil {
		t.Fatalf("expected stored submission: %v", err)
	}
	if _, ok := sub.Responses["unknown"]; ok {
		t.Fatalf("expected unknown field to be dropped")
	}
	if _, ok := f.completions.done[f.form.ID]; !ok {
		t.Fatalf("expected form completion to be recorded")
	}
}

func TestComplete_FormMissingRequiredField(t *testing.T) {
	f := newCourseFixture(t)
	f.markDone(f.video.ID)

	_, err := f.svc.Complete(context.Background(), f.userID, f.form.ID, models.CompleteRequest{
		Responses: map[string]json.RawMessage{"name": json.RawMessage(`"  "`)},
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["name"]; !ok {
		t.Fatalf("expected error on name, got %v", verr.Fields)
	}
	if _, ok := f.completions.done[f.form.ID]; ok {
		t.Fatalf("expected no completion after a rejected form")
	}
}

func TestComplete_QuizGradedAndLeaderboardQueued(t *testing.T) {
	f := newCourseFixture(t)
	f.markDone(f.video.ID, f.form.ID)

	outcome, err := f.svc.Complete(context.Background(), f.userID, f.quiz.ID, models.CompleteRequest{
		Answers: map[string]string{"q1": " paris ", "q2": "False", "extra": "ignored"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Score == nil || *outcome.Score != 1 || *outcome.MaxScore != 2 {
		t.Fatalf("expected score 1/2, got %+v", outcome)
	}
	if !outcome.Correct["q1"] || outcome.Correct["q2"] {
		t.Fatalf("unexpected correctness map %v", outcome.Correct)
	}

	sub := f.submissions.quizzes[f.quiz.ID]
	if sub == nil || sub.Score != 1 || sub.MaxScore != 2 {
		t.Fatalf("expected stored quiz submission with 1/2, got %+v", sub)
	}
	if _, ok := sub.Answers["extra"]; ok {
		t.Fatalf("expected answers to unknown questions to be dropped")
	}
	if len(f.notifier.enqueued) != 1 || f.notifier.enqueued[0] != 3 {
		t.Fatalf("expected leaderboard refresh for batch 3, got %v", f.notifier.enqueued)
	}
}

func TestComplete_QuizRetakeKeepsFirstAttempt(t *testing.T) {
	f := newCourseFixture(t)
	f.markDone(f.video.ID, f.form.ID)

	first, err := f.svc.Complete(context.Background(), f.userID, f.quiz.ID, models.CompleteRequest{
		Answers: map[string]string{"q1": "Paris", "q2": "False"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	retake, err := f.svc.Complete(context.Background(), f.userID, f.quiz.ID, models.CompleteRequest{
		Answers: map[string]string{"q1": "Paris", "q2": "True"},
	})
	if err != nil {
		t.Fatalf("unexpected error on retake: %v", err)
	}
	if *retake.Score != *first.Score || *retake.MaxScore != 2 {
		t.Fatalf("expected retake to report the first score %d, got %d", *first.Score, *retake.Score)
	}
	if retake.Correct["q2"] {
		t.Fatalf("expected correctness of the first attempt, got %v", retake.Correct)
	}

	sub := f.submissions.quizzes[f.quiz.ID]
	if sub.Score != 1 || sub.Answers["q2"] != "False" {
		t.Fatalf("expected stored first attempt to be kept, got %+v", sub)
	}
}

func TestComplete_PartiallyRecorded(t *testing.T) {
	f := newCourseFixture(t)
	f.markDone(f.video.ID)
	f.completions.markErr = errors.New("connection reset")

	_, err := f.svc.Complete(context.Background(), f.userID, f.form.ID, models.CompleteRequest{
		Responses: map[string]json.RawMessage{"name": json.RawMessage(`"Asha"`)},
	})

	var partial *PartiallyRecordedError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartiallyRecordedError, got %v", err)
	}
	if partial.SubmissionID == "" {
		t.Fatalf("expected submission id on the error")
	}
	if len(f.submissions.forms) != 1 {
		t.Fatalf("expected the submission to stay stored")
	}

	// Retrying after the store recovers overwrites the same submission.
	f.completions.markErr = nil
	if _, err := f.svc.Complete(context.Background(), f.userID, f.form.ID, models.CompleteRequest{
		Responses: map[string]json.RawMessage{"name": json.RawMessage(`"Asha K"`)},
	}); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(f.submissions.forms) != 1 {
		t.Fatalf("expected retry to reuse the submission, got %d", len(f.submissions.forms))
	}
}

func TestComplete_MediaFailureIsNotPartial(t *testing.T) {
	f := newCourseFixture(t)
	f.completions.markErr = errors.New("connection reset")

	_, err := f.svc.Complete(context.Background(), f.userID, f.video.ID, models.CompleteRequest{})

	var partial *PartiallyRecordedError
	if err == nil || errors.As(err, &partial) {
		t.Fatalf("expected a plain error, got %v", err)
	}
}

func TestComplete_AlreadyCompletedCanResubmit(t *testing.T) {
	f := newCourseFixture(t)
	f.markDone(f.video.ID, f.form.ID, f.quiz.ID)
	first := f.completions.done[f.video.ID]

	outcome, err := f.svc.Complete(context.Background(), f.userID, f.video.ID, models.CompleteRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.CompletedAt.Equal(first) {
		t.Fatalf("expected original completion time to be kept")
	}
}

func TestComplete_MisconfiguredMaterial(t *testing.T) {
	f := newCourseFixture(t)
	f.markDone(f.video.ID, f.form.ID, f.quiz.ID, f.day2.ID)

	_, err := f.svc.Complete(context.Background(), f.userID, f.broken.ID, models.CompleteRequest{})

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestComplete_UnknownMaterial(t *testing.T) {
	f := newCourseFixture(t)

	_, err := f.svc.Complete(context.Background(), f.userID, uuid.New(), models.CompleteRequest{})

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDayDetail_LockFlags(t *testing.T) {
	f := newCourseFixture(t)
	f.markDone(f.video.ID)

	detail, err := f.svc.DayDetail(context.Background(), f.userID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detail.Materials) != 3 {
		t.Fatalf("expected 3 materials, got %d", len(detail.Materials))
	}

	want := []struct{ unlocked, completed bool }{{true, true}, {true, false}, {false, false}}
	for i, w := range want {
		got := detail.Materials[i]
		if got.IsUnlocked != w.unlocked || got.IsCompleted != w.completed {
			t.Fatalf("material %d: expected unlocked=%v completed=%v, got %v %v", i, w.unlocked, w.completed, got.IsUnlocked, got.IsCompleted)
		}
	}

	if _, err := f.svc.DayDetail(context.Background(), f.userID, 2); err == nil {
		t.Fatalf("expected day 2 to be locked")
	}
	if _, err := f.svc.DayDetail(context.Background(), f.userID, 4); err == nil {
		t.Fatalf("expected day past the course length to be rejected")
	}
}

func TestProgress_Summary(t *testing.T) {
	f := newCourseFixture(t)
	f.markDone(f.video.ID, f.form.ID, f.quiz.ID)

	p, err := f.svc.Progress(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(p.Days))
	}
	if p.Summary.DaysCompleted != 1 || p.Summary.CurrentDay != 2 {
		t.Fatalf("unexpected summary %+v", p.Summary)
	}
}

func TestQuizForMaterial_HidesAnswers(t *testing.T) {
	f := newCourseFixture(t)
	f.markDone(f.video.ID, f.form.ID)

	quiz, err := f.svc.QuizForMaterial(context.Background(), f.userID, f.quiz.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := json.Marshal(quiz)
	if json.Valid(data) && containsKey(data, "correctAnswer") {
		t.Fatalf("expected answer key to be stripped, got %s", data)
	}
}

func TestEditFormResponses_OwnerOnly(t *testing.T) {
	f := newCourseFixture(t)
	f.markDone(f.video.ID)

	if _, err := f.svc.Complete(context.Background(), f.userID, f.form.ID, models.CompleteRequest{
		Responses: map[string]json.RawMessage{"name": json.RawMessage(`"Asha"`)},
	}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	sub, _ := f.submissions.GetForm(context.Background(), f.userID, f.form.ID)

	_, err := f.svc.EditFormResponses(context.Background(), uuid.New(), sub.ID, map[string]json.RawMessage{"name": json.RawMessage(`"Mallory"`)})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError for another user, got %v", err)
	}

	updated, err := f.svc.EditFormResponses(context.Background(), f.userID, sub.ID, map[string]json.RawMessage{"name": json.RawMessage(`"Asha K"`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(updated.Responses["name"]) != `"Asha K"` {
		t.Fatalf("expected updated name, got %s", updated.Responses["name"])
	}
}

func containsKey(data []byte, key string) bool {
	var walk func(v interface{}) bool
	walk = func(v interface{}) bool {
		switch x := v.(type) {
		case map[string]interface{}:
			for k, child := range x {
				if k == key || walk(child) {
					return true
				}
			}
		case []interface{}:
			for _, child := range x {
				if walk(child) {
					return true
				}
			}
		}
		return false
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return false
	}
	return walk(v)
}
