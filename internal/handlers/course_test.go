package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"qurba-backend/internal/middleware"
	"qurba-backend/internal/models"
	"qurba-backend/internal/progress"
	"qurba-backend/internal/services"
)

type stubCourseService struct {
	completeErr error
	dayErr      error
	lastReq     models.CompleteRequest
	lastUser    uuid.UUID
	lastDay     int
}

func (s *stubCourseService) Progress(ctx context.Context, userID uuid.UUID) (*services.CourseProgress, error) {
	return &services.CourseProgress{}, nil
}

func (s *stubCourseService) DayDetail(ctx context.Context, userID uuid.UUID, day int) (*models.DayDetail, error) {
	s.lastDay = day
	if s.dayErr != nil {
		return nil, s.dayErr
	}
	return &models.DayDetail{DayNumber: day, Materials: []*models.MaterialView{}}, nil
}

func (s *stubCourseService) FormForMaterial(ctx context.Context, userID, materialID uuid.UUID) (*models.Form, error) {
	return &models.Form{ID: materialID}, nil
}

func (s *stubCourseService) QuizForMaterial(ctx context.Context, userID, materialID uuid.UUID) (*models.PublicQuiz, error) {
	return &models.PublicQuiz{ID: materialID}, nil
}

func (s *stubCourseService) Complete(ctx context.Context, userID, materialID uuid.UUID, req models.CompleteRequest) (*models.CompletionOutcome, error) {
	s.lastReq = req
	s.lastUser = userID
	if s.completeErr != nil {
		return nil, s.completeErr
	}
	return &models.CompletionOutcome{MaterialID: materialID, CompletedAt: time.Now().UTC()}, nil
}

func (s *stubCourseService) Submission(ctx context.Context, userID, materialID uuid.UUID) (*models.SubmissionView, error) {
	return nil, &services.NotFoundError{Message: "No submission yet"}
}

func (s *stubCourseService) EditFormResponses(ctx context.Context, userID, submissionID uuid.UUID, responses map[string]json.RawMessage) (*models.FormSubmission, error) {
	return &models.FormSubmission{ID: submissionID, UserID: userID, Responses: responses}, nil
}

type stubLeaderboard struct{ batch int }

func (s *stubLeaderboard) Toppers(ctx context.Context, batch int) ([]progress.Topper, error) {
	s.batch = batch
	return []progress.Topper{}, nil
}

type stubProfileLookup struct{ profile *models.Profile }

func (s stubProfileLookup) Me(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.profile, nil
}

func withRoute(req *http.Request, userID uuid.UUID, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var payload models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return payload.Error
}

func TestCourseHandler_CompleteWithoutBody(t *testing.T) {
	svc := &stubCourseService{}
	h := &CourseHandler{course: svc}
	userID := uuid.New()
	materialID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/materials/"+materialID.String()+"/complete", nil)
	req = withRoute(req, userID, map[string]string{"id": materialID.String()})

	rr := httptest.NewRecorder()
	h.Complete(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if svc.lastUser != userID {
		t.Fatalf("expected user from context, got %s", svc.lastUser)
	}
}

func TestCourseHandler_CompletePassesAnswers(t *testing.T) {
	svc := &stubCourseService{}
	h := &CourseHandler{course: svc}
	materialID := uuid.New()

	body := []byte(`{"answers":{"q1":"Paris"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/materials/"+materialID.String()+"/complete", bytes.NewReader(body))
	req = withRoute(req, uuid.New(), map[string]string{"id": materialID.String()})

	rr := httptest.NewRecorder()
	h.Complete(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if svc.lastReq.Answers["q1"] != "Paris" {
		t.Fatalf("expected answers to reach the service, got %v", svc.lastReq.Answers)
	}
}

func TestCourseHandler_CompletePartiallyRecorded(t *testing.T) {
	svc := &stubCourseService{completeErr: &services.PartiallyRecordedError{SubmissionID: "abc", Err: errors.New("timeout")}}
	h := &CourseHandler{course: svc}
	materialID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/materials/"+materialID.String()+"/complete", nil)
	req = withRoute(req, uuid.New(), map[string]string{"id": materialID.String()})

	rr := httptest.NewRecorder()
	h.Complete(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, rr.Code)
	}
	if apiErr := decodeError(t, rr); apiErr.Code != "PARTIALLY_RECORDED" {
		t.Fatalf("expected PARTIALLY_RECORDED, got %q", apiErr.Code)
	}
}

func TestCourseHandler_CompleteInvalidID(t *testing.T) {
	h := &CourseHandler{course: &stubCourseService{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/materials/nope/complete", nil)
	req = withRoute(req, uuid.New(), map[string]string{"id": "nope"})

	rr := httptest.NewRecorder()
	h.Complete(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestCourseHandler_DayLocked(t *testing.T) {
	svc := &stubCourseService{dayErr: &services.ForbiddenError{Code: "DAY_LOCKED", Message: "locked"}}
	h := &CourseHandler{course: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/course/days/2", nil)
	req = withRoute(req, uuid.New(), map[string]string{"day": "2"})

	rr := httptest.NewRecorder()
	h.Day(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}
	if apiErr := decodeError(t, rr); apiErr.Code != "DAY_LOCKED" {
		t.Fatalf("expected DAY_LOCKED, got %q", apiErr.Code)
	}
	if svc.lastDay != 2 {
		t.Fatalf("expected day 2, got %d", svc.lastDay)
	}
}

func TestCourseHandler_DayInvalid(t *testing.T) {
	h := &CourseHandler{course: &stubCourseService{}}

	for _, day := range []string{"abc", "0", "-1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/course/days/"+day, nil)
		req = withRoute(req, uuid.New(), map[string]string{"day": day})

		rr := httptest.NewRecorder()
		h.Day(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("day %q: expected status %d, got %d", day, http.StatusBadRequest, rr.Code)
		}
	}
}

func TestCourseHandler_LeaderboardUsesCallerBatch(t *testing.T) {
	lb := &stubLeaderboard{}
	h := &CourseHandler{
		course:      &stubCourseService{},
		leaderboard: lb,
		profiles:    stubProfileLookup{profile: &models.Profile{BatchNumber: 4}},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard", nil)
	req = withRoute(req, uuid.New(), nil)

	rr := httptest.NewRecorder()
	h.Leaderboard(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if lb.batch != 4 {
		t.Fatalf("expected batch 4, got %d", lb.batch)
	}
}

func TestCourseHandler_SubmissionNotFound(t *testing.T) {
	h := &CourseHandler{course: &stubCourseService{}}
	materialID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/materials/"+materialID.String()+"/submission", nil)
	req = withRoute(req, uuid.New(), map[string]string{"id": materialID.String()})

	rr := httptest.NewRecorder()
	h.Submission(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}
