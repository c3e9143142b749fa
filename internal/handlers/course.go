package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"qurba-backend/internal/middleware"
	"qurba-backend/internal/models"
	"qurba-backend/internal/progress"
	"qurba-backend/internal/services"
)

type courseService interface {
	Progress(ctx context.Context, userID uuid.UUID) (*services.CourseProgress, error)
	DayDetail(ctx context.Context, userID uuid.UUID, day int) (*models.DayDetail, error)
	FormForMaterial(ctx context.Context, userID, materialID uuid.UUID) (*models.Form, error)
	QuizForMaterial(ctx context.Context, userID, materialID uuid.UUID) (*models.PublicQuiz, error)
	Complete(ctx context.Context, userID, materialID uuid.UUID, req models.CompleteRequest) (*models.CompletionOutcome, error)
	Submission(ctx context.Context, userID, materialID uuid.UUID) (*models.SubmissionView, error)
	EditFormResponses(ctx context.Context, userID, submissionID uuid.UUID, responses map[string]json.RawMessage) (*models.FormSubmission, error)
}

type leaderboardService interface {
	Toppers(ctx context.Context, batch int) ([]progress.Topper, error)
}

type profileLookup interface {
	Me(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// CourseHandler serves the learner's course: day grid, materials and
// completions.
type CourseHandler struct {
	course      courseService
	leaderboard leaderboardService
	profiles    profileLookup
}

func NewCourseHandler(course *services.CourseService, leaderboard *services.LeaderboardService, auth *services.AuthService) *CourseHandler {
	return &CourseHandler{course: course, leaderboard: leaderboard, profiles: auth}
}

func (h *CourseHandler) Progress(w http.ResponseWriter, r *http.Request) {
	p, err := h.course.Progress(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CourseHandler) Day(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 1 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid day", r))
		return
	}

	detail, err := h.course.DayDetail(r.Context(), middleware.GetUserID(r.Context()), day)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *CourseHandler) Form(w http.ResponseWriter, r *http.Request) {
	materialID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	form, err := h.course.FormForMaterial(r.Context(), middleware.GetUserID(r.Context()), materialID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *CourseHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	materialID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	quiz, err := h.course.QuizForMaterial(r.Context(), middleware.GetUserID(r.Context()), materialID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *CourseHandler) Complete(w http.ResponseWriter, r *http.Request) {
	materialID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	// Media materials complete with an empty body.
	var req models.CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	outcome, err := h.course.Complete(r.Context(), middleware.GetUserID(r.Context()), materialID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *CourseHandler) Submission(w http.ResponseWriter, r *http.Request) {
	materialID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	view, err := h.course.Submission(r.Context(), middleware.GetUserID(r.Context()), materialID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CourseHandler) EditSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateResponsesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sub, err := h.course.EditFormResponses(r.Context(), middleware.GetUserID(r.Context()), submissionID, req.Responses)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Leaderboard shows the toppers of the caller's own batch.
func (h *CourseHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	toppers, err := h.leaderboard.Toppers(r.Context(), profile.BatchNumber)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"batch_number": profile.BatchNumber,
		"toppers":      toppers,
	})
}
