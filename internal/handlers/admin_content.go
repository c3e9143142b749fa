package handlers

import (
	"net/http"

	"qurba-backend/internal/middleware"
	"qurba-backend/internal/models"
	"qurba-backend/internal/services"
)

// ContentHandler is the admin CMS for materials, forms, quizzes and hero
// slides.
type ContentHandler struct {
	content *services.ContentService
}

func NewContentHandler(content *services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

func (h *ContentHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.content.ListMaterials(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if materials == nil {
		materials = []*models.Material{}
	}
	writeJSON(w, http.StatusOK, materials)
}

func (h *ContentHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req models.MaterialRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.content.CreateMaterial(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *ContentHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req models.MaterialRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.content.UpdateMaterial(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *ContentHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteMaterial(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Material deleted"})
}

func (h *ContentHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.content.ListForms(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if forms == nil {
		forms = []*models.Form{}
	}
	writeJSON(w, http.StatusOK, forms)
}

func (h *ContentHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	form, err := h.content.GetForm(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *ContentHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var req models.FormRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	form, err := h.content.CreateForm(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, form)
}

func (h *ContentHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req models.FormRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	form, err := h.content.UpdateForm(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *ContentHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteForm(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Form deleted"})
}

func (h *ContentHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.content.ListQuizzes(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if quizzes == nil {
		quizzes = []*models.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *ContentHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	quiz, err := h.content.GetQuiz(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *ContentHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.QuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quiz, err := h.content.CreateQuiz(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *ContentHandler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req models.QuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quiz, err := h.content.UpdateQuiz(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *ContentHandler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteQuiz(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz deleted"})
}

func (h *ContentHandler) ListSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := h.content.ListSlides(r.Context(), false)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if slides == nil {
		slides = []*models.HeroSlide{}
	}
	writeJSON(w, http.StatusOK, slides)
}

func (h *ContentHandler) CreateSlide(w http.ResponseWriter, r *http.Request) {
	var req models.HeroSlideRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	slide, err := h.content.CreateSlide(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, slide)
}

func (h *ContentHandler) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req models.HeroSlideRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	slide, err := h.content.UpdateSlide(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slide)
}

func (h *ContentHandler) SetSlideActive(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req models.ToggleActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.content.SetSlideActive(r.Context(), id, req.IsActive); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "is_active": req.IsActive})
}

func (h *ContentHandler) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteSlide(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Slide deleted"})
}
