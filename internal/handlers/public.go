package handlers

import (
	"net/http"

	"qurba-backend/internal/models"
	"qurba-backend/internal/services"
)

type PublicHandler struct {
	public *services.PublicService
}

func NewPublicHandler(public *services.PublicService) *PublicHandler {
	return &PublicHandler{public: public}
}

func (h *PublicHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req models.ApplicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ReferredByCode == "" {
		req.ReferredByCode = r.URL.Query().Get("ref")
	}

	app, err := h.public.Apply(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *PublicHandler) HeroSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := h.public.ActiveSlides(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if slides == nil {
		slides = []*models.HeroSlide{}
	}
	writeJSON(w, http.StatusOK, slides)
}

func (h *PublicHandler) WhatsAppLink(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"url": h.public.SupportLink(r.URL.Query().Get("text"))})
}
