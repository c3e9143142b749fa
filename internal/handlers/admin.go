package handlers

import (
	"net/http"
	"strconv"

	"qurba-backend/internal/middleware"
	"qurba-backend/internal/models"
	"qurba-backend/internal/progress"
	"qurba-backend/internal/services"
	"qurba-backend/internal/validation"
)

type AdminHandler struct {
	admin    *services.AdminService
	settings *services.SettingsService
}

func NewAdminHandler(admin *services.AdminService, settings *services.SettingsService) *AdminHandler {
	return &AdminHandler{admin: admin, settings: settings}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) GetTotalDays(w http.ResponseWriter, r *http.Request) {
	days, err := h.settings.TotalDays(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_days": days})
}

func (h *AdminHandler) SetTotalDays(w http.ResponseWriter, r *http.Request) {
	var req models.TotalDaysRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := validation.Struct(req); fields != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	if err := h.settings.SetTotalDays(r.Context(), req.TotalDays); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_days": req.TotalDays})
}

// Users

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	batch, ok := optionalBatch(w, r)
	if !ok {
		return
	}

	users, err := h.admin.ListUsers(r.Context(), batch)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []*models.Profile{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req models.BlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.admin.SetBlocked(r.Context(), id, req.IsBlocked); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user_id": id, "is_blocked": req.IsBlocked})
}

func (h *AdminHandler) Batches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.admin.Batches(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

func (h *AdminHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	batch, ok := requiredBatch(w, r)
	if !ok {
		return
	}

	rows, err := h.admin.Attendance(r.Context(), batch)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *AdminHandler) Toppers(w http.ResponseWriter, r *http.Request) {
	batch, ok := requiredBatch(w, r)
	if !ok {
		return
	}

	toppers, err := h.admin.Toppers(r.Context(), batch)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toppers)
}

func (h *AdminHandler) UserSubmissions(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	subs, err := h.admin.UserSubmissions(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if subs == nil {
		subs = []*models.FormSubmission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// Whitelist

func (h *AdminHandler) ListWhitelist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.admin.ListWhitelist(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*models.WhitelistEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AdminHandler) AddWhitelist(w http.ResponseWriter, r *http.Request) {
	var req models.WhitelistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.admin.AddWhitelist(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *AdminHandler) BulkWhitelist(w http.ResponseWriter, r *http.Request) {
	var req models.BulkWhitelistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.admin.BulkWhitelist(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) RemoveWhitelist(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.admin.RemoveWhitelist(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Removed from whitelist"})
}

func (h *AdminHandler) SetPasswordReset(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req models.PasswordResetToggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.admin.SetPasswordReset(r.Context(), id, req.Enabled); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "password_reset_enabled": req.Enabled})
}

// Applications

func (h *AdminHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	apps, total, err := h.admin.ListApplications(r.Context(), limit, offset)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if apps == nil {
		apps = []*models.Application{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applications": apps,
		"total":        total,
	})
}

func optionalBatch(w http.ResponseWriter, r *http.Request) (*int, bool) {
	raw := r.URL.Query().Get("batch")
	if raw == "" {
		return nil, true
	}
	batch, err := strconv.Atoi(raw)
	if err != nil || batch < 1 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid batch", r))
		return nil, false
	}
	return &batch, true
}

// requiredBatch reads ?batch= and falls back to the first batch.
func requiredBatch(w http.ResponseWriter, r *http.Request) (int, bool) {
	batch, ok := optionalBatch(w, r)
	if !ok {
		return 0, false
	}
	if batch == nil {
		return progress.DefaultBatch, true
	}
	return *batch, true
}
