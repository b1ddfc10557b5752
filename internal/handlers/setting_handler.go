package handlers

import (
	"net/http"
	"strings"

	"discount-backend/internal/models"
	"discount-backend/internal/repositories"
)

// editableSettings is the allow list of keys the admin UI may change
var editableSettings = map[string]bool{
	models.SettingNotifyCustomerOnApprove: true,
	models.SettingNotifyStaffOnCreate:     true,
	models.SettingWhatsAppTemplateText:    true,
}

type SettingHandler struct {
	Repo *repositories.SettingRepository
}

func NewSettingHandler(repo *repositories.SettingRepository) *SettingHandler {
	return &SettingHandler{Repo: repo}
}

func (h *SettingHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	// Unset toggles fall back to defaults; surface those too so the UI
	// never shows an empty form.
	present := make(map[string]bool, len(settings))
	for _, s := range settings {
		present[s.Key] = true
	}
	if !present[models.SettingWhatsAppTemplateText] {
		settings = append(settings, models.Setting{
			Key:   models.SettingWhatsAppTemplateText,
			Value: models.DefaultWhatsAppTemplate,
		})
	}

	writeJSON(w, http.StatusOK, settings)
}

type updateSettingRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

func (h *SettingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key := strings.TrimSpace(req.Key)
	if !editableSettings[key] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown setting key"})
		return
	}

	if err := h.Repo.Set(r.Context(), key, req.Value); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
