package handlers

import (
	"net/http"
	"strconv"

	"discount-backend/internal/models"
	"discount-backend/internal/services"
)

type ContactHandler struct {
	Service *services.ContactService
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{Service: service}
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	contact, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	result, err := h.Service.List(r.Context(), page, perPage)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Lookup finds a contact by mobile number for cashier form autofill
func (h *ContactHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	mobile := r.URL.Query().Get("mobile")
	if mobile == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mobile query parameter is required"})
		return
	}

	contact, err := h.Service.FindByMobile(r.Context(), mobile)
	if err != nil {
		writeError(w, err)
		return
	}
	if contact == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "contact not found"})
		return
	}

	writeJSON(w, http.StatusOK, contact)
}
