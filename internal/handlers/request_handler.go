package handlers

import (
	"net/http"
	"strconv"

	"discount-backend/internal/metrics"
	"discount-backend/internal/middleware"
	"discount-backend/internal/models"
	"discount-backend/internal/services"

	"github.com/gorilla/mux"
)

type RequestHandler struct {
	Service *services.RequestService
}

func NewRequestHandler(service *services.RequestService) *RequestHandler {
	return &RequestHandler{Service: service}
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req models.CreateRequestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	request, err := h.Service.Create(r.Context(), &req, session)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.RequestsCreated.Inc()
	writeJSON(w, http.StatusCreated, request)
}

func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := &models.RequestFilter{}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = models.RequestStatus(status)
	}
	if mine := r.URL.Query().Get("mine"); mine == "true" {
		if session, ok := middleware.GetSessionFromContext(r.Context()); ok {
			filter.CashierUserID = session.UserID
		}
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}

	requests, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requests)
}

func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request ID"})
		return
	}

	request, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, request)
}

func (h *RequestHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request ID"})
		return
	}

	var req models.ApproveRequestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	request, err := h.Service.Approve(r.Context(), id, req.GroupID, session)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.RequestsApproved.Inc()
	writeJSON(w, http.StatusOK, request)
}

func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request ID"})
		return
	}

	var req models.RejectRequestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Service.Reject(r.Context(), id, req.Reason, session); err != nil {
		writeError(w, err)
		return
	}

	metrics.RequestsRejected.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *RequestHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request ID"})
		return
	}

	var req models.FinalizeRequestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Service.Finalize(r.Context(), id, &req, session); err != nil {
		writeError(w, err)
		return
	}

	metrics.RequestsFinalized.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "done"})
}

func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request ID"})
		return
	}

	if err := h.Service.Delete(r.Context(), id, session); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
