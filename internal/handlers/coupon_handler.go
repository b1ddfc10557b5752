package handlers

import (
	"net/http"

	"discount-backend/internal/models"
	"discount-backend/internal/services"
)

type CouponHandler struct {
	Service *services.CouponService
}

func NewCouponHandler(service *services.CouponService) *CouponHandler {
	return &CouponHandler{Service: service}
}

func (h *CouponHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGroupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	group, err := h.Service.CreateGroup(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

func (h *CouponHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.ListGroups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, groups)
}

// Enlist loads a batch of coupon codes into a group. Duplicates inside the
// batch are skipped; a code that already exists elsewhere aborts the batch.
func (h *CouponHandler) Enlist(w http.ResponseWriter, r *http.Request) {
	var req models.EnlistRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.Service.Enlist(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *CouponHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	coupons, stocks, err := h.Service.Inventory(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"coupons": coupons,
		"stocks":  stocks,
	})
}
