package handler

import (
	"encoding/json"
	"net/http"

	"github.com/spotlight/spotlight-backend/internal/validation"
)

// OwnerMetrics возвращает верхнеуровневые показатели компании.
func (h *Handler) OwnerMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.GetOwnerMetrics(r.Context())
	if err != nil {
		h.serverError(w, "owner metrics error", err)
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

type bulkPriceRequest struct {
	Percent *float64 `json:"percent" validate:"required"`
	Status  *string  `json:"status"`
}

// BulkPriceUpdate изменяет цены площадок на заданный процент и возвращает
// сводку цен после изменения.
func (h *Handler) BulkPriceUpdate(w http.ResponseWriter, r *http.Request) {
	var req bulkPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Percent == nil {
		writeError(w, http.StatusBadRequest, "Missing fields: percent")
		return
	}

	var status string
	if req.Status != nil {
		if !validation.IsValidSpotStatus(*req.Status) {
			writeError(w, http.StatusBadRequest, "invalid status value: "+*req.Status)
			return
		}
		status = *req.Status
	}

	summary, err := h.service.BulkPriceUpdate(r.Context(), *req.Percent, status)
	if err != nil {
		h.serverError(w, "bulk price update error", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// RecentOrders возвращает последние заказы компании.
func (h *Handler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.RecentOrders(r.Context(), 50)
	if err != nil {
		h.serverError(w, "recent orders error", err)
		return
	}

	writeJSON(w, http.StatusOK, ordersToResponse(orders))
}
