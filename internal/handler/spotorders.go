package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spotlight/spotlight-backend/internal/model"
	"github.com/spotlight/spotlight-backend/internal/repository"
)

// AttachSpot прикрепляет площадку к заказу. Повторное прикрепление создаёт
// дубликат связи, это ожидаемое поведение.
func (h *Handler) AttachSpot(w http.ResponseWriter, r *http.Request) {
	spotID, okSpot := idParam(r, "spotID")
	orderID, okOrder := idParam(r, "orderID")
	if !okSpot || !okOrder {
		writeError(w, http.StatusBadRequest, "invalid spot or order id")
		return
	}

	if err := h.service.AttachSpot(r.Context(), orderID, spotID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.serverError(w, "attach spot error", err,
			zap.Int64("orderID", orderID), zap.Int64("spotID", spotID))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"added": model.SpotOrder{OrderID: orderID, SpotID: spotID},
	})
}

// DetachSpot открепляет площадку от заказа. Удаляются все дубликаты связи,
// их число возвращается в rows_affected.
func (h *Handler) DetachSpot(w http.ResponseWriter, r *http.Request) {
	spotID, okSpot := idParam(r, "spotID")
	orderID, okOrder := idParam(r, "orderID")
	if !okSpot || !okOrder {
		writeError(w, http.StatusBadRequest, "invalid spot or order id")
		return
	}

	rowsAffected, err := h.service.DetachSpot(r.Context(), orderID, spotID)
	if err != nil {
		h.serverError(w, "detach spot error", err,
			zap.Int64("orderID", orderID), zap.Int64("spotID", spotID))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"deleted":       model.SpotOrder{OrderID: orderID, SpotID: spotID},
		"rows_affected": rowsAffected,
	})
}
