package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spotlight/spotlight-backend/internal/model"
	"github.com/spotlight/spotlight-backend/internal/repository"
	"github.com/spotlight/spotlight-backend/internal/validation"
)

// orderResponse — представление заказа в ответах API. Дата сериализуется
// без времени суток.
type orderResponse struct {
	OrderID    int64             `json:"orderID"`
	Date       string            `json:"date"`
	Total      float64           `json:"total"`
	CustomerID int64             `json:"cID"`
	Status     model.OrderStatus `json:"status"`
}

func orderToResponse(o *model.Order) orderResponse {
	return orderResponse{
		OrderID:    o.ID,
		Date:       o.Date.Format(dateLayout),
		Total:      o.Total,
		CustomerID: o.CustomerID,
		Status:     o.Status,
	}
}

func ordersToResponse(orders []model.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, orderToResponse(&orders[i]))
	}
	return resp
}

type createOrderRequest struct {
	CustomerID *int64   `json:"cID" validate:"required"`
	Date       *string  `json:"date" validate:"required"`
	Total      *float64 `json:"total"`
}

// CreateOrder создаёт заказ вместе с маркером необработанности.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if missing := validation.MissingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missing, ", "))
		return
	}

	date, ok := parseTimestamp(*req.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	var total float64
	if req.Total != nil {
		total = *req.Total
	}

	id, err := h.service.CreateOrder(r.Context(), date, total, *req.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrNoCustomer) {
			writeError(w, http.StatusBadRequest, "customer does not exist")
			return
		}
		h.serverError(w, "create order error", err, zap.Int64("cID", *req.CustomerID))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": "created", "orderID": id})
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.serverError(w, "get order error", err, zap.Int64("orderID", id))
		return
	}

	writeJSON(w, http.StatusOK, orderToResponse(order))
}

// ListOrders возвращает заказы с фильтрами по клиенту и периоду.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var f repository.OrdersFilter

	if raw := r.URL.Query().Get("cID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid cID")
			return
		}
		f.CustomerID = &id
	}
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		t, ok := parseTimestamp(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid start_date")
			return
		}
		f.StartDate = &t
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		t, ok := parseTimestamp(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid end_date")
			return
		}
		f.EndDate = &t
	}

	orders, err := h.service.ListOrders(r.Context(), f)
	if err != nil {
		h.serverError(w, "list orders error", err)
		return
	}

	writeJSON(w, http.StatusOK, ordersToResponse(orders))
}

type updateOrderRequest struct {
	OrderID *int64  `json:"orderID" validate:"required"`
	Date    *string `json:"date" validate:"required"`
}

// UpdateOrderDate переносит дату начала размещения. Разрешено только пока
// заказ не обработан.
func (h *Handler) UpdateOrderDate(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if missing := validation.MissingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missing, ", "))
		return
	}

	date, ok := parseTimestamp(*req.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	if err := h.service.UpdateOrderDate(r.Context(), *req.OrderID, date); err != nil {
		h.writeOrderMutationError(w, "update order date error", *req.OrderID, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "updated", "orderID": *req.OrderID})
}

// CancelOrder отменяет необработанный заказ. Идентификатор передаётся
// query-параметром orderID.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("orderID")
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || orderID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid orderID")
		return
	}

	if err := h.service.CancelOrder(r.Context(), orderID); err != nil {
		h.writeOrderMutationError(w, "cancel order error", orderID, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "deleted", "orderID": orderID})
}

// writeOrderMutationError переводит ошибки охраняемых изменений заказа
// в ответы API: отсутствующий заказ и уже обработанный различаются.
func (h *Handler) writeOrderMutationError(w http.ResponseWriter, op string, orderID int64, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, repository.ErrNotPending):
		writeError(w, http.StatusBadRequest, "Order is already processed")
	default:
		h.serverError(w, op, err, zap.Int64("orderID", orderID))
	}
}

type processOrderRequest struct {
	ProcessorID *int64 `json:"processorID" validate:"required"`
}

// ProcessOrder выполняет единственный разрешённый переход заказа
// pending → processed.
func (h *Handler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req processOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if missing := validation.MissingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missing, ", "))
		return
	}

	processed, err := h.service.ProcessOrder(r.Context(), id, *req.ProcessorID)
	if err != nil {
		h.writeOrderMutationError(w, "process order error", id, err)
		return
	}

	writeJSON(w, http.StatusOK, processed)
}

// GetPaymentStatus возвращает классификацию заказа для отображения.
func (h *Handler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	status, err := h.service.GetPaymentStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.serverError(w, "payment status error", err, zap.Int64("orderID", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orderID": id, "payment_status": status})
}

// ListPendingOrders возвращает маркеры необработанных заказов.
func (h *Handler) ListPendingOrders(w http.ResponseWriter, r *http.Request) {
	pending, err := h.service.ListPendingOrders(r.Context(), 200)
	if err != nil {
		h.serverError(w, "list pending orders error", err)
		return
	}

	if pending == nil {
		pending = []model.PendingOrder{}
	}
	writeJSON(w, http.StatusOK, pending)
}

// ListProcessedOrders возвращает записи об обработке заказов.
func (h *Handler) ListProcessedOrders(w http.ResponseWriter, r *http.Request) {
	processed, err := h.service.ListProcessedOrders(r.Context(), 200)
	if err != nil {
		h.serverError(w, "list processed orders error", err)
		return
	}

	if processed == nil {
		processed = []model.ProcessedOrder{}
	}
	writeJSON(w, http.StatusOK, processed)
}
