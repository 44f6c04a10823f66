package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/spotlight/spotlight-backend/internal/model"
	"github.com/spotlight/spotlight-backend/internal/repository"
	"github.com/spotlight/spotlight-backend/internal/validation"
)

const defaultPeriodDays = 90

// SpotsMetrics возвращает агрегированные показатели по площадкам.
func (h *Handler) SpotsMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.GetSpotsMetrics(r.Context())
	if err != nil {
		h.serverError(w, "spots metrics error", err)
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

// CustomersMetrics возвращает агрегированные показатели по клиентам.
func (h *Handler) CustomersMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.GetCustomersMetrics(r.Context())
	if err != nil {
		h.serverError(w, "customers metrics error", err)
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

// OrdersMetrics возвращает агрегированные показатели по заказам за период.
// Некорректный период молча заменяется значением по умолчанию.
func (h *Handler) OrdersMetrics(w http.ResponseWriter, r *http.Request) {
	days := validation.ParsePeriodDays(r.URL.Query().Get("period"), defaultPeriodDays)

	metrics, err := h.service.GetOrdersMetrics(r.Context(), days)
	if err != nil {
		h.serverError(w, "orders metrics error", err)
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

// SpotsSummary возвращает последние площадки для сводки.
func (h *Handler) SpotsSummary(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50, 1, 500)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	spots, err := h.service.SpotsSummary(r.Context(), limit)
	if err != nil {
		h.serverError(w, "spots summary error", err)
		return
	}

	writeJSON(w, http.StatusOK, spots)
}

// CustomersSummary возвращает последних клиентов для сводки.
func (h *Handler) CustomersSummary(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50, 1, 500)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	customers, err := h.service.CustomersSummary(r.Context(), limit)
	if err != nil {
		h.serverError(w, "customers summary error", err)
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

// OrdersSummary возвращает последние заказы за период.
func (h *Handler) OrdersSummary(w http.ResponseWriter, r *http.Request) {
	days := validation.ParsePeriodDays(r.URL.Query().Get("period"), defaultPeriodDays)

	limit, err := queryInt(r, "limit", 50, 1, 500)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	orders, err := h.service.OrdersSummary(r.Context(), days, limit)
	if err != nil {
		h.serverError(w, "orders summary error", err)
		return
	}

	writeJSON(w, http.StatusOK, ordersToResponse(orders))
}

// GlobalSearch ищет по площадкам, клиентам и заказам одновременно.
// Пустой запрос даёт пустые списки без обращения к БД.
func (h *Handler) GlobalSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("query"))

	result, err := h.service.GlobalSearch(r.Context(), q, 20)
	if err != nil {
		h.serverError(w, "global search error", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type insertEnvelope struct {
	Entity string `json:"entity"`
}

// GenericInsert создаёт площадку, клиента или заказ по полю entity.
// Тело читается целиком и разбирается дважды: сперва конверт, затем
// полезная нагрузка соответствующей сущности. Наборы обязательных полей
// здесь свои, более короткие, чем у специализированных эндпоинтов.
func (h *Handler) GenericInsert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	var envelope insertEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch strings.ToLower(strings.TrimSpace(envelope.Entity)) {
	case "spot":
		h.insertSpot(w, r, body)
	case "customer":
		r.Body = io.NopCloser(bytes.NewReader(body))
		h.CreateCustomer(w, r)
	case "order":
		h.insertOrder(w, r, body)
	case "":
		writeError(w, http.StatusBadRequest, "Missing entity")
	default:
		writeError(w, http.StatusBadRequest, "entity must be one of: spot, customer, order")
	}
}

type insertSpotRequest struct {
	Price                 *float64 `json:"price" validate:"required"`
	ContactTel            *string  `json:"contactTel" validate:"required"`
	Address               *string  `json:"address" validate:"required"`
	Status                *string  `json:"status"`
	EstViewPerMonth       *int64   `json:"estViewPerMonth"`
	MonthlyRentCost       *float64 `json:"monthlyRentCost"`
	EndTimeOfCurrentOrder *string  `json:"endTimeOfCurrentOrder"`
	Longitude             *float64 `json:"longitude"`
	Latitude              *float64 `json:"latitude"`
	ImageURL              *string  `json:"imageURL"`
}

// insertSpot создаёт площадку из сокращённой формы: обязательны только цена,
// телефон и адрес, статус по умолчанию free.
func (h *Handler) insertSpot(w http.ResponseWriter, r *http.Request, body []byte) {
	var req insertSpotRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if missing := validation.MissingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missing, ", "))
		return
	}

	status := string(model.SpotStatusFree)
	if req.Status != nil {
		status = *req.Status
	}
	if !validation.IsValidSpotStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status value: "+status)
		return
	}

	spot := &model.Spot{
		Price:           *req.Price,
		ContactTel:      *req.ContactTel,
		Address:         *req.Address,
		Status:          model.SpotStatus(status),
		EstViewPerMonth: req.EstViewPerMonth,
		MonthlyRentCost: req.MonthlyRentCost,
		Longitude:       req.Longitude,
		Latitude:        req.Latitude,
		ImageURL:        req.ImageURL,
	}

	if req.EndTimeOfCurrentOrder != nil {
		t, ok := parseTimestamp(*req.EndTimeOfCurrentOrder)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid endTimeOfCurrentOrder format")
			return
		}
		spot.EndTimeOfCurrentOrder = &t
	}

	id, err := h.service.CreateSpot(r.Context(), spot)
	if err != nil {
		h.serverError(w, "insert spot error", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": "created", "spotID": id})
}

type insertOrderRequest struct {
	Date       *string  `json:"date" validate:"required"`
	Total      *float64 `json:"total" validate:"required"`
	CustomerID *int64   `json:"cID" validate:"required"`
}

// insertOrder создаёт заказ из административной формы, где сумма обязательна.
func (h *Handler) insertOrder(w http.ResponseWriter, r *http.Request, body []byte) {
	var req insertOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
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

	id, err := h.service.CreateOrder(r.Context(), date, *req.Total, *req.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrNoCustomer) {
			writeError(w, http.StatusBadRequest, "customer does not exist")
			return
		}
		h.serverError(w, "insert order error", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": "created", "orderID": id})
}
