package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spotlight/spotlight-backend/internal/model"
	"github.com/spotlight/spotlight-backend/internal/repository"
	"github.com/spotlight/spotlight-backend/internal/service"
	"github.com/spotlight/spotlight-backend/internal/validation"
)

// customerPayload — полная запись клиента. Обязательные поля объявлены
// указателями: nil означает, что поле не передано.
type customerPayload struct {
	FName           *string  `json:"fName" validate:"required"`
	LName           *string  `json:"lName" validate:"required"`
	Email           *string  `json:"email" validate:"required"`
	Position        *string  `json:"position" validate:"required"`
	CompanyName     *string  `json:"companyName" validate:"required"`
	TotalOrderTimes *int     `json:"totalOrderTimes" validate:"required"`
	VIP             *bool    `json:"VIP" validate:"required"`
	AvatarURL       *string  `json:"avatarURL" validate:"required"`
	Balance         *float64 `json:"balance" validate:"required"`
	TEL             *string  `json:"TEL" validate:"required"`
}

// GetCustomer возвращает клиента по идентификатору.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	customer, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Customer not found")
			return
		}
		h.serverError(w, "get customer error", err, zap.Int64("cID", id))
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// UpdateCustomer выполняет полную замену записи клиента: все десять полей
// обязательны, в ошибке перечисляются все отсутствующие.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req customerPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if missing := validation.MissingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missing, ", "))
		return
	}

	customer := &model.Customer{
		ID:              id,
		FirstName:       *req.FName,
		LastName:        *req.LName,
		Email:           *req.Email,
		Position:        req.Position,
		CompanyName:     req.CompanyName,
		TotalOrderTimes: *req.TotalOrderTimes,
		VIP:             *req.VIP,
		AvatarURL:       req.AvatarURL,
		Balance:         *req.Balance,
		Tel:             req.TEL,
	}

	if err := h.service.UpdateCustomer(r.Context(), customer); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Customer not found")
			return
		}
		h.serverError(w, "update customer error", err, zap.Int64("cID", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "updated", "cID": id})
}

type createCustomerRequest struct {
	FName           *string  `json:"fName" validate:"required"`
	LName           *string  `json:"lName" validate:"required"`
	Email           *string  `json:"email" validate:"required"`
	Position        *string  `json:"position"`
	CompanyName     *string  `json:"companyName"`
	TotalOrderTimes *int     `json:"totalOrderTimes"`
	VIP             *bool    `json:"VIP"`
	AvatarURL       *string  `json:"avatarURL"`
	Balance         *float64 `json:"balance"`
	TEL             *string  `json:"TEL"`
}

// CreateCustomer создаёт нового клиента.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if missing := validation.MissingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missing, ", "))
		return
	}

	customer := &model.Customer{
		FirstName:   *req.FName,
		LastName:    *req.LName,
		Email:       *req.Email,
		Position:    req.Position,
		CompanyName: req.CompanyName,
		AvatarURL:   req.AvatarURL,
		Tel:         req.TEL,
	}
	if req.TotalOrderTimes != nil {
		customer.TotalOrderTimes = *req.TotalOrderTimes
	}
	if req.VIP != nil {
		customer.VIP = *req.VIP
	}
	if req.Balance != nil {
		customer.Balance = *req.Balance
	}

	id, err := h.service.CreateCustomer(r.Context(), customer)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerExists) {
			writeError(w, http.StatusConflict, "customer with this email already exists")
			return
		}
		h.serverError(w, "create customer error", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": "created", "cID": id})
}

// DeleteCustomer удаляет клиента. Клиент с заказами не удаляется.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	rowsAffected, err := h.service.DeleteCustomer(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerHasOrders) {
			writeError(w, http.StatusConflict, "customer has orders and cannot be deleted")
			return
		}
		h.serverError(w, "delete customer error", err, zap.Int64("cID", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": id, "rows_affected": rowsAffected})
}

// ListCustomers возвращает клиентов с необязательным поиском по q.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	customers, err := h.service.ListCustomers(r.Context(), q, 200)
	if err != nil {
		h.serverError(w, "list customers error", err)
		return
	}

	if customers == nil {
		customers = []model.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

// ListCustomerOrders возвращает последние заказы клиента.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	orders, err := h.service.ListCustomerOrders(r.Context(), id, 100)
	if err != nil {
		h.serverError(w, "list customer orders error", err, zap.Int64("cID", id))
		return
	}

	writeJSON(w, http.StatusOK, ordersToResponse(orders))
}

type addFundsRequest struct {
	Amount *float64 `json:"amount"`
}

// AddFunds пополняет баланс клиента одним атомарным выражением.
func (h *Handler) AddFunds(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req addFundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		writeError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	balance, err := h.service.AddFunds(r.Context(), id, *req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "Amount must be positive")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Customer not found")
		default:
			h.serverError(w, "add funds error", err, zap.Int64("cID", id))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"cID": id, "balance": balance})
}
