package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spotlight/spotlight-backend/internal/model"
	"github.com/spotlight/spotlight-backend/internal/repository"
	"github.com/spotlight/spotlight-backend/internal/validation"
)

type accountPayload struct {
	Name       *string `json:"name" validate:"required"`
	Email      *string `json:"email" validate:"required"`
	Role       *string `json:"role" validate:"required"`
	CustomerID *int64  `json:"cID"`
}

// GetAccount возвращает учётную запись по идентификатору.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Account not found")
			return
		}
		h.serverError(w, "get account error", err, zap.Int64("accountID", id))
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// ListAccounts возвращает учётные записи с поиском по имени и почте.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	accounts, err := h.service.ListAccounts(r.Context(), q, 200)
	if err != nil {
		h.serverError(w, "list accounts error", err)
		return
	}

	if accounts == nil {
		accounts = []model.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

// CreateAccount создаёт учётную запись панели управления.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := h.decodeAccount(w, r)
	if !ok {
		return
	}

	id, err := h.service.CreateAccount(r.Context(), account)
	if err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			writeError(w, http.StatusConflict, "account with this email already exists")
			return
		}
		h.serverError(w, "create account error", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": "created", "accountID": id})
}

// UpdateAccount выполняет полную замену учётной записи.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	account, ok := h.decodeAccount(w, r)
	if !ok {
		return
	}
	account.ID = id

	if err := h.service.UpdateAccount(r.Context(), account); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Account not found")
		case errors.Is(err, repository.ErrAccountExists):
			writeError(w, http.StatusConflict, "account with this email already exists")
		default:
			h.serverError(w, "update account error", err, zap.Int64("accountID", id))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "updated", "accountID": id})
}

// DeleteAccount удаляет учётную запись.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	rowsAffected, err := h.service.DeleteAccount(r.Context(), id)
	if err != nil {
		h.serverError(w, "delete account error", err, zap.Int64("accountID", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": id, "rows_affected": rowsAffected})
}

// decodeAccount разбирает и проверяет тело запроса учётной записи. При
// ошибке ответ уже записан, вызывающему достаточно выйти.
func (h *Handler) decodeAccount(w http.ResponseWriter, r *http.Request) (*model.Account, bool) {
	var req accountPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}

	if missing := validation.MissingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missing, ", "))
		return nil, false
	}

	if !validation.IsValidAccountRole(*req.Role) {
		writeError(w, http.StatusBadRequest, "invalid role value: "+*req.Role)
		return nil, false
	}

	return &model.Account{
		Name:       *req.Name,
		Email:      *req.Email,
		Role:       model.AccountRole(*req.Role),
		CustomerID: req.CustomerID,
	}, true
}
