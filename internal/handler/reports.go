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

// GetReport возвращает обращение по идентификатору.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	report, err := h.service.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Report not found")
			return
		}
		h.serverError(w, "get report error", err, zap.Int64("rID", id))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ListReports возвращает обращения с необязательным фильтром по статусу.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !validation.IsValidReportStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status value: "+status)
		return
	}

	reports, err := h.service.ListReports(r.Context(), status, 200)
	if err != nil {
		h.serverError(w, "list reports error", err)
		return
	}

	if reports == nil {
		reports = []model.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

type createReportRequest struct {
	SpotID  *int64  `json:"spotID"`
	Content *string `json:"content" validate:"required"`
}

// CreateReport создаёт обращение со статусом unexamined.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if missing := validation.MissingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missing, ", "))
		return
	}

	report := &model.Report{
		SpotID:  req.SpotID,
		Content: *req.Content,
	}

	id, err := h.service.CreateReport(r.Context(), report)
	if err != nil {
		h.serverError(w, "create report error", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": "created", "rID": id})
}

type reportStatusRequest struct {
	Status *string `json:"status" validate:"required"`
}

// UpdateReportStatus меняет статус обращения.
func (h *Handler) UpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	var req reportStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if missing := validation.MissingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missing, ", "))
		return
	}

	if !validation.IsValidReportStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status value: "+*req.Status)
		return
	}

	if err := h.service.UpdateReportStatus(r.Context(), id, model.ReportStatus(*req.Status)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Report not found")
			return
		}
		h.serverError(w, "update report status error", err, zap.Int64("rID", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "updated", "rID": id})
}

// DeleteReport удаляет обращение.
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	rowsAffected, err := h.service.DeleteReport(r.Context(), id)
	if err != nil {
		h.serverError(w, "delete report error", err, zap.Int64("rID", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": id, "rows_affected": rowsAffected})
}
