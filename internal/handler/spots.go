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

// ListSpots возвращает площадки с координатами. Поддерживаются фильтры по
// статусам, прямоугольнику координат и подстроке адреса, сортировка по
// фиксированному набору колонок.
func (h *Handler) ListSpots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var f repository.SpotsFilter

	if raw := query.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if !validation.IsValidSpotStatus(s) {
				writeError(w, http.StatusBadRequest, "invalid status value: "+s)
				return
			}
			f.Statuses = append(f.Statuses, s)
		}
	}

	if raw := query.Get("bbox"); raw != "" {
		bbox, ok := parseBBox(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid bbox, expected minLon,minLat,maxLon,maxLat")
			return
		}
		f.BBox = bbox
	}

	f.Query = strings.TrimSpace(query.Get("q"))

	if sortBy := query.Get("sort"); sortBy != "" {
		switch sortBy {
		case "spotID", "price", "views", "status":
			f.SortBy = sortBy
		default:
			writeError(w, http.StatusBadRequest, "invalid sort field")
			return
		}
	}

	switch query.Get("order") {
	case "", "asc":
	case "desc":
		f.Desc = true
	default:
		writeError(w, http.StatusBadRequest, "invalid order, expected asc or desc")
		return
	}

	limit, err := queryInt(r, "limit", 300, 1, 1000)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	f.Limit = limit

	offset, err := queryInt(r, "offset", 0, 0, 1<<30)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	f.Offset = offset

	spots, err := h.service.ListSpots(r.Context(), f)
	if err != nil {
		h.serverError(w, "list spots error", err)
		return
	}

	if spots == nil {
		spots = []model.Spot{}
	}
	writeJSON(w, http.StatusOK, spots)
}

func parseBBox(raw string) (*repository.BBox, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, false
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, false
		}
		vals[i] = v
	}
	return &repository.BBox{MinLon: vals[0], MinLat: vals[1], MaxLon: vals[2], MaxLat: vals[3]}, true
}

type createSpotRequest struct {
	Price                 *float64 `json:"price" validate:"required"`
	ContactTel            *string  `json:"contactTel" validate:"required"`
	EstViewPerMonth       *int64   `json:"estViewPerMonth" validate:"required"`
	MonthlyRentCost       *float64 `json:"monthlyRentCost" validate:"required"`
	EndTimeOfCurrentOrder *string  `json:"endTimeOfCurrentOrder" validate:"required"`
	Status                *string  `json:"status" validate:"required"`
	Address               *string  `json:"address" validate:"required"`
	Longitude             *float64 `json:"longitude" validate:"required"`
	Latitude              *float64 `json:"latitude" validate:"required"`
	ImageURL              *string  `json:"imageURL"`
}

// CreateSpot создаёт новую площадку.
func (h *Handler) CreateSpot(w http.ResponseWriter, r *http.Request) {
	var req createSpotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if missing := validation.MissingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missing, ", "))
		return
	}

	if !validation.IsValidSpotStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status value: "+*req.Status)
		return
	}

	endTime, ok := parseTimestamp(*req.EndTimeOfCurrentOrder)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid endTimeOfCurrentOrder format")
		return
	}

	spot := &model.Spot{
		Price:                 *req.Price,
		ContactTel:            *req.ContactTel,
		EstViewPerMonth:       req.EstViewPerMonth,
		MonthlyRentCost:       req.MonthlyRentCost,
		EndTimeOfCurrentOrder: &endTime,
		Status:                model.SpotStatus(*req.Status),
		Address:               *req.Address,
		Longitude:             req.Longitude,
		Latitude:              req.Latitude,
		ImageURL:              req.ImageURL,
	}

	id, err := h.service.CreateSpot(r.Context(), spot)
	if err != nil {
		h.serverError(w, "create spot error", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": "created", "spotID": id})
}

// GetSpot возвращает площадку по идентификатору.
func (h *Handler) GetSpot(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid spot id")
		return
	}

	spot, err := h.service.GetSpot(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Spot not found")
			return
		}
		h.serverError(w, "get spot error", err, zap.Int64("spotID", id))
		return
	}

	writeJSON(w, http.StatusOK, spot)
}

// UpdateSpot выполняет частичное обновление площадки: пишутся только
// переданные редактируемые поля, незнакомые ключи игнорируются.
func (h *Handler) UpdateSpot(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid spot id")
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if raw, ok := fields["status"]; ok {
		s, isString := raw.(string)
		if !isString || !validation.IsValidSpotStatus(s) {
			writeError(w, http.StatusBadRequest, "invalid status value")
			return
		}
	}

	// JSON-числа приходят как float64; целочисленная колонка требует
	// явного приведения.
	if raw, ok := fields["estViewPerMonth"]; ok {
		v, isNumber := raw.(float64)
		if !isNumber {
			writeError(w, http.StatusBadRequest, "invalid estViewPerMonth")
			return
		}
		fields["estViewPerMonth"] = int64(v)
	}

	if raw, ok := fields["endTimeOfCurrentOrder"]; ok {
		s, isString := raw.(string)
		if !isString {
			writeError(w, http.StatusBadRequest, "invalid endTimeOfCurrentOrder")
			return
		}
		t, parsed := parseTimestamp(s)
		if !parsed {
			writeError(w, http.StatusBadRequest, "invalid endTimeOfCurrentOrder format")
			return
		}
		fields["endTimeOfCurrentOrder"] = t
	}

	if err := h.service.UpdateSpotFields(r.Context(), id, fields); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoEditableFields):
			writeError(w, http.StatusBadRequest, "no editable fields provided")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Spot not found")
		default:
			h.serverError(w, "update spot error", err, zap.Int64("spotID", id))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "updated", "spotID": id})
}

// DeleteSpot удаляет площадку без ссылочных проверок.
func (h *Handler) DeleteSpot(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid spot id")
		return
	}

	rowsAffected, err := h.service.DeleteSpot(r.Context(), id)
	if err != nil {
		h.serverError(w, "delete spot error", err, zap.Int64("spotID", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": id, "rows_affected": rowsAffected})
}

// SpotsNear возвращает площадки в заданном радиусе от точки, ближние первыми.
func (h *Handler) SpotsNear(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, errLat := strconv.ParseFloat(query.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(query.Get("lon"), 64)
	radius, errRadius := strconv.ParseFloat(query.Get("radius_km"), 64)
	if errLat != nil || errLon != nil || errRadius != nil || radius <= 0 {
		writeError(w, http.StatusBadRequest, "lat, lon and radius_km are required numeric parameters")
		return
	}

	status := query.Get("status")
	if status != "" && !validation.IsValidSpotStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status value: "+status)
		return
	}

	spots, err := h.service.SpotsNear(r.Context(), lat, lon, radius, status, 100)
	if err != nil {
		h.serverError(w, "spots near error", err)
		return
	}

	if spots == nil {
		spots = []model.Spot{}
	}
	writeJSON(w, http.StatusOK, spots)
}

// SearchSpots ищет площадки по адресу. Пустой запрос даёт пустой список.
func (h *Handler) SearchSpots(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	topN, err := queryInt(r, "top_n", 20, 1, 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid top_n")
		return
	}

	spots, err := h.service.SearchSpots(r.Context(), q, topN)
	if err != nil {
		h.serverError(w, "search spots error", err)
		return
	}

	if spots == nil {
		spots = []model.Spot{}
	}
	writeJSON(w, http.StatusOK, spots)
}

type spotStatusRequest struct {
	Status *string `json:"status" validate:"required"`
}

// UpdateSpotStatus меняет только статус площадки и возвращает обновлённую
// запись.
func (h *Handler) UpdateSpotStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid spot id")
		return
	}

	var req spotStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if missing := validation.MissingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missing, ", "))
		return
	}

	if !validation.IsValidSpotStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status value: "+*req.Status)
		return
	}

	spot, err := h.service.UpdateSpotStatus(r.Context(), id, model.SpotStatus(*req.Status))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Spot not found")
			return
		}
		h.serverError(w, "update spot status error", err, zap.Int64("spotID", id))
		return
	}

	writeJSON(w, http.StatusOK, spot)
}

// SalesmanSpots возвращает площадки для продавца: либо в радиусе от точки,
// либо списком с фильтром по статусу.
func (h *Handler) SalesmanSpots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	status := query.Get("status")
	if status != "" && !validation.IsValidSpotStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status value: "+status)
		return
	}

	if query.Get("lat") != "" || query.Get("lon") != "" || query.Get("radius_km") != "" {
		h.SpotsNear(w, r)
		return
	}

	f := repository.SpotsFilter{Limit: 200}
	if status != "" {
		f.Statuses = []string{status}
	}

	spots, err := h.service.ListSpots(r.Context(), f)
	if err != nil {
		h.serverError(w, "salesman spots error", err)
		return
	}

	if spots == nil {
		spots = []model.Spot{}
	}
	writeJSON(w, http.StatusOK, spots)
}
