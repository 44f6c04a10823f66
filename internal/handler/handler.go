// Package handler содержит HTTP-обработчики API сервиса SpotLight.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spotlight/spotlight-backend/internal/model"
	"github.com/spotlight/spotlight-backend/internal/repository"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)
	CreateCustomer(ctx context.Context, c *model.Customer) (int64, error)
	UpdateCustomer(ctx context.Context, c *model.Customer) error
	DeleteCustomer(ctx context.Context, id int64) (int64, error)
	ListCustomers(ctx context.Context, q string, limit int) ([]model.Customer, error)
	AddFunds(ctx context.Context, id int64, amount float64) (float64, error)
	GetCustomersMetrics(ctx context.Context) (*repository.CustomersMetrics, error)
	CustomersSummary(ctx context.Context, limit int) ([]model.Customer, error)

	ListSpots(ctx context.Context, f repository.SpotsFilter) ([]model.Spot, error)
	GetSpot(ctx context.Context, id int64) (*model.Spot, error)
	CreateSpot(ctx context.Context, s *model.Spot) (int64, error)
	UpdateSpotFields(ctx context.Context, id int64, fields map[string]any) error
	UpdateSpotStatus(ctx context.Context, id int64, status model.SpotStatus) (*model.Spot, error)
	DeleteSpot(ctx context.Context, id int64) (int64, error)
	SpotsNear(ctx context.Context, lat, lon, radiusKM float64, status string, limit int) ([]model.Spot, error)
	SearchSpots(ctx context.Context, q string, limit int) ([]model.Spot, error)
	GetSpotsMetrics(ctx context.Context) (*repository.SpotsMetrics, error)
	SpotsSummary(ctx context.Context, limit int) ([]model.Spot, error)
	BulkPriceUpdate(ctx context.Context, percent float64, status string) (*repository.PriceSummary, error)

	CreateOrder(ctx context.Context, date time.Time, total float64, customerID int64) (int64, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context, f repository.OrdersFilter) ([]model.Order, error)
	ListCustomerOrders(ctx context.Context, customerID int64, limit int) ([]model.Order, error)
	RecentOrders(ctx context.Context, limit int) ([]model.Order, error)
	UpdateOrderDate(ctx context.Context, orderID int64, date time.Time) error
	CancelOrder(ctx context.Context, orderID int64) error
	ProcessOrder(ctx context.Context, orderID, processorID int64) (*model.ProcessedOrder, error)
	GetPaymentStatus(ctx context.Context, orderID int64) (model.PaymentStatus, error)
	ListPendingOrders(ctx context.Context, limit int) ([]model.PendingOrder, error)
	ListProcessedOrders(ctx context.Context, limit int) ([]model.ProcessedOrder, error)
	AttachSpot(ctx context.Context, orderID, spotID int64) error
	DetachSpot(ctx context.Context, orderID, spotID int64) (int64, error)
	GetOrdersMetrics(ctx context.Context, days int) (*repository.OrdersMetrics, error)
	OrdersSummary(ctx context.Context, days, limit int) ([]model.Order, error)

	GetReport(ctx context.Context, id int64) (*model.Report, error)
	ListReports(ctx context.Context, status string, limit int) ([]model.Report, error)
	CreateReport(ctx context.Context, rep *model.Report) (int64, error)
	UpdateReportStatus(ctx context.Context, id int64, status model.ReportStatus) error
	DeleteReport(ctx context.Context, id int64) (int64, error)

	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	ListAccounts(ctx context.Context, q string, limit int) ([]model.Account, error)
	CreateAccount(ctx context.Context, a *model.Account) (int64, error)
	UpdateAccount(ctx context.Context, a *model.Account) error
	DeleteAccount(ctx context.Context, id int64) (int64, error)

	GetOwnerMetrics(ctx context.Context) (*repository.OwnerMetrics, error)
	GlobalSearch(ctx context.Context, q string, perEntityLimit int) (*repository.SearchResult, error)
}

// Handler реализует HTTP-обработчики API сервиса SpotLight.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON сериализует ответ в JSON с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError отправляет клиенту объект с полем error.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// serverError логирует подробности ошибки хранилища и отдаёт клиенту
// обезличенное сообщение.
func (h *Handler) serverError(w http.ResponseWriter, op string, err error, fields ...zap.Field) {
	h.logger.Error(op, append(fields, zap.Error(err))...)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// idParam разбирает числовой параметр пути.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt разбирает целочисленный query-параметр с ограничением диапазона.
func queryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v, nil
}

// timestampLayouts — допустимые форматы временных меток в запросах.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	dateLayout,
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
