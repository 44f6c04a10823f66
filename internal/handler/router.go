package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spotlight/spotlight-backend/internal/middleware"
)

// NewRouter собирает маршрутизатор API со всеми обработчиками и middleware.
func NewRouter(h *Handler, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.GzipMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Put("/", h.UpdateOrderDate)
		r.Delete("/", h.CancelOrder)
		r.Get("/pending", h.ListPendingOrders)
		r.Get("/processed", h.ListProcessedOrders)
		r.Get("/{id}", h.GetOrder)
		r.Get("/{id}/payment", h.GetPaymentStatus)
	})

	r.Route("/customer", func(r chi.Router) {
		r.Get("/", h.ListCustomers)
		r.Post("/", h.CreateCustomer)
		r.Get("/{id}", h.GetCustomer)
		r.Post("/{id}", h.UpdateCustomer)
		r.Delete("/{id}", h.DeleteCustomer)
		r.Get("/{id}/orders", h.ListCustomerOrders)
		r.Post("/{id}/funds", h.AddFunds)
	})

	r.Route("/spots", func(r chi.Router) {
		r.Get("/", h.ListSpots)
		r.Post("/", h.CreateSpot)
		r.Get("/near", h.SpotsNear)
		r.Get("/search", h.SearchSpots)
		r.Get("/{id}", h.GetSpot)
		r.Put("/{id}", h.UpdateSpot)
		r.Delete("/{id}", h.DeleteSpot)
	})

	r.Route("/salesman", func(r chi.Router) {
		r.Get("/orders", h.ListOrders)
		r.Get("/orders/pending", h.ListPendingOrders)
		r.Get("/orders/history", h.ListProcessedOrders)
		r.Get("/spots", h.SalesmanSpots)
		r.Put("/spots/{id}/status", h.UpdateSpotStatus)
		r.Post("/spotorders/{spotID}/{orderID}", h.AttachSpot)
		r.Delete("/spotorders/{spotID}/{orderID}", h.DetachSpot)
	})

	r.Route("/owner", func(r chi.Router) {
		r.Get("/metrics", h.OwnerMetrics)
		r.Post("/spots/bulk-price", h.BulkPriceUpdate)
		r.Put("/spots/{id}/status", h.UpdateSpotStatus)
		r.Get("/orders/recent", h.RecentOrders)
		r.Delete("/reports/{id}", h.DeleteReport)
	})

	r.Route("/o_and_m", func(r chi.Router) {
		r.Get("/search", h.GlobalSearch)
		r.Post("/insert", h.GenericInsert)
		r.Get("/spots/metrics", h.SpotsMetrics)
		r.Get("/customers/metrics", h.CustomersMetrics)
		r.Get("/orders/metrics", h.OrdersMetrics)
		r.Get("/spots/summary", h.SpotsSummary)
		r.Get("/customers/summary", h.CustomersSummary)
		r.Get("/orders/summary", h.OrdersSummary)
		r.Post("/orders/{id}/process", h.ProcessOrder)
		r.Put("/reports/{id}/status", h.UpdateReportStatus)
		r.Delete("/reports/{id}", h.DeleteReport)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.ListReports)
		r.Post("/", h.CreateReport)
		r.Get("/{id}", h.GetReport)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.ListAccounts)
		r.Post("/", h.CreateAccount)
		r.Get("/{id}", h.GetAccount)
		r.Put("/{id}", h.UpdateAccount)
		r.Delete("/{id}", h.DeleteAccount)
	})

	return r
}
