// Package service реализует бизнес-логику сервиса SpotLight.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/spotlight/spotlight-backend/internal/model"
	"github.com/spotlight/spotlight-backend/internal/repository"
)

// ErrInvalidAmount возвращается при попытке пополнить баланс
// неположительной суммой.
var ErrInvalidAmount = errors.New("amount must be positive")

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

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
	SearchSpotsByAddress(ctx context.Context, q string, limit int) ([]model.Spot, error)
	GetSpotsMetrics(ctx context.Context) (*repository.SpotsMetrics, error)
	SpotsSummary(ctx context.Context, limit int) ([]model.Spot, error)
	BulkPriceUpdate(ctx context.Context, percent float64, status string) (*repository.PriceSummary, error)

	CreateOrder(ctx context.Context, date time.Time, total float64, customerID int64) (int64, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context, f repository.OrdersFilter) ([]model.Order, error)
	ListCustomerOrders(ctx context.Context, customerID int64, limit int) ([]model.Order, error)
	RecentOrders(ctx context.Context, limit int) ([]model.Order, error)
	UpdateOrderDate(ctx context.Context, orderID int64, date time.Time) error
	DeleteOrder(ctx context.Context, orderID int64) error
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

// Service содержит бизнес-логику сервиса SpotLight.
type Service struct {
	repo Repository
}

// NewService создаёт новый сервис с указанным репозиторием.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// GetCustomer возвращает клиента по идентификатору.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// CreateCustomer создаёт нового клиента.
func (s *Service) CreateCustomer(ctx context.Context, c *model.Customer) (int64, error) {
	return s.repo.CreateCustomer(ctx, c)
}

// UpdateCustomer выполняет полную замену записи клиента.
func (s *Service) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	return s.repo.UpdateCustomer(ctx, c)
}

// DeleteCustomer удаляет клиента без заказов.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) (int64, error) {
	return s.repo.DeleteCustomer(ctx, id)
}

// ListCustomers возвращает клиентов с необязательным поиском.
func (s *Service) ListCustomers(ctx context.Context, q string, limit int) ([]model.Customer, error) {
	return s.repo.ListCustomers(ctx, q, limit)
}

// AddFunds пополняет баланс клиента. Сумма обязана быть положительной;
// само пополнение выполняется одним атомарным выражением в хранилище.
func (s *Service) AddFunds(ctx context.Context, id int64, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.repo.AddFunds(ctx, id, amount)
}

// GetCustomersMetrics возвращает агрегированные показатели по клиентам.
func (s *Service) GetCustomersMetrics(ctx context.Context) (*repository.CustomersMetrics, error) {
	return s.repo.GetCustomersMetrics(ctx)
}

// CustomersSummary возвращает последних клиентов.
func (s *Service) CustomersSummary(ctx context.Context, limit int) ([]model.Customer, error) {
	return s.repo.CustomersSummary(ctx, limit)
}

// ListSpots возвращает площадки по фильтру.
func (s *Service) ListSpots(ctx context.Context, f repository.SpotsFilter) ([]model.Spot, error) {
	return s.repo.ListSpots(ctx, f)
}

// GetSpot возвращает площадку по идентификатору.
func (s *Service) GetSpot(ctx context.Context, id int64) (*model.Spot, error) {
	return s.repo.GetSpot(ctx, id)
}

// CreateSpot создаёт новую площадку.
func (s *Service) CreateSpot(ctx context.Context, spot *model.Spot) (int64, error) {
	return s.repo.CreateSpot(ctx, spot)
}

// UpdateSpotFields выполняет частичное обновление площадки по allow-list.
func (s *Service) UpdateSpotFields(ctx context.Context, id int64, fields map[string]any) error {
	return s.repo.UpdateSpotFields(ctx, id, fields)
}

// UpdateSpotStatus меняет статус площадки и возвращает обновлённую запись.
func (s *Service) UpdateSpotStatus(ctx context.Context, id int64, status model.SpotStatus) (*model.Spot, error) {
	return s.repo.UpdateSpotStatus(ctx, id, status)
}

// DeleteSpot удаляет площадку.
func (s *Service) DeleteSpot(ctx context.Context, id int64) (int64, error) {
	return s.repo.DeleteSpot(ctx, id)
}

// SpotsNear возвращает площадки в радиусе от точки.
func (s *Service) SpotsNear(ctx context.Context, lat, lon, radiusKM float64, status string, limit int) ([]model.Spot, error) {
	return s.repo.SpotsNear(ctx, lat, lon, radiusKM, status, limit)
}

// SearchSpots ищет площадки по адресу. Пустой запрос даёт пустой результат
// без обращения к хранилищу.
func (s *Service) SearchSpots(ctx context.Context, q string, limit int) ([]model.Spot, error) {
	if q == "" {
		return []model.Spot{}, nil
	}
	return s.repo.SearchSpotsByAddress(ctx, q, limit)
}

// GetSpotsMetrics возвращает агрегированные показатели по площадкам.
func (s *Service) GetSpotsMetrics(ctx context.Context) (*repository.SpotsMetrics, error) {
	return s.repo.GetSpotsMetrics(ctx)
}

// SpotsSummary возвращает последние площадки.
func (s *Service) SpotsSummary(ctx context.Context, limit int) ([]model.Spot, error) {
	return s.repo.SpotsSummary(ctx, limit)
}

// BulkPriceUpdate массово меняет цены площадок на заданный процент.
func (s *Service) BulkPriceUpdate(ctx context.Context, percent float64, status string) (*repository.PriceSummary, error) {
	return s.repo.BulkPriceUpdate(ctx, percent, status)
}

// CreateOrder создаёт заказ и маркер необработанности одной логической
// операцией. Заказ рождается в статусе pending.
func (s *Service) CreateOrder(ctx context.Context, date time.Time, total float64, customerID int64) (int64, error) {
	return s.repo.CreateOrder(ctx, date, total, customerID)
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListOrders возвращает заказы по фильтру.
func (s *Service) ListOrders(ctx context.Context, f repository.OrdersFilter) ([]model.Order, error) {
	return s.repo.ListOrders(ctx, f)
}

// ListCustomerOrders возвращает последние заказы клиента.
func (s *Service) ListCustomerOrders(ctx context.Context, customerID int64, limit int) ([]model.Order, error) {
	return s.repo.ListCustomerOrders(ctx, customerID, limit)
}

// RecentOrders возвращает последние заказы.
func (s *Service) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	return s.repo.RecentOrders(ctx, limit)
}

// UpdateOrderDate меняет дату начала размещения необработанного заказа.
func (s *Service) UpdateOrderDate(ctx context.Context, orderID int64, date time.Time) error {
	return s.repo.UpdateOrderDate(ctx, orderID, date)
}

// CancelOrder отменяет необработанный заказ вместе с маркером и связями.
func (s *Service) CancelOrder(ctx context.Context, orderID int64) error {
	return s.repo.DeleteOrder(ctx, orderID)
}

// ProcessOrder переводит заказ из pending в processed.
func (s *Service) ProcessOrder(ctx context.Context, orderID, processorID int64) (*model.ProcessedOrder, error) {
	return s.repo.ProcessOrder(ctx, orderID, processorID)
}

// GetPaymentStatus классифицирует заказ для отображения.
func (s *Service) GetPaymentStatus(ctx context.Context, orderID int64) (model.PaymentStatus, error) {
	return s.repo.GetPaymentStatus(ctx, orderID)
}

// ListPendingOrders возвращает маркеры необработанных заказов.
func (s *Service) ListPendingOrders(ctx context.Context, limit int) ([]model.PendingOrder, error) {
	return s.repo.ListPendingOrders(ctx, limit)
}

// ListProcessedOrders возвращает записи об обработке заказов.
func (s *Service) ListProcessedOrders(ctx context.Context, limit int) ([]model.ProcessedOrder, error) {
	return s.repo.ListProcessedOrders(ctx, limit)
}

// AttachSpot прикрепляет площадку к заказу.
func (s *Service) AttachSpot(ctx context.Context, orderID, spotID int64) error {
	return s.repo.AttachSpot(ctx, orderID, spotID)
}

// DetachSpot открепляет площадку от заказа.
func (s *Service) DetachSpot(ctx context.Context, orderID, spotID int64) (int64, error) {
	return s.repo.DetachSpot(ctx, orderID, spotID)
}

// GetOrdersMetrics возвращает агрегированные показатели по заказам.
func (s *Service) GetOrdersMetrics(ctx context.Context, days int) (*repository.OrdersMetrics, error) {
	return s.repo.GetOrdersMetrics(ctx, days)
}

// OrdersSummary возвращает последние заказы за период.
func (s *Service) OrdersSummary(ctx context.Context, days, limit int) ([]model.Order, error) {
	return s.repo.OrdersSummary(ctx, days, limit)
}

// GetReport возвращает обращение по идентификатору.
func (s *Service) GetReport(ctx context.Context, id int64) (*model.Report, error) {
	return s.repo.GetReport(ctx, id)
}

// ListReports возвращает обращения.
func (s *Service) ListReports(ctx context.Context, status string, limit int) ([]model.Report, error) {
	return s.repo.ListReports(ctx, status, limit)
}

// CreateReport создаёт обращение.
func (s *Service) CreateReport(ctx context.Context, rep *model.Report) (int64, error) {
	if rep.Status == "" {
		rep.Status = model.ReportStatusUnexamined
	}
	return s.repo.CreateReport(ctx, rep)
}

// UpdateReportStatus меняет статус обращения.
func (s *Service) UpdateReportStatus(ctx context.Context, id int64, status model.ReportStatus) error {
	return s.repo.UpdateReportStatus(ctx, id, status)
}

// DeleteReport удаляет обращение.
func (s *Service) DeleteReport(ctx context.Context, id int64) (int64, error) {
	return s.repo.DeleteReport(ctx, id)
}

// GetAccount возвращает учётную запись по идентификатору.
func (s *Service) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// ListAccounts возвращает учётные записи.
func (s *Service) ListAccounts(ctx context.Context, q string, limit int) ([]model.Account, error) {
	return s.repo.ListAccounts(ctx, q, limit)
}

// CreateAccount создаёт учётную запись.
func (s *Service) CreateAccount(ctx context.Context, a *model.Account) (int64, error) {
	return s.repo.CreateAccount(ctx, a)
}

// UpdateAccount выполняет полную замену учётной записи.
func (s *Service) UpdateAccount(ctx context.Context, a *model.Account) error {
	return s.repo.UpdateAccount(ctx, a)
}

// DeleteAccount удаляет учётную запись.
func (s *Service) DeleteAccount(ctx context.Context, id int64) (int64, error) {
	return s.repo.DeleteAccount(ctx, id)
}

// GetOwnerMetrics возвращает показатели для владельца.
func (s *Service) GetOwnerMetrics(ctx context.Context) (*repository.OwnerMetrics, error) {
	return s.repo.GetOwnerMetrics(ctx)
}

// GlobalSearch ищет по всем сущностям одновременно. Пустой запрос даёт
// пустые списки без обращения к хранилищу.
func (s *Service) GlobalSearch(ctx context.Context, q string, perEntityLimit int) (*repository.SearchResult, error) {
	if q == "" {
		return &repository.SearchResult{
			Spots:     []model.Spot{},
			Customers: []model.Customer{},
			Orders:    []model.Order{},
		}, nil
	}
	return s.repo.GlobalSearch(ctx, q, perEntityLimit)
}
