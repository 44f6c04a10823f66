package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spotlight/spotlight-backend/internal/model"
	"github.com/spotlight/spotlight-backend/internal/repository"
	"github.com/spotlight/spotlight-backend/internal/service"
)

// stubService переопределяет только методы, нужные конкретному тесту;
// вызов любого другого метода контракта паникует из-за nil-вложения.
type stubService struct {
	Service

	createOrderID  int64
	createOrderErr error

	updateOrderDateErr error
	cancelOrderErr     error

	paymentStatus    model.PaymentStatus
	paymentStatusErr error

	addFundsBalance float64
	addFundsErr     error

	deleteCustomerRows int64
	deleteCustomerErr  error

	updateSpotStatusSpot *model.Spot
	updateSpotStatusErr  error

	searchSpots    []model.Spot
	searchSpotsErr error

	attachSpotErr error
	detachRows    int64
	detachErr     error

	updateSpotFieldsGot map[string]any
	updateSpotFieldsErr error

	createSpotGot *model.Spot
	createSpotID  int64

	processedOrders []model.ProcessedOrder
}

func (s *stubService) CreateOrder(ctx context.Context, date time.Time, total float64, customerID int64) (int64, error) {
	return s.createOrderID, s.createOrderErr
}

func (s *stubService) UpdateOrderDate(ctx context.Context, orderID int64, date time.Time) error {
	return s.updateOrderDateErr
}

func (s *stubService) CancelOrder(ctx context.Context, orderID int64) error {
	return s.cancelOrderErr
}

func (s *stubService) GetPaymentStatus(ctx context.Context, orderID int64) (model.PaymentStatus, error) {
	return s.paymentStatus, s.paymentStatusErr
}

func (s *stubService) AddFunds(ctx context.Context, id int64, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, service.ErrInvalidAmount
	}
	return s.addFundsBalance, s.addFundsErr
}

func (s *stubService) DeleteCustomer(ctx context.Context, id int64) (int64, error) {
	return s.deleteCustomerRows, s.deleteCustomerErr
}

func (s *stubService) UpdateSpotStatus(ctx context.Context, id int64, status model.SpotStatus) (*model.Spot, error) {
	return s.updateSpotStatusSpot, s.updateSpotStatusErr
}

func (s *stubService) SearchSpots(ctx context.Context, q string, limit int) ([]model.Spot, error) {
	if q == "" {
		return []model.Spot{}, nil
	}
	return s.searchSpots, s.searchSpotsErr
}

func (s *stubService) UpdateSpotFields(ctx context.Context, id int64, fields map[string]any) error {
	s.updateSpotFieldsGot = fields
	return s.updateSpotFieldsErr
}

func (s *stubService) CreateSpot(ctx context.Context, spot *model.Spot) (int64, error) {
	s.createSpotGot = spot
	return s.createSpotID, nil
}

func (s *stubService) ListProcessedOrders(ctx context.Context, limit int) ([]model.ProcessedOrder, error) {
	return s.processedOrders, nil
}

func (s *stubService) AttachSpot(ctx context.Context, orderID, spotID int64) error {
	return s.attachSpotErr
}

func (s *stubService) DetachSpot(ctx context.Context, orderID, spotID int64) (int64, error) {
	return s.detachRows, s.detachErr
}

func newTestRouter(t *testing.T, svc Service) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	h := NewHandler(svc, logger)
	return NewRouter(h, logger)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestCreateOrder_Success(t *testing.T) {
	router := newTestRouter(t, &stubService{createOrderID: 42})

	rec := doRequest(t, router, http.MethodPost, "/orders", map[string]any{
		"cID":   int64(7),
		"date":  "2026-09-01",
		"total": 1500.0,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["orderID"] != float64(42) {
		t.Fatalf("expected orderID 42, got %v", body["orderID"])
	}
}

func TestCreateOrder_MissingFieldsAllNamed(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	rec := doRequest(t, router, http.MethodPost, "/orders", map[string]any{
		"total": 100.0,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	msg, _ := decodeBody(t, rec)["error"].(string)
	for _, field := range []string{"cID", "date"} {
		if !bytes.Contains([]byte(msg), []byte(field)) {
			t.Fatalf("error message must name %q, got %q", field, msg)
		}
	}
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	router := newTestRouter(t, &stubService{createOrderErr: repository.ErrNoCustomer})

	rec := doRequest(t, router, http.MethodPost, "/orders", map[string]any{
		"cID":  int64(999),
		"date": "2026-09-01",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateOrderDate_AlreadyProcessed(t *testing.T) {
	router := newTestRouter(t, &stubService{updateOrderDateErr: repository.ErrNotPending})

	rec := doRequest(t, router, http.MethodPut, "/orders", map[string]any{
		"orderID": int64(5),
		"date":    "2026-10-01",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for processed order, got %d", rec.Code)
	}
}

func TestCancelOrder_NotFound(t *testing.T) {
	router := newTestRouter(t, &stubService{cancelOrderErr: repository.ErrNotFound})

	rec := doRequest(t, router, http.MethodDelete, "/orders?orderID=5", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCancelOrder_MissingID(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	rec := doRequest(t, router, http.MethodDelete, "/orders", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetPaymentStatus_Unknown(t *testing.T) {
	router := newTestRouter(t, &stubService{paymentStatus: model.PaymentStatusUnknown})

	rec := doRequest(t, router, http.MethodGet, "/orders/5/payment", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["payment_status"] != "UNKNOWN" {
		t.Fatalf("expected UNKNOWN, got %v", body["payment_status"])
	}
}

func TestAddFunds_NonPositiveAmount(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	for _, amount := range []float64{0, -5} {
		rec := doRequest(t, router, http.MethodPost, "/customer/1/funds", map[string]any{
			"amount": amount,
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("amount %v: expected 400, got %d", amount, rec.Code)
		}
	}
}

func TestAddFunds_Success(t *testing.T) {
	router := newTestRouter(t, &stubService{addFundsBalance: 150})

	rec := doRequest(t, router, http.MethodPost, "/customer/1/funds", map[string]any{
		"amount": 50.0,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["balance"] != float64(150) {
		t.Fatalf("expected balance 150, got %v", body["balance"])
	}
}

func TestDeleteCustomer_HasOrdersConflict(t *testing.T) {
	router := newTestRouter(t, &stubService{deleteCustomerErr: repository.ErrCustomerHasOrders})

	rec := doRequest(t, router, http.MethodDelete, "/customer/3", nil)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestUpdateSpotStatus_InvalidValue(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	rec := doRequest(t, router, http.MethodPut, "/salesman/spots/1/status", map[string]any{
		"status": "broken",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status, got %d", rec.Code)
	}
}

func TestUpdateSpotStatus_ReturnsUpdatedSpot(t *testing.T) {
	spot := &model.Spot{ID: 1, Status: model.SpotStatusInUse, Address: "Main St 1"}
	router := newTestRouter(t, &stubService{updateSpotStatusSpot: spot})

	rec := doRequest(t, router, http.MethodPut, "/owner/spots/1/status", map[string]any{
		"status": "inuse",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "inuse" {
		t.Fatalf("expected updated spot in response, got %v", body)
	}
}

func TestUpdateSpot_PartialUpdatePassesEditableFields(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc)

	rec := doRequest(t, router, http.MethodPut, "/spots/1", map[string]any{
		"price":           2500.0,
		"estViewPerMonth": 12000.0,
		"wat":             "ignored downstream",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got := svc.updateSpotFieldsGot
	if got == nil {
		t.Fatalf("service was not called")
	}
	if got["price"] != float64(2500) {
		t.Fatalf("expected price 2500, got %v", got["price"])
	}
	if v, ok := got["estViewPerMonth"].(int64); !ok || v != 12000 {
		t.Fatalf("expected estViewPerMonth coerced to int64 12000, got %T %v",
			got["estViewPerMonth"], got["estViewPerMonth"])
	}
}

func TestUpdateSpot_InvalidStatusRejectedBeforeStorage(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc)

	rec := doRequest(t, router, http.MethodPut, "/spots/1", map[string]any{
		"status": "broken",
		"price":  100.0,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status, got %d", rec.Code)
	}
	if svc.updateSpotFieldsGot != nil {
		t.Fatalf("service must not be called when status is invalid")
	}
}

func TestUpdateSpot_InvalidViewsType(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc)

	rec := doRequest(t, router, http.MethodPut, "/spots/1", map[string]any{
		"estViewPerMonth": "a lot",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric views, got %d", rec.Code)
	}
	if svc.updateSpotFieldsGot != nil {
		t.Fatalf("service must not be called for malformed field")
	}
}

func TestUpdateSpot_NoEditableFields(t *testing.T) {
	svc := &stubService{updateSpotFieldsErr: repository.ErrNoEditableFields}
	router := newTestRouter(t, svc)

	rec := doRequest(t, router, http.MethodPut, "/spots/1", map[string]any{
		"wat": "only unknown keys",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty editable set, got %d", rec.Code)
	}
}

func TestUpdateSpot_NotFound(t *testing.T) {
	svc := &stubService{updateSpotFieldsErr: repository.ErrNotFound}
	router := newTestRouter(t, svc)

	rec := doRequest(t, router, http.MethodPut, "/spots/99", map[string]any{
		"price": 100.0,
	})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSpotsNear_MissingParams(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	rec := doRequest(t, router, http.MethodGet, "/spots/near?lat=55.75", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearchSpots_EmptyQuery(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	rec := doRequest(t, router, http.MethodGet, "/spots/search", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var spots []model.Spot
	if err := json.Unmarshal(rec.Body.Bytes(), &spots); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(spots) != 0 {
		t.Fatalf("expected empty array, got %d spots", len(spots))
	}
}

func TestAttachSpot_Created(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	rec := doRequest(t, router, http.MethodPost, "/salesman/spotorders/10/20", nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	added, ok := body["added"].(map[string]any)
	if !ok {
		t.Fatalf("expected added object, got %v", body)
	}
	if added["orderID"] != float64(20) || added["spotID"] != float64(10) {
		t.Fatalf("unexpected link in response: %v", added)
	}
}

func TestDetachSpot_ReportsRowsAffected(t *testing.T) {
	router := newTestRouter(t, &stubService{detachRows: 2})

	rec := doRequest(t, router, http.MethodDelete, "/salesman/spotorders/10/20", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["rows_affected"] != float64(2) {
		t.Fatalf("expected rows_affected 2, got %v", body["rows_affected"])
	}
}

func TestGenericInsert_UnknownEntity(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	rec := doRequest(t, router, http.MethodPost, "/o_and_m/insert", map[string]any{
		"entity": "warehouse",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGenericInsert_SpotMinimalFields(t *testing.T) {
	svc := &stubService{createSpotID: 11}
	router := newTestRouter(t, svc)

	rec := doRequest(t, router, http.MethodPost, "/o_and_m/insert", map[string]any{
		"entity":     "spot",
		"price":      900.0,
		"contactTel": "+7-900-000-00-00",
		"address":    "Nevsky 5",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if svc.createSpotGot == nil {
		t.Fatalf("service was not called")
	}
	if svc.createSpotGot.Status != model.SpotStatusFree {
		t.Fatalf("expected default status free, got %q", svc.createSpotGot.Status)
	}

	body := decodeBody(t, rec)
	if body["spotID"] != float64(11) {
		t.Fatalf("expected spotID 11, got %v", body["spotID"])
	}
}

func TestGenericInsert_SpotMissingFieldsAllNamed(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	rec := doRequest(t, router, http.MethodPost, "/o_and_m/insert", map[string]any{
		"entity": "spot",
		"price":  900.0,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	msg, _ := decodeBody(t, rec)["error"].(string)
	for _, field := range []string{"contactTel", "address"} {
		if !bytes.Contains([]byte(msg), []byte(field)) {
			t.Fatalf("error message must name %q, got %q", field, msg)
		}
	}
}

func TestGenericInsert_OrderRequiresTotal(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	rec := doRequest(t, router, http.MethodPost, "/o_and_m/insert", map[string]any{
		"entity": "order",
		"cID":    int64(1),
		"date":   "2026-09-01",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	msg, _ := decodeBody(t, rec)["error"].(string)
	if !bytes.Contains([]byte(msg), []byte("total")) {
		t.Fatalf("error message must name total, got %q", msg)
	}
}

func TestGenericInsert_MissingEntity(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	rec := doRequest(t, router, http.MethodPost, "/o_and_m/insert", map[string]any{
		"price": 100.0,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSalesmanOrdersHistory(t *testing.T) {
	processed := []model.ProcessedOrder{
		{OrderID: 3, ProcessorID: 1},
		{OrderID: 2, ProcessorID: 1},
	}
	router := newTestRouter(t, &stubService{processedOrders: processed})

	rec := doRequest(t, router, http.MethodGet, "/salesman/orders/history", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got []model.ProcessedOrder
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 || got[0].OrderID != 3 {
		t.Fatalf("unexpected history: %#v", got)
	}
}

func TestRouter_UnknownPath(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	rec := doRequest(t, router, http.MethodGet, "/nope", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	if decodeBody(t, rec)["error"] == nil {
		t.Fatalf("expected JSON error body, got %q", rec.Body.String())
	}
}
