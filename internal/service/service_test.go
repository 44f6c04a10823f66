package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spotlight/spotlight-backend/internal/model"
	"github.com/spotlight/spotlight-backend/internal/repository"
)

// stubRepo переопределяет только нужные тесту методы; обращение к любому
// другому методу контракта вызывает панику из-за nil-вложения.
type stubRepo struct {
	Repository

	mu sync.Mutex

	addFundsCalls   int
	addFundsBalance float64
	addFundsErr     error

	searchCalls int

	createdReport *model.Report

	deleteOrderErr error
}

func (s *stubRepo) AddFunds(ctx context.Context, id int64, amount float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addFundsCalls++
	s.addFundsBalance += amount
	return s.addFundsBalance, s.addFundsErr
}

func (s *stubRepo) SearchSpotsByAddress(ctx context.Context, q string, limit int) ([]model.Spot, error) {
	s.searchCalls++
	return []model.Spot{{ID: 1, Address: "Main St 1"}}, nil
}

func (s *stubRepo) GlobalSearch(ctx context.Context, q string, perEntityLimit int) (*repository.SearchResult, error) {
	s.searchCalls++
	return &repository.SearchResult{}, nil
}

func (s *stubRepo) CreateReport(ctx context.Context, rep *model.Report) (int64, error) {
	s.createdReport = rep
	return 7, nil
}

func (s *stubRepo) DeleteOrder(ctx context.Context, orderID int64) error {
	return s.deleteOrderErr
}

func TestAddFundsRejectsNonPositiveAmount(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	for _, amount := range []float64{0, -1, -0.01} {
		_, err := svc.AddFunds(context.Background(), 1, amount)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}

	if repo.addFundsCalls != 0 {
		t.Fatalf("repository must not be called for invalid amounts, got %d calls", repo.addFundsCalls)
	}
}

func TestAddFundsDelegatesToRepository(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	balance, err := svc.AddFunds(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 50 {
		t.Fatalf("expected balance 50, got %v", balance)
	}
	if repo.addFundsCalls != 1 {
		t.Fatalf("expected 1 repository call, got %d", repo.addFundsCalls)
	}
}

func TestAddFundsConcurrentDepositsAccumulate(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	const workers = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddFunds(context.Background(), 1, 10); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if repo.addFundsBalance != workers*10 {
		t.Fatalf("expected balance %d, got %v", workers*10, repo.addFundsBalance)
	}
}

func TestSearchSpotsEmptyQuerySkipsRepository(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	spots, err := svc.SearchSpots(context.Background(), "", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spots == nil || len(spots) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", spots)
	}
	if repo.searchCalls != 0 {
		t.Fatalf("repository must not be called for empty query")
	}
}

func TestSearchSpotsDelegatesForNonEmptyQuery(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	spots, err := svc.SearchSpots(context.Background(), "Main", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spots) != 1 {
		t.Fatalf("expected 1 spot, got %d", len(spots))
	}
	if repo.searchCalls != 1 {
		t.Fatalf("expected 1 repository call, got %d", repo.searchCalls)
	}
}

func TestGlobalSearchEmptyQueryReturnsEmptyLists(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	res, err := svc.GlobalSearch(context.Background(), "", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Spots == nil || res.Customers == nil || res.Orders == nil {
		t.Fatalf("expected non-nil empty lists, got %#v", res)
	}
	if len(res.Spots)+len(res.Customers)+len(res.Orders) != 0 {
		t.Fatalf("expected empty result, got %#v", res)
	}
	if repo.searchCalls != 0 {
		t.Fatalf("repository must not be called for empty query")
	}
}

func TestCreateReportDefaultsStatus(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	id, err := svc.CreateReport(context.Background(), &model.Report{Content: "broken panel"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected id 7, got %d", id)
	}
	if repo.createdReport.Status != model.ReportStatusUnexamined {
		t.Fatalf("expected default status unexamined, got %q", repo.createdReport.Status)
	}
}

func TestCreateReportKeepsExplicitStatus(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	_, err := svc.CreateReport(context.Background(), &model.Report{
		Content: "resolved already",
		Status:  model.ReportStatusExamined,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.createdReport.Status != model.ReportStatusExamined {
		t.Fatalf("expected explicit status preserved, got %q", repo.createdReport.Status)
	}
}

func TestCancelOrderPropagatesRepositoryErrors(t *testing.T) {
	repo := &stubRepo{deleteOrderErr: repository.ErrNotPending}
	svc := NewService(repo)

	err := svc.CancelOrder(context.Background(), 5)
	if !errors.Is(err, repository.ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}
