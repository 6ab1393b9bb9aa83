package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/septivank/rental-billing-worker/internal/analytics"
	"github.com/septivank/rental-billing-worker/internal/config"
	"github.com/septivank/rental-billing-worker/internal/domain"
	"github.com/septivank/rental-billing-worker/internal/forecast"
	"github.com/septivank/rental-billing-worker/internal/repository"
	"github.com/septivank/rental-billing-worker/internal/server"
)

func newTestMux(store *repository.MemoryStore) *http.ServeMux {
	cfg := &config.Config{
		Billing:  config.BillingConfig{ElectricitySupplierCategory: "electricity", WaterSupplierCategory: "water"},
		Forecast: config.ForecastConfig{HistoryMonths: 6},
	}
	aggregator := analytics.NewAggregator(analytics.SupplierCategories{
		Electricity: cfg.Billing.ElectricitySupplierCategory,
		Water:       cfg.Billing.WaterSupplierCategory,
	}, zap.NewNop())
	handler := server.NewHandler(store, aggregator, forecast.NewEngine(), cfg, zap.NewNop())

	mux := http.NewServeMux()
	handler.Routes(mux)
	return mux
}

func TestDashboard_ReturnsBucketForRequestedPeriod(t *testing.T) {
	store := repository.NewMemoryStore()
	store.PutRoom(&domain.Room{ID: uuid.New(), Name: "D101", Status: domain.RoomStatusOccupied, Rent: 1000})
	store.PutRoom(&domain.Room{ID: uuid.New(), Name: "D102", Status: domain.RoomStatusAvailable, Rent: 1000})

	period := domain.Period{Month: 7, Year: 2025}
	store.PutExpense(domain.Expense{ID: uuid.New(), Amount: 400_000, Category: "electricity", Period: period})
	mustCommitInvoice(t, store, domain.Invoice{ID: uuid.New(), Period: period, Total: 3_000_000, Paid: true})
	mustCommitInvoice(t, store, domain.Invoice{ID: uuid.New(), Period: domain.Period{Month: 6, Year: 2025}, Total: 2_000_000, Paid: true})

	mux := newTestMux(store)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?month=7&year=2025", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Month            int   `json:"month"`
		Year             int   `json:"year"`
		OccupancyRate    int   `json:"occupancy_rate"`
		CollectedRevenue int64 `json:"collected_revenue"`
		Expense          int64 `json:"expense"`
		Profit           int64 `json:"profit"`
		PrevRevenue      int64 `json:"prev_revenue"`
		ElectricityBill  int64 `json:"utility_electricity_bill"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Month != 7 || resp.Year != 2025 {
		t.Errorf("unexpected period: %d-%d", resp.Year, resp.Month)
	}
	if resp.OccupancyRate != 50 {
		t.Errorf("occupancy: want 50, got %d", resp.OccupancyRate)
	}
	if resp.CollectedRevenue != 3_000_000 {
		t.Errorf("collected: want 3000000, got %d", resp.CollectedRevenue)
	}
	if resp.PrevRevenue != 2_000_000 {
		t.Errorf("prev revenue: want 2000000, got %d", resp.PrevRevenue)
	}
	if resp.Expense != 400_000 || resp.ElectricityBill != 400_000 {
		t.Errorf("expense split: got expense=%d electricity_bill=%d", resp.Expense, resp.ElectricityBill)
	}
	if resp.Profit != 2_600_000 {
		t.Errorf("profit: want 2600000, got %d", resp.Profit)
	}
}

func TestDashboard_BadPeriod(t *testing.T) {
	mux := newTestMux(repository.NewMemoryStore())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?month=13&year=2025", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDashboard_MethodNotAllowed(t *testing.T) {
	mux := newTestMux(repository.NewMemoryStore())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/dashboard", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestForecast_EndpointPredictsFromHistory(t *testing.T) {
	store := repository.NewMemoryStore()
	period := domain.CurrentPeriod()
	for i := 0; i < 3; i++ {
		mustCommitInvoice(t, store, domain.Invoice{ID: uuid.New(), Period: period, Total: 1_000_000, Paid: true})
		period = period.Previous()
	}

	mux := newTestMux(store)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/forecast?months=3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result forecast.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.PredictedRevenue != 1_000_000 {
		t.Errorf("flat history predicts the same revenue, got %d", result.PredictedRevenue)
	}
	if result.Trend != forecast.TrendStable {
		t.Errorf("expected stable trend, got %q", result.Trend)
	}
	if result.Confidence < 10 || result.Confidence > 95 {
		t.Errorf("confidence %d out of bounds", result.Confidence)
	}
}

func TestForecast_InvalidMonths(t *testing.T) {
	mux := newTestMux(repository.NewMemoryStore())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/forecast?months=zero", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	mux := newTestMux(repository.NewMemoryStore())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

// mustCommitInvoice persists an invoice through the store's commit path
// against a throwaway room.
func mustCommitInvoice(t *testing.T, store *repository.MemoryStore, invoice domain.Invoice) {
	t.Helper()
	room := &domain.Room{ID: uuid.New(), Name: "seed", Status: domain.RoomStatusOccupied}
	store.PutRoom(room)
	if err := store.CommitInvoice(context.Background(), room.ID, invoice, room.Meter); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
}
