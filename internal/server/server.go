package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/septivank/rental-billing-worker/internal/analytics"
	"github.com/septivank/rental-billing-worker/internal/config"
	"github.com/septivank/rental-billing-worker/internal/domain"
	"github.com/septivank/rental-billing-worker/internal/forecast"
	"github.com/septivank/rental-billing-worker/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Store is the read-side surface the query API needs.
type Store interface {
	ListRooms(ctx context.Context) ([]*domain.Room, error)
	ListInvoices(ctx context.Context, period *domain.Period) ([]domain.Invoice, error)
	ListExpenses(ctx context.Context, period *domain.Period) ([]domain.Expense, error)
}

// Handler serves the read-side query API: dashboard aggregation and
// revenue forecast. Both are pure snapshot computations.
type Handler struct {
	store      Store
	aggregator *analytics.Aggregator
	engine     *forecast.Engine
	cfg        *config.Config
	logger     *zap.Logger
}

// NewHandler creates a new query handler.
func NewHandler(store Store, aggregator *analytics.Aggregator, engine *forecast.Engine, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		store:      store,
		aggregator: aggregator,
		engine:     engine,
		cfg:        cfg,
		logger:     logger,
	}
}

// Routes registers the handler's routes on a mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/dashboard", h.handleDashboard)
	mux.HandleFunc("/api/v1/forecast", h.handleForecast)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())
}

type dashboardResponse struct {
	Month                  int     `json:"month"`
	Year                   int     `json:"year"`
	OccupancyRate          int     `json:"occupancy_rate"`
	TotalBilled            int64   `json:"total_billed"`
	CollectedRevenue       int64   `json:"collected_revenue"`
	Expense                int64   `json:"expense"`
	Profit                 int64   `json:"profit"`
	ProfitMargin           float64 `json:"profit_margin"`
	PrevRevenue            int64   `json:"prev_revenue"`
	TotalElectricityUsage  int64   `json:"total_electricity_usage"`
	TotalElectricityCost   int64   `json:"total_electricity_cost"`
	TotalWaterUsage        int64   `json:"total_water_usage"`
	TotalWaterCost         int64   `json:"total_water_cost"`
	UtilityElectricityBill int64   `json:"utility_electricity_bill"`
	UtilityWaterBill       int64   `json:"utility_water_bill"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	defer func() { metrics.ObserveQuery("dashboard", time.Since(start)) }()

	period := domain.CurrentPeriod()
	rawMonth := r.URL.Query().Get("month")
	rawYear := r.URL.Query().Get("year")
	if rawMonth != "" || rawYear != "" {
		parsed, err := domain.ParsePeriod(rawMonth, rawYear)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		period = parsed
	}

	ctx := r.Context()
	rooms, err := h.store.ListRooms(ctx)
	if err != nil {
		h.respondError(w, "failed to load rooms", err)
		return
	}
	// Unfiltered reads: the bucket also needs the predecessor period
	// for prev_revenue.
	invoices, err := h.store.ListInvoices(ctx, nil)
	if err != nil {
		h.respondError(w, "failed to load invoices", err)
		return
	}
	expenses, err := h.store.ListExpenses(ctx, nil)
	if err != nil {
		h.respondError(w, "failed to load expenses", err)
		return
	}

	bucket := h.aggregator.Aggregate(rooms, invoices, expenses, period)
	h.respondJSON(w, dashboardResponse{
		Month:                  bucket.Period.Month,
		Year:                   bucket.Period.Year,
		OccupancyRate:          bucket.OccupancyRate,
		TotalBilled:            bucket.TotalBilled,
		CollectedRevenue:       bucket.CollectedRevenue,
		Expense:                bucket.Expense,
		Profit:                 bucket.Profit,
		ProfitMargin:           bucket.ProfitMargin,
		PrevRevenue:            bucket.PrevRevenue,
		TotalElectricityUsage:  bucket.TotalElectricityUsage,
		TotalElectricityCost:   bucket.TotalElectricityCost,
		TotalWaterUsage:        bucket.TotalWaterUsage,
		TotalWaterCost:         bucket.TotalWaterCost,
		UtilityElectricityBill: bucket.UtilityElectricityBill,
		UtilityWaterBill:       bucket.UtilityWaterBill,
	})
}

func (h *Handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	defer func() { metrics.ObserveQuery("forecast", time.Since(start)) }()

	months := h.cfg.Forecast.HistoryMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid months parameter", http.StatusBadRequest)
			return
		}
		months = parsed
	}

	ctx := r.Context()
	invoices, err := h.store.ListInvoices(ctx, nil)
	if err != nil {
		h.respondError(w, "failed to load invoices", err)
		return
	}
	expenses, err := h.store.ListExpenses(ctx, nil)
	if err != nil {
		h.respondError(w, "failed to load expenses", err)
		return
	}

	history := analytics.History(invoices, expenses, domain.CurrentPeriod(), months)
	series := make([]forecast.Point, len(history))
	for i, point := range history {
		series[i] = forecast.Point{Revenue: point.Revenue, Expense: point.Expense}
	}

	h.respondJSON(w, h.engine.Forecast(series))
}

func (h *Handler) respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	http.Error(w, msg, http.StatusInternalServerError)
}

// NewServer builds the HTTP server and ties it to the fx lifecycle.
func NewServer(lc fx.Lifecycle, handler *Handler, cfg *config.Config, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	handler.Routes(mux)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServicePort),
		Handler: mux,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting http server", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping http server")
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
