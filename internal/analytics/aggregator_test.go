package analytics_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/septivank/rental-billing-worker/internal/analytics"
	"github.com/septivank/rental-billing-worker/internal/domain"
)

var suppliers = analytics.SupplierCategories{Electricity: "electricity", Water: "water"}

func room(status string) *domain.Room {
	return &domain.Room{ID: uuid.New(), Name: "room", Status: status, Rent: 1000}
}

func invoice(period domain.Period, total int64, paid bool) domain.Invoice {
	return domain.Invoice{
		ID:     uuid.New(),
		RoomID: uuid.New(),
		Period: period,
		Total:  total,
		Paid:   paid,
	}
}

func TestAggregate_RevenueSplitsBilledAndCollected(t *testing.T) {
	period := domain.Period{Month: 7, Year: 2025}
	invoices := []domain.Invoice{
		invoice(period, 3_000_000, true),
		invoice(period, 2_500_000, false),
		invoice(domain.Period{Month: 5, Year: 2025}, 9_000_000, true),
	}

	agg := analytics.NewAggregator(suppliers, zap.NewNop())
	bucket := agg.Aggregate(nil, invoices, nil, period)

	if bucket.TotalBilled != 5_500_000 {
		t.Errorf("total billed: want 5500000, got %d", bucket.TotalBilled)
	}
	if bucket.CollectedRevenue != 3_000_000 {
		t.Errorf("collected: want 3000000, got %d", bucket.CollectedRevenue)
	}
}

func TestAggregate_PrevRevenueCountsPaidPreviousMonth(t *testing.T) {
	period := domain.Period{Month: 1, Year: 2025}
	invoices := []domain.Invoice{
		invoice(domain.Period{Month: 12, Year: 2024}, 4_000_000, true),
		invoice(domain.Period{Month: 12, Year: 2024}, 1_000_000, false),
	}

	agg := analytics.NewAggregator(suppliers, zap.NewNop())
	bucket := agg.Aggregate(nil, invoices, nil, period)

	if bucket.PrevRevenue != 4_000_000 {
		t.Errorf("prev revenue across year boundary: want 4000000, got %d", bucket.PrevRevenue)
	}
}

func TestAggregate_OccupancyRounds(t *testing.T) {
	rooms := []*domain.Room{
		room(domain.RoomStatusOccupied),
		room(domain.RoomStatusOccupied),
		room(domain.RoomStatusAvailable),
	}

	agg := analytics.NewAggregator(suppliers, zap.NewNop())
	bucket := agg.Aggregate(rooms, nil, nil, domain.Period{Month: 7, Year: 2025})

	if bucket.OccupancyRate != 67 {
		t.Errorf("occupancy: want 67, got %d", bucket.OccupancyRate)
	}

	empty := agg.Aggregate(nil, nil, nil, domain.Period{Month: 7, Year: 2025})
	if empty.OccupancyRate != 0 {
		t.Errorf("no rooms yields zero occupancy, got %d", empty.OccupancyRate)
	}
}

func TestAggregate_ExpensesAndSupplierBills(t *testing.T) {
	period := domain.Period{Month: 7, Year: 2025}
	expenses := []domain.Expense{
		{ID: uuid.New(), Amount: 500_000, Category: "electricity", Period: period},
		{ID: uuid.New(), Amount: 200_000, Category: "water", Period: period},
		{ID: uuid.New(), Amount: 300_000, Category: "repair", Period: period},
		// Legacy record: no explicit period, date drives attribution.
		{ID: uuid.New(), Amount: 100_000, Category: "repair", Date: time.Date(2025, time.July, 3, 0, 0, 0, 0, time.UTC)},
		// Different month, must not count.
		{ID: uuid.New(), Amount: 900_000, Category: "repair", Period: domain.Period{Month: 6, Year: 2025}},
		// Neither period nor date: skipped, not fatal.
		{ID: uuid.New(), Amount: 800_000, Category: "repair"},
	}

	agg := analytics.NewAggregator(suppliers, zap.NewNop())
	bucket := agg.Aggregate(nil, nil, expenses, period)

	if bucket.Expense != 1_100_000 {
		t.Errorf("expense: want 1100000, got %d", bucket.Expense)
	}
	if bucket.UtilityElectricityBill != 500_000 {
		t.Errorf("electricity bill: want 500000, got %d", bucket.UtilityElectricityBill)
	}
	if bucket.UtilityWaterBill != 200_000 {
		t.Errorf("water bill: want 200000, got %d", bucket.UtilityWaterBill)
	}
}

func TestAggregate_ProfitAndMargin(t *testing.T) {
	period := domain.Period{Month: 7, Year: 2025}
	invoices := []domain.Invoice{invoice(period, 4_000_000, true)}
	expenses := []domain.Expense{{ID: uuid.New(), Amount: 1_000_000, Category: "repair", Period: period}}

	agg := analytics.NewAggregator(suppliers, zap.NewNop())
	bucket := agg.Aggregate(nil, invoices, expenses, period)

	if bucket.Profit != 3_000_000 {
		t.Errorf("profit: want 3000000, got %d", bucket.Profit)
	}
	if math.Abs(bucket.ProfitMargin-75) > 1e-9 {
		t.Errorf("margin: want 75, got %f", bucket.ProfitMargin)
	}
}

func TestAggregate_ZeroCollectedMeansZeroMargin(t *testing.T) {
	period := domain.Period{Month: 7, Year: 2025}
	expenses := []domain.Expense{{ID: uuid.New(), Amount: 1_000_000, Category: "repair", Period: period}}

	agg := analytics.NewAggregator(suppliers, zap.NewNop())
	bucket := agg.Aggregate(nil, nil, expenses, period)

	if bucket.Profit != -1_000_000 {
		t.Errorf("profit: want -1000000, got %d", bucket.Profit)
	}
	if bucket.ProfitMargin != 0 {
		t.Errorf("margin with zero collected must be 0, got %f", bucket.ProfitMargin)
	}
}

func TestAggregate_UtilityUsageTotals(t *testing.T) {
	period := domain.Period{Month: 7, Year: 2025}
	invoices := []domain.Invoice{
		{ID: uuid.New(), Period: period, ElectricityUsage: 40, ElectricityCost: 140_000, WaterUsage: 5, WaterCost: 75_000},
		{ID: uuid.New(), Period: period, ElectricityUsage: 60, ElectricityCost: 210_000, WaterUsage: 7, WaterCost: 105_000},
	}

	agg := analytics.NewAggregator(suppliers, zap.NewNop())
	bucket := agg.Aggregate(nil, invoices, nil, period)

	if bucket.TotalElectricityUsage != 100 || bucket.TotalElectricityCost != 350_000 {
		t.Errorf("electricity totals: got usage=%d cost=%d", bucket.TotalElectricityUsage, bucket.TotalElectricityCost)
	}
	if bucket.TotalWaterUsage != 12 || bucket.TotalWaterCost != 180_000 {
		t.Errorf("water totals: got usage=%d cost=%d", bucket.TotalWaterUsage, bucket.TotalWaterCost)
	}
}
