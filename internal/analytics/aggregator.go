package analytics

import (
	"math"

	"github.com/septivank/rental-billing-worker/internal/domain"
	"go.uber.org/zap"
)

// SupplierCategories names the expense categories treated as utility
// bills paid to the upstream supplier.
type SupplierCategories struct {
	Electricity string
	Water       string
}

// MonthlyBucket is the aggregated financial picture of one period.
// Recomputed on demand; never persisted.
type MonthlyBucket struct {
	Period        domain.Period
	OccupancyRate int

	TotalBilled      int64
	CollectedRevenue int64
	Expense          int64
	Profit           int64
	ProfitMargin     float64
	PrevRevenue      int64

	TotalElectricityUsage int64
	TotalElectricityCost  int64
	TotalWaterUsage       int64
	TotalWaterCost        int64

	UtilityElectricityBill int64
	UtilityWaterBill       int64
}

// Aggregator rolls raw invoice and expense records into monthly
// buckets. It is total over any well-formed input: malformed rows are
// skipped with a warning, never aborting the whole aggregation.
type Aggregator struct {
	supplier SupplierCategories
	logger   *zap.Logger
}

// NewAggregator creates a new period aggregator.
func NewAggregator(supplier SupplierCategories, logger *zap.Logger) *Aggregator {
	return &Aggregator{supplier: supplier, logger: logger}
}

// Aggregate computes the bucket for one period from a snapshot of
// rooms, invoices and expenses.
func (a *Aggregator) Aggregate(rooms []*domain.Room, invoices []domain.Invoice, expenses []domain.Expense, period domain.Period) MonthlyBucket {
	bucket := MonthlyBucket{Period: period}

	occupied := 0
	for _, room := range rooms {
		if room.Status == domain.RoomStatusOccupied {
			occupied++
		}
	}
	if len(rooms) > 0 {
		bucket.OccupancyRate = int(math.Round(float64(occupied) / float64(len(rooms)) * 100))
	}

	prev := period.Previous()
	for _, inv := range invoices {
		if inv.Period.Equal(prev) && inv.Paid {
			bucket.PrevRevenue += inv.Total
		}
		if !inv.Period.Equal(period) {
			continue
		}
		bucket.TotalBilled += inv.Total
		if inv.Paid {
			bucket.CollectedRevenue += inv.Total
		}
		bucket.TotalElectricityUsage += inv.ElectricityUsage
		bucket.TotalElectricityCost += inv.ElectricityCost
		bucket.TotalWaterUsage += inv.WaterUsage
		bucket.TotalWaterCost += inv.WaterCost
	}

	for _, exp := range expenses {
		expPeriod, ok := exp.ResolvePeriod()
		if !ok {
			a.logger.Warn("skipping expense without period or date",
				zap.String("expense_id", exp.ID.String()),
				zap.String("title", exp.Title),
			)
			continue
		}
		if !expPeriod.Equal(period) {
			continue
		}
		bucket.Expense += exp.Amount
		switch exp.Category {
		case a.supplier.Electricity:
			bucket.UtilityElectricityBill += exp.Amount
		case a.supplier.Water:
			bucket.UtilityWaterBill += exp.Amount
		}
	}

	bucket.Profit = bucket.CollectedRevenue - bucket.Expense
	if bucket.CollectedRevenue > 0 {
		bucket.ProfitMargin = float64(bucket.Profit) / float64(bucket.CollectedRevenue) * 100
	}

	return bucket
}
