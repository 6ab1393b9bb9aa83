package analytics

import (
	"github.com/septivank/rental-billing-worker/internal/domain"
)

// MonthlyPoint is one month of collected revenue and expense, the
// forecast engine's input unit.
type MonthlyPoint struct {
	Period  domain.Period
	Revenue int64
	Expense int64
}

// History builds the trailing series of months ending at end, oldest
// first, zero-filled for months with no records. Revenue counts paid
// invoices only; expenses resolve their period the same way the
// aggregator does, silently dropping rows with neither period nor
// date (History has no failure modes).
func History(invoices []domain.Invoice, expenses []domain.Expense, end domain.Period, months int) []MonthlyPoint {
	if months <= 0 {
		return nil
	}

	revenue := make(map[domain.Period]int64)
	for _, inv := range invoices {
		if inv.Paid {
			revenue[inv.Period] += inv.Total
		}
	}

	expense := make(map[domain.Period]int64)
	for _, exp := range expenses {
		p, ok := exp.ResolvePeriod()
		if !ok {
			continue
		}
		expense[p] += exp.Amount
	}

	series := make([]MonthlyPoint, months)
	period := end
	for i := months - 1; i >= 0; i-- {
		series[i] = MonthlyPoint{
			Period:  period,
			Revenue: revenue[period],
			Expense: expense[period],
		}
		period = period.Previous()
	}
	return series
}
