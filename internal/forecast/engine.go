package forecast

import (
	"math"
)

// Trend labels for the predicted revenue direction.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// Business phase labels.
const (
	PhaseGrowth   = "growth"
	PhaseStable   = "stable"
	PhaseDecline  = "decline"
	PhaseVolatile = "volatile"
	PhaseRisk     = "risk"
)

// Growth quality labels.
const (
	QualityHealthy  = "healthy"
	QualityWarning  = "warning"
	QualityCritical = "critical"
)

// Point is one month of revenue and expense, oldest first in a series.
type Point struct {
	Revenue int64
	Expense int64
}

// Analysis is the qualitative reading of a forecast.
type Analysis struct {
	Phase       string `json:"phase"`
	Quality     string `json:"quality"`
	Volatility  int    `json:"volatility"`
	Explanation string `json:"explanation"`
}

// Result is a next-period prediction with a confidence estimate.
type Result struct {
	PredictedRevenue     int64     `json:"predicted_revenue"`
	PredictedExpense     int64     `json:"predicted_expense"`
	RevenueGrowthPercent float64   `json:"revenue_growth_percent"`
	ExpenseGrowthPercent float64   `json:"expense_growth_percent"`
	Trend                string    `json:"trend"`
	Confidence           int       `json:"confidence"`
	Analysis             *Analysis `json:"analysis,omitempty"`
}

// Engine predicts next-period revenue and expense by blending a
// weighted moving average (recent bias) with ordinary least squares
// (long-term trend). The blend keeps trend stability while staying
// responsive to recent months. All arithmetic is total: degenerate
// input degrades to a low-confidence flat prediction, never an error.
type Engine struct{}

// NewEngine creates a new forecast engine.
func NewEngine() *Engine {
	return &Engine{}
}

type regression struct {
	slope     float64
	intercept float64
	r2        float64
}

// linearRegression fits value against month index. For fewer than two
// points the fit is flat with zero confidence of fit.
func linearRegression(values []float64) regression {
	n := len(values)
	if n < 2 {
		reg := regression{}
		if n == 1 {
			reg.intercept = values[0]
		}
		return reg
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}

	fn := float64(n)
	denominator := fn*sumX2 - sumX*sumX
	if denominator == 0 {
		return regression{intercept: sumY / fn}
	}

	slope := (fn*sumXY - sumX*sumY) / denominator
	intercept := (sumY - slope*sumX) / fn

	yMean := sumY / fn
	var ssTotal, ssResidual float64
	for i, v := range values {
		predicted := slope*float64(i) + intercept
		ssTotal += (v - yMean) * (v - yMean)
		ssResidual += (v - predicted) * (v - predicted)
	}
	r2 := 0.0
	if ssTotal != 0 {
		r2 = 1 - ssResidual/ssTotal
	}

	return regression{slope: slope, intercept: intercept, r2: r2}
}

// weightedAverage weights month i by i+1, biasing toward recent months.
func weightedAverage(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return values[0]
	}

	var weightedSum, totalWeight float64
	for i, v := range values {
		weight := float64(i + 1)
		weightedSum += v * weight
		totalWeight += weight
	}
	return weightedSum / totalWeight
}

// volatility is the coefficient of variation: stddev over mean.
func volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance) / mean
}

// Forecast predicts the next period from an ordered monthly series,
// oldest first. An empty series yields the zero result.
func (e *Engine) Forecast(series []Point) Result {
	if len(series) == 0 {
		return Result{Trend: TrendStable}
	}

	n := len(series)
	revenues := make([]float64, n)
	expenses := make([]float64, n)
	for i, p := range series {
		revenues[i] = float64(p.Revenue)
		expenses[i] = float64(p.Expense)
	}

	wRevenue := weightedAverage(revenues)
	wExpense := weightedAverage(expenses)

	regRevenue := linearRegression(revenues)
	regExpense := linearRegression(expenses)

	nextIndex := float64(n)
	trendRevenue := math.Max(0, regRevenue.slope*nextIndex+regRevenue.intercept)
	trendExpense := math.Max(0, regExpense.slope*nextIndex+regExpense.intercept)

	// With fewer than four months the regression is unreliable, so the
	// weighted average dominates the blend.
	var trendWeight float64
	switch {
	case n >= 4:
		trendWeight = 0.4
	case n >= 2:
		trendWeight = 0.2
	}
	avgWeight := 1 - trendWeight

	predictedRevenue := int64(math.Round(trendRevenue*trendWeight + wRevenue*avgWeight))
	predictedExpense := int64(math.Round(trendExpense*trendWeight + wExpense*avgWeight))

	currentRevenue := revenues[n-1]
	currentExpense := expenses[n-1]

	var revenueGrowth, expenseGrowth float64
	if currentRevenue > 0 {
		revenueGrowth = (float64(predictedRevenue) - currentRevenue) / currentRevenue * 100
	}
	if currentExpense > 0 {
		expenseGrowth = (float64(predictedExpense) - currentExpense) / currentExpense * 100
	}

	trend := TrendStable
	if revenueGrowth > 1 {
		trend = TrendUp
	} else if revenueGrowth < -1 {
		trend = TrendDown
	}

	vol := volatility(revenues)
	confidence := scoreConfidence(n, vol, regRevenue, trendRevenue, wRevenue)

	return Result{
		PredictedRevenue:     predictedRevenue,
		PredictedExpense:     predictedExpense,
		RevenueGrowthPercent: math.Round(revenueGrowth*10) / 10,
		ExpenseGrowthPercent: math.Round(expenseGrowth*10) / 10,
		Trend:                trend,
		Confidence:           confidence,
		Analysis: &Analysis{
			Phase:       classifyPhase(n, currentRevenue, vol, revenueGrowth, trend),
			Quality:     classifyQuality(currentRevenue, currentExpense, revenueGrowth, expenseGrowth),
			Volatility:  int(math.Round(vol * 100)),
			Explanation: explain(n, vol, revenueGrowth, trend),
		},
	}
}

// scoreConfidence combines sample size, volatility penalty, regression
// fit bonus and the agreement of the two prediction methods into a
// 10..95 score.
func scoreConfidence(n int, vol float64, reg regression, trendValue, weightedValue float64) int {
	base := math.Min(float64(n)*15, 60)
	penalty := math.Min(vol*100, 40)

	var r2Bonus float64
	if n >= 3 {
		r2Bonus = math.Max(0, reg.r2*30)
	}

	var diffPercent float64
	if weightedValue > 0 {
		diffPercent = math.Abs(trendValue-weightedValue) / weightedValue
	}
	var consistencyBonus float64
	switch {
	case diffPercent < 0.1:
		consistencyBonus = 20
	case diffPercent < 0.2:
		consistencyBonus = 10
	}

	confidence := math.Round(base - penalty + r2Bonus + consistencyBonus)
	return int(math.Max(10, math.Min(95, confidence)))
}

func classifyPhase(n int, currentRevenue, vol, revenueGrowth float64, trend string) string {
	switch {
	case currentRevenue == 0 && n > 1:
		return PhaseRisk
	case vol > 0.2:
		return PhaseVolatile
	case revenueGrowth > 5 && trend == TrendUp:
		return PhaseGrowth
	case revenueGrowth < -5 && trend == TrendDown:
		return PhaseDecline
	default:
		return PhaseStable
	}
}

func classifyQuality(currentRevenue, currentExpense, revenueGrowth, expenseGrowth float64) string {
	switch {
	case currentExpense > currentRevenue:
		return QualityCritical
	case revenueGrowth > 0 && expenseGrowth >= revenueGrowth*1.5:
		return QualityWarning
	default:
		return QualityHealthy
	}
}

func explain(n int, vol, revenueGrowth float64, trend string) string {
	switch {
	case n < 2:
		return "Not enough history to analyze a trend yet."
	case vol > 0.2:
		return "Figures swing heavily between months; treat this forecast as high risk."
	case trend == TrendUp && revenueGrowth > 5:
		return "Positive growth trend driven by recent momentum."
	case trend == TrendDown:
		return "Mild downward trend over the recent months."
	default:
		return "Operations are steady with no major swings."
	}
}
