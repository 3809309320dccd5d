package calculator

import (
	"math"
	"time"

	"GoldBean/internal/model"
)

// Summarize computes high, low, average and first-to-last change of an
// ascending series. Current is carried through from currentPrice.
func Summarize(points []model.PricePoint, currentPrice float64) model.TrendSummary {
	if len(points) == 0 {
		return model.EmptyTrendSummary
	}

	high := math.Inf(-1)
	low := math.Inf(1)
	sum := 0.0
	for _, p := range points {
		high = math.Max(high, p.Price)
		low = math.Min(low, p.Price)
		sum += p.Price
	}

	first := points[0].Price
	change := points[len(points)-1].Price - first
	pct := 0.0
	if first > 0 {
		pct = change / first * 100
	}

	return model.TrendSummary{
		High:          high,
		Low:           low,
		Change:        change,
		ChangePercent: pct,
		Average:       sum / float64(len(points)),
		Current:       currentPrice,
	}
}

// FilterWindow keeps points dated within [now-days, now].
func FilterWindow(points []model.PricePoint, days int, now time.Time) []model.PricePoint {
	start := now.AddDate(0, 0, -days)
	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if !p.Date.Before(start) && !p.Date.After(now) {
			out = append(out, p)
		}
	}
	return out
}

// Indicators are the technical readings attached to trend reports.
type Indicators struct {
	MA30  float64
	RSI14 float64
	// HasMA30 is false when the series is shorter than 30 points.
	HasMA30 bool
}

// ComputeIndicators derives MA30 and RSI14 from a series.
func ComputeIndicators(points []model.PricePoint) Indicators {
	var ind Indicators
	if ma, err := CalculateMA30(points); err == nil {
		ind.MA30 = ma
		ind.HasMA30 = true
	}
	ind.RSI14, _ = CalculateRSI(points, 14)
	return ind
}
