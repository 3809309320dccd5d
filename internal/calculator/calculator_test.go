package calculator

import (
	"math"
	"testing"
	"time"

	"GoldBean/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(start time.Time, prices ...float64) []model.PricePoint {
	points := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Price: p}
	}
	return points
}

func TestSummarize(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	tests := []struct {
		name   string
		prices []float64
		want   model.TrendSummary
	}{
		{"empty", nil, model.EmptyTrendSummary},
		{"single", []float64{780}, model.TrendSummary{High: 780, Low: 780, Average: 780, Current: 800}},
		{"rising", []float64{700, 750, 720, 770}, model.TrendSummary{
			High: 770, Low: 700, Change: 70, ChangePercent: 10, Average: 735, Current: 800,
		}},
		{"zero first", []float64{0, 10}, model.TrendSummary{
			High: 10, Low: 0, Change: 10, ChangePercent: 0, Average: 5, Current: 800,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := 800.0
			if len(tt.prices) == 0 {
				current = 0
			}
			got := Summarize(series(start, tt.prices...), current)
			assert.InDelta(t, tt.want.High, got.High, 1e-9)
			assert.InDelta(t, tt.want.Low, got.Low, 1e-9)
			assert.InDelta(t, tt.want.Change, got.Change, 1e-9)
			assert.InDelta(t, tt.want.ChangePercent, got.ChangePercent, 1e-9)
			assert.InDelta(t, tt.want.Average, got.Average, 1e-9)
			assert.Equal(t, tt.want.Current, got.Current)
			assert.GreaterOrEqual(t, got.High, got.Low)
		})
	}
}

func TestSummarize_EmptyIgnoresCurrent(t *testing.T) {
	assert.Equal(t, model.EmptyTrendSummary, Summarize(nil, 785))
}

func TestFilterWindow(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.Local)
	points := series(now.AddDate(0, 0, -10), 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)

	got := FilterWindow(points, 5, now)
	require.Len(t, got, 6)
	assert.Equal(t, 6.0, got[0].Price)
	assert.Equal(t, 11.0, got[len(got)-1].Price, "points after now are dropped")
}

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = CalculateSMA([]float64{1}, 2)
	assert.Error(t, err)
	_, err = CalculateSMA([]float64{1}, 0)
	assert.Error(t, err)
}

func TestCalculateRSI(t *testing.T) {
	start := time.Now()
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = 700 + float64(i)
	}
	rsi, err := CalculateRSI(series(start, rising...), 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)

	rsi, err = CalculateRSI(series(start, 1, 2, 3), 14)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rsi)
}

func TestComputeIndicators(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 700 + 10*math.Sin(float64(i))
	}
	ind := ComputeIndicators(series(time.Now(), prices...))
	assert.True(t, ind.HasMA30)
	assert.InDelta(t, 700, ind.MA30, 10)
	assert.Greater(t, ind.RSI14, 0.0)
	assert.Less(t, ind.RSI14, 100.0)

	short := ComputeIndicators(series(time.Now(), 700, 710))
	assert.False(t, short.HasMA30)
	assert.Equal(t, 50.0, short.RSI14)
}

func TestValuate(t *testing.T) {
	records := []model.HoldingRecord{
		{Name: "金条", Weight: 10, PurchasePrice: 5000},
		{Name: "金豆", Weight: 2, PurchasePrice: 1400},
	}
	pf := Valuate(records, 600)
	assert.Equal(t, 2, pf.Count)
	assert.InDelta(t, 12, pf.TotalWeight, 1e-9)
	assert.InDelta(t, 6400, pf.TotalInvestment, 1e-9)
	assert.InDelta(t, 7200, pf.CurrentValue, 1e-9)
	assert.InDelta(t, 800, pf.ProfitLoss, 1e-9)
	assert.InDelta(t, 12.5, pf.ProfitLossPercent, 1e-9)

	empty := Valuate(nil, 600)
	assert.Zero(t, empty.ProfitLossPercent)
}
