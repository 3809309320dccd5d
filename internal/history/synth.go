package history

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"GoldBean/internal/model"
)

const (
	LabelRealistic = "基于中国黄金集团数据"
	LabelMock      = "模拟数据"
	LabelSample    = "示例数据"

	realisticFloor = 400.0
	mockFloor      = 300.0
	sampleFloor    = 700.0

	sampleDays = 30
)

// Synthesize builds a deterministic daily series that ends near
// currentPrice: a linear climb from currentPrice/(1+growth) plus three
// superimposed cycles (yearly, quarterly, monthly). Windows over 1000
// days are sampled every windowDays/1000 days.
func Synthesize(currentPrice float64, windowDays int, label string, now time.Time) []model.PricePoint {
	if windowDays <= 0 {
		return nil
	}
	p := paramsFor(windowDays)
	stride := max(1, windowDays/1000)
	baseline := currentPrice / (1 + p.growth)
	today := startOfDay(now)

	points := make([]model.PricePoint, 0, windowDays/stride+1)
	for i := 0; i < windowDays; i += stride {
		progress := 1 - float64(i)/float64(windowDays)
		trend := baseline + (currentPrice-baseline)*progress

		d := float64(windowDays - i)
		cyclical := math.Sin(d*0.0172)*p.cycleAmp +
			math.Sin(d*0.0689)*p.cycleAmp*0.4 +
			math.Sin(d*0.2094)*p.cycleAmp*0.2

		points = append(points, model.PricePoint{
			Date:   today.AddDate(0, 0, -i),
			Price:  math.Max(realisticFloor, trend+cyclical),
			Source: label,
		})
	}
	sortByDate(points)
	return points
}

// SynthesizeMock builds a noisy demo series around currentPrice.
func SynthesizeMock(currentPrice float64, windowDays int, rng *rand.Rand, now time.Time) []model.PricePoint {
	if windowDays <= 0 {
		return nil
	}
	p := paramsFor(windowDays)
	stride := max(1, windowDays/365)
	today := startOfDay(now)

	points := make([]model.PricePoint, 0, windowDays/stride+1)
	for i := 0; i < windowDays; i += stride {
		d := float64(windowDays - i)
		price := currentPrice + math.Sin(d*p.mockCycle)*p.mockTrendAmp + uniform(rng, p.mockNoiseAmp)
		points = append(points, model.PricePoint{
			Date:   today.AddDate(0, 0, -i),
			Price:  math.Max(mockFloor, price),
			Source: LabelMock,
		})
	}
	sortByDate(points)
	return points
}

// SeedSample is the 30-day series shown before any history was resolved.
func SeedSample(currentPrice float64, rng *rand.Rand, now time.Time) []model.PricePoint {
	base := currentPrice
	if base <= 0 {
		base = 825
	}
	today := startOfDay(now)

	points := make([]model.PricePoint, 0, sampleDays)
	for i := 0; i < sampleDays; i++ {
		d := float64(sampleDays - i)
		price := base + math.Sin(d*0.15)*15 + uniform(rng, 20)
		points = append(points, model.PricePoint{
			Date:   today.AddDate(0, 0, -i),
			Price:  math.Max(sampleFloor, price),
			Source: LabelSample,
		})
	}
	sortByDate(points)
	return points
}

// HasSufficientCoverage reports whether count recorded days are enough to
// stand in for a windowDays series: more than 10 points and at least 60%
// of the expected trading days (70% of calendar days).
func HasSufficientCoverage(count, windowDays int) bool {
	if count <= 10 || windowDays <= 0 {
		return false
	}
	expected := float64(windowDays) * 0.7
	return float64(count)/expected >= 0.6
}

func uniform(rng *rand.Rand, amp float64) float64 {
	return (rng.Float64()*2 - 1) * amp
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sortByDate(points []model.PricePoint) {
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
}
