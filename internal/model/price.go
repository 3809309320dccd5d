package model

import "time"

// PricePoint is one day of a gold price series, in CNY per gram.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
	Source string    `json:"source"`
}

// PriceSnapshot is the last known current price. Valid implies Price > 0.
type PriceSnapshot struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Valid     bool      `json:"valid"`
}

// TrendSummary describes a price series over a window.
type TrendSummary struct {
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Average       float64 `json:"average"`
	Current       float64 `json:"current"`
}

// EmptyTrendSummary is returned for an empty series.
var EmptyTrendSummary = TrendSummary{}

// Observation is a price recorded after a successful live fetch.
type Observation struct {
	Date       time.Time
	Price      float64
	Source     string
	RecordedAt time.Time
}
