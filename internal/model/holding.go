package model

import (
	"time"

	"github.com/google/uuid"
)

// HoldingRecord is one purchased gold item. Weight is in grams and
// PurchasePrice is the total paid in CNY.
type HoldingRecord struct {
	ID            uuid.UUID `json:"id" yaml:"-"`
	Name          string    `json:"name" yaml:"name"`
	Weight        float64   `json:"weight" yaml:"weight"`
	PurchasePrice float64   `json:"purchase_price" yaml:"purchase_price"`
	PurchaseDate  time.Time `json:"purchase_date" yaml:"purchase_date"`
	Notes         string    `json:"notes,omitempty" yaml:"notes"`
	Photo         []byte    `json:"-" yaml:"-"`
	CreatedAt     time.Time `json:"created_at" yaml:"-"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"-"`
}

// NewHoldingRecord stamps a fresh ID and creation time.
func NewHoldingRecord(name string, weight, purchasePrice float64, purchaseDate time.Time) HoldingRecord {
	now := time.Now()
	return HoldingRecord{
		ID:            uuid.New(),
		Name:          name,
		Weight:        weight,
		PurchasePrice: purchasePrice,
		PurchaseDate:  purchaseDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// DefaultHoldingName is shown for records saved without a name.
const DefaultHoldingName = "黄金首饰"

// DisplayName is Name, or DefaultHoldingName when it is empty.
func (h HoldingRecord) DisplayName() string {
	if h.Name == "" {
		return DefaultHoldingName
	}
	return h.Name
}

// PricePerGram is the purchase cost per gram, 0 when weight is unknown.
func (h HoldingRecord) PricePerGram() float64 {
	if h.Weight <= 0 {
		return 0
	}
	return h.PurchasePrice / h.Weight
}

func (h HoldingRecord) CurrentValue(price float64) float64 {
	return h.Weight * price
}

func (h HoldingRecord) ProfitLoss(price float64) float64 {
	return h.CurrentValue(price) - h.PurchasePrice
}

func (h HoldingRecord) ProfitLossPercent(price float64) float64 {
	if h.PurchasePrice <= 0 {
		return 0
	}
	return h.ProfitLoss(price) / h.PurchasePrice * 100
}

// Portfolio is the valuation of all holdings at one price.
type Portfolio struct {
	Count             int     `json:"count"`
	TotalWeight       float64 `json:"total_weight"`
	TotalInvestment   float64 `json:"total_investment"`
	CurrentValue      float64 `json:"current_value"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossPercent float64 `json:"profit_loss_percent"`
	Price             float64 `json:"price"`
}
