package provider

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TroyOunceGrams is the number of grams in one troy ounce.
const TroyOunceGrams = 31.1035

var troyOunce = decimal.NewFromFloat(TroyOunceGrams)

// RetailPerGram converts a CNY per troy ounce price to a retail CNY per gram
// price by applying the markup.
func RetailPerGram(perOunce, markup decimal.Decimal) float64 {
	f, _ := perOunce.Div(troyOunce).Mul(markup).Float64()
	return f
}

func parsePositive(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrParse, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q is not positive", ErrParse, s)
	}
	return d, nil
}
