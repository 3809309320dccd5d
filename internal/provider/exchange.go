package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	DefaultExchangeURL     = "https://api.exchangerate-api.com/v4/latest/USD"
	DefaultBasePriceUSD    = 2650.0
	DefaultMarkup          = 1.25
	defaultExchangeTimeout = 10 * time.Second
)

// ExchangeRateProvider derives a retail price from a fixed USD per ounce
// base and the live USD/CNY rate.
type ExchangeRateProvider struct {
	URL          string
	BasePriceUSD float64
	Markup       float64
	client       *resty.Client
}

type exchangeRateResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

func NewExchangeRateProvider(rawURL string, basePriceUSD, markup float64, opts HTTPOptions) *ExchangeRateProvider {
	if rawURL == "" {
		rawURL = DefaultExchangeURL
	}
	if basePriceUSD <= 0 {
		basePriceUSD = DefaultBasePriceUSD
	}
	if markup <= 0 {
		markup = DefaultMarkup
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultExchangeTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "GoldBean/1.0"
	}
	if opts.Headers == nil {
		opts.Headers = map[string]string{"Accept": "application/json"}
	}
	return &ExchangeRateProvider{
		URL:          rawURL,
		BasePriceUSD: basePriceUSD,
		Markup:       markup,
		client:       newClient(opts),
	}
}

func (p *ExchangeRateProvider) Name() string { return "ExchangeRate" }

func (p *ExchangeRateProvider) Fetch(ctx context.Context) (Quote, error) {
	body, err := get(ctx, p.client, p.URL)
	if err != nil {
		return Quote{}, err
	}
	var resp exchangeRateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	rate, ok := resp.Rates["CNY"]
	if !ok || rate <= 0 {
		return Quote{}, fmt.Errorf("%w: missing CNY rate", ErrDecode)
	}

	perOunce := decimal.NewFromFloat(p.BasePriceUSD).Mul(decimal.NewFromFloat(rate))
	return Quote{
		Price:  RetailPerGram(perOunce, decimal.NewFromFloat(p.Markup)),
		Source: p.Name(),
	}, nil
}
