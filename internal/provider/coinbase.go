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
	DefaultCoinbaseURL     = "https://api.coinbase.com/v2/exchange-rates?currency=XAU"
	defaultCoinbaseTimeout = 20 * time.Second
)

// CoinbaseProvider reads the CNY price of one troy ounce (XAU) from the
// Coinbase exchange-rate endpoint.
type CoinbaseProvider struct {
	URL    string
	Markup float64
	client *resty.Client
}

type coinbaseResponse struct {
	Data struct {
		Currency string            `json:"currency"`
		Rates    map[string]string `json:"rates"`
	} `json:"data"`
}

func NewCoinbaseProvider(rawURL string, markup float64, opts HTTPOptions) *CoinbaseProvider {
	if rawURL == "" {
		rawURL = DefaultCoinbaseURL
	}
	if markup <= 0 {
		markup = DefaultMarkup
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultCoinbaseTimeout
	}
	return &CoinbaseProvider{URL: rawURL, Markup: markup, client: newClient(opts)}
}

func (p *CoinbaseProvider) Name() string { return "Coinbase" }

func (p *CoinbaseProvider) Fetch(ctx context.Context) (Quote, error) {
	body, err := get(ctx, p.client, p.URL)
	if err != nil {
		return Quote{}, err
	}
	var resp coinbaseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	raw, ok := resp.Data.Rates["CNY"]
	if !ok {
		return Quote{}, fmt.Errorf("%w: missing CNY rate", ErrDecode)
	}
	perOunce, err := parsePositive(raw)
	if err != nil {
		return Quote{}, fmt.Errorf("coinbase: %w", err)
	}
	return Quote{
		Price:  RetailPerGram(perOunce, decimal.NewFromFloat(p.Markup)),
		Source: p.Name(),
	}, nil
}
