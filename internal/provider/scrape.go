package provider

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultScrapeURL     = "https://www.chnau99999.com/page/goldPrice"
	defaultScrapeTimeout = 15 * time.Second
	mobileUserAgent      = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15"
)

// Tried in order, most specific first.
var scrapePatterns = []*regexp.Regexp{
	regexp.MustCompile(`<i class="num" id="cur">([0-9.]+)</i>`),
	regexp.MustCompile(`中金实时基础金价：[^0-9]*([0-9]+\.?[0-9]*)`),
	regexp.MustCompile(`<i class="num"[^>]*>([0-9]+\.?[0-9]*)</i>`),
	regexp.MustCompile(`基础金价[：:][^0-9]*([0-9]+\.?[0-9]*)`),
}

// ScrapeProvider reads the base gold price from the China Gold Group page.
type ScrapeProvider struct {
	URL    string
	client *resty.Client
}

func NewScrapeProvider(rawURL string, opts HTTPOptions) *ScrapeProvider {
	if rawURL == "" {
		rawURL = DefaultScrapeURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultScrapeTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = mobileUserAgent
	}
	return &ScrapeProvider{URL: rawURL, client: newClient(opts)}
}

func (p *ScrapeProvider) Name() string { return "中国黄金集团" }

func (p *ScrapeProvider) Fetch(ctx context.Context) (Quote, error) {
	body, err := get(ctx, p.client, p.URL)
	if err != nil {
		return Quote{}, err
	}
	price, err := ParseScrapedPrice(string(body))
	if err != nil {
		return Quote{}, err
	}
	return Quote{Price: price, Source: p.Name()}, nil
}

// ParseScrapedPrice extracts the price from page HTML. The first pattern
// whose capture parses as a positive number wins.
func ParseScrapedPrice(html string) (float64, error) {
	for _, re := range scrapePatterns {
		m := re.FindStringSubmatch(html)
		if len(m) < 2 {
			continue
		}
		d, err := parsePositive(m[1])
		if err != nil {
			continue
		}
		f, _ := d.Float64()
		return f, nil
	}
	return 0, fmt.Errorf("scrape: %w", ErrParse)
}
