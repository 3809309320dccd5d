package provider

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultProbeURL     = "https://httpbin.org/json"
	defaultProbeTimeout = 5 * time.Second
)

// HTTPProber reports whether a well-known endpoint answers 200.
type HTTPProber struct {
	URL    string
	client *resty.Client
}

func NewHTTPProber(rawURL string, opts HTTPOptions) *HTTPProber {
	if rawURL == "" {
		rawURL = DefaultProbeURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultProbeTimeout
	}
	return &HTTPProber{URL: rawURL, client: newClient(opts)}
}

func (p *HTTPProber) Probe(ctx context.Context) error {
	_, err := get(ctx, p.client, p.URL)
	return err
}
