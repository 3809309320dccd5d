package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPOptions configures the client behind a provider.
type HTTPOptions struct {
	Timeout   time.Duration
	Proxy     string
	UserAgent string
	Headers   map[string]string
}

func newClient(opts HTTPOptions) *resty.Client {
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	client.SetHeaders(opts.Headers)
	return client
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrURLInvalid, raw)
	}
	return nil
}

// get performs a GET and returns the body of a 200 response.
func get(ctx context.Context, client *resty.Client, rawURL string) ([]byte, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}
	resp, err := client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, classify(err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &HTTPStatusError{Code: resp.StatusCode()}
	}
	return resp.Body(), nil
}
