package provider

import "context"

// Quote is a successful price reading in CNY per gram.
type Quote struct {
	Price  float64
	Source string
}

// Provider fetches the current gold price from one external source.
// Implementations must return an error rather than a non-positive price.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (Quote, error)
}

// Prober checks general network reachability. It is consulted only
// after every Provider has failed, to pick the advisory wording.
type Prober interface {
	Probe(ctx context.Context) error
}
