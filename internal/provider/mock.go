package provider

import (
	"context"
	"sync/atomic"
)

// MockProvider returns a fixed quote or error. Used in development and tests.
type MockProvider struct {
	Label string
	Price float64
	Err   error
	calls atomic.Int32
}

func (m *MockProvider) Name() string {
	if m.Label == "" {
		return "mock"
	}
	return m.Label
}

func (m *MockProvider) Fetch(ctx context.Context) (Quote, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	if m.Err != nil {
		return Quote{}, m.Err
	}
	return Quote{Price: m.Price, Source: m.Name()}, nil
}

// Calls reports how many times Fetch ran.
func (m *MockProvider) Calls() int { return int(m.calls.Load()) }

// MockProber returns Err from every probe.
type MockProber struct {
	Err   error
	calls atomic.Int32
}

func (m *MockProber) Probe(context.Context) error {
	m.calls.Add(1)
	return m.Err
}

func (m *MockProber) Calls() int { return int(m.calls.Load()) }
