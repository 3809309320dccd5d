package store

import (
	"context"
	"time"

	"GoldBean/internal/model"

	"github.com/google/uuid"
)

// Slots is a durable string key-value store.
type Slots interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ObservationStore keeps one price per calendar day from live fetches.
type ObservationStore interface {
	RecordObservation(ctx context.Context, obs model.Observation) error
	// Observations returns points dated within [from, to], ascending.
	Observations(ctx context.Context, from, to time.Time) ([]model.PricePoint, error)
}

// HoldingStore persists the user's gold records.
type HoldingStore interface {
	UpsertHolding(ctx context.Context, rec model.HoldingRecord) error
	ListHoldings(ctx context.Context) ([]model.HoldingRecord, error)
	DeleteHolding(ctx context.Context, id uuid.UUID) error
}

// Store is everything the service persists locally.
type Store interface {
	Slots
	ObservationStore
	HoldingStore
	Close() error
}

const dayLayout = "2006-01-02"

func dayKey(t time.Time) string {
	return t.Local().Format(dayLayout)
}

func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, time.Local)
}
