package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"GoldBean/internal/model"
	"GoldBean/internal/store"
)

const (
	keyPrice  = "lastGoldPrice"
	keyDate   = "lastGoldPriceDate"
	keySource = "lastGoldPriceSource"
)

// PriceCache is the single slot holding the last successful fetch.
type PriceCache struct {
	slots store.Slots
}

func NewPriceCache(slots store.Slots) *PriceCache {
	return &PriceCache{slots: slots}
}

// Store overwrites the slot.
func (c *PriceCache) Store(ctx context.Context, price float64, ts time.Time, source string) error {
	if err := c.slots.Set(ctx, keyPrice, strconv.FormatFloat(price, 'f', -1, 64)); err != nil {
		return fmt.Errorf("store price: %w", err)
	}
	if err := c.slots.Set(ctx, keyDate, ts.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("store date: %w", err)
	}
	if err := c.slots.Set(ctx, keySource, source); err != nil {
		return fmt.Errorf("store source: %w", err)
	}
	return nil
}

// Load returns the cached snapshot. ok is false when nothing usable was
// ever stored, including a stored price <= 0 or a missing or unreadable
// fetch date.
func (c *PriceCache) Load(ctx context.Context) (model.PriceSnapshot, bool, error) {
	raw, ok, err := c.slots.Get(ctx, keyPrice)
	if err != nil || !ok {
		return model.PriceSnapshot{}, false, err
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price <= 0 {
		return model.PriceSnapshot{}, false, nil
	}

	rawDate, ok, err := c.slots.Get(ctx, keyDate)
	if err != nil || !ok {
		return model.PriceSnapshot{}, false, err
	}
	ts, err := time.Parse(time.RFC3339Nano, rawDate)
	if err != nil {
		return model.PriceSnapshot{}, false, nil
	}

	snap := model.PriceSnapshot{Price: price, Timestamp: ts, Valid: true}
	if source, ok, err := c.slots.Get(ctx, keySource); err != nil {
		return model.PriceSnapshot{}, false, err
	} else if ok {
		snap.Source = source
	}
	return snap, true, nil
}

// IsSameCalendarDay reports whether a and b fall on the same calendar
// day in b's location.
func IsSameCalendarDay(a, b time.Time) bool {
	a = a.In(b.Location())
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
