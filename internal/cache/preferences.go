package cache

import (
	"context"
	"fmt"
	"strconv"

	"GoldBean/internal/store"
)

const (
	keyLaunched    = "hasLaunchedBefore"
	keyUseRealData = "useRealData"
)

// Preferences are user-level flags kept next to the price slot.
type Preferences struct {
	slots store.Slots
}

func NewPreferences(slots store.Slots) *Preferences {
	return &Preferences{slots: slots}
}

// EnsureFirstLaunch applies first-launch defaults once. It reports
// whether this call was the first launch.
func (p *Preferences) EnsureFirstLaunch(ctx context.Context) (bool, error) {
	launched, err := p.getBool(ctx, keyLaunched, false)
	if err != nil {
		return false, err
	}
	if launched {
		return false, nil
	}
	if err := p.SetUseRealData(ctx, true); err != nil {
		return false, err
	}
	if err := p.slots.Set(ctx, keyLaunched, "true"); err != nil {
		return false, fmt.Errorf("mark launched: %w", err)
	}
	return true, nil
}

// UseRealData selects realistic over mock history synthesis. Defaults to true.
func (p *Preferences) UseRealData(ctx context.Context) (bool, error) {
	return p.getBool(ctx, keyUseRealData, true)
}

func (p *Preferences) SetUseRealData(ctx context.Context, v bool) error {
	if err := p.slots.Set(ctx, keyUseRealData, strconv.FormatBool(v)); err != nil {
		return fmt.Errorf("set %s: %w", keyUseRealData, err)
	}
	return nil
}

func (p *Preferences) getBool(ctx context.Context, key string, def bool) (bool, error) {
	raw, ok, err := p.slots.Get(ctx, key)
	if err != nil {
		return def, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, nil
	}
	return v, nil
}
