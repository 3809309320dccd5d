package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"GoldBean/internal/model"

	"github.com/google/uuid"
)

// fileState is the on-disk layout of FileStore.
type fileState struct {
	Slots        map[string]string      `json:"slots"`
	Observations map[string]observation `json:"observations"`
	Holdings     []model.HoldingRecord  `json:"holdings"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

type observation struct {
	Price      float64   `json:"price"`
	Source     string    `json:"source"`
	RecordedAt time.Time `json:"recorded_at"`
}

// FileStore keeps all state in a single JSON file, rewritten on every change.
type FileStore struct {
	path  string
	mu    sync.Mutex
	state fileState
}

// NewFileStore loads the file at path. A missing file yields an empty store.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read state: %w", err)
	default:
		if err := json.Unmarshal(data, &fs.state); err != nil {
			return nil, fmt.Errorf("parse state: %w", err)
		}
	}
	if fs.state.Slots == nil {
		fs.state.Slots = map[string]string{}
	}
	if fs.state.Observations == nil {
		fs.state.Observations = map[string]observation{}
	}
	return fs, nil
}

// save must be called with mu held.
func (f *FileStore) save() error {
	f.state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(f.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.state.Slots[key]
	return v, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Slots[key] = value
	return f.save()
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.state.Slots, key)
	return f.save()
}

func (f *FileStore) RecordObservation(_ context.Context, obs model.Observation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Observations[dayKey(obs.Date)] = observation{
		Price:      obs.Price,
		Source:     obs.Source,
		RecordedAt: obs.RecordedAt,
	}
	return f.save()
}

func (f *FileStore) Observations(_ context.Context, from, to time.Time) ([]model.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lo, hi := dayKey(from), dayKey(to)
	var points []model.PricePoint
	for day, obs := range f.state.Observations {
		if day < lo || day > hi {
			continue
		}
		date, err := parseDay(day)
		if err != nil {
			continue
		}
		points = append(points, model.PricePoint{Date: date, Price: obs.Price, Source: obs.Source})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func (f *FileStore) UpsertHolding(_ context.Context, rec model.HoldingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rec.ID == uuid.Nil {
		return fmt.Errorf("holding id is required")
	}
	now := time.Now()
	rec.UpdatedAt = now
	for i, existing := range f.state.Holdings {
		if existing.ID == rec.ID {
			rec.CreatedAt = existing.CreatedAt
			f.state.Holdings[i] = rec
			return f.save()
		}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	f.state.Holdings = append(f.state.Holdings, rec)
	return f.save()
}

func (f *FileStore) ListHoldings(_ context.Context) ([]model.HoldingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.HoldingRecord, len(f.state.Holdings))
	copy(out, f.state.Holdings)
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseDate.After(out[j].PurchaseDate) })
	return out, nil
}

func (f *FileStore) DeleteHolding(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.state.Holdings[:0]
	for _, h := range f.state.Holdings {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	f.state.Holdings = kept
	return f.save()
}

func (f *FileStore) Close() error { return nil }
