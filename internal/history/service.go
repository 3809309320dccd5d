package history

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"GoldBean/internal/cache"
	"GoldBean/internal/calculator"
	"GoldBean/internal/model"
	"GoldBean/internal/store"

	"github.com/sirupsen/logrus"
)

const keyCachedHistory = "cachedPriceHistory"

const (
	defaultRealisticBase = 900.0
	defaultMockBase      = 460.0
)

// RemoteSource serves recorded daily prices.
type RemoteSource interface {
	Range(ctx context.Context, from, to time.Time) ([]model.PricePoint, error)
}

// availabilityReporter is implemented by remotes that can describe
// their coverage.
type availabilityReporter interface {
	Availability(ctx context.Context) (Availability, error)
}

// PriceReader exposes the current price used as the synthesis anchor.
type PriceReader interface {
	CurrentPrice() float64
}

// Service resolves a price series for a window: remote records first,
// then locally recorded observations with enough coverage, then synthesis.
// Resolved series are cached per window for the current day. The most
// recent series, resolved or restored from the store, stays available
// through Cached until the user clears it.
type Service struct {
	remote       RemoteSource
	observations store.ObservationStore
	slots        store.Slots
	prefs        *cache.Preferences
	price        PriceReader
	log          *logrus.Logger
	now          func() time.Time

	mu        sync.Mutex
	rng       *rand.Rand
	cached    map[model.Window][]model.PricePoint
	cachedDay string
	series    []model.PricePoint
}

type Option func(*Service)

func WithRemote(r RemoteSource) Option {
	return func(s *Service) { s.remote = r }
}

func WithObservations(o store.ObservationStore) Option {
	return func(s *Service) { s.observations = o }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

func NewService(slots store.Slots, prefs *cache.Preferences, price PriceReader, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		slots:  slots,
		prefs:  prefs,
		price:  price,
		log:    logger,
		now:    time.Now,
		cached: map[model.Window][]model.PricePoint{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// History returns the ascending series for w.
func (s *Service) History(ctx context.Context, w model.Window) ([]model.PricePoint, error) {
	if w.Days() == 0 {
		return nil, fmt.Errorf("unknown window %q", w)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if day := now.Format("2006-01-02"); day != s.cachedDay {
		s.cached = map[model.Window][]model.PricePoint{}
		s.cachedDay = day
	}
	if pts, ok := s.cached[w]; ok {
		return pts, nil
	}

	pts := s.resolve(ctx, w, now)
	s.cached[w] = pts
	s.series = pts
	if err := s.persist(ctx, pts); err != nil {
		s.log.WithError(err).Warn("persist history")
	}
	s.log.WithFields(logrus.Fields{"window": w, "points": len(pts)}).Info("history resolved")
	return pts, nil
}

func (s *Service) resolve(ctx context.Context, w model.Window, now time.Time) []model.PricePoint {
	days := w.Days()
	from := now.AddDate(0, 0, -days)

	if s.remote != nil {
		pts, err := s.remote.Range(ctx, from, now)
		switch {
		case err != nil:
			s.log.WithError(err).Warn("remote history unavailable")
		case len(pts) > 0:
			return pts
		default:
			s.log.WithField("window", w).Info("remote history empty")
		}
	}

	if s.observations != nil {
		pts, err := s.observations.Observations(ctx, from, now)
		if err != nil {
			s.log.WithError(err).Warn("load observations")
		} else if HasSufficientCoverage(len(pts), days) {
			return pts
		}
	}

	useReal, err := s.prefs.UseRealData(ctx)
	if err != nil {
		s.log.WithError(err).Warn("read useRealData, assuming true")
	}
	current := s.price.CurrentPrice()
	if useReal {
		if current <= 0 {
			current = defaultRealisticBase
		}
		return Synthesize(current, days, LabelRealistic, now)
	}
	if current <= 0 {
		current = defaultMockBase
	}
	return SynthesizeMock(current, days, s.rng, now)
}

// Summary summarizes the window's series against the current price.
func (s *Service) Summary(ctx context.Context, w model.Window) (model.TrendSummary, []model.PricePoint, error) {
	pts, err := s.History(ctx, w)
	if err != nil {
		return model.EmptyTrendSummary, nil, err
	}
	filtered := calculator.FilterWindow(pts, w.Days(), s.now())
	return calculator.Summarize(filtered, s.price.CurrentPrice()), filtered, nil
}

// Cached summarizes the most recent series over w without resolving
// anything. ok is false when no series is loaded.
func (s *Service) Cached(w model.Window) (model.TrendSummary, []model.PricePoint, bool) {
	s.mu.Lock()
	series := s.series
	s.mu.Unlock()
	if len(series) == 0 {
		return model.EmptyTrendSummary, nil, false
	}
	filtered := calculator.FilterWindow(series, w.Days(), s.now())
	return calculator.Summarize(filtered, s.price.CurrentPrice()), filtered, true
}

// RemoteAvailability describes the remote table. ok is false when no
// remote is configured or it cannot report coverage.
func (s *Service) RemoteAvailability(ctx context.Context) (Availability, bool, error) {
	r, ok := s.remote.(availabilityReporter)
	if !ok {
		return Availability{}, false, nil
	}
	a, err := r.Availability(ctx)
	return a, true, err
}

// Persisted returns the last series written to the store.
func (s *Service) Persisted(ctx context.Context) ([]model.PricePoint, bool, error) {
	raw, ok, err := s.slots.Get(ctx, keyCachedHistory)
	if err != nil || !ok {
		return nil, false, err
	}
	var pts []model.PricePoint
	if err := json.Unmarshal([]byte(raw), &pts); err != nil {
		return nil, false, fmt.Errorf("decode cached history: %w", err)
	}
	return pts, true, nil
}

// Load restores the persisted series into memory.
func (s *Service) Load(ctx context.Context) (bool, error) {
	pts, ok, err := s.Persisted(ctx)
	if err != nil || !ok {
		return false, err
	}
	s.mu.Lock()
	s.series = pts
	s.mu.Unlock()
	s.log.WithField("points", len(pts)).Info("loaded cached history")
	return true, nil
}

// SeedIfEmpty writes the 30-day sample when no series was ever persisted.
func (s *Service) SeedIfEmpty(ctx context.Context) (bool, error) {
	if _, ok, err := s.Persisted(ctx); err != nil || ok {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pts := SeedSample(s.price.CurrentPrice(), s.rng, s.now())
	if err := s.persist(ctx, pts); err != nil {
		return false, err
	}
	s.series = pts
	s.log.WithField("points", len(pts)).Info("seeded sample history")
	return true, nil
}

// Invalidate forgets the per-window series so the next request resolves
// against the current price. The most recent series is kept.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = map[model.Window][]model.PricePoint{}
	s.mu.Unlock()
}

// Clear drops the in-memory and persisted series.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.cached = map[model.Window][]model.PricePoint{}
	s.series = nil
	s.mu.Unlock()
	if err := s.slots.Delete(ctx, keyCachedHistory); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.log.Info("history cache cleared")
	return nil
}

func (s *Service) persist(ctx context.Context, pts []model.PricePoint) error {
	data, err := json.Marshal(pts)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return s.slots.Set(ctx, keyCachedHistory, string(data))
}
