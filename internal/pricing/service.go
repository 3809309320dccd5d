package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"GoldBean/internal/cache"
	"GoldBean/internal/model"
	"GoldBean/internal/provider"
	"GoldBean/internal/store"

	"github.com/sirupsen/logrus"
)

// Service owns the current price. It runs the provider chain, keeps the
// cache in step and publishes the result to concurrent readers.
type Service struct {
	providers    []provider.Provider
	prober       provider.Prober
	cache        *cache.PriceCache
	observations store.ObservationStore
	log          *logrus.Logger
	now          func() time.Time

	mu       sync.RWMutex
	snap     model.PriceSnapshot
	advisory string
	loading  int
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithObservations records every successful fetch as a daily observation.
func WithObservations(obs store.ObservationStore) Option {
	return func(s *Service) { s.observations = obs }
}

func NewService(providers []provider.Provider, prober provider.Prober, pc *cache.PriceCache, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		providers: providers,
		prober:    prober,
		cache:     pc,
		log:       logger,
		now:       time.Now,
		snap:      model.PriceSnapshot{Source: SourceNone},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init publishes the cached price, if any.
func (s *Service) Init(ctx context.Context) error {
	snap, ok, err := s.cache.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cached price: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.snap = snap
		s.log.WithFields(logrus.Fields{"price": snap.Price, "source": snap.Source}).Info("loaded cached price")
	} else {
		s.snap = model.PriceSnapshot{Source: SourceNone}
	}
	return nil
}

// Refresh fetches the current price. Without force, a valid price already
// fetched today is returned with ErrAlreadyUpdated and no network I/O.
func (s *Service) Refresh(ctx context.Context, force bool) (model.PriceSnapshot, error) {
	if !force {
		s.mu.Lock()
		snap := s.snap
		if snap.Valid && cache.IsSameCalendarDay(snap.Timestamp, s.now()) {
			s.advisory = AdvisoryAlreadyUpdated
			s.mu.Unlock()
			return snap, ErrAlreadyUpdated
		}
		s.mu.Unlock()
	}
	return s.fetch(ctx)
}

// AutoUpdate fetches when there is no valid price or it is not from today.
// It reports whether a fetch ran.
func (s *Service) AutoUpdate(ctx context.Context) (bool, error) {
	snap := s.Snapshot()
	if snap.Valid && cache.IsSameCalendarDay(snap.Timestamp, s.now()) {
		s.log.Debug("price already updated today, skipping auto update")
		return false, nil
	}
	_, err := s.fetch(ctx)
	return true, err
}

func (s *Service) fetch(ctx context.Context) (model.PriceSnapshot, error) {
	s.setLoading(1)
	defer s.setLoading(-1)

	var errs []error
	for _, p := range s.providers {
		q, err := p.Fetch(ctx)
		if err == nil && q.Price <= 0 {
			err = fmt.Errorf("%w: non-positive price %v", provider.ErrParse, q.Price)
		}
		if err != nil {
			s.log.WithError(err).WithField("source", p.Name()).Warn("price source failed")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return s.publish(ctx, q), nil
	}
	return s.exhausted(ctx, errors.Join(errs...))
}

func (s *Service) publish(ctx context.Context, q provider.Quote) model.PriceSnapshot {
	now := s.now()
	snap := model.PriceSnapshot{Price: q.Price, Timestamp: now, Source: q.Source, Valid: true}

	s.mu.Lock()
	s.snap = snap
	s.advisory = ""
	if err := s.cache.Store(ctx, q.Price, now, q.Source); err != nil {
		s.log.WithError(err).Error("persist price")
	}
	s.mu.Unlock()

	if s.observations != nil {
		if err := s.observations.RecordObservation(ctx, model.Observation{
			Date: now, Price: q.Price, Source: q.Source, RecordedAt: now,
		}); err != nil {
			s.log.WithError(err).Warn("record observation")
		}
	}

	s.log.WithFields(logrus.Fields{"price": fmt.Sprintf("%.2f", q.Price), "source": q.Source}).Info("gold price updated")
	return snap
}

func (s *Service) exhausted(ctx context.Context, cause error) (model.PriceSnapshot, error) {
	offline := true
	if s.prober != nil {
		if err := s.prober.Probe(ctx); err != nil {
			s.log.WithError(err).Warn("connectivity probe failed")
		} else {
			offline = false
			s.log.Warn("network reachable but every price source failed")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Valid {
		s.advisory = AdvisoryStale
		s.log.WithField("price", s.snap.Price).Warn("serving cached price")
		return s.snap, fmt.Errorf("%w: %w", ErrStale, cause)
	}

	s.snap = model.PriceSnapshot{Source: SourceFailure}
	if offline {
		s.advisory = AdvisoryOffline
	} else {
		s.advisory = AdvisorySourcesDown
	}
	s.log.Error("price unavailable and nothing cached")
	return s.snap, fmt.Errorf("%w: %w", ErrNoData, cause)
}

func (s *Service) setLoading(delta int) {
	s.mu.Lock()
	s.loading += delta
	s.mu.Unlock()
}

// Snapshot returns the published price.
func (s *Service) Snapshot() model.PriceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// CurrentPrice is the published price, 0 when there is none.
func (s *Service) CurrentPrice() float64 {
	return s.Snapshot().Price
}

// Advisory returns the pending user message, if any.
func (s *Service) Advisory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.advisory
}

// Loading reports whether a fetch is in flight.
func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}
