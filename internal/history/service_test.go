package history

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"GoldBean/internal/cache"
	"GoldBean/internal/logging"
	"GoldBean/internal/model"
	"GoldBean/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedPrice float64

func (f fixedPrice) CurrentPrice() float64 { return float64(f) }

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) Availability(ctx context.Context) (Availability, error) {
	args := m.Called(ctx)
	return args.Get(0).(Availability), args.Error(1)
}

func (m *mockRemote) Range(ctx context.Context, from, to time.Time) ([]model.PricePoint, error) {
	args := m.Called(ctx, from, to)
	pts, _ := args.Get(0).([]model.PricePoint)
	return pts, args.Error(1)
}

func newService(t *testing.T, price float64, opts ...Option) (*Service, *store.FileStore) {
	t.Helper()
	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	opts = append([]Option{
		WithClock(func() time.Time { return testNow }),
		WithRand(rand.New(rand.NewSource(42))),
	}, opts...)
	return NewService(fs, cache.NewPreferences(fs), fixedPrice(price), logging.Discard(), opts...), fs
}

func TestService_SynthesizesRealisticByDefault(t *testing.T) {
	svc, _ := newService(t, 780)
	pts, err := svc.History(context.Background(), model.Window1Y)
	require.NoError(t, err)
	assert.Equal(t, Synthesize(780, 365, LabelRealistic, testNow), pts)
}

func TestService_DefaultBases(t *testing.T) {
	ctx := context.Background()
	svc, fs := newService(t, 0)
	pts, err := svc.History(ctx, model.Window6M)
	require.NoError(t, err)
	assert.Equal(t, Synthesize(900, 180, LabelRealistic, testNow), pts)

	require.NoError(t, cache.NewPreferences(fs).SetUseRealData(ctx, false))
	require.NoError(t, svc.Clear(ctx))
	pts, err = svc.History(ctx, model.Window6M)
	require.NoError(t, err)
	require.NotEmpty(t, pts)
	assert.Equal(t, LabelMock, pts[0].Source)
}

func TestService_PrefersRemote(t *testing.T) {
	remote := new(mockRemote)
	rows := []model.PricePoint{
		{Date: testNow.AddDate(0, 0, -1), Price: 770, Source: "Supabase (LBMA)"},
		{Date: testNow, Price: 780, Source: "Supabase (LBMA)"},
	}
	remote.On("Range", mock.Anything, testNow.AddDate(0, 0, -365), testNow).Return(rows, nil).Once()

	svc, _ := newService(t, 780, WithRemote(remote))
	pts, err := svc.History(context.Background(), model.Window1Y)
	require.NoError(t, err)
	assert.Equal(t, rows, pts)

	// Cached for the day.
	_, err = svc.History(context.Background(), model.Window1Y)
	require.NoError(t, err)
	remote.AssertExpectations(t)
}

func TestService_RemoteFailureFallsBack(t *testing.T) {
	remote := new(mockRemote)
	remote.On("Range", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused"))

	svc, _ := newService(t, 780, WithRemote(remote))
	pts, err := svc.History(context.Background(), model.Window6M)
	require.NoError(t, err)
	assert.Equal(t, LabelRealistic, pts[0].Source)
}

func TestService_UsesObservationsWithCoverage(t *testing.T) {
	ctx := context.Background()
	svc, fs := newService(t, 780)
	svc.observations = fs

	for i := 0; i < 100; i++ {
		d := testNow.AddDate(0, 0, -i)
		require.NoError(t, fs.RecordObservation(ctx, model.Observation{Date: d, Price: 700 + float64(i), Source: "Coinbase", RecordedAt: d}))
	}

	pts, err := svc.History(ctx, model.Window6M)
	require.NoError(t, err)
	assert.Len(t, pts, 100)
	assert.Equal(t, "Coinbase", pts[0].Source)

	// 100 observations are too sparse for 3 years.
	pts, err = svc.History(ctx, model.Window3Y)
	require.NoError(t, err)
	assert.Equal(t, LabelRealistic, pts[0].Source)
}

func TestService_PersistAndClear(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, 780)

	seeded, err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)
	pts, ok, err := svc.Persisted(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, pts, 30)

	seeded, err = svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	_, err = svc.History(ctx, model.Window6M)
	require.NoError(t, err)
	pts, _, _ = svc.Persisted(ctx)
	assert.Len(t, pts, 180)

	require.NoError(t, svc.Clear(ctx))
	_, ok, err = svc.Persisted(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_SeedIsServedUntilResolved(t *testing.T) {
	ctx := context.Background()
	svc, fs := newService(t, 780)

	_, _, ok := svc.Cached(model.Window6M)
	assert.False(t, ok)
	seeded, err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	// A fresh process restores the seed from the store.
	restarted := NewService(fs, cache.NewPreferences(fs), fixedPrice(780), logging.Discard(),
		WithClock(func() time.Time { return testNow }))
	loaded, err := restarted.Load(ctx)
	require.NoError(t, err)
	require.True(t, loaded)

	sum, pts, ok := restarted.Cached(model.Window6M)
	require.True(t, ok)
	assert.Len(t, pts, 30)
	assert.Equal(t, LabelSample, pts[0].Source)
	assert.Equal(t, 780.0, sum.Current)
	assert.GreaterOrEqual(t, sum.High, sum.Low)

	// A price update invalidates windows but keeps the series.
	restarted.Invalidate()
	_, pts, ok = restarted.Cached(model.Window6M)
	require.True(t, ok)
	assert.Equal(t, LabelSample, pts[0].Source)
	_, ok, err = restarted.Persisted(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = restarted.History(ctx, model.Window1Y)
	require.NoError(t, err)
	_, pts, ok = restarted.Cached(model.Window1Y)
	require.True(t, ok)
	assert.Equal(t, LabelRealistic, pts[0].Source)

	require.NoError(t, restarted.Clear(ctx))
	_, _, ok = restarted.Cached(model.Window1Y)
	assert.False(t, ok)
}

func TestService_LoadWithoutBlob(t *testing.T) {
	svc, _ := newService(t, 780)
	loaded, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestService_RemoteAvailability(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, 780)
	_, ok, err := svc.RemoteAvailability(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	remote := new(mockRemote)
	want := Availability{Count: 3650, Earliest: testNow.AddDate(-10, 0, 0), Latest: testNow}
	remote.On("Availability", mock.Anything).Return(want, nil).Once()
	svc, _ = newService(t, 780, WithRemote(remote))
	got, ok, err := svc.RemoteAvailability(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
	remote.AssertExpectations(t)
}

func TestService_Summary(t *testing.T) {
	svc, _ := newService(t, 780)
	sum, pts, err := svc.Summary(context.Background(), model.Window6M)
	require.NoError(t, err)
	require.NotEmpty(t, pts)
	assert.Equal(t, 780.0, sum.Current)
	assert.GreaterOrEqual(t, sum.High, sum.Low)
	assert.InDelta(t, pts[len(pts)-1].Price-pts[0].Price, sum.Change, 1e-9)
}

func TestService_UnknownWindow(t *testing.T) {
	svc, _ := newService(t, 780)
	_, err := svc.History(context.Background(), model.Window("2W"))
	assert.Error(t, err)
}

func TestRemoteRow_ToPoint(t *testing.T) {
	price := 612.5
	src := "LBMA"
	date := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	p, ok := remoteRow{Date: date, PriceCNYPerGram: &price, DataSource: &src}.toPoint()
	require.True(t, ok)
	assert.Equal(t, 612.5, p.Price)
	assert.Equal(t, "Supabase (LBMA)", p.Source)
	assert.Equal(t, 10, p.Date.Day())

	p, ok = remoteRow{Date: date, PriceCNYPerGram: &price}.toPoint()
	require.True(t, ok)
	assert.Equal(t, "Supabase (Unknown)", p.Source)

	_, ok = remoteRow{Date: date}.toPoint()
	assert.False(t, ok)
}
