package history

import (
	"context"
	"fmt"
	"time"

	"GoldBean/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// PostgresSource reads daily prices from a gold_historical_prices table
// (the Supabase schema).
type PostgresSource struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// ConnectPostgres opens a pool and verifies it with a ping.
func ConnectPostgres(ctx context.Context, dsn string, maxConns int, logger *logrus.Logger) (*PostgresSource, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresSource{pool: pool, log: logger}, nil
}

// remoteRow mirrors the columns the service reads.
type remoteRow struct {
	Date            time.Time
	PriceCNYPerGram *float64
	DataSource      *string
}

// toPoint drops rows without a CNY per gram price.
func (r remoteRow) toPoint() (model.PricePoint, bool) {
	if r.PriceCNYPerGram == nil {
		return model.PricePoint{}, false
	}
	source := "Unknown"
	if r.DataSource != nil {
		source = *r.DataSource
	}
	y, m, d := r.Date.Date()
	return model.PricePoint{
		Date:   time.Date(y, m, d, 0, 0, 0, 0, time.Local),
		Price:  *r.PriceCNYPerGram,
		Source: fmt.Sprintf("Supabase (%s)", source),
	}, true
}

// Range returns rows dated within [from, to], ascending.
func (s *PostgresSource) Range(ctx context.Context, from, to time.Time) ([]model.PricePoint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, price_cny_per_gram::float8, data_source
		 FROM gold_historical_prices
		 WHERE date >= $1 AND date <= $2
		 ORDER BY date ASC`,
		startOfDay(from), startOfDay(to))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var (
		points  []model.PricePoint
		skipped int
	)
	for rows.Next() {
		var r remoteRow
		if err := rows.Scan(&r.Date, &r.PriceCNYPerGram, &r.DataSource); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		p, ok := r.toPoint()
		if !ok {
			skipped++
			continue
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	if skipped > 0 {
		s.log.WithField("skipped", skipped).Warn("history rows without price_cny_per_gram")
	}
	return points, nil
}

// Availability summarizes how much history the table holds.
type Availability struct {
	Count    int64     `json:"count"`
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

func (s *PostgresSource) Availability(ctx context.Context) (Availability, error) {
	var (
		a                Availability
		earliest, latest *time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT count(*), min(date), max(date) FROM gold_historical_prices`).
		Scan(&a.Count, &earliest, &latest)
	if err != nil {
		return Availability{}, fmt.Errorf("query availability: %w", err)
	}
	if earliest != nil {
		a.Earliest = *earliest
	}
	if latest != nil {
		a.Latest = *latest
	}
	return a, nil
}

func (s *PostgresSource) Close() {
	s.pool.Close()
}
