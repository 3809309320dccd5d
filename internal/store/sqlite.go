package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"GoldBean/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists slots, observations and holdings in one SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logrus.Logger
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string, logger *logrus.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, log: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.WithField("path", dbPath).Info("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS metadata (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS price_observations (
			date        TEXT PRIMARY KEY,
			price       REAL NOT NULL,
			source      TEXT,
			recorded_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS gold_records (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			weight         REAL NOT NULL,
			purchase_price REAL NOT NULL,
			purchase_date  INTEGER NOT NULL,
			notes          TEXT,
			photo          BLOB,
			created_at     INTEGER NOT NULL,
			updated_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_purchase ON gold_records(purchase_date)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM metadata WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) RecordObservation(ctx context.Context, obs model.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO price_observations (date, price, source, recorded_at) VALUES (?,?,?,?)
		 ON CONFLICT(date) DO UPDATE SET price=excluded.price, source=excluded.source, recorded_at=excluded.recorded_at`,
		dayKey(obs.Date), obs.Price, obs.Source, obs.RecordedAt.Unix())
	if err != nil {
		return fmt.Errorf("record observation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Observations(ctx context.Context, from, to time.Time) ([]model.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, price, source FROM price_observations
		 WHERE date >= ? AND date <= ? ORDER BY date ASC`,
		dayKey(from), dayKey(to))
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var (
			day    string
			p      model.PricePoint
			source sql.NullString
		)
		if err := rows.Scan(&day, &p.Price, &source); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		if p.Date, err = parseDay(day); err != nil {
			s.log.WithError(err).WithField("date", day).Warn("skipping observation with bad date")
			continue
		}
		p.Source = source.String
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *SQLiteStore) UpsertHolding(ctx context.Context, rec model.HoldingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == uuid.Nil {
		return errors.New("holding id is required")
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gold_records
			(id, name, weight, purchase_price, purchase_date, notes, photo, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, weight=excluded.weight, purchase_price=excluded.purchase_price,
			purchase_date=excluded.purchase_date, notes=excluded.notes, photo=excluded.photo,
			updated_at=excluded.updated_at`,
		rec.ID.String(), rec.Name, rec.Weight, rec.PurchasePrice, rec.PurchaseDate.Unix(),
		rec.Notes, rec.Photo, rec.CreatedAt.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert holding %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) ListHoldings(ctx context.Context) ([]model.HoldingRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, weight, purchase_price, purchase_date, notes, photo, created_at, updated_at
		 FROM gold_records ORDER BY purchase_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	defer rows.Close()

	var out []model.HoldingRecord
	for rows.Next() {
		var (
			rec                         model.HoldingRecord
			id                          string
			notes                       sql.NullString
			purchased, created, updated int64
		)
		if err := rows.Scan(&id, &rec.Name, &rec.Weight, &rec.PurchasePrice, &purchased,
			&notes, &rec.Photo, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			s.log.WithError(err).WithField("id", id).Warn("skipping holding with bad id")
			continue
		}
		rec.Notes = notes.String
		rec.PurchaseDate = time.Unix(purchased, 0)
		rec.CreatedAt = time.Unix(created, 0)
		rec.UpdatedAt = time.Unix(updated, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteHolding(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM gold_records WHERE id = ?", id.String()); err != nil {
		return fmt.Errorf("delete holding %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.log.Info("closing sqlite store")
	return s.db.Close()
}
