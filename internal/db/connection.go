package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 30 * time.Second
	cfg.MaxConnLifetime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return p, nil
}

// Migrate creates the alert and price-history tables if they don't exist.
// The CHECK constraint on condition backs up the validation done at the
// HTTP boundary.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id           BIGSERIAL PRIMARY KEY,
			coin_id      TEXT NOT NULL,
			coin_name    TEXT NOT NULL,
			target_price DOUBLE PRECISION NOT NULL,
			condition    TEXT NOT NULL CHECK (condition IN ('above', 'below')),
			email        TEXT NOT NULL,
			is_active    BOOLEAN NOT NULL DEFAULT TRUE,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			triggered_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS price_history (
			id        BIGSERIAL PRIMARY KEY,
			coin_id   TEXT NOT NULL,
			price     DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_eligible
			ON alerts (coin_id) WHERE is_active AND triggered_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_coin
			ON price_history (coin_id, timestamp DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
