package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cryptoalert/internal/models"
)

const defaultHistoryLimit = 100

type PriceRepo struct {
	pool *pgxpool.Pool
}

func NewPriceRepo(pool *pgxpool.Pool) *PriceRepo {
	return &PriceRepo{pool: pool}
}

func (r *PriceRepo) Record(ctx context.Context, coinID string, price float64) (*models.PricePoint, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO price_history (coin_id, price)
		 VALUES ($1, $2) RETURNING id, coin_id, price, timestamp`,
		coinID, price,
	)
	return scanPricePoint(row)
}

// GetHistory returns up to limit samples for one coin, newest first.
// A non-positive limit falls back to the default of 100.
func (r *PriceRepo) GetHistory(ctx context.Context, coinID string, limit int) ([]models.PricePoint, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, coin_id, price, timestamp FROM price_history
		 WHERE coin_id = $1
		 ORDER BY timestamp DESC, id DESC
		 LIMIT $2`,
		coinID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.ID, &p.CoinID, &p.Price, &p.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetLatest returns the most recent sample for a coin, or nil when none
// has been recorded yet.
func (r *PriceRepo) GetLatest(ctx context.Context, coinID string) (*models.PricePoint, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, coin_id, price, timestamp FROM price_history
		 WHERE coin_id = $1
		 ORDER BY timestamp DESC, id DESC LIMIT 1`,
		coinID,
	)
	p, err := scanPricePoint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func scanPricePoint(row scannable) (*models.PricePoint, error) {
	var p models.PricePoint
	if err := row.Scan(&p.ID, &p.CoinID, &p.Price, &p.Timestamp); err != nil {
		return nil, err
	}
	return &p, nil
}
