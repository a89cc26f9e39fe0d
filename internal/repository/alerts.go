package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"cryptoalert/internal/models"
)

const alertColumns = `id, coin_id, coin_name, target_price, condition, email, is_active, created_at, triggered_at`

type AlertRepo struct {
	pool *pgxpool.Pool
}

func NewAlertRepo(pool *pgxpool.Pool) *AlertRepo {
	return &AlertRepo{pool: pool}
}

func (r *AlertRepo) Create(ctx context.Context, coinID, coinName string, targetPrice float64, condition, email string) (*models.Alert, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO alerts (coin_id, coin_name, target_price, condition, email)
		 VALUES ($1, $2, $3, $4, $5) RETURNING `+alertColumns,
		coinID, coinName, targetPrice, condition, email,
	)
	return scanAlert(row)
}

// GetActive returns alerts eligible for evaluation: active and never
// triggered, newest first.
func (r *AlertRepo) GetActive(ctx context.Context) ([]models.Alert, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+alertColumns+` FROM alerts
		 WHERE is_active AND triggered_at IS NULL
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func (r *AlertRepo) GetActiveByCoin(ctx context.Context, coinID string) ([]models.Alert, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+alertColumns+` FROM alerts
		 WHERE coin_id = $1 AND is_active AND triggered_at IS NULL
		 ORDER BY created_at DESC`,
		coinID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAlerts(rows)
}

// Deactivate flips is_active off. Returns the number of rows affected;
// 0 means no such alert (or it was already inactive).
func (r *AlertRepo) Deactivate(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE alerts SET is_active = FALSE WHERE id = $1 AND is_active`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// MarkTriggered stamps triggered_at, removing the alert from future
// eligible sets. The guard on triggered_at keeps the transition one-shot.
func (r *AlertRepo) MarkTriggered(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE alerts SET triggered_at = NOW() WHERE id = $1 AND triggered_at IS NULL`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanAlert(row scannable) (*models.Alert, error) {
	var a models.Alert
	err := row.Scan(&a.ID, &a.CoinID, &a.CoinName, &a.TargetPrice, &a.Condition,
		&a.Email, &a.IsActive, &a.CreatedAt, &a.TriggeredAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAlerts(rows rowsIter) ([]models.Alert, error) {
	var out []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.CoinID, &a.CoinName, &a.TargetPrice, &a.Condition,
			&a.Email, &a.IsActive, &a.CreatedAt, &a.TriggeredAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
