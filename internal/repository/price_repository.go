package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starline-labs/storefront-desk/internal/domain"
)

// PriceRepository handles persistence for the mutable price table.
type PriceRepository interface {
	Get(ctx context.Context, key domain.PriceKey) (float64, error)
	Set(ctx context.Context, key domain.PriceKey, value float64) error
	All(ctx context.Context) ([]domain.PriceEntry, error)
	SeedDefaults(ctx context.Context, defaults map[domain.PriceKey]float64) error
}

type priceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository instantiates the repository.
func NewPriceRepository(pool *pgxpool.Pool) PriceRepository {
	return &priceRepository{pool: pool}
}

func (r *priceRepository) Get(ctx context.Context, key domain.PriceKey) (float64, error) {
	var value float64
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM price_entries WHERE key=$1`, key).Scan(&value)
	return value, err
}

func (r *priceRepository) Set(ctx context.Context, key domain.PriceKey, value float64) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO price_entries (key, value)
        VALUES ($1,$2)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value`, key, value)
	return err
}

func (r *priceRepository) All(ctx context.Context) ([]domain.PriceEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM price_entries ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PriceEntry
	for rows.Next() {
		var entry domain.PriceEntry
		if err := rows.Scan(&entry.Key, &entry.Value); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *priceRepository) SeedDefaults(ctx context.Context, defaults map[domain.PriceKey]float64) error {
	for key, value := range defaults {
		_, err := r.pool.Exec(ctx, `
            INSERT INTO price_entries (key, value)
            VALUES ($1,$2)
            ON CONFLICT (key) DO NOTHING`, key, value)
		if err != nil {
			return err
		}
	}
	return nil
}
