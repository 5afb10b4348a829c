package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starline-labs/storefront-desk/internal/domain"
)

// ActorRepository handles persistence for actor identities.
type ActorRepository interface {
	Upsert(ctx context.Context, actor *domain.Actor) error
	GetByID(ctx context.Context, id int64) (*domain.Actor, error)
	Count(ctx context.Context) (int64, error)
}

type actorRepository struct {
	pool *pgxpool.Pool
}

// NewActorRepository instantiates the repository.
func NewActorRepository(pool *pgxpool.Pool) ActorRepository {
	return &actorRepository{pool: pool}
}

func (r *actorRepository) Upsert(ctx context.Context, actor *domain.Actor) error {
	const query = `
        INSERT INTO actors (id, username, full_name)
        VALUES ($1,$2,$3)
        ON CONFLICT (id) DO UPDATE SET username=EXCLUDED.username, full_name=EXCLUDED.full_name
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		actor.ID,
		actor.Username,
		actor.FullName,
	).Scan(&actor.CreatedAt)
}

func (r *actorRepository) GetByID(ctx context.Context, id int64) (*domain.Actor, error) {
	const query = `
        SELECT id, username, full_name, created_at
        FROM actors WHERE id=$1`

	var actor domain.Actor
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&actor.ID,
		&actor.Username,
		&actor.FullName,
		&actor.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &actor, nil
}

func (r *actorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM actors`).Scan(&count)
	return count, err
}
