package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starline-labs/storefront-desk/internal/domain"
)

// RoleRepository handles persistence for staff role assignments. Upsert
// semantics keep at most one assignment per actor id.
type RoleRepository interface {
	Upsert(ctx context.Context, assignment *domain.RoleAssignment) error
	SetTier(ctx context.Context, actorID int64, tier domain.Tier) error
	Delete(ctx context.Context, actorID int64) error
	GetByActor(ctx context.Context, actorID int64) (*domain.RoleAssignment, error)
	ListStaff(ctx context.Context) ([]domain.RoleAssignment, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository instantiates the repository.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Upsert(ctx context.Context, assignment *domain.RoleAssignment) error {
	const query = `
        INSERT INTO role_assignments (actor_id, tier, granted_by)
        VALUES ($1,$2,$3)
        ON CONFLICT (actor_id) DO UPDATE SET tier=EXCLUDED.tier, granted_by=EXCLUDED.granted_by
        RETURNING granted_at`
	return r.pool.QueryRow(ctx, query,
		assignment.ActorID,
		assignment.Tier,
		assignment.GrantedBy,
	).Scan(&assignment.GrantedAt)
}

func (r *roleRepository) SetTier(ctx context.Context, actorID int64, tier domain.Tier) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE role_assignments SET tier=$1 WHERE actor_id=$2`, tier, actorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *roleRepository) Delete(ctx context.Context, actorID int64) error {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM role_assignments WHERE actor_id=$1`, actorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *roleRepository) GetByActor(ctx context.Context, actorID int64) (*domain.RoleAssignment, error) {
	const query = `
        SELECT actor_id, tier, granted_by, granted_at
        FROM role_assignments WHERE actor_id=$1`

	var assignment domain.RoleAssignment
	if err := r.pool.QueryRow(ctx, query, actorID).Scan(
		&assignment.ActorID,
		&assignment.Tier,
		&assignment.GrantedBy,
		&assignment.GrantedAt,
	); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *roleRepository) ListStaff(ctx context.Context) ([]domain.RoleAssignment, error) {
	const query = `
        SELECT actor_id, tier, granted_by, granted_at
        FROM role_assignments
        WHERE tier >= 1
        ORDER BY tier DESC, granted_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RoleAssignment
	for rows.Next() {
		var assignment domain.RoleAssignment
		if err := rows.Scan(
			&assignment.ActorID,
			&assignment.Tier,
			&assignment.GrantedBy,
			&assignment.GrantedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}
