package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/repository"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

// RoleService owns the staff tier registry. The root admin is configured, not
// stored: it always resolves to FullAdmin and no operation may demote or
// remove it.
type RoleService interface {
	TierOf(ctx context.Context, actorID int64) (domain.Tier, error)
	Grant(ctx context.Context, callerID, targetID int64, tier domain.Tier) (*domain.RoleAssignment, error)
	Revoke(ctx context.Context, callerID, targetID int64) error
	SetTier(ctx context.Context, callerID, targetID int64, tier domain.Tier) error
	ListStaff(ctx context.Context) ([]domain.RoleAssignment, error)
	IsRoot(actorID int64) bool
}

type roleService struct {
	roles       repository.RoleRepository
	rootAdminID int64
	logger      *zap.Logger
}

// NewRoleService instantiates the service.
func NewRoleService(roles repository.RoleRepository, rootAdminID int64, logger *zap.Logger) RoleService {
	return &roleService{roles: roles, rootAdminID: rootAdminID, logger: logger}
}

func (s *roleService) IsRoot(actorID int64) bool {
	return actorID == s.rootAdminID
}

// TierOf resolves the current tier from the registry on every call. Callers
// must never cache or trust a tier carried in a token or session.
func (s *roleService) TierOf(ctx context.Context, actorID int64) (domain.Tier, error) {
	if s.IsRoot(actorID) {
		return domain.TierFullAdmin, nil
	}
	assignment, err := s.roles.GetByActor(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TierNone, nil
		}
		return domain.TierNone, util.NewInternalError(err)
	}
	return assignment.Tier, nil
}

func (s *roleService) requireFullAdmin(ctx context.Context, callerID int64) error {
	tier, err := s.TierOf(ctx, callerID)
	if err != nil {
		return err
	}
	return requireTier(tier, domain.TierFullAdmin, "full admin tier required")
}

// Grant assigns a tier to an actor with no current assignment. Granting over
// an existing assignment is refused; use SetTier to change a tier.
func (s *roleService) Grant(ctx context.Context, callerID, targetID int64, tier domain.Tier) (*domain.RoleAssignment, error) {
	if err := s.requireFullAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	if tier != domain.TierSupport && tier != domain.TierFullAdmin {
		return nil, util.NewValidationError("tier must be support or full admin", map[string]any{"tier": tier})
	}
	if s.IsRoot(targetID) {
		return nil, util.NewConflict("actor already holds full admin", map[string]any{"actor_id": targetID})
	}

	existing, err := s.roles.GetByActor(ctx, targetID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewInternalError(err)
	}
	if existing != nil {
		return nil, util.NewConflict("actor already has a role assignment", map[string]any{
			"actor_id": targetID,
			"tier":     existing.Tier.String(),
		})
	}

	assignment := &domain.RoleAssignment{
		ActorID:   targetID,
		Tier:      tier,
		GrantedBy: callerID,
	}
	if err := s.roles.Upsert(ctx, assignment); err != nil {
		return nil, util.NewInternalError(err)
	}
	s.logger.Info("role granted",
		zap.Int64("actor_id", targetID),
		zap.String("tier", tier.String()),
		zap.Int64("granted_by", callerID))
	return assignment, nil
}

// Revoke removes an actor's assignment entirely. The root admin can never be
// revoked, not even by itself.
func (s *roleService) Revoke(ctx context.Context, callerID, targetID int64) error {
	if err := s.requireFullAdmin(ctx, callerID); err != nil {
		return err
	}
	if s.IsRoot(targetID) {
		return util.NewForbidden("root admin cannot be revoked")
	}
	if err := s.roles.Delete(ctx, targetID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("role assignment", map[string]any{"actor_id": targetID})
		}
		return util.NewInternalError(err)
	}
	s.logger.Info("role revoked",
		zap.Int64("actor_id", targetID),
		zap.Int64("revoked_by", callerID))
	return nil
}

// SetTier changes the tier on an existing assignment.
func (s *roleService) SetTier(ctx context.Context, callerID, targetID int64, tier domain.Tier) error {
	if err := s.requireFullAdmin(ctx, callerID); err != nil {
		return err
	}
	if s.IsRoot(targetID) {
		return util.NewForbidden("root admin tier is fixed")
	}
	if tier != domain.TierSupport && tier != domain.TierFullAdmin {
		return util.NewValidationError("tier must be support or full admin", map[string]any{"tier": tier})
	}
	if err := s.roles.SetTier(ctx, targetID, tier); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("role assignment", map[string]any{"actor_id": targetID})
		}
		return util.NewInternalError(err)
	}
	return nil
}

// ListStaff returns all staff including the configured root admin, which is
// prepended if absent from the stored registry.
func (s *roleService) ListStaff(ctx context.Context) ([]domain.RoleAssignment, error) {
	stored, err := s.roles.ListStaff(ctx)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	for _, assignment := range stored {
		if assignment.ActorID == s.rootAdminID {
			return stored, nil
		}
	}
	result := make([]domain.RoleAssignment, 0, len(stored)+1)
	result = append(result, domain.RoleAssignment{
		ActorID:   s.rootAdminID,
		Tier:      domain.TierFullAdmin,
		GrantedBy: s.rootAdminID,
	})
	return append(result, stored...), nil
}
