package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/starline-labs/storefront-desk/internal/api/dto"
	"github.com/starline-labs/storefront-desk/internal/auth"
	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/service"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

// TokensHandler issues staff API tokens. The endpoint sits behind the
// storefront key; only actors currently holding a staff tier receive tokens.
type TokensHandler struct {
	tokens *auth.TokenManager
	roles  service.RoleService
}

// NewTokensHandler returns a new handler instance.
func NewTokensHandler(tokens *auth.TokenManager, roles service.RoleService) *TokensHandler {
	return &TokensHandler{tokens: tokens, roles: roles}
}

// Issue mints a token for a staff actor.
func (h *TokensHandler) Issue(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if req.ActorID == 0 {
		return util.NewValidationError("actor_id is required", nil)
	}

	tier, err := h.roles.TierOf(c.UserContext(), req.ActorID)
	if err != nil {
		return err
	}
	if tier == domain.TierNone {
		return util.NewUnauthorized("staff access required")
	}

	token, expiresAt, err := h.tokens.GenerateToken(req.ActorID)
	if err != nil {
		return util.NewInternalError(err)
	}
	return c.JSON(dto.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}
