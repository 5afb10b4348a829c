package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/service"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated staff caller. Tier reflects the
// registry at request time, never a value cached in the token.
type Principal struct {
	ActorID int64
	Tier    domain.Tier
}

// Middleware validates bearer tokens and resolves the caller's tier.
type Middleware struct {
	tokens *TokenManager
	roles  service.RoleService
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, roles service.RoleService) *Middleware {
	return &Middleware{tokens: tokens, roles: roles}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return util.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return util.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return util.NewUnauthorized("invalid token")
	}

	tier, err := m.roles.TierOf(c.Context(), claims.ActorID)
	if err != nil {
		return util.MapError(err)
	}
	if tier == domain.TierNone {
		return util.NewUnauthorized("staff access required")
	}

	c.Locals(principalKey, &Principal{ActorID: claims.ActorID, Tier: tier})
	return c.Next()
}

// RequireFullAdmin gates routes on the full admin tier.
func RequireFullAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return util.NewUnauthorized("authentication required")
		}
		if principal.Tier < domain.TierFullAdmin {
			return util.NewForbidden("full admin tier required")
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
