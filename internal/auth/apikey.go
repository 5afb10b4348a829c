package auth

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/starline-labs/storefront-desk/pkg/util"
)

// APIKeyMiddleware gates the storefront endpoints behind a shared key. Only
// the bcrypt hash is configured; the plaintext key never touches disk.
type APIKeyMiddleware struct {
	keyHash string
}

// NewAPIKeyMiddleware constructs middleware.
func NewAPIKeyMiddleware(keyHash string) *APIKeyMiddleware {
	return &APIKeyMiddleware{keyHash: keyHash}
}

// Handle verifies the X-Api-Key header against the configured hash.
func (m *APIKeyMiddleware) Handle(c *fiber.Ctx) error {
	if m.keyHash == "" {
		return util.NewUnauthorized("storefront access is not configured")
	}
	key := c.Get("X-Api-Key")
	if key == "" {
		return util.NewUnauthorized("missing api key")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.keyHash), []byte(key)); err != nil {
		return util.NewUnauthorized("invalid api key")
	}
	return c.Next()
}

// HashKey produces a bcrypt hash for provisioning a new storefront key.
func HashKey(key string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
