package service

import (
	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

// requireTier gates a staff operation on the caller's live tier. An actor
// with no assignment at all is unknown to the desk and gets Unauthorized; an
// actor holding a tier below the required one is Forbidden.
func requireTier(tier, required domain.Tier, message string) error {
	if tier == domain.TierNone {
		return util.NewUnauthorized("staff access required")
	}
	if tier < required {
		return util.NewForbidden(message)
	}
	return nil
}
