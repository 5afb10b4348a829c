package dto

import "github.com/starline-labs/storefront-desk/internal/domain"

// PriceUpdateRequest payload.
type PriceUpdateRequest struct {
	Value float64 `json:"value"`
}

// PriceResponse payload.
type PriceResponse struct {
	Key   domain.PriceKey `json:"key"`
	Value float64         `json:"value"`
}

// TokenRequest payload for staff token issuance.
type TokenRequest struct {
	ActorID int64 `json:"actor_id"`
}

// TokenResponse payload.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
