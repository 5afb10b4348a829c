package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/starline-labs/storefront-desk/internal/api/dto"
	"github.com/starline-labs/storefront-desk/internal/auth"
	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/service"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

// PricesHandler exposes the price table over HTTP.
type PricesHandler struct {
	prices service.PriceService
}

// NewPricesHandler returns a new handler instance.
func NewPricesHandler(prices service.PriceService) *PricesHandler {
	return &PricesHandler{prices: prices}
}

// List returns all price entries.
func (h *PricesHandler) List(c *fiber.Ctx) error {
	entries, err := h.prices.All(c.UserContext())
	if err != nil {
		return err
	}
	response := make([]dto.PriceResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, dto.PriceResponse{Key: entry.Key, Value: entry.Value})
	}
	return c.JSON(response)
}

// Update sets one price entry. Requires the full admin tier; the service
// enforces the same guard again for callers arriving through other surfaces.
func (h *PricesHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.PriceUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	key := domain.PriceKey(c.Params("key"))
	if err := h.prices.Set(c.UserContext(), principal.ActorID, key, req.Value); err != nil {
		return err
	}
	return c.JSON(dto.PriceResponse{Key: key, Value: req.Value})
}
