package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/starline-labs/storefront-desk/internal/api/dto"
	"github.com/starline-labs/storefront-desk/internal/engine"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

// UpdatesHandler receives inbound chat updates from the bridge and feeds
// them to the engine.
type UpdatesHandler struct {
	engine *engine.Engine
}

// NewUpdatesHandler returns a new handler instance.
func NewUpdatesHandler(eng *engine.Engine) *UpdatesHandler {
	return &UpdatesHandler{engine: eng}
}

// Receive handles one update. The engine reports outcomes to the actor over
// the transport, so the webhook response carries no body.
func (h *UpdatesHandler) Receive(c *fiber.Ctx) error {
	var req dto.InboundUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if req.ActorID == 0 {
		return util.NewValidationError("actor_id is required", nil)
	}

	h.engine.HandleUpdate(c.UserContext(), req.ToUpdate())
	return c.SendStatus(fiber.StatusAccepted)
}
