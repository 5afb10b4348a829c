package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/starline-labs/storefront-desk/internal/api/dto"
	"github.com/starline-labs/storefront-desk/internal/service"
	"github.com/starline-labs/storefront-desk/internal/transport"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

// StorefrontHandler accepts orders submitted by the external storefront.
type StorefrontHandler struct {
	orders service.OrderService
	sender transport.Transport
	logger *zap.Logger
}

// NewStorefrontHandler returns a new handler instance.
func NewStorefrontHandler(orders service.OrderService, sender transport.Transport, logger *zap.Logger) *StorefrontHandler {
	return &StorefrontHandler{orders: orders, sender: sender, logger: logger}
}

// CreateOrder files an order through the same path as the chat funnel: the
// record, its validation and the staff fanout are identical.
func (h *StorefrontHandler) CreateOrder(c *fiber.Ctx) error {
	var req dto.StorefrontOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if req.CustomerID == 0 {
		return util.NewValidationError("customer_id is required", nil)
	}

	order, err := h.orders.Create(c.UserContext(), service.CreateOrderInput{
		CustomerID:    req.CustomerID,
		Username:      req.Username,
		FullName:      req.FullName,
		Product:       req.Product,
		Quantity:      req.Quantity,
		PaymentMethod: req.PaymentMethod,
		ProofRef:      req.ProofRef,
	})
	if err != nil {
		return err
	}

	// Best-effort chat acknowledgment; the 201 response stands either way.
	ack := fmt.Sprintf("Order #%d accepted. You will be notified once it is reviewed.", order.ID)
	if err := h.sender.SendMessage(c.UserContext(), order.CustomerID, ack); err != nil {
		h.logger.Warn("storefront order ack failed",
			zap.Int64("customer_id", order.CustomerID), zap.Error(err))
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(order))
}
