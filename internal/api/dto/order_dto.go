package dto

import (
	"time"

	"github.com/starline-labs/storefront-desk/internal/domain"
)

// StorefrontOrderRequest payload. Submitted by the external storefront on
// behalf of an authenticated customer; produces the same order record as the
// chat funnel.
type StorefrontOrderRequest struct {
	CustomerID    int64                `json:"customer_id"`
	Username      string               `json:"username"`
	FullName      string               `json:"full_name"`
	Product       domain.ProductCode   `json:"product"`
	Quantity      float64              `json:"quantity"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	ProofRef      string               `json:"proof_ref"`
}

// OrderResponse payload.
type OrderResponse struct {
	ID            int64                `json:"id"`
	CustomerID    int64                `json:"customer_id"`
	Product       string               `json:"product"`
	Quantity      float64              `json:"quantity"`
	Total         float64              `json:"total"`
	Currency      string               `json:"currency"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Status        domain.OrderStatus   `json:"status"`
	StaffComment  string               `json:"staff_comment,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// NewOrderResponse maps a domain order.
func NewOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		Product:       order.Product,
		Quantity:      order.Quantity,
		Total:         order.Total,
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		StaffComment:  order.StaffComment,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}
