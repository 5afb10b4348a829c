package domain

import "time"

// OrderStatus enumerates lifecycle states for orders.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"

	// OrderStatusProcessing is declared in the model but no transition
	// currently produces it. Reserved for a payment-under-review step.
	OrderStatusProcessing OrderStatus = "processing"
)

// PaymentMethod enumerates the two supported payment rails.
type PaymentMethod string

const (
	PaymentMethodCryptoBot PaymentMethod = "crypto_bot"
	PaymentMethodBEP20     PaymentMethod = "bep20"
)

// Order is the aggregate for a purchase awaiting manual review. Once created
// it is owned by the system; customers file a new order rather than mutate
// an existing one.
type Order struct {
	ID            int64
	CustomerID    int64
	Username      string
	Product       string
	Quantity      float64
	Total         float64
	Currency      string
	PaymentMethod PaymentMethod
	PaymentLink   string
	WalletAddress string
	ProofRef      string
	Status        OrderStatus
	StaffComment  string
	ResolvedBy    *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
