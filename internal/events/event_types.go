package events

import (
	"time"

	"github.com/starline-labs/storefront-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventOrderCommented     EventType = "order_commented"
	EventTicketCreated      EventType = "ticket_created"
	EventTicketAssigned     EventType = "ticket_assigned"
	EventTicketReplied      EventType = "ticket_replied"
	EventTicketClosed       EventType = "ticket_closed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string
	Type      EventType
	ActorID   int64
	Timestamp time.Time
	Payload   interface{}
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	OrderID       int64
	CustomerID    int64
	CustomerName  string
	Username      string
	Product       string
	Quantity      float64
	Total         float64
	Currency      string
	PaymentMethod domain.PaymentMethod
	ProofRef      string
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OrderID    int64
	CustomerID int64
	Product    string
	NewStatus  domain.OrderStatus
	Comment    string
	StaffID    int64
}

// OrderCommentedPayload payload.
type OrderCommentedPayload struct {
	OrderID    int64
	CustomerID int64
	Status     domain.OrderStatus
	Comment    string
	StaffID    int64
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID       int64
	CustomerID     int64
	CustomerName   string
	Message        string
	AttachmentRef  *string
	AttachmentKind *domain.AttachmentKind
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TicketID   int64
	CustomerID int64
	StaffID    int64
	StaffName  string
}

// TicketRepliedPayload payload.
type TicketRepliedPayload struct {
	TicketID   int64
	CustomerID int64
	StaffID    int64
	StaffName  string
	Body       string
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	TicketID   int64
	CustomerID int64
	StaffID    int64
}
