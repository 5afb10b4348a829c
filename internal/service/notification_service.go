package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/events"
	"github.com/starline-labs/storefront-desk/internal/observability"
	"github.com/starline-labs/storefront-desk/internal/transport"
)

// NotificationService fans lifecycle events out to staff and customers.
// Delivery is a side effect of an already-durable transition: every failure
// is logged and dropped after one attempt, never propagated to the caller.
type NotificationService struct {
	transport transport.Transport
	roles     RoleService
	logger    *zap.Logger
	metrics   *observability.Metrics

	inflight sync.WaitGroup
}

// NewNotificationService instantiates the service and subscribes it to every
// lifecycle event.
func NewNotificationService(
	dispatcher events.Dispatcher,
	tr transport.Transport,
	roles RoleService,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *NotificationService {
	s := &NotificationService{
		transport: tr,
		roles:     roles,
		logger:    logger,
		metrics:   metrics,
	}
	dispatcher.Subscribe(events.EventOrderCreated, s.onOrderCreated)
	dispatcher.Subscribe(events.EventOrderStatusChanged, s.onOrderStatusChanged)
	dispatcher.Subscribe(events.EventOrderCommented, s.onOrderCommented)
	dispatcher.Subscribe(events.EventTicketCreated, s.onTicketCreated)
	dispatcher.Subscribe(events.EventTicketAssigned, s.onTicketAssigned)
	dispatcher.Subscribe(events.EventTicketReplied, s.onTicketReplied)
	dispatcher.Subscribe(events.EventTicketClosed, s.onTicketClosed)
	return s
}

// Drain blocks until all in-flight deliveries finish. Used on shutdown and
// in tests.
func (s *NotificationService) Drain() {
	s.inflight.Wait()
}

// notifyStaff enumerates the live registry and invokes send once per
// recipient. The callback decides the delivery shape (text or attachment);
// each delivery runs independently so a slow or unreachable recipient never
// delays the rest.
func (s *NotificationService) notifyStaff(ctx context.Context, send func(recipientID int64)) {
	staff, err := s.roles.ListStaff(ctx)
	if err != nil {
		s.logger.Error("staff enumeration failed", zap.Error(err))
		return
	}
	for _, assignment := range staff {
		send(assignment.ActorID)
	}
}

// notifyCustomer is best-effort single-recipient delivery.
func (s *NotificationService) notifyCustomer(actorID int64, text string) {
	s.deliver(actorID, text)
}

func (s *NotificationService) deliver(actorID int64, text string) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		err := s.transport.SendMessage(context.Background(), actorID, text)
		s.metrics.RecordNotification(err == nil)
		if err != nil {
			s.logger.Warn("notification delivery failed",
				zap.Int64("recipient_id", actorID),
				zap.Error(err))
		}
	}()
}

func (s *NotificationService) deliverAttachment(actorID int64, fileRef string, kind domain.AttachmentKind, caption string) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		var err error
		switch kind {
		case domain.AttachmentKindDocument:
			err = s.transport.SendDocument(context.Background(), actorID, fileRef, caption)
		default:
			err = s.transport.SendPhoto(context.Background(), actorID, fileRef, caption)
		}
		s.metrics.RecordNotification(err == nil)
		if err != nil {
			s.logger.Warn("notification delivery failed",
				zap.Int64("recipient_id", actorID),
				zap.Error(err))
		}
	}()
}

func (s *NotificationService) onOrderCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OrderCreatedPayload)
	if !ok {
		return nil
	}
	caption := fmt.Sprintf(
		"New order #%d\nCustomer: %s (@%s, id %d)\nProduct: %s\nQuantity: %s\nTotal: %s %s\nPayment: %s",
		payload.OrderID,
		payload.CustomerName,
		payload.Username,
		payload.CustomerID,
		payload.Product,
		formatAmount(payload.Quantity),
		formatAmount(payload.Total),
		payload.Currency,
		payload.PaymentMethod,
	)

	s.notifyStaff(ctx, func(recipientID int64) {
		// The payment proof travels with the announcement so staff can
		// review it in place.
		if payload.ProofRef != "" {
			s.deliverAttachment(recipientID, payload.ProofRef, domain.AttachmentKindPhoto, caption)
		} else {
			s.deliver(recipientID, caption)
		}
	})
	return nil
}

func (s *NotificationService) onOrderStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OrderStatusChangedPayload)
	if !ok {
		return nil
	}
	var headline string
	switch payload.NewStatus {
	case domain.OrderStatusCompleted:
		headline = fmt.Sprintf("Your order #%d is completed.", payload.OrderID)
	case domain.OrderStatusCancelled:
		headline = fmt.Sprintf("Your order #%d was cancelled.", payload.OrderID)
	default:
		headline = fmt.Sprintf("Your order #%d is now %s.", payload.OrderID, payload.NewStatus)
	}
	if payload.Comment != "" {
		headline += "\nComment: " + payload.Comment
	}
	s.notifyCustomer(payload.CustomerID, headline)
	return nil
}

func (s *NotificationService) onOrderCommented(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OrderCommentedPayload)
	if !ok {
		return nil
	}
	s.notifyCustomer(payload.CustomerID, fmt.Sprintf(
		"Update on your order #%d (status: %s):\n%s",
		payload.OrderID, payload.Status, payload.Comment))
	return nil
}

func (s *NotificationService) onTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	text := fmt.Sprintf(
		"New support ticket #%d\nCustomer: %s (id %d)\n\n%s",
		payload.TicketID, payload.CustomerName, payload.CustomerID, payload.Message)

	s.notifyStaff(ctx, func(recipientID int64) {
		if payload.AttachmentRef != nil && payload.AttachmentKind != nil {
			s.deliverAttachment(recipientID, *payload.AttachmentRef, *payload.AttachmentKind, text)
		} else {
			s.deliver(recipientID, text)
		}
	})
	return nil
}

func (s *NotificationService) onTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	s.notifyCustomer(payload.CustomerID, fmt.Sprintf(
		"Your ticket #%d was taken by %s.", payload.TicketID, payload.StaffName))
	return nil
}

func (s *NotificationService) onTicketReplied(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketRepliedPayload)
	if !ok {
		return nil
	}
	s.notifyCustomer(payload.CustomerID, fmt.Sprintf(
		"Reply to your ticket #%d from %s:\n%s",
		payload.TicketID, payload.StaffName, payload.Body))
	return nil
}

func (s *NotificationService) onTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return nil
	}
	s.notifyCustomer(payload.CustomerID, fmt.Sprintf(
		"Your ticket #%d has been closed.", payload.TicketID))
	return nil
}

// formatAmount trims trailing zeros for display.
func formatAmount(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimRight(formatted, ".")
}
