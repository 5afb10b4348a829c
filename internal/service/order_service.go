package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/starline-labs/storefront-desk/internal/config"
	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/events"
	"github.com/starline-labs/storefront-desk/internal/repository"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

const (
	defaultCompleteComment = "Order completed"
	defaultCancelComment   = "Order cancelled"
)

// CreateOrderInput carries everything needed to file an order, whether it
// arrives through the chat funnel or the external storefront endpoint. Both
// paths produce identical records.
type CreateOrderInput struct {
	CustomerID    int64
	Username      string
	FullName      string
	Product       domain.ProductCode
	Quantity      float64
	PaymentMethod domain.PaymentMethod
	ProofRef      string
}

// OrderStats is the staff-facing summary.
type OrderStats struct {
	CountsByStatus    map[domain.OrderStatus]int64
	RevenueByCurrency map[string]float64
	KnownCustomers    int64
}

// OrderService owns the order lifecycle: creation from a confirmed funnel or
// the storefront, staff resolution, and the comment trail.
type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	Complete(ctx context.Context, staffID, orderID int64, comment string) (*domain.Order, error)
	Cancel(ctx context.Context, staffID, orderID int64, comment string) (*domain.Order, error)
	Comment(ctx context.Context, staffID, orderID int64, comment string) (*domain.Order, error)
	GetByID(ctx context.Context, staffID, orderID int64) (*domain.Order, error)
	ListMine(ctx context.Context, customerID int64) ([]domain.Order, error)
	ListWithFilter(ctx context.Context, staffID int64, filter repository.OrderFilter) ([]domain.Order, error)
	Stats(ctx context.Context, staffID int64) (*OrderStats, error)
	Quote(ctx context.Context, code domain.ProductCode, quantity float64) (float64, error)
}

type orderService struct {
	orders     repository.OrderRepository
	actors     repository.ActorRepository
	prices     PriceService
	roles      RoleService
	dispatcher events.Dispatcher
	payment    config.PaymentConfig
	logger     *zap.Logger
}

// NewOrderService instantiates the service.
func NewOrderService(
	orders repository.OrderRepository,
	actors repository.ActorRepository,
	prices PriceService,
	roles RoleService,
	dispatcher events.Dispatcher,
	payment config.PaymentConfig,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orders:     orders,
		actors:     actors,
		prices:     prices,
		roles:      roles,
		dispatcher: dispatcher,
		payment:    payment,
		logger:     logger,
	}
}

func (s *orderService) requireStaff(ctx context.Context, staffID int64) error {
	tier, err := s.roles.TierOf(ctx, staffID)
	if err != nil {
		return err
	}
	return requireTier(tier, domain.TierSupport, "staff tier required")
}

// Quote evaluates a total at the current rate. Subscription products ignore
// the requested quantity and price a single unit.
func (s *orderService) Quote(ctx context.Context, code domain.ProductCode, quantity float64) (float64, error) {
	product, ok := domain.Catalog[code]
	if !ok {
		return 0, util.NewValidationError("unknown product", map[string]any{"product": code})
	}
	rate, err := s.prices.Get(ctx, product.PriceKey)
	if err != nil {
		return 0, err
	}
	if product.FixedQuantity {
		return rate, nil
	}
	if quantity < product.MinQuantity || quantity > product.MaxQuantity {
		return 0, util.NewInvalidInput("quantity out of range", map[string]any{
			"product": code,
			"min":     product.MinQuantity,
			"max":     product.MaxQuantity,
		})
	}
	return quantity * rate, nil
}

func (s *orderService) Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	product, ok := domain.Catalog[input.Product]
	if !ok {
		return nil, util.NewValidationError("unknown product", map[string]any{"product": input.Product})
	}
	if input.PaymentMethod != domain.PaymentMethodCryptoBot && input.PaymentMethod != domain.PaymentMethodBEP20 {
		return nil, util.NewValidationError("unknown payment method", map[string]any{"payment_method": input.PaymentMethod})
	}
	if input.ProofRef == "" {
		return nil, util.NewInvalidInput("payment proof is required", nil)
	}

	quantity := input.Quantity
	if product.FixedQuantity {
		quantity = 1
	}
	total, err := s.Quote(ctx, input.Product, quantity)
	if err != nil {
		return nil, err
	}

	actor := &domain.Actor{ID: input.CustomerID, Username: input.Username, FullName: input.FullName}
	if err := s.actors.Upsert(ctx, actor); err != nil {
		return nil, util.NewInternalError(err)
	}

	order := &domain.Order{
		CustomerID:    input.CustomerID,
		Username:      input.Username,
		Product:       product.Name,
		Quantity:      quantity,
		Total:         total,
		Currency:      product.Currency,
		PaymentMethod: input.PaymentMethod,
		ProofRef:      input.ProofRef,
		Status:        domain.OrderStatusPending,
	}
	switch input.PaymentMethod {
	case domain.PaymentMethodCryptoBot:
		order.PaymentLink = s.payment.CryptoBotLinks[input.Product]
	case domain.PaymentMethodBEP20:
		order.WalletAddress = s.payment.BEP20Wallet
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, util.NewInternalError(err)
	}
	s.logger.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", order.CustomerID),
		zap.String("product", order.Product),
		zap.Float64("total", order.Total))

	s.publish(ctx, events.EventOrderCreated, input.CustomerID, events.OrderCreatedPayload{
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		CustomerName:  input.FullName,
		Username:      order.Username,
		Product:       order.Product,
		Quantity:      order.Quantity,
		Total:         order.Total,
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
		ProofRef:      order.ProofRef,
	})
	return order, nil
}

// Complete marks an order completed. Transitions are last-write-wins: a
// concurrent resolution by another staff member is silently overwritten.
func (s *orderService) Complete(ctx context.Context, staffID, orderID int64, comment string) (*domain.Order, error) {
	if comment == "" {
		comment = defaultCompleteComment
	}
	return s.resolve(ctx, staffID, orderID, domain.OrderStatusCompleted, comment)
}

// Cancel marks an order cancelled.
func (s *orderService) Cancel(ctx context.Context, staffID, orderID int64, comment string) (*domain.Order, error) {
	if comment == "" {
		comment = defaultCancelComment
	}
	return s.resolve(ctx, staffID, orderID, domain.OrderStatusCancelled, comment)
}

func (s *orderService) resolve(ctx context.Context, staffID, orderID int64, status domain.OrderStatus, comment string) (*domain.Order, error) {
	if err := s.requireStaff(ctx, staffID); err != nil {
		return nil, err
	}
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status, &staffID, comment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		return nil, util.NewInternalError(err)
	}
	order.Status = status
	order.StaffComment = comment
	order.ResolvedBy = &staffID

	s.logger.Info("order resolved",
		zap.Int64("order_id", orderID),
		zap.String("status", string(status)),
		zap.Int64("staff_id", staffID))

	s.publish(ctx, events.EventOrderStatusChanged, staffID, events.OrderStatusChangedPayload{
		OrderID:    orderID,
		CustomerID: order.CustomerID,
		Product:    order.Product,
		NewStatus:  status,
		Comment:    comment,
		StaffID:    staffID,
	})
	return order, nil
}

// Comment replaces the staff comment without touching the status.
func (s *orderService) Comment(ctx context.Context, staffID, orderID int64, comment string) (*domain.Order, error) {
	if err := s.requireStaff(ctx, staffID); err != nil {
		return nil, err
	}
	if comment == "" {
		return nil, util.NewInvalidInput("comment must not be empty", nil)
	}
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, orderID, order.Status, order.ResolvedBy, comment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		return nil, util.NewInternalError(err)
	}
	order.StaffComment = comment

	s.publish(ctx, events.EventOrderCommented, staffID, events.OrderCommentedPayload{
		OrderID:    orderID,
		CustomerID: order.CustomerID,
		Status:     order.Status,
		Comment:    comment,
		StaffID:    staffID,
	})
	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, staffID, orderID int64) (*domain.Order, error) {
	if err := s.requireStaff(ctx, staffID); err != nil {
		return nil, err
	}
	return s.getOrder(ctx, orderID)
}

func (s *orderService) getOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		return nil, util.NewInternalError(err)
	}
	return order, nil
}

// ListMine returns the customer's ten most recent orders.
func (s *orderService) ListMine(ctx context.Context, customerID int64) ([]domain.Order, error) {
	orders, err := s.orders.ListByCustomer(ctx, customerID, 10)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return orders, nil
}

func (s *orderService) ListWithFilter(ctx context.Context, staffID int64, filter repository.OrderFilter) ([]domain.Order, error) {
	if err := s.requireStaff(ctx, staffID); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return orders, nil
}

func (s *orderService) Stats(ctx context.Context, staffID int64) (*OrderStats, error) {
	if err := s.requireStaff(ctx, staffID); err != nil {
		return nil, err
	}
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	revenue, err := s.orders.RevenueByCurrency(ctx, domain.OrderStatusCompleted)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	customers, err := s.actors.Count(ctx)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return &OrderStats{
		CountsByStatus:    counts,
		RevenueByCurrency: revenue,
		KnownCustomers:    customers,
	}, nil
}

func (s *orderService) publish(ctx context.Context, eventType events.EventType, actorID int64, payload interface{}) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
