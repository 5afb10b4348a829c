package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/starline-labs/storefront-desk/internal/config"
	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/events"
	"github.com/starline-labs/storefront-desk/internal/repository/repotest"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []events.Event
	for _, event := range r.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

type orderEnv struct {
	orders   OrderService
	roles    RoleService
	prices   PriceService
	repo     *repotest.OrderRepo
	recorder *eventRecorder
}

func newOrderEnv(t *testing.T) *orderEnv {
	t.Helper()
	roleRepo := newFakeRoleRepo()
	roles := NewRoleService(roleRepo, rootID, zap.NewNop())
	prices := NewPriceService(newFakePriceRepo(), roles, zap.NewNop())
	require.NoError(t, prices.Seed(context.Background()))

	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	dispatcher.Subscribe(events.EventOrderCreated, recorder.record)
	dispatcher.Subscribe(events.EventOrderStatusChanged, recorder.record)
	dispatcher.Subscribe(events.EventOrderCommented, recorder.record)

	repo := newFakeOrderRepo()
	payment := config.PaymentConfig{
		CryptoBotLinks: map[domain.ProductCode]string{domain.ProductStars: "https://pay.example/stars"},
		BEP20Wallet:    "0xwallet",
	}
	orders := NewOrderService(repo, newFakeActorRepo(), prices, roles, dispatcher, payment, zap.NewNop())
	return &orderEnv{orders: orders, roles: roles, prices: prices, repo: repo, recorder: recorder}
}

func starsOrderInput(customerID int64, quantity float64) CreateOrderInput {
	return CreateOrderInput{
		CustomerID:    customerID,
		Username:      "buyer",
		FullName:      "Buyer",
		Product:       domain.ProductStars,
		Quantity:      quantity,
		PaymentMethod: domain.PaymentMethodCryptoBot,
		ProofRef:      "proof-1",
	}
}

func TestCreateOrderComputesTotalAtCurrentRate(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()

	order, err := env.orders.Create(ctx, starsOrderInput(100, 500))
	require.NoError(t, err)
	assert.Equal(t, 725.0, order.Total)
	assert.Equal(t, "RUB", order.Currency)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "https://pay.example/stars", order.PaymentLink)

	created := env.recorder.ofType(events.EventOrderCreated)
	require.Len(t, created, 1)
	payload := created[0].Payload.(events.OrderCreatedPayload)
	assert.Equal(t, order.ID, payload.OrderID)
	assert.Equal(t, int64(100), payload.CustomerID)
}

func TestCreateOrderUsesRateInEffectAtConfirmation(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()

	// The rate changes between funnel start and confirmation; the later
	// rate must win.
	require.NoError(t, env.prices.Set(ctx, rootID, domain.PriceKeyStarRate, 2.0))

	order, err := env.orders.Create(ctx, starsOrderInput(100, 500))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, order.Total)
}

func TestCreateOrderRejectsOutOfRangeQuantity(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()

	_, err := env.orders.Create(ctx, starsOrderInput(100, 50))
	assert.True(t, util.IsInvalidInput(err))

	_, err = env.orders.Create(ctx, starsOrderInput(100, 25001))
	assert.True(t, util.IsInvalidInput(err))

	// Nothing was persisted and nothing announced.
	counts, err := env.repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.Empty(t, env.recorder.ofType(events.EventOrderCreated))
}

func TestCreateOrderPremiumIgnoresQuantity(t *testing.T) {
	env := newOrderEnv(t)

	order, err := env.orders.Create(context.Background(), CreateOrderInput{
		CustomerID:    100,
		Username:      "buyer",
		Product:       domain.ProductPremium6,
		Quantity:      40,
		PaymentMethod: domain.PaymentMethodBEP20,
		ProofRef:      "proof-2",
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, order.Quantity)
	assert.Equal(t, 19.0, order.Total)
	assert.Equal(t, "USDT", order.Currency)
	assert.Equal(t, "0xwallet", order.WalletAddress)
}

func TestCreateOrderRequiresProof(t *testing.T) {
	env := newOrderEnv(t)

	input := starsOrderInput(100, 500)
	input.ProofRef = ""
	_, err := env.orders.Create(context.Background(), input)
	assert.True(t, util.IsInvalidInput(err))
}

func TestCompleteRequiresStaffTier(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()

	order, err := env.orders.Create(ctx, starsOrderInput(100, 500))
	require.NoError(t, err)

	// The customer holds no tier: the denial is Unauthorized, never
	// Forbidden. Same for an actor the desk has never seen.
	_, err = env.orders.Complete(ctx, 100, order.ID, "")
	assert.True(t, util.IsUnauthorized(err))
	assert.False(t, util.IsForbidden(err))

	_, err = env.orders.Complete(ctx, 999, order.ID, "")
	assert.True(t, util.IsUnauthorized(err))
}

func TestCompleteAppliesDefaultComment(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()

	order, err := env.orders.Create(ctx, starsOrderInput(100, 500))
	require.NoError(t, err)

	resolved, err := env.orders.Complete(ctx, rootID, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, resolved.Status)
	assert.Equal(t, "Order completed", resolved.StaffComment)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, rootID, *resolved.ResolvedBy)

	changed := env.recorder.ofType(events.EventOrderStatusChanged)
	require.Len(t, changed, 1)
}

func TestCancelAppliesDefaultComment(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()

	order, err := env.orders.Create(ctx, starsOrderInput(100, 500))
	require.NoError(t, err)

	resolved, err := env.orders.Cancel(ctx, rootID, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, resolved.Status)
	assert.Equal(t, "Order cancelled", resolved.StaffComment)
}

func TestCommentPreservesStatus(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()

	order, err := env.orders.Create(ctx, starsOrderInput(100, 500))
	require.NoError(t, err)
	_, err = env.orders.Complete(ctx, rootID, order.ID, "")
	require.NoError(t, err)

	commented, err := env.orders.Comment(ctx, rootID, order.ID, "shipped manually")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, commented.Status)
	assert.Equal(t, "shipped manually", commented.StaffComment)

	commentEvents := env.recorder.ofType(events.EventOrderCommented)
	require.Len(t, commentEvents, 1)
	payload := commentEvents[0].Payload.(events.OrderCommentedPayload)
	assert.Equal(t, domain.OrderStatusCompleted, payload.Status)
}

// Two staff members resolving the same order concurrently: no serialization
// is provided, the last write wins, and both trigger a customer
// notification event.
func TestConcurrentResolutionLastWriteWins(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()

	_, err := env.roles.Grant(ctx, rootID, 20, domain.TierSupport)
	require.NoError(t, err)

	order, err := env.orders.Create(ctx, starsOrderInput(100, 500))
	require.NoError(t, err)

	_, err = env.orders.Complete(ctx, rootID, order.ID, "")
	require.NoError(t, err)
	_, err = env.orders.Cancel(ctx, 20, order.ID, "")
	require.NoError(t, err)

	stored, err := env.orders.GetByID(ctx, rootID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, stored.Status)

	changed := env.recorder.ofType(events.EventOrderStatusChanged)
	assert.Len(t, changed, 2)
}

func TestListMineReturnsAtMostTen(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := env.orders.Create(ctx, starsOrderInput(100, 500))
		require.NoError(t, err)
	}
	_, err := env.orders.Create(ctx, starsOrderInput(200, 500))
	require.NoError(t, err)

	mine, err := env.orders.ListMine(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, mine, 10)
	for _, order := range mine {
		assert.Equal(t, int64(100), order.CustomerID)
	}
}

func TestStatsSummarizesOrders(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()

	first, err := env.orders.Create(ctx, starsOrderInput(100, 500))
	require.NoError(t, err)
	_, err = env.orders.Create(ctx, starsOrderInput(101, 1000))
	require.NoError(t, err)
	_, err = env.orders.Complete(ctx, rootID, first.ID, "")
	require.NoError(t, err)

	stats, err := env.orders.Stats(ctx, rootID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.CountsByStatus[domain.OrderStatusCompleted])
	assert.Equal(t, int64(1), stats.CountsByStatus[domain.OrderStatusPending])
	assert.Equal(t, 725.0, stats.RevenueByCurrency["RUB"])
}
