package engine

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/starline-labs/storefront-desk/internal/config"
	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/events"
	"github.com/starline-labs/storefront-desk/internal/funnel"
	"github.com/starline-labs/storefront-desk/internal/observability"
	"github.com/starline-labs/storefront-desk/internal/repository/repotest"
	"github.com/starline-labs/storefront-desk/internal/service"
	"github.com/starline-labs/storefront-desk/internal/transport"
)

const rootID int64 = 1

type recordingTransport struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{sent: make(map[int64][]string)}
}

func (r *recordingTransport) SendMessage(_ context.Context, actorID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[actorID] = append(r.sent[actorID], text)
	return nil
}

func (r *recordingTransport) SendPhoto(ctx context.Context, actorID int64, fileRef, caption string) error {
	return r.SendMessage(ctx, actorID, "photo:"+fileRef+" "+caption)
}

func (r *recordingTransport) SendDocument(ctx context.Context, actorID int64, fileRef, caption string) error {
	return r.SendMessage(ctx, actorID, "document:"+fileRef+" "+caption)
}

func (r *recordingTransport) lastTo(actorID int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	messages := r.sent[actorID]
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1]
}

type engineEnv struct {
	engine    *Engine
	transport *recordingTransport
	orders    service.OrderService
	tickets   service.TicketService
	roles     service.RoleService
	orderRepo *repotest.OrderRepo
}

func newEngineEnv(t *testing.T) *engineEnv {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	roles := service.NewRoleService(repotest.NewRoleRepo(), rootID, logger)
	prices := service.NewPriceService(repotest.NewPriceRepo(), roles, logger)
	require.NoError(t, prices.Seed(context.Background()))

	actorRepo := repotest.NewActorRepo()
	orderRepo := repotest.NewOrderRepo()
	payment := config.PaymentConfig{
		CryptoBotLinks: map[domain.ProductCode]string{domain.ProductStars: "https://pay.example/stars"},
		BEP20Wallet:    "0xwallet",
	}
	orders := service.NewOrderService(orderRepo, actorRepo, prices, roles, dispatcher, payment, logger)
	tickets := service.NewTicketService(repotest.NewTicketRepo(), repotest.NewReplyRepo(), actorRepo, roles, dispatcher, logger)

	tr := newRecordingTransport()
	eng := New(funnel.NewStore(), orders, tickets, prices, roles, actorRepo, tr, payment, logger, metrics)
	return &engineEnv{engine: eng, transport: tr, orders: orders, tickets: tickets, roles: roles, orderRepo: orderRepo}
}

func callback(actorID int64, data string) transport.Update {
	return transport.Update{ActorID: actorID, Username: "user", FullName: "User", Kind: transport.UpdateKindCallback, Callback: data}
}

func text(actorID int64, body string) transport.Update {
	return transport.Update{ActorID: actorID, Username: "user", FullName: "User", Kind: transport.UpdateKindText, Text: body}
}

func photo(actorID int64, fileRef string) transport.Update {
	return transport.Update{
		ActorID:  actorID,
		Username: "user",
		FullName: "User",
		Kind:     transport.UpdateKindAttachment,
		Attachment: &transport.Attachment{
			FileRef: fileRef,
			Kind:    domain.AttachmentKindPhoto,
		},
	}
}

func TestPurchaseFunnelEndToEnd(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	const customer int64 = 100

	env.engine.HandleUpdate(ctx, callback(customer, "buy_stars"))
	assert.Contains(t, env.transport.lastTo(customer), "100 to 25000")

	env.engine.HandleUpdate(ctx, text(customer, "500"))
	assert.Contains(t, env.transport.lastTo(customer), "725 RUB")

	env.engine.HandleUpdate(ctx, callback(customer, "pay_crypto_bot"))
	assert.Contains(t, env.transport.lastTo(customer), "https://pay.example/stars")

	env.engine.HandleUpdate(ctx, photo(customer, "receipt-1"))
	assert.Contains(t, env.transport.lastTo(customer), "Order #1 accepted")

	stored, err := env.orderRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 725.0, stored.Total)
	assert.Equal(t, domain.OrderStatusPending, stored.Status)
	assert.Equal(t, "receipt-1", stored.ProofRef)
}

func TestInvalidQuantityKeepsFunnelOpen(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	const customer int64 = 100

	env.engine.HandleUpdate(ctx, callback(customer, "buy_stars"))
	env.engine.HandleUpdate(ctx, text(customer, "50"))
	assert.Contains(t, env.transport.lastTo(customer), "out of range")

	// The funnel is still open; a valid retry advances it.
	env.engine.HandleUpdate(ctx, text(customer, "500"))
	assert.Contains(t, env.transport.lastTo(customer), "725 RUB")
}

func TestProofRejectedUntilPhoto(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	const customer int64 = 100

	env.engine.HandleUpdate(ctx, callback(customer, "buy_stars"))
	env.engine.HandleUpdate(ctx, text(customer, "500"))
	env.engine.HandleUpdate(ctx, callback(customer, "pay_bep20"))
	assert.Contains(t, env.transport.lastTo(customer), "0xwallet")

	env.engine.HandleUpdate(ctx, text(customer, "i paid"))
	assert.Contains(t, env.transport.lastTo(customer), "must be a photo")

	env.engine.HandleUpdate(ctx, photo(customer, "receipt-2"))
	assert.Contains(t, env.transport.lastTo(customer), "accepted")
}

func TestCancelAbortsFunnel(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	const customer int64 = 100

	env.engine.HandleUpdate(ctx, callback(customer, "buy_ton"))
	env.engine.HandleUpdate(ctx, text(customer, "/cancel"))
	assert.Equal(t, "Cancelled.", env.transport.lastTo(customer))

	// No funnel left; plain text gets the default hint.
	env.engine.HandleUpdate(ctx, text(customer, "5"))
	assert.Contains(t, env.transport.lastTo(customer), "/start")
}

func TestPremiumSkipsQuantity(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	const customer int64 = 100

	env.engine.HandleUpdate(ctx, callback(customer, "premium_6"))
	last := env.transport.lastTo(customer)
	assert.Contains(t, last, "19 USDT")
	assert.Contains(t, last, "pay_crypto_bot")
}

func TestTicketFunnelCreatesTicket(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()
	const customer int64 = 100

	env.engine.HandleUpdate(ctx, callback(customer, "support"))
	assert.Contains(t, env.transport.lastTo(customer), "Describe your problem")

	env.engine.HandleUpdate(ctx, text(customer, "my order is stuck"))
	assert.Contains(t, env.transport.lastTo(customer), "Ticket #1 created")

	bundle, err := env.tickets.GetByID(ctx, rootID, 1)
	require.NoError(t, err)
	assert.Equal(t, "my order is stuck", bundle.Ticket.Message)
	assert.Equal(t, domain.TicketStatusNew, bundle.Ticket.Status)
}

func TestStaffResolvesOrderViaCallback(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	_, err := env.orders.Create(ctx, service.CreateOrderInput{
		CustomerID:    100,
		Username:      "user",
		Product:       domain.ProductStars,
		Quantity:      500,
		PaymentMethod: domain.PaymentMethodCryptoBot,
		ProofRef:      "p1",
	})
	require.NoError(t, err)

	env.engine.HandleUpdate(ctx, callback(rootID, "complete_order_1"))
	assert.Contains(t, env.transport.lastTo(rootID), "completed")

	stored, err := env.orderRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, stored.Status)
}

func TestNonStaffCannotResolveOrders(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	_, err := env.orders.Create(ctx, service.CreateOrderInput{
		CustomerID:    100,
		Username:      "user",
		Product:       domain.ProductStars,
		Quantity:      500,
		PaymentMethod: domain.PaymentMethodCryptoBot,
		ProofRef:      "p1",
	})
	require.NoError(t, err)

	env.engine.HandleUpdate(ctx, callback(100, "complete_order_1"))
	assert.Contains(t, env.transport.lastTo(100), "staff access required")

	stored, err := env.orderRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, stored.Status)
}

func TestTicketReplyViaPendingInput(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	env.engine.HandleUpdate(ctx, callback(100, "support"))
	env.engine.HandleUpdate(ctx, text(100, "help me"))

	env.engine.HandleUpdate(ctx, callback(rootID, "take_ticket_1"))
	assert.Contains(t, env.transport.lastTo(rootID), "yours")

	env.engine.HandleUpdate(ctx, callback(rootID, "reply_ticket_1"))
	env.engine.HandleUpdate(ctx, text(rootID, "on it"))
	assert.Contains(t, env.transport.lastTo(rootID), "Reply sent")

	bundle, err := env.tickets.GetByID(ctx, rootID, 1)
	require.NoError(t, err)
	require.Len(t, bundle.Replies, 1)
	assert.Equal(t, "on it", bundle.Replies[0].Body)
}

func TestGrantCommandAndCourtesyNote(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	env.engine.HandleUpdate(ctx, text(rootID, "/grant 42"))
	assert.Contains(t, env.transport.lastTo(rootID), "Granted SUPPORT")
	assert.Contains(t, env.transport.lastTo(42), "granted SUPPORT access")

	tier, err := env.roles.TierOf(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.TierSupport, tier)
}

func TestGrantFullPendingInputKeepsRequestedTier(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	// /grantfull with no argument asks for the id; the follow-up message
	// must still grant FULL_ADMIN, not the default support tier.
	env.engine.HandleUpdate(ctx, text(rootID, "/grantfull"))
	assert.Contains(t, env.transport.lastTo(rootID), "FULL_ADMIN")

	env.engine.HandleUpdate(ctx, text(rootID, "43"))
	assert.Contains(t, env.transport.lastTo(rootID), "Granted FULL_ADMIN")

	tier, err := env.roles.TierOf(ctx, 43)
	require.NoError(t, err)
	assert.Equal(t, domain.TierFullAdmin, tier)
}

func TestSetPriceCommandTakesEffect(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	env.engine.HandleUpdate(ctx, text(rootID, "/setprice star_rate 2"))
	assert.Contains(t, env.transport.lastTo(rootID), "set to 2")

	env.engine.HandleUpdate(ctx, callback(100, "buy_stars"))
	env.engine.HandleUpdate(ctx, text(100, "500"))
	assert.Contains(t, env.transport.lastTo(100), "1000 RUB")
}

func TestStartMenuHidesStaffSections(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	env.engine.HandleUpdate(ctx, text(100, "/start"))
	assert.NotContains(t, env.transport.lastTo(100), "/orders")

	env.engine.HandleUpdate(ctx, text(rootID, "/start"))
	menu := env.transport.lastTo(rootID)
	assert.Contains(t, menu, "/orders")
	assert.Contains(t, menu, "/setprice")
}

func TestOrderQueueListing(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	_, err := env.orders.Create(ctx, service.CreateOrderInput{
		CustomerID:    100,
		Username:      "user",
		Product:       domain.ProductStars,
		Quantity:      500,
		PaymentMethod: domain.PaymentMethodCryptoBot,
		ProofRef:      "p1",
	})
	require.NoError(t, err)

	env.engine.HandleUpdate(ctx, text(rootID, "/orders"))
	listing := env.transport.lastTo(rootID)
	assert.Contains(t, listing, "/order_1")
	assert.Contains(t, listing, "Stars")

	env.engine.HandleUpdate(ctx, text(rootID, "/order_1"))
	detail := env.transport.lastTo(rootID)
	assert.True(t, strings.HasPrefix(detail, "Order #1"))
	assert.Contains(t, detail, "complete_order_1")

	// Unknown ids surface as not found.
	env.engine.HandleUpdate(ctx, text(rootID, "/order_99"))
	assert.Contains(t, env.transport.lastTo(rootID), "not found")
}
