// Package engine routes inbound chat updates: customer messages advance
// their funnel, staff actions are authorized against the role registry and
// applied to order/ticket lifecycles.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/starline-labs/storefront-desk/internal/config"
	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/funnel"
	"github.com/starline-labs/storefront-desk/internal/observability"
	"github.com/starline-labs/storefront-desk/internal/repository"
	"github.com/starline-labs/storefront-desk/internal/service"
	"github.com/starline-labs/storefront-desk/internal/transport"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

// pendingAction marks a staff member whose next text message completes a
// started action.
type pendingAction struct {
	kind     string
	targetID int64
	priceKey domain.PriceKey
	tier     domain.Tier
}

const (
	pendingOrderComment = "order_comment"
	pendingTicketReply  = "ticket_reply"
	pendingSetPrice     = "set_price"
	pendingGrant        = "grant"
)

// Engine is the conversational entry point for all actors.
type Engine struct {
	store   *funnel.Store
	orders  service.OrderService
	tickets service.TicketService
	prices  service.PriceService
	roles   service.RoleService
	actors  repository.ActorRepository
	sender  transport.Transport
	payment config.PaymentConfig
	logger  *zap.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	pending map[int64]pendingAction
}

// New wires the engine.
func New(
	store *funnel.Store,
	orders service.OrderService,
	tickets service.TicketService,
	prices service.PriceService,
	roles service.RoleService,
	actors repository.ActorRepository,
	sender transport.Transport,
	payment config.PaymentConfig,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Engine {
	return &Engine{
		store:   store,
		orders:  orders,
		tickets: tickets,
		prices:  prices,
		roles:   roles,
		actors:  actors,
		sender:  sender,
		payment: payment,
		logger:  logger,
		metrics: metrics,
		pending: make(map[int64]pendingAction),
	}
}

// HandleUpdate processes one inbound update as an independent unit of work.
// Errors are reported to the actor, never returned upward.
func (e *Engine) HandleUpdate(ctx context.Context, update transport.Update) {
	e.metrics.RecordUpdate(string(update.Kind))

	actor := &domain.Actor{ID: update.ActorID, Username: update.Username, FullName: update.FullName}
	if err := e.actors.Upsert(ctx, actor); err != nil {
		e.logger.Error("actor upsert failed", zap.Int64("actor_id", update.ActorID), zap.Error(err))
	}

	switch update.Kind {
	case transport.UpdateKindCallback:
		e.handleCallback(ctx, update)
	case transport.UpdateKindAttachment:
		e.handleAttachment(ctx, update)
	default:
		if strings.HasPrefix(update.Text, "/") {
			e.handleCommand(ctx, update)
		} else {
			e.handleText(ctx, update)
		}
	}
}

func (e *Engine) reply(ctx context.Context, actorID int64, text string) {
	if err := e.sender.SendMessage(ctx, actorID, text); err != nil {
		e.logger.Warn("reply delivery failed", zap.Int64("actor_id", actorID), zap.Error(err))
	}
}

func (e *Engine) replyError(ctx context.Context, actorID int64, err error) {
	e.reply(ctx, actorID, util.ToDomainError(err).Message)
}

func (e *Engine) setPending(actorID int64, action pendingAction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending[actorID] = action
}

func (e *Engine) takePending(actorID int64) (pendingAction, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	action, ok := e.pending[actorID]
	if ok {
		delete(e.pending, actorID)
	}
	return action, ok
}

func (e *Engine) clearPending(actorID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, actorID)
}

// --- callbacks ---

func (e *Engine) handleCallback(ctx context.Context, update transport.Update) {
	data := update.Callback

	switch data {
	case "buy_stars":
		e.startPurchase(ctx, update, domain.ProductStars)
		return
	case "buy_ton":
		e.startPurchase(ctx, update, domain.ProductTon)
		return
	case "buy_premium":
		e.reply(ctx, update.ActorID,
			"Choose a plan:\n premium_3 - 3 months\n premium_6 - 6 months\n premium_12 - 12 months")
		return
	case "premium_3", "premium_6", "premium_12":
		e.startPurchase(ctx, update, domain.ProductCode(data))
		return
	case "pay_crypto_bot":
		e.selectPayment(ctx, update, domain.PaymentMethodCryptoBot)
		return
	case "pay_bep20":
		e.selectPayment(ctx, update, domain.PaymentMethodBEP20)
		return
	case "cancel":
		e.cancelFunnel(ctx, update.ActorID)
		return
	case "support":
		e.store.StartTicket(update.ActorID)
		e.reply(ctx, update.ActorID, "Describe your problem in one message. You can attach a photo or a document.")
		return
	case "rates":
		e.showRates(ctx, update.ActorID)
		return
	case "my_orders":
		e.showMyOrders(ctx, update.ActorID)
		return
	}

	if id, ok := suffixID(data, "complete_order_"); ok {
		e.resolveOrder(ctx, update.ActorID, id, true)
		return
	}
	if id, ok := suffixID(data, "cancel_order_"); ok {
		e.resolveOrder(ctx, update.ActorID, id, false)
		return
	}
	if id, ok := suffixID(data, "comment_order_"); ok {
		e.setPending(update.ActorID, pendingAction{kind: pendingOrderComment, targetID: id})
		e.reply(ctx, update.ActorID, fmt.Sprintf("Send the comment for order #%d.", id))
		return
	}
	if id, ok := suffixID(data, "take_ticket_"); ok {
		e.takeTicket(ctx, update, id)
		return
	}
	if id, ok := suffixID(data, "reply_ticket_"); ok {
		e.setPending(update.ActorID, pendingAction{kind: pendingTicketReply, targetID: id})
		e.reply(ctx, update.ActorID, fmt.Sprintf("Send the reply for ticket #%d.", id))
		return
	}
	if id, ok := suffixID(data, "close_ticket_"); ok {
		e.closeTicket(ctx, update.ActorID, id)
		return
	}

	e.logger.Debug("unknown callback", zap.String("data", data), zap.Int64("actor_id", update.ActorID))
}

func suffixID(data, prefix string) (int64, bool) {
	if !strings.HasPrefix(data, prefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (e *Engine) startPurchase(ctx context.Context, update transport.Update, code domain.ProductCode) {
	session := e.store.StartPurchase(update.ActorID)
	if err := session.SelectProduct(code); err != nil {
		e.store.End(update.ActorID)
		e.replyError(ctx, update.ActorID, err)
		return
	}
	product := domain.Catalog[code]
	if session.Stage == funnel.StageSelectingPayment {
		total, err := e.orders.Quote(ctx, code, 1)
		if err != nil {
			e.store.End(update.ActorID)
			e.replyError(ctx, update.ActorID, err)
			return
		}
		e.reply(ctx, update.ActorID, fmt.Sprintf(
			"%s costs %s %s.\nChoose payment: pay_crypto_bot or pay_bep20. Send /cancel to abort.",
			product.Name, trimAmount(total), product.Currency))
		return
	}
	e.reply(ctx, update.ActorID, fmt.Sprintf(
		"Enter the amount of %s (%s to %s). Send /cancel to abort.",
		product.Name, trimAmount(product.MinQuantity), trimAmount(product.MaxQuantity)))
}

func (e *Engine) selectPayment(ctx context.Context, update transport.Update, method domain.PaymentMethod) {
	session, ok := e.store.Get(update.ActorID)
	if !ok || session.Kind != funnel.KindPurchase {
		e.reply(ctx, update.ActorID, "No purchase in progress.")
		return
	}
	if err := session.Purchase.SelectPayment(method); err != nil {
		e.replyError(ctx, update.ActorID, err)
		return
	}
	product := domain.Catalog[session.Purchase.Product]
	total, err := e.orders.Quote(ctx, session.Purchase.Product, session.Purchase.Quantity)
	if err != nil {
		e.replyError(ctx, update.ActorID, err)
		return
	}

	var instructions string
	switch method {
	case domain.PaymentMethodCryptoBot:
		instructions = fmt.Sprintf("Pay %s %s via the link: %s",
			trimAmount(total), product.Currency, e.payment.CryptoBotLinks[session.Purchase.Product])
	case domain.PaymentMethodBEP20:
		instructions = fmt.Sprintf("Send %s %s to the BEP20 wallet:\n%s",
			trimAmount(total), product.Currency, e.payment.BEP20Wallet)
	}
	e.reply(ctx, update.ActorID, instructions+"\n\nThen send a screenshot of the payment as a photo.")
}

func (e *Engine) cancelFunnel(ctx context.Context, actorID int64) {
	if _, ok := e.store.Get(actorID); !ok {
		e.clearPending(actorID)
		e.reply(ctx, actorID, "Nothing to cancel.")
		return
	}
	e.store.End(actorID)
	e.clearPending(actorID)
	e.metrics.RecordFunnelOutcome("cancelled")
	e.reply(ctx, actorID, "Cancelled.")
}

// --- commands ---

func (e *Engine) handleCommand(ctx context.Context, update transport.Update) {
	fields := strings.Fields(update.Text)
	command := fields[0]
	args := fields[1:]

	switch command {
	case "/start":
		e.showStart(ctx, update.ActorID)
		return
	case "/cancel":
		e.cancelFunnel(ctx, update.ActorID)
		return
	case "/rates":
		e.showRates(ctx, update.ActorID)
		return
	case "/myorders":
		e.showMyOrders(ctx, update.ActorID)
		return
	case "/orders":
		e.showOrderQueue(ctx, update.ActorID)
		return
	case "/tickets":
		e.showTicketQueue(ctx, update.ActorID)
		return
	case "/stats":
		e.showStats(ctx, update.ActorID)
		return
	case "/staff":
		e.showStaff(ctx, update.ActorID)
		return
	case "/grant":
		e.grant(ctx, update.ActorID, args, domain.TierSupport)
		return
	case "/grantfull":
		e.grant(ctx, update.ActorID, args, domain.TierFullAdmin)
		return
	case "/revoke":
		e.revoke(ctx, update.ActorID, args)
		return
	case "/settier":
		e.setTier(ctx, update.ActorID, args)
		return
	case "/setprice":
		e.setPrice(ctx, update.ActorID, args)
		return
	}

	if id, ok := suffixID(command, "/order_"); ok {
		e.showOrder(ctx, update.ActorID, id)
		return
	}
	if id, ok := suffixID(command, "/ticket_"); ok {
		e.showTicket(ctx, update.ActorID, id)
		return
	}
	e.reply(ctx, update.ActorID, "Unknown command. Send /start for the menu.")
}

func (e *Engine) showStart(ctx context.Context, actorID int64) {
	tier, err := e.roles.TierOf(ctx, actorID)
	if err != nil {
		e.replyError(ctx, actorID, err)
		return
	}
	var b strings.Builder
	b.WriteString("Welcome!\n")
	b.WriteString(" buy_stars - buy Stars\n")
	b.WriteString(" buy_ton - buy TON\n")
	b.WriteString(" buy_premium - buy Premium\n")
	b.WriteString(" rates - current rates\n")
	b.WriteString(" my_orders - your recent orders\n")
	b.WriteString(" support - open a support ticket\n")
	if tier >= domain.TierSupport {
		b.WriteString("\nStaff:\n /orders /tickets /stats\n")
	}
	if tier >= domain.TierFullAdmin {
		b.WriteString(" /staff /grant /grantfull /revoke /settier /setprice\n")
	}
	e.reply(ctx, actorID, b.String())
}

// --- free text and attachments ---

func (e *Engine) handleText(ctx context.Context, update transport.Update) {
	if action, ok := e.takePending(update.ActorID); ok {
		e.completePending(ctx, update, action)
		return
	}

	session, ok := e.store.Get(update.ActorID)
	if !ok {
		e.reply(ctx, update.ActorID, "Send /start for the menu.")
		return
	}

	switch session.Kind {
	case funnel.KindTicket:
		e.finishTicketFunnel(ctx, update, session.Ticket, nil)
	case funnel.KindPurchase:
		e.advancePurchaseText(ctx, update, session.Purchase)
	}
}

func (e *Engine) advancePurchaseText(ctx context.Context, update transport.Update, session *funnel.PurchaseSession) {
	switch session.Stage {
	case funnel.StageEnteringQuantity:
		if err := session.EnterQuantity(update.Text); err != nil {
			e.replyError(ctx, update.ActorID, err)
			return
		}
		product := domain.Catalog[session.Product]
		total, err := e.orders.Quote(ctx, session.Product, session.Quantity)
		if err != nil {
			e.replyError(ctx, update.ActorID, err)
			return
		}
		e.reply(ctx, update.ActorID, fmt.Sprintf(
			"Total: %s %s.\nChoose payment: pay_crypto_bot or pay_bep20. Send /cancel to abort.",
			trimAmount(total), product.Currency))
	case funnel.StageAwaitingProof:
		e.reply(ctx, update.ActorID, "Payment proof must be a photo.")
	default:
		e.reply(ctx, update.ActorID, "Use the menu buttons to continue, or send /cancel.")
	}
}

func (e *Engine) handleAttachment(ctx context.Context, update transport.Update) {
	session, ok := e.store.Get(update.ActorID)
	if !ok {
		e.reply(ctx, update.ActorID, "Send /start for the menu.")
		return
	}
	switch session.Kind {
	case funnel.KindTicket:
		e.finishTicketFunnel(ctx, update, session.Ticket, update.Attachment)
	case funnel.KindPurchase:
		e.finishPurchaseFunnel(ctx, update, session.Purchase)
	}
}

func (e *Engine) finishPurchaseFunnel(ctx context.Context, update transport.Update, session *funnel.PurchaseSession) {
	if update.Attachment == nil {
		e.reply(ctx, update.ActorID, "Payment proof must be a photo.")
		return
	}
	if err := session.AcceptProof(update.Attachment.Kind); err != nil {
		e.replyError(ctx, update.ActorID, err)
		return
	}
	order, err := e.orders.Create(ctx, service.CreateOrderInput{
		CustomerID:    update.ActorID,
		Username:      update.Username,
		FullName:      update.FullName,
		Product:       session.Product,
		Quantity:      session.Quantity,
		PaymentMethod: session.PaymentMethod,
		ProofRef:      update.Attachment.FileRef,
	})
	if err != nil {
		e.replyError(ctx, update.ActorID, err)
		return
	}
	e.store.End(update.ActorID)
	e.metrics.RecordFunnelOutcome("completed")
	e.reply(ctx, update.ActorID, fmt.Sprintf(
		"Order #%d accepted: %s, total %s %s. You will be notified once it is reviewed.",
		order.ID, order.Product, trimAmount(order.Total), order.Currency))
}

func (e *Engine) finishTicketFunnel(ctx context.Context, update transport.Update, session *funnel.TicketSession, attachment *transport.Attachment) {
	draft := session.Capture(update.Text, attachment)
	ticket, err := e.tickets.Create(ctx, service.CreateTicketInput{
		CustomerID:     update.ActorID,
		CustomerName:   displayName(update),
		Username:       update.Username,
		Message:        draft.Message,
		AttachmentRef:  draft.AttachmentRef,
		AttachmentKind: draft.AttachmentKind,
	})
	if err != nil {
		e.replyError(ctx, update.ActorID, err)
		return
	}
	e.store.End(update.ActorID)
	e.metrics.RecordFunnelOutcome("completed")
	e.reply(ctx, update.ActorID, fmt.Sprintf(
		"Ticket #%d created. Support will reply here.", ticket.ID))
}

// --- staff pending input ---

func (e *Engine) completePending(ctx context.Context, update transport.Update, action pendingAction) {
	switch action.kind {
	case pendingOrderComment:
		if _, err := e.orders.Comment(ctx, update.ActorID, action.targetID, update.Text); err != nil {
			e.replyError(ctx, update.ActorID, err)
			return
		}
		e.reply(ctx, update.ActorID, fmt.Sprintf("Comment saved on order #%d.", action.targetID))
	case pendingTicketReply:
		if _, err := e.tickets.Reply(ctx, update.ActorID, displayName(update), action.targetID, update.Text); err != nil {
			e.replyError(ctx, update.ActorID, err)
			return
		}
		e.reply(ctx, update.ActorID, fmt.Sprintf("Reply sent on ticket #%d.", action.targetID))
	case pendingSetPrice:
		value, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(update.Text), ",", "."), 64)
		if err != nil {
			e.reply(ctx, update.ActorID, "Price must be a number.")
			return
		}
		if err := e.prices.Set(ctx, update.ActorID, action.priceKey, value); err != nil {
			e.replyError(ctx, update.ActorID, err)
			return
		}
		e.reply(ctx, update.ActorID, fmt.Sprintf("Price %s set to %s.", action.priceKey, trimAmount(value)))
	case pendingGrant:
		targetID, err := strconv.ParseInt(strings.TrimSpace(update.Text), 10, 64)
		if err != nil {
			e.reply(ctx, update.ActorID, "Send a numeric actor id.")
			return
		}
		e.finishGrant(ctx, update.ActorID, targetID, action.tier)
	}
}

// --- staff actions ---

func (e *Engine) resolveOrder(ctx context.Context, staffID, orderID int64, complete bool) {
	var (
		order *domain.Order
		err   error
	)
	if complete {
		order, err = e.orders.Complete(ctx, staffID, orderID, "")
	} else {
		order, err = e.orders.Cancel(ctx, staffID, orderID, "")
	}
	if err != nil {
		e.replyError(ctx, staffID, err)
		return
	}
	e.reply(ctx, staffID, fmt.Sprintf("Order #%d is now %s.", order.ID, order.Status))
}

func (e *Engine) takeTicket(ctx context.Context, update transport.Update, ticketID int64) {
	ticket, err := e.tickets.Assign(ctx, update.ActorID, displayName(update), ticketID)
	if err != nil {
		e.replyError(ctx, update.ActorID, err)
		return
	}
	e.reply(ctx, update.ActorID, fmt.Sprintf("Ticket #%d is yours.", ticket.ID))
}

func (e *Engine) closeTicket(ctx context.Context, staffID, ticketID int64) {
	if _, err := e.tickets.Close(ctx, staffID, ticketID); err != nil {
		e.replyError(ctx, staffID, err)
		return
	}
	e.reply(ctx, staffID, fmt.Sprintf("Ticket #%d closed.", ticketID))
}

func (e *Engine) showOrder(ctx context.Context, staffID, orderID int64) {
	order, err := e.orders.GetByID(ctx, staffID, orderID)
	if err != nil {
		e.replyError(ctx, staffID, err)
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%d [%s]\n", order.ID, order.Status)
	fmt.Fprintf(&b, "Customer: @%s (id %d)\n", order.Username, order.CustomerID)
	fmt.Fprintf(&b, "Product: %s x %s\n", order.Product, trimAmount(order.Quantity))
	fmt.Fprintf(&b, "Total: %s %s via %s\n", trimAmount(order.Total), order.Currency, order.PaymentMethod)
	if order.StaffComment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", order.StaffComment)
	}
	fmt.Fprintf(&b, "Actions: complete_order_%d cancel_order_%d comment_order_%d", order.ID, order.ID, order.ID)
	e.reply(ctx, staffID, b.String())
}

func (e *Engine) showTicket(ctx context.Context, staffID, ticketID int64) {
	bundle, err := e.tickets.GetByID(ctx, staffID, ticketID)
	if err != nil {
		e.replyError(ctx, staffID, err)
		return
	}
	ticket := bundle.Ticket
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket #%d [%s]\n", ticket.ID, ticket.Status)
	fmt.Fprintf(&b, "Customer: %s (id %d)\n", ticket.CustomerName, ticket.CustomerID)
	if ticket.AssigneeID != nil {
		fmt.Fprintf(&b, "Assignee: %s\n", ticket.AssigneeName)
	}
	fmt.Fprintf(&b, "\n%s\n", ticket.Message)
	for _, reply := range bundle.Replies {
		fmt.Fprintf(&b, "\n%s: %s", reply.StaffName, reply.Body)
	}
	fmt.Fprintf(&b, "\n\nActions: take_ticket_%d reply_ticket_%d close_ticket_%d", ticket.ID, ticket.ID, ticket.ID)
	e.reply(ctx, staffID, b.String())
}

func (e *Engine) showOrderQueue(ctx context.Context, staffID int64) {
	orders, err := e.orders.ListWithFilter(ctx, staffID, repository.OrderFilter{
		Statuses: []domain.OrderStatus{domain.OrderStatusPending},
		Limit:    20,
	})
	if err != nil {
		e.replyError(ctx, staffID, err)
		return
	}
	if len(orders) == 0 {
		e.reply(ctx, staffID, "No pending orders.")
		return
	}
	var b strings.Builder
	b.WriteString("Pending orders:\n")
	for _, order := range orders {
		fmt.Fprintf(&b, "/order_%d  %s  %s %s  @%s\n",
			order.ID, order.Product, trimAmount(order.Total), order.Currency, order.Username)
	}
	e.reply(ctx, staffID, b.String())
}

func (e *Engine) showTicketQueue(ctx context.Context, staffID int64) {
	tickets, err := e.tickets.ListWithFilter(ctx, staffID, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusInProgress},
		Limit:    20,
	})
	if err != nil {
		e.replyError(ctx, staffID, err)
		return
	}
	if len(tickets) == 0 {
		e.reply(ctx, staffID, "No open tickets.")
		return
	}
	var b strings.Builder
	b.WriteString("Open tickets:\n")
	for _, ticket := range tickets {
		fmt.Fprintf(&b, "/ticket_%d  [%s]  %s\n", ticket.ID, ticket.Status, ticket.CustomerName)
	}
	e.reply(ctx, staffID, b.String())
}

func (e *Engine) showStats(ctx context.Context, staffID int64) {
	stats, err := e.orders.Stats(ctx, staffID)
	if err != nil {
		e.replyError(ctx, staffID, err)
		return
	}
	ticketCounts, err := e.tickets.CountByStatus(ctx, staffID)
	if err != nil {
		e.replyError(ctx, staffID, err)
		return
	}
	var b strings.Builder
	b.WriteString("Stats\n\nOrders:\n")
	for _, status := range []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusCompleted, domain.OrderStatusCancelled} {
		fmt.Fprintf(&b, " %s: %d\n", status, stats.CountsByStatus[status])
	}
	b.WriteString("Revenue (completed):\n")
	for currency, total := range stats.RevenueByCurrency {
		fmt.Fprintf(&b, " %s %s\n", trimAmount(total), currency)
	}
	b.WriteString("Tickets:\n")
	for _, status := range []domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusInProgress, domain.TicketStatusClosed} {
		fmt.Fprintf(&b, " %s: %d\n", status, ticketCounts[status])
	}
	fmt.Fprintf(&b, "Known customers: %d\n", stats.KnownCustomers)
	if staffList, err := e.roles.ListStaff(ctx); err == nil {
		byTier := map[domain.Tier]int{}
		for _, assignment := range staffList {
			byTier[assignment.Tier]++
		}
		fmt.Fprintf(&b, "Staff: %d support, %d full admin\n",
			byTier[domain.TierSupport], byTier[domain.TierFullAdmin])
	}
	if entries, err := e.prices.All(ctx); err == nil {
		b.WriteString("Prices:\n")
		for _, entry := range entries {
			fmt.Fprintf(&b, " %s: %s\n", entry.Key, trimAmount(entry.Value))
		}
	}
	e.reply(ctx, staffID, strings.TrimRight(b.String(), "\n"))
}

func (e *Engine) showStaff(ctx context.Context, staffID int64) {
	tier, err := e.roles.TierOf(ctx, staffID)
	if err != nil {
		e.replyError(ctx, staffID, err)
		return
	}
	if tier < domain.TierFullAdmin {
		e.reply(ctx, staffID, "Full admin tier required.")
		return
	}
	staff, err := e.roles.ListStaff(ctx)
	if err != nil {
		e.replyError(ctx, staffID, err)
		return
	}
	var b strings.Builder
	b.WriteString("Staff:\n")
	for _, assignment := range staff {
		fmt.Fprintf(&b, " %d  %s\n", assignment.ActorID, assignment.Tier)
	}
	e.reply(ctx, staffID, b.String())
}

func (e *Engine) grant(ctx context.Context, callerID int64, args []string, tier domain.Tier) {
	if len(args) == 0 {
		e.setPending(callerID, pendingAction{kind: pendingGrant, tier: tier})
		e.reply(ctx, callerID, fmt.Sprintf("Send the actor id to grant %s access to.", tier))
		return
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		e.reply(ctx, callerID, "Send a numeric actor id.")
		return
	}
	e.finishGrant(ctx, callerID, targetID, tier)
}

func (e *Engine) finishGrant(ctx context.Context, callerID, targetID int64, tier domain.Tier) {
	assignment, err := e.roles.Grant(ctx, callerID, targetID, tier)
	if err != nil {
		e.replyError(ctx, callerID, err)
		return
	}
	e.reply(ctx, callerID, fmt.Sprintf("Granted %s to %d.", assignment.Tier, targetID))
	// Courtesy note to the new staff member; failure is irrelevant here.
	_ = e.sender.SendMessage(ctx, targetID, fmt.Sprintf("You have been granted %s access.", assignment.Tier))
}

func (e *Engine) revoke(ctx context.Context, callerID int64, args []string) {
	if len(args) == 0 {
		e.reply(ctx, callerID, "Usage: /revoke <actor id>")
		return
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		e.reply(ctx, callerID, "Send a numeric actor id.")
		return
	}
	if err := e.roles.Revoke(ctx, callerID, targetID); err != nil {
		e.replyError(ctx, callerID, err)
		return
	}
	e.reply(ctx, callerID, fmt.Sprintf("Revoked access for %d.", targetID))
	_ = e.sender.SendMessage(ctx, targetID, "Your staff access has been revoked.")
}

func (e *Engine) setTier(ctx context.Context, callerID int64, args []string) {
	if len(args) < 2 {
		e.reply(ctx, callerID, "Usage: /settier <actor id> <support|full>")
		return
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		e.reply(ctx, callerID, "Send a numeric actor id.")
		return
	}
	var tier domain.Tier
	switch args[1] {
	case "support":
		tier = domain.TierSupport
	case "full":
		tier = domain.TierFullAdmin
	default:
		e.reply(ctx, callerID, "Tier must be support or full.")
		return
	}
	if err := e.roles.SetTier(ctx, callerID, targetID, tier); err != nil {
		e.replyError(ctx, callerID, err)
		return
	}
	e.reply(ctx, callerID, fmt.Sprintf("Tier for %d is now %s.", targetID, tier))
	_ = e.sender.SendMessage(ctx, targetID, fmt.Sprintf("Your staff tier is now %s.", tier))
}

func (e *Engine) setPrice(ctx context.Context, callerID int64, args []string) {
	if len(args) == 0 {
		keys := make([]string, len(domain.PriceKeys))
		for i, key := range domain.PriceKeys {
			keys[i] = string(key)
		}
		e.reply(ctx, callerID, "Usage: /setprice <key> [value]\nKeys: "+strings.Join(keys, ", "))
		return
	}
	key := domain.PriceKey(args[0])
	if len(args) == 1 {
		e.setPending(callerID, pendingAction{kind: pendingSetPrice, priceKey: key})
		e.reply(ctx, callerID, fmt.Sprintf("Send the new value for %s.", key))
		return
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(args[1], ",", "."), 64)
	if err != nil {
		e.reply(ctx, callerID, "Price must be a number.")
		return
	}
	if err := e.prices.Set(ctx, callerID, key, value); err != nil {
		e.replyError(ctx, callerID, err)
		return
	}
	e.reply(ctx, callerID, fmt.Sprintf("Price %s set to %s.", key, trimAmount(value)))
}

// --- customer views ---

func (e *Engine) showRates(ctx context.Context, actorID int64) {
	entries, err := e.prices.All(ctx)
	if err != nil {
		e.replyError(ctx, actorID, err)
		return
	}
	var b strings.Builder
	b.WriteString("Current rates:\n")
	for _, entry := range entries {
		fmt.Fprintf(&b, " %s: %s\n", entry.Key, trimAmount(entry.Value))
	}
	e.reply(ctx, actorID, b.String())
}

func (e *Engine) showMyOrders(ctx context.Context, actorID int64) {
	orders, err := e.orders.ListMine(ctx, actorID)
	if err != nil {
		e.replyError(ctx, actorID, err)
		return
	}
	if len(orders) == 0 {
		e.reply(ctx, actorID, "You have no orders yet.")
		return
	}
	var b strings.Builder
	b.WriteString("Your recent orders:\n")
	for _, order := range orders {
		fmt.Fprintf(&b, " #%d  %s  %s %s  [%s]\n",
			order.ID, order.Product, trimAmount(order.Total), order.Currency, order.Status)
	}
	e.reply(ctx, actorID, b.String())
}

func displayName(update transport.Update) string {
	if update.FullName != "" {
		return update.FullName
	}
	if update.Username != "" {
		return "@" + update.Username
	}
	return strconv.FormatInt(update.ActorID, 10)
}

func trimAmount(value float64) string {
	formatted := strconv.FormatFloat(value, 'f', 2, 64)
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimRight(formatted, ".")
}
