package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/events"
	"github.com/starline-labs/storefront-desk/internal/observability"
)

type notifyEnv struct {
	dispatcher    events.Dispatcher
	notifications *NotificationService
	transport     *fakeTransport
	roles         RoleService
}

func newNotifyEnv(t *testing.T) *notifyEnv {
	t.Helper()
	roles := NewRoleService(newFakeRoleRepo(), rootID, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher()
	tr := newFakeTransport()
	notifications := NewNotificationService(dispatcher, tr, roles, zap.NewNop(), observability.NewMetrics())
	return &notifyEnv{dispatcher: dispatcher, notifications: notifications, transport: tr, roles: roles}
}

func publishTicketCreated(t *testing.T, env *notifyEnv) {
	t.Helper()
	err := env.dispatcher.Publish(context.Background(), events.Event{
		ID:   uuid.New().String(),
		Type: events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{
			TicketID:     1,
			CustomerID:   100,
			CustomerName: "Customer",
			Message:      "help",
		},
	})
	require.NoError(t, err)
}

func TestFanoutReachesEveryStaffMemberOnce(t *testing.T) {
	env := newNotifyEnv(t)
	ctx := context.Background()

	_, err := env.roles.Grant(ctx, rootID, 20, domain.TierSupport)
	require.NoError(t, err)
	_, err = env.roles.Grant(ctx, rootID, 30, domain.TierFullAdmin)
	require.NoError(t, err)

	publishTicketCreated(t, env)
	env.notifications.Drain()

	recipients := env.transport.recipients()
	assert.Equal(t, 1, recipients[rootID])
	assert.Equal(t, 1, recipients[20])
	assert.Equal(t, 1, recipients[30])
	assert.Len(t, recipients, 3)
}

func TestFanoutSurvivesIndividualFailures(t *testing.T) {
	env := newNotifyEnv(t)
	ctx := context.Background()

	_, err := env.roles.Grant(ctx, rootID, 20, domain.TierSupport)
	require.NoError(t, err)
	env.transport.failFor[rootID] = errors.New("blocked")

	publishTicketCreated(t, env)
	env.notifications.Drain()

	recipients := env.transport.recipients()
	assert.Equal(t, 1, recipients[20])
	assert.Zero(t, recipients[rootID])
}

func TestCustomerNotifiedOnTicketClose(t *testing.T) {
	env := newNotifyEnv(t)

	err := env.dispatcher.Publish(context.Background(), events.Event{
		ID:   uuid.New().String(),
		Type: events.EventTicketClosed,
		Payload: events.TicketClosedPayload{
			TicketID:   1,
			CustomerID: 100,
			StaffID:    rootID,
		},
	})
	require.NoError(t, err)
	env.notifications.Drain()

	messages := env.transport.messagesTo(100)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "ticket #1")
}

func TestCustomerNotifiedOnOrderResolution(t *testing.T) {
	env := newNotifyEnv(t)

	err := env.dispatcher.Publish(context.Background(), events.Event{
		ID:   uuid.New().String(),
		Type: events.EventOrderStatusChanged,
		Payload: events.OrderStatusChangedPayload{
			OrderID:    7,
			CustomerID: 100,
			NewStatus:  domain.OrderStatusCompleted,
			Comment:    "Order completed",
			StaffID:    rootID,
		},
	})
	require.NoError(t, err)
	env.notifications.Drain()

	messages := env.transport.messagesTo(100)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "order #7")
	assert.Contains(t, messages[0], "completed")
}

func TestOrderCreatedFanoutCarriesProof(t *testing.T) {
	env := newNotifyEnv(t)

	err := env.dispatcher.Publish(context.Background(), events.Event{
		ID:   uuid.New().String(),
		Type: events.EventOrderCreated,
		Payload: events.OrderCreatedPayload{
			OrderID:       3,
			CustomerID:    100,
			CustomerName:  "Customer",
			Username:      "customer",
			Product:       "Stars",
			Quantity:      500,
			Total:         725,
			Currency:      "RUB",
			PaymentMethod: domain.PaymentMethodCryptoBot,
			ProofRef:      "file-123",
		},
	})
	require.NoError(t, err)
	env.notifications.Drain()

	messages := env.transport.messagesTo(rootID)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "photo:file-123")
	assert.Contains(t, messages[0], "order #3")
}
