package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/events"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

type ticketEnv struct {
	tickets  TicketService
	roles    RoleService
	recorder *eventRecorder
}

func newTicketEnv(t *testing.T) *ticketEnv {
	t.Helper()
	roles := NewRoleService(newFakeRoleRepo(), rootID, zap.NewNop())

	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	dispatcher.Subscribe(events.EventTicketCreated, recorder.record)
	dispatcher.Subscribe(events.EventTicketAssigned, recorder.record)
	dispatcher.Subscribe(events.EventTicketReplied, recorder.record)
	dispatcher.Subscribe(events.EventTicketClosed, recorder.record)

	tickets := NewTicketService(newFakeTicketRepo(), newFakeReplyRepo(), newFakeActorRepo(), roles, dispatcher, zap.NewNop())
	return &ticketEnv{tickets: tickets, roles: roles, recorder: recorder}
}

func createTicket(t *testing.T, env *ticketEnv) *domain.Ticket {
	t.Helper()
	ticket, err := env.tickets.Create(context.Background(), CreateTicketInput{
		CustomerID:   100,
		CustomerName: "Customer",
		Username:     "customer",
		Message:      "payment never arrived",
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketStartsNew(t *testing.T) {
	env := newTicketEnv(t)

	ticket := createTicket(t, env)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Nil(t, ticket.AssigneeID)

	created := env.recorder.ofType(events.EventTicketCreated)
	require.Len(t, created, 1)
}

func TestCreateTicketRequiresContent(t *testing.T) {
	env := newTicketEnv(t)

	_, err := env.tickets.Create(context.Background(), CreateTicketInput{CustomerID: 100})
	assert.True(t, util.IsInvalidInput(err))
}

func TestAssignRequiresStaffTier(t *testing.T) {
	env := newTicketEnv(t)
	ticket := createTicket(t, env)

	_, err := env.tickets.Assign(context.Background(), 100, "Customer", ticket.ID)
	assert.True(t, util.IsUnauthorized(err))
}

func TestAssignMovesToInProgress(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	ticket := createTicket(t, env)

	assigned, err := env.tickets.Assign(ctx, rootID, "Root", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, assigned.Status)
	require.NotNil(t, assigned.AssigneeID)
	assert.Equal(t, rootID, *assigned.AssigneeID)
}

// A second assign silently reassigns ownership instead of rejecting it.
// Deliberate overwrite semantics; revisit if handoff should require consent.
func TestAssignOverwritesExistingAssignee(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	ticket := createTicket(t, env)

	_, err := env.roles.Grant(ctx, rootID, 20, domain.TierSupport)
	require.NoError(t, err)

	_, err = env.tickets.Assign(ctx, rootID, "Root", ticket.ID)
	require.NoError(t, err)

	reassigned, err := env.tickets.Assign(ctx, 20, "Second", ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, reassigned.AssigneeID)
	assert.Equal(t, int64(20), *reassigned.AssigneeID)
	assert.Equal(t, "Second", reassigned.AssigneeName)
}

func TestReplyAppendsTrail(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	ticket := createTicket(t, env)

	_, err := env.tickets.Assign(ctx, rootID, "Root", ticket.ID)
	require.NoError(t, err)

	_, err = env.tickets.Reply(ctx, rootID, "Root", ticket.ID, "looking into it")
	require.NoError(t, err)
	_, err = env.tickets.Reply(ctx, rootID, "Root", ticket.ID, "resolved, sorry")
	require.NoError(t, err)

	bundle, err := env.tickets.GetByID(ctx, rootID, ticket.ID)
	require.NoError(t, err)
	require.Len(t, bundle.Replies, 2)
	assert.Equal(t, "looking into it", bundle.Replies[0].Body)
	assert.Equal(t, "resolved, sorry", bundle.Replies[1].Body)

	replied := env.recorder.ofType(events.EventTicketReplied)
	assert.Len(t, replied, 2)
}

func TestReplyToClosedTicketConflicts(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	ticket := createTicket(t, env)

	_, err := env.tickets.Close(ctx, rootID, ticket.ID)
	require.NoError(t, err)

	_, err = env.tickets.Reply(ctx, rootID, "Root", ticket.ID, "too late")
	assert.True(t, util.IsConflict(err))
}

func TestCloseIsIdempotent(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	ticket := createTicket(t, env)

	closed, err := env.tickets.Close(ctx, rootID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)

	// Closing again succeeds and leaves the status untouched.
	closedAgain, err := env.tickets.Close(ctx, rootID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closedAgain.Status)
}

func TestCloseFromNewSkipsInProgress(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	ticket := createTicket(t, env)

	closed, err := env.tickets.Close(ctx, rootID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	assert.Nil(t, closed.AssigneeID)
}
