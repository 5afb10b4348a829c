package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/events"
	"github.com/starline-labs/storefront-desk/internal/repository"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

// CreateTicketInput carries the customer's support request. When neither
// message text nor a caption is available, callers substitute a placeholder
// label derived from the attachment kind before reaching this service.
type CreateTicketInput struct {
	CustomerID     int64
	CustomerName   string
	Username       string
	Message        string
	AttachmentRef  *string
	AttachmentKind *domain.AttachmentKind
}

// TicketWithReplies bundles a ticket with its ordered reply trail.
type TicketWithReplies struct {
	Ticket  *domain.Ticket
	Replies []domain.TicketReply
}

// TicketService owns the ticket lifecycle: creation from the support funnel
// and staff assignment, replies and closure.
type TicketService interface {
	Create(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error)
	Assign(ctx context.Context, staffID int64, staffName string, ticketID int64) (*domain.Ticket, error)
	Reply(ctx context.Context, staffID int64, staffName string, ticketID int64, body string) (*domain.TicketReply, error)
	Close(ctx context.Context, staffID, ticketID int64) (*domain.Ticket, error)
	GetByID(ctx context.Context, staffID, ticketID int64) (*TicketWithReplies, error)
	ListWithFilter(ctx context.Context, staffID int64, filter repository.TicketFilter) ([]domain.Ticket, error)
	CountByStatus(ctx context.Context, staffID int64) (map[domain.TicketStatus]int64, error)
}

type ticketService struct {
	tickets    repository.TicketRepository
	replies    repository.TicketReplyRepository
	actors     repository.ActorRepository
	roles      RoleService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewTicketService instantiates the service.
func NewTicketService(
	tickets repository.TicketRepository,
	replies repository.TicketReplyRepository,
	actors repository.ActorRepository,
	roles RoleService,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) TicketService {
	return &ticketService{
		tickets:    tickets,
		replies:    replies,
		actors:     actors,
		roles:      roles,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (s *ticketService) requireStaff(ctx context.Context, staffID int64) error {
	tier, err := s.roles.TierOf(ctx, staffID)
	if err != nil {
		return err
	}
	return requireTier(tier, domain.TierSupport, "staff tier required")
}

func (s *ticketService) Create(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	if input.Message == "" && input.AttachmentRef == nil {
		return nil, util.NewInvalidInput("ticket needs a message or an attachment", nil)
	}

	actor := &domain.Actor{ID: input.CustomerID, Username: input.Username, FullName: input.CustomerName}
	if err := s.actors.Upsert(ctx, actor); err != nil {
		return nil, util.NewInternalError(err)
	}

	ticket := &domain.Ticket{
		CustomerID:     input.CustomerID,
		CustomerName:   input.CustomerName,
		Message:        input.Message,
		AttachmentRef:  input.AttachmentRef,
		AttachmentKind: input.AttachmentKind,
		Status:         domain.TicketStatusNew,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, util.NewInternalError(err)
	}
	s.logger.Info("ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("customer_id", ticket.CustomerID))

	s.publish(ctx, events.EventTicketCreated, input.CustomerID, events.TicketCreatedPayload{
		TicketID:       ticket.ID,
		CustomerID:     ticket.CustomerID,
		CustomerName:   ticket.CustomerName,
		Message:        ticket.Message,
		AttachmentRef:  ticket.AttachmentRef,
		AttachmentKind: ticket.AttachmentKind,
	})
	return ticket, nil
}

// Assign puts the ticket in progress under the given staff member. A second
// assign call reassigns ownership; the previous assignee is overwritten.
func (s *ticketService) Assign(ctx context.Context, staffID int64, staffName string, ticketID int64) (*domain.Ticket, error) {
	if err := s.requireStaff(ctx, staffID); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, util.NewConflict("ticket is closed", map[string]any{"ticket_id": ticketID})
	}
	if err := s.tickets.Assign(ctx, ticketID, staffID, staffName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.NewInternalError(err)
	}
	ticket.Status = domain.TicketStatusInProgress
	ticket.AssigneeID = &staffID
	ticket.AssigneeName = staffName

	s.publish(ctx, events.EventTicketAssigned, staffID, events.TicketAssignedPayload{
		TicketID:   ticketID,
		CustomerID: ticket.CustomerID,
		StaffID:    staffID,
		StaffName:  staffName,
	})
	return ticket, nil
}

// Reply appends an immutable reply record and notifies the customer. The
// ticket status is left untouched; replying is repeatable.
func (s *ticketService) Reply(ctx context.Context, staffID int64, staffName string, ticketID int64, body string) (*domain.TicketReply, error) {
	if err := s.requireStaff(ctx, staffID); err != nil {
		return nil, err
	}
	if body == "" {
		return nil, util.NewInvalidInput("reply must not be empty", nil)
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, util.NewConflict("ticket is closed", map[string]any{"ticket_id": ticketID})
	}

	reply := &domain.TicketReply{
		TicketID:  ticketID,
		StaffID:   staffID,
		StaffName: staffName,
		Body:      body,
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, util.NewInternalError(err)
	}

	s.publish(ctx, events.EventTicketReplied, staffID, events.TicketRepliedPayload{
		TicketID:   ticketID,
		CustomerID: ticket.CustomerID,
		StaffID:    staffID,
		StaffName:  staffName,
		Body:       body,
	})
	return reply, nil
}

// Close transitions the ticket to closed from any state. Closing an already
// closed ticket succeeds and leaves it closed.
func (s *ticketService) Close(ctx context.Context, staffID, ticketID int64) (*domain.Ticket, error) {
	if err := s.requireStaff(ctx, staffID); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.SetStatus(ctx, ticketID, domain.TicketStatusClosed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.NewInternalError(err)
	}
	ticket.Status = domain.TicketStatusClosed

	s.logger.Info("ticket closed",
		zap.Int64("ticket_id", ticketID),
		zap.Int64("staff_id", staffID))

	s.publish(ctx, events.EventTicketClosed, staffID, events.TicketClosedPayload{
		TicketID:   ticketID,
		CustomerID: ticket.CustomerID,
		StaffID:    staffID,
	})
	return ticket, nil
}

func (s *ticketService) GetByID(ctx context.Context, staffID, ticketID int64) (*TicketWithReplies, error) {
	if err := s.requireStaff(ctx, staffID); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	replies, err := s.replies.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return &TicketWithReplies{Ticket: ticket, Replies: replies}, nil
}

func (s *ticketService) getTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.NewInternalError(err)
	}
	return ticket, nil
}

func (s *ticketService) ListWithFilter(ctx context.Context, staffID int64, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if err := s.requireStaff(ctx, staffID); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return tickets, nil
}

func (s *ticketService) CountByStatus(ctx context.Context, staffID int64) (map[domain.TicketStatus]int64, error) {
	if err := s.requireStaff(ctx, staffID); err != nil {
		return nil, err
	}
	counts, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return counts, nil
}

func (s *ticketService) publish(ctx context.Context, eventType events.EventType, actorID int64, payload interface{}) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
