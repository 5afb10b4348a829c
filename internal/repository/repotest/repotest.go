// Package repotest provides in-memory repository implementations for tests.
// They mirror the SQL-backed behavior, including pgx.ErrNoRows on missing
// rows, so services exercise the same error paths in both environments.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/repository"
)

var (
	_ repository.ActorRepository       = (*ActorRepo)(nil)
	_ repository.RoleRepository        = (*RoleRepo)(nil)
	_ repository.PriceRepository       = (*PriceRepo)(nil)
	_ repository.OrderRepository       = (*OrderRepo)(nil)
	_ repository.TicketRepository      = (*TicketRepo)(nil)
	_ repository.TicketReplyRepository = (*ReplyRepo)(nil)
)

// ActorRepo is an in-memory repository.ActorRepository.
type ActorRepo struct {
	mu     sync.Mutex
	actors map[int64]domain.Actor
}

// NewActorRepo constructs an empty repo.
func NewActorRepo() *ActorRepo {
	return &ActorRepo{actors: make(map[int64]domain.Actor)}
}

func (f *ActorRepo) Upsert(_ context.Context, actor *domain.Actor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.actors[actor.ID]
	if ok {
		actor.CreatedAt = existing.CreatedAt
	} else {
		actor.CreatedAt = time.Now()
	}
	f.actors[actor.ID] = *actor
	return nil
}

func (f *ActorRepo) GetByID(_ context.Context, id int64) (*domain.Actor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	actor, ok := f.actors[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &actor, nil
}

func (f *ActorRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.actors)), nil
}

// RoleRepo is an in-memory repository.RoleRepository.
type RoleRepo struct {
	mu    sync.Mutex
	roles map[int64]domain.RoleAssignment
}

// NewRoleRepo constructs an empty repo.
func NewRoleRepo() *RoleRepo {
	return &RoleRepo{roles: make(map[int64]domain.RoleAssignment)}
}

func (f *RoleRepo) Upsert(_ context.Context, assignment *domain.RoleAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment.GrantedAt = time.Now()
	f.roles[assignment.ActorID] = *assignment
	return nil
}

func (f *RoleRepo) SetTier(_ context.Context, actorID int64, tier domain.Tier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment, ok := f.roles[actorID]
	if !ok {
		return pgx.ErrNoRows
	}
	assignment.Tier = tier
	f.roles[actorID] = assignment
	return nil
}

func (f *RoleRepo) Delete(_ context.Context, actorID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[actorID]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.roles, actorID)
	return nil
}

func (f *RoleRepo) GetByActor(_ context.Context, actorID int64) (*domain.RoleAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment, ok := f.roles[actorID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &assignment, nil
}

func (f *RoleRepo) ListStaff(_ context.Context) ([]domain.RoleAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.RoleAssignment
	for _, assignment := range f.roles {
		if assignment.Tier >= domain.TierSupport {
			result = append(result, assignment)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ActorID < result[j].ActorID })
	return result, nil
}

// PriceRepo is an in-memory repository.PriceRepository.
type PriceRepo struct {
	mu     sync.Mutex
	values map[domain.PriceKey]float64
}

// NewPriceRepo constructs an empty repo.
func NewPriceRepo() *PriceRepo {
	return &PriceRepo{values: make(map[domain.PriceKey]float64)}
}

func (f *PriceRepo) Get(_ context.Context, key domain.PriceKey) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return value, nil
}

func (f *PriceRepo) Set(_ context.Context, key domain.PriceKey, value float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func (f *PriceRepo) All(_ context.Context) ([]domain.PriceEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.PriceEntry
	for key, value := range f.values {
		result = append(result, domain.PriceEntry{Key: key, Value: value})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (f *PriceRepo) SeedDefaults(_ context.Context, defaults map[domain.PriceKey]float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, value := range defaults {
		if _, ok := f.values[key]; !ok {
			f.values[key] = value
		}
	}
	return nil
}

// OrderRepo is an in-memory repository.OrderRepository.
type OrderRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]domain.Order
}

// NewOrderRepo constructs an empty repo.
func NewOrderRepo() *OrderRepo {
	return &OrderRepo{orders: make(map[int64]domain.Order)}
}

func (f *OrderRepo) Create(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	order.ID = f.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	f.orders[order.ID] = *order
	return nil
}

func (f *OrderRepo) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus, resolvedBy *int64, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	order.Status = status
	order.ResolvedBy = resolvedBy
	order.StaffComment = comment
	order.UpdatedAt = time.Now()
	f.orders[id] = order
	return nil
}

func (f *OrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &order, nil
}

func (f *OrderRepo) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]domain.Order, error) {
	return f.ListWithFilter(ctx, repository.OrderFilter{CustomerID: &customerID, Limit: limit})
}

func (f *OrderRepo) ListWithFilter(_ context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Order
	for _, order := range f.orders {
		if filter.CustomerID != nil && order.CustomerID != *filter.CustomerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsOrderStatus(filter.Statuses, order.Status) {
			continue
		}
		result = append(result, order)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (f *OrderRepo) CountByStatus(_ context.Context) (map[domain.OrderStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[domain.OrderStatus]int64)
	for _, order := range f.orders {
		result[order.Status]++
	}
	return result, nil
}

func (f *OrderRepo) RevenueByCurrency(_ context.Context, status domain.OrderStatus) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[string]float64)
	for _, order := range f.orders {
		if order.Status == status {
			result[order.Currency] += order.Total
		}
	}
	return result, nil
}

func containsOrderStatus(statuses []domain.OrderStatus, status domain.OrderStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

// TicketRepo is an in-memory repository.TicketRepository.
type TicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]domain.Ticket
}

// NewTicketRepo constructs an empty repo.
func NewTicketRepo() *TicketRepo {
	return &TicketRepo{tickets: make(map[int64]domain.Ticket)}
}

func (f *TicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ticket.ID = f.nextID
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *TicketRepo) Assign(_ context.Context, id int64, staffID int64, staffName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = domain.TicketStatusInProgress
	ticket.AssigneeID = &staffID
	ticket.AssigneeName = staffName
	ticket.UpdatedAt = time.Now()
	f.tickets[id] = ticket
	return nil
}

func (f *TicketRepo) SetStatus(_ context.Context, id int64, status domain.TicketStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	ticket.UpdatedAt = time.Now()
	f.tickets[id] = ticket
	return nil
}

func (f *TicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (f *TicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.CustomerID != nil && ticket.CustomerID != *filter.CustomerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsTicketStatus(filter.Statuses, ticket.Status) {
			continue
		}
		result = append(result, ticket)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (f *TicketRepo) CountByStatus(_ context.Context) (map[domain.TicketStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[domain.TicketStatus]int64)
	for _, ticket := range f.tickets {
		result[ticket.Status]++
	}
	return result, nil
}

func containsTicketStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

// ReplyRepo is an in-memory repository.TicketReplyRepository.
type ReplyRepo struct {
	mu      sync.Mutex
	nextID  int64
	replies map[int64][]domain.TicketReply
}

// NewReplyRepo constructs an empty repo.
func NewReplyRepo() *ReplyRepo {
	return &ReplyRepo{replies: make(map[int64][]domain.TicketReply)}
}

func (f *ReplyRepo) Create(_ context.Context, reply *domain.TicketReply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	reply.ID = f.nextID
	reply.CreatedAt = time.Now()
	f.replies[reply.TicketID] = append(f.replies[reply.TicketID], *reply)
	return nil
}

func (f *ReplyRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.TicketReply{}, f.replies[ticketID]...), nil
}
