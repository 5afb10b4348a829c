// Package funnel holds the per-customer conversation state machines. State
// lives in process memory only: a restart drops every open funnel, which is
// acceptable because a customer can always restart with a single message.
package funnel

import "sync"

// Kind discriminates the two funnel types.
type Kind string

const (
	KindPurchase Kind = "purchase"
	KindTicket   Kind = "ticket"
)

// Session is one actor's open funnel. Exactly one of Purchase or Ticket is
// set, matching Kind.
type Session struct {
	Kind     Kind
	Purchase *PurchaseSession
	Ticket   *TicketSession
}

// Store maps actor ids to their open session. Each actor only ever touches
// its own entry, so a plain mutex-guarded map suffices.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewStore initializes an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// StartPurchase opens a purchase funnel for the actor, replacing any session
// already in flight.
func (s *Store) StartPurchase(actorID int64) *PurchaseSession {
	purchase := NewPurchaseSession()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[actorID] = &Session{Kind: KindPurchase, Purchase: purchase}
	return purchase
}

// StartTicket opens a ticket funnel for the actor, replacing any session
// already in flight.
func (s *Store) StartTicket(actorID int64) *TicketSession {
	ticket := NewTicketSession()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[actorID] = &Session{Kind: KindTicket, Ticket: ticket}
	return ticket
}

// Get returns the actor's open session, if any.
func (s *Store) Get(actorID int64) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[actorID]
	return session, ok
}

// End drops the actor's session. Ending a non-existent session is a no-op.
func (s *Store) End(actorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, actorID)
}

// Len reports the number of open sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
