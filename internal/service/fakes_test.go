package service

import (
	"context"
	"sync"

	"github.com/starline-labs/storefront-desk/internal/repository/repotest"
)

func newFakeActorRepo() *repotest.ActorRepo   { return repotest.NewActorRepo() }
func newFakeRoleRepo() *repotest.RoleRepo     { return repotest.NewRoleRepo() }
func newFakePriceRepo() *repotest.PriceRepo   { return repotest.NewPriceRepo() }
func newFakeOrderRepo() *repotest.OrderRepo   { return repotest.NewOrderRepo() }
func newFakeTicketRepo() *repotest.TicketRepo { return repotest.NewTicketRepo() }
func newFakeReplyRepo() *repotest.ReplyRepo   { return repotest.NewReplyRepo() }

type sentMessage struct {
	actorID int64
	text    string
}

// fakeTransport records outbound deliveries and can simulate per-recipient
// failures.
type fakeTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[int64]error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{failFor: make(map[int64]error)}
}

func (f *fakeTransport) SendMessage(_ context.Context, actorID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[actorID]; ok {
		return err
	}
	f.sent = append(f.sent, sentMessage{actorID: actorID, text: text})
	return nil
}

func (f *fakeTransport) SendPhoto(ctx context.Context, actorID int64, fileRef, caption string) error {
	return f.SendMessage(ctx, actorID, "photo:"+fileRef+" "+caption)
}

func (f *fakeTransport) SendDocument(ctx context.Context, actorID int64, fileRef, caption string) error {
	return f.SendMessage(ctx, actorID, "document:"+fileRef+" "+caption)
}

func (f *fakeTransport) messagesTo(actorID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []string
	for _, msg := range f.sent {
		if msg.actorID == actorID {
			result = append(result, msg.text)
		}
	}
	return result
}

func (f *fakeTransport) recipients() map[int64]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[int64]int)
	for _, msg := range f.sent {
		result[msg.actorID]++
	}
	return result
}
