// Package transport defines the boundary to the external chat system. The
// engine only ever talks to these interfaces; message and button delivery
// mechanics live outside this module.
package transport

import (
	"context"

	"github.com/starline-labs/storefront-desk/internal/domain"
)

// Transport delivers outbound content to an actor's chat.
type Transport interface {
	SendMessage(ctx context.Context, actorID int64, text string) error
	SendPhoto(ctx context.Context, actorID int64, fileRef, caption string) error
	SendDocument(ctx context.Context, actorID int64, fileRef, caption string) error
}

// UpdateKind classifies inbound events.
type UpdateKind string

const (
	UpdateKindText       UpdateKind = "text"
	UpdateKindAttachment UpdateKind = "attachment"
	UpdateKindCallback   UpdateKind = "callback"
)

// Attachment carries inbound file metadata. FileRef is an opaque handle the
// transport can later re-send.
type Attachment struct {
	FileRef  string
	Kind     domain.AttachmentKind
	FileName string
	Caption  string
}

// Update is one inbound chat event from an actor.
type Update struct {
	ActorID    int64
	Username   string
	FullName   string
	Kind       UpdateKind
	Text       string
	Callback   string
	Attachment *Attachment
}
