package funnel

import (
	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/transport"
)

// TicketStage enumerates the ticket funnel steps.
type TicketStage string

const (
	StageAwaitingMessage TicketStage = "awaiting_message"
)

// TicketSession is one customer's progress through the ticket funnel. It has
// a single step: the next message or attachment becomes the ticket body.
type TicketSession struct {
	Stage TicketStage
}

// NewTicketSession starts at message capture.
func NewTicketSession() *TicketSession {
	return &TicketSession{Stage: StageAwaitingMessage}
}

// TicketDraft is the captured content, ready for ticket creation.
type TicketDraft struct {
	Message        string
	AttachmentRef  *string
	AttachmentKind *domain.AttachmentKind
}

// Capture turns an inbound update into a ticket draft. When the update
// carries an attachment with neither text nor caption, a placeholder label
// derived from the attachment kind stands in for the message body.
func (t *TicketSession) Capture(text string, attachment *transport.Attachment) TicketDraft {
	draft := TicketDraft{Message: text}
	if attachment != nil {
		ref := attachment.FileRef
		kind := attachment.Kind
		draft.AttachmentRef = &ref
		draft.AttachmentKind = &kind
		if draft.Message == "" {
			draft.Message = attachment.Caption
		}
		if draft.Message == "" {
			draft.Message = placeholderFor(kind)
		}
	}
	return draft
}

func placeholderFor(kind domain.AttachmentKind) string {
	switch kind {
	case domain.AttachmentKindDocument:
		return "[document]"
	default:
		return "[photo]"
	}
}
