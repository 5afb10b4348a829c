package dto

import (
	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/transport"
)

// InboundUpdateRequest is the webhook payload from the chat bridge.
type InboundUpdateRequest struct {
	ActorID    int64                     `json:"actor_id"`
	Username   string                    `json:"username"`
	FullName   string                    `json:"full_name"`
	Kind       transport.UpdateKind      `json:"kind"`
	Text       string                    `json:"text"`
	Callback   string                    `json:"callback"`
	Attachment *InboundAttachmentRequest `json:"attachment"`
}

// InboundAttachmentRequest carries attachment metadata.
type InboundAttachmentRequest struct {
	FileRef  string                `json:"file_ref"`
	Kind     domain.AttachmentKind `json:"kind"`
	FileName string                `json:"file_name"`
	Caption  string                `json:"caption"`
}

// ToUpdate maps the request onto the transport type.
func (r InboundUpdateRequest) ToUpdate() transport.Update {
	update := transport.Update{
		ActorID:  r.ActorID,
		Username: r.Username,
		FullName: r.FullName,
		Kind:     r.Kind,
		Text:     r.Text,
		Callback: r.Callback,
	}
	if r.Attachment != nil {
		update.Attachment = &transport.Attachment{
			FileRef:  r.Attachment.FileRef,
			Kind:     r.Attachment.Kind,
			FileName: r.Attachment.FileName,
			Caption:  r.Attachment.Caption,
		}
	}
	return update
}
