package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/transport"
)

func TestCaptureTextOnly(t *testing.T) {
	session := NewTicketSession()

	draft := session.Capture("my payment is stuck", nil)
	assert.Equal(t, "my payment is stuck", draft.Message)
	assert.Nil(t, draft.AttachmentRef)
}

func TestCaptureAttachmentWithCaption(t *testing.T) {
	session := NewTicketSession()

	draft := session.Capture("", &transport.Attachment{
		FileRef: "file-9",
		Kind:    domain.AttachmentKindPhoto,
		Caption: "see screenshot",
	})
	assert.Equal(t, "see screenshot", draft.Message)
	require.NotNil(t, draft.AttachmentRef)
	assert.Equal(t, "file-9", *draft.AttachmentRef)
	require.NotNil(t, draft.AttachmentKind)
	assert.Equal(t, domain.AttachmentKindPhoto, *draft.AttachmentKind)
}

func TestCaptureBareAttachmentGetsPlaceholder(t *testing.T) {
	session := NewTicketSession()

	photo := session.Capture("", &transport.Attachment{FileRef: "f1", Kind: domain.AttachmentKindPhoto})
	assert.Equal(t, "[photo]", photo.Message)

	doc := session.Capture("", &transport.Attachment{FileRef: "f2", Kind: domain.AttachmentKindDocument})
	assert.Equal(t, "[document]", doc.Message)
}
