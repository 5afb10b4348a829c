package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

func TestPurchaseFlowForStars(t *testing.T) {
	session := NewPurchaseSession()

	require.NoError(t, session.SelectProduct(domain.ProductStars))
	assert.Equal(t, StageEnteringQuantity, session.Stage)

	require.NoError(t, session.EnterQuantity("500"))
	assert.Equal(t, 500.0, session.Quantity)
	assert.Equal(t, StageSelectingPayment, session.Stage)

	require.NoError(t, session.SelectPayment(domain.PaymentMethodCryptoBot))
	assert.Equal(t, StageAwaitingProof, session.Stage)

	require.NoError(t, session.AcceptProof(domain.AttachmentKindPhoto))
}

func TestPremiumSkipsQuantityEntry(t *testing.T) {
	session := NewPurchaseSession()

	require.NoError(t, session.SelectProduct(domain.ProductPremium12))
	assert.Equal(t, StageSelectingPayment, session.Stage)
	assert.Equal(t, 1.0, session.Quantity)
}

func TestQuantityAcceptsDecimalComma(t *testing.T) {
	session := NewPurchaseSession()
	require.NoError(t, session.SelectProduct(domain.ProductTon))

	require.NoError(t, session.EnterQuantity("5,5"))
	assert.Equal(t, 5.5, session.Quantity)
}

func TestQuantityOutOfRangeKeepsStage(t *testing.T) {
	session := NewPurchaseSession()
	require.NoError(t, session.SelectProduct(domain.ProductStars))

	err := session.EnterQuantity("50")
	assert.True(t, util.IsInvalidInput(err))
	assert.Equal(t, StageEnteringQuantity, session.Stage)

	err = session.EnterQuantity("25001")
	assert.True(t, util.IsInvalidInput(err))
	assert.Equal(t, StageEnteringQuantity, session.Stage)
}

func TestQuantityRejectsNonNumeric(t *testing.T) {
	session := NewPurchaseSession()
	require.NoError(t, session.SelectProduct(domain.ProductStars))

	err := session.EnterQuantity("lots")
	assert.True(t, util.IsInvalidInput(err))
	assert.Equal(t, StageEnteringQuantity, session.Stage)
}

func TestProofMustBePhoto(t *testing.T) {
	session := NewPurchaseSession()
	require.NoError(t, session.SelectProduct(domain.ProductStars))
	require.NoError(t, session.EnterQuantity("100"))
	require.NoError(t, session.SelectPayment(domain.PaymentMethodBEP20))

	err := session.AcceptProof(domain.AttachmentKindDocument)
	assert.True(t, util.IsInvalidInput(err))
	assert.Equal(t, StageAwaitingProof, session.Stage)

	require.NoError(t, session.AcceptProof(domain.AttachmentKindPhoto))
}

func TestStageGuardsRejectOutOfOrderInput(t *testing.T) {
	session := NewPurchaseSession()

	assert.True(t, util.IsInvalidInput(session.EnterQuantity("100")))
	assert.True(t, util.IsInvalidInput(session.SelectPayment(domain.PaymentMethodCryptoBot)))
	assert.True(t, util.IsInvalidInput(session.AcceptProof(domain.AttachmentKindPhoto)))
}

func TestStoreReplacesOpenSession(t *testing.T) {
	store := NewStore()

	store.StartPurchase(1)
	store.StartTicket(1)

	session, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, KindTicket, session.Kind)
	assert.Equal(t, 1, store.Len())

	store.End(1)
	_, ok = store.Get(1)
	assert.False(t, ok)

	// Ending twice is harmless.
	store.End(1)
}
