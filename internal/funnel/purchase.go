package funnel

import (
	"strconv"
	"strings"

	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

// PurchaseStage enumerates the purchase funnel steps.
type PurchaseStage string

const (
	StageSelectingProduct PurchaseStage = "selecting_product"
	StageEnteringQuantity PurchaseStage = "entering_quantity"
	StageSelectingPayment PurchaseStage = "selecting_payment"
	StageAwaitingProof    PurchaseStage = "awaiting_proof"
)

// PurchaseSession is one customer's progress through the purchase funnel.
// Invalid input never advances or aborts the funnel; the session stays on the
// same stage and the customer retries.
type PurchaseSession struct {
	Stage         PurchaseStage
	Product       domain.ProductCode
	Quantity      float64
	PaymentMethod domain.PaymentMethod
}

// NewPurchaseSession starts at product selection.
func NewPurchaseSession() *PurchaseSession {
	return &PurchaseSession{Stage: StageSelectingProduct}
}

// SelectProduct records the chosen product. Subscription products carry a
// fixed quantity and skip straight to payment selection.
func (p *PurchaseSession) SelectProduct(code domain.ProductCode) error {
	if p.Stage != StageSelectingProduct {
		return util.NewInvalidInput("not selecting a product right now", nil)
	}
	product, ok := domain.Catalog[code]
	if !ok {
		return util.NewInvalidInput("unknown product", map[string]any{"product": code})
	}
	p.Product = code
	if product.FixedQuantity {
		p.Quantity = 1
		p.Stage = StageSelectingPayment
	} else {
		p.Stage = StageEnteringQuantity
	}
	return nil
}

// EnterQuantity parses and validates the customer's free-text quantity.
// Decimal commas are accepted alongside decimal points.
func (p *PurchaseSession) EnterQuantity(text string) error {
	if p.Stage != StageEnteringQuantity {
		return util.NewInvalidInput("not expecting a quantity right now", nil)
	}
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	quantity, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return util.NewInvalidInput("quantity must be a number", map[string]any{"input": text})
	}
	product := domain.Catalog[p.Product]
	if quantity < product.MinQuantity || quantity > product.MaxQuantity {
		return util.NewInvalidInput("quantity out of range", map[string]any{
			"min": product.MinQuantity,
			"max": product.MaxQuantity,
		})
	}
	p.Quantity = quantity
	p.Stage = StageSelectingPayment
	return nil
}

// SelectPayment records the payment rail and moves to proof collection.
func (p *PurchaseSession) SelectPayment(method domain.PaymentMethod) error {
	if p.Stage != StageSelectingPayment {
		return util.NewInvalidInput("not selecting payment right now", nil)
	}
	if method != domain.PaymentMethodCryptoBot && method != domain.PaymentMethodBEP20 {
		return util.NewInvalidInput("unknown payment method", map[string]any{"method": method})
	}
	p.PaymentMethod = method
	p.Stage = StageAwaitingProof
	return nil
}

// AcceptProof validates the payment proof. Only a photo counts as proof;
// anything else keeps the funnel waiting.
func (p *PurchaseSession) AcceptProof(kind domain.AttachmentKind) error {
	if p.Stage != StageAwaitingProof {
		return util.NewInvalidInput("not expecting payment proof right now", nil)
	}
	if kind != domain.AttachmentKindPhoto {
		return util.NewInvalidInput("payment proof must be a photo", nil)
	}
	return nil
}
