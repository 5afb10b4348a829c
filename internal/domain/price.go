package domain

// PriceKey identifies an entry in the mutable price table.
type PriceKey string

const (
	PriceKeyStarRate  PriceKey = "star_rate"
	PriceKeyTonRate   PriceKey = "ton_rate"
	PriceKeyPremium3  PriceKey = "premium_3"
	PriceKeyPremium6  PriceKey = "premium_6"
	PriceKeyPremium12 PriceKey = "premium_12"
)

// PriceKeys enumerates the fixed key set, in display order.
var PriceKeys = []PriceKey{
	PriceKeyStarRate,
	PriceKeyTonRate,
	PriceKeyPremium3,
	PriceKeyPremium6,
	PriceKeyPremium12,
}

// PriceEntry is one row of the price table.
type PriceEntry struct {
	Key   PriceKey
	Value float64
}

// DefaultPrices seeds the table on first start.
var DefaultPrices = map[PriceKey]float64{
	PriceKeyStarRate:  1.45,
	PriceKeyTonRate:   149.0,
	PriceKeyPremium3:  15,
	PriceKeyPremium6:  19,
	PriceKeyPremium12: 28,
}

// ProductCode identifies a purchasable product.
type ProductCode string

const (
	ProductStars     ProductCode = "stars"
	ProductTon       ProductCode = "ton"
	ProductPremium3  ProductCode = "premium_3"
	ProductPremium6  ProductCode = "premium_6"
	ProductPremium12 ProductCode = "premium_12"
)

// Product describes a catalog entry. Subscription products carry a fixed
// quantity of one and skip quantity entry entirely.
type Product struct {
	Code          ProductCode
	Name          string
	Currency      string
	PriceKey      PriceKey
	MinQuantity   float64
	MaxQuantity   float64
	FixedQuantity bool
}

// Catalog is the static product set. Rates are looked up live from the price
// table at evaluation time, never from here.
var Catalog = map[ProductCode]Product{
	ProductStars: {
		Code:        ProductStars,
		Name:        "Stars",
		Currency:    "RUB",
		PriceKey:    PriceKeyStarRate,
		MinQuantity: 100,
		MaxQuantity: 25000,
	},
	ProductTon: {
		Code:        ProductTon,
		Name:        "TON",
		Currency:    "RUB",
		PriceKey:    PriceKeyTonRate,
		MinQuantity: 2,
		MaxQuantity: 165,
	},
	ProductPremium3: {
		Code:          ProductPremium3,
		Name:          "Premium 3 months",
		Currency:      "USDT",
		PriceKey:      PriceKeyPremium3,
		FixedQuantity: true,
	},
	ProductPremium6: {
		Code:          ProductPremium6,
		Name:          "Premium 6 months",
		Currency:      "USDT",
		PriceKey:      PriceKeyPremium6,
		FixedQuantity: true,
	},
	ProductPremium12: {
		Code:          ProductPremium12,
		Name:          "Premium 12 months",
		Currency:      "USDT",
		PriceKey:      PriceKeyPremium12,
		FixedQuantity: true,
	},
}
