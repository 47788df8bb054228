package model

import (
	"github.com/shopspring/decimal"
)

// Transaction model, one row per trade a user recorded.
//
// RealisedProfit and CumulativeProfit are owned by the ledger engine: they are
// rewritten in full on every recompute and must not be edited by hand.
// Placing Buy/Placing Sell rows are standing orders, they never enter the
// profit accounting.
type Transaction struct {
	ID int64 `json:"id" gorm:"omitempty; primaryKey;"`

	Owner  int64 `json:"owner" gorm:"omitempty; not null; default:0; index:idx_tx_owner_date;"`
	ItemID int64 `json:"itemID" gorm:"omitempty; not null; default:0; index;"`

	Type string `json:"type" gorm:"omitempty; not null; default:''; type:varchar(16); index;"`

	Price    decimal.Decimal `json:"price" gorm:"omitempty; not null; default:0; type:decimal(36,18);"`
	Quantity decimal.Decimal `json:"quantity" gorm:"omitempty; not null; default:0; type:decimal(36,18);"`

	HoldingDate GormTime `json:"holdingDate" gorm:"omitempty; not null; index:idx_tx_owner_date;"` // When the trade happened, the primary ordering key

	RealisedProfit   decimal.Decimal `json:"realisedProfit" gorm:"omitempty; not null; default:0; type:decimal(36,18);"`
	CumulativeProfit decimal.Decimal `json:"cumulativeProfit" gorm:"omitempty; not null; default:0; type:decimal(36,18);"`

	Model
}

// Transaction types, spellings kept compatible with the legacy csv exports
const (
	TransTypeBuy         = "Buy"
	TransTypeSell        = "Sell"
	TransTypeInstantBuy  = "Instant Buy"
	TransTypeInstantSell = "Instant Sell"
	TransTypePlacingBuy  = "Placing Buy"
	TransTypePlacingSell = "Placing Sell"
)

// PlacingTypes standing order types, excluded from profit accounting
var PlacingTypes = []string{TransTypePlacingBuy, TransTypePlacingSell}

// IsBuyType reports whether t opens a purchase lot
func IsBuyType(t string) bool {
	return t == TransTypeBuy || t == TransTypeInstantBuy
}

// IsSellType reports whether t consumes purchase lots
func IsSellType(t string) bool {
	return t == TransTypeSell || t == TransTypeInstantSell
}

// IsPlacingType reports whether t is a standing order
func IsPlacingType(t string) bool {
	return t == TransTypePlacingBuy || t == TransTypePlacingSell
}

// ValidTransType reports whether t is one of the six known types
func ValidTransType(t string) bool {
	return IsBuyType(t) || IsSellType(t) || IsPlacingType(t)
}
