package model

import (
	"github.com/shopspring/decimal"
)

// AccumulationPrice model, advisory buy-below level, one per item
type AccumulationPrice struct {
	ID int64 `json:"id" gorm:"omitempty; primaryKey;"`

	ItemID int64           `json:"itemID" gorm:"omitempty; not null; default:0; unique;"`
	Price  decimal.Decimal `json:"price" gorm:"omitempty; not null; default:0; type:decimal(36,18);"`

	Model
}

// TargetSellPrice model, advisory sell-above level, one per item
type TargetSellPrice struct {
	ID int64 `json:"id" gorm:"omitempty; primaryKey;"`

	ItemID int64           `json:"itemID" gorm:"omitempty; not null; default:0; unique;"`
	Price  decimal.Decimal `json:"price" gorm:"omitempty; not null; default:0; type:decimal(36,18);"`

	Model
}
