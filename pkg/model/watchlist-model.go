package model

import (
	"github.com/shopspring/decimal"
)

// Watchlist model, a wish to buy or sell an item at a desired price
type Watchlist struct {
	ID int64 `json:"id" gorm:"omitempty; primaryKey;"`

	Name         string          `json:"name" gorm:"omitempty; not null; type:varchar(200); index;"`
	DesiredPrice decimal.Decimal `json:"desiredPrice" gorm:"omitempty; not null; default:0; type:decimal(36,18);"`
	DateAdded    GormTime        `json:"dateAdded" gorm:"omitempty; not null;"`
	BuyOrSell    string          `json:"buyOrSell" gorm:"omitempty; not null; default:'Buy'; type:varchar(4);"`
	AccountName  string          `json:"accountName" gorm:"omitempty; not null; default:''; type:varchar(100);"`

	WishedQuantity decimal.Decimal `json:"wishedQuantity" gorm:"omitempty; not null; default:0; type:decimal(36,18);"`
	TotalValue     decimal.Decimal `json:"totalValue" gorm:"omitempty; not null; default:0; type:decimal(36,18);"`
	CurrentHolding decimal.Decimal `json:"currentHolding" gorm:"omitempty; not null; default:0; type:decimal(36,18);"`

	MembershipStatus  string    `json:"membershipStatus" gorm:"omitempty; not null; default:''; type:varchar(10);"`
	MembershipEndDate *GormTime `json:"membershipEndDate" gorm:"omitempty;"`

	Model
}
