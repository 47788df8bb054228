// Package stats serves the read-side summaries of a user's ledger: per-item
// holdings and sale stats, and the owner's latest cumulative profit.
package stats

import (
	"context"
	"time"

	"tradetracker/pkg/ledger"
	"tradetracker/pkg/model"
	"tradetracker/pkg/xlog"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

var logger = xlog.GetLogger()

// ItemSummary holdings and sale stats of one (owner, item) pair, computed
// over the owner's non-placing transactions only
type ItemSummary struct {
	Owner  int64 `json:"owner"`
	ItemID int64 `json:"itemID"`

	TotalSold   decimal.Decimal `json:"totalSold"`   // plain Sell quantity
	InstantSold decimal.Decimal `json:"instantSold"` // Instant Sell quantity
	Remaining   decimal.Decimal `json:"remaining"`   // all buys minus all sells

	AvgSoldPrice   decimal.Decimal `json:"avgSoldPrice"` // simple average over both sell types
	RealisedProfit decimal.Decimal `json:"realisedProfit"`
}

// Summarize computes the item summary from already-fetched rows. Rows of
// other items or placing rows are skipped, so a caller may pass an owner's
// whole history.
func Summarize(owner, itemID int64, trans []model.Transaction) (s ItemSummary) {
	s = ItemSummary{
		Owner:  owner,
		ItemID: itemID,

		TotalSold:      decimal.Zero,
		InstantSold:    decimal.Zero,
		Remaining:      decimal.Zero,
		AvgSoldPrice:   decimal.Zero,
		RealisedProfit: decimal.Zero,
	}

	soldPriceSum := decimal.Zero
	soldCount := int64(0)

	for _, t := range trans {
		if t.Owner != owner || t.ItemID != itemID || model.IsPlacingType(t.Type) {
			continue
		}

		switch t.Type {
		case model.TransTypeBuy, model.TransTypeInstantBuy:
			s.Remaining = s.Remaining.Add(t.Quantity)
		case model.TransTypeSell:
			s.TotalSold = s.TotalSold.Add(t.Quantity)
			s.Remaining = s.Remaining.Sub(t.Quantity)
			soldPriceSum = soldPriceSum.Add(t.Price)
			soldCount++
		case model.TransTypeInstantSell:
			s.InstantSold = s.InstantSold.Add(t.Quantity)
			s.Remaining = s.Remaining.Sub(t.Quantity)
			soldPriceSum = soldPriceSum.Add(t.Price)
			soldCount++
		}

		s.RealisedProfit = s.RealisedProfit.Add(t.RealisedProfit)
	}

	if soldCount > 0 {
		s.AvgSoldPrice = soldPriceSum.Div(decimal.NewFromInt(soldCount))
	}

	return
}

// ForItem loads the owner's rows for one item and summarizes them
func ForItem(owner, itemID int64) (s ItemSummary, err error) {
	defer func() {
		if err != nil {
			logger.Errorf("ForItem owner:%d item:%d failed with err:%s", owner, itemID, err)
		}
	}()

	db := model.GetMySQLSlience()

	var trans []model.Transaction
	err = db.Model(model.Transaction{}).
		Where("`owner`=? and `item_id`=? and `type` not in ?", owner, itemID, model.PlacingTypes).
		Order("holding_date asc, id asc").
		Find(&trans).Error
	if err != nil {
		return
	}

	s = Summarize(owner, itemID, trans)
	return
}

// GlobalProfit returns the owner's latest cumulative profit. The redis cache
// written by the engine is tried first, the database is the fallback.
func GlobalProfit(owner int64) (cum decimal.Decimal, err error) {
	cum = decimal.Zero

	if rds := model.GetRedis(); rds != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		s, rerr := rds.Get(ctx, ledger.ProfitCacheKey(owner)).Result()
		if rerr == nil {
			if v, derr := decimal.NewFromString(s); derr == nil {
				return v, nil
			}
		} else if rerr != redis.Nil {
			logger.Warningf("GlobalProfit cache read owner:%d failed with err:%s", owner, rerr)
		}
	}

	db := model.GetMySQLSlience()

	row := db.Model(model.Transaction{}).
		Where("`owner`=?", owner).
		Select("coalesce(max(`cumulative_profit`), 0)").
		Row()
	err = row.Scan(&cum)
	if err != nil {
		logger.Errorf("GlobalProfit owner:%d failed with err:%s", owner, err)
		return
	}

	return
}
