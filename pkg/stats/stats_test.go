package stats_test

import (
	"testing"
	"time"

	"tradetracker/pkg/model"
	"tradetracker/pkg/stats"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func row(owner, item int64, typ string, qty, price, realised float64, date time.Time) model.Transaction {
	return model.Transaction{
		Owner:          owner,
		ItemID:         item,
		Type:           typ,
		Price:          decimal.NewFromFloat(price),
		Quantity:       decimal.NewFromFloat(qty),
		RealisedProfit: decimal.NewFromFloat(realised),
		HoldingDate:    model.GormTime(date),
	}
}

func TestSummarize(t *testing.T) {
	d := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	trans := []model.Transaction{
		row(1, 1, model.TransTypeBuy, 10, 100, 0, d),
		row(1, 1, model.TransTypeInstantBuy, 5, 110, 0, d),
		row(1, 1, model.TransTypeSell, 4, 150, 180, d),
		row(1, 1, model.TransTypeInstantSell, 2, 130, 40, d),
		row(1, 1, model.TransTypePlacingSell, 100, 500, 0, d), // ignored
		row(1, 2, model.TransTypeBuy, 99, 1, 0, d),            // other item
		row(2, 1, model.TransTypeSell, 7, 90, 12, d),          // other owner
	}

	s := stats.Summarize(1, 1, trans)

	assert.Equal(t, "4", s.TotalSold.String())
	assert.Equal(t, "2", s.InstantSold.String())
	// (10+5) - (4+2)
	assert.Equal(t, "9", s.Remaining.String())
	// (150+130)/2
	assert.Equal(t, "140", s.AvgSoldPrice.String())
	assert.Equal(t, "220", s.RealisedProfit.String())
}

func TestSummarizeEmpty(t *testing.T) {
	s := stats.Summarize(1, 1, nil)

	assert.Equal(t, "0", s.TotalSold.String())
	assert.Equal(t, "0", s.Remaining.String())
	assert.Equal(t, "0", s.AvgSoldPrice.String())
	assert.Equal(t, "0", s.RealisedProfit.String())
}
