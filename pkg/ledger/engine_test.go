package ledger_test

import (
	"testing"
	"time"

	"tradetracker/pkg/ledger"
	"tradetracker/pkg/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	d1 = time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	d2 = time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	d3 = time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC)
	d4 = time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC)
)

func tx(id int64, item int64, typ string, qty, price float64, date time.Time) *model.Transaction {
	return &model.Transaction{
		ID:          id,
		Owner:       1,
		ItemID:      item,
		Type:        typ,
		Price:       decimal.NewFromFloat(price),
		Quantity:    decimal.NewFromFloat(qty),
		HoldingDate: model.GormTime(date),
	}
}

func TestReplayBuyThenSell(t *testing.T) {
	trans := []*model.Transaction{
		tx(1, 1, model.TransTypeBuy, 5, 10, d1),
		tx(2, 1, model.TransTypeSell, 5, 20, d2),
	}

	warnings := ledger.Replay(trans)
	require.Empty(t, warnings)

	// buy realises nothing
	assert.Equal(t, "0", trans[0].RealisedProfit.String())
	assert.Equal(t, "0", trans[0].CumulativeProfit.String())

	// sale value 100, fee 2, cost basis 50
	assert.Equal(t, "48", trans[1].RealisedProfit.String())
	assert.Equal(t, "48", trans[1].CumulativeProfit.String())
}

func TestReplayOldestLotFirst(t *testing.T) {
	trans := []*model.Transaction{
		tx(1, 1, model.TransTypeBuy, 10, 100, d1),
		tx(2, 1, model.TransTypeBuy, 10, 200, d2),
		tx(3, 1, model.TransTypeSell, 12, 150, d3),
	}

	warnings := ledger.Replay(trans)
	require.Empty(t, warnings)

	// cost basis 10*100 + 2*200 = 1400, sale 1800, fee 36
	assert.Equal(t, "364", trans[2].RealisedProfit.String())
	assert.Equal(t, "364", trans[2].CumulativeProfit.String())
}

func TestReplayInstantTypesOpenAndConsumeLots(t *testing.T) {
	trans := []*model.Transaction{
		tx(1, 1, model.TransTypeInstantBuy, 5, 10, d1),
		tx(2, 1, model.TransTypeInstantSell, 5, 20, d2),
	}

	warnings := ledger.Replay(trans)
	require.Empty(t, warnings)

	assert.Equal(t, "0", trans[0].RealisedProfit.String())
	assert.Equal(t, "48", trans[1].RealisedProfit.String())
}

func TestReplayPlacingOrdersAreIgnored(t *testing.T) {
	plain := []*model.Transaction{
		tx(1, 1, model.TransTypeBuy, 5, 10, d1),
		tx(3, 1, model.TransTypeSell, 5, 20, d3),
	}
	withPlacing := []*model.Transaction{
		tx(1, 1, model.TransTypeBuy, 5, 10, d1),
		tx(2, 1, model.TransTypePlacingBuy, 1000, 1, d2),
		tx(3, 1, model.TransTypeSell, 5, 20, d3),
	}

	require.Empty(t, ledger.Replay(plain))
	require.Empty(t, ledger.Replay(withPlacing))

	assert.Equal(t, plain[1].RealisedProfit.String(), withPlacing[2].RealisedProfit.String())
	assert.Equal(t, plain[1].CumulativeProfit.String(), withPlacing[2].CumulativeProfit.String())

	// the standing order itself carries no profit
	assert.Equal(t, "0", withPlacing[1].RealisedProfit.String())
}

func TestReplayItemsAreIsolated(t *testing.T) {
	trans := []*model.Transaction{
		tx(1, 1, model.TransTypeBuy, 10, 5, d1),
		tx(2, 2, model.TransTypeSell, 10, 50, d2), // no lots ever opened on item 2
		tx(3, 1, model.TransTypeSell, 10, 50, d3),
	}

	warnings := ledger.Replay(trans)
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(2), warnings[0].TransactionID)
	assert.Equal(t, int64(2), warnings[0].ItemID)

	// item 2 sale matched nothing: 500 - 10 fee - 0 cost
	assert.Equal(t, "490", trans[1].RealisedProfit.String())
	// item 1 sale still has its full lot: 500 - 10 fee - 50 cost
	assert.Equal(t, "440", trans[2].RealisedProfit.String())
}

func TestReplayOversellKeepsPartialCostBasis(t *testing.T) {
	trans := []*model.Transaction{
		tx(1, 1, model.TransTypeBuy, 5, 10, d1),
		tx(2, 1, model.TransTypeSell, 8, 20, d2),
	}

	warnings := ledger.Replay(trans)
	require.Len(t, warnings, 1)
	assert.Equal(t, "3", warnings[0].Unmatched.String())

	// 8*20*0.98 - 50
	assert.Equal(t, "106.8", trans[1].RealisedProfit.String())
}

func TestReplayCumulativeIsPrefixSum(t *testing.T) {
	trans := []*model.Transaction{
		tx(1, 1, model.TransTypeBuy, 10, 100, d1),
		tx(2, 2, model.TransTypeBuy, 4, 25, d1),
		tx(3, 1, model.TransTypeSell, 4, 150, d2),
		tx(4, 2, model.TransTypeInstantSell, 4, 30, d3),
		tx(5, 1, model.TransTypeSell, 6, 90, d4),
	}

	ledger.Replay(trans)

	sum := decimal.Zero
	for _, tr := range trans {
		sum = sum.Add(tr.RealisedProfit)
		assert.Equal(t, sum.String(), tr.CumulativeProfit.String(), "transaction %d", tr.ID)
	}
	assert.Equal(t, sum.String(), trans[len(trans)-1].CumulativeProfit.String())
}

func TestReplayIsIdempotent(t *testing.T) {
	trans := []*model.Transaction{
		tx(1, 1, model.TransTypeBuy, 10, 100, d1),
		tx(2, 1, model.TransTypeSell, 12, 150, d2),
		tx(3, 1, model.TransTypeBuy, 2, 50, d3),
		tx(4, 1, model.TransTypeSell, 2, 60, d4),
	}

	ledger.Replay(trans)
	first := make([]string, 0, len(trans))
	for _, tr := range trans {
		first = append(first, tr.RealisedProfit.String()+"/"+tr.CumulativeProfit.String())
	}

	// replay over the already-rewritten rows must not drift
	ledger.Replay(trans)
	for i, tr := range trans {
		assert.Equal(t, first[i], tr.RealisedProfit.String()+"/"+tr.CumulativeProfit.String())
	}
}

func TestReplayFractionalQuantities(t *testing.T) {
	trans := []*model.Transaction{
		tx(1, 1, model.TransTypeBuy, 2.5, 4, d1),
		tx(2, 1, model.TransTypeSell, 1.5, 8, d2),
		tx(3, 1, model.TransTypeSell, 1, 8, d3),
	}

	warnings := ledger.Replay(trans)
	require.Empty(t, warnings)

	// 12*0.98 - 6
	assert.Equal(t, "5.76", trans[1].RealisedProfit.String())
	// 8*0.98 - 4
	assert.Equal(t, "3.84", trans[2].RealisedProfit.String())
}

func TestSortForReplayTieBreaksByID(t *testing.T) {
	trans := []*model.Transaction{
		tx(4, 1, model.TransTypeSell, 10, 30, d2),
		tx(2, 1, model.TransTypeBuy, 10, 20, d2),
		tx(1, 1, model.TransTypeBuy, 10, 10, d2),
		tx(3, 1, model.TransTypeBuy, 10, 40, d1),
	}

	ledger.SortForReplay(trans)

	ids := []int64{trans[0].ID, trans[1].ID, trans[2].ID, trans[3].ID}
	assert.Equal(t, []int64{3, 1, 2, 4}, ids)

	warnings := ledger.Replay(trans)
	require.Empty(t, warnings)

	// the sale consumes the d1 lot first, then the cheaper of the equal-dated
	// lots by insertion order: nothing from id 2
	// cost basis 10*40, sale 300, fee 6 -> realised -106
	assert.Equal(t, "-106", trans[3].RealisedProfit.String())
}
