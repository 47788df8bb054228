package orders_test

import (
	"testing"

	"tradetracker/pkg/model"
	"tradetracker/pkg/orders"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placing(id, item int64, typ string, price, qty float64) *model.Transaction {
	return &model.Transaction{
		ID:       id,
		Owner:    1,
		ItemID:   item,
		Type:     typ,
		Price:    decimal.NewFromFloat(price),
		Quantity: decimal.NewFromFloat(qty),
	}
}

func TestBoardPutRejectsNonPlacing(t *testing.T) {
	b := orders.NewBoard()

	err := b.Put(placing(1, 1, model.TransTypeBuy, 10, 1))
	assert.Error(t, err)

	buys, sells := b.Len()
	assert.Equal(t, 0, buys)
	assert.Equal(t, 0, sells)
}

func TestBoardCrossings(t *testing.T) {
	b := orders.NewBoard()

	require.NoError(t, b.Put(placing(1, 1, model.TransTypePlacingBuy, 90, 5)))
	require.NoError(t, b.Put(placing(2, 1, model.TransTypePlacingBuy, 100, 5)))
	require.NoError(t, b.Put(placing(3, 1, model.TransTypePlacingBuy, 110, 5)))
	require.NoError(t, b.Put(placing(4, 1, model.TransTypePlacingSell, 95, 5)))
	require.NoError(t, b.Put(placing(5, 1, model.TransTypePlacingSell, 120, 5)))

	buys, sells := b.Crossings(1, decimal.NewFromInt(100))

	// buys bidding 100 or more, best (highest) first
	require.Len(t, buys, 2)
	assert.Equal(t, int64(3), buys[0].ID)
	assert.Equal(t, int64(2), buys[1].ID)

	// sells asking 100 or less
	require.Len(t, sells, 1)
	assert.Equal(t, int64(4), sells[0].ID)
}

func TestBoardCrossingsIncludeExactPrice(t *testing.T) {
	b := orders.NewBoard()

	require.NoError(t, b.Put(placing(1, 1, model.TransTypePlacingSell, 100, 1)))
	require.NoError(t, b.Put(placing(2, 1, model.TransTypePlacingBuy, 100, 1)))

	buys, sells := b.Crossings(1, decimal.NewFromInt(100))
	assert.Len(t, buys, 1)
	assert.Len(t, sells, 1)
}

func TestBoardItemsAreIsolated(t *testing.T) {
	b := orders.NewBoard()

	require.NoError(t, b.Put(placing(1, 1, model.TransTypePlacingBuy, 100, 1)))
	require.NoError(t, b.Put(placing(2, 2, model.TransTypePlacingBuy, 100, 1)))

	buys, _ := b.Crossings(1, decimal.NewFromInt(50))
	require.Len(t, buys, 1)
	assert.Equal(t, int64(1), buys[0].ID)
}

func TestBoardRemove(t *testing.T) {
	b := orders.NewBoard()

	o := placing(1, 1, model.TransTypePlacingSell, 100, 1)
	require.NoError(t, b.Put(o))

	assert.True(t, b.Remove(o))
	assert.False(t, b.Remove(o))

	_, sells := b.Len()
	assert.Equal(t, 0, sells)
}

func TestBoardPutRefreshesExisting(t *testing.T) {
	b := orders.NewBoard()

	require.NoError(t, b.Put(placing(1, 1, model.TransTypePlacingSell, 100, 5)))
	// same order resubmitted with a new quantity
	require.NoError(t, b.Put(placing(1, 1, model.TransTypePlacingSell, 100, 3)))

	_, sells := b.Len()
	require.Equal(t, 1, sells)

	_, snap := b.Snapshot(1)
	require.Len(t, snap, 1)
	assert.Equal(t, "3", snap[0].Quantity.String())
}

func TestBoardSnapshotPriceOrder(t *testing.T) {
	b := orders.NewBoard()

	require.NoError(t, b.Put(placing(1, 1, model.TransTypePlacingBuy, 110, 1)))
	require.NoError(t, b.Put(placing(2, 1, model.TransTypePlacingBuy, 90, 1)))
	require.NoError(t, b.Put(placing(3, 1, model.TransTypePlacingSell, 130, 1)))
	require.NoError(t, b.Put(placing(4, 1, model.TransTypePlacingSell, 120, 1)))

	buys, sells := b.Snapshot(1)
	require.Len(t, buys, 2)
	require.Len(t, sells, 2)

	assert.Equal(t, "90", buys[0].Price.String())
	assert.Equal(t, "110", buys[1].Price.String())
	assert.Equal(t, "120", sells[0].Price.String())
	assert.Equal(t, "130", sells[1].Price.String())
}
