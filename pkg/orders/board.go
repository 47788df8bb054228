// Package orders keeps the standing orders (the "Placing" rows) in per-item
// btrees so price crossings can be answered without rescanning the table.
package orders

import (
	"errors"
	"math"
	"sync"

	"tradetracker/pkg/model"
	"tradetracker/pkg/xlog"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

var logger = xlog.GetLogger()

// Order minimal standing order information
type Order struct {
	ID       int64
	Owner    int64
	ItemID   int64
	Side     string
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Less orders by price ascending, ID breaks ties
func (a Order) Less(item btree.Item) bool {
	b, _ := item.(Order)

	if a.ID == b.ID {
		return false
	}

	f := a.Price.Cmp(b.Price)
	if f == 0 {
		return a.ID < b.ID
	}

	return f < 0
}

// Board holds one buy tree and one sell tree per item
type Board struct {
	mu sync.RWMutex

	buys  map[int64]*btree.BTree
	sells map[int64]*btree.BTree
}

func NewBoard() *Board {
	return &Board{
		buys:  map[int64]*btree.BTree{},
		sells: map[int64]*btree.BTree{},
	}
}

func orderFromTrans(t *model.Transaction) Order {
	return Order{
		ID:       t.ID,
		Owner:    t.Owner,
		ItemID:   t.ItemID,
		Side:     t.Type,
		Price:    t.Price,
		Quantity: t.Quantity,
	}
}

func (b *Board) tree(itemID int64, side string) *btree.BTree {
	m := b.buys
	if side == model.TransTypePlacingSell {
		m = b.sells
	}

	tr, ok := m[itemID]
	if !ok {
		tr = btree.New(2)
		m[itemID] = tr
	}
	return tr
}

// Put inserts or refreshes a standing order, non-placing rows are rejected
func (b *Board) Put(t *model.Transaction) (err error) {
	if !model.IsPlacingType(t.Type) {
		return errors.New("not a standing order")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.tree(t.ItemID, t.Type).ReplaceOrInsert(orderFromTrans(t))
	return
}

// Remove drops the order, returns false when it was not on the board
func (b *Board) Remove(t *model.Transaction) bool {
	if !model.IsPlacingType(t.Type) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.tree(t.ItemID, t.Type).Delete(Order{ID: t.ID, Price: t.Price}) != nil
}

// Len returns the number of standing orders on each side
func (b *Board) Len() (buys, sells int) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, tr := range b.buys {
		buys += tr.Len()
	}
	for _, tr := range b.sells {
		sells += tr.Len()
	}
	return
}

// Load replaces the board content with the owner's placing rows from mysql
func (b *Board) Load(owner int64) (err error) {
	defer func() {
		if err != nil {
			logger.Errorf("Load owner:%d failed with err:%s", owner, err)
		}
	}()

	db := model.GetMySQL()

	var trans []model.Transaction
	err = db.Model(model.Transaction{}).
		Where("`owner`=? and `type` in ?", owner, model.PlacingTypes).
		Order("id asc").Find(&trans).Error
	if err != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.buys = map[int64]*btree.BTree{}
	b.sells = map[int64]*btree.BTree{}
	for i := range trans {
		t := &trans[i]
		b.tree(t.ItemID, t.Type).ReplaceOrInsert(orderFromTrans(t))
	}

	logger.Infof("Load owner:%d done with orders:%d", owner, len(trans))
	return
}

// BuysAtOrAbove returns buy orders willing to pay price or more, best first
func (b *Board) BuysAtOrAbove(itemID int64, price decimal.Decimal) (out []Order) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	tr, ok := b.buys[itemID]
	if !ok {
		return
	}

	pivot := Order{ID: math.MinInt64, Price: price}
	tr.AscendGreaterOrEqual(pivot, func(item btree.Item) bool {
		o, _ := item.(Order)
		out = append(out, o)
		return true
	})

	// best buy is the highest price
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return
}

// SellsAtOrBelow returns sell orders asking price or less, best first
func (b *Board) SellsAtOrBelow(itemID int64, price decimal.Decimal) (out []Order) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	tr, ok := b.sells[itemID]
	if !ok {
		return
	}

	pivot := Order{ID: math.MaxInt64, Price: price}
	tr.AscendLessThan(pivot, func(item btree.Item) bool {
		o, _ := item.(Order)
		out = append(out, o)
		return true
	})
	return
}

// Snapshot returns both sides of one item in price order
func (b *Board) Snapshot(itemID int64) (buys, sells []Order) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if tr, ok := b.buys[itemID]; ok {
		tr.Ascend(func(item btree.Item) bool {
			o, _ := item.(Order)
			buys = append(buys, o)
			return true
		})
	}
	if tr, ok := b.sells[itemID]; ok {
		tr.Ascend(func(item btree.Item) bool {
			o, _ := item.(Order)
			sells = append(sells, o)
			return true
		})
	}
	return
}

// Crossings returns the standing orders a market price would fill: buys bidding
// at or above it and sells asking at or below it
func (b *Board) Crossings(itemID int64, market decimal.Decimal) (buys, sells []Order) {
	buys = b.BuysAtOrAbove(itemID, market)
	sells = b.SellsAtOrBelow(itemID, market)
	return
}
