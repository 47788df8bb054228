package ledger

import (
	"github.com/shopspring/decimal"
)

// lot is one open purchase: the quantity still unmatched and the unit cost it
// was bought at. The unit cost never changes for the life of the lot.
type lot struct {
	qty      decimal.Decimal
	unitCost decimal.Decimal
}

// lotQueue holds the open lots of one (owner, item) pair, oldest first.
// Popping from the front is O(1) amortized: the head index walks forward and
// the backing slice is compacted once most of it is consumed.
type lotQueue struct {
	lots []lot
	head int
}

func (q *lotQueue) push(l lot) {
	q.lots = append(q.lots, l)
}

func (q *lotQueue) len() int {
	return len(q.lots) - q.head
}

// front returns the oldest unconsumed lot, nil when the queue is empty
func (q *lotQueue) front() *lot {
	if q.head >= len(q.lots) {
		return nil
	}
	return &q.lots[q.head]
}

func (q *lotQueue) pop() {
	if q.head >= len(q.lots) {
		return
	}
	q.head++
	if q.head > 32 && q.head > len(q.lots)/2 {
		n := copy(q.lots, q.lots[q.head:])
		q.lots = q.lots[:n]
		q.head = 0
	}
}
