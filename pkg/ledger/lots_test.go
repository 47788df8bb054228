package ledger

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotQueueFIFO(t *testing.T) {
	q := &lotQueue{}
	assert.Equal(t, 0, q.len())
	assert.Nil(t, q.front())

	q.push(lot{qty: decimal.NewFromInt(5), unitCost: decimal.NewFromInt(10)})
	q.push(lot{qty: decimal.NewFromInt(3), unitCost: decimal.NewFromInt(20)})
	assert.Equal(t, 2, q.len())

	l := q.front()
	require.NotNil(t, l)
	assert.Equal(t, "10", l.unitCost.String())

	q.pop()
	assert.Equal(t, 1, q.len())

	l = q.front()
	require.NotNil(t, l)
	assert.Equal(t, "20", l.unitCost.String())

	q.pop()
	assert.Equal(t, 0, q.len())
	assert.Nil(t, q.front())

	// popping an empty queue is a no-op
	q.pop()
	assert.Equal(t, 0, q.len())
}

func TestLotQueueCompaction(t *testing.T) {
	q := &lotQueue{}
	for i := 0; i < 100; i++ {
		q.push(lot{qty: decimal.NewFromInt(1), unitCost: decimal.NewFromInt(int64(i))})
	}

	// consume past the compaction threshold, order must survive the shift
	for i := 0; i < 60; i++ {
		require.NotNil(t, q.front(), strconv.Itoa(i))
		q.pop()
	}

	assert.Equal(t, 40, q.len())
	l := q.front()
	require.NotNil(t, l)
	assert.Equal(t, "60", l.unitCost.String())
}
