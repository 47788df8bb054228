// Package report builds cumulative-profit time series for the charting
// collaborators. Rendering stays with the web layer, this package only
// produces the points.
package report

import (
	"time"

	"tradetracker/pkg/ledger"
	"tradetracker/pkg/model"
	"tradetracker/pkg/xlog"

	"github.com/shopspring/decimal"
)

var logger = xlog.GetLogger()

type Timeframe string

const (
	Daily   Timeframe = "Daily"
	Monthly Timeframe = "Monthly"
	Yearly  Timeframe = "Yearly"
)

// Point is one bucket of the series, Date is the bucket start
type Point struct {
	Date       time.Time       `json:"date"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// bucketStart truncates t to the start of its bucket
func bucketStart(t time.Time, tf Timeframe) time.Time {
	switch tf {
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Yearly:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// nextBucket advances one bucket
func nextBucket(t time.Time, tf Timeframe) time.Time {
	switch tf {
	case Monthly:
		return t.AddDate(0, 1, 0)
	case Yearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Series buckets the transactions by timeframe, keeps the last cumulative
// profit of each bucket and forward-fills buckets with no trades so the line
// never dips back to zero. The input may be unsorted, placing rows are
// skipped.
func Series(trans []model.Transaction, tf Timeframe) (points []Point) {
	replayOrder := make([]*model.Transaction, 0, len(trans))
	for i := range trans {
		if model.IsPlacingType(trans[i].Type) {
			continue
		}
		replayOrder = append(replayOrder, &trans[i])
	}
	if len(replayOrder) == 0 {
		return nil
	}
	ledger.SortForReplay(replayOrder)

	// last cumulative per bucket
	last := map[time.Time]decimal.Decimal{}
	for _, t := range replayOrder {
		last[bucketStart(t.HoldingDate.Time(), tf)] = t.CumulativeProfit
	}

	first := bucketStart(replayOrder[0].HoldingDate.Time(), tf)
	end := bucketStart(replayOrder[len(replayOrder)-1].HoldingDate.Time(), tf)

	cur := decimal.Zero
	for b := first; !b.After(end); b = nextBucket(b, tf) {
		if v, ok := last[b]; ok {
			cur = v
		}
		points = append(points, Point{Date: b, Cumulative: cur})
	}

	return
}

// ForOwner loads the owner's history and builds the series
func ForOwner(owner int64, tf Timeframe) (points []Point, err error) {
	defer func() {
		if err != nil {
			logger.Errorf("ForOwner owner:%d failed with err:%s", owner, err)
		}
	}()

	db := model.GetMySQLSlience()

	var trans []model.Transaction
	err = db.Model(model.Transaction{}).
		Where("`owner`=? and `type` not in ?", owner, model.PlacingTypes).
		Order("holding_date asc, id asc").
		Find(&trans).Error
	if err != nil {
		return
	}

	points = Series(trans, tf)
	return
}
