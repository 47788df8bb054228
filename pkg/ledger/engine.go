// Package ledger implements the FIFO profit recalculation engine.
//
// Every mutation of an owner's transaction set is followed by a full
// Recompute: per-item purchase lots are rebuilt from scratch in chronological
// order, every sale is matched against the oldest remaining lots, and each
// transaction's realised and cumulative profit columns are rewritten. There is
// no incremental path, replaying the whole history is what keeps arbitrary
// edits and deletes correct.
package ledger

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"tradetracker/pkg/config"
	"tradetracker/pkg/journal"
	"tradetracker/pkg/model"
	"tradetracker/pkg/xlog"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var logger = xlog.GetLogger()

// Policy constants. FeeRate is charged on the gross sale value of every
// Sell/Instant Sell. LotEpsilon absorbs decimal dust when deciding that a lot
// is used up or that a sale was covered.
var (
	FeeRate    = decimal.NewFromFloat(0.02)
	LotEpsilon = decimal.NewFromFloat(0.0001)
)

// OversellWarning reports a sale that consumed more quantity than every lot
// bought before it could cover. The unmatched part is treated as zero cost,
// the run itself still succeeds.
type OversellWarning struct {
	TransactionID int64
	ItemID        int64
	Unmatched     decimal.Decimal
}

func (w OversellWarning) String() string {
	return fmt.Sprintf("transaction:%d item:%d unmatched:%s", w.TransactionID, w.ItemID, w.Unmatched)
}

// Replay recomputes RealisedProfit and CumulativeProfit in place for a single
// owner's non-placing transactions, which must already be sorted ascending by
// (holding date, id). All lot state lives in this call, nothing is shared
// between runs.
func Replay(trans []*model.Transaction) (warnings []OversellWarning) {
	lots := map[int64]*lotQueue{}
	running := decimal.Zero

	for _, t := range trans {
		switch {
		case model.IsPlacingType(t.Type):
			// standing orders carry no profit, callers filter them out already
			continue

		case model.IsBuyType(t.Type):
			q := lots[t.ItemID]
			if q == nil {
				q = &lotQueue{}
				lots[t.ItemID] = q
			}
			q.push(lot{qty: t.Quantity, unitCost: t.Price})
			t.RealisedProfit = decimal.Zero

		case model.IsSellType(t.Type):
			remaining := t.Quantity
			costBasis := decimal.Zero

			q := lots[t.ItemID]
			for q != nil && remaining.GreaterThan(decimal.Zero) {
				l := q.front()
				if l == nil {
					break
				}
				used := decimal.Min(remaining, l.qty)
				costBasis = costBasis.Add(used.Mul(l.unitCost))
				l.qty = l.qty.Sub(used)
				remaining = remaining.Sub(used)
				if l.qty.LessThanOrEqual(LotEpsilon) {
					q.pop()
				}
			}

			if remaining.GreaterThan(LotEpsilon) {
				warnings = append(warnings, OversellWarning{
					TransactionID: t.ID,
					ItemID:        t.ItemID,
					Unmatched:     remaining,
				})
			}

			saleValue := t.Price.Mul(t.Quantity)
			fee := saleValue.Mul(FeeRate)
			t.RealisedProfit = saleValue.Sub(fee).Sub(costBasis)

		default:
			t.RealisedProfit = decimal.Zero
		}

		running = running.Add(t.RealisedProfit)
		t.CumulativeProfit = running
	}

	return
}

// SortForReplay orders transactions ascending by (holding date, id), the id
// tie-break keeps equal-dated rows in insertion order. Recompute gets this
// ordering from the database, in-memory callers use this before Replay.
func SortForReplay(trans []*model.Transaction) {
	sort.SliceStable(trans, func(i, j int) bool {
		ti, tj := trans[i].HoldingDate.Time(), trans[j].HoldingDate.Time()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return trans[i].ID < trans[j].ID
	})
}

// ownerMus serializes recomputes per owner, runs for different owners stay independent
var ownerMus sync.Map

func lockOwner(owner int64) *sync.Mutex {
	v, _ := ownerMus.LoadOrStore(owner, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu
}

// Recompute rewrites realised and cumulative profit for every transaction of
// the owner, all-or-nothing. An owner with no transactions is a successful
// no-op. Callers invoke this synchronously after any create/edit/delete of the
// owner's transactions.
func Recompute(owner int64) (err error) {
	started := time.Now()

	mu := lockOwner(owner)
	defer mu.Unlock()

	var (
		processed int
		warnings  []OversellWarning
		lastCum   decimal.Decimal
	)

	db := model.GetMySQL()
	err = db.Transaction(func(tx *gorm.DB) error {
		// reset first, a repeated run must never inherit values computed
		// from a different input ordering
		txErr := tx.Model(model.Transaction{}).Where("`owner`=?", owner).
			Updates(map[string]interface{}{"realised_profit": 0, "cumulative_profit": 0}).Error
		if txErr != nil {
			return txErr
		}

		var trans []*model.Transaction
		txErr = tx.Model(model.Transaction{}).
			Where("`owner`=? and `type` not in ?", owner, model.PlacingTypes).
			Order("holding_date asc, id asc").
			Find(&trans).Error
		if txErr != nil {
			return txErr
		}

		warnings = Replay(trans)
		processed = len(trans)

		// write-through, later rows never depend on the stored value of
		// earlier ones, only on the in-memory lot state
		for _, t := range trans {
			txErr = tx.Model(model.Transaction{}).Where("`id`=?", t.ID).
				Updates(map[string]interface{}{
					"realised_profit":   t.RealisedProfit,
					"cumulative_profit": t.CumulativeProfit,
				}).Error
			if txErr != nil {
				return txErr
			}
			lastCum = t.CumulativeProfit
		}

		return nil
	})
	if err != nil {
		logger.Errorf("Recompute owner:%d failed with err:%s", owner, err)
		return
	}

	for _, w := range warnings {
		logger.Warningf("Recompute owner:%d oversold, %s treated as zero cost", owner, w)
	}

	cacheProfit(owner, lastCum)
	appendJournal(owner, processed, len(warnings), lastCum, time.Since(started))

	logger.Infof("Recompute owner:%d done with processed:%d, oversells:%d, took:%s",
		owner, processed, len(warnings), time.Since(started))

	return
}

// RecomputeAll reruns the engine for every owner that has transactions
func RecomputeAll() (err error) {
	defer func() {
		if err != nil {
			logger.Errorf("RecomputeAll failed with err:%s", err)
		} else {
			logger.Infof("RecomputeAll done")
		}
	}()

	db := model.GetMySQL()

	var owners []int64
	err = db.Model(model.Transaction{}).Distinct("owner").Order("owner asc").
		Pluck("owner", &owners).Error
	if err != nil {
		return
	}

	for _, owner := range owners {
		err = Recompute(owner)
		if err != nil {
			return
		}
	}

	return
}

// ProfitCacheKey redis key holding the owner's latest cumulative profit
func ProfitCacheKey(owner int64) string {
	return fmt.Sprintf("ledger:cum:%d", owner)
}

// cacheProfit refreshes the dashboard cache, best effort only
func cacheProfit(owner int64, cum decimal.Decimal) {
	rds := model.GetRedis()
	if rds == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rds.Set(ctx, ProfitCacheKey(owner), cum.String(), 0).Err()
	if err != nil {
		logger.Warningf("cacheProfit owner:%d failed with err:%s", owner, err)
	}
}

var (
	jnl   *journal.Journal
	jnlMu sync.Mutex
)

// runJournal returns the shared audit journal, opened lazily under data_dir
func runJournal() (*journal.Journal, error) {
	jnlMu.Lock()
	defer jnlMu.Unlock()

	if jnl != nil {
		return jnl, nil
	}
	if config.Shared == nil || config.Shared.DataDir == "" {
		return nil, nil
	}

	j, err := journal.New(path.Join(config.Shared.DataDir, "journal", "ledger.log"))
	if err != nil {
		return nil, err
	}

	jnl = j
	return jnl, nil
}

// appendJournal records a finished run, the run itself is already committed so
// a journal failure only warns
func appendJournal(owner int64, processed, oversells int, cum decimal.Decimal, took time.Duration) {
	j, err := runJournal()
	if err != nil {
		logger.Warningf("appendJournal open failed with err:%s", err)
		return
	}
	if j == nil {
		return
	}

	err = j.Append(journal.Entry{
		Ts:          time.Now().UnixNano(),
		Owner:       owner,
		Processed:   processed,
		Oversells:   oversells,
		TotalProfit: cum.String(),
		TookMs:      took.Milliseconds(),
	})
	if err != nil {
		logger.Warningf("appendJournal owner:%d failed with err:%s", owner, err)
	}
}
