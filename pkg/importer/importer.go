// Package importer loads the legacy csv exports into mysql and triggers a
// profit recompute for the owner once everything is in.
package importer

import (
	"os"
	"path"
	"time"

	"tradetracker/pkg/ledger"
	"tradetracker/pkg/model"
	"tradetracker/pkg/xlog"

	"gorm.io/gorm"
)

var logger = xlog.GetLogger()

// Result counts of one import run
type Result struct {
	Items        int
	Aliases      int
	Prices       int
	Memberships  int
	Transactions int
	Watchlist    int
	Wealth       int
	Skipped      int
}

// Run imports every known csv file from dir for the owner inside a single
// database transaction, then recomputes the owner's profits. A missing file
// is skipped with a warning, the old scripts did the same.
func Run(dir string, owner int64) (res Result, err error) {
	logger.Infof("Run started with dir:%s, owner:%d", dir, owner)
	defer func() {
		if err != nil {
			logger.Errorf("Run failed with err:%s", err)
		} else {
			logger.Infof("Run done with items:%d, aliases:%d, prices:%d, memberships:%d, trans:%d, watchlist:%d, wealth:%d, skipped:%d",
				res.Items, res.Aliases, res.Prices, res.Memberships, res.Transactions, res.Watchlist, res.Wealth, res.Skipped)
		}
	}()

	db := model.GetMySQL()

	err = db.Transaction(func(tx *gorm.DB) error {
		im := importRun{tx: tx, dir: dir, owner: owner, items: map[string]int64{}}

		steps := []func() error{
			im.importAliases,
			im.importAccumulationPrices,
			im.importMemberships,
			im.importTargetSellPrices,
			im.importTransactions,
			im.importWatchlist,
			im.importWealthData,
		}
		for _, step := range steps {
			if serr := step(); serr != nil {
				return serr
			}
		}

		res = im.res
		res.Items = len(im.items)
		return nil
	})
	if err != nil {
		return
	}

	err = ledger.Recompute(owner)
	return
}

type importRun struct {
	tx    *gorm.DB
	dir   string
	owner int64

	items map[string]int64 // name -> id
	res   Result
}

// open returns nil with no error when the file does not exist
func (im *importRun) open(name string) (f *os.File, err error) {
	p := path.Join(im.dir, name)
	f, err = os.Open(p)
	if os.IsNotExist(err) {
		logger.Warningf("file not found: %s (skipping)", p)
		return nil, nil
	}
	return
}

func (im *importRun) itemID(name string) (id int64, err error) {
	if id, ok := im.items[name]; ok {
		return id, nil
	}

	item := model.Item{Name: name}
	err = im.tx.Where("`name`=?", name).FirstOrCreate(&item).Error
	if err != nil {
		return
	}

	im.items[name] = item.ID
	return item.ID, nil
}

func optTime(t *time.Time) *model.GormTime {
	if t == nil {
		return nil
	}
	gt := model.GormTime(*t)
	return &gt
}

func (im *importRun) importAliases() (err error) {
	f, err := im.open("item_aliases.csv")
	if err != nil || f == nil {
		return
	}
	defer f.Close()

	rows, skipped, err := ParseAliases(f)
	if err != nil {
		return
	}
	im.res.Skipped += skipped

	for _, r := range rows {
		alias := model.Alias{FullName: r.FullName, ShortName: r.ShortName}
		err = im.tx.Where(alias).
			Assign(map[string]interface{}{"image_path": r.ImagePath}).
			FirstOrCreate(&alias).Error
		if err != nil {
			return
		}
		im.res.Aliases++
	}
	return
}

func (im *importRun) importPrices(file, col string, upsert func(itemID int64, row PriceRow) error) (err error) {
	f, err := im.open(file)
	if err != nil || f == nil {
		return
	}
	defer f.Close()

	rows, skipped, err := ParsePrices(f, col)
	if err != nil {
		return
	}
	im.res.Skipped += skipped

	for _, r := range rows {
		id, ierr := im.itemID(r.ItemName)
		if ierr != nil {
			return ierr
		}
		if err = upsert(id, r); err != nil {
			return
		}
		im.res.Prices++
	}
	return
}

func (im *importRun) importAccumulationPrices() error {
	return im.importPrices("accumulation_prices.csv", "Accumulation Price",
		func(itemID int64, row PriceRow) error {
			ap := model.AccumulationPrice{ItemID: itemID}
			return im.tx.Where(ap).
				Assign(map[string]interface{}{"price": row.Price}).
				FirstOrCreate(&ap).Error
		})
}

func (im *importRun) importTargetSellPrices() error {
	return im.importPrices("target_sell_prices.csv", "Target Sell Price",
		func(itemID int64, row PriceRow) error {
			tsp := model.TargetSellPrice{ItemID: itemID}
			return im.tx.Where(tsp).
				Assign(map[string]interface{}{"price": row.Price}).
				FirstOrCreate(&tsp).Error
		})
}

func (im *importRun) importMemberships() (err error) {
	f, err := im.open("membership_data.csv")
	if err != nil || f == nil {
		return
	}
	defer f.Close()

	rows, skipped, err := ParseMemberships(f)
	if err != nil {
		return
	}
	im.res.Skipped += skipped

	for _, r := range rows {
		m := model.Membership{AccountName: r.AccountName}
		err = im.tx.Where(m).
			Assign(map[string]interface{}{
				"status":   r.Status,
				"end_date": optTime(r.EndDate),
			}).
			FirstOrCreate(&m).Error
		if err != nil {
			return
		}
		im.res.Memberships++
	}
	return
}

func (im *importRun) importTransactions() (err error) {
	f, err := im.open("transactions.csv")
	if err != nil || f == nil {
		return
	}
	defer f.Close()

	rows, skipped, err := ParseTransactions(f)
	if err != nil {
		return
	}
	im.res.Skipped += skipped

	trans := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		if !model.ValidTransType(r.Type) {
			logger.Warningf("transactions.csv skipped item:%s with unknown type:%s", r.ItemName, r.Type)
			im.res.Skipped++
			continue
		}

		id, ierr := im.itemID(r.ItemName)
		if ierr != nil {
			return ierr
		}

		trans = append(trans, model.Transaction{
			Owner:       im.owner,
			ItemID:      id,
			Type:        r.Type,
			Price:       r.Price,
			Quantity:    r.Quantity,
			HoldingDate: model.GormTime(r.HoldingDate),
		})
	}

	if len(trans) > 0 {
		err = im.tx.CreateInBatches(trans, 500).Error
		if err != nil {
			return
		}
	}

	im.res.Transactions += len(trans)
	return
}

func (im *importRun) importWatchlist() (err error) {
	f, err := im.open("watchlist.csv")
	if err != nil || f == nil {
		return
	}
	defer f.Close()

	rows, skipped, err := ParseWatchlist(f)
	if err != nil {
		return
	}
	im.res.Skipped += skipped

	for _, r := range rows {
		w := model.Watchlist{
			Name:         r.Name,
			DesiredPrice: r.DesiredPrice,
			DateAdded:    model.GormTime(r.DateAdded),
			BuyOrSell:    r.BuyOrSell,
			AccountName:  r.AccountName,

			WishedQuantity: r.WishedQuantity,
			TotalValue:     r.TotalValue,
			CurrentHolding: r.CurrentHolding,

			MembershipStatus:  r.MembershipStatus,
			MembershipEndDate: optTime(r.MembershipEndDate),
		}
		err = im.tx.Create(&w).Error
		if err != nil {
			return
		}
		im.res.Watchlist++
	}
	return
}

func (im *importRun) importWealthData() (err error) {
	f, err := im.open("wealth_data.csv")
	if err != nil || f == nil {
		return
	}
	defer f.Close()

	rows, skipped, err := ParseWealthData(f)
	if err != nil {
		return
	}
	im.res.Skipped += skipped

	for _, r := range rows {
		wd := model.WealthData{
			AccountName: r.AccountName,
			Year:        r.Year,

			January:   r.Months[0],
			February:  r.Months[1],
			March:     r.Months[2],
			April:     r.Months[3],
			May:       r.Months[4],
			June:      r.Months[5],
			July:      r.Months[6],
			August:    r.Months[7],
			September: r.Months[8],
			October:   r.Months[9],
			November:  r.Months[10],
			December:  r.Months[11],
		}
		err = im.tx.Create(&wd).Error
		if err != nil {
			return
		}
		im.res.Wealth++
	}
	return
}
