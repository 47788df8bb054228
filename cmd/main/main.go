package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"tradetracker/pkg/config"
	"tradetracker/pkg/importer"
	"tradetracker/pkg/journal"
	"tradetracker/pkg/ledger"
	"tradetracker/pkg/model"
	"tradetracker/pkg/orders"
	"tradetracker/pkg/report"
	"tradetracker/pkg/stats"
	"tradetracker/pkg/xetcd"
	"tradetracker/pkg/xlog"
	"tradetracker/pkg/xnats"

	"github.com/nats-io/nats.go"
	"gorm.io/gorm/clause"
)

var logger = xlog.GetLogger()

var (
	fApp       string
	fOwner     int64
	fCsvDir    string
	fTimeframe string
	fNatsUrl   string
	fLogDir    string
	fLogFile   string
)

var (
	apps = map[string]bool{"recalc": true, "import": true, "worker": true, "report": true, "jm": true, "seed": true}
)

func init() {
	flag.StringVar(&fApp, "app", "", "")
	flag.Int64Var(&fOwner, "owner", 0, "")
	flag.StringVar(&fCsvDir, "csvdir", ".", "")
	flag.StringVar(&fTimeframe, "timeframe", "Monthly", "")
	flag.StringVar(&fNatsUrl, "natsurl", "", "")
	flag.StringVar(&fLogDir, "logdir", "", "")
	flag.StringVar(&fLogFile, "logfile", "", "")
}

func main() {
	var err error
	flag.Parse()

	if !apps[fApp] {
		validApps := ""
		for k := range apps {
			validApps += k + ", "
		}
		panic("invalid app, only (" + validApps + ") avaliable")
	}

	// Initialize the Shared config
	config.EasyInit()

	// Initialize the logger
	if fLogDir == "" {
		fLogDir = filepath.Join(config.Shared.DataDir, "logs")
	}
	if fLogFile == "" {
		fLogFile = fApp + ".log"
	}
	logPath := filepath.Join(fLogDir, fLogFile)
	xlog.Init(fApp, logPath, nil)
	logger.Info(fApp + " started")
	logger.Infof("xlog in %s", logPath)

	// Handle signals
	go handleSignals()

	// Initialize the etcd instance
	err = xetcd.InitShared([]string{config.Shared.Etcd.Main.Url})
	if err != nil {
		logger.Errorf("xetcd.InitShared failed with err:%s", err)
		panic(err)
	}

	// Initialize the database instances(mysql, redis)
	// fatal if failed
	model.DBInit()

	// Start the app
	switch fApp {
	case "":
		return
	case "recalc":
		err = startRecalc()
	case "import":
		err = startImport()
	case "worker":
		err = startWorker()
	case "report":
		err = startReport()
	case "jm":
		err = startJournalMonitor()
	case "seed":
		err = PrepareDevData()
	default:
		return
	}

	if err != nil {
		logger.Error(err)
		panic(err)
	}
}

// handleSignals handles linux signals
//
//	Function 1: Change log level via SIGUSR1 signal
//		docker exec <container_id> sh -c 'export XLOG_LVL=TRACE && kill -SIGUSR1 1'
func handleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGUSR1)
	logLevelChan := make(chan string)

	for {
		select {
		case sig := <-sigChan:
			if sig == syscall.SIGUSR1 {
				// Read log level from environment variable
				level := os.Getenv("XLOG_LVL")
				if level != "" {
					logLevelChan <- level
				}
			}
		case level := <-logLevelChan:
			logger := xlog.GetLogger()
			logger.SetLevel(level)
			logger.Infof("Log level set to %s via signal", level)
		}
	}
}

// startRecalc replays one owner's ledger, or every owner's when -owner is not
// given, and prints the resulting cumulative profit
func startRecalc() (err error) {
	err = model.Migrate()
	if err != nil {
		return
	}

	if fOwner == 0 {
		return ledger.RecomputeAll()
	}

	err = ledger.Recompute(fOwner)
	if err != nil {
		return
	}

	cum, err := stats.GlobalProfit(fOwner)
	if err != nil {
		return
	}
	fmt.Printf("owner %d cumulative profit: %s\n", fOwner, cum)

	return
}

// startImport loads the legacy csv files from -csvdir and recomputes, then
// tells any running worker about the change
func startImport() (err error) {
	err = model.Migrate()
	if err != nil {
		return
	}

	owner := fOwner
	if owner == 0 {
		owner = config.Shared.Import.DefaultOwner
	}
	if owner == 0 {
		return errors.New("no owner, pass -owner or set import.default_owner")
	}

	res, err := importer.Run(fCsvDir, owner)
	if err != nil {
		return
	}

	fmt.Printf("imported items:%d aliases:%d prices:%d memberships:%d transactions:%d watchlist:%d wealth:%d skipped:%d\n",
		res.Items, res.Aliases, res.Prices, res.Memberships, res.Transactions, res.Watchlist, res.Wealth, res.Skipped)

	// best effort, the import already recomputed locally
	js, jerr := xnats.GetJetStream()
	if jerr != nil {
		logger.Warningf("recalc bus unavailable, err:%s", jerr)
		return nil
	}
	jerr = xnats.PublishRecalc(js, xnats.RecalcReq{
		Owner:  owner,
		Reason: xnats.RecalcReasonImport,
		Time:   time.Now().UnixNano(),
	})
	if jerr != nil {
		logger.Warningf("PublishRecalc failed with err:%s", jerr)
	}

	return
}

const (
	workerApp  = "ledger_worker"
	monitorApp = "journal_monitor"
)

// startWorker consumes recalc requests from the bus, replays the owner and
// reports standing orders crossed by the advisory price levels. Consumed
// message sequences are persisted so a restart skips served requests.
func startWorker() (err error) {
	err = model.Migrate()
	if err != nil {
		return
	}

	latestSeq, err := loadLastkv(workerApp, model.LASTKV_K_NATS_SEQ)
	if err != nil {
		return
	}

	js, err := xnats.GetJetStream()
	if err != nil {
		return
	}
	err = xnats.EnsureStream(js)
	if err != nil {
		return
	}

	ch := make(chan *nats.Msg, 256)
	_, err = xnats.SubRecalc(js, ch, latestSeq)
	if err != nil {
		return
	}

	logger.Infof("worker started from seq:%d", latestSeq)

	for {
		m, ok := <-ch
		if !ok {
			return
		}

		meta, merr := m.Metadata()
		if merr != nil {
			logger.Errorf("worker msg metadata failed with err:%s", merr)
			continue
		}
		seq := int64(meta.Sequence.Stream)
		if seq <= latestSeq {
			// duplicate push
			continue
		}

		var req xnats.RecalcReq
		if merr = json.Unmarshal(m.Data, &req); merr != nil {
			logger.Errorf("worker bad request seq:%d with err:%s", seq, merr)
			continue
		}

		logger.Infof("worker recalc owner:%d, reason:%s, seq:%d", req.Owner, req.Reason, seq)

		if merr = ledger.Recompute(req.Owner); merr != nil {
			// leave the seq unsaved so a restart retries this request
			logger.Errorf("worker recompute owner:%d failed with err:%s", req.Owner, merr)
			continue
		}

		if merr = checkCrossings(req.Owner); merr != nil {
			logger.Errorf("worker crossings owner:%d failed with err:%s", req.Owner, merr)
		}

		latestSeq = seq
		if merr = saveLastkv(workerApp, model.LASTKV_K_NATS_SEQ, seq); merr != nil {
			logger.Errorf("worker save seq:%d failed with err:%s", seq, merr)
		}
	}
}

// checkCrossings loads the owner's standing orders and logs the ones sitting
// on the wrong side of the advisory price levels
func checkCrossings(owner int64) (err error) {
	board := orders.NewBoard()
	err = board.Load(owner)
	if err != nil {
		return
	}

	db := model.GetMySQLSlience()

	// a standing sell asking no more than the accumulation price is a bargain
	var aps []model.AccumulationPrice
	err = db.Find(&aps).Error
	if err != nil {
		return
	}
	for _, ap := range aps {
		for _, o := range board.SellsAtOrBelow(ap.ItemID, ap.Price) {
			logger.Infof("crossing: standing sell id:%d item:%d asks %s, accumulation price is %s",
				o.ID, o.ItemID, o.Price, ap.Price)
		}
	}

	// a standing buy bidding the target sell price or more should be taken
	var tsps []model.TargetSellPrice
	err = db.Find(&tsps).Error
	if err != nil {
		return
	}
	for _, tsp := range tsps {
		for _, o := range board.BuysAtOrAbove(tsp.ItemID, tsp.Price) {
			logger.Infof("crossing: standing buy id:%d item:%d bids %s, target sell price is %s",
				o.ID, o.ItemID, o.Price, tsp.Price)
		}
	}

	return
}

func loadLastkv(app, key string) (val int64, err error) {
	db := model.GetMySQL()

	var kv model.Lastkv
	err = db.Model(model.Lastkv{}).
		Where("`app`=? and `key`=?", app, key).
		Limit(1).Find(&kv).Error
	if err != nil {
		return
	}

	val = kv.Val
	return
}

func saveLastkv(app, key string, val int64) (err error) {
	db := model.GetMySQL()

	kv := model.Lastkv{App: app, Key: key, Val: val}
	err = db.Model(model.Lastkv{}).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "app"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"val"}),
		}).
		Create(&kv).Error

	return
}

// startReport prints the owner's cumulative profit series
func startReport() (err error) {
	if fOwner == 0 {
		return errors.New("empty owner")
	}

	tf := report.Timeframe(fTimeframe)
	switch tf {
	case report.Daily, report.Monthly, report.Yearly:
	default:
		return errors.New("invalid timeframe, use Daily, Monthly or Yearly")
	}

	points, err := report.ForOwner(fOwner, tf)
	if err != nil {
		return
	}

	for _, p := range points {
		fmt.Printf("%s %s\n", p.Date.Format("2006-01-02"), p.Cumulative)
	}

	return
}

// startJournalMonitor prints run statistics from the engine journals
//
//	Function 1: Traverse all files ending with .log,
//		read the first and last entry of each file and output
//		the run count and rate between them
func startJournalMonitor() (err error) {
	go tailLedgerJournal()

	for {
		err = runJournalMonitorOne()
		if err != nil {
			logger.Errorf("runJournalMonitorOne failed with err:%s", err)
		}
		time.Sleep(30 * time.Second)
	}
}

// tailLedgerJournal follows the engine journal and prints each run as it lands
func tailLedgerJournal() {
	p := path.Join(config.Shared.DataDir, "journal", "ledger.log")
	j, err := journal.New(p)
	if err != nil {
		logger.Warningf("tailLedgerJournal open failed with err:%s", err)
		return
	}
	defer j.Close()

	ch := make(chan string, 64)
	go func() {
		if terr := j.Tailf(ch); terr != nil {
			logger.Warningf("tailLedgerJournal failed with err:%s", terr)
		}
		close(ch)
	}()

	for line := range ch {
		var e journal.Entry
		if jerr := json.Unmarshal([]byte(line), &e); jerr != nil {
			continue
		}
		fmt.Printf("Run: owner %d replayed %d transactions in %dms, profit %s, oversells %d\n",
			e.Owner, e.Processed, e.TookMs, e.TotalProfit, e.Oversells)

		if kerr := saveLastkv(monitorApp, model.LASTKV_K_SAVED_LOG_ID, e.LogID); kerr != nil {
			logger.Warningf("save log id:%d failed with err:%s", e.LogID, kerr)
		}
	}
}

// runJournalMonitorOne runs the journal monitor one time
func runJournalMonitorOne() (err error) {
	journalDir := path.Join(config.Shared.DataDir, "journal")

	err = filepath.Walk(journalDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && strings.HasSuffix(info.Name(), ".log") {
			j, err := journal.New(p)
			if err != nil {
				return err
			}
			defer j.Close()

			firstLine, err := j.ReadFirstLine()
			if err != nil {
				return err
			}
			lastLine, err := j.ReadLastLine()
			if err != nil {
				return err
			}

			var firstRun, lastRun journal.Entry
			if err := json.Unmarshal([]byte(firstLine), &firstRun); err != nil {
				return err
			}
			if err := json.Unmarshal([]byte(lastLine), &lastRun); err != nil {
				return err
			}

			runs := lastRun.LogID - firstRun.LogID
			duration := time.Duration(lastRun.Ts-firstRun.Ts) * time.Nanosecond
			lastRunTime := time.Unix(0, lastRun.Ts)

			rate := int64(0)
			if int64(duration.Seconds()) > 0 {
				rate = runs / int64(duration.Seconds())
			}
			fmt.Printf(
				"Journal: %s recorded %d runs in %s, last at %s (owner %d, profit %s) with rate %d/sec\n",
				p, runs, duration, lastRunTime.Format(time.RFC3339), lastRun.Owner, lastRun.TotalProfit, rate,
			)
		}
		return nil
	})
	if err != nil {
		return
	}

	return
}
