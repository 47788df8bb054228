package importer

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Parsers for the legacy csv exports. Each parser is pure: it reads one file,
// maps columns by header name and returns typed rows, skipping rows it cannot
// understand so one bad line never aborts a whole import.

type TransactionRow struct {
	ItemName    string
	Type        string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	HoldingDate time.Time
}

type AliasRow struct {
	FullName  string
	ShortName string
	ImagePath string
}

// PriceRow one advisory price level, used by both the accumulation and the
// target sell price files
type PriceRow struct {
	ItemName string
	Price    decimal.Decimal
}

type MembershipRow struct {
	AccountName string
	Status      string
	EndDate     *time.Time
}

type WatchlistRow struct {
	Name         string
	DesiredPrice decimal.Decimal
	DateAdded    time.Time
	BuyOrSell    string
	AccountName  string

	WishedQuantity decimal.Decimal
	CurrentHolding decimal.Decimal
	TotalValue     decimal.Decimal

	MembershipStatus  string
	MembershipEndDate *time.Time
}

type WealthRow struct {
	Year        int
	AccountName string
	Months      [12]string
}

const dateLayout = "2006-01-02"

var monthHeaders = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// header reads the first record and maps column name to index. The excel
// exports carry a utf-8 BOM on the first cell.
func header(r *csv.Reader) (idx map[string]int, err error) {
	rec, err := r.Read()
	if err != nil {
		return
	}

	idx = map[string]int{}
	for i, name := range rec {
		name = strings.TrimPrefix(name, "\ufeff")
		idx[strings.TrimSpace(name)] = i
	}
	return
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseDec treats blank as zero
func parseDec(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// parseDate treats blank or unparseable as today
func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Now().Truncate(24 * time.Hour)
	}
	return t
}

// parseOptDate returns nil for blank or unparseable
func parseOptDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// ParseTransactions reads transactions.csv:
//
//	Name,Type,Price,Quantity,Date of Holding,Realised Profit,Cumulative Profit
//
// The profit columns are ignored, the engine rewrites them after import.
func ParseTransactions(r io.Reader) (rows []TransactionRow, skipped int, err error) {
	cr := newReader(r)
	idx, err := header(cr)
	if err != nil {
		return
	}

	for line := 2; ; line++ {
		rec, rerr := cr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			err = rerr
			return
		}

		row := TransactionRow{
			ItemName: field(rec, idx, "Name"),
			Type:     field(rec, idx, "Type"),
		}
		if row.ItemName == "" || row.Type == "" {
			logger.Warningf("transactions.csv line:%d skipped, name or type missing", line)
			skipped++
			continue
		}

		row.Price, err = parseDec(field(rec, idx, "Price"))
		if err == nil {
			row.Quantity, err = parseDec(field(rec, idx, "Quantity"))
		}
		if err != nil {
			logger.Warningf("transactions.csv line:%d skipped with err:%s", line, err)
			err = nil
			skipped++
			continue
		}

		row.HoldingDate = parseDate(field(rec, idx, "Date of Holding"))
		rows = append(rows, row)
	}
	return
}

// ParseAliases reads item_aliases.csv: FullName,ShortName,ImagePath
func ParseAliases(r io.Reader) (rows []AliasRow, skipped int, err error) {
	cr := newReader(r)
	idx, err := header(cr)
	if err != nil {
		return
	}

	for line := 2; ; line++ {
		rec, rerr := cr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			err = rerr
			return
		}

		row := AliasRow{
			FullName:  field(rec, idx, "FullName"),
			ShortName: field(rec, idx, "ShortName"),
			ImagePath: field(rec, idx, "ImagePath"),
		}
		if row.FullName == "" {
			logger.Warningf("item_aliases.csv line:%d skipped, FullName missing", line)
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return
}

// ParsePrices reads the two advisory price files, both are Name plus one
// price column (Accumulation Price or Target Sell Price)
func ParsePrices(r io.Reader, priceCol string) (rows []PriceRow, skipped int, err error) {
	cr := newReader(r)
	idx, err := header(cr)
	if err != nil {
		return
	}

	for line := 2; ; line++ {
		rec, rerr := cr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			err = rerr
			return
		}

		row := PriceRow{ItemName: field(rec, idx, "Name")}
		if row.ItemName == "" {
			skipped++
			continue
		}

		row.Price, err = parseDec(field(rec, idx, priceCol))
		if err != nil {
			logger.Warningf("prices line:%d skipped with err:%s", line, err)
			err = nil
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return
}

// ParseMemberships reads membership_data.csv:
//
//	Account Name,Membership Status,Membership End Date
func ParseMemberships(r io.Reader) (rows []MembershipRow, skipped int, err error) {
	cr := newReader(r)
	idx, err := header(cr)
	if err != nil {
		return
	}

	for line := 2; ; line++ {
		rec, rerr := cr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			err = rerr
			return
		}

		row := MembershipRow{
			AccountName: field(rec, idx, "Account Name"),
			Status:      field(rec, idx, "Membership Status"),
			EndDate:     parseOptDate(field(rec, idx, "Membership End Date")),
		}
		if row.AccountName == "" {
			skipped++
			continue
		}
		if row.Status == "" {
			row.Status = "No"
		}
		rows = append(rows, row)
	}
	return
}

// ParseWatchlist reads watchlist.csv:
//
//	Name,Desired Price,Date Added,Buy or Sell,Account Name,Wished Quantity,
//	Current Holding,Total Value,Membership Status,Membership End Date
func ParseWatchlist(r io.Reader) (rows []WatchlistRow, skipped int, err error) {
	cr := newReader(r)
	idx, err := header(cr)
	if err != nil {
		return
	}

	for line := 2; ; line++ {
		rec, rerr := cr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			err = rerr
			return
		}

		row := WatchlistRow{
			Name:              field(rec, idx, "Name"),
			DateAdded:         parseDate(field(rec, idx, "Date Added")),
			BuyOrSell:         field(rec, idx, "Buy or Sell"),
			AccountName:       field(rec, idx, "Account Name"),
			MembershipStatus:  field(rec, idx, "Membership Status"),
			MembershipEndDate: parseOptDate(field(rec, idx, "Membership End Date")),
		}
		if row.Name == "" {
			skipped++
			continue
		}
		if row.BuyOrSell != "Buy" && row.BuyOrSell != "Sell" {
			row.BuyOrSell = "Buy"
		}

		decs := []struct {
			col string
			dst *decimal.Decimal
		}{
			{"Desired Price", &row.DesiredPrice},
			{"Wished Quantity", &row.WishedQuantity},
			{"Current Holding", &row.CurrentHolding},
			{"Total Value", &row.TotalValue},
		}
		bad := false
		for _, d := range decs {
			v, derr := parseDec(field(rec, idx, d.col))
			if derr != nil {
				logger.Warningf("watchlist.csv line:%d skipped with col:%s err:%s", line, d.col, derr)
				bad = true
				break
			}
			*d.dst = v
		}
		if bad {
			skipped++
			continue
		}

		rows = append(rows, row)
	}
	return
}

// ParseWealthData reads wealth_data.csv:
//
//	Year,Account Name,January,...,December
//
// Month cells stay as raw strings, the sheets mix numbers with notes.
func ParseWealthData(r io.Reader) (rows []WealthRow, skipped int, err error) {
	cr := newReader(r)
	idx, err := header(cr)
	if err != nil {
		return
	}

	for line := 2; ; line++ {
		rec, rerr := cr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			err = rerr
			return
		}

		row := WealthRow{AccountName: field(rec, idx, "Account Name")}
		if row.AccountName == "" {
			skipped++
			continue
		}

		row.Year, err = strconv.Atoi(field(rec, idx, "Year"))
		if err != nil {
			logger.Warningf("wealth_data.csv line:%d skipped with err:%s", line, err)
			err = nil
			skipped++
			continue
		}

		for i, m := range monthHeaders {
			row.Months[i] = field(rec, idx, m)
		}
		rows = append(rows, row)
	}
	return
}
