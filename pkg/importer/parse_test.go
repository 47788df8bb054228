package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactions(t *testing.T) {
	in := "\ufeffName,Type,Price,Quantity,Date of Holding,Realised Profit,Cumulative Profit\n" +
		"Scripture of Wen,Buy,35005000.0,2.0,2024-09-05,0.0,352462880.0\n" +
		"Scripture of Wen,Sell,40000000,1,2024-09-07,,\n"

	rows, skipped, err := ParseTransactions(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, rows, 2)

	assert.Equal(t, "Scripture of Wen", rows[0].ItemName)
	assert.Equal(t, "Buy", rows[0].Type)
	assert.Equal(t, "35005000", rows[0].Price.String())
	assert.Equal(t, "2", rows[0].Quantity.String())
	assert.Equal(t, time.Date(2024, 9, 5, 0, 0, 0, 0, time.UTC), rows[0].HoldingDate)

	assert.Equal(t, "Sell", rows[1].Type)
	assert.Equal(t, "1", rows[1].Quantity.String())
}

func TestParseTransactionsSkipsBadRows(t *testing.T) {
	in := "Name,Type,Price,Quantity,Date of Holding\n" +
		",Buy,10,1,2024-09-05\n" +
		"Rune,Buy,not-a-number,1,2024-09-05\n" +
		"Rune,Buy,10,1,2024-09-05\n"

	rows, skipped, err := ParseTransactions(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, "Rune", rows[0].ItemName)
}

func TestParseTransactionsBlankDateIsToday(t *testing.T) {
	in := "Name,Type,Price,Quantity,Date of Holding\n" +
		"Rune,Buy,10,1,\n"

	rows, _, err := ParseTransactions(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, time.Now().Year(), rows[0].HoldingDate.Year())
}

func TestParseAliases(t *testing.T) {
	in := "FullName,ShortName,ImagePath\n" +
		"Scripture of Wen,wen,images/wen.png\n" +
		",orphan,x.png\n"

	rows, skipped, err := ParseAliases(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, rows, 1)

	assert.Equal(t, "Scripture of Wen", rows[0].FullName)
	assert.Equal(t, "wen", rows[0].ShortName)
	assert.Equal(t, "images/wen.png", rows[0].ImagePath)
}

func TestParsePrices(t *testing.T) {
	in := "Name,Accumulation Price\n" +
		"Rune,1500000\n" +
		"Blank Price,\n"

	rows, skipped, err := ParsePrices(strings.NewReader(in), "Accumulation Price")
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, rows, 2)

	assert.Equal(t, "1500000", rows[0].Price.String())
	// blank price falls back to zero
	assert.Equal(t, "0", rows[1].Price.String())
}

func TestParseMemberships(t *testing.T) {
	in := "Account Name,Membership Status,Membership End Date\n" +
		"Lord Fifty,Yes,2025-12-27\n" +
		"Second Acc,,\n"

	rows, skipped, err := ParseMemberships(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, rows, 2)

	assert.Equal(t, "Lord Fifty", rows[0].AccountName)
	assert.Equal(t, "Yes", rows[0].Status)
	require.NotNil(t, rows[0].EndDate)
	assert.Equal(t, time.Date(2025, 12, 27, 0, 0, 0, 0, time.UTC), *rows[0].EndDate)

	// blank status defaults to No, blank end date stays unset
	assert.Equal(t, "No", rows[1].Status)
	assert.Nil(t, rows[1].EndDate)
}

func TestParseWatchlist(t *testing.T) {
	in := "Name,Desired Price,Date Added,Buy or Sell,Account Name,Wished Quantity,Current Holding,Total Value,Membership Status,Membership End Date\n" +
		"Rune,1000,2024-09-05,Sell,Lord Fifty,5,2,2000,Yes,2025-12-27\n" +
		"Other,500,2024-09-05,Hold,Lord Fifty,1,0,500,,\n"

	rows, skipped, err := ParseWatchlist(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, rows, 2)

	assert.Equal(t, "Sell", rows[0].BuyOrSell)
	assert.Equal(t, "1000", rows[0].DesiredPrice.String())
	assert.Equal(t, "5", rows[0].WishedQuantity.String())

	// anything but Buy/Sell becomes Buy
	assert.Equal(t, "Buy", rows[1].BuyOrSell)
}

func TestParseWealthData(t *testing.T) {
	in := "Year,Account Name,January,February,March,April,May,June,July,August,September,October,November,December\n" +
		"2024,Lord Fifty,100,200,,400,500,600,700,800,900,1000,1100,see notes\n"

	rows, skipped, err := ParseWealthData(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, rows, 1)

	assert.Equal(t, 2024, rows[0].Year)
	assert.Equal(t, "100", rows[0].Months[0])
	assert.Equal(t, "", rows[0].Months[2])
	assert.Equal(t, "see notes", rows[0].Months[11])
}
