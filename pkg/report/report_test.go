package report_test

import (
	"testing"
	"time"

	"tradetracker/pkg/model"
	"tradetracker/pkg/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(id int64, typ string, cum float64, date time.Time) model.Transaction {
	return model.Transaction{
		ID:               id,
		Owner:            1,
		ItemID:           1,
		Type:             typ,
		CumulativeProfit: decimal.NewFromFloat(cum),
		HoldingDate:      model.GormTime(date),
	}
}

func day(d int) time.Time {
	return time.Date(2024, 9, d, 0, 0, 0, 0, time.UTC)
}

func TestSeriesDailyForwardFill(t *testing.T) {
	trans := []model.Transaction{
		row(1, model.TransTypeBuy, 0, day(1)),
		row(2, model.TransTypeSell, 48, day(2)),
		// nothing on the 3rd and 4th
		row(3, model.TransTypeSell, 60, day(5)),
	}

	points := report.Series(trans, report.Daily)
	require.Len(t, points, 5)

	assert.Equal(t, day(1), points[0].Date)
	assert.Equal(t, "0", points[0].Cumulative.String())
	assert.Equal(t, "48", points[1].Cumulative.String())
	// gap days carry the last value forward
	assert.Equal(t, "48", points[2].Cumulative.String())
	assert.Equal(t, "48", points[3].Cumulative.String())
	assert.Equal(t, "60", points[4].Cumulative.String())
}

func TestSeriesLastValuePerBucketWins(t *testing.T) {
	trans := []model.Transaction{
		row(1, model.TransTypeSell, 10, day(1)),
		row(2, model.TransTypeSell, 25, day(1)), // same day, higher id
	}

	points := report.Series(trans, report.Daily)
	require.Len(t, points, 1)
	assert.Equal(t, "25", points[0].Cumulative.String())
}

func TestSeriesMonthly(t *testing.T) {
	trans := []model.Transaction{
		row(1, model.TransTypeSell, 10, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		row(2, model.TransTypeSell, 30, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)),
	}

	points := report.Series(trans, report.Monthly)
	require.Len(t, points, 4)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, "10", points[0].Cumulative.String())
	assert.Equal(t, "10", points[1].Cumulative.String())
	assert.Equal(t, "10", points[2].Cumulative.String())
	assert.Equal(t, "30", points[3].Cumulative.String())
}

func TestSeriesYearly(t *testing.T) {
	trans := []model.Transaction{
		row(1, model.TransTypeSell, 5, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)),
		row(2, model.TransTypeSell, 9, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	}

	points := report.Series(trans, report.Yearly)
	require.Len(t, points, 3)
	assert.Equal(t, "5", points[0].Cumulative.String())
	assert.Equal(t, "5", points[1].Cumulative.String())
	assert.Equal(t, "9", points[2].Cumulative.String())
}

func TestSeriesSkipsPlacingAndEmpty(t *testing.T) {
	assert.Nil(t, report.Series(nil, report.Daily))

	trans := []model.Transaction{
		row(1, model.TransTypePlacingBuy, 0, day(1)),
	}
	assert.Nil(t, report.Series(trans, report.Daily))
}
