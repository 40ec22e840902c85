package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zuhaoku/pkg/errs"
)

func table(half, hour, night string) Table {
	return Table{
		PerHalfHour:  decimal.RequireFromString(half),
		PerHour:      decimal.RequireFromString(hour),
		PerOvernight: decimal.RequireFromString(night),
	}
}

func TestCalculate(t *testing.T) {
	tbl := table("5.00", "10.00", "60.00")

	cases := []struct {
		name     string
		duration int
		unit     Unit
		want     string
	}{
		{"two hours", 2, UnitHour, "20.00"},
		{"thirty minutes", 30, UnitMinute, "5.00"},
		{"forty five minutes", 45, UnitMinute, "7.50"},
		{"one overnight", 1, UnitOvernight, "60.00"},
		{"three overnights", 3, UnitOvernight, "180.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Calculate(tbl, tc.duration, tc.unit)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.StringFixed(2))
		})
	}
}

func TestCalculateRoundsHalfUp(t *testing.T) {
	got, err := Calculate(table("3.33", "0", "0"), 10, UnitMinute)
	require.NoError(t, err)
	assert.Equal(t, "1.11", got.StringFixed(2))

	got, err = Calculate(table("0.45", "0", "0"), 1, UnitMinute)
	require.NoError(t, err)
	assert.Equal(t, "0.02", got.StringFixed(2), "0.015 rounds up")

	got, err = Calculate(table("0", "1.005", "0"), 1, UnitHour)
	require.NoError(t, err)
	assert.Equal(t, "1.01", got.StringFixed(2))
}

func TestMinuteSixtyEqualsOneHour(t *testing.T) {
	for _, hourly := range []string{"10.00", "7.50", "0.20", "123.46"} {
		tbl := TableFromHourly(decimal.RequireFromString(hourly), DefaultOvernightHours)
		byMinute, err := Calculate(tbl, 60, UnitMinute)
		require.NoError(t, err)
		byHour, err := Calculate(tbl, 1, UnitHour)
		require.NoError(t, err)
		assert.True(t, byMinute.Equal(byHour), "hourly %s: %s != %s", hourly, byMinute, byHour)
	}
}

func TestCalculateIsDeterministicAndNonNegative(t *testing.T) {
	tbl := table("4.99", "9.98", "79.84")
	for _, unit := range []Unit{UnitMinute, UnitHour, UnitOvernight} {
		for d := 1; d <= 120; d++ {
			a, err := Calculate(tbl, d, unit)
			require.NoError(t, err)
			b, _ := Calculate(tbl, d, unit)
			assert.True(t, a.Equal(b))
			assert.False(t, a.IsNegative())
		}
	}
}

func TestCalculateRejectsBadInput(t *testing.T) {
	tbl := table("5", "10", "60")

	_, err := Calculate(tbl, 0, UnitHour)
	assert.True(t, errs.IsKind(err, errs.KindValidation))

	_, err = Calculate(tbl, 2, Unit("WEEK"))
	assert.Equal(t, "INVALID_DURATION_UNIT", errs.CodeOf(err))

	_, err = Calculate(table("-1", "10", "60"), 2, UnitHour)
	assert.Equal(t, "INVALID_PRICE_TABLE", errs.CodeOf(err))
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit(" hour ")
	require.NoError(t, err)
	assert.Equal(t, UnitHour, u)

	_, err = ParseUnit("")
	assert.Error(t, err)
}

func TestEndTime(t *testing.T) {
	from := time.Date(2024, 3, 30, 22, 0, 0, 0, time.UTC)

	got, err := EndTime(from, 90, UnitMinute)
	require.NoError(t, err)
	assert.Equal(t, from.Add(90*time.Minute), got)

	got, err = EndTime(from, 3, UnitHour)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 31, 1, 0, 0, 0, time.UTC), got)

	got, err = EndTime(from, 2, UnitOvernight)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 1, 22, 0, 0, 0, time.UTC), got)
}

func TestTableFromHourly(t *testing.T) {
	tbl := TableFromHourly(decimal.RequireFromString("10"), 8)
	assert.Equal(t, "5.00", tbl.PerHalfHour.StringFixed(2))
	assert.Equal(t, "10.00", tbl.PerHour.StringFixed(2))
	assert.Equal(t, "80.00", tbl.PerOvernight.StringFixed(2))

	tbl = TableFromHourly(decimal.RequireFromString("10"), 0)
	assert.Equal(t, "80.00", tbl.PerOvernight.StringFixed(2))
}
