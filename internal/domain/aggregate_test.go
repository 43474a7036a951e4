package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStations = []StationKey{
	{Code: "DsWrocAlWisn", Locality: "Wrocław"},
	{Code: "PmGdaLeczkow", Locality: "Gdańsk"},
}

type sample struct {
	ts     time.Time
	values []float64
}

func at(ts time.Time, values ...float64) sample {
	return sample{ts: ts, values: values}
}

func seriesOf(cols []StationKey, rows ...sample) Series {
	s := Series{Columns: cols}
	for _, r := range rows {
		s.Index = append(s.Index, r.ts)
		s.Values = append(s.Values, r.values)
	}
	return s
}

func TestDailyMean(t *testing.T) {
	day := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	s := seriesOf(testStations,
		at(day.Add(1*time.Hour), 10, math.NaN()),
		at(day.Add(2*time.Hour), 20, math.NaN()),
		// midnight-shifted reading closes 1 June
		at(day.Add(24*time.Hour-time.Second), 30, math.NaN()),
		at(day.Add(25*time.Hour), 4, 8),
	)

	daily := DailyMean(s)

	require.Equal(t, 2, daily.Len())
	assert.Equal(t, day, daily.Index[0])
	assert.Equal(t, day.AddDate(0, 0, 1), daily.Index[1])
	assert.Equal(t, testStations, daily.Columns)

	assert.InDelta(t, 20.0, daily.Values[0][0], 1e-9)
	assert.True(t, math.IsNaN(daily.Values[0][1]), "day without readings is NaN")
	assert.InDelta(t, 4.0, daily.Values[1][0], 1e-9)
	assert.InDelta(t, 8.0, daily.Values[1][1], 1e-9)
}

func TestDailyMean_PartialCoverage(t *testing.T) {
	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	s := seriesOf(testStations[:1],
		at(day.Add(1*time.Hour), 9),
		at(day.Add(2*time.Hour), math.NaN()),
		at(day.Add(3*time.Hour), 3),
	)

	daily := DailyMean(s)
	assert.InDelta(t, 6.0, daily.Values[0][0], 1e-9, "mean over present hours only")
}

func TestDailyMean_Idempotent(t *testing.T) {
	start := time.Date(2014, 12, 30, 1, 0, 0, 0, time.UTC)
	var rows []sample
	for h := 0; h < 96; h++ {
		rows = append(rows, at(start.Add(time.Duration(h)*time.Hour), float64(h%7), float64(h%5)))
	}
	s := seriesOf(testStations, rows...)

	once := DailyMean(s)
	twice := DailyMean(once)
	assert.Equal(t, once, twice)
}

func TestDailyMean_DoesNotModifyInput(t *testing.T) {
	s := seriesOf(testStations, at(time.Date(2014, 1, 1, 5, 0, 0, 0, time.UTC), 1, 2))
	before := s.Clone()
	_ = DailyMean(s)
	assert.Equal(t, before, s)
}

func TestMonthlyMean(t *testing.T) {
	s := seriesOf(testStations,
		at(time.Date(2014, 1, 1, 1, 0, 0, 0, time.UTC), 10, 1),
		at(time.Date(2014, 1, 20, 1, 0, 0, 0, time.UTC), 20, 3),
		at(time.Date(2014, 2, 2, 1, 0, 0, 0, time.UTC), 5, 5),
		at(time.Date(2019, 3, 1, 1, 0, 0, 0, time.UTC), 7, 7),
		at(time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC), 8, 8),
	)

	monthly, err := MonthlyMean(s, []int{2024, 2014})
	require.NoError(t, err)

	assert.Equal(t, []YearMonth{
		{Year: 2024, Month: time.March},
		{Year: 2014, Month: time.January},
		{Year: 2014, Month: time.February},
	}, monthly.Index, "rows follow the requested year order")
	assert.Equal(t, testStations, monthly.Columns)

	v, ok := monthly.Value(YearMonth{Year: 2014, Month: time.January}, "DsWrocAlWisn")
	require.True(t, ok)
	assert.InDelta(t, 15.0, v, 1e-9)

	_, ok = monthly.Value(YearMonth{Year: 2019, Month: time.March}, "DsWrocAlWisn")
	assert.False(t, ok, "2019 was not requested")
	assert.Equal(t, "2014-01", monthly.Index[1].String())
}

func TestMonthlyMean_MissingYear(t *testing.T) {
	s := seriesOf(testStations, at(time.Date(2014, 1, 1, 1, 0, 0, 0, time.UTC), 1, 1))

	_, err := MonthlyMean(s, []int{2014, 2015})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrYearNotFound)
	assert.Contains(t, err.Error(), "2015")
}
