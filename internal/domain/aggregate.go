package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func compareDays(a, b dayKey) int {
	if c := cmp.Compare(a.year, b.year); c != 0 {
		return c
	}
	if c := cmp.Compare(a.month, b.month); c != 0 {
		return c
	}
	return cmp.Compare(a.day, b.day)
}

func compareMonths(a, b YearMonth) int {
	if c := cmp.Compare(a.Year, b.Year); c != 0 {
		return c
	}
	return cmp.Compare(a.Month, b.Month)
}

// DailyMean averages each station per calendar day. The day comes from the
// timestamp's date, so a midnight-shifted reading counts toward the day it
// closes. Hours without a value are left out of the mean; a day with no value
// at all is NaN. The result is indexed by UTC midnights.
func DailyMean(s Series) Series {
	keys, values := groupMeans(s, func(t time.Time) dayKey {
		y, m, d := t.Date()
		return dayKey{year: y, month: m, day: d}
	}, compareDays)

	out := Series{
		Index:   make([]time.Time, len(keys)),
		Columns: append([]StationKey(nil), s.Columns...),
		Values:  values,
	}
	for i, k := range keys {
		out.Index[i] = time.Date(k.year, k.month, k.day, 0, 0, 0, 0, time.UTC)
	}
	return out
}

// MonthlyMean averages each station per calendar month and keeps the rows of
// the requested years, in the order the years are given. Asking for a year the
// series does not cover fails with ErrYearNotFound.
func MonthlyMean(s Series, years []int) (MonthlyAggregate, error) {
	keys, values := groupMeans(s, func(t time.Time) YearMonth {
		return YearMonth{Year: t.Year(), Month: t.Month()}
	}, compareMonths)

	out := MonthlyAggregate{Columns: append([]StationKey(nil), s.Columns...)}
	for _, y := range years {
		found := false
		for i, k := range keys {
			if k.Year != y {
				continue
			}
			found = true
			out.Index = append(out.Index, k)
			out.Values = append(out.Values, values[i])
		}
		if !found {
			return MonthlyAggregate{}, fmt.Errorf("monthly mean: %w: %d", ErrYearNotFound, y)
		}
	}
	return out, nil
}

// groupMeans buckets rows by key and averages every column over its non-NaN
// values. Keys come back sorted.
func groupMeans[K comparable](s Series, key func(time.Time) K, compare func(a, b K) int) ([]K, [][]float64) {
	width := len(s.Columns)
	buckets := make(map[K][][]float64)
	var keys []K

	for r, ts := range s.Index {
		k := key(ts)
		cols, ok := buckets[k]
		if !ok {
			cols = make([][]float64, width)
			keys = append(keys, k)
		}
		for c := 0; c < width; c++ {
			if v := s.Values[r][c]; !math.IsNaN(v) {
				cols[c] = append(cols[c], v)
			}
		}
		buckets[k] = cols
	}

	slices.SortFunc(keys, compare)

	values := make([][]float64, len(keys))
	for i, k := range keys {
		row := make([]float64, width)
		for c, observed := range buckets[k] {
			if len(observed) == 0 {
				row[c] = math.NaN()
				continue
			}
			row[c] = stat.Mean(observed, nil)
		}
		values[i] = row
	}
	return keys, values
}
