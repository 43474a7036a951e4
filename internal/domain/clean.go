package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SchemaVariant is one known header layout of a GIOŚ hourly archive. A variant
// matches when every marker row and every droppable row is present.
type SchemaVariant struct {
	Name    string
	Markers []string
	Drop    []string
}

// Header row labels used by the provider workbooks.
const (
	rowIndicator     = "Wskaźnik"
	rowPositionCode  = "Kod stanowiska"
	rowAveragingTime = "Czas uśredniania"
	rowUnit          = "Jednostka"
	rowNumber        = "Nr"
)

// SchemaVariants lists known layouts, most specific first. A new provider
// vintage gets a new entry here.
var SchemaVariants = []SchemaVariant{
	{
		Name:    "extended",
		Markers: []string{rowPositionCode, rowUnit, rowNumber},
		Drop:    []string{rowIndicator, rowPositionCode, rowAveragingTime, rowUnit, rowNumber},
	},
	{
		Name:    "basic",
		Markers: []string{rowIndicator, rowAveragingTime},
		Drop:    []string{rowIndicator, rowAveragingTime},
	},
}

// timestampLayouts are the row-label formats accepted for observations.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02.01.2006 15:04",
	"2006-01-02",
}

// DetectSchemaVariant picks the header layout of a raw table.
func DetectSchemaVariant(raw RawTable) (SchemaVariant, error) {
	labels := make(map[string]struct{}, len(raw.Rows))
	for i := range raw.Rows {
		labels[raw.label(i)] = struct{}{}
	}

	for _, v := range SchemaVariants {
		if containsAll(labels, v.Markers) && containsAll(labels, v.Drop) {
			return v, nil
		}
	}
	return SchemaVariant{}, &MalformedArchiveError{Year: raw.Year, Reason: "header rows match no known layout"}
}

// CleanRawTable turns a provider workbook into an hourly series keyed by raw
// station code. Header rows are dropped according to the detected variant, the
// first remaining row becomes the column header, and observations labelled at
// exactly midnight are moved back one second into the day they close.
func CleanRawTable(raw RawTable) (Series, error) {
	variant, err := DetectSchemaVariant(raw)
	if err != nil {
		return Series{}, err
	}

	drop := make(map[string]struct{}, len(variant.Drop))
	for _, l := range variant.Drop {
		drop[l] = struct{}{}
	}

	var (
		header []string
		series Series
	)
	for i, row := range raw.Rows {
		label := raw.label(i)
		if label == "" {
			continue
		}
		if _, ok := drop[label]; ok {
			continue
		}

		if header == nil {
			header = make([]string, 0, len(row))
			for _, cell := range row[1:] {
				header = append(header, strings.TrimSpace(cell))
			}
			series.Columns = make([]StationKey, len(header))
			for c, code := range header {
				series.Columns[c] = StationKey{Code: code}
			}
			continue
		}

		ts, err := parseTimestamp(label)
		if err != nil {
			return Series{}, &MalformedArchiveError{Year: raw.Year, Reason: fmt.Sprintf("row %d: %v", i+1, err)}
		}
		series.Index = append(series.Index, shiftMidnight(ts))
		series.Values = append(series.Values, parseRow(row, len(header)))
	}

	if header == nil {
		return Series{}, &MalformedArchiveError{Year: raw.Year, Reason: "no station code row"}
	}

	for i := 1; i < len(series.Index); i++ {
		if !series.Index[i].After(series.Index[i-1]) {
			return Series{}, &MalformedArchiveError{
				Year:   raw.Year,
				Reason: fmt.Sprintf("timestamp %s does not follow %s", series.Index[i].Format(time.DateTime), series.Index[i-1].Format(time.DateTime)),
			}
		}
	}

	return series, nil
}

// IsMidnight reports whether t sits exactly on 00:00:00.
func IsMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// shiftMidnight moves an end-of-hour label at midnight back into the previous day.
func shiftMidnight(t time.Time) time.Time {
	if IsMidnight(t) {
		return t.Add(-time.Second)
	}
	return t
}

func parseTimestamp(label string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, label, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", label)
}

// parseRow reads width values after the label cell. Empty or non-numeric
// cells become NaN.
func parseRow(row []string, width int) []float64 {
	values := make([]float64, width)
	for c := range values {
		values[c] = math.NaN()
		if c+1 >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[c+1])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.Replace(cell, ",", ".", 1), 64)
		if err != nil {
			continue
		}
		values[c] = v
	}
	return values
}

func containsAll(set map[string]struct{}, keys []string) bool {
	for _, k := range keys {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}

// CountShiftedMidnights counts rows sitting one second before midnight, i.e.
// the readings CleanRawTable moved back into the day they close.
func CountShiftedMidnights(s Series) int {
	n := 0
	for _, ts := range s.Index {
		if IsMidnight(ts.Add(time.Second)) {
			n++
		}
	}
	return n
}
