package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// UnknownLocality is assigned to a common station that has no metadata row.
const UnknownLocality = "Unknown"

// StationKey is the two-level station identity: canonical code plus locality.
// Cleaned (pre-merge) series carry only the code; Locality is empty there.
type StationKey struct {
	Code     string `json:"code"`
	Locality string `json:"locality,omitempty"`
}

// Compare orders keys lexicographically by code, then by locality.
func (k StationKey) Compare(other StationKey) int {
	if c := strings.Compare(k.Code, other.Code); c != 0 {
		return c
	}
	return strings.Compare(k.Locality, other.Locality)
}

func (k StationKey) String() string {
	if k.Locality == "" {
		return k.Code
	}
	return k.Code + " (" + k.Locality + ")"
}

// Series is a time-indexed table of hourly (or daily) PM2.5 concentrations.
// Values is row-major: Values[row][column]. Missing observations are NaN.
type Series struct {
	Index   []time.Time
	Columns []StationKey
	Values  [][]float64
}

// Len returns the number of rows.
func (s Series) Len() int { return len(s.Index) }

// Codes returns the station codes of the columns, in column order.
func (s Series) Codes() []string {
	codes := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		codes[i] = c.Code
	}
	return codes
}

// ColumnIndexes returns the positions of every column with the given code.
// After code mapping one station can own several columns.
func (s Series) ColumnIndexes(code string) []int {
	var out []int
	for i, c := range s.Columns {
		if c.Code == code {
			out = append(out, i)
		}
	}
	return out
}

// DuplicateCodes lists codes held by more than one column, in column order.
func (s Series) DuplicateCodes() []string {
	seen := make(map[string]int, len(s.Columns))
	var out []string
	for _, c := range s.Columns {
		seen[c.Code]++
		if seen[c.Code] == 2 {
			out = append(out, c.Code)
		}
	}
	return out
}

// Clone returns a deep copy so transforms never share backing arrays with their input.
func (s Series) Clone() Series {
	out := Series{
		Index:   append([]time.Time(nil), s.Index...),
		Columns: append([]StationKey(nil), s.Columns...),
		Values:  make([][]float64, len(s.Values)),
	}
	for i, row := range s.Values {
		out.Values[i] = append([]float64(nil), row...)
	}
	return out
}

// RawTable is one provider workbook as a grid of cell strings. The first
// column holds the row label (header name or timestamp), the remaining
// columns hold one station each.
type RawTable struct {
	Year int
	Rows [][]string
}

// label returns the trimmed first cell of row i, or "" for an empty row.
func (t RawTable) label(i int) string {
	if len(t.Rows[i]) == 0 {
		return ""
	}
	return strings.TrimSpace(t.Rows[i][0])
}

// StationMetadata is one row of the provider's station metadata workbook.
type StationMetadata struct {
	Code        string
	Locality    string
	LegacyCodes string // comma-joined legacy codes, may be empty
}

// YearMonth labels one row of a monthly aggregate.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// MonthlyAggregate holds per-station means indexed by ("Year", "Month").
type MonthlyAggregate struct {
	Index   []YearMonth
	Columns []StationKey
	Values  [][]float64
}

// Value looks up the mean for one month and station code.
func (m MonthlyAggregate) Value(ym YearMonth, code string) (float64, bool) {
	col := -1
	for i, c := range m.Columns {
		if c.Code == code {
			col = i
			break
		}
	}
	if col < 0 {
		return math.NaN(), false
	}
	for r, idx := range m.Index {
		if idx == ym {
			return m.Values[r][col], true
		}
	}
	return math.NaN(), false
}
