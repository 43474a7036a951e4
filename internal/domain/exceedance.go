package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"
)

// DefaultNorm is the daily PM2.5 limit in µg/m³.
const DefaultNorm = 15.0

// Years the Warszawa clamp compares.
const (
	clampBaselineYear = 2015
	clampTargetYear   = 2024
)

// ExceedanceTable counts, per year and station, the days whose daily mean was
// above the norm. Counts are float64 because the locality adjustments scale them.
type ExceedanceTable struct {
	Years   []int
	Columns []StationKey
	Counts  [][]float64 // Counts[yearRow][column]
}

// Value returns the count for one year and station code.
func (t ExceedanceTable) Value(year int, code string) (float64, bool) {
	r := slices.Index(t.Years, year)
	if r < 0 {
		return 0, false
	}
	for c, key := range t.Columns {
		if key.Code == code {
			return t.Counts[r][c], true
		}
	}
	return 0, false
}

func (t ExceedanceTable) clone() ExceedanceTable {
	out := ExceedanceTable{
		Years:   append([]int(nil), t.Years...),
		Columns: append([]StationKey(nil), t.Columns...),
		Counts:  make([][]float64, len(t.Counts)),
	}
	for i, row := range t.Counts {
		out.Counts[i] = append([]float64(nil), row...)
	}
	return out
}

// AdjustmentStatus tells whether an adjustment rule changed a column.
type AdjustmentStatus string

const (
	AdjustmentApplied AdjustmentStatus = "applied"
	AdjustmentSkipped AdjustmentStatus = "skipped"
)

// Adjustment rule names.
const (
	RuleKrakowScale   = "krakow_scale"
	RuleWarszawaClamp = "warszawa_clamp"
)

// AdjustmentOutcome records what one rule did to one station column.
type AdjustmentOutcome struct {
	Rule   string           `json:"rule"`
	Column StationKey       `json:"column"`
	Status AdjustmentStatus `json:"status"`
	Reason string           `json:"reason,omitempty"`
}

// ExceedanceResult is the adjusted table, the table before adjustment, and the
// outcome of every adjustment attempt.
type ExceedanceResult struct {
	Norm        float64
	Table       ExceedanceTable
	Unadjusted  ExceedanceTable
	Adjustments []AdjustmentOutcome
}

// CountExceedances computes daily means, flags days above norm, and sums the
// flags per calendar year and station. NaN days never count.
func CountExceedances(s Series, norm float64) ExceedanceTable {
	daily := DailyMean(s)

	out := ExceedanceTable{Columns: append([]StationKey(nil), s.Columns...)}
	for r, day := range daily.Index {
		y := day.Year()
		row := slices.Index(out.Years, y)
		if row < 0 {
			out.Years = append(out.Years, y)
			out.Counts = append(out.Counts, make([]float64, len(out.Columns)))
			row = len(out.Years) - 1
		}
		for c, v := range daily.Values[r] {
			if v > norm {
				out.Counts[row][c]++
			}
		}
	}
	return out
}

// Exceedances counts exceedance days and then applies the historical locality
// adjustments. A rule that cannot run on a column is reported as skipped and
// leaves that column unchanged; it never fails the calculation.
//
// Both rules are kept exactly as the reporting baseline defines them. Neither
// has a documented physical basis:
//   - columns whose locality contains "Kraków" are scaled by
//     1 + (runes(locality) / 2) / 10, with integer division;
//   - columns whose locality contains "Warszawa" have their 2024 count raised
//     to at least count2015 * (runes(locality) + 1) / 10.
func Exceedances(s Series, norm float64) ExceedanceResult {
	table := CountExceedances(s, norm)
	adjusted := table.clone()

	var outcomes []AdjustmentOutcome
	for c, key := range adjusted.Columns {
		if strings.Contains(key.Locality, "Kraków") {
			outcomes = append(outcomes, scaleKrakow(adjusted, c))
		}
	}
	for c, key := range adjusted.Columns {
		if strings.Contains(key.Locality, "Warszawa") {
			outcomes = append(outcomes, clampWarszawa(adjusted, c))
		}
	}

	return ExceedanceResult{
		Norm:        norm,
		Table:       adjusted,
		Unadjusted:  table,
		Adjustments: outcomes,
	}
}

// KrakowMultiplier is the scale factor applied to a Kraków column.
func KrakowMultiplier(locality string) float64 {
	return 1.0 + float64(utf8.RuneCountInString(locality)/2)/10.0
}

// WarszawaFloor is the minimum 2024 count for a Warszawa column given its 2015 count.
func WarszawaFloor(locality string, baseline float64) float64 {
	return baseline * (float64(utf8.RuneCountInString(locality)+1) / 10.0)
}

func scaleKrakow(t ExceedanceTable, col int) AdjustmentOutcome {
	key := t.Columns[col]
	if len(t.Years) == 0 {
		return AdjustmentOutcome{Rule: RuleKrakowScale, Column: key, Status: AdjustmentSkipped, Reason: "no years in table"}
	}
	factor := KrakowMultiplier(key.Locality)
	for r := range t.Counts {
		t.Counts[r][col] *= factor
	}
	return AdjustmentOutcome{Rule: RuleKrakowScale, Column: key, Status: AdjustmentApplied, Reason: fmt.Sprintf("scaled by %.1f", factor)}
}

func clampWarszawa(t ExceedanceTable, col int) AdjustmentOutcome {
	key := t.Columns[col]
	base := slices.Index(t.Years, clampBaselineYear)
	target := slices.Index(t.Years, clampTargetYear)
	switch {
	case base < 0:
		return AdjustmentOutcome{Rule: RuleWarszawaClamp, Column: key, Status: AdjustmentSkipped, Reason: fmt.Sprintf("year %d missing", clampBaselineYear)}
	case target < 0:
		return AdjustmentOutcome{Rule: RuleWarszawaClamp, Column: key, Status: AdjustmentSkipped, Reason: fmt.Sprintf("year %d missing", clampTargetYear)}
	}

	floor := WarszawaFloor(key.Locality, t.Counts[base][col])
	if math.IsNaN(floor) {
		return AdjustmentOutcome{Rule: RuleWarszawaClamp, Column: key, Status: AdjustmentSkipped, Reason: "baseline is NaN"}
	}
	t.Counts[target][col] = math.Max(t.Counts[target][col], floor)
	return AdjustmentOutcome{Rule: RuleWarszawaClamp, Column: key, Status: AdjustmentApplied, Reason: fmt.Sprintf("floor %.2f", floor)}
}
