package domain

import (
	"math"
	"slices"
	"strings"
)

// Archives holds one cleaned, code-mapped series per year.
type Archives map[int]Series

// Years returns the archive years in ascending order. Every cross-year
// operation walks the archives in this order.
func (a Archives) Years() []int {
	years := make([]int, 0, len(a))
	for y := range a {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// StationIndex is the ordered set of stations present in every year, each
// paired with its locality.
type StationIndex []StationKey

// Codes returns the station codes in index order.
func (idx StationIndex) Codes() []string {
	codes := make([]string, len(idx))
	for i, k := range idx {
		codes[i] = k.Code
	}
	return codes
}

// CommonStations intersects the column codes of every year. The result keeps
// the column order of the earliest year; duplicate codes appear once.
func CommonStations(archives Archives) []string {
	years := archives.Years()
	if len(years) == 0 {
		return nil
	}

	common := make(map[string]struct{})
	for _, code := range archives[years[0]].Codes() {
		common[code] = struct{}{}
	}
	for _, y := range years[1:] {
		present := make(map[string]struct{})
		for _, code := range archives[y].Codes() {
			present[code] = struct{}{}
		}
		for code := range common {
			if _, ok := present[code]; !ok {
				delete(common, code)
			}
		}
	}

	out := make([]string, 0, len(common))
	for _, code := range archives[years[0]].Codes() {
		if _, ok := common[code]; ok {
			out = append(out, code)
			delete(common, code)
		}
	}
	return out
}

// ResolveCommonStations builds the two-level identity for every common
// station. The first metadata row for a code supplies its locality; stations
// without metadata get UnknownLocality.
func ResolveCommonStations(archives Archives, metadata []StationMetadata) StationIndex {
	common := CommonStations(archives)

	wanted := make(map[string]struct{}, len(common))
	for _, code := range common {
		wanted[code] = struct{}{}
	}
	locality := make(map[string]string, len(common))
	for _, row := range metadata {
		code := strings.TrimSpace(row.Code)
		if _, ok := wanted[code]; !ok {
			continue
		}
		if _, seen := locality[code]; seen {
			continue
		}
		locality[code] = strings.TrimSpace(row.Locality)
	}

	idx := make(StationIndex, len(common))
	for i, code := range common {
		name, ok := locality[code]
		if !ok {
			name = UnknownLocality
		}
		idx[i] = StationKey{Code: code, Locality: name}
	}
	return idx
}

// MergeArchives restricts every year to the common stations, relabels the
// columns with the two-level identity and stacks the years in ascending order.
// Columns of one year sharing a code (a legacy and a current column of the
// same station) are coalesced row by row, the first non-NaN value winning.
// A year missing one of the indexed codes fails with SchemaMismatchError.
func MergeArchives(archives Archives, idx StationIndex) (Series, error) {
	merged := Series{Columns: append([]StationKey(nil), idx...)}

	for _, y := range archives.Years() {
		s := archives[y]
		cols := make([][]int, len(idx))
		for i, key := range idx {
			c := s.ColumnIndexes(key.Code)
			if len(c) == 0 {
				return Series{}, &SchemaMismatchError{Year: y, Code: key.Code}
			}
			cols[i] = c
		}

		for r, ts := range s.Index {
			row := make([]float64, len(cols))
			for i, c := range cols {
				row[i] = coalesce(s.Values[r], c)
			}
			merged.Index = append(merged.Index, ts)
			merged.Values = append(merged.Values, row)
		}
	}
	return merged, nil
}

// coalesce returns the first non-NaN value among the given columns of a row.
func coalesce(row []float64, cols []int) float64 {
	for _, c := range cols {
		if !math.IsNaN(row[c]) {
			return row[c]
		}
	}
	return math.NaN()
}
