package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// yearSeries builds an hourly series for one year with the given codes and
// rows hourly rows starting 1 January 01:00.
func yearSeries(year, rows int, codes ...string) Series {
	s := Series{Columns: make([]StationKey, len(codes))}
	for i, c := range codes {
		s.Columns[i] = StationKey{Code: c}
	}
	start := time.Date(year, 1, 1, 1, 0, 0, 0, time.UTC)
	for r := 0; r < rows; r++ {
		s.Index = append(s.Index, start.Add(time.Duration(r)*time.Hour))
		row := make([]float64, len(codes))
		for c := range row {
			row[c] = float64(year%100 + c)
		}
		s.Values = append(s.Values, row)
	}
	return s
}

func TestCommonStations_ExactIntersection(t *testing.T) {
	archives := Archives{
		2024: yearSeries(2024, 2, "D", "B", "A", "E"),
		2014: yearSeries(2014, 2, "C", "A", "B", "D"),
		2019: yearSeries(2019, 2, "B", "D", "A", "F"),
	}

	common := CommonStations(archives)
	assert.Equal(t, []string{"A", "B", "D"}, common, "order follows the earliest year")

	for _, y := range archives.Years() {
		assert.Subset(t, archives[y].Codes(), common)
	}

	again := CommonStations(archives)
	if diff := cmp.Diff(common, again); diff != "" {
		t.Fatalf("unstable order (-first +second):\n%s", diff)
	}
}

func TestCommonStations_Degenerate(t *testing.T) {
	assert.Empty(t, CommonStations(Archives{}))

	disjoint := Archives{
		2014: yearSeries(2014, 1, "A"),
		2019: yearSeries(2019, 1, "B"),
	}
	assert.Empty(t, CommonStations(disjoint))
}

func TestCommonStations_DuplicateCodeOnce(t *testing.T) {
	archives := Archives{
		2014: yearSeries(2014, 1, "A", "A", "B"),
		2019: yearSeries(2019, 1, "A", "B"),
	}
	assert.Equal(t, []string{"A", "B"}, CommonStations(archives))
}

func TestResolveCommonStations(t *testing.T) {
	archives := Archives{
		2014: yearSeries(2014, 1, "MpKrakAlKras", "MzWarChrosci", "XxNoMeta"),
		2024: yearSeries(2024, 1, "XxNoMeta", "MzWarChrosci", "MpKrakAlKras"),
	}
	metadata := []StationMetadata{
		{Code: "MzWarChrosci", Locality: "Warszawa"},
		{Code: "MpKrakAlKras", Locality: "Kraków"},
		{Code: "MpKrakAlKras", Locality: "Kraków (duplicate)"},
		{Code: "PmGdaLeczkow", Locality: "Gdańsk"},
	}

	idx := ResolveCommonStations(archives, metadata)

	want := StationIndex{
		{Code: "MpKrakAlKras", Locality: "Kraków"},
		{Code: "MzWarChrosci", Locality: "Warszawa"},
		{Code: "XxNoMeta", Locality: UnknownLocality},
	}
	assert.Equal(t, want, idx)
	assert.Equal(t, []string{"MpKrakAlKras", "MzWarChrosci", "XxNoMeta"}, idx.Codes())
}

func TestMergeArchives(t *testing.T) {
	archives := Archives{
		2019: yearSeries(2019, 3, "B", "A", "Z"),
		2014: yearSeries(2014, 5, "A", "B", "C"),
	}
	idx := ResolveCommonStations(archives, []StationMetadata{{Code: "A", Locality: "Alpha"}})

	merged, err := MergeArchives(archives, idx)
	require.NoError(t, err)

	assert.Equal(t, 5+3, merged.Len(), "row count is the sum of yearly rows")
	assert.Len(t, merged.Columns, len(idx))
	assert.Equal(t, []StationKey{{Code: "A", Locality: "Alpha"}, {Code: "B", Locality: UnknownLocality}}, merged.Columns)

	assert.Equal(t, 2014, merged.Index[0].Year(), "years stacked in ascending order")
	assert.Equal(t, 2019, merged.Index[5].Year())
	// 2019 has B before A; values must follow the index order A, B.
	assert.Equal(t, []float64{20, 19}, merged.Values[5])
}

func TestMergeArchives_CoalescesDuplicateColumns(t *testing.T) {
	jan := time.Date(2019, 1, 10, 1, 0, 0, 0, time.UTC)
	jun := time.Date(2019, 6, 10, 1, 0, 0, 0, time.UTC)
	raw := Series{
		Index:   []time.Time{jan, jun, jun.Add(time.Hour)},
		Columns: []StationKey{{Code: "OldA"}, {Code: "NewA"}},
		Values: [][]float64{
			{50, math.NaN()},
			{math.NaN(), 70},
			{math.NaN(), math.NaN()},
		},
	}
	var mapping MappingTable
	mapping.Add("OldA", "NewA")

	mapped := MapStationCodes(raw, mapping)
	assert.Equal(t, []string{"NewA"}, mapped.DuplicateCodes())

	archives := Archives{2019: mapped}
	idx := ResolveCommonStations(archives, nil)
	require.Equal(t, []string{"NewA"}, idx.Codes())

	merged, err := MergeArchives(archives, idx)
	require.NoError(t, err)
	require.Len(t, merged.Columns, 1)
	assert.Equal(t, 50.0, merged.Values[0][0])
	assert.Equal(t, 70.0, merged.Values[1][0], "reading from the second column is kept")
	assert.True(t, math.IsNaN(merged.Values[2][0]))
}

func TestMergeArchives_FirstColumnWinsOnConflict(t *testing.T) {
	s := yearSeries(2014, 1, "A", "A")
	s.Values[0] = []float64{3, 9}

	merged, err := MergeArchives(Archives{2014: s}, StationIndex{{Code: "A"}})
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, merged.Values[0])
}

func TestMergeArchives_EmptyCommonSet(t *testing.T) {
	archives := Archives{
		2014: yearSeries(2014, 2, "A"),
		2019: yearSeries(2019, 4, "B"),
	}
	idx := ResolveCommonStations(archives, nil)
	require.Empty(t, idx)

	merged, err := MergeArchives(archives, idx)
	require.NoError(t, err)
	assert.Equal(t, 6, merged.Len())
	assert.Empty(t, merged.Columns)

	daily := DailyMean(merged)
	assert.Equal(t, 2, daily.Len(), "one day per year")
	assert.Empty(t, CountExceedances(merged, DefaultNorm).Columns)
}

func TestMergeArchives_SchemaMismatch(t *testing.T) {
	archives := Archives{
		2014: yearSeries(2014, 1, "A", "B"),
		2019: yearSeries(2019, 1, "A"),
	}
	idx := StationIndex{{Code: "A"}, {Code: "B"}}

	_, err := MergeArchives(archives, idx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	var mismatch *SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2019, mismatch.Year)
	assert.Equal(t, "B", mismatch.Code)
}

func TestStationKey_Compare(t *testing.T) {
	a := StationKey{Code: "A", Locality: "Zakopane"}
	b := StationKey{Code: "B", Locality: "Augustów"}
	assert.Negative(t, a.Compare(b), "code decides first")
	assert.Positive(t, StationKey{Code: "A", Locality: "b"}.Compare(StationKey{Code: "A", Locality: "a"}))
	assert.Zero(t, a.Compare(a))
	assert.Equal(t, "A (Zakopane)", a.String())
	assert.Equal(t, "A", StationKey{Code: "A"}.String())
}
