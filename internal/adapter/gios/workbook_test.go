package gios

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

func TestSerialDateLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whole day", "41640", "2014-01-01 00:00:00"},
		{"one in the morning", "41640.041666666664", "2014-01-01 01:00:00"},
		{"imprecise serial rounds to the second", "41640.0416666", "2014-01-01 01:00:00"},
		{"text label kept", "2019-01-01 01:00:00", "2019-01-01 01:00:00"},
		{"header label kept", "Kod stacji", "Kod stacji"},
		{"empty kept", "", ""},
		{"negative kept", "-3", "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serialDateLabel(tt.in))
		})
	}
}

func TestExtractRawTable_RoundTrip(t *testing.T) {
	archive := testCatalogue[2014]
	data := zipArchive(t, archive.File, archiveRows(2014, 24, "DsWrocAlWisn", "MpKrakowWIOSAKra6117"))

	raw, err := ExtractRawTable(data, archive)
	require.NoError(t, err)
	assert.Equal(t, 2014, raw.Year)
	require.Len(t, raw.Rows, 3+24)
	assert.Equal(t, []string{"Kod stacji", "DsWrocAlWisn", "MpKrakowWIOSAKra6117"}, raw.Rows[0])
	assert.Equal(t, "2014-01-01 01:00:00", raw.Rows[3][0])
	assert.Equal(t, "2014-01-02 00:00:00", raw.Rows[26][0])
	assert.Equal(t, "10.5", raw.Rows[3][1])

	series, err := domain.CleanRawTable(raw)
	require.NoError(t, err)
	assert.Equal(t, 24, series.Len())
	assert.Equal(t, 1, domain.CountShiftedMidnights(series))
}

func TestExtractRawTable_NestedEntry(t *testing.T) {
	archive := Archive{Year: 2019, ID: "322", File: "2019_PM25_1g.xlsx"}
	data := zipArchive(t, "2019/2019_PM25_1g.xlsx", archiveRows(2019, 2, "A"))

	raw, err := ExtractRawTable(data, archive)
	require.NoError(t, err)
	assert.Len(t, raw.Rows, 5)
}

func TestExtractRawTable_MissingWorkbook(t *testing.T) {
	data := zipArchive(t, "2019_PM10_1g.xlsx", archiveRows(2019, 1, "A"))

	_, err := ExtractRawTable(data, testCatalogue[2019])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2019_PM10_1g.xlsx")
}

func TestExtractRawTable_NotAZip(t *testing.T) {
	_, err := ExtractRawTable([]byte("<html>maintenance</html>"), testCatalogue[2019])
	require.Error(t, err)
}

func TestReadWorkbook_NotAWorkbook(t *testing.T) {
	_, err := ReadWorkbook(bytes.NewReader([]byte("plain text")))
	require.Error(t, err)
}
