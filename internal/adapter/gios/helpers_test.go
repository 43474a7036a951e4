package gios

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/air-quality-etl/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

// archiveRows builds a basic-layout sheet with hourly readings from 01:00 on
// 1 January. Timestamps are written as Excel dates.
func archiveRows(year, hours int, codes ...string) [][]any {
	header := []any{"Kod stacji"}
	indicator := []any{"Wskaźnik"}
	averaging := []any{"Czas uśredniania"}
	for _, c := range codes {
		header = append(header, c)
		indicator = append(indicator, "PM2.5")
		averaging = append(averaging, "1g")
	}
	rows := [][]any{header, indicator, averaging}

	start := time.Date(year, 1, 1, 1, 0, 0, 0, time.UTC)
	for h := 0; h < hours; h++ {
		row := []any{start.Add(time.Duration(h) * time.Hour)}
		for c := range codes {
			row = append(row, float64(10*(c+1))+0.5)
		}
		rows = append(rows, row)
	}
	return rows
}

func zipArchive(t *testing.T, file string, rows [][]any) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, file, rows))
	return buf.Bytes()
}

var testCatalogue = Catalogue{
	2014: {Year: 2014, ID: "302", File: "2014_PM2.5_1g.xlsx"},
	2019: {Year: 2019, ID: "322", File: "2019_PM25_1g.xlsx"},
}
