package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/air-quality-etl/internal/adapter/gios"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
	"github.com/couchcryptid/air-quality-etl/internal/pipeline"
)

func TestGenerate_RunsThroughPipeline(t *testing.T) {
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	dir := t.TempDir()
	catalogue := gios.DefaultCatalogue()
	require.NoError(t, generate(dir, catalogue, 2, 7))

	for _, y := range catalogue.Years() {
		assert.FileExists(t, filepath.Join(dir, catalogue[y].ID))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := pipeline.New(
		gios.NewDirSource(dir, catalogue, logger),
		gios.NewMetadataFile(filepath.Join(dir, "metadane.xlsx"), logger),
		nil, logger, observability.NewMetricsForTesting(), domain.DefaultNorm,
	)

	report, err := p.Run(context.Background(), catalogue.Years())
	require.NoError(t, err)

	assert.Equal(t, domain.StationIndex{
		{Code: "MpKrakAlKras", Locality: "Kraków"},
		{Code: "MzWarChrosci", Locality: "Warszawa"},
		{Code: "PmGdaLeczkow", Locality: "Gdańsk"},
		{Code: "DsWrocAlWisn", Locality: "Wrocław"},
	}, report.Stations, "legacy codes mapped, partial stations dropped")
	assert.Equal(t, 3*2*24, report.Merged.Len())
	assert.Equal(t, 3*2, report.Daily.Len())
}

func TestArchiveRows_Deterministic(t *testing.T) {
	a := archiveRows(2019, 1, rand.New(rand.NewPCG(1, 2019)))
	b := archiveRows(2019, 1, rand.New(rand.NewPCG(1, 2019)))
	assert.Equal(t, a, b)

	assert.Len(t, archiveRows(2014, 1, rand.New(rand.NewPCG(1, 2014))), 3+24)
	assert.Len(t, archiveRows(2024, 1, rand.New(rand.NewPCG(1, 2024))), 6+24)
}
