package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
)

// ArchiveSource returns the raw provider workbook for one year.
type ArchiveSource interface {
	FetchRawTable(ctx context.Context, year int) (domain.RawTable, error)
}

// Assembler cleans and code-maps the archives of a set of years. Years are
// independent of each other; they are processed one at a time in ascending order.
type Assembler struct {
	source  ArchiveSource
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAssembler creates an Assembler reading from source.
func NewAssembler(source ArchiveSource, logger *slog.Logger, metrics *observability.Metrics) *Assembler {
	return &Assembler{source: source, logger: logger, metrics: metrics}
}

// Assemble fetches, cleans and maps every requested year. The mapping is
// shared read-only across years. The first failing year aborts the run.
func (a *Assembler) Assemble(ctx context.Context, years []int, mapping domain.MappingTable) (domain.Archives, error) {
	archives := make(domain.Archives, len(years))
	for _, year := range uniqueSorted(years) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		series, err := a.assembleYear(ctx, year, mapping)
		if err != nil {
			return nil, fmt.Errorf("assemble %d: %w", year, err)
		}
		archives[year] = series
	}
	return archives, nil
}

func (a *Assembler) assembleYear(ctx context.Context, year int, mapping domain.MappingTable) (domain.Series, error) {
	raw, err := a.source.FetchRawTable(ctx, year)
	if err != nil {
		return domain.Series{}, err
	}
	if raw.Year == 0 {
		raw.Year = year
	}

	cleaned, err := domain.CleanRawTable(raw)
	if err != nil {
		return domain.Series{}, err
	}

	unmapped := domain.UnmappedCodes(cleaned, mapping)
	mapped := domain.MapStationCodes(cleaned, mapping)

	label := strconv.Itoa(year)
	shifts := domain.CountShiftedMidnights(cleaned)
	a.metrics.ArchivesAssembled.Inc()
	a.metrics.ArchiveRows.WithLabelValues(label).Set(float64(mapped.Len()))
	a.metrics.MidnightShifts.WithLabelValues(label).Set(float64(shifts))
	a.metrics.UnmappedColumns.WithLabelValues(label).Set(float64(len(unmapped)))

	a.logger.Info("archive assembled",
		"year", year,
		"rows", mapped.Len(),
		"stations", len(mapped.Columns),
		"unmapped", len(unmapped),
		"midnight_shifts", shifts,
	)
	if dup := mapped.DuplicateCodes(); len(dup) > 0 {
		a.logger.Warn("columns share a station code after mapping, readings are coalesced", "year", year, "codes", dup)
	}
	if len(unmapped) > 0 {
		a.logger.Debug("station codes without legacy mapping", "year", year, "codes", unmapped)
	}
	return mapped, nil
}

func uniqueSorted(years []int) []int {
	out := slices.Clone(years)
	slices.Sort(out)
	return slices.Compact(out)
}
