package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
)

// MetadataSource returns the station metadata rows (code, locality, legacy codes).
type MetadataSource interface {
	LoadMetadata(ctx context.Context) ([]domain.StationMetadata, error)
}

// ReportLoader publishes a finished report and returns how many records it wrote.
type ReportLoader interface {
	LoadReport(ctx context.Context, report domain.Report) (int, error)
}

// Pipeline runs assemble → resolve → merge → aggregate → load for a set of years.
type Pipeline struct {
	assembler *Assembler
	metadata  MetadataSource
	loader    ReportLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	norm      float64

	ready atomic.Bool
	last  atomic.Pointer[domain.Report]
}

// New creates a Pipeline. A nil loader skips publishing.
func New(source ArchiveSource, metadata MetadataSource, loader ReportLoader, logger *slog.Logger, metrics *observability.Metrics, norm float64) *Pipeline {
	return &Pipeline{
		assembler: NewAssembler(source, logger, metrics),
		metadata:  metadata,
		loader:    loader,
		logger:    logger,
		metrics:   metrics,
		norm:      norm,
	}
}

// Ready reports whether a run has completed successfully.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.Ready() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// LastReport returns the report of the most recent successful run.
func (p *Pipeline) LastReport() (domain.Report, bool) {
	r := p.last.Load()
	if r == nil {
		return domain.Report{}, false
	}
	return *r, true
}

// Run builds the report for years and hands it to the loader.
func (p *Pipeline) Run(ctx context.Context, years []int) (domain.Report, error) {
	start := time.Now()
	p.logger.Info("pipeline started", "years", years, "norm", p.norm)

	report, err := p.run(ctx, years)
	if err != nil {
		p.metrics.PipelineRuns.WithLabelValues("error").Inc()
		return domain.Report{}, err
	}

	p.metrics.PipelineRuns.WithLabelValues("success").Inc()
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.last.Store(&report)
	p.ready.Store(true)
	p.logger.Info("pipeline finished",
		"years", report.Years,
		"stations", len(report.Stations),
		"rows", report.Merged.Len(),
		"duration", time.Since(start),
	)
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, years []int) (domain.Report, error) {
	if len(years) == 0 {
		return domain.Report{}, errors.New("no years requested")
	}

	metadata, err := p.metadata.LoadMetadata(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("load metadata: %w", err)
	}
	mapping := domain.NewMappingTable(metadata)
	p.logger.Info("station metadata loaded", "stations", len(metadata), "legacy_aliases", mapping.Len())

	archives, err := p.assembler.Assemble(ctx, years, mapping)
	if err != nil {
		return domain.Report{}, err
	}

	stations := domain.ResolveCommonStations(archives, metadata)
	p.metrics.CommonStations.Set(float64(len(stations)))
	if len(stations) == 0 {
		p.logger.Warn("no station is present in every year", "years", archives.Years())
	}

	merged, err := domain.MergeArchives(archives, stations)
	if err != nil {
		return domain.Report{}, fmt.Errorf("merge archives: %w", err)
	}
	p.metrics.MergedRows.Set(float64(merged.Len()))

	report, err := domain.BuildReport(p.yearsWithRows(archives), stations, merged, p.norm)
	if err != nil {
		return domain.Report{}, err
	}
	p.recordAdjustments(report.Exceedance.Adjustments)

	if p.loader != nil {
		n, err := p.loader.LoadReport(ctx, report)
		if err != nil {
			return domain.Report{}, fmt.Errorf("load report: %w", err)
		}
		p.metrics.RecordsPublished.Add(float64(n))
	}
	return report, nil
}

// yearsWithRows drops years whose archive cleaned to no observations, so a
// header-only workbook does not fail the monthly view of the other years.
func (p *Pipeline) yearsWithRows(archives domain.Archives) []int {
	var years []int
	for _, y := range archives.Years() {
		if archives[y].Len() == 0 {
			p.logger.Warn("archive has no observations, left out of the report years", "year", y)
			continue
		}
		years = append(years, y)
	}
	return years
}

func (p *Pipeline) recordAdjustments(outcomes []domain.AdjustmentOutcome) {
	for _, o := range outcomes {
		p.metrics.AdjustmentOutcomes.WithLabelValues(o.Rule, string(o.Status)).Inc()
		if o.Status == domain.AdjustmentSkipped {
			p.logger.Warn("exceedance adjustment skipped",
				"rule", o.Rule,
				"station", o.Column.Code,
				"locality", o.Column.Locality,
				"reason", o.Reason,
			)
			continue
		}
		p.logger.Debug("exceedance adjustment applied",
			"rule", o.Rule,
			"station", o.Column.Code,
			"detail", o.Reason,
		)
	}
}
