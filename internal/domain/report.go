package domain

import (
	"fmt"
	"time"
)

// Report bundles everything the pipeline derives from one set of years.
type Report struct {
	Years       []int
	Stations    StationIndex
	Merged      Series
	Daily       Series
	Monthly     MonthlyAggregate
	Exceedance  ExceedanceResult
	GeneratedAt time.Time
}

// BuildReport derives the daily, monthly and exceedance views from a merged
// series. Every year in years must be covered by the merged series.
func BuildReport(years []int, stations StationIndex, merged Series, norm float64) (Report, error) {
	monthly, err := MonthlyMean(merged, years)
	if err != nil {
		return Report{}, fmt.Errorf("build report: %w", err)
	}

	return Report{
		Years:       append([]int(nil), years...),
		Stations:    stations,
		Merged:      merged,
		Daily:       DailyMean(merged),
		Monthly:     monthly,
		Exceedance:  Exceedances(merged, norm),
		GeneratedAt: clock.Now().UTC(),
	}, nil
}

// ExceedanceRecord is one (year, station) cell of the adjusted exceedance
// table, flattened for publishing.
type ExceedanceRecord struct {
	Year           int       `json:"year"`
	StationCode    string    `json:"station_code"`
	Locality       string    `json:"locality"`
	ExceedanceDays float64   `json:"exceedance_days"`
	Norm           float64   `json:"norm"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Key identifies the record downstream: "<code>|<year>".
func (r ExceedanceRecord) Key() string {
	return fmt.Sprintf("%s|%d", r.StationCode, r.Year)
}

// ExceedanceRecords flattens the adjusted table year by year, columns in index order.
func (r Report) ExceedanceRecords() []ExceedanceRecord {
	t := r.Exceedance.Table
	out := make([]ExceedanceRecord, 0, len(t.Years)*len(t.Columns))
	for row, y := range t.Years {
		for c, key := range t.Columns {
			out = append(out, ExceedanceRecord{
				Year:           y,
				StationCode:    key.Code,
				Locality:       key.Locality,
				ExceedanceDays: t.Counts[row][c],
				Norm:           r.Exceedance.Norm,
				GeneratedAt:    r.GeneratedAt,
			})
		}
	}
	return out
}
