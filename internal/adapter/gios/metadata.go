package gios

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// Metadata workbook columns. Legacy codes sit in the fifth column whatever
// its header says.
const (
	columnStationCode = "Kod stacji"
	columnLocality    = "Miejscowość"
	legacyColumnIndex = 4
)

// MetadataFile loads station metadata from the GIOŚ metadane workbook.
type MetadataFile struct {
	path   string
	logger *slog.Logger
}

// NewMetadataFile creates a loader for the workbook at path.
func NewMetadataFile(path string, logger *slog.Logger) *MetadataFile {
	return &MetadataFile{path: path, logger: logger}
}

// LoadMetadata reads one StationMetadata per data row.
func (m *MetadataFile) LoadMetadata(ctx context.Context) ([]domain.StationMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(m.path)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()

	rows, err := ReadWorkbook(f)
	if err != nil {
		return nil, fmt.Errorf("metadata %s: %w", m.path, err)
	}

	stations, err := ParseMetadataRows(rows)
	if err != nil {
		return nil, fmt.Errorf("metadata %s: %w", m.path, err)
	}
	m.logger.Debug("station metadata read", "path", m.path, "rows", len(stations))
	return stations, nil
}

// ParseMetadataRows turns workbook rows into metadata. The first row is the
// header; rows without a station code are skipped.
func ParseMetadataRows(rows [][]string) ([]domain.StationMetadata, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty metadata sheet")
	}

	codeCol, localityCol := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case columnStationCode:
			codeCol = i
		case columnLocality:
			localityCol = i
		}
	}
	if codeCol < 0 || localityCol < 0 {
		return nil, fmt.Errorf("header must name %q and %q", columnStationCode, columnLocality)
	}

	var out []domain.StationMetadata
	for _, row := range rows[1:] {
		code := cell(row, codeCol)
		if code == "" {
			continue
		}
		out = append(out, domain.StationMetadata{
			Code:        code,
			Locality:    cell(row, localityCol),
			LegacyCodes: cell(row, legacyColumnIndex),
		})
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
