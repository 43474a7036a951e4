package gios

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// DirSource reads previously downloaded archives from a directory, one file
// per archive named by its id, the way the download endpoint serves them.
type DirSource struct {
	dir       string
	catalogue Catalogue
	logger    *slog.Logger
}

// NewDirSource creates a source reading <dir>/<archive id>.
func NewDirSource(dir string, catalogue Catalogue, logger *slog.Logger) *DirSource {
	return &DirSource{dir: dir, catalogue: catalogue, logger: logger}
}

// FetchRawTable reads the archive for year from disk.
func (d *DirSource) FetchRawTable(ctx context.Context, year int) (domain.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawTable{}, err
	}
	archive, err := d.catalogue.Lookup(year)
	if err != nil {
		return domain.RawTable{}, err
	}

	p := filepath.Join(d.dir, archive.ID)
	data, err := os.ReadFile(p)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read archive %d: %w", year, err)
	}
	d.logger.Debug("archive read from disk", "year", year, "path", p)

	raw, err := ExtractRawTable(data, archive)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("extract archive %d: %w", year, err)
	}
	return raw, nil
}
