package gios

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownArchiveYear is returned for a year the catalogue has no archive for.
var ErrUnknownArchiveYear = errors.New("unknown archive year")

// Archive identifies one yearly GIOŚ download: the file id served by the
// archive endpoint and the workbook inside the zip holding hourly PM2.5.
type Archive struct {
	Year int
	ID   string
	File string
}

// Catalogue maps a year to its archive.
type Catalogue map[int]Archive

// DefaultCatalogue lists the archives used by the PM2.5 report.
func DefaultCatalogue() Catalogue {
	return Catalogue{
		2014: {Year: 2014, ID: "302", File: "2014_PM2.5_1g.xlsx"},
		2019: {Year: 2019, ID: "322", File: "2019_PM25_1g.xlsx"},
		2024: {Year: 2024, ID: "582", File: "2024_PM25_1g.xlsx"},
	}
}

// NewCatalogue joins archive ids and workbook names by year. Every year must
// have both.
func NewCatalogue(ids, files map[int]string) (Catalogue, error) {
	c := make(Catalogue, len(ids))
	for year, id := range ids {
		file, ok := files[year]
		if !ok {
			return nil, fmt.Errorf("archive %d: no workbook name", year)
		}
		c[year] = Archive{Year: year, ID: id, File: file}
	}
	for year := range files {
		if _, ok := ids[year]; !ok {
			return nil, fmt.Errorf("archive %d: no archive id", year)
		}
	}
	return c, nil
}

// Lookup returns the archive for year.
func (c Catalogue) Lookup(year int) (Archive, error) {
	a, ok := c[year]
	if !ok {
		return Archive{}, fmt.Errorf("%w: %d", ErrUnknownArchiveYear, year)
	}
	return a, nil
}

// Years returns the catalogued years in ascending order.
func (c Catalogue) Years() []int {
	years := make([]int, 0, len(c))
	for y := range c {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}
