// Command validate checks GIOŚ hourly PM2.5 archives offline. Each argument is
// year=path, where path is either the .xlsx workbook or the downloaded zip
// (named by archive id or anything else). For every archive it detects the
// header layout, cleans the table, and reports rows, stations and time span.
// With -metadata it also reports legacy-code mapping and the stations common
// to all given years.
//
// Usage:
//
//	go run ./cmd/validate -metadata data/mock/metadane.xlsx \
//	  2014=data/mock/302 2019=data/mock/322 2024=data/mock/582
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/adapter/gios"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	metadata := flag.String("metadata", "", "path to the station metadata workbook (optional)")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(flag.Args(), *metadata, os.Stdout))
}

func run(args []string, metadataPath string, out io.Writer) int {
	fmt.Fprintln(out, "=== GIOŚ PM2.5 Archive Validation ===")
	fmt.Fprintln(out)

	inputs, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	schema, archives := validateSchema(out, inputs)
	phases := []*phase{schema}

	if metadataPath != "" {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		meta, err := gios.NewMetadataFile(metadataPath, logger).LoadMetadata(context.Background())
		if err != nil {
			fmt.Fprintf(out, "FATAL: %v\n", err)
			return 1
		}
		phases = append(phases, validateStations(out, archives, meta))
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-36s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

type input struct {
	year int
	path string
}

func parseArgs(args []string) ([]input, error) {
	inputs := make([]input, 0, len(args))
	for _, a := range args {
		y, p, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("%q: expected year=path", a)
		}
		year, err := strconv.Atoi(y)
		if err != nil {
			return nil, fmt.Errorf("%q: %q is not a year", a, y)
		}
		inputs = append(inputs, input{year: year, path: p})
	}
	return inputs, nil
}

// readArchive reads a workbook directly, or the catalogued workbook inside a zip.
func readArchive(in input) (domain.RawTable, error) {
	data, err := os.ReadFile(in.path)
	if err != nil {
		return domain.RawTable{}, err
	}
	if strings.EqualFold(filepath.Ext(in.path), ".xlsx") {
		return gios.ReadRawTable(bytes.NewReader(data), in.year)
	}
	archive, err := gios.DefaultCatalogue().Lookup(in.year)
	if err != nil {
		return domain.RawTable{}, err
	}
	return gios.ExtractRawTable(data, archive)
}

// ── Phase 1: Schema ──

func validateSchema(out io.Writer, inputs []input) (*phase, domain.Archives) {
	p := &phase{name: "Phase 1: Archive schema"}
	archives := make(domain.Archives, len(inputs))

	for _, in := range inputs {
		raw, err := readArchive(in)
		if err != nil {
			p.errorf("%d (%s): %v", in.year, in.path, err)
			continue
		}
		variant, err := domain.DetectSchemaVariant(raw)
		if err != nil {
			p.errorf("%d: %v", in.year, err)
			continue
		}
		series, err := domain.CleanRawTable(raw)
		if err != nil {
			p.errorf("%d: %v", in.year, err)
			continue
		}
		archives[in.year] = series

		span := "empty"
		if n := series.Len(); n > 0 {
			span = series.Index[0].Format(time.DateTime) + " .. " + series.Index[n-1].Format(time.DateTime)
		}
		fmt.Fprintf(out, "  %d: layout=%s rows=%d stations=%d midnight_shifts=%d span=%s\n",
			in.year, variant.Name, series.Len(), len(series.Columns), domain.CountShiftedMidnights(series), span)
	}
	return p, archives
}

// ── Phase 2: Stations ──

func validateStations(out io.Writer, archives domain.Archives, meta []domain.StationMetadata) *phase {
	p := &phase{name: "Phase 2: Station mapping"}
	mapping := domain.NewMappingTable(meta)

	mapped := make(domain.Archives, len(archives))
	for _, y := range archives.Years() {
		mapped[y] = domain.MapStationCodes(archives[y], mapping)
		var renamed int
		for _, c := range archives[y].Columns {
			if _, ok := mapping.Lookup(c.Code); ok {
				renamed++
			}
		}
		fmt.Fprintf(out, "  %d: %d legacy codes mapped\n", y, renamed)
	}

	idx := domain.ResolveCommonStations(mapped, meta)
	fmt.Fprintf(out, "  common stations: %d\n", len(idx))
	if len(mapped) > 1 && len(idx) == 0 {
		p.errorf("no station is present in every year %v", mapped.Years())
	}
	for _, k := range idx {
		if k.Locality == domain.UnknownLocality {
			p.errorf("station %s has no metadata row", k.Code)
		}
	}
	if _, err := domain.MergeArchives(mapped, idx); err != nil {
		p.errorf("%v", err)
	}
	return p
}
