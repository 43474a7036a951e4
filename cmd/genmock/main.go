// Command genmock writes deterministic mock GIOŚ archives and a station
// metadata workbook so the ETL job and the validator can run offline.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -days 31
//	GIOS_ARCHIVE_DIR=data/mock GIOS_METADATA_PATH=data/mock/metadane.xlsx go run ./cmd/etl
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/adapter/gios"
)

// mockStation is one station in the mock network. Legacy is the code the
// station used in archives up to legacyUntil.
type mockStation struct {
	code        string
	locality    string
	legacy      string
	legacyUntil int
	from, to    int // years the station reports in
	base        float64
}

var stations = []mockStation{
	{code: "MpKrakAlKras", locality: "Kraków", legacy: "MpKrakowWIOSAKra6117", legacyUntil: 2015, from: 2000, to: 2100, base: 38},
	{code: "MzWarChrosci", locality: "Warszawa", legacy: "MzWarszChrosc", legacyUntil: 2016, from: 2000, to: 2100, base: 22},
	{code: "PmGdaLeczkow", locality: "Gdańsk", legacy: "PmGdaLeczk08", legacyUntil: 2014, from: 2000, to: 2100, base: 14},
	{code: "DsWrocAlWisn", locality: "Wrocław", from: 2000, to: 2100, base: 24},
	{code: "SlKatoKossut", locality: "Katowice", from: 2000, to: 2020, base: 30},
	{code: "LuZielKrotka", locality: "Zielona Góra", from: 2018, to: 2100, base: 16},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock", "output directory")
	days := flag.Int("days", 365, "days of hourly readings per year")
	seed := flag.Uint64("seed", 2024, "random seed")
	flag.Parse()

	if *days < 1 || *days > 366 {
		flag.Usage()
		return fmt.Errorf("-days must be 1-366")
	}
	return generate(*out, gios.DefaultCatalogue(), *days, *seed)
}

func generate(dir string, catalogue gios.Catalogue, days int, seed uint64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, year := range catalogue.Years() {
		archive := catalogue[year]
		rows := archiveRows(year, days, rand.New(rand.NewPCG(seed, uint64(year))))

		path := filepath.Join(dir, archive.ID)
		if err := writeFile(path, func(f *os.File) error {
			return gios.WriteArchive(f, archive.File, rows)
		}); err != nil {
			return fmt.Errorf("archive %d: %w", year, err)
		}
		log.Printf("%d: %s (%s, %d rows)", year, path, archive.File, len(rows))
	}

	path := filepath.Join(dir, "metadane.xlsx")
	if err := writeFile(path, func(f *os.File) error {
		return gios.WriteWorkbook(f, metadataRows())
	}); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	log.Printf("metadata: %s (%d stations)", path, len(stations))
	return nil
}

// archiveRows lays out one year in the provider's format. Years from 2016 use
// the extended header with position codes and units.
func archiveRows(year, days int, rng *rand.Rand) [][]any {
	var active []mockStation
	for _, s := range stations {
		if year >= s.from && year <= s.to {
			active = append(active, s)
		}
	}

	header := func(label string, cell func(s mockStation) any) []any {
		row := []any{label}
		for _, s := range active {
			row = append(row, cell(s))
		}
		return row
	}
	codeRow := header("Kod stacji", func(s mockStation) any {
		if s.legacy != "" && year <= s.legacyUntil {
			return s.legacy
		}
		return s.code
	})

	var rows [][]any
	if year >= 2016 {
		n := 0
		rows = append(rows,
			header("Nr", func(mockStation) any { n++; return n }),
			codeRow,
			header("Wskaźnik", func(mockStation) any { return "PM2.5" }),
			header("Czas uśredniania", func(mockStation) any { return "1g" }),
			header("Jednostka", func(mockStation) any { return "ug/m3" }),
			header("Kod stanowiska", func(s mockStation) any { return s.code + "-PM2.5-1g" }),
		)
	} else {
		rows = append(rows,
			codeRow,
			header("Wskaźnik", func(mockStation) any { return "PM2.5" }),
			header("Czas uśredniania", func(mockStation) any { return "1g" }),
		)
	}

	// Labels close the hour they measure, so the last reading of a day sits
	// at midnight of the next one.
	start := time.Date(year, 1, 1, 1, 0, 0, 0, time.UTC)
	for h := 0; h < days*24; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		row := []any{ts}
		for _, s := range active {
			if rng.IntN(50) == 0 {
				row = append(row, "")
				continue
			}
			row = append(row, reading(s.base, ts, rng))
		}
		rows = append(rows, row)
	}
	return rows
}

// reading is a winter-heavy seasonal profile with noise, rounded to 0.1.
func reading(base float64, ts time.Time, rng *rand.Rand) float64 {
	season := 1 + 0.6*math.Cos(2*math.Pi*float64(ts.YearDay())/365)
	v := base*season + rng.NormFloat64()*base/4
	return math.Round(math.Max(v, 1)*10) / 10
}

func metadataRows() [][]any {
	rows := [][]any{{"Nr", "Kod stacji", "Kod międzynarodowy", "Nazwa stacji", "Stary Kod stacji", "Miejscowość"}}
	for i, s := range stations {
		rows = append(rows, []any{i + 1, s.code, fmt.Sprintf("PL%04dA", i+1), s.locality + ", mock", s.legacy, s.locality})
	}
	return rows
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
