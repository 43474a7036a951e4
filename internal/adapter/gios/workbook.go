package gios

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// ReadWorkbook reads the first sheet of an xlsx workbook as string rows.
// Cells are read raw so date cells come back as Excel serial numbers.
func ReadWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// ReadRawTable reads an archive workbook into a raw table, turning Excel
// serial dates in the label column into "2006-01-02 15:04:05" text.
func ReadRawTable(r io.Reader, year int) (domain.RawTable, error) {
	rows, err := ReadWorkbook(r)
	if err != nil {
		return domain.RawTable{}, err
	}
	for _, row := range rows {
		if len(row) > 0 {
			row[0] = serialDateLabel(row[0])
		}
	}
	return domain.RawTable{Year: year, Rows: rows}, nil
}

// ExtractRawTable finds the named workbook inside a zip archive and reads it.
// The name is matched against the full entry path first, then its base name.
func ExtractRawTable(data []byte, archive Archive) (domain.RawTable, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("open archive %s: %w", archive.ID, err)
	}

	entry := findEntry(zr, archive.File)
	if entry == nil {
		names := make([]string, 0, len(zr.File))
		for _, f := range zr.File {
			names = append(names, f.Name)
		}
		return domain.RawTable{}, fmt.Errorf("archive %s has no %q (entries: %s)", archive.ID, archive.File, strings.Join(names, ", "))
	}

	rc, err := entry.Open()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("open %s: %w", entry.Name, err)
	}
	defer rc.Close()

	raw, err := ReadRawTable(rc, archive.Year)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("%s: %w", entry.Name, err)
	}
	return raw, nil
}

func findEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	for _, f := range zr.File {
		if path.Base(f.Name) == name {
			return f
		}
	}
	return nil
}

// serialDateLabel converts an Excel serial date to a timestamp label rounded to
// the second. Anything that is not a positive number is returned unchanged.
func serialDateLabel(cell string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return cell
	}
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return cell
	}
	return t.Round(time.Second).Format(time.DateTime)
}

// WriteWorkbook writes rows to the first sheet of a new workbook. time.Time
// cells are stored as Excel dates, numbers as numbers.
func WriteWorkbook(w io.Writer, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f.Write(w)
}

// WriteArchive writes a zip holding a single workbook named file.
func WriteArchive(w io.Writer, file string, rows [][]any) error {
	zw := zip.NewWriter(w)
	entry, err := zw.Create(file)
	if err != nil {
		return fmt.Errorf("create %s: %w", file, err)
	}
	if err := WriteWorkbook(entry, rows); err != nil {
		return err
	}
	return zw.Close()
}
