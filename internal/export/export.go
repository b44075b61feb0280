// Package export writes result sets to disk as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/hyperifyio/qkbleads/internal/registry"
)

// WriteCSV writes a header and one record per row in column order.
func WriteCSV(w io.Writer, rs registry.ResultSet) error {
	cw := csv.NewWriter(w)
	cols := rs.Columns()
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, r := range rs.Rows {
		if err := cw.Write(r.Record(cols)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes rs to path through a temporary file in the same
// directory so readers never see a partial export.
func WriteCSVFile(path string, rs registry.ResultSet) error {
	return writeAtomic(path, func(w io.Writer) error { return WriteCSV(w, rs) })
}

// WriteXLSXFile writes rs as a single-sheet workbook.
func WriteXLSXFile(path string, rs registry.ResultSet) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	cols := rs.Columns()
	for i, h := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rs.Rows {
		for c, v := range row.Record(cols) {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	for i := 1; i <= len(cols); i++ {
		col, _ := excelize.ColumnNumberToName(i)
		_ = f.SetColWidth(sheet, col, col, 24)
	}
	return writeAtomic(path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
}

func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fmt.Errorf("create temp export: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
