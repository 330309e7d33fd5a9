package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"faktur/pkg/models"
)

const (
	// SheetName is the worksheet written by WriteXLSX and SheetsWriter.
	SheetName = "Rekap Faktur"

	// DefaultFilename is the suggested download name.
	DefaultFilename = "rekap_faktur_coretax.xlsx"

	// ContentTypeXLSX is the MIME type of the workbook.
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// numFmtInteger is the built-in "0" number format.
	numFmtInteger = 1
)

// WriteXLSX writes rows as a single-sheet workbook. The first row holds the
// column names; amount columns use a zero-decimal number format.
func WriteXLSX(w io.Writer, rows []models.Row, cols []string) error {
	if err := ValidateColumns(cols); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := Values(row, cols)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}

	if err := styleSheet(f, len(rows), cols); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func styleSheet(f *excelize.File, nrows int, cols []string) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}
	integer, err := f.NewStyle(&excelize.Style{NumFmt: numFmtInteger})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	for i, c := range cols {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, name, name, columnWidth(c)); err != nil {
			return fmt.Errorf("xlsx width: %w", err)
		}

		if !models.NumericColumns[c] || nrows == 0 {
			continue
		}
		top, _ := excelize.CoordinatesToCellName(i+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(i+1, nrows+1)
		if err := f.SetCellStyle(SheetName, top, bottom, integer); err != nil {
			return fmt.Errorf("xlsx style: %w", err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("xlsx panes: %w", err)
	}
	return nil
}

func columnWidth(col string) float64 {
	switch {
	case col == models.ColBarangJasa || col == models.ColKeterangan:
		return 48
	case models.NumericColumns[col]:
		return 18
	case col == models.ColNo || col == models.ColMasa || col == models.ColTahun:
		return 8
	default:
		return 24
	}
}
