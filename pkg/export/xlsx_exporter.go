package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet  = "Sheet1"
	maxSheetName  = 31
	minColWidth   = 12.0
	maxColWidth   = 40.0
	widthSampling = 50
)

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct {
	sheetName string
}

// NewXLSXExporter constructs a workbook exporter writing to sheetName.
func NewXLSXExporter(sheetName string) *XLSXExporter {
	if sheetName == "" {
		sheetName = defaultSheet
	}
	if len(sheetName) > maxSheetName {
		sheetName = sheetName[:maxSheetName]
	}
	return &XLSXExporter{sheetName: sheetName}
}

// Render writes a bold, filterable header row followed by the dataset rows.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("xlsx"); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	name := e.sheetName
	if name != defaultSheet {
		if err := f.SetSheetName(defaultSheet, name); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	header := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for r, row := range data.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(data.Headers), 1)
	if err != nil {
		return nil, fmt.Errorf("cell name: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	_ = f.SetCellStyle(name, "A1", last, bold)
	_ = f.AutoFilter(name, "A1:"+last, nil)

	for c := range data.Headers {
		width := float64(len(data.Headers[c]))
		for r := 0; r < len(data.Rows) && r < widthSampling; r++ {
			if l := float64(len(data.Rows[r][c])); l > width {
				width = l
			}
		}
		width *= 0.9
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		_ = f.SetColWidth(name, col, col, width)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
