// Package codec converts sheet grids to and from xlsx workbooks.
package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sheetforms/internal/core"
)

// DefaultSheetName is the worksheet written by Encode.
const DefaultSheetName = "Sheet1"

// ErrNoWorksheet is returned when a workbook has no worksheets.
var ErrNoWorksheet = errors.New("workbook has no worksheets")

// XLSX is a core.Codec backed by excelize.
type XLSX struct {
	// SheetName names the worksheet written by Encode.
	SheetName string
}

var _ core.Codec = (*XLSX)(nil)

// New returns a codec writing to DefaultSheetName.
func New() *XLSX {
	return &XLSX{SheetName: DefaultSheetName}
}

// Encode writes grid to a single worksheet, one string cell per grid cell,
// starting at A1.
func (c *XLSX) Encode(grid [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := c.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}
	if sheet != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, sheet); err != nil {
			return nil, fmt.Errorf("name worksheet: %w", err)
		}
	}

	for i, row := range grid {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads the first worksheet as a grid of display strings. Trailing
// empty cells of a row and trailing empty rows are not included.
func (c *XLSX) Decode(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
