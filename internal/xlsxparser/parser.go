// =============================================================================
// Fixture Survey - XLSX Parser Module
// =============================================================================
//
// This module decodes survey exports saved as Excel workbooks (.xlsx).
//
// WORKBOOK LAYOUT:
//   Only the first worksheet is read. Its first row is the header row and
//   every following non-empty row is one survey row:
//
//   | Unit | Kitchen Aerator | Bath Aerator | Shower Head | Toilet | Notes   |
//   |------|-----------------|--------------|-------------|--------|---------|
//   | 101  | Male            | 1.0 GPM      |             | yes    |         |
//   | 101  | Female          |              | x           |        | leak    |
//   | 102  |                 |              |             |        | no one  |
//
// Cells are read as their formatted text. Rows shorter than the header row
// are padded with blank cells.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/fixture-survey/internal/types"
)

// ErrEmpty is returned for workbooks without a header row.
var ErrEmpty = errors.New("Excel file is empty")

// Parse reads the first worksheet of an XLSX file.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//
// RETURNS:
//   - The decoded table.
//   - An error if the file cannot be opened or has no header row.
func Parse(filePath string) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	table, err := readFirstSheet(f)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// ParseReader reads the first worksheet of an XLSX document from r.
func ParseReader(r io.Reader) (*types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readFirstSheet(f)
}

func readFirstSheet(f *excelize.File) (*types.Table, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	// A blank first row means the sheet has no header row; columns are then
	// named by position.
	synthetic := isRowEmpty(rows[0])
	var headers []string
	if synthetic {
		width := 0
		for _, row := range rows[1:] {
			if !isRowEmpty(row) {
				width = max(width, len(row))
			}
		}
		if width == 0 {
			return nil, ErrEmpty
		}
		headers = make([]string, width)
		for i := range headers {
			headers[i] = fmt.Sprintf("Column_%d", i+1)
		}
	} else {
		headers = cleanHeaders(rows[0])
	}

	table := &types.Table{
		Headers:          headers,
		Rows:             make([]types.RawRow, 0, len(rows)-1),
		Sheet:            sheetName,
		SyntheticHeaders: synthetic,
	}

	for _, row := range rows[1:] {
		// GetRows trims trailing empty cells, so a blank row has no cells.
		if len(row) == 0 {
			continue
		}

		rawRow := make(types.RawRow, len(headers))
		for i, header := range headers {
			switch {
			case i < len(row):
				rawRow[header] = strings.TrimSpace(row[i])
			case !synthetic:
				rawRow[header] = ""
			}
		}
		table.Rows = append(table.Rows, rawRow)
	}

	return table, nil
}

// cleanHeaders trims header values and names empty headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
