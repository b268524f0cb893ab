// =============================================================================
// Fixture Survey - CSV Parser Module
// =============================================================================
//
// This module decodes survey exports saved as CSV text. The first line is
// the header row; every following line is one survey row.
//
// MODES:
//   - naive  : lines are split on "\n", fields on the delimiter, and every
//              value is trimmed. Quoting is NOT understood, so a value with
//              an embedded delimiter shifts the row. Lines whose field count
//              differs from the header are dropped. This is how the survey
//              tool has always read CSV and stays the default.
//   - quoted : RFC 4180 decoding with lazy quotes. Short rows are padded
//              with blank cells, blank lines are skipped.
//
// Both modes strip a leading byte order mark and decode UTF-16 input.
//
// =============================================================================

package csvparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/fixture-survey/internal/config"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

// ErrEmpty is returned for input without a header row.
var ErrEmpty = errors.New("CSV file is empty")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the decoded table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV settings from the configuration.
//
// RETURNS:
//   - The decoded table.
//   - An error if the file cannot be read or has no header row.
func Parse(filePath string, settings config.CSVSettings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// ParseReader decodes CSV text from r.
func ParseReader(r io.Reader, settings config.CSVSettings) (*types.Table, error) {
	// Decode UTF-16 (with BOM detection) into UTF-8 and drop a UTF-8 BOM.
	utf8Reader := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	delimiter := delimiterRune(settings.Delimiter)

	var records [][]string
	var err error
	if settings.Mode == config.CSVModeQuoted {
		records, err = readQuoted(utf8Reader, delimiter)
	} else {
		records, err = readNaive(utf8Reader, delimiter)
	}
	if err != nil {
		return nil, err
	}

	return buildTable(records, settings.Mode == config.CSVModeQuoted)
}

// delimiterRune converts the configured delimiter to a rune.
func delimiterRune(delimiter string) rune {
	switch delimiter {
	case "\\t", "tab", "TAB":
		return '\t'
	case "pipe", "PIPE":
		return '|'
	case "semicolon":
		return ';'
	}
	for _, r := range delimiter {
		return r
	}
	return ','
}

// readNaive splits the text on newlines and then on the delimiter.
func readNaive(r io.Reader, delimiter rune) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	records := make([][]string, 0, len(lines))
	for _, line := range lines {
		records = append(records, strings.Split(line, string(delimiter)))
	}
	return records, nil
}

// readQuoted decodes RFC 4180 CSV.
func readQuoted(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return records, nil
}

// buildTable turns the header record and the data records into a table.
// A blank first record means the file has no header row: columns are then
// named by position and blank records are skipped.
func buildTable(records [][]string, lenient bool) (*types.Table, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	synthetic := isRowEmpty(records[0])
	var headers []string
	if synthetic {
		width := 0
		for _, record := range records[1:] {
			if !isRowEmpty(record) {
				width = max(width, len(record))
			}
		}
		if width == 0 {
			return nil, ErrEmpty
		}
		headers = positionalHeaders(width)
	} else {
		headers = cleanHeaders(records[0])
	}

	table := &types.Table{
		Headers:          headers,
		Rows:             make([]types.RawRow, 0, len(records)-1),
		SyntheticHeaders: synthetic,
	}

	for _, record := range records[1:] {
		if lenient || synthetic {
			if isRowEmpty(record) {
				continue
			}
		} else if len(record) != len(headers) {
			continue
		}

		row := make(types.RawRow, len(headers))
		for i, header := range headers {
			switch {
			case i < len(record):
				row[header] = strings.TrimSpace(record[i])
			case !synthetic:
				row[header] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// positionalHeaders names n columns Column_1 .. Column_n.
func positionalHeaders(n int) []string {
	headers := make([]string, n)
	for i := range headers {
		headers[i] = fmt.Sprintf("Column_%d", i+1)
	}
	return headers
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
