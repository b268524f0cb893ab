// =============================================================================
// Fixture Survey - Row Ingestor
// =============================================================================
//
// The ingestor walks decoded rows in file order and keeps the rows that
// belong to the data region of the survey:
//
//   - The FIRST row with an empty unit value ends the data region. Everything
//     after it is discarded, whatever it contains (trailing summary blocks
//     usually follow a blank separator row).
//   - Rows whose unit value mentions a summary word ("Grand Total",
//     "Subtotal", "N/A", ...) are skipped, but ingestion continues.
//
// =============================================================================

package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/fixture-survey/internal/discovery"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

// ErrMissingUnitColumn is returned when no column can serve as the unit identifier.
var ErrMissingUnitColumn = errors.New("missing unit column")

// stoplist holds the summary words that disqualify a unit value.
var stoplist = []string{
	"total",
	"sum",
	"average",
	"avg",
	"count",
	"header",
	"n/a",
	"na",
	"grand total",
	"subtotal",
	"summary",
	"totals",
	"grand",
	"sub total",
}

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// SkipReason explains why a row was left out.
type SkipReason string

const (
	// ReasonStoplist marks a summary/total row.
	ReasonStoplist SkipReason = "stoplist"
	// ReasonTruncated marks the empty-unit row that ended the data region.
	ReasonTruncated SkipReason = "empty_unit"
)

// Skip records one row that did not make it into the output.
type Skip struct {
	// RowIndex is the 0-based index into the input rows.
	RowIndex int
	Unit     string
	Reason   SkipReason
}

// Result is the outcome of an ingestion pass.
type Result struct {
	// Rows are the valid rows, in input order.
	Rows []types.RawRow

	// Indices holds the input index of every row in Rows.
	Indices []int

	// Skipped lists stoplist rows and the truncating row.
	Skipped []Skip

	// TruncatedAt is the index of the first empty-unit row, or -1.
	TruncatedAt int

	// Discarded counts rows dropped after truncation (the empty row excluded).
	Discarded int
}

// =============================================================================
// INGESTION
// =============================================================================

// Ingest returns the valid rows of the data region, in input order.
func Ingest(rows []types.RawRow, unitColumn string) []types.RawRow {
	return IngestWithReport(rows, unitColumn).Rows
}

// IngestWithReport is Ingest plus a record of every skipped row.
func IngestWithReport(rows []types.RawRow, unitColumn string) Result {
	result := Result{
		Rows:        make([]types.RawRow, 0, len(rows)),
		Indices:     make([]int, 0, len(rows)),
		TruncatedAt: -1,
	}

	for i, row := range rows {
		unit := UnitValue(row, unitColumn)

		if unit == "" {
			result.TruncatedAt = i
			result.Discarded = len(rows) - i - 1
			result.Skipped = append(result.Skipped, Skip{RowIndex: i, Reason: ReasonTruncated})
			break
		}

		if !IsValidUnit(unit) {
			result.Skipped = append(result.Skipped, Skip{RowIndex: i, Unit: unit, Reason: ReasonStoplist})
			continue
		}

		result.Rows = append(result.Rows, row)
		result.Indices = append(result.Indices, i)
	}

	return result
}

// UnitValue returns the trimmed unit cell of a row ("" when absent).
func UnitValue(row types.RawRow, unitColumn string) string {
	return strings.TrimSpace(row[unitColumn])
}

// IsValidUnit reports whether a unit value is non-empty and free of summary words.
func IsValidUnit(unit string) bool {
	lower := strings.ToLower(strings.TrimSpace(unit))
	if lower == "" {
		return false
	}
	for _, word := range stoplist {
		if strings.Contains(lower, word) {
			return false
		}
	}
	return true
}

// =============================================================================
// UNIT COLUMN RESOLUTION
// =============================================================================

// ResolveUnitColumn picks the unit column for ingestion.
//
// An explicit choice must name one of the headers. Without one, the header
// keywords are searched. There is no fall back to the first column here: a
// file without a recognisable unit column is rejected.
func ResolveUnitColumn(headers []string, explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		for _, header := range headers {
			if header == explicit {
				return header, nil
			}
		}
		return "", fmt.Errorf("%w: column %q is not in the file (columns: %s)",
			ErrMissingUnitColumn, explicit, strings.Join(headers, ", "))
	}

	column, ok := discovery.DiscoverUnitColumn(headers, false)
	if !ok {
		return "", fmt.Errorf("%w: no header contains any of %s; rename the unit column or select it explicitly",
			ErrMissingUnitColumn, quoteAll(discovery.UnitKeywords))
	}
	return column, nil
}

func quoteAll(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = fmt.Sprintf("%q", w)
	}
	return strings.Join(quoted, ", ")
}
