// =============================================================================
// Fixture Survey - Validation Engine
// =============================================================================
//
// This module validates the operator's column selections against the
// decoded input before consolidation runs:
//   - the unit column must exist
//   - notes columns and selected note cells must exist
//   - fixed fixture columns must be in range and distinct
//
// ERROR HANDLING:
//   - Errors are collected, not returned on the first failure
//   - Each error names the field, the offending value and the rule
//   - Warnings never block processing; errors do
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/fixture-survey/internal/discovery"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is "error" (processing stops) or "warning".
	Severity string

	// Field is the setting that failed validation.
	Field string

	// Value is the offending value.
	Value string

	// Rule is the rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.Field,
		e.Message,
		e.Value,
	)
}

// ValidationResult collects the findings of one validation run.
type ValidationResult struct {
	// IsValid is true if there are no errors.
	IsValid bool

	// Errors contains all findings, warnings included.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int
}

func (r *ValidationResult) add(severity, field, value, rule, format string, args ...any) {
	r.Errors = append(r.Errors, &ValidationError{
		Severity: severity,
		Field:    field,
		Value:    value,
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
	})

	if severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

// Err returns the first error finding, or nil when the result is valid.
func (r *ValidationResult) Err() error {
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			return e
		}
	}
	return nil
}

// =============================================================================
// SELECTION VALIDATION
// =============================================================================

// Selection is the operator's column choice for one input.
type Selection struct {
	Headers      []string
	RowCount     int
	UnitColumn   string
	NotesColumns []string
	CellNotes    []types.CellRef
	Strategy     discovery.Strategy
	FixedColumns discovery.FixedColumns
}

// ValidateSelection checks a selection against the decoded headers.
func ValidateSelection(sel Selection) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if !slices.Contains(sel.Headers, sel.UnitColumn) {
		result.add(SeverityError, "unit_column", sel.UnitColumn, "column_exists",
			"unit column not found in headers")
	}

	for _, column := range sel.NotesColumns {
		switch {
		case !slices.Contains(sel.Headers, column):
			result.add(SeverityError, "notes_columns", column, "column_exists",
				"notes column not found in headers")
		case column == sel.UnitColumn:
			result.add(SeverityWarning, "notes_columns", column, "distinct_from_unit",
				"unit column is also used as a notes column")
		}
	}

	for _, ref := range sel.CellNotes {
		if ref.Row < 0 || ref.Row >= sel.RowCount {
			result.add(SeverityError, "cell_notes", ref.String(), "row_in_range",
				"row must be between 0 and %d", sel.RowCount-1)
		}
		if !slices.Contains(sel.Headers, ref.Column) {
			result.add(SeverityError, "cell_notes", ref.String(), "column_exists",
				"column not found in headers")
		}
	}

	if sel.Strategy == discovery.StrategyFixedColumns {
		validateFixedColumns(result, sel)
	}

	return result
}

func validateFixedColumns(result *ValidationResult, sel Selection) {
	fixed := map[types.Fixture]int{
		types.Kitchen:  sel.FixedColumns.Kitchen,
		types.Bathroom: sel.FixedColumns.Bathroom,
		types.Shower:   sel.FixedColumns.Shower,
		types.Toilet:   sel.FixedColumns.Toilet,
	}

	unitIdx := slices.Index(sel.Headers, sel.UnitColumn)
	used := make(map[int]types.Fixture)
	configured := 0

	for _, f := range types.Fixtures() {
		idx := fixed[f]
		field := "fixed_columns." + string(f)
		if idx < 0 {
			continue
		}
		configured++

		if idx >= len(sel.Headers) {
			result.add(SeverityError, field, strconv.Itoa(idx), "index_in_range",
				"column index out of range (input has %d columns)", len(sel.Headers))
			continue
		}
		if other, ok := used[idx]; ok {
			result.add(SeverityError, field, strconv.Itoa(idx), "distinct_columns",
				"column %q is already assigned to %s", sel.Headers[idx], other)
			continue
		}
		used[idx] = f

		if idx == unitIdx {
			result.add(SeverityWarning, field, strconv.Itoa(idx), "distinct_from_unit",
				"fixture column is the unit column")
		}
	}

	if configured == 0 {
		result.add(SeverityWarning, "fixed_columns", "", "any_configured",
			"no fixture columns configured; every count will be 0")
	}
}

// =============================================================================
// EDIT VALIDATION
// =============================================================================

// ValidateSlot checks a fixture slot name used by an installation edit.
func ValidateSlot(slot string) (types.Fixture, *ValidationError) {
	f, err := types.ParseFixture(slot)
	if err != nil {
		return "", &ValidationError{
			Severity: SeverityError,
			Field:    "slot",
			Value:    slot,
			Rule:     "known_slot",
			Message:  "expected kitchen, bathroom, shower or toilet",
		}
	}
	return f, nil
}

// =============================================================================
// ERROR REPORTING
// =============================================================================

// FormatErrors formats findings for display.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes findings to a text file.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation log - %s\n\n", time.Now().Format(time.RFC3339)))
	builder.WriteString(FormatErrors(errors))

	if err := os.WriteFile(filePath, []byte(builder.String()), 0644); err != nil {
		return fmt.Errorf("failed to write validation log: %w", err)
	}
	return nil
}
