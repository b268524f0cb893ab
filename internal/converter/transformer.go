// =============================================================================
// Fixture Survey - Cell Rules
// =============================================================================
//
// Cell rules clean up survey cells before the rows are ingested. They are
// configured per column in survey.yaml and run in order. Typical uses:
//   - Mapping a crew's own vocabulary to the classifier's ("Done" -> "yes")
//   - Normalizing unit values ("Apt. 0101" -> "101")
//   - Filling blank cells from another column
//
// EXAMPLE:
//
//   cell_rules:
//     - column: "Kitchen Aerator"
//       actions:
//         - type: lookup
//           lookup_table: {"Done": "yes", "Refused": "no"}
//     - column: "Unit"
//       actions:
//         - type: extract_digits
//         - type: remove_leading_zeros
//
//   A rule with column "*" applies to every column.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/fixture-survey/internal/config"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies cell rules to survey rows.
type Transformer struct {
	rules []config.TransformationRule
}

// NewTransformer creates a new Transformer with the given rules.
func NewTransformer(rules []config.TransformationRule) *Transformer {
	return &Transformer{
		rules: rules,
	}
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Transform applies every matching rule to a cell value.
//
// PARAMETERS:
//   - column: The column of the cell.
//   - value: The current value of the cell.
//   - row: The whole row, for rules that read other columns.
//
// RETURNS:
//   - The transformed value.
//   - An error if any action fails.
func (t *Transformer) Transform(column, value string, row types.RawRow) (string, error) {
	result := value
	for _, rule := range t.rules {
		if rule.Column != column && rule.Column != config.AllColumns {
			continue
		}
		for _, action := range rule.Actions {
			var err error
			result, err = ApplyTransformation(result, action, row)
			if err != nil {
				return "", fmt.Errorf("column %q: action '%s' failed: %w", column, action.Type, err)
			}
		}
	}
	return result, nil
}

// TransformRows returns transformed copies of rows. Rules that read other
// columns see the original values of the row.
func (t *Transformer) TransformRows(rows []types.RawRow) ([]types.RawRow, error) {
	if len(t.rules) == 0 {
		return rows, nil
	}

	out := make([]types.RawRow, len(rows))
	for i, row := range rows {
		transformed := make(types.RawRow, len(row))
		for column, value := range row {
			v, err := t.Transform(column, value, row)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			transformed[column] = v
		}
		out[i] = transformed
	}
	return out, nil
}

// ApplyTransformation applies a single action.
//
// SUPPORTED TRANSFORMATIONS:
//   See config.CellActionTypes.
func ApplyTransformation(value string, action config.TransformationAction, row types.RawRow) (string, error) {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "prepend_string":
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	case "trim":
		return strings.TrimSpace(value), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "replace":
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		if action.Find == "" {
			return value, nil
		}
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		return re.ReplaceAllString(value, action.Value), nil

	case "normalize_whitespace":
		return strings.Join(strings.Fields(value), " "), nil

	// =========================================================================
	// UNIT NUMBERS
	// =========================================================================

	case "extract_digits":
		return digitsOnly.ReplaceAllString(value, ""), nil

	case "remove_leading_zeros":
		if value == "" {
			return value, nil
		}
		result := strings.TrimLeft(value, "0")
		if result == "" {
			return "0", nil // Keep at least one zero
		}
		return result, nil

	// =========================================================================
	// LOOKUPS AND DEFAULTS
	// =========================================================================

	case "lookup":
		if replacement, exists := lookup(action.LookupTable, value); exists {
			return replacement, nil
		}
		return value, nil

	case "lookup_with_default":
		if replacement, exists := lookup(action.LookupTable, value); exists {
			return replacement, nil
		}
		return action.Value, nil

	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return action.Value, nil
		}
		return value, nil

	case "if_empty_use_field":
		if strings.TrimSpace(value) == "" {
			if other, exists := row[action.Value]; exists {
				return other, nil
			}
		}
		return value, nil
	}

	return "", fmt.Errorf("unknown action type %q", action.Type)
}

var digitsOnly = regexp.MustCompile(`\D+`)

// lookup matches value against the table, ignoring case and surrounding space.
func lookup(table map[string]string, value string) (string, bool) {
	if replacement, ok := table[value]; ok {
		return replacement, true
	}
	key := strings.TrimSpace(value)
	for from, to := range table {
		if strings.EqualFold(strings.TrimSpace(from), key) {
			return to, true
		}
	}
	return "", false
}
