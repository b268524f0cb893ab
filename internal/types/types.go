// =============================================================================
// Fixture Survey - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser (decoded tables)
//   - discovery, ingest, consolidate (the consolidation pipeline)
//   - overrides, report, render (the report model)
//
// =============================================================================

package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// RAW INPUT
// =============================================================================

// RawRow is a single decoded survey row.
// Key is the column header, value is the cell text ("" for blank cells).
type RawRow map[string]string

// Table is a decoded input file: the header row plus the data rows.
type Table struct {
	// Headers contains the column headers in file order.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	// Rows of a table with synthetic headers only carry the cells they have.
	Rows []RawRow

	// SyntheticHeaders is set when the input had no header row and the
	// headers were named by position (Column_1, Column_2, ...).
	SyntheticHeaders bool

	// SourceFile is the path to the file the table was decoded from.
	SourceFile string

	// Sheet is the worksheet name for spreadsheet input, empty for CSV.
	Sheet string
}

// CellRef addresses one cell of the decoded input.
// Row is the 0-based data row index, Column the header name.
type CellRef struct {
	Row    int    `json:"row" yaml:"row"`
	Column string `json:"column" yaml:"column"`
}

// String formats the reference as "row:column".
func (c CellRef) String() string {
	return fmt.Sprintf("%d:%s", c.Row, c.Column)
}

// ParseCellRef parses a "row:column" reference.
func ParseCellRef(s string) (CellRef, error) {
	row, column, ok := strings.Cut(s, ":")
	if !ok || column == "" {
		return CellRef{}, fmt.Errorf("invalid cell reference %q (expected row:column)", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return CellRef{Row: n, Column: column}, nil
}

// =============================================================================
// FIXTURES
// =============================================================================

// Fixture identifies one of the fixture slots of a unit.
type Fixture string

const (
	Kitchen  Fixture = "kitchen"
	Bathroom Fixture = "bathroom"
	Shower   Fixture = "shower"
	Toilet   Fixture = "toilet"
)

// ErrUnknownFixture is returned when a fixture slot name is not recognized.
var ErrUnknownFixture = errors.New("unknown fixture slot")

// Fixtures lists the fixture slots in report column order.
func Fixtures() []Fixture {
	return []Fixture{Kitchen, Bathroom, Shower, Toilet}
}

// ParseFixture converts a slot name to a Fixture.
func ParseFixture(s string) (Fixture, error) {
	switch Fixture(strings.ToLower(strings.TrimSpace(s))) {
	case Kitchen:
		return Kitchen, nil
	case Bathroom:
		return Bathroom, nil
	case Shower:
		return Shower, nil
	case Toilet:
		return Toilet, nil
	}
	return "", fmt.Errorf("%w: %q (expected kitchen, bathroom, shower or toilet)", ErrUnknownFixture, s)
}

// =============================================================================
// CONSOLIDATED UNIT
// =============================================================================

// ConsolidatedUnit is one physical unit with its fixture installation counts.
// The JSON keys match the persisted report state.
type ConsolidatedUnit struct {
	// ID is only set on manually added rows.
	ID string `json:"id,omitempty"`

	Unit                 string `json:"unit"`
	KitchenAeratorCount  int    `json:"kitchenAeratorCount"`
	BathroomAeratorCount int    `json:"bathroomAeratorCount"`
	ShowerHeadCount      int    `json:"showerHeadCount"`

	// Notes holds free text gathered from the selected notes columns.
	Notes string `json:"notes,omitempty"`
}

// Count returns the installation count for a fixture slot.
// Toilets are counted per report, not per unit, so they always return 0.
func (u ConsolidatedUnit) Count(f Fixture) int {
	switch f {
	case Kitchen:
		return u.KitchenAeratorCount
	case Bathroom:
		return u.BathroomAeratorCount
	case Shower:
		return u.ShowerHeadCount
	}
	return 0
}

// SetCount sets the installation count for a fixture slot.
func (u *ConsolidatedUnit) SetCount(f Fixture, n int) {
	switch f {
	case Kitchen:
		u.KitchenAeratorCount = n
	case Bathroom:
		u.BathroomAeratorCount = n
	case Shower:
		u.ShowerHeadCount = n
	}
}

// Untouched reports whether no fixture was installed in the unit.
func (u ConsolidatedUnit) Untouched() bool {
	return u.KitchenAeratorCount == 0 && u.BathroomAeratorCount == 0 && u.ShowerHeadCount == 0
}

// =============================================================================
// COLUMN ROLES
// =============================================================================

// NotFound marks a fixture role with no matching column.
const NotFound = -1

// ColumnRoleMap records which columns of an input play which role.
// Built once per input file; not persisted on its own.
type ColumnRoleMap struct {
	// Headers are the headers the roles were discovered on.
	Headers []string `json:"headers"`

	// Unit is the unit identifier column name, empty when not found.
	Unit string `json:"unit"`

	// Fixture column indices into Headers, NotFound when absent.
	Kitchen  int `json:"kitchen"`
	Bathroom int `json:"bathroom"`
	Shower   int `json:"shower"`
	Toilet   int `json:"toilet"`
}

// NewColumnRoleMap returns a role map with every fixture role unassigned.
func NewColumnRoleMap(headers []string) ColumnRoleMap {
	return ColumnRoleMap{
		Headers:  headers,
		Kitchen:  NotFound,
		Bathroom: NotFound,
		Shower:   NotFound,
		Toilet:   NotFound,
	}
}

// Index returns the column index for a fixture role.
func (m ColumnRoleMap) Index(f Fixture) int {
	switch f {
	case Kitchen:
		return m.Kitchen
	case Bathroom:
		return m.Bathroom
	case Shower:
		return m.Shower
	case Toilet:
		return m.Toilet
	}
	return NotFound
}

// Column returns the header name for a fixture role, or "" when absent.
func (m ColumnRoleMap) Column(f Fixture) string {
	idx := m.Index(f)
	if idx < 0 || idx >= len(m.Headers) {
		return ""
	}
	return m.Headers[idx]
}

// HasFixtures reports whether at least one aerator or shower role was found.
func (m ColumnRoleMap) HasFixtures() bool {
	return m.Kitchen != NotFound || m.Bathroom != NotFound || m.Shower != NotFound
}
