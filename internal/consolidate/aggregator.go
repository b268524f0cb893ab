// =============================================================================
// Fixture Survey - Unit Aggregator
// =============================================================================
//
// Consolidation reduces the ingested survey rows to one record per unit:
//
//   1. Rows are grouped by their trimmed unit value. Groups are emitted in
//      order of first appearance; sorting happens later, on the merged set.
//   2. Every row of a group adds to the unit's fixture counts. How a row is
//      read depends on the detection strategy:
//        - column roles (header keyword / fixed columns): the kitchen,
//          bathroom and shower cells are run through the value classifier
//        - cell content scan: every cell mentioning "aerator" counts as a
//          kitchen or bathroom aerator depending on its column name, every
//          cell mentioning "shower" counts as a shower head
//   3. Text from the selected notes columns and selected cells is collected
//      into the unit's Notes.
//
// =============================================================================

package consolidate

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/fixture-survey/internal/classify"
	"github.com/ginjaninja78/fixture-survey/internal/discovery"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

// Aggregator turns ingested rows into consolidated units.
type Aggregator struct {
	// UnitColumn is the column holding the unit identifier.
	UnitColumn string

	// Roles are the discovered fixture columns.
	Roles types.ColumnRoleMap

	// Strategy decides between role classification and cell scanning.
	Strategy discovery.Strategy

	// Classify decides whether a fixture cell means "installed".
	// Defaults to classify.IsInstalled.
	Classify classify.Func

	// NotesColumns are copied into the unit notes.
	NotesColumns []string

	// CellNotes maps a row position (in the slice passed to Aggregate) to
	// the columns the operator picked as notes for that row.
	CellNotes map[int][]string
}

// roleFixtures are the per-unit counted fixtures.
var roleFixtures = []types.Fixture{types.Kitchen, types.Bathroom, types.Shower}

// Aggregate groups rows by unit and counts installed fixtures.
// The output is in first-appearance order.
func (a *Aggregator) Aggregate(rows []types.RawRow) []types.ConsolidatedUnit {
	isInstalled := a.Classify
	if isInstalled == nil {
		isInstalled = classify.IsInstalled
	}

	positions := make(map[string]int)
	var units []types.ConsolidatedUnit
	var notes [][]string

	for i, row := range rows {
		unit := strings.TrimSpace(row[a.UnitColumn])
		if unit == "" {
			continue
		}

		pos, ok := positions[unit]
		if !ok {
			pos = len(units)
			positions[unit] = pos
			units = append(units, types.ConsolidatedUnit{Unit: unit})
			notes = append(notes, nil)
		}

		if a.Strategy == discovery.StrategyCellScan {
			scanCells(&units[pos], row)
		} else {
			a.countRoles(&units[pos], row, isInstalled)
		}

		if text := a.rowNotes(i, unit, row); text != "" {
			notes[pos] = append(notes[pos], text)
		}
	}

	for i := range units {
		units[i].Notes = strings.Join(notes[i], " ")
	}

	return units
}

func (a *Aggregator) countRoles(u *types.ConsolidatedUnit, row types.RawRow, isInstalled classify.Func) {
	for _, f := range roleFixtures {
		column := a.Roles.Column(f)
		if column == "" {
			continue
		}
		if isInstalled(row[column]) {
			u.SetCount(f, u.Count(f)+1)
		}
	}
}

// scanCells reads free-form rows whose fixture columns could not be identified.
func scanCells(u *types.ConsolidatedUnit, row types.RawRow) {
	for key, value := range row {
		v := strings.ToLower(value)
		k := strings.ToLower(key)

		switch {
		case strings.Contains(v, "aerator"):
			if strings.Contains(k, "kitchen") {
				u.KitchenAeratorCount++
			} else if strings.Contains(k, "bathroom") {
				u.BathroomAeratorCount++
			}
		case strings.Contains(v, "shower"):
			u.ShowerHeadCount++
		}
	}
}

// rowNotes joins the notes-column values and selected cells of one row.
func (a *Aggregator) rowNotes(pos int, unit string, row types.RawRow) string {
	var parts []string

	for _, column := range a.NotesColumns {
		if v := strings.TrimSpace(row[column]); v != "" {
			parts = append(parts, v)
		}
	}
	for _, column := range a.CellNotes[pos] {
		parts = append(parts, fmt.Sprintf("Unit %s: %s = %s", unit, column, row[column]))
	}

	return strings.Join(parts, " ")
}

// CountToilets counts the cells of the toilet columns that read as
// installed, over every row given.
func CountToilets(rows []types.RawRow, columns []string) int {
	count := 0
	for _, row := range rows {
		for _, column := range columns {
			if classify.IsToiletInstalled(row[column]) {
				count++
			}
		}
	}
	return count
}
