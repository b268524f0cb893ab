package overrides

import (
	"strings"

	"github.com/ginjaninja78/fixture-survey/internal/consolidate"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

// Merged is one report row after overrides were applied.
type Merged struct {
	// Ref addresses the row in edit actions: the original unit for survey
	// rows, the row ID for added rows.
	Ref string `json:"ref"`

	// Added is set for manually added rows.
	Added bool `json:"added"`

	// Unit is the displayed unit, after renames.
	Unit string `json:"unit"`

	// Source is the consolidated record the row was built from.
	Source types.ConsolidatedUnit `json:"source"`

	// Display text per fixture slot.
	Kitchen  string `json:"kitchen"`
	Bathroom string `json:"bathroom"`
	Shower   string `json:"shower"`
	Toilet   string `json:"toilet"`

	Note string `json:"note"`
}

// Installation returns the display text of a fixture slot.
func (m Merged) Installation(f types.Fixture) string {
	switch f {
	case types.Kitchen:
		return m.Kitchen
	case types.Bathroom:
		return m.Bathroom
	case types.Shower:
		return m.Shower
	case types.Toilet:
		return m.Toilet
	}
	return ""
}

// RefOf returns the override ref of a unit. Added rows written before rows
// carried IDs fall back to their unit value.
func RefOf(u types.ConsolidatedUnit) string {
	if u.ID != "" {
		return u.ID
	}
	return u.Unit
}

// Merge layers the override state on top of the consolidated base set.
// Added rows come first and are always kept; base rows renamed to an empty
// unit are dropped. Merge does not sort and does not modify its inputs.
func Merge(base []types.ConsolidatedUnit, state State) []Merged {
	merged := make([]Merged, 0, len(state.AdditionalRows)+len(base))

	for _, u := range state.AdditionalRows {
		merged = append(merged, mergeRow(u, RefOf(u), u.Unit, true, state))
	}

	for _, u := range base {
		unit := u.Unit
		if renamed, ok := state.EditedUnits[u.Unit]; ok {
			unit = renamed
		}
		if strings.TrimSpace(unit) == "" {
			continue
		}
		merged = append(merged, mergeRow(u, u.Unit, unit, false, state))
	}

	return merged
}

func mergeRow(u types.ConsolidatedUnit, ref, unit string, added bool, state State) Merged {
	m := Merged{
		Ref:    ref,
		Added:  added,
		Unit:   unit,
		Source: u,
	}

	edits := state.EditedInstallations[ref]
	slot := func(f types.Fixture, computed string) string {
		if text, ok := edits[string(f)]; ok {
			return text
		}
		return computed
	}

	m.Kitchen = slot(types.Kitchen, consolidate.AeratorDescription(u.KitchenAeratorCount, types.Kitchen))
	m.Bathroom = slot(types.Bathroom, consolidate.AeratorDescription(u.BathroomAeratorCount, types.Bathroom))
	m.Shower = slot(types.Shower, consolidate.AeratorDescription(u.ShowerHeadCount, types.Shower))
	m.Toilet = slot(types.Toilet, "")

	if note := state.UnifiedNotes[ref]; note != "" {
		m.Note = note
	} else {
		m.Note = DefaultNote(u)
	}

	return m
}

// DefaultNote is the note shown when the operator has not written one:
// the sentence-cased "not accessed" sentinel followed by any collected
// source notes verbatim. Source notes carry readings such as "1.5 GPM"
// that sentence splitting would mangle.
func DefaultNote(u types.ConsolidatedUnit) string {
	var parts []string
	if note := consolidate.FormatNote(consolidate.CompileDefaultNote(u)); note != "" {
		parts = append(parts, note)
	}
	if notes := strings.TrimSpace(u.Notes); notes != "" {
		parts = append(parts, notes)
	}
	return strings.Join(parts, " ")
}
