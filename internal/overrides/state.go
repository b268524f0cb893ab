// =============================================================================
// Fixture Survey - Override State
// =============================================================================
//
// Operator corrections are layered on top of the consolidated units and are
// persisted independently of them, one JSON document per store key:
//
//   editedUnits           map  unit ref -> replacement unit ("" = deleted)
//   detailInstallations   map  unit ref -> fixture slot -> display text
//   additionalDetailRows  list manually added units, newest first
//   unifiedNotes          map  unit ref -> note
//   columnHeaders         object report column titles
//   sectionTitles         object report section titles
//
// A unit ref is the original unit value for rows that came from the survey
// file and the row ID for manually added rows.
//
// A missing key means "no overrides". A malformed document is logged and
// treated the same way; it never aborts loading.
//
// =============================================================================

package overrides

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ginjaninja78/fixture-survey/internal/store"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

// Store keys of the override documents.
const (
	KeyEditedUnits         = "editedUnits"
	KeyEditedInstallations = "detailInstallations"
	KeyAdditionalRows      = "additionalDetailRows"
	KeyUnifiedNotes        = "unifiedNotes"
	KeyColumnHeaders       = "columnHeaders"
	KeySectionTitles       = "sectionTitles"
)

// Keys lists every override key.
func Keys() []string {
	return []string{
		KeyEditedUnits,
		KeyEditedInstallations,
		KeyAdditionalRows,
		KeyUnifiedNotes,
		KeyColumnHeaders,
		KeySectionTitles,
	}
}

// DefaultSectionTitle is used when no details title was set.
const DefaultSectionTitle = "Detailed Unit Information"

// ColumnHeaders are the titles of the report table columns.
type ColumnHeaders struct {
	Unit     string `json:"unit"`
	Kitchen  string `json:"kitchen"`
	Bathroom string `json:"bathroom"`
	Shower   string `json:"shower"`
	Toilet   string `json:"toilet"`
	Notes    string `json:"notes"`
}

// DefaultColumnHeaders returns the stock column titles.
func DefaultColumnHeaders() ColumnHeaders {
	return ColumnHeaders{
		Unit:     "Unit",
		Kitchen:  "Kitchen Installed",
		Bathroom: "Bathroom Installed",
		Shower:   "Shower Installed",
		Toilet:   "Toilet Installed",
		Notes:    "Notes",
	}
}

// Fixture returns the title of a fixture column.
func (h ColumnHeaders) Fixture(f types.Fixture) string {
	switch f {
	case types.Kitchen:
		return h.Kitchen
	case types.Bathroom:
		return h.Bathroom
	case types.Shower:
		return h.Shower
	case types.Toilet:
		return h.Toilet
	}
	return ""
}

// Set changes the title of the named column.
func (h *ColumnHeaders) Set(column, title string) error {
	switch column {
	case "unit":
		h.Unit = title
	case "kitchen":
		h.Kitchen = title
	case "bathroom":
		h.Bathroom = title
	case "shower":
		h.Shower = title
	case "toilet":
		h.Toilet = title
	case "notes":
		h.Notes = title
	default:
		return fmt.Errorf("unknown report column %q (expected unit, kitchen, bathroom, shower, toilet or notes)", column)
	}
	return nil
}

// SectionTitles are the editable report section titles.
type SectionTitles struct {
	DetailsTitle string `json:"detailsTitle"`
}

// Details returns the details section title, falling back to the default.
func (t SectionTitles) Details() string {
	if t.DetailsTitle == "" {
		return DefaultSectionTitle
	}
	return t.DetailsTitle
}

// Installations maps fixture slot names to display text.
type Installations map[string]string

// State is the full set of operator overrides.
type State struct {
	EditedUnits         map[string]string        `json:"editedUnits"`
	EditedInstallations map[string]Installations `json:"detailInstallations"`
	AdditionalRows      []types.ConsolidatedUnit `json:"additionalDetailRows"`
	UnifiedNotes        map[string]string        `json:"unifiedNotes"`
	ColumnHeaders       ColumnHeaders            `json:"columnHeaders"`
	SectionTitles       SectionTitles            `json:"sectionTitles"`
}

// NewState returns the empty override state.
func NewState() State {
	return State{
		EditedUnits:         newStringMap(),
		EditedInstallations: newInstallationMap(),
		AdditionalRows:      newRows(),
		UnifiedNotes:        newStringMap(),
		ColumnHeaders:       DefaultColumnHeaders(),
	}
}

// Load reads every override document from s.
// Malformed documents are logged and replaced by their default.
func Load(s store.Store, logger *zap.Logger) (State, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var state State
	var err error

	if state.EditedUnits, err = readJSON(s, logger, KeyEditedUnits, newStringMap); err != nil {
		return State{}, err
	}
	if state.EditedInstallations, err = readJSON(s, logger, KeyEditedInstallations, newInstallationMap); err != nil {
		return State{}, err
	}
	if state.AdditionalRows, err = readJSON(s, logger, KeyAdditionalRows, newRows); err != nil {
		return State{}, err
	}
	if state.UnifiedNotes, err = readJSON(s, logger, KeyUnifiedNotes, newStringMap); err != nil {
		return State{}, err
	}
	if state.ColumnHeaders, err = readJSON(s, logger, KeyColumnHeaders, DefaultColumnHeaders); err != nil {
		return State{}, err
	}
	if state.SectionTitles, err = readJSON(s, logger, KeySectionTitles, newSectionTitles); err != nil {
		return State{}, err
	}

	return state, nil
}

func newStringMap() map[string]string              { return map[string]string{} }
func newInstallationMap() map[string]Installations { return map[string]Installations{} }
func newRows() []types.ConsolidatedUnit            { return []types.ConsolidatedUnit{} }
func newSectionTitles() SectionTitles              { return SectionTitles{} }

// readJSON decodes the document under key on top of a fresh default.
// Only store failures are returned as errors.
func readJSON[T any](s store.Store, logger *zap.Logger, key string, fresh func() T) (T, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return fresh(), fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || raw == "" || raw == "null" {
		return fresh(), nil
	}

	value := fresh()
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		logger.Warn("Ignoring malformed override state",
			zap.String("key", key),
			zap.Error(err))
		return fresh(), nil
	}
	return value, nil
}

// writeJSON replaces the document under key.
func writeJSON(s store.Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set(key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
