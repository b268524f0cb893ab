package overrides

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/fixture-survey/internal/store"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

func baseUnits() []types.ConsolidatedUnit {
	return []types.ConsolidatedUnit{
		{Unit: "101", KitchenAeratorCount: 1, BathroomAeratorCount: 2},
		{Unit: "102"},
		{Unit: "103", ShowerHeadCount: 1, Notes: "tenant asked for callback"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	state, err := Load(store.NewMemoryStore(), nil)
	require.NoError(t, err)

	if diff := cmp.Diff(NewState(), state); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, DefaultSectionTitle, state.SectionTitles.Details())
}

func TestLoad_MalformedIsIgnoredAndLogged(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(KeyEditedUnits, `{"101": "101A"`))
	require.NoError(t, s.Set(KeyUnifiedNotes, `{"101": "Leak"}`))
	require.NoError(t, s.Set(KeyColumnHeaders, `{"unit": "Apt"}`))

	core, logs := observer.New(zap.WarnLevel)
	state, err := Load(s, zap.New(core))
	require.NoError(t, err)

	assert.Empty(t, state.EditedUnits)
	assert.Equal(t, "Leak", state.UnifiedNotes["101"])
	// Partial documents overlay the defaults.
	assert.Equal(t, "Apt", state.ColumnHeaders.Unit)
	assert.Equal(t, "Kitchen Installed", state.ColumnHeaders.Kitchen)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, KeyEditedUnits, logs.All()[0].ContextMap()["key"])
}

func TestMerge_NoOverrides(t *testing.T) {
	got := Merge(baseUnits(), NewState())

	require.Len(t, got, 3)
	assert.Equal(t, Merged{
		Ref:      "101",
		Unit:     "101",
		Source:   baseUnits()[0],
		Kitchen:  "1.0 GPM",
		Bathroom: "1.0 GPM (2)",
		Shower:   "No Touch.",
	}, got[0])
	assert.Equal(t, "Unit not accessed.", got[1].Note)
	assert.Equal(t, "tenant asked for callback", got[2].Note)
}

func TestDefaultNote_KeepsSourceNotesVerbatim(t *testing.T) {
	tests := []struct {
		name string
		unit types.ConsolidatedUnit
		want string
	}{
		{"flow reading", types.ConsolidatedUnit{Unit: "1", KitchenAeratorCount: 1, Notes: "Flow = 1.5 GPM"}, "Flow = 1.5 GPM"},
		{"untouched with notes", types.ConsolidatedUnit{Unit: "2", Notes: " Measured 2.2 gpm; see photo "}, "Unit not accessed. Measured 2.2 gpm; see photo"},
		{"untouched", types.ConsolidatedUnit{Unit: "3"}, "Unit not accessed."},
		{"nothing", types.ConsolidatedUnit{Unit: "4", ShowerHeadCount: 1}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultNote(tt.unit))
		})
	}
}

func TestMerge_AppliesOverrides(t *testing.T) {
	state := NewState()
	state.AdditionalRows = []types.ConsolidatedUnit{{ID: "row-1", Unit: "PH", ShowerHeadCount: 1}}
	state.EditedUnits = map[string]string{"101": "101A", "102": "  "}
	state.EditedInstallations = map[string]Installations{
		"101": {"kitchen": "2.2 GPM replaced", "toilet": "1.28 GPF"},
	}
	state.UnifiedNotes = map[string]string{"101": "Checked twice", "103": ""}

	got := Merge(baseUnits(), state)

	require.Len(t, got, 3)

	assert.Equal(t, "row-1", got[0].Ref)
	assert.True(t, got[0].Added)
	assert.Equal(t, "PH", got[0].Unit)
	assert.Equal(t, "1.75 GPM", got[0].Shower)

	assert.Equal(t, "101", got[1].Ref)
	assert.Equal(t, "101A", got[1].Unit)
	assert.Equal(t, "2.2 GPM replaced", got[1].Kitchen)
	assert.Equal(t, "1.0 GPM (2)", got[1].Bathroom)
	assert.Equal(t, "1.28 GPF", got[1].Installation(types.Toilet))
	assert.Equal(t, "Checked twice", got[1].Note)

	// 102 was renamed to blank and is gone; 103 falls back to its default note.
	assert.Equal(t, "103", got[2].Unit)
	assert.Equal(t, "tenant asked for callback", got[2].Note)
}

func TestMerge_KeepsBlankAddedRows(t *testing.T) {
	state := NewState()
	state.AdditionalRows = []types.ConsolidatedUnit{{ID: "a"}, {ID: "b"}}

	got := Merge(nil, state)

	require.Len(t, got, 2)
	assert.Equal(t, "", got[0].Unit)
	assert.Equal(t, "Unit not accessed.", got[1].Note)
}

func TestMerge_Idempotent(t *testing.T) {
	s := store.NewMemoryStore()
	m := NewManager(s, nil)
	require.NoError(t, m.RenameUnit("101", "101A"))
	require.NoError(t, m.SetNote("103", "Leak"))

	state, err := m.State()
	require.NoError(t, err)
	base := baseUnits()

	first := Merge(base, state)
	second := Merge(base, state)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Merge() not idempotent (-first +second):\n%s", diff)
	}
	assert.Equal(t, baseUnits(), base, "Merge must not modify its input")

	// Writing back an identical value changes nothing.
	require.NoError(t, m.RenameUnit("101", "101A"))
	state, err = m.State()
	require.NoError(t, err)
	if diff := cmp.Diff(first, Merge(base, state)); diff != "" {
		t.Errorf("Merge() changed after no-op edit (-want +got):\n%s", diff)
	}
}

func TestManager_AddedRows(t *testing.T) {
	m := NewManager(store.NewMemoryStore(), nil)

	first, err := m.AddRow()
	require.NoError(t, err)
	second, err := m.AddRow()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, m.RenameUnit(first, "B12"))
	require.NoError(t, m.EditInstallation(first, types.Kitchen, "anything"))
	require.NoError(t, m.EditInstallation(first, types.Shower, "yes"))
	require.NoError(t, m.EditInstallation(first, types.Shower, ""))

	state, err := m.State()
	require.NoError(t, err)
	require.Len(t, state.AdditionalRows, 2)

	// Newest row first.
	assert.Equal(t, second, state.AdditionalRows[0].ID)
	assert.Equal(t, types.ConsolidatedUnit{ID: first, Unit: "B12", KitchenAeratorCount: 1}, state.AdditionalRows[1])
	assert.Empty(t, state.EditedUnits)
	assert.Empty(t, state.EditedInstallations)

	require.NoError(t, m.DeleteRow(second))
	state, err = m.State()
	require.NoError(t, err)
	require.Len(t, state.AdditionalRows, 1)
	assert.Equal(t, first, state.AdditionalRows[0].ID)
}

func TestManager_SurveyRows(t *testing.T) {
	m := NewManager(store.NewMemoryStore(), nil)

	require.NoError(t, m.RenameUnit("101", "101A"))
	require.NoError(t, m.EditInstallation("101", types.Bathroom, "Declined"))
	require.NoError(t, m.EditInstallation("101", types.Toilet, ""))
	require.NoError(t, m.SetNote("102", "Dog in unit"))
	require.NoError(t, m.DeleteRow("102"))

	state, err := m.State()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"101": "101A", "102": ""}, state.EditedUnits)
	assert.Equal(t, map[string]Installations{"101": {"bathroom": "Declined", "toilet": ""}}, state.EditedInstallations)
	assert.Empty(t, state.UnifiedNotes)

	got := Merge(baseUnits(), state)
	require.Len(t, got, 2)
	assert.Equal(t, "Declined", got[0].Bathroom)
	assert.Equal(t, "", got[0].Toilet)
}

func TestManager_NotesListeners(t *testing.T) {
	m := NewManager(store.NewMemoryStore(), nil)

	calls := 0
	unsubscribe := m.OnNotesChanged(func() { calls++ })

	require.NoError(t, m.SetNote("101", "Leak"))
	require.NoError(t, m.RenameUnit("101", "101A"))
	assert.Equal(t, 1, calls)

	// Deleting a row without a note leaves the notes untouched.
	require.NoError(t, m.DeleteRow("102"))
	assert.Equal(t, 1, calls)

	require.NoError(t, m.DeleteRow("101"))
	assert.Equal(t, 2, calls)

	unsubscribe()
	require.NoError(t, m.SetNote("103", "Gone"))
	assert.Equal(t, 2, calls)
}

func TestManager_HeadersAndTitles(t *testing.T) {
	m := NewManager(store.NewMemoryStore(), nil)

	require.NoError(t, m.SetColumnHeader("kitchen", "Kitchen"))
	require.Error(t, m.SetColumnHeader("garage", "Garage"))
	require.NoError(t, m.SetSectionTitle("Building A"))

	state, err := m.State()
	require.NoError(t, err)

	want := DefaultColumnHeaders()
	want.Kitchen = "Kitchen"
	assert.Equal(t, want, state.ColumnHeaders)
	assert.Equal(t, "Kitchen", state.ColumnHeaders.Fixture(types.Kitchen))
	assert.Equal(t, "Building A", state.SectionTitles.Details())
}

func TestManager_Reset(t *testing.T) {
	s := store.NewMemoryStore()
	m := NewManager(s, nil)
	require.NoError(t, m.SetNote("1", "x"))
	require.NoError(t, m.SetSectionTitle("T"))
	require.NoError(t, s.Set("session", "{}"))

	require.NoError(t, m.Reset())

	state, err := m.State()
	require.NoError(t, err)
	if diff := cmp.Diff(NewState(), state); diff != "" {
		t.Errorf("state after Reset (-want +got):\n%s", diff)
	}
	_, ok, err := s.Get("session")
	require.NoError(t, err)
	assert.True(t, ok, "Reset only touches override keys")
}
