package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/fixture-survey/internal/overrides"
	"github.com/ginjaninja78/fixture-survey/internal/session"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }

func newSession(units ...types.ConsolidatedUnit) *session.Session {
	sess := session.New("survey.csv")
	sess.Base = units
	sess.ToiletCount = 4
	sess.Customer = session.CustomerInfo{CustomerName: "Acme Housing", City: "Springfield", State: "IL", Zip: "62701"}
	return sess
}

func unitNames(rows []overrides.Merged) []string {
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.Unit
	}
	return names
}

func TestBuild_SortsAndPaginates(t *testing.T) {
	var base []types.ConsolidatedUnit
	for i := 23; i >= 1; i-- {
		base = append(base, types.ConsolidatedUnit{Unit: fmt.Sprint(i), KitchenAeratorCount: 1})
	}

	r, err := Build(newSession(base...), overrides.NewState(), Options{Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, r.Title)
	assert.Equal(t, overrides.DefaultSectionTitle, r.SectionTitle)
	assert.Equal(t, fixedNow(), r.GeneratedAt)
	assert.Equal(t, 4, r.ToiletCount)
	require.Equal(t, 3, r.PageCount())
	assert.Len(t, r.Pages[0], 10)
	assert.Len(t, r.Pages[2], 3)
	assert.Equal(t, "1", r.Rows[0].Unit)
	assert.Equal(t, "10", r.Rows[9].Unit)
	assert.Equal(t, "23", r.Rows[22].Unit)
}

func TestBuild_AppliesOverridesBeforeSorting(t *testing.T) {
	state := overrides.NewState()
	state.EditedUnits["B-1"] = "A-9"
	state.EditedUnits["C-1"] = ""
	state.AdditionalRows = []types.ConsolidatedUnit{{ID: "row-1", Unit: "A-10"}}

	sess := newSession(
		types.ConsolidatedUnit{Unit: "B-1", KitchenAeratorCount: 1},
		types.ConsolidatedUnit{Unit: "C-1"},
		types.ConsolidatedUnit{Unit: "A-2"},
	)

	r, err := Build(sess, state, Options{Title: "  ", PageSize: 2, Now: fixedNow})
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"A-2", "A-9", "A-10"}, unitNames(r.Rows)); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, DefaultTitle, r.Title)
	assert.Equal(t, 2, r.PageCount())
}

func TestBuild_ShowShower(t *testing.T) {
	t.Run("hidden without showers", func(t *testing.T) {
		r, err := Build(newSession(types.ConsolidatedUnit{Unit: "1", KitchenAeratorCount: 1}), overrides.NewState(), Options{})
		require.NoError(t, err)
		assert.False(t, r.ShowShower)
		assert.Len(t, r.Columns(), 4)
	})

	t.Run("shown with a shower head", func(t *testing.T) {
		r, err := Build(newSession(types.ConsolidatedUnit{Unit: "1", ShowerHeadCount: 2}), overrides.NewState(), Options{})
		require.NoError(t, err)
		assert.True(t, r.ShowShower)
	})

	t.Run("shown with added rows", func(t *testing.T) {
		state := overrides.NewState()
		state.AdditionalRows = []types.ConsolidatedUnit{{ID: "x", Unit: "99"}}
		r, err := Build(newSession(), state, Options{})
		require.NoError(t, err)
		assert.True(t, r.ShowShower)
	})
}

func TestColumnsAndCells(t *testing.T) {
	state := overrides.NewState()
	state.ColumnHeaders.Kitchen = "Kitchen"
	state.EditedInstallations["2"] = overrides.Installations{"toilet": "1.28 GPF"}
	state.UnifiedNotes["2"] = "Tenant refused."

	sess := newSession(
		types.ConsolidatedUnit{Unit: "1", KitchenAeratorCount: 2, ShowerHeadCount: 1},
		types.ConsolidatedUnit{Unit: "2"},
	)

	r, err := Build(sess, state, Options{})
	require.NoError(t, err)
	require.True(t, r.ShowToilet)

	var titles []string
	for _, c := range r.Columns() {
		titles = append(titles, c.Title)
	}
	assert.Equal(t, []string{"Unit", "Kitchen", "Bathroom Installed", "Shower Installed", "Toilet Installed", "Notes"}, titles)

	assert.Equal(t, []string{"1", "1.0 GPM (2)", "No Touch.", "1.75 GPM", "", ""}, r.Cells(r.Rows[0], false))
	assert.Equal(t, []string{"1", "1.0 GPM (2)", "—", "1.75 GPM", "", ""}, r.Cells(r.Rows[0], true))
	assert.Equal(t, []string{"2", "—", "—", "—", "1.28 GPF", "Tenant refused."}, r.Cells(r.Rows[1], true))
}

func TestBuild_EmptySession(t *testing.T) {
	r, err := Build(newSession(), overrides.NewState(), Options{})
	require.NoError(t, err)
	assert.Empty(t, r.Rows)
	assert.Zero(t, r.PageCount())
}

func TestBuild_NilSession(t *testing.T) {
	_, err := Build(nil, overrides.NewState(), Options{})
	assert.Error(t, err)
}

func TestCustomerLines(t *testing.T) {
	r, err := Build(newSession(), overrides.NewState(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Housing", "Springfield, IL 62701"}, r.CustomerLines())
}
