package session

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/fixture-survey/internal/discovery"
	"github.com/ginjaninja78/fixture-survey/internal/store"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

func sampleSession() *Session {
	sess := New("survey.csv")
	sess.Headers = []string{"Unit", "Kitchen Aerator"}
	sess.UnitColumn = "Unit"
	sess.Roles = discovery.DiscoverFixtureColumns(sess.Headers)
	sess.Strategy = discovery.StrategyHeaderKeyword
	sess.Customer = CustomerInfo{CustomerName: "Acme Housing", City: "Tulsa"}
	sess.Raw = []types.RawRow{{"Unit": "1", "Kitchen Aerator": "yes"}}
	sess.Base = []types.ConsolidatedUnit{{Unit: "1", KitchenAeratorCount: 1}}
	sess.ToiletCount = 4
	return sess
}

func TestNew(t *testing.T) {
	sess := New("a.xlsx")
	_, err := uuid.Parse(sess.ID)
	assert.NoError(t, err)
	assert.Equal(t, "a.xlsx", sess.SourceFile)
	assert.False(t, sess.CreatedAt.IsZero())
}

func TestSaveLoad(t *testing.T) {
	s := store.NewMemoryStore()
	want := sampleSession()
	require.NoError(t, want.Save(s))

	got, err := Load(s)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_NoSession(t *testing.T) {
	_, err := Load(store.NewMemoryStore())
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestLoad_Corrupt(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(KeySession, "{"))
	_, err := Load(s)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoSession))
}

func TestSaveCustomer(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, sampleSession().Save(s))

	require.NoError(t, SaveCustomer(s, CustomerInfo{CustomerName: "Beta LLC"}))

	got, err := Load(s)
	require.NoError(t, err)
	assert.Equal(t, CustomerInfo{CustomerName: "Beta LLC"}, got.Customer)
}

func TestReset(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, sampleSession().Save(s))
	require.NoError(t, s.Set("unifiedNotes", `{"1":"x"}`))

	require.NoError(t, Reset(s))

	_, err := Load(s)
	assert.True(t, errors.Is(err, ErrNoSession))
	_, ok, err := s.Get("unifiedNotes")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplace(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, New("old.csv").Save(s))
	require.NoError(t, s.Set("unifiedNotes", `{"1":"x"}`))

	want := sampleSession()
	require.NoError(t, Replace(s, want, map[string]string{"selectedUnitColumn": "Unit"}))

	got, err := Load(s)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	_, ok, err := s.Get("unifiedNotes")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := s.Get("selectedUnitColumn")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Unit", v)
}
