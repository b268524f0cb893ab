package ingest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/fixture-survey/internal/store"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

func units(values ...string) []types.RawRow {
	rows := make([]types.RawRow, len(values))
	for i, v := range values {
		rows[i] = types.RawRow{"unit": v}
	}
	return rows
}

func TestIngest_TruncatesAtFirstEmptyUnit(t *testing.T) {
	got := Ingest(units("1", "2", "", "3"), "unit")

	if diff := cmp.Diff(units("1", "2"), got); diff != "" {
		t.Errorf("Ingest() mismatch (-want +got):\n%s", diff)
	}
}

func TestIngest_StoplistDoesNotHalt(t *testing.T) {
	got := Ingest(units("101", "Grand Total", "102", "subtotal", "N/A", "103"), "unit")

	if diff := cmp.Diff(units("101", "102", "103"), got); diff != "" {
		t.Errorf("Ingest() mismatch (-want +got):\n%s", diff)
	}
}

func TestIngest_MissingColumnTruncatesImmediately(t *testing.T) {
	rows := []types.RawRow{{"Apt": "1"}, {"Apt": "2"}}
	assert.Empty(t, Ingest(rows, "unit"))
}

func TestIngest_WhitespaceUnitIsEmpty(t *testing.T) {
	got := Ingest(units(" 7 ", "   ", "8"), "unit")
	assert.Equal(t, units(" 7 "), got)
}

func TestIngestWithReport(t *testing.T) {
	res := IngestWithReport(units("1", "Totals", "2", "", "3", "4"), "unit")

	assert.Len(t, res.Rows, 2)
	assert.Equal(t, []int{0, 2}, res.Indices)
	assert.Equal(t, 3, res.TruncatedAt)
	assert.Equal(t, 2, res.Discarded)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, Skip{RowIndex: 1, Unit: "Totals", Reason: ReasonStoplist}, res.Skipped[0])
	assert.Equal(t, Skip{RowIndex: 3, Reason: ReasonTruncated}, res.Skipped[1])
}

func TestIngestWithReport_NoTruncation(t *testing.T) {
	res := IngestWithReport(units("1", "2"), "unit")
	assert.Equal(t, -1, res.TruncatedAt)
	assert.Zero(t, res.Discarded)
	assert.Empty(t, res.Skipped)
}

func TestIsValidUnit(t *testing.T) {
	tests := []struct {
		unit string
		want bool
	}{
		{"101", true},
		{"Unit 4B", true},
		{"", false},
		{"  ", false},
		{"Grand Total", false},
		{"AVERAGE", false},
		{"Sub Total", false},
		{"Header", false},
		// Substring matching is intentionally broad.
		{"Penthouse Summit", false},
		{"Anna's", false},
	}
	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidUnit(tt.unit))
		})
	}
}

func TestResolveUnitColumn(t *testing.T) {
	headers := []string{"Date", "Apt #", "Kitchen Aerator"}

	t.Run("discovers by keyword", func(t *testing.T) {
		col, err := ResolveUnitColumn(headers, "")
		require.NoError(t, err)
		assert.Equal(t, "Apt #", col)
	})

	t.Run("explicit choice", func(t *testing.T) {
		col, err := ResolveUnitColumn(headers, "Date")
		require.NoError(t, err)
		assert.Equal(t, "Date", col)
	})

	t.Run("explicit choice must exist", func(t *testing.T) {
		_, err := ResolveUnitColumn(headers, "Building")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingUnitColumn))
	})

	t.Run("no fallback to first column", func(t *testing.T) {
		_, err := ResolveUnitColumn([]string{"Date", "Tech"}, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingUnitColumn))
		assert.Contains(t, err.Error(), `"apartment"`)
	})
}

func TestColumnCache(t *testing.T) {
	cache := NewColumnCache(store.NewMemoryStore())

	col, err := cache.Get()
	require.NoError(t, err)
	assert.Equal(t, "", col)

	require.NoError(t, cache.Set("Room"))
	col, err = cache.Get()
	require.NoError(t, err)
	assert.Equal(t, "Room", col)

	require.NoError(t, cache.Forget())
	col, err = cache.Get()
	require.NoError(t, err)
	assert.Equal(t, "", col)
}
