package converter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/fixture-survey/internal/config"
	"github.com/ginjaninja78/fixture-survey/internal/store"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

func TestApplyTransformation(t *testing.T) {
	row := types.RawRow{"Unit": "", "Building": "B"}

	tests := []struct {
		name   string
		value  string
		action config.TransformationAction
		want   string
	}{
		{"prepend", "101", config.TransformationAction{Type: "prepend_string", Value: "A-"}, "A-101"},
		{"append", "101", config.TransformationAction{Type: "append_string", Value: "B"}, "101B"},
		{"trim", "  x ", config.TransformationAction{Type: "trim"}, "x"},
		{"uppercase", "done", config.TransformationAction{Type: "uppercase"}, "DONE"},
		{"lowercase", "DONE", config.TransformationAction{Type: "lowercase"}, "done"},
		{"replace", "1,0 gpm", config.TransformationAction{Type: "replace", Find: ",", Value: "."}, "1.0 gpm"},
		{"replace without find", "abc", config.TransformationAction{Type: "replace", Value: "x"}, "abc"},
		{"regex replace", "Apt 4B", config.TransformationAction{Type: "regex_replace", Find: `^Apt\s*`, Value: ""}, "4B"},
		{"normalize whitespace", " a \t b  ", config.TransformationAction{Type: "normalize_whitespace"}, "a b"},
		{"extract digits", "Apt. 0101", config.TransformationAction{Type: "extract_digits"}, "0101"},
		{"remove leading zeros", "0101", config.TransformationAction{Type: "remove_leading_zeros"}, "101"},
		{"remove leading zeros keeps one", "000", config.TransformationAction{Type: "remove_leading_zeros"}, "0"},
		{"remove leading zeros on blank", "", config.TransformationAction{Type: "remove_leading_zeros"}, ""},
		{"lookup ignores case", " DONE ", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"done": "yes"}}, "yes"},
		{"lookup miss", "later", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"done": "yes"}}, "later"},
		{"lookup default", "later", config.TransformationAction{Type: "lookup_with_default", Value: "no", LookupTable: map[string]string{"done": "yes"}}, "no"},
		{"empty default", " ", config.TransformationAction{Type: "if_empty_use_default", Value: "0"}, "0"},
		{"empty from field", "", config.TransformationAction{Type: "if_empty_use_field", Value: "Building"}, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyTransformation(tt.value, tt.action, row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyTransformation_Errors(t *testing.T) {
	_, err := ApplyTransformation("x", config.TransformationAction{Type: "explode"}, nil)
	assert.Error(t, err)

	_, err = ApplyTransformation("x", config.TransformationAction{Type: "regex_replace", Find: "("}, nil)
	assert.Error(t, err)
}

func TestTransformRows(t *testing.T) {
	rules := []config.TransformationRule{
		{Column: config.AllColumns, Actions: []config.TransformationAction{{Type: "trim"}}},
		{Column: "Unit", Actions: []config.TransformationAction{{Type: "extract_digits"}, {Type: "remove_leading_zeros"}}},
	}
	rows := []types.RawRow{{"Unit": " Apt 007 ", "Kitchen": " yes "}}

	got, err := NewTransformer(rules).TransformRows(rows)
	require.NoError(t, err)
	assert.Equal(t, []types.RawRow{{"Unit": "7", "Kitchen": "yes"}}, got)
	assert.Equal(t, " Apt 007 ", rows[0]["Unit"], "input rows are not modified")

	same, err := NewTransformer(nil).TransformRows(rows)
	require.NoError(t, err)
	assert.Equal(t, rows, same)
}

func TestRun_CellRules(t *testing.T) {
	csv := "Unit,Kitchen Aerator\nApt 01,Done\nApt 02,Refused\n"

	cfg := config.Default()
	cfg.CellRules = []config.TransformationRule{
		{Column: "Unit", Actions: []config.TransformationAction{{Type: "extract_digits"}, {Type: "remove_leading_zeros"}}},
		{Column: "Kitchen Aerator", Actions: []config.TransformationAction{{Type: "lookup", LookupTable: map[string]string{"done": "yes"}}}},
	}

	result := New(writeFile(t, "survey.csv", csv), cfg, store.NewMemoryStore(), Options{}, nil).Run(context.Background())
	require.NoError(t, result.Error)

	assert.Equal(t, []types.ConsolidatedUnit{
		{Unit: "1", KitchenAeratorCount: 1},
		{Unit: "2"},
	}, result.Session.Base)
}
