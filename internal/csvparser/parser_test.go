package csvparser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/fixture-survey/internal/config"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

var (
	naive  = config.CSVSettings{Mode: config.CSVModeNaive, Delimiter: ","}
	quoted = config.CSVSettings{Mode: config.CSVModeQuoted, Delimiter: ","}
)

func TestParseReader_Naive(t *testing.T) {
	input := "Unit, Kitchen Aerator ,Notes\r\n" +
		"101, yes ,ok\r\n" +
		"102,\"no, thanks\",later\r\n" + // quoted comma shifts the row: dropped
		"103,,\r\n" +
		"\n"

	table, err := ParseReader(strings.NewReader(input), naive)
	require.NoError(t, err)

	assert.Equal(t, []string{"Unit", "Kitchen Aerator", "Notes"}, table.Headers)
	want := []types.RawRow{
		{"Unit": "101", "Kitchen Aerator": "yes", "Notes": "ok"},
		{"Unit": "103", "Kitchen Aerator": "", "Notes": ""},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReader_Quoted(t *testing.T) {
	input := "Unit,Notes,Shower Head\n" +
		"101,\"leak, minor\",x\n" +
		"\n" +
		"102\n"

	table, err := ParseReader(strings.NewReader(input), quoted)
	require.NoError(t, err)

	want := []types.RawRow{
		{"Unit": "101", "Notes": "leak, minor", "Shower Head": "x"},
		{"Unit": "102", "Notes": "", "Shower Head": ""},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReader_BOMAndEmptyHeaders(t *testing.T) {
	input := "\ufeffUnit,,Toilet\n1,a,yes\n"

	table, err := ParseReader(strings.NewReader(input), naive)
	require.NoError(t, err)

	assert.Equal(t, []string{"Unit", "Column_2", "Toilet"}, table.Headers)
	assert.Equal(t, "1", table.Rows[0]["Unit"])
}

func TestParseReader_Delimiters(t *testing.T) {
	table, err := ParseReader(strings.NewReader("Unit;Bath Aerator\n4;male\n"), config.CSVSettings{Delimiter: "semicolon"})
	require.NoError(t, err)
	assert.Equal(t, "male", table.Rows[0]["Bath Aerator"])

	table, err = ParseReader(strings.NewReader("Unit\tBath Aerator\n4\tfemale\n"), config.CSVSettings{Delimiter: "\\t"})
	require.NoError(t, err)
	assert.Equal(t, "female", table.Rows[0]["Bath Aerator"])
}

func TestParseReader_Empty(t *testing.T) {
	_, err := ParseReader(strings.NewReader(""), naive)
	assert.True(t, errors.Is(err, ErrEmpty))

	_, err = ParseReader(strings.NewReader(" , \n , \n"), quoted)
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestParseReader_NoHeaderRow(t *testing.T) {
	table, err := ParseReader(strings.NewReader(",,\n101,yes\n\n102\n103,,x\n"), naive)
	require.NoError(t, err)

	assert.True(t, table.SyntheticHeaders)
	assert.Equal(t, []string{"Column_1", "Column_2", "Column_3"}, table.Headers)
	want := []types.RawRow{
		{"Column_1": "101", "Column_2": "yes"},
		{"Column_1": "102"},
		{"Column_1": "103", "Column_2": "", "Column_3": "x"},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.csv")
	require.NoError(t, os.WriteFile(path, []byte("Apt,Shower Head\n7,1.5 gpm\n"), 0644))

	table, err := Parse(path, naive)
	require.NoError(t, err)
	assert.Equal(t, path, table.SourceFile)
	assert.Len(t, table.Rows, 1)

	_, err = Parse(filepath.Join(t.TempDir(), "missing.csv"), naive)
	assert.Error(t, err)
}
