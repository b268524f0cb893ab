package utils

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOutputFileName(t *testing.T) {
	t.Run("placeholders", func(t *testing.T) {
		name := GenerateOutputFileName("{customer}_{date}.{ext}", map[string]string{
			"customer": "Acme Housing / East",
			"ext":      "pdf",
		})
		assert.True(t, strings.HasPrefix(name, "Acme_Housing_East_"))
		assert.True(t, strings.HasSuffix(name, ".pdf"))
		assert.Equal(t, 1, strings.Count(name, ".pdf"))
	})

	t.Run("appends missing extension", func(t *testing.T) {
		name := GenerateOutputFileName("report_{uuid}", map[string]string{"ext": "xlsx"})
		assert.True(t, strings.HasSuffix(name, ".xlsx"))
		assert.Len(t, name, len("report_")+36+len(".xlsx"))
	})

	t.Run("empty customer", func(t *testing.T) {
		name := GenerateOutputFileName("{customer}.{ext}", map[string]string{"customer": "  ", "ext": "json"})
		assert.Equal(t, "report.json", name)
	})
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "Elm_Court_Bldg_2", SanitizeFileName(" Elm Court: Bldg #2 "))
	assert.Equal(t, "", SanitizeFileName("///"))
}

func TestIsSurveyFile(t *testing.T) {
	assert.True(t, IsSurveyFile("a.CSV"))
	assert.True(t, IsSurveyFile("dir/b.xlsx"))
	assert.False(t, IsSurveyFile("c.xls"))
	assert.False(t, IsSurveyFile("d.pdf"))
}

func TestResolveInputFile(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "march.csv")
	newer := filepath.Join(dir, "april.xlsx")
	require.NoError(t, os.WriteFile(older, []byte("Unit\n1"), 0644))
	require.NoError(t, os.WriteFile(newer, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.pdf"), []byte("x"), 0644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	files, err := DiscoverInputFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{newer, older}, files)

	got, err := ResolveInputFile(dir)
	require.NoError(t, err)
	assert.Equal(t, newer, got)

	got, err = ResolveInputFile(older)
	require.NoError(t, err)
	assert.Equal(t, older, got)

	_, err = ResolveInputFile(t.TempDir())
	assert.Error(t, err)

	_, err = ResolveInputFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestPrepareOutput(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(filepath.Join(root, "out"), filepath.Join(root, "archive"))
	fm.UseTimestampSubdirs = true
	require.NoError(t, fm.EnsureDirectories())

	target := filepath.Join(fm.OutputDir, "nested", "report.pdf")

	archived, err := fm.PrepareOutput(target)
	require.NoError(t, err)
	assert.Empty(t, archived)
	assert.DirExists(t, filepath.Dir(target))

	require.NoError(t, os.WriteFile(target, []byte("v1"), 0644))
	archived, err = fm.PrepareOutput(target)
	require.NoError(t, err)
	require.NotEmpty(t, archived)
	assert.True(t, strings.HasPrefix(archived, fm.ArchiveDir))
	assert.True(t, strings.HasSuffix(archived, "_report.pdf"))

	data, err := os.ReadFile(archived)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}

func TestPrepareOutput_NoArchive(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(dir, "")
	target := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0644))

	archived, err := fm.PrepareOutput(target)
	require.NoError(t, err)
	assert.Empty(t, archived)
}

func TestWriteIngestSummary(t *testing.T) {
	start := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	summary := IngestSummary{
		StartTime:   start,
		EndTime:     start.Add(1500 * time.Millisecond),
		InputFile:   "survey.xlsx",
		Sheet:       "Sheet1",
		UnitColumn:  "Apt",
		Strategy:    "header_keyword_search",
		RowsDecoded: 12,
		RowsKept:    8,
		TruncatedAt: 9,
		Discarded:   2,
		Units:       5,
		Toilets:     3,
		Skipped: []SkippedRow{
			{Row: 4, Unit: "Subtotal", Reason: "stoplist"},
			{Row: 10, Reason: "empty_unit"},
		},
	}

	path, err := WriteIngestSummary(summary, filepath.Join(t.TempDir(), "logs"))
	require.NoError(t, err)
	assert.Equal(t, "ingest_summary_20260201_080001.txt", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "Sheet:          Sheet1")
	assert.Contains(t, out, "Duration:       1.5s")
	assert.Contains(t, out, "Truncated:      at data row 10 (2 rows discarded)")
	assert.Contains(t, out, `"Subtotal"`)
	assert.Contains(t, out, "End of Summary")
}

type closeRecorder struct {
	bytes.Buffer
	closed   bool
	closeErr error
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.closeErr
}

func TestWriteAndClose(t *testing.T) {
	diskFull := errors.New("no space left on device")
	writeFailed := errors.New("short write")

	tests := []struct {
		name     string
		write    error
		closeErr error
		want     error
	}{
		{"ok", nil, nil, nil},
		{"close error surfaces", nil, diskFull, diskFull},
		{"write error wins", writeFailed, diskFull, writeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wc := &closeRecorder{closeErr: tt.closeErr}
			err := writeAndClose(wc, func(w io.Writer) error {
				if _, err := io.WriteString(w, "summary"); err != nil {
					return err
				}
				return tt.write
			})

			assert.ErrorIs(t, err, tt.want)
			if tt.want == nil {
				assert.NoError(t, err)
			}
			assert.True(t, wc.closed, "file must be closed on every path")
			assert.Equal(t, "summary", wc.String())
		})
	}
}
