// =============================================================================
// Fixture Survey - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the survey tool:
//   - Survey file discovery (newest export in a directory)
//   - Report file naming
//   - Archival of reports that would otherwise be overwritten
//   - Ingestion summary logs
//   - Directory management
//
// ARCHIVAL STRATEGY:
//   - Reports are written to the output directory
//   - When an archive directory is configured and a report file of the same
//     name already exists, the old file is copied to the archive first
//   - Archived copies can be grouped in date-based subdirectories
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SurveyExtensions are the file extensions accepted as survey input.
var SurveyExtensions = []string{".csv", ".txt", ".xlsx", ".xlsm"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for report output.
type FileManager struct {
	// OutputDir is the directory where reports are written.
	OutputDir string

	// ArchiveDir receives copies of reports that are about to be
	// overwritten. Empty disables archival.
	ArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: archive/2024/01/15/report.pdf
	UseTimestampSubdirs bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(outputDir, archiveDir string) *FileManager {
	return &FileManager{
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output and archive directories if they don't
// exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.ArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// IsSurveyFile reports whether path has a survey file extension.
func IsSurveyFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range SurveyExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// DiscoverInputFiles lists the survey files of a directory, newest first.
//
// PARAMETERS:
//   - dir: The directory to scan. Subdirectories are not entered.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read.
func DiscoverInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	var candidates []candidate

	for _, entry := range entries {
		if entry.IsDir() || !IsSurveyFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(dir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].modTime.Equal(candidates[j].modTime) {
			return candidates[i].path < candidates[j].path
		}
		return candidates[i].modTime.After(candidates[j].modTime)
	})

	files := make([]string, len(candidates))
	for i, c := range candidates {
		files[i] = c.path
	}
	return files, nil
}

// ResolveInputFile returns path itself for a file, or the newest survey file
// when path is a directory.
func ResolveInputFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access input: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	files, err := DiscoverInputFiles(path)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no survey files (%s) found in %s", strings.Join(SurveyExtensions, ", "), path)
	}
	return files[0], nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// PrepareOutput makes sure a report can be written to filePath. When an
// archive directory is configured and the file already exists, it is copied
// to the archive first.
//
// RETURNS:
//   - The archive path, or "" when nothing was archived.
//   - An error if the directories cannot be created or the copy fails.
func (fm *FileManager) PrepareOutput(filePath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if fm.ArchiveDir == "" || !FileExists(filePath) {
		return "", nil
	}

	archivePath := fm.getArchivePath(filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", filePath, err)
	}

	return archivePath, nil
}

// getArchivePath builds the archive path, prefixing the file name with the
// archival time so repeated archives never collide.
func (fm *FileManager) getArchivePath(filePath string) string {
	now := time.Now()
	dir := fm.ArchiveDir
	if fm.UseTimestampSubdirs {
		dir = filepath.Join(dir, now.Format("2006"), now.Format("01"), now.Format("02"))
	}
	return filepath.Join(dir, now.Format("20060102_150405.000000000")+"_"+filepath.Base(filePath))
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// unsafeChars matches characters that are replaced in file name parameters.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFileName replaces every run of characters that are unsafe in file
// names with a single underscore.
func SanitizeFileName(s string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(s), "_"), "_")
}

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {time}      - Current time (HHMMSS)
//     {customer}  - Customer name
//     {ext}       - File extension of the report format
//   - params: A map of placeholder values. Values are sanitized.
//
// RETURNS:
//   - The generated file name. When the format has no {ext} placeholder and
//     the name lacks the extension, it is appended.
//
// EXAMPLE:
//
//	format: "{customer}_{timestamp}.{ext}"
//	params: {"customer": "Acme Housing", "ext": "pdf"}
//	output: "Acme_Housing_20240115_143022.pdf"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
		"{customer}":  "report",
	}

	for key, value := range params {
		if v := SanitizeFileName(value); v != "" {
			replacements["{"+key+"}"] = v
		}
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext := SanitizeFileName(params["ext"]); ext != "" && !strings.HasSuffix(strings.ToLower(result), "."+strings.ToLower(ext)) {
		result += "." + ext
	}

	return result
}

// =============================================================================
// INGESTION SUMMARY
// =============================================================================

// IngestSummary contains summary information about one ingestion run.
type IngestSummary struct {
	StartTime   time.Time
	EndTime     time.Time
	InputFile   string
	Sheet       string
	UnitColumn  string
	Strategy    string
	RowsDecoded int
	RowsKept    int
	TruncatedAt int
	Discarded   int
	Units       int
	Toilets     int
	Skipped     []SkippedRow
}

// SkippedRow is one input row that was left out of the consolidation.
type SkippedRow struct {
	// Row is the 1-based data row number.
	Row    int
	Unit   string
	Reason string
}

// WriteIngestSummary writes an ingestion summary to a log file.
//
// PARAMETERS:
//   - summary: The ingestion summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteIngestSummary(summary IngestSummary, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create summary directory: %w", err)
	}

	timestamp := summary.EndTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("ingest_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}

	err = writeAndClose(file, func(w io.Writer) error {
		return writeIngestSummary(w, summary)
	})
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", summaryPath, err)
	}

	return summaryPath, nil
}

// writeAndClose runs write against wc and closes it. A close error is
// returned when write succeeded, since buffered data may not have landed.
func writeAndClose(wc io.WriteCloser, write func(io.Writer) error) error {
	if err := write(wc); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}

func writeIngestSummary(w io.Writer, summary IngestSummary) error {
	writer := bufio.NewWriter(w)

	sheet := ""
	if summary.Sheet != "" {
		sheet = fmt.Sprintf("  Sheet:          %s\n", summary.Sheet)
	}
	truncated := "no"
	if summary.TruncatedAt >= 0 {
		truncated = fmt.Sprintf("at data row %d (%d rows discarded)", summary.TruncatedAt+1, summary.Discarded)
	}

	fmt.Fprintf(writer, "Fixture Survey - Ingestion Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Input:          %s\n"+
		"%s"+
		"  Unit Column:    %s\n"+
		"  Strategy:       %s\n\n"+
		"Statistics:\n"+
		"  Rows Decoded:   %d\n"+
		"  Rows Kept:      %d\n"+
		"  Rows Skipped:   %d\n"+
		"  Truncated:      %s\n"+
		"  Units:          %d\n"+
		"  Toilets:        %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.InputFile,
		sheet,
		summary.UnitColumn,
		summary.Strategy,
		summary.RowsDecoded,
		summary.RowsKept,
		len(summary.Skipped),
		truncated,
		summary.Units,
		summary.Toilets)

	if len(summary.Skipped) > 0 {
		writer.WriteString("Skipped Rows:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, s := range summary.Skipped {
			fmt.Fprintf(writer, "  Row %-6d %-12s %q\n", s.Row, s.Reason, s.Unit)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush summary file: %w", err)
	}
	return nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	return writeAndClose(destFile, func(w io.Writer) error {
		if _, err := io.Copy(w, sourceFile); err != nil {
			return err
		}
		return destFile.Sync()
	})
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
