// =============================================================================
// Fixture Survey - Converter Module
// =============================================================================
//
// This module orchestrates the pipeline for one uploaded survey file, from
// decoding to the persisted session.
//
// CONVERSION PIPELINE:
//   1. Decode the CSV or XLSX file into a table, then apply the cell rules
//   2. Resolve the unit column (explicit choice, cached choice, keywords)
//   3. Validate the operator's column selections
//   4. Ingest: keep the data region, skip summary rows
//   5. Resolve the fixture columns with the configured strategy
//   6. Consolidate rows into one record per unit, count toilets
//   7. Replace the stored session with the new one
//
// Decoding is the only step that touches the disk and the only one that
// honours cancellation. A failure at any step, the final replace included,
// leaves the previous session and its edits in place.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/fixture-survey/internal/classify"
	"github.com/ginjaninja78/fixture-survey/internal/config"
	"github.com/ginjaninja78/fixture-survey/internal/consolidate"
	"github.com/ginjaninja78/fixture-survey/internal/csvparser"
	"github.com/ginjaninja78/fixture-survey/internal/discovery"
	"github.com/ginjaninja78/fixture-survey/internal/ingest"
	"github.com/ginjaninja78/fixture-survey/internal/session"
	"github.com/ginjaninja78/fixture-survey/internal/store"
	"github.com/ginjaninja78/fixture-survey/internal/types"
	"github.com/ginjaninja78/fixture-survey/internal/validation"
	"github.com/ginjaninja78/fixture-survey/internal/xlsxparser"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Session is the new session. Nil if processing failed.
	Session *session.Session

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Skipped lists the rows left out by ingestion.
	Skipped []ingest.Skip

	// Findings are the validation warnings (and errors, on failure).
	Findings []*validation.ValidationError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	RowsDecoded int
	RowsKept    int
	RowsSkipped int

	// TruncatedAt is the index of the row that ended the data region, or -1.
	TruncatedAt int

	// Discarded counts the rows after TruncatedAt.
	Discarded int

	Units   int
	Toilets int

	// Strategy is the fixture detection strategy that was applied.
	Strategy discovery.Strategy

	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options are the per-upload operator choices.
type Options struct {
	// UnitColumn overrides unit column discovery.
	UnitColumn string

	// NotesColumns are copied into the unit notes. Defaults to the
	// configured notes columns.
	NotesColumns []string

	// CellNotes are individual cells copied into the unit notes.
	CellNotes []types.CellRef

	// Customer is stored with the session.
	Customer session.CustomerInfo

	// Classify overrides the installed-value classifier.
	Classify classify.Func
}

// Converter processes one survey file.
type Converter struct {
	inputPath string
	cfg       *config.Config
	store     store.Store
	opts      Options
	logger    *zap.Logger
}

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The path to the survey file.
//   - cfg: The application configuration.
//   - s: The store the session is written to.
//   - opts: The operator's choices for this upload.
//   - logger: The logger; nil disables logging.
func New(inputPath string, cfg *config.Config, s store.Store, opts Options, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Converter{
		inputPath: inputPath,
		cfg:       cfg,
		store:     s,
		opts:      opts,
		logger:    logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the file.
func (c *Converter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{
		FilePath: c.inputPath,
		Stats:    ProcessingStats{TruncatedAt: -1},
	}

	fail := func(err error) Result {
		result.Error = err
		result.Stats.ProcessingTime = time.Since(startTime)
		c.logger.Error("Processing failed", zap.String("file", c.inputPath), zap.Error(err))
		return result
	}

	c.logger.Info("Processing file", zap.String("file", c.inputPath))

	// =========================================================================
	// STEP 1: DECODE
	// =========================================================================

	table, err := Decode(ctx, c.inputPath, c.cfg.CSV)
	if err != nil {
		return fail(err)
	}
	result.Stats.RowsDecoded = len(table.Rows)

	if len(c.cfg.CellRules) > 0 {
		rows, err := NewTransformer(c.cfg.CellRules).TransformRows(table.Rows)
		if err != nil {
			return fail(fmt.Errorf("failed to apply cell rules: %w", err))
		}
		table.Rows = rows
		c.logger.Debug("Applied cell rules", zap.Int("rules", len(c.cfg.CellRules)))
	}

	headers := table.Headers
	if len(headers) == 0 || table.SyntheticHeaders {
		headers = discovery.SampleHeaders(table.Rows, c.cfg.Detection.HeaderSampleRows)
	}

	c.logger.Debug("Decoded file",
		zap.Int("rows", len(table.Rows)),
		zap.Strings("headers", headers))

	// =========================================================================
	// STEP 2: UNIT COLUMN
	// =========================================================================

	unitColumn, err := ingest.ResolveUnitColumn(headers, c.explicitUnitColumn(headers))
	if err != nil {
		return fail(err)
	}

	// =========================================================================
	// STEP 3: VALIDATE SELECTIONS
	// =========================================================================

	notesColumns := c.opts.NotesColumns
	if notesColumns == nil {
		notesColumns = c.cfg.Detection.NotesColumns
	}

	check := validation.ValidateSelection(validation.Selection{
		Headers:      headers,
		RowCount:     len(table.Rows),
		UnitColumn:   unitColumn,
		NotesColumns: notesColumns,
		CellNotes:    c.opts.CellNotes,
		Strategy:     c.cfg.Strategy(),
		FixedColumns: c.cfg.Detection.FixedColumns,
	})
	result.Findings = check.Errors
	for _, finding := range check.Errors {
		if finding.Severity == validation.SeverityWarning {
			c.logger.Warn("Selection warning", zap.String("finding", finding.Error()))
		}
	}
	if !check.IsValid {
		return fail(fmt.Errorf("invalid selection: %w", check.Err()))
	}

	// =========================================================================
	// STEP 4: INGEST
	// =========================================================================

	ingested := ingest.IngestWithReport(table.Rows, unitColumn)
	result.Skipped = ingested.Skipped
	result.Stats.RowsKept = len(ingested.Rows)
	result.Stats.RowsSkipped = len(ingested.Skipped)
	result.Stats.TruncatedAt = ingested.TruncatedAt
	result.Stats.Discarded = ingested.Discarded

	if ingested.TruncatedAt >= 0 {
		c.logger.Debug("Data region ends at empty unit",
			zap.Int("row", ingested.TruncatedAt),
			zap.Int("discarded", ingested.Discarded))
	}

	// =========================================================================
	// STEP 5: FIXTURE COLUMNS
	// =========================================================================

	roles, strategy := discovery.Resolve(headers, c.cfg.Strategy(), c.cfg.Detection.FixedColumns)
	roles.Unit = unitColumn
	result.Stats.Strategy = strategy

	c.logger.Debug("Resolved fixture columns",
		zap.String("strategy", string(strategy)),
		zap.String("kitchen", roles.Column(types.Kitchen)),
		zap.String("bathroom", roles.Column(types.Bathroom)),
		zap.String("shower", roles.Column(types.Shower)),
		zap.String("toilet", roles.Column(types.Toilet)))

	// =========================================================================
	// STEP 6: CONSOLIDATE
	// =========================================================================

	aggregator := &consolidate.Aggregator{
		UnitColumn:   unitColumn,
		Roles:        roles,
		Strategy:     strategy,
		Classify:     c.opts.Classify,
		NotesColumns: notesColumns,
		CellNotes:    cellNotesByPosition(c.opts.CellNotes, ingested.Indices),
	}
	base := aggregator.Aggregate(ingested.Rows)
	toilets := consolidate.CountToilets(table.Rows, discovery.ToiletColumns(roles, strategy))

	result.Stats.Units = len(base)
	result.Stats.Toilets = toilets

	// =========================================================================
	// STEP 7: PERSIST
	// =========================================================================

	sess := session.New(c.inputPath)
	sess.Sheet = table.Sheet
	sess.Headers = headers
	sess.UnitColumn = unitColumn
	sess.NotesColumns = notesColumns
	sess.Roles = roles
	sess.Strategy = strategy
	sess.Customer = c.opts.Customer
	sess.Raw = table.Rows
	sess.Base = base
	sess.ToiletCount = toilets

	// The new session replaces the old one and its edits in one step.
	if err := session.Replace(c.store, sess, map[string]string{ingest.UnitColumnKey: unitColumn}); err != nil {
		return fail(err)
	}

	result.Session = sess
	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	c.logger.Info("Processing complete",
		zap.String("file", c.inputPath),
		zap.Int("rows", result.Stats.RowsDecoded),
		zap.Int("units", result.Stats.Units),
		zap.Duration("duration", result.Stats.ProcessingTime))

	return result
}

// explicitUnitColumn returns the operator's unit column, then the configured
// one, then the column cached from the previous upload if this file has it.
func (c *Converter) explicitUnitColumn(headers []string) string {
	if c.opts.UnitColumn != "" {
		return c.opts.UnitColumn
	}
	if c.cfg.Detection.UnitColumn != "" {
		return c.cfg.Detection.UnitColumn
	}

	cached, err := ingest.NewColumnCache(c.store).Get()
	if err != nil {
		c.logger.Warn("Ignoring unit column cache", zap.Error(err))
		return ""
	}
	if slices.Contains(headers, cached) {
		return cached
	}
	return ""
}

// cellNotesByPosition re-keys cell references from input row indices to
// positions among the ingested rows. Cells on dropped rows are ignored.
func cellNotesByPosition(refs []types.CellRef, indices []int) map[int][]string {
	if len(refs) == 0 {
		return nil
	}

	position := make(map[int]int, len(indices))
	for pos, idx := range indices {
		position[idx] = pos
	}

	notes := make(map[int][]string)
	for _, ref := range refs {
		if pos, ok := position[ref.Row]; ok {
			notes[pos] = append(notes[pos], ref.Column)
		}
	}
	return notes
}

// =============================================================================
// DECODING
// =============================================================================

// Decode reads a survey file into a table, choosing the decoder by extension.
func Decode(ctx context.Context, path string, csvSettings config.CSVSettings) (*types.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		table *types.Table
		err   error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		table, err = csvparser.Parse(path, csvSettings)
	case ".xlsx", ".xlsm":
		table, err = xlsxparser.Parse(path)
	case ".xls":
		return nil, fmt.Errorf("%w: legacy .xls workbooks must be saved as .xlsx or .csv first", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: %q (expected .csv or .xlsx)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	return table, nil
}
