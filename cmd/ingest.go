// =============================================================================
// Fixture Survey - Ingest Command
// =============================================================================
//
// This file defines the 'ingest' command, which loads a survey export and
// replaces the current session with its consolidated units.
//
// COMMAND USAGE:
//   survey ingest <file|directory> [flags]
//
//   Given a directory, the newest survey file in it is ingested.
//
// FLAGS:
//   --unit-column    : Use this column as the unit identifier
//   --notes-column   : Copy this column into the unit notes (repeatable)
//   --cell           : Copy one cell, "row:column", into the unit notes (repeatable)
//   --customer ...   : Customer information printed on the report
//   --summary        : Write an ingestion summary (and any validation findings)
//                      to the output directory
//
// PROCESSING PIPELINE:
//   1. Decode the file (CSV or XLSX)
//   2. Resolve the unit column
//   3. Validate the selections
//   4. Ingest rows (stoplist, truncation at the first empty unit)
//   5. Detect fixture columns and consolidate per unit
//   6. Persist the new session
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/fixture-survey/internal/converter"
	"github.com/ginjaninja78/fixture-survey/internal/session"
	"github.com/ginjaninja78/fixture-survey/internal/types"
	"github.com/ginjaninja78/fixture-survey/internal/validation"
	"github.com/ginjaninja78/fixture-survey/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	ingestUnitColumn   string
	ingestNotesColumns []string
	ingestCells        []string
	ingestSummary      bool
	ingestCustomer     session.CustomerInfo
)

// =============================================================================
// INGEST COMMAND DEFINITION
// =============================================================================

// ingestCmd represents the 'ingest' command.
var ingestCmd = &cobra.Command{
	Use:   "ingest <file|directory>",
	Short: "Load a survey export and consolidate it per unit",
	Long: `The ingest command decodes a survey export (.csv, .txt, .xlsx or .xlsm),
finds the unit column, keeps the data rows up to the first row without a unit,
skips summary rows such as "Total" or "Subtotal", and consolidates the fixture
installations of every unit.

The result replaces the current session: every earlier edit is discarded.
A file whose unit column cannot be found is rejected and the current session
is kept.`,

	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, args[0])
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(ingestCmd)

	flags := ingestCmd.Flags()
	flags.StringVar(&ingestUnitColumn, "unit-column", "", "Column holding the unit identifier (default: discovered)")
	flags.StringSliceVar(&ingestNotesColumns, "notes-column", nil, "Column copied into the unit notes (repeatable)")
	flags.StringSliceVar(&ingestCells, "cell", nil, `Cell copied into the unit notes, as "row:column" with a 0-based data row (repeatable)`)
	flags.BoolVar(&ingestSummary, "summary", false, "Write an ingestion summary log to the output directory")

	flags.StringVar(&ingestCustomer.CustomerName, "customer", "", "Customer name")
	flags.StringVar(&ingestCustomer.PropertyName, "property", "", "Property name")
	flags.StringVar(&ingestCustomer.Address, "address", "", "Street address")
	flags.StringVar(&ingestCustomer.City, "city", "", "City")
	flags.StringVar(&ingestCustomer.State, "state", "", "State")
	flags.StringVar(&ingestCustomer.Zip, "zip", "", "ZIP code")
	flags.StringVar(&ingestCustomer.Date, "date", "", "Survey date")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runIngest(cmd *cobra.Command, input string) error {
	startTime := time.Now()

	inputPath, err := utils.ResolveInputFile(input)
	if err != nil {
		return err
	}

	cells := make([]types.CellRef, 0, len(ingestCells))
	for _, raw := range ingestCells {
		ref, err := types.ParseCellRef(raw)
		if err != nil {
			return err
		}
		cells = append(cells, ref)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv := converter.New(inputPath, cfg, st, converter.Options{
		UnitColumn:   ingestUnitColumn,
		NotesColumns: ingestNotesColumns,
		CellNotes:    cells,
		Customer:     ingestCustomer,
	}, logger)

	result := conv.Run(ctx)

	out := cmd.OutOrStdout()
	if len(result.Findings) > 0 {
		fmt.Fprint(out, validation.FormatErrors(result.Findings))
		if ingestSummary {
			writeFindings(result.Findings, startTime)
		}
	}
	if !result.Success {
		return fmt.Errorf("ingest %s: %w", inputPath, result.Error)
	}

	stats := result.Stats
	fmt.Fprintf(out, "Ingested %s\n", inputPath)
	fmt.Fprintf(out, "  Unit column:   %s\n", result.Session.UnitColumn)
	fmt.Fprintf(out, "  Detection:     %s\n", stats.Strategy)
	fmt.Fprintf(out, "  Rows decoded:  %d\n", stats.RowsDecoded)
	fmt.Fprintf(out, "  Rows kept:     %d\n", stats.RowsKept)
	fmt.Fprintf(out, "  Rows skipped:  %d\n", stats.RowsSkipped)
	if stats.TruncatedAt >= 0 {
		fmt.Fprintf(out, "  Stopped at data row %d (%d rows after it ignored)\n", stats.TruncatedAt+1, stats.Discarded)
	}
	fmt.Fprintf(out, "  Units:         %d\n", stats.Units)
	fmt.Fprintf(out, "  Toilets:       %d\n", stats.Toilets)

	if ingestSummary {
		summary := utils.IngestSummary{
			StartTime:   startTime,
			EndTime:     time.Now(),
			InputFile:   inputPath,
			Sheet:       result.Session.Sheet,
			UnitColumn:  result.Session.UnitColumn,
			Strategy:    string(stats.Strategy),
			RowsDecoded: stats.RowsDecoded,
			RowsKept:    stats.RowsKept,
			TruncatedAt: stats.TruncatedAt,
			Discarded:   stats.Discarded,
			Units:       stats.Units,
			Toilets:     stats.Toilets,
		}
		for _, skip := range result.Skipped {
			summary.Skipped = append(summary.Skipped, utils.SkippedRow{
				Row:    skip.RowIndex + 1,
				Unit:   skip.Unit,
				Reason: string(skip.Reason),
			})
		}

		path, err := utils.WriteIngestSummary(summary, cfg.OutputDir)
		if err != nil {
			return err
		}
		logger.Info("Ingestion summary written", zap.String("path", path))
		fmt.Fprintf(out, "Summary written to %s\n", path)
	}

	return nil
}

// writeFindings keeps the validation findings of an ingest next to its
// summary. Failures are logged only.
func writeFindings(findings []*validation.ValidationError, at time.Time) {
	fm := utils.NewFileManager(cfg.OutputDir, "")
	if err := fm.EnsureDirectories(); err != nil {
		logger.Warn("Failed to write validation log", zap.Error(err))
		return
	}

	path := filepath.Join(cfg.OutputDir, fmt.Sprintf("ingest_errors_%s.log", at.Format("20060102_150405")))
	if err := validation.WriteErrorLog(findings, path); err != nil {
		logger.Warn("Failed to write validation log", zap.Error(err))
		return
	}
	logger.Info("Validation log written", zap.String("path", path))
}
