// =============================================================================
// Fixture Survey - Report Command
// =============================================================================
//
// This file defines the 'report' command, which renders the current session
// with all operator edits applied.
//
// COMMAND USAGE:
//   survey report [flags]
//
// FLAGS:
//   --format     : table (default), pdf, xlsx, json or xml
//   --output     : Output file. Text formats default to stdout, pdf and xlsx
//                  to a generated name in the output directory ("-" forces stdout)
//   --title      : Report title (default from config)
//   --page-size  : Units per page (default from config)
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/fixture-survey/internal/overrides"
	"github.com/ginjaninja78/fixture-survey/internal/render"
	"github.com/ginjaninja78/fixture-survey/internal/report"
	"github.com/ginjaninja78/fixture-survey/pkg/utils"
)

var (
	reportFormat   string
	reportOutput   string
	reportTitle    string
	reportPageSize int
)

// reportCmd represents the 'report' command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the unit report",
	Long: `The report command merges the consolidated units with every edit, sorts the
units naturally (2 before 10, blank units first) and renders the pages.

Every format is built from the same report, so the terminal preview and the
printed document always show the same rows in the same order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	flags := reportCmd.Flags()
	flags.StringVarP(&reportFormat, "format", "f", string(render.FormatTable), "Output format: table, pdf, xlsx, json or xml")
	flags.StringVarP(&reportOutput, "output", "o", "", `Output file ("-" for stdout)`)
	flags.StringVar(&reportTitle, "title", "", "Report title (default from config)")
	flags.IntVar(&reportPageSize, "page-size", 0, "Units per page (default from config)")
}

func runReport(cmd *cobra.Command) error {
	format, err := render.ParseFormat(reportFormat)
	if err != nil {
		return err
	}

	sess, err := loadSession()
	if err != nil {
		return err
	}
	state, err := overrides.Load(st, logger)
	if err != nil {
		return err
	}

	opts := report.Options{
		Title:    cfg.Report.Title,
		PageSize: cfg.Report.PageSize,
	}
	if reportTitle != "" {
		opts.Title = reportTitle
	}
	if reportPageSize > 0 {
		opts.PageSize = reportPageSize
	}

	rep, err := report.Build(sess, state, opts)
	if err != nil {
		return err
	}

	path := reportOutput
	if path == "" && format.Binary() {
		name := utils.GenerateOutputFileName(cfg.OutputNameFormat, map[string]string{
			"customer": rep.Customer.CustomerName,
			"ext":      format.Extension(),
		})
		path = filepath.Join(cfg.OutputDir, name)
	}

	if path == "" || path == "-" {
		return render.Render(cmd.OutOrStdout(), rep, format)
	}

	return writeReport(cmd.OutOrStdout(), path, rep, format)
}

// writeReport renders into path, archiving a previous file of the same name
// when an archive directory is configured.
func writeReport(status io.Writer, path string, rep *report.Report, format render.Format) error {
	fm := utils.NewFileManager(cfg.OutputDir, cfg.ArchiveDir)
	fm.UseTimestampSubdirs = cfg.ArchiveByDate
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	archived, err := fm.PrepareOutput(path)
	if err != nil {
		return err
	}
	if archived != "" {
		logger.Info("Archived previous report", zap.String("path", archived))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := render.Render(file, rep, format); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Info("Report written",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("units", len(rep.Rows)),
		zap.Int("pages", rep.PageCount()))

	fmt.Fprintf(status, "Report written to %s (%d units, %d pages)\n", path, len(rep.Rows), rep.PageCount())
	return nil
}
