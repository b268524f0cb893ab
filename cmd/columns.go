// =============================================================================
// Fixture Survey - Columns Command
// =============================================================================
//
// This file defines the 'columns' command, which previews how a survey file
// would be read without touching the current session: its headers, the unit
// column, the fixture columns and the detection strategy that applies.
//
// COMMAND USAGE:
//   survey columns <file|directory>
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fixture-survey/internal/converter"
	"github.com/ginjaninja78/fixture-survey/internal/discovery"
	"github.com/ginjaninja78/fixture-survey/internal/ingest"
	"github.com/ginjaninja78/fixture-survey/internal/types"
	"github.com/ginjaninja78/fixture-survey/pkg/utils"
)

// columnsCmd represents the 'columns' command.
var columnsCmd = &cobra.Command{
	Use:   "columns <file|directory>",
	Short: "Preview the columns detected in a survey file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runColumns(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}

func runColumns(cmd *cobra.Command, input string) error {
	inputPath, err := utils.ResolveInputFile(input)
	if err != nil {
		return err
	}

	table, err := converter.Decode(context.Background(), inputPath, cfg.CSV)
	if err != nil {
		return err
	}

	headers := table.Headers
	if len(headers) == 0 || table.SyntheticHeaders {
		headers = discovery.SampleHeaders(table.Rows, cfg.Detection.HeaderSampleRows)
	}

	roles, strategy := discovery.Resolve(headers, cfg.Strategy(), cfg.Detection.FixedColumns)

	unitColumn, unitErr := ingest.ResolveUnitColumn(headers, cfg.Detection.UnitColumn)

	labels := make(map[string][]string)
	if unitErr == nil {
		labels[unitColumn] = append(labels[unitColumn], "unit")
	}
	for _, f := range types.Fixtures() {
		if column := roles.Column(f); column != "" {
			labels[column] = append(labels[column], string(f))
		}
	}
	for _, column := range discovery.ToiletColumns(roles, strategy) {
		if !slices.Contains(labels[column], string(types.Toilet)) {
			labels[column] = append(labels[column], "toilet total")
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s", inputPath)
	if table.Sheet != "" {
		fmt.Fprintf(out, " (sheet %q)", table.Sheet)
	}
	fmt.Fprintf(out, ": %d rows, detection %s\n\n", len(table.Rows), strategy)

	for i, header := range headers {
		sample := ""
		if len(table.Rows) > 0 {
			sample = table.Rows[0][header]
		}
		role := strings.Join(labels[header], ", ")
		fmt.Fprintf(out, "  %3d  %-30s %-16s %s\n", i, header, role, sample)
	}

	if unitErr != nil {
		fmt.Fprintf(out, "\n%v\n", unitErr)
	}
	return nil
}
