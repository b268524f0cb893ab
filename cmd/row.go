// =============================================================================
// Fixture Survey - Row Commands
// =============================================================================
//
// COMMAND USAGE:
//   survey row add            add a blank unit row at the top of the report
//   survey row delete <ref>   remove an added row, or hide an ingested unit
//
// Added rows are addressed by the ID printed by 'row add'. Fill them in with
// 'survey edit unit <id> ...' and 'survey edit install <id> ...'.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rowCmd groups the manual row commands.
var rowCmd = &cobra.Command{
	Use:   "row",
	Short: "Add or delete report rows",
}

var rowAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a blank unit row",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadSession(); err != nil {
			return err
		}

		id, err := newManager().AddRow()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added row %s\n", id)
		return nil
	},
}

var rowDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete an added row or hide an ingested unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := editableRef(args[0])
		if err != nil {
			return err
		}
		if err := m.DeleteRow(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Row %s deleted\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rowCmd)
	rowCmd.AddCommand(rowAddCmd, rowDeleteCmd)
}
