// =============================================================================
// Fixture Survey - Reset Command
// =============================================================================
//
// COMMAND USAGE:
//   survey reset                   drop the session and every edit
//   survey reset --edits-only      drop the edits, keep the ingested session
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fixture-survey/internal/session"
)

var resetEditsOnly bool

// resetCmd represents the 'reset' command.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the current session and its edits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if resetEditsOnly {
			if err := newManager().Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Edits discarded")
			return nil
		}

		if err := session.Reset(st); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Session discarded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetEditsOnly, "edits-only", false, "Keep the ingested session and drop only the edits")
}
