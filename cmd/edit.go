// =============================================================================
// Fixture Survey - Edit Commands
// =============================================================================
//
// The 'edit' commands record operator overrides on top of the consolidated
// units. Overrides never change the ingested data; they are applied every time
// the report is built, and a new ingest discards them.
//
// COMMAND USAGE:
//   survey edit unit <ref> <new unit>           rename a unit ("" hides it)
//   survey edit install <ref> <slot> <text>     override a fixture cell
//   survey edit note <ref> <text>               set the unit note ("" restores the default)
//   survey edit header <column> <title>         rename a report column
//   survey edit title <title>                   rename the details section
//   survey edit customer [flags]                update the customer block
//
// <ref> is the unit as ingested (before renames), or the ID of an added row.
// <slot> is kitchen, bathroom, shower or toilet.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fixture-survey/internal/overrides"
	"github.com/ginjaninja78/fixture-survey/internal/session"
	"github.com/ginjaninja78/fixture-survey/internal/validation"
)

// editCmd groups the override commands.
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit units, fixture cells, notes and report labels",
}

var editUnitCmd = &cobra.Command{
	Use:   "unit <ref> <new unit>",
	Short: "Rename a unit; an empty name removes it from the report",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := editableRef(args[0])
		if err != nil {
			return err
		}
		if err := m.RenameUnit(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unit %s renamed to %q\n", args[0], args[1])
		return nil
	},
}

var editInstallCmd = &cobra.Command{
	Use:   "install <ref> <slot> <text>",
	Short: "Override the text of a fixture cell",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, verr := validation.ValidateSlot(args[1])
		if verr != nil {
			return verr
		}
		m, err := editableRef(args[0])
		if err != nil {
			return err
		}
		if err := m.EditInstallation(args[0], slot, args[2]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unit %s %s set to %q\n", args[0], slot, args[2])
		return nil
	},
}

var editNoteCmd = &cobra.Command{
	Use:   "note <ref> <text>",
	Short: "Set the note of a unit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := editableRef(args[0])
		if err != nil {
			return err
		}
		if err := m.SetNote(args[0], args[1]); err != nil {
			return err
		}
		if args[1] == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Unit %s note reset to the default\n", args[0])
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Unit %s note updated\n", args[0])
		}
		return nil
	},
}

var editHeaderCmd = &cobra.Command{
	Use:   "header <column> <title>",
	Short: "Rename a report column (unit, kitchen, bathroom, shower, toilet, notes)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newManager().SetColumnHeader(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Column %s titled %q\n", args[0], args[1])
		return nil
	},
}

var editTitleCmd = &cobra.Command{
	Use:   "title <title>",
	Short: "Rename the unit details section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newManager().SetSectionTitle(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Section titled %q\n", args[0])
		return nil
	},
}

var editCustomerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Update the customer information printed on the report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession()
		if err != nil {
			return err
		}

		info := sess.Customer
		flags := cmd.Flags()
		for name, field := range map[string]*string{
			"customer": &info.CustomerName,
			"property": &info.PropertyName,
			"address":  &info.Address,
			"city":     &info.City,
			"state":    &info.State,
			"zip":      &info.Zip,
			"date":     &info.Date,
		} {
			if flags.Changed(name) {
				*field, _ = flags.GetString(name)
			}
		}

		if err := session.SaveCustomer(st, info); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Customer information updated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.AddCommand(editUnitCmd, editInstallCmd, editNoteCmd, editHeaderCmd, editTitleCmd, editCustomerCmd)

	flags := editCustomerCmd.Flags()
	flags.String("customer", "", "Customer name")
	flags.String("property", "", "Property name")
	flags.String("address", "", "Street address")
	flags.String("city", "", "City")
	flags.String("state", "", "State")
	flags.String("zip", "", "ZIP code")
	flags.String("date", "", "Survey date")
}

// editableRef checks that ref belongs to the current session and returns the
// manager to apply the edit with.
func editableRef(ref string) (*overrides.Manager, error) {
	sess, err := loadSession()
	if err != nil {
		return nil, err
	}

	m := newManager()
	state, err := m.State()
	if err != nil {
		return nil, err
	}
	if err := resolveRef(sess, state, ref); err != nil {
		return nil, err
	}
	return m, nil
}
