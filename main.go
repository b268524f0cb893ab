// =============================================================================
// Fixture Survey - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Fixture Survey CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   survey ingest <file>     - Load and consolidate a survey export
//   survey columns <file>    - Preview the detected columns of a file
//   survey report            - Render the report (table, pdf, xlsx, json, xml)
//   survey edit ...          - Record operator edits
//   survey row add|delete    - Manage manual report rows
//   survey reset             - Discard the session and its edits
//   survey version           - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/fixture-survey/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
