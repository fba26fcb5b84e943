// =============================================================================
// Project Data Cleaner - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Project Data Cleaner CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   cleaner process       - Clean all CSV files in the input directory
//   cleaner extract       - Extract Excel workbooks to raw CSV files
//   cleaner validate      - Validate configuration files without processing
//   cleaner version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//   - configs/       : Contains dataset YAML configurations
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/project-data-cleaner/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
