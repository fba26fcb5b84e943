// =============================================================================
// Project Data Cleaner - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   cleaner version
//
// OUTPUT:
//   Project Data Cleaner
//   Version:    0.3.0
//   Build Date: 2026-02-20
//   Go Version: go1.24.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/project-data-cleaner/cmd.Version=0.3.0'"

// Version is the application version.
// Set at build time using ldflags.
var Version = "0.3.0"

// BuildDate is the date the application was built.
// Set at build time using ldflags.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and
the supported field types and category tables.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Project Data Cleaner")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Go Version: %s\n", runtime.Version())
		fmt.Printf("Field types: %s\n", joinKinds(normalize.Kinds))
		fmt.Printf("Tables:      %s\n", strings.Join(normalize.TableNames(), ", "))
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the version command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}

func joinKinds(kinds []normalize.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
