package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgload/pkg/pgload"
)

var rootCmd = &cobra.Command{
	Use:   "pgload",
	Short: "Load PostgreSQL rows from many tables as JSON, YAML or tables",
	Long: `pgload reads rows from one or many PostgreSQL tables in a single call.

Tables are selected by name, by primary key (table=id) or by column=value
conditions, and printed as JSON, YAML or a terminal table. Saved queries in
pgload.yaml bundle several table conditions under one name.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration, condition or saved query
  11 - Database connection failed
  13 - A SELECT or row fetch failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// -h is the host flag, so help is long-form only.
	rootCmd.PersistentFlags().Bool("help", false, "Help for pgload")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", err, pgload.ErrUsage)
	})
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
