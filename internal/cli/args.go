package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// RequireTableName validates that exactly one table argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireTableName(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`%w: missing required argument: <table>

Usage: %s

Example:
  %s users --where status=active`, pgload.ErrUsage, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d: %w", len(args), pgload.ErrUsage)
	}
	return nil
}

// RequireTableIDs validates that at least one table=id argument is provided.
func RequireTableIDs(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`%w: missing required argument: <table=id>

Usage: %s

Example:
  %s users=42 orders=7`, pgload.ErrUsage, cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}

// RequireQueryName validates that exactly one saved query name is provided.
func RequireQueryName(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`%w: missing required argument: <name>

Usage: %s

Example:
  %s open_tickets

Saved queries live under "queries:" in pgload.yaml`, pgload.ErrUsage, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d: %w", len(args), pgload.ErrUsage)
	}
	return nil
}
