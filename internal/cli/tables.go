package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgload/internal/loader"
	"github.com/vvka-141/pgload/pkg/pgload"
)

var tablesFlags commonFlags

var tablesCmd = &cobra.Command{
	Use:   "tables [table...]",
	Short: "Load every row of the named tables",
	Long: `Load every row of one or many tables.

With no table argument every base table of the current schema is loaded.
A single table prints its rows directly; several tables print one entry
per table in the order given.`,
	Example: `  pgload tables users -d app
  pgload tables users orders --format table
  pgload tables --connection "postgresql://reader@db/app" --policy best-effort`,
	RunE: runTables,
}

func init() {
	addCommonFlags(tablesCmd, &tablesFlags)
	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, args []string) error {
	inv, err := buildInvocation(cmd, &tablesFlags)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = pgload.AllTables
	}
	return inv.execute(cmd, func(ctx context.Context, l *loader.RowLoader) (any, error) {
		return l.RequireTables(ctx, names...)
	})
}
