package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgload/internal/loader"
	"github.com/vvka-141/pgload/internal/params"
)

var byIDFlags struct {
	commonFlags
	idColumn string
}

var byIDCmd = &cobra.Command{
	Use:   "by-id <table=id>...",
	Short: "Load rows of several tables by primary key",
	Long: `Load the row of each table whose ID column equals the given value.

Numeric IDs are compared as integers, everything else as text. The ID column
defaults to loader.id_column in pgload.yaml, then "id".`,
	Example: `  pgload by-id users=42 orders=7
  pgload by-id accounts=9f1c2d3e-0000-4000-8000-000000000000 --id-column uuid`,
	Args: RequireTableIDs,
	RunE: runByID,
}

func init() {
	addCommonFlags(byIDCmd, &byIDFlags.commonFlags)
	byIDCmd.Flags().StringVar(&byIDFlags.idColumn, "id-column", "",
		"Column matched against each ID (default: pgload.yaml loader.id_column or id)")
	rootCmd.AddCommand(byIDCmd)
}

func runByID(cmd *cobra.Command, args []string) error {
	ids, err := params.ParseTableIDs(args)
	if err != nil {
		return err
	}

	inv, err := buildInvocation(cmd, &byIDFlags.commonFlags)
	if err != nil {
		return err
	}

	return inv.execute(cmd, func(ctx context.Context, l *loader.RowLoader) (any, error) {
		return l.LoadRowsByID(ctx, ids, byIDFlags.idColumn)
	})
}
