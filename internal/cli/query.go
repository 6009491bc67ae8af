package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgload/internal/loader"
	"github.com/vvka-141/pgload/pkg/pgload"
)

var queryFlags commonFlags

var queryCmd = &cobra.Command{
	Use:   "query <name>",
	Short: "Run a saved query from pgload.yaml",
	Long: `Run a saved query defined under "queries:" in pgload.yaml.

A saved query maps table names to column: value conditions. The reserved keys
"::ConditionOperator::" and "::CustomCondition::" select the operator and a
raw condition, exactly like the library API.

  queries:
    open_tickets:
      tickets:
        status: open
        "::ConditionOperator::": OR
        priority: 1
      comments:
        "::CustomCondition::": "created_at > now() - interval '1 day'"`,
	Example: `  pgload query open_tickets --config ./project`,
	Args:    RequireQueryName,
	RunE:    runQuery,
}

func init() {
	addCommonFlags(queryCmd, &queryFlags)
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	inv, err := buildInvocation(cmd, &queryFlags)
	if err != nil {
		return err
	}
	if inv.project == nil {
		return fmt.Errorf("no pgload.yaml in %s: %w", queryFlags.configDir, pgload.ErrQueryNotFound)
	}

	q, err := inv.project.Queries.Lookup(args[0])
	if err != nil {
		return err
	}
	inv.logger.Verbose("Running saved query %q over %d table(s)", q.Name, len(q.Tables))

	return inv.execute(cmd, func(ctx context.Context, l *loader.RowLoader) (any, error) {
		return l.LoadRowsByCondition(ctx, q.Tables)
	})
}
