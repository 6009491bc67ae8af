package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgload/internal/loader"
	"github.com/vvka-141/pgload/internal/params"
	"github.com/vvka-141/pgload/pkg/pgload"
)

var rowsFlags struct {
	commonFlags
	where     []string
	operator  string
	unsafeRaw string
	whereFile string
}

var rowsCmd = &cobra.Command{
	Use:   "rows <table>",
	Short: "Load the rows of a table matching column=value conditions",
	Long: `Load the rows of one table matching column=value conditions.

Conditions are joined with AND unless --op or loader.default_operator in
pgload.yaml says otherwise. --where-file reads conditions from a .env style
file where PGLOAD_OPERATOR sets the operator and PGLOAD_RAW_CONDITION a raw
condition.

--unsafe-raw passes SQL straight into the WHERE clause. It is not quoted or
checked in any way; never feed it untrusted input.`,
	Example: `  pgload rows users --where status=active --where country=NL
  pgload rows users --where role=admin --where role=owner --op OR
  pgload rows events --unsafe-raw "created_at > now() - interval '1 day'"
  pgload rows users --where-file filters/active.env`,
	Args: RequireTableName,
	RunE: runRows,
}

func init() {
	addCommonFlags(rowsCmd, &rowsFlags.commonFlags)
	rowsCmd.Flags().StringArrayVar(&rowsFlags.where, "where", nil,
		"Condition as column=value (repeatable)")
	rowsCmd.Flags().StringVar(&rowsFlags.operator, "op", "",
		"Operator joining conditions, e.g. AND or OR")
	rowsCmd.Flags().StringVar(&rowsFlags.unsafeRaw, "unsafe-raw", "",
		"Raw SQL condition used verbatim (no quoting)")
	rowsCmd.Flags().StringVar(&rowsFlags.whereFile, "where-file", "",
		"Read conditions from a .env style file")
	rootCmd.AddCommand(rowsCmd)
}

// buildRowsConditions assembles the condition spec from the rows flags.
// An empty spec means no filtering.
func buildRowsConditions() (pgload.ConditionSpec, error) {
	if rowsFlags.unsafeRaw != "" {
		if len(rowsFlags.where) > 0 || rowsFlags.whereFile != "" || rowsFlags.operator != "" {
			return nil, fmt.Errorf("--unsafe-raw cannot be combined with --where, --where-file or --op: %w", pgload.ErrUsage)
		}
		return pgload.UnsafeRawCondition(rowsFlags.unsafeRaw), nil
	}

	var spec pgload.ConditionSpec
	if rowsFlags.whereFile != "" {
		fromFile, err := params.ParseConditionFile(rowsFlags.whereFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read --where-file %s: %w", rowsFlags.whereFile, err)
		}
		spec = append(spec, fromFile...)
	}

	pairs, err := params.ParseKeyValuePairs(rowsFlags.where)
	if err != nil {
		return nil, fmt.Errorf("invalid --where: %w", err)
	}
	spec = append(spec, pairs...)

	if rowsFlags.operator != "" {
		if len(spec) == 0 {
			return nil, fmt.Errorf("--op requires at least one --where condition: %w", pgload.ErrUsage)
		}
		spec = spec.WithOperator(rowsFlags.operator)
	}
	return spec, nil
}

func runRows(cmd *cobra.Command, args []string) error {
	table := args[0]
	spec, err := buildRowsConditions()
	if err != nil {
		return err
	}

	inv, err := buildInvocation(cmd, &rowsFlags.commonFlags)
	if err != nil {
		return err
	}

	return inv.execute(cmd, func(ctx context.Context, l *loader.RowLoader) (any, error) {
		if len(spec) == 0 {
			return l.LoadTable(ctx, table)
		}
		rs, err := l.LoadRowsByCondition(ctx, []pgload.TableQuery{{Table: table, Conditions: spec}})
		if err != nil {
			return nil, err
		}
		return rs.Rows(table), nil
	})
}
