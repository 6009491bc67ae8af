package params

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// ParseKeyValuePairs converts "column=value" strings into a ConditionSpec,
// keeping argument order. Values stay strings; PostgreSQL coerces quoted
// literals to the column type.
//
//	spec, err := ParseKeyValuePairs([]string{"status=open", "owner=ada"})
func ParseKeyValuePairs(pairs []string) (pgload.ConditionSpec, error) {
	spec := make(pgload.ConditionSpec, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("condition %q is not in column=value format (example: --where status=open): %w", pair, pgload.ErrUsage)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("condition has empty column: %q: %w", pair, pgload.ErrUsage)
		}
		spec = append(spec, pgload.Condition{Column: key, Value: value})
	}
	return spec, nil
}

// ParseTableIDs converts "table=id" arguments into TableIDs.
// Integer IDs become int64 so they render unquoted; anything else stays a string.
func ParseTableIDs(args []string) ([]pgload.TableID, error) {
	ids := make([]pgload.TableID, 0, len(args))
	for _, arg := range args {
		table, id, ok := strings.Cut(arg, "=")
		table = strings.TrimSpace(table)
		if !ok || table == "" || id == "" {
			return nil, fmt.Errorf("argument %q is not in table=id format (example: users=42): %w", arg, pgload.ErrUsage)
		}
		ids = append(ids, pgload.TableID{Table: table, ID: parseID(id)})
	}
	return ids, nil
}

func parseID(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
