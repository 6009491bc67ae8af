package loader

import (
	"fmt"
	"strings"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// parseConditions renders spec as the body of a WHERE clause.
//
// A raw condition wins over everything else and is returned verbatim. Otherwise
// every column=value pair is rendered as QuoteIdentifier(col)=Quote(val) and the
// pairs are joined by the operator the conditions carry, or defaultOp when it has none.
func parseConditions(db pgload.Database, spec pgload.ConditionSpec, defaultOp string) (string, error) {
	if raw, ok := spec.Lookup(pgload.RawConditionKey); ok {
		if s, isString := raw.(string); isString {
			return s, nil
		}
		return fmt.Sprintf("%v", raw), nil
	}

	op := defaultOp
	pairs := make([]pgload.Condition, 0, len(spec))
	for _, c := range spec {
		if c.Column == pgload.OperatorKey {
			op = normalizeOperator(fmt.Sprintf("%v", c.Value))
			continue
		}
		pairs = append(pairs, c)
	}

	if len(pairs) == 0 {
		return "", fmt.Errorf("no column=value pair: %w", pgload.ErrInvalidCondition)
	}

	var b strings.Builder
	for i, c := range pairs {
		if c.Column == "" {
			return "", fmt.Errorf("empty column name at position %d: %w", i, pgload.ErrInvalidCondition)
		}
		b.WriteString(db.QuoteIdentifier(c.Column))
		b.WriteByte('=')
		b.WriteString(db.Quote(c.Value))
		if i < len(pairs)-1 {
			b.WriteString(" " + op + " ")
		}
	}
	return b.String(), nil
}

func normalizeOperator(op string) string {
	return strings.ToUpper(strings.TrimSpace(op))
}
