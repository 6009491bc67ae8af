// Package sqlbuilder renders the SELECT statements issued by the row loader.
package sqlbuilder

import (
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// Builder implements pgload.SQLBuilder for PostgreSQL.
type Builder struct{}

var _ pgload.SQLBuilder = Builder{}

// New creates a Builder.
func New() Builder {
	return Builder{}
}

// Select renders "SELECT <columns> FROM <table>". table is used as given and
// must already be quoted; column names are quoted here.
func (Builder) Select(table string, columns []string, terminate bool) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if len(columns) == 0 || pgload.IsAllColumns(columns) {
		b.WriteString("*")
	} else {
		for i, col := range columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(pgx.Identifier{col}.Sanitize())
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(table)
	if terminate {
		b.WriteString(";")
	}
	return b.String()
}

// Where renders "WHERE <condition>;", or a bare terminator for an empty condition.
func (Builder) Where(condition string) string {
	if strings.TrimSpace(condition) == "" {
		return ";"
	}
	return "WHERE " + condition + ";"
}
