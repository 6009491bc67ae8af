package db

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pgload/pkg/pgload"
)

const listTablesSQL = `SELECT table_name
FROM information_schema.tables
WHERE table_schema = current_schema()
  AND table_type = 'BASE TABLE'
ORDER BY table_name`

// querier is the subset of *pgxpool.Pool used by PoolAdapter.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PoolAdapter adapts *pgxpool.Pool to implement the pgload.Database interface.
// This decouples the loader from pgx-specific types.
//
// Thread-Safety: Safe for concurrent use (pgxpool.Pool is thread-safe).
type PoolAdapter struct {
	pool querier
}

// NewPoolAdapter creates a new PoolAdapter wrapping the given pool.
func NewPoolAdapter(pool *pgxpool.Pool) *PoolAdapter {
	return &PoolAdapter{pool: pool}
}

// Query executes sql with the simple protocol and returns a cursor over its rows.
// The statement is fully rendered text, so no arguments are bound.
func (p *PoolAdapter) Query(ctx context.Context, sql string) (pgload.Cursor, error) {
	rows, err := p.pool.Query(ctx, sql, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, err
	}
	return &rowsCursor{rows: rows}, nil
}

// Tables lists the base tables of the current schema, ordered by name.
// Names containing a dot or a double quote are returned already quoted so
// QuoteIdentifier reads them back as a single identifier.
func (p *PoolAdapter) Tables(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, listTablesSQL)
	if err != nil {
		return nil, err
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		if strings.ContainsAny(name, `."`) {
			names[i] = pgx.Identifier{name}.Sanitize()
		}
	}
	return names, nil
}

// QuoteIdentifier renders name as a PostgreSQL identifier.
// A dotted name is treated as schema-qualified; a double-quoted part may
// contain dots, as in public."my.table".
func (p *PoolAdapter) QuoteIdentifier(name string) string {
	return pgx.Identifier(splitIdentifier(name)).Sanitize()
}

// splitIdentifier splits a dotted name into its parts. A part that starts with
// a double quote runs to the matching quote, with "" standing for one quote.
// A name that does not parse this way is kept whole.
func splitIdentifier(name string) []string {
	var parts []string
	var cur strings.Builder
	quoted := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		atPartStart := cur.Len() == 0 && (i == 0 || name[i-1] == '.')
		switch {
		case quoted && c == '"':
			if i+1 < len(name) && name[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			quoted = false
			if i+1 < len(name) && name[i+1] != '.' {
				return []string{name}
			}
		case quoted:
			cur.WriteByte(c)
		case c == '"' && atPartStart:
			quoted = true
		case c == '"':
			return []string{name}
		case c == '.':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if quoted {
		return []string{name}
	}
	return append(parts, cur.String())
}

// Quote renders v as a PostgreSQL literal.
func (p *PoolAdapter) Quote(v any) string {
	return QuoteLiteral(v)
}

// QuoteLiteral renders v as a PostgreSQL literal usable inside simple-protocol SQL.
func QuoteLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteString(x)
	case []byte:
		return `'\x` + hex.EncodeToString(x) + `'::bytea`
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return quoteFloat(float64(x), 32)
	case float64:
		return quoteFloat(x, 64)
	case *big.Int:
		if x == nil {
			return "NULL"
		}
		return x.String()
	case time.Time:
		return quoteString(x.Format(time.RFC3339Nano))
	case uuid.UUID:
		return quoteString(x.String())
	case fmt.Stringer:
		return quoteString(x.String())
	default:
		return quoteString(fmt.Sprintf("%v", x))
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteFloat keeps NaN and infinities valid by quoting them.
func quoteFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if strings.ContainsAny(s, "NI") {
		return quoteString(s)
	}
	return s
}

// rowsCursor adapts pgx.Rows to pgload.Cursor.
type rowsCursor struct {
	rows  pgx.Rows
	names []string
	final *pgload.Record
}

// Next reads the next row and maps its values by column name.
func (c *rowsCursor) Next(ctx context.Context) pgload.Record {
	if c.final != nil {
		return *c.final
	}
	if err := ctx.Err(); err != nil {
		return c.finish(pgload.ErrorRecord(err))
	}

	if !c.rows.Next() {
		c.rows.Close()
		if err := c.rows.Err(); err != nil {
			return c.finish(pgload.ErrorRecord(err))
		}
		return c.finish(pgload.DoneRecord())
	}

	if c.names == nil {
		fields := c.rows.FieldDescriptions()
		c.names = make([]string, len(fields))
		for i, f := range fields {
			c.names[i] = f.Name
		}
	}

	values, err := c.rows.Values()
	if err != nil {
		return c.finish(pgload.ErrorRecord(err))
	}

	row := make(pgload.Row, len(values))
	for i, v := range values {
		nv, err := normalizeValue(v)
		if err != nil {
			return c.finish(pgload.ErrorRecord(fmt.Errorf("column %q: %w", c.names[i], err)))
		}
		row[c.names[i]] = nv
	}
	return pgload.RowRecord(row)
}

// Close releases the underlying rows.
func (c *rowsCursor) Close() {
	c.rows.Close()
}

func (c *rowsCursor) finish(rec pgload.Record) pgload.Record {
	c.final = &rec
	return rec
}

// normalizeValue turns driver-specific values into plain scalars.
// numeric keeps its exact decimal text, NaN and Infinity included.
func normalizeValue(v any) (any, error) {
	switch x := v.(type) {
	case []byte:
		return string(x), nil
	case [16]byte:
		return uuid.UUID(x).String(), nil
	case pgtype.Numeric:
		text, err := x.Value()
		if err != nil {
			return nil, fmt.Errorf("encode numeric: %w", err)
		}
		return text, nil
	default:
		return v, nil
	}
}

// Verify PoolAdapter implements Database at compile time
var _ pgload.Database = (*PoolAdapter)(nil)
