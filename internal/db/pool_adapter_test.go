package db

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pgload/pkg/pgload"
)

func TestQuoteLiteral(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"string", "ada", "'ada'"},
		{"string with quote", "O'Brien", "'O''Brien'"},
		{"injection attempt", "x'; DROP TABLE users; --", "'x''; DROP TABLE users; --'"},
		{"empty string", "", "''"},
		{"int", 5, "5"},
		{"negative int64", int64(-42), "-42"},
		{"uint", uint32(7), "7"},
		{"float", 1.5, "1.5"},
		{"nan", math.NaN(), "'NaN'"},
		{"inf", math.Inf(1), "'+Inf'"},
		{"true", true, "TRUE"},
		{"false", false, "FALSE"},
		{"bytes", []byte{0xde, 0xad}, `'\xdead'::bytea`},
		{"time", ts, "'2024-03-01T12:30:00Z'"},
		{"uuid", id, "'6ba7b810-9dad-11d1-80b4-00c04fd430c8'"},
		{"duration stringer", 2 * time.Second, "'2s'"},
		{"other", struct{ A int }{1}, "'{1}'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteLiteral(tt.in))
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	p := &PoolAdapter{}
	assert.Equal(t, `"users"`, p.QuoteIdentifier("users"))
	assert.Equal(t, `"Mixed Case"`, p.QuoteIdentifier("Mixed Case"))
	assert.Equal(t, `"app"."users"`, p.QuoteIdentifier("app.users"))
	assert.Equal(t, `"we""ird"`, p.QuoteIdentifier(`we"ird`))
}

func TestQuoteIdentifier_QuotedParts(t *testing.T) {
	p := &PoolAdapter{}
	tests := []struct {
		in   string
		want string
	}{
		{`"my.table"`, `"my.table"`},
		{`public."my.table"`, `"public"."my.table"`},
		{`"app"."users"`, `"app"."users"`},
		{`"we""ird"`, `"we""ird"`},
		{`"unterminated`, `"""unterminated"`},
		{`"a"b`, `"""a""b"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, p.QuoteIdentifier(tt.in))
		})
	}
}

// fakeRows is a scripted pgx.Rows.
type fakeRows struct {
	fields []string
	values [][]any
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                        { r.closed = true }
func (r *fakeRows) Err() error                    { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }
func (r *fakeRows) RawValues() [][]byte           { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.fields))
	for i, f := range r.fields {
		out[i] = pgconn.FieldDescription{Name: f}
	}
	return out
}

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	for i, d := range dest {
		if p, ok := d.(*string); ok {
			*p = r.values[r.pos-1][i].(string)
		}
	}
	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.pos-1], nil
}

type fakeQuerier struct {
	rows *fakeRows
	err  error
	sql  string
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.sql = sql
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestPoolAdapter_QueryMapsRows(t *testing.T) {
	rows := &fakeRows{
		fields: []string{"id", "name", "payload", "key"},
		values: [][]any{
			{int64(1), "ada", []byte("raw"), [16]byte{0x6b, 0xa7}},
			{int64(2), nil, []byte{}, [16]byte{}},
		},
	}
	p := &PoolAdapter{pool: &fakeQuerier{rows: rows}}

	cursor, err := p.Query(context.Background(), `SELECT * FROM "users";`)
	require.NoError(t, err)
	defer cursor.Close()

	rec := cursor.Next(context.Background())
	require.Equal(t, pgload.RecordRow, rec.Status)
	assert.Equal(t, int64(1), rec.Row["id"])
	assert.Equal(t, "ada", rec.Row["name"])
	assert.Equal(t, "raw", rec.Row["payload"])
	assert.IsType(t, "", rec.Row["key"])

	rec = cursor.Next(context.Background())
	require.Equal(t, pgload.RecordRow, rec.Status)
	assert.Nil(t, rec.Row["name"])

	rec = cursor.Next(context.Background())
	assert.Equal(t, pgload.RecordDone, rec.Status)
	assert.Equal(t, pgload.RecordDone, cursor.Next(context.Background()).Status)
	assert.True(t, rows.closed)
}

func TestPoolAdapter_FetchErrorIsNotDone(t *testing.T) {
	driverErr := errors.New("unexpected EOF")
	rows := &fakeRows{fields: []string{"id"}, values: [][]any{{int64(1)}}, err: driverErr}
	p := &PoolAdapter{pool: &fakeQuerier{rows: rows}}

	cursor, err := p.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)

	assert.Equal(t, pgload.RecordRow, cursor.Next(context.Background()).Status)
	rec := cursor.Next(context.Background())
	assert.Equal(t, pgload.RecordError, rec.Status)
	assert.ErrorIs(t, rec.Err, driverErr)
	assert.Equal(t, pgload.RecordError, cursor.Next(context.Background()).Status)
}

func TestPoolAdapter_CancelledContextStopsCursor(t *testing.T) {
	rows := &fakeRows{fields: []string{"id"}, values: [][]any{{int64(1)}}}
	p := &PoolAdapter{pool: &fakeQuerier{rows: rows}}
	cursor, err := p.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := cursor.Next(ctx)
	assert.Equal(t, pgload.RecordError, rec.Status)
	assert.ErrorIs(t, rec.Err, context.Canceled)
}

func TestPoolAdapter_QueryError(t *testing.T) {
	want := &pgconn.PgError{Code: "42P01", Message: `relation "nope" does not exist`}
	p := &PoolAdapter{pool: &fakeQuerier{err: want}}

	_, err := p.Query(context.Background(), `SELECT * FROM "nope";`)
	assert.ErrorIs(t, err, want)
}

func TestPoolAdapter_Tables(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{
		fields: []string{"table_name"},
		values: [][]any{{"orders"}, {"users"}},
	}}
	p := &PoolAdapter{pool: q}

	tables, err := p.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, tables)
	assert.Contains(t, q.sql, "information_schema.tables")
}

func TestPoolAdapter_TablesWithDotsRoundTrip(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{
		fields: []string{"table_name"},
		values: [][]any{{"audit.log"}, {`we"ird`}, {"users"}},
	}}
	p := &PoolAdapter{pool: q}

	tables, err := p.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{`"audit.log"`, `"we""ird"`, "users"}, tables)

	quoted := make([]string, len(tables))
	for i, name := range tables {
		quoted[i] = p.QuoteIdentifier(name)
	}
	assert.Equal(t, []string{`"audit.log"`, `"we""ird"`, `"users"`}, quoted)
}

func TestNormalizeValue_NumericKeepsExactText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"high precision", "12345678901234567890.123456789", "12345678901234567890.123456789"},
		{"beyond float64 integer range", "9007199254740993", "9007199254740993"},
		{"money", "12.50", "12.50"},
		{"nan", "NaN", "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n pgtype.Numeric
			require.NoError(t, n.Scan(tt.in))
			got, err := normalizeValue(n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := normalizeValue(pgtype.Numeric{})
	require.NoError(t, err)
	assert.Nil(t, got, "NULL numeric stays NULL")
}

func TestPoolAdapter_NumericColumn(t *testing.T) {
	var total pgtype.Numeric
	require.NoError(t, total.Scan("99999999999999999.99"))
	rows := &fakeRows{fields: []string{"total"}, values: [][]any{{total}}}
	p := &PoolAdapter{pool: &fakeQuerier{rows: rows}}

	cursor, err := p.Query(context.Background(), `SELECT * FROM "orders";`)
	require.NoError(t, err)
	defer cursor.Close()

	rec := cursor.Next(context.Background())
	require.Equal(t, pgload.RecordRow, rec.Status)
	assert.Equal(t, "99999999999999999.99", rec.Row["total"])
}
