package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vvka-141/pgload/pkg/pgload"
)

var errDriver = errors.New("driver: connection reset")

// fakeDatabase serves canned rows keyed by the table name appearing in the SQL.
type fakeDatabase struct {
	mu        sync.Mutex
	rows      map[string][]pgload.Row
	queryErr  map[string]error
	fetchErr  map[string]int // table -> rows delivered before the driver fails
	tables    []string
	tablesErr error
	queries   []string
	closed    int
	listed    int
}

func newFakeDatabase() *fakeDatabase {
	return &fakeDatabase{
		rows:     map[string][]pgload.Row{},
		queryErr: map[string]error{},
		fetchErr: map[string]int{},
	}
}

func (f *fakeDatabase) Query(_ context.Context, sql string) (pgload.Cursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, sql)

	table := tableOf(sql)
	if err := f.queryErr[table]; err != nil {
		return nil, err
	}
	failAfter, fails := f.fetchErr[table]
	return &fakeCursor{db: f, rows: f.rows[table], fails: fails, failAfter: failAfter}, nil
}

func (f *fakeDatabase) Quote(v any) string {
	switch x := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case nil:
		return "NULL"
	default:
		return fmt.Sprintf("%v", x)
	}
}

func (f *fakeDatabase) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (f *fakeDatabase) Tables(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed++
	return append([]string(nil), f.tables...), f.tablesErr
}

// tableOf extracts the quoted table name following FROM.
func tableOf(sql string) string {
	_, rest, ok := strings.Cut(sql, `FROM "`)
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, `"`)
	return name
}

type fakeCursor struct {
	db        *fakeDatabase
	rows      []pgload.Row
	pos       int
	fails     bool
	failAfter int
}

func (c *fakeCursor) Next(_ context.Context) pgload.Record {
	if c.fails && c.pos >= c.failAfter {
		return pgload.ErrorRecord(errDriver)
	}
	if c.pos >= len(c.rows) {
		return pgload.DoneRecord()
	}
	row := c.rows[c.pos]
	c.pos++
	return pgload.RowRecord(row)
}

func (c *fakeCursor) Close() {
	c.db.mu.Lock()
	c.db.closed++
	c.db.mu.Unlock()
}

// fakeBuilder renders statements the way the real builder does.
type fakeBuilder struct{}

func (fakeBuilder) Select(table string, columns []string, terminate bool) string {
	cols := "*"
	if !pgload.IsAllColumns(columns) {
		cols = strings.Join(columns, ", ")
	}
	s := "SELECT " + cols + " FROM " + table
	if terminate {
		s += ";"
	}
	return s
}

func (fakeBuilder) Where(condition string) string {
	if condition == "" {
		return ";"
	}
	return "WHERE " + condition + ";"
}

type recordingLogger struct {
	mu      sync.Mutex
	verbose []string
	errors  []string
}

func (r *recordingLogger) Verbose(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verbose = append(r.verbose, fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Info(format string, args ...interface{}) {}

func (r *recordingLogger) Error(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}
