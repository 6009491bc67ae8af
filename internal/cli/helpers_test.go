package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// stubDatabase answers queries from canned rows keyed by table name.
type stubDatabase struct {
	rows     map[string][]pgload.Row
	failing  map[string]bool
	tables   []string
	queries  []string
	released bool
	config   *pgload.ConnectionConfig
}

func newStubDatabase() *stubDatabase {
	return &stubDatabase{rows: map[string][]pgload.Row{}, failing: map[string]bool{}}
}

func (s *stubDatabase) Query(_ context.Context, sql string) (pgload.Cursor, error) {
	s.queries = append(s.queries, sql)
	_, rest, _ := strings.Cut(sql, `FROM "`)
	table, _, _ := strings.Cut(rest, `"`)
	if s.failing[table] {
		return nil, fmt.Errorf("relation %q does not exist", table)
	}
	return &stubCursor{rows: s.rows[table]}, nil
}

func (s *stubDatabase) Quote(v any) string {
	if str, ok := v.(string); ok {
		return "'" + strings.ReplaceAll(str, "'", "''") + "'"
	}
	return fmt.Sprintf("%v", v)
}

func (s *stubDatabase) QuoteIdentifier(name string) string { return `"` + name + `"` }

func (s *stubDatabase) Tables(context.Context) ([]string, error) { return s.tables, nil }

type stubCursor struct {
	rows []pgload.Row
	pos  int
}

func (c *stubCursor) Next(context.Context) pgload.Record {
	if c.pos >= len(c.rows) {
		return pgload.DoneRecord()
	}
	c.pos++
	return pgload.RowRecord(c.rows[c.pos-1])
}

func (c *stubCursor) Close() {}

// resetFlags restores every flag of cmd to its default so global flag state
// does not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
}

// isolateEnv clears connection-related environment variables.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE",
		"AWS_REGION", "AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET",
	} {
		t.Setenv(key, "")
	}
}

// executeCommand runs the root command against stub instead of PostgreSQL
// and returns what the command wrote to stdout.
func executeCommand(t *testing.T, stub *stubDatabase, args ...string) (string, error) {
	t.Helper()
	isolateEnv(t)

	original := openDatabase
	t.Cleanup(func() { openDatabase = original })
	openDatabase = func(_ context.Context, cfg *pgload.ConnectionConfig, _ pgload.Logger) (pgload.Database, func(), error) {
		stub.config = cfg
		return stub, func() { stub.released = true }, nil
	}

	for _, cmd := range rootCmd.Commands() {
		resetFlags(cmd)
	}
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
