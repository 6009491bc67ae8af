package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vvka-141/pgload/internal/logging"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// RowLoader loads rows from many tables in one call.
// Thread-Safety: stateless between calls; safe for concurrent use when the
// Database and SQLBuilder are.
type RowLoader struct {
	db       pgload.Database
	builder  pgload.SQLBuilder
	operator string
	idColumn string
	policy   pgload.FailurePolicy
	logger   pgload.Logger
}

// Option configures a RowLoader.
type Option func(*RowLoader)

// WithDefaultOperator sets the operator joining clauses of specs that do not override it.
func WithDefaultOperator(op string) Option {
	return func(l *RowLoader) {
		if op = normalizeOperator(op); op != "" {
			l.operator = op
		}
	}
}

// WithIDColumn sets the column LoadRowsByID matches when the caller passes none.
func WithIDColumn(name string) Option {
	return func(l *RowLoader) {
		if name != "" {
			l.idColumn = name
		}
	}
}

// WithFailurePolicy sets how a failing table affects a multi-table call.
func WithFailurePolicy(p pgload.FailurePolicy) Option {
	return func(l *RowLoader) { l.policy = p }
}

// WithLogger sets the logger. A nil logger keeps the default, which discards output.
func WithLogger(logger pgload.Logger) Option {
	return func(l *RowLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a RowLoader over db and builder.
// Both collaborators are required; a missing one yields ErrMissingCollaborator.
func New(db pgload.Database, builder pgload.SQLBuilder, opts ...Option) (*RowLoader, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil: %w", pgload.ErrMissingCollaborator)
	}
	if builder == nil {
		return nil, fmt.Errorf("sql builder is nil: %w", pgload.ErrMissingCollaborator)
	}

	l := &RowLoader{
		db:       db,
		builder:  builder,
		operator: pgload.DefaultOperator,
		idColumn: pgload.DefaultIDColumn,
		policy:   pgload.AbortAll,
		logger:   logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if !l.policy.IsValid() {
		return nil, fmt.Errorf("failure policy %s: %w", l.policy, pgload.ErrInvalidConfig)
	}
	return l, nil
}

// LoadTables loads every row of every named table.
// Passing pgload.AllTables loads every table the database lists at call time.
func (l *RowLoader) LoadTables(ctx context.Context, names ...string) (pgload.ResultSet, error) {
	names, err := l.resolveTables(ctx, names)
	if err != nil {
		return pgload.ResultSet{}, err
	}

	statements := make([]statement, len(names))
	for i, name := range names {
		statements[i] = statement{
			table: name,
			sql:   l.builder.Select(l.db.QuoteIdentifier(name), pgload.AllColumns, true),
		}
	}
	return l.run(ctx, statements)
}

// LoadTable loads every row of a single table.
// The AllTables sentinel is rejected; use LoadTables or RequireTables for it.
func (l *RowLoader) LoadTable(ctx context.Context, name string) ([]pgload.Row, error) {
	if pgload.IsAllTables([]string{name}) {
		return nil, fmt.Errorf("LoadTable needs a table name, got %q (use LoadTables for every table): %w", name, pgload.ErrUsage)
	}
	rs, err := l.LoadTables(ctx, name)
	if err != nil {
		return nil, err
	}
	t, ok := rs.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("table %q missing from results: %w", name, pgload.ErrStatementFailed)
	}
	if t.Outcome == pgload.OutcomeFailed {
		return nil, t.Err
	}
	return t.Rows, nil
}

// RequireTables loads tables like LoadTables but returns the bare rows when
// exactly one table ends up requested, after AllTables resolution.
func (l *RowLoader) RequireTables(ctx context.Context, names ...string) (pgload.Loaded, error) {
	names, err := l.resolveTables(ctx, names)
	if err != nil {
		return pgload.Loaded{}, err
	}

	rs, err := l.LoadTables(ctx, names...)
	if err != nil {
		return pgload.Loaded{}, err
	}
	if len(names) == 1 {
		t, _ := rs.Lookup(names[0])
		if t.Outcome == pgload.OutcomeFailed {
			return pgload.Loaded{}, t.Err
		}
		return pgload.SingleTable(t.Rows), nil
	}
	return pgload.MultiTable(rs), nil
}

// LoadRowsByID loads the row of each table whose idColumn equals the given ID.
// An empty idColumn uses the loader's configured ID column.
func (l *RowLoader) LoadRowsByID(ctx context.Context, ids []pgload.TableID, idColumn string) (pgload.ResultSet, error) {
	if idColumn == "" {
		idColumn = l.idColumn
	}

	queries := make([]pgload.TableQuery, len(ids))
	for i, id := range ids {
		queries[i] = pgload.TableQuery{
			Table:      id.Table,
			Conditions: pgload.Where(idColumn, id.ID),
		}
	}
	return l.LoadRowsByCondition(ctx, queries)
}

// LoadRowsByCondition loads the rows of each table matching its conditions.
// Tables appear in the result in input order.
func (l *RowLoader) LoadRowsByCondition(ctx context.Context, queries []pgload.TableQuery) (pgload.ResultSet, error) {
	statements := make([]statement, 0, len(queries))
	for _, q := range queries {
		cond, err := parseConditions(l.db, q.Conditions, l.operator)
		if err != nil {
			return pgload.ResultSet{}, fmt.Errorf("table %q: %w", q.Table, err)
		}
		sql := l.builder.Select(l.db.QuoteIdentifier(q.Table), pgload.AllColumns, false) + " " + l.builder.Where(cond)
		statements = append(statements, statement{table: q.Table, sql: sql})
	}
	return l.run(ctx, statements)
}

type statement struct {
	table string
	sql   string
}

func (l *RowLoader) resolveTables(ctx context.Context, names []string) ([]string, error) {
	if !pgload.IsAllTables(names) {
		return names, nil
	}
	tables, err := l.db.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pgload.ErrTableListFailed, err)
	}
	l.logger.Verbose("Resolved all tables: %d found", len(tables))
	return tables, nil
}

func (l *RowLoader) run(ctx context.Context, statements []statement) (pgload.ResultSet, error) {
	rs := pgload.ResultSet{
		CallID: uuid.New(),
		Tables: make([]pgload.TableResult, 0, len(statements)),
	}
	if len(statements) == 0 {
		return rs, nil
	}

	var failures []error
	for _, st := range statements {
		if err := ctx.Err(); err != nil {
			return pgload.ResultSet{}, err
		}

		l.logger.Verbose("[%s] %s", rs.CallID, st.sql)
		rows, err := l.loadStatement(ctx, st)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return pgload.ResultSet{}, ctxErr
			}
			if l.policy == pgload.AbortAll {
				l.logger.Error("[%s] %v", rs.CallID, err)
				return pgload.ResultSet{}, err
			}
			l.logger.Error("[%s] %v (continuing)", rs.CallID, err)
			failures = append(failures, err)
			rs.Tables = append(rs.Tables, pgload.TableResult{
				Table:   st.table,
				Outcome: pgload.OutcomeFailed,
				Err:     err,
			})
			continue
		}

		outcome := pgload.OutcomeRows
		if len(rows) == 0 {
			outcome = pgload.OutcomeEmpty
		}
		l.logger.Verbose("[%s] table %q: %d rows", rs.CallID, st.table, len(rows))
		rs.Tables = append(rs.Tables, pgload.TableResult{
			Table:   st.table,
			Rows:    rows,
			Outcome: outcome,
		})
	}

	if len(failures) == len(statements) {
		return pgload.ResultSet{}, errors.Join(append([]error{pgload.ErrAllTablesFailed}, failures...)...)
	}
	return rs, nil
}

func (l *RowLoader) loadStatement(ctx context.Context, st statement) ([]pgload.Row, error) {
	cursor, err := l.db.Query(ctx, st.sql)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w: %w", st.table, pgload.ErrStatementFailed, err)
	}
	defer cursor.Close()

	rows := []pgload.Row{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := cursor.Next(ctx)
		switch rec.Status {
		case pgload.RecordRow:
			rows = append(rows, rec.Row)
		case pgload.RecordDone:
			return rows, nil
		case pgload.RecordError:
			return nil, fmt.Errorf("table %q after %d rows: %w: %w", st.table, len(rows), pgload.ErrFetchFailed, rec.Err)
		default:
			return nil, fmt.Errorf("table %q: unexpected record status %s: %w", st.table, rec.Status, pgload.ErrFetchFailed)
		}
	}
}
