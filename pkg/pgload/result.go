package pgload

import "github.com/google/uuid"

// Row maps column names to the scalar values of one fetched record.
type Row map[string]any

// Outcome classifies how loading a single table ended.
type Outcome int

const (
	OutcomeRows   Outcome = iota // at least one row
	OutcomeEmpty                 // statement ran, no rows matched
	OutcomeFailed                // statement or fetch failed, see TableResult.Err
)

// String returns a human-readable representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeRows:
		return "rows"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TableResult holds the rows loaded for one table.
type TableResult struct {
	Table   string
	Rows    []Row
	Outcome Outcome
	Err     error
}

// ResultSet holds per-table results in request order.
type ResultSet struct {
	// CallID identifies the loader call that produced the set; it appears in verbose logs.
	CallID uuid.UUID
	Tables []TableResult
}

// Len returns the number of tables in the set.
func (rs ResultSet) Len() int { return len(rs.Tables) }

// Names returns the table names in request order.
func (rs ResultSet) Names() []string {
	names := make([]string, len(rs.Tables))
	for i, t := range rs.Tables {
		names[i] = t.Table
	}
	return names
}

// Lookup returns the result for table.
func (rs ResultSet) Lookup(table string) (TableResult, bool) {
	for _, t := range rs.Tables {
		if t.Table == table {
			return t, true
		}
	}
	return TableResult{}, false
}

// Rows returns the rows loaded for table, or nil if the table is absent.
func (rs ResultSet) Rows(table string) []Row {
	t, _ := rs.Lookup(table)
	return t.Rows
}

// Failed returns the tables whose load failed.
func (rs ResultSet) Failed() []TableResult {
	var failed []TableResult
	for _, t := range rs.Tables {
		if t.Outcome == OutcomeFailed {
			failed = append(failed, t)
		}
	}
	return failed
}

// Loaded is what RequireTables returns: the rows of a single table when exactly
// one was requested, the whole ResultSet otherwise.
type Loaded struct {
	single bool
	rows   []Row
	set    ResultSet
}

// SingleTable wraps the rows of a lone requested table.
func SingleTable(rows []Row) Loaded { return Loaded{single: true, rows: rows} }

// MultiTable wraps a ResultSet.
func MultiTable(rs ResultSet) Loaded { return Loaded{set: rs} }

// Single reports whether exactly one table was requested.
func (l Loaded) Single() bool { return l.single }

// Rows returns the rows of the single requested table.
func (l Loaded) Rows() []Row { return l.rows }

// Set returns the ResultSet of a multi-table request.
func (l Loaded) Set() ResultSet { return l.set }
