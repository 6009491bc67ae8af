package pgload

import "context"

// Database is the query-execution collaborator consumed by the row loader.
// It owns connections, dialect-correct quoting and schema introspection.
//
// Thread-Safety: Implementations should follow their underlying connection's
// thread-safety guarantees. Connection pool implementations are typically safe
// for concurrent use.
type Database interface {
	// Query executes sql and returns a cursor over its rows.
	// An error means the statement itself could not be executed.
	Query(ctx context.Context, sql string) (Cursor, error)

	// Quote renders v as a literal of the database dialect.
	Quote(v any) string

	// QuoteIdentifier renders name as a quoted identifier (table or column).
	QuoteIdentifier(name string) string

	// Tables lists the tables visible to the connection, read live on every call.
	Tables(ctx context.Context) ([]string, error)
}

// Cursor iterates over the rows of one executed statement.
// Callers must call Close when done, also after an error record.
type Cursor interface {
	// Next fetches the next record. Once Done or Error is returned, every
	// later call returns the same status.
	Next(ctx context.Context) Record

	// Close releases the statement.
	Close()
}

// RecordStatus tells a row apart from end-of-data and driver failure.
type RecordStatus int

const (
	RecordRow   RecordStatus = iota // Row holds the fetched row
	RecordDone                      // no more rows
	RecordError                     // Err holds the driver failure
)

// String returns a human-readable representation of the RecordStatus.
func (s RecordStatus) String() string {
	switch s {
	case RecordRow:
		return "row"
	case RecordDone:
		return "done"
	case RecordError:
		return "error"
	default:
		return "unknown"
	}
}

// Record is one fetch result from a Cursor.
type Record struct {
	Status RecordStatus
	Row    Row
	Err    error
}

// RowRecord wraps a fetched row.
func RowRecord(row Row) Record { return Record{Status: RecordRow, Row: row} }

// DoneRecord marks the end of the result.
func DoneRecord() Record { return Record{Status: RecordDone} }

// ErrorRecord wraps a driver failure.
func ErrorRecord(err error) Record { return Record{Status: RecordError, Err: err} }
