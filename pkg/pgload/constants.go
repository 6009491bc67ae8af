package pgload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Load completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitLoadFailed      = 13 // A SELECT or row fetch failed
)

// Reserved pseudo-columns of a ConditionSpec.
const (
	// OperatorKey selects the boolean operator joining the column=value clauses.
	OperatorKey = "::ConditionOperator::"

	// RawConditionKey carries a pre-formatted condition that bypasses parsing.
	// See UnsafeRawCondition.
	RawConditionKey = "::CustomCondition::"
)

const (
	// DefaultOperator joins clauses when a ConditionSpec does not override it.
	DefaultOperator = "AND"

	// DefaultIDColumn is the column LoadRowsByID matches against.
	DefaultIDColumn = "id"

	// DefaultRetryInitialDelay is the default initial delay before the first connect retry.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between connect retries.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of connect retries.
	DefaultRetryMaxAttempts = 3

	// DefaultTimeout bounds a whole CLI command.
	DefaultTimeout = 30 * time.Second

	// DefaultManagementDB is used when neither flags nor environment name a database.
	DefaultManagementDB = "postgres"
)

// AllTables requests every table the database reports at call time.
var AllTables = []string{"*"}

// AllColumns asks the SQL builder for every column of a table.
var AllColumns = []string{"*"}

// IsAllTables reports whether names is the AllTables sentinel.
func IsAllTables(names []string) bool {
	return len(names) == 1 && names[0] == AllTables[0]
}

// IsAllColumns reports whether columns is the AllColumns sentinel.
func IsAllColumns(columns []string) bool {
	return len(columns) == 1 && columns[0] == AllColumns[0]
}
