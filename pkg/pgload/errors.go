package pgload

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	rs, err := l.LoadRowsByCondition(ctx, queries)
//	if errors.Is(err, pgload.ErrFetchFailed) {
//	    // the driver failed mid-stream; nothing was returned
//	}
var (
	// ErrMissingCollaborator indicates a loader was built without a database or SQL builder.
	ErrMissingCollaborator = errors.New("missing collaborator")

	// ErrInvalidCondition indicates a ConditionSpec with no column=value pair and no raw condition.
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrStatementFailed indicates the SELECT for a table could not be executed.
	ErrStatementFailed = errors.New("statement failed")

	// ErrFetchFailed indicates the driver reported a failure while rows were being fetched.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrAllTablesFailed indicates every table of a best-effort load failed.
	ErrAllTablesFailed = errors.New("all tables failed")

	// ErrTableListFailed indicates the live table list could not be read.
	ErrTableListFailed = errors.New("table list unavailable")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrQueryNotFound indicates a saved query name is not defined in pgload.yaml.
	ErrQueryNotFound = errors.New("saved query not found")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUsage indicates invalid command line usage.
	ErrUsage = errors.New("usage error")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnsupportedAuthMethod),
		errors.Is(err, ErrQueryNotFound),
		errors.Is(err, ErrInvalidCondition),
		errors.Is(err, ErrMissingCollaborator):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrStatementFailed),
		errors.Is(err, ErrFetchFailed),
		errors.Is(err, ErrAllTablesFailed),
		errors.Is(err, ErrTableListFailed):
		return ExitLoadFailed
	}

	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
