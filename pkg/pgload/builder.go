package pgload

// SQLBuilder is the SQL-fragment collaborator consumed by the row loader.
type SQLBuilder interface {
	// Select renders "SELECT <columns> FROM <table>". The table must already be
	// quoted. AllColumns selects every column. When terminate is false the
	// statement is left open for a WHERE clause.
	Select(table string, columns []string, terminate bool) string

	// Where renders the WHERE clause closing a statement opened by Select.
	Where(condition string) string
}
