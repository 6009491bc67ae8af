// Package loader turns table names and condition specs into SELECT statements
// and loads the resulting rows as column-to-value maps.
//
// A RowLoader owns no connection. Statement text comes from a pgload.SQLBuilder,
// execution, quoting and table discovery from a pgload.Database. Tables are
// loaded one after another and each cursor is drained and closed before the
// next statement is issued.
package loader
