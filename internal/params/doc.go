// Package params turns command-line arguments and condition files into
// loader inputs.
//
//   - ParseKeyValuePairs: --where col=val flags, order kept
//   - ParseTableIDs: table=id arguments of the by-id command
//   - ParseConditionFile: a .env style file of column=value lines
//
// Condition files cannot spell the reserved "::...::" keys, so they use
// PGLOAD_OPERATOR and PGLOAD_RAW_CONDITION instead.
package params
