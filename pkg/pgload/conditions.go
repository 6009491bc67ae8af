package pgload

import "sort"

// Condition is one column=value pair of a ConditionSpec.
type Condition struct {
	Column string
	Value  any
}

// ConditionSpec is an ordered list of column=value pairs selecting rows of one table.
// Two reserved columns change how the conditions are read: OperatorKey overrides the
// operator joining the pairs, RawConditionKey replaces the whole spec with a
// caller-formatted condition.
type ConditionSpec []Condition

// Where starts a ConditionSpec with a single column=value pair.
func Where(column string, value any) ConditionSpec {
	return ConditionSpec{{Column: column, Value: value}}
}

// And returns a copy of s with column=value appended.
func (s ConditionSpec) And(column string, value any) ConditionSpec {
	out := make(ConditionSpec, len(s), len(s)+1)
	copy(out, s)
	return append(out, Condition{Column: column, Value: value})
}

// WithOperator returns a copy of s whose pairs are joined by op instead of the loader default.
func (s ConditionSpec) WithOperator(op string) ConditionSpec {
	out := make(ConditionSpec, 0, len(s)+1)
	out = append(out, Condition{Column: OperatorKey, Value: op})
	for _, c := range s {
		if c.Column != OperatorKey {
			out = append(out, c)
		}
	}
	return out
}

// UnsafeRawCondition builds a spec whose WHERE clause is sql, used verbatim.
//
// The text is neither parsed nor escaped. The caller is responsible for
// quoting every value in it; passing user input here is an SQL injection risk.
func UnsafeRawCondition(sql string) ConditionSpec {
	return ConditionSpec{{Column: RawConditionKey, Value: sql}}
}

// Lookup returns the value of the first pair for column.
func (s ConditionSpec) Lookup(column string) (any, bool) {
	for _, c := range s {
		if c.Column == column {
			return c.Value, true
		}
	}
	return nil, false
}

// ConditionsFromMap converts a map into a ConditionSpec.
// Go maps carry no order, so the reserved keys come first and the remaining
// columns follow in sorted order.
func ConditionsFromMap(m map[string]any) ConditionSpec {
	spec := make(ConditionSpec, 0, len(m))
	for _, key := range []string{RawConditionKey, OperatorKey} {
		if v, ok := m[key]; ok {
			spec = append(spec, Condition{Column: key, Value: v})
		}
	}

	columns := make([]string, 0, len(m))
	for k := range m {
		if k != RawConditionKey && k != OperatorKey {
			columns = append(columns, k)
		}
	}
	sort.Strings(columns)
	for _, col := range columns {
		spec = append(spec, Condition{Column: col, Value: m[col]})
	}
	return spec
}

// TableQuery pairs a table with the conditions selecting its rows.
// A slice of TableQuery keeps the caller's table order.
type TableQuery struct {
	Table      string
	Conditions ConditionSpec
}

// TableID names the row of Table whose ID column equals ID.
type TableID struct {
	Table string
	ID    any
}
