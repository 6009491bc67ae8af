package fixtures

import (
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/pgload/internal/db"
)

// SchemaBuilder provides a fluent API for building the SQL that seeds an
// integration test database.
//
// Example usage:
//
//	sql := NewSchemaBuilder().
//	    Table("users", "id int PRIMARY KEY, name text").
//	    Row("users", 1, "ada").
//	    Build()
type SchemaBuilder struct {
	statements []string
}

// NewSchemaBuilder creates an empty builder.
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{}
}

// Table adds a CREATE TABLE statement. columns is the raw column list.
func (b *SchemaBuilder) Table(name, columns string) *SchemaBuilder {
	b.statements = append(b.statements,
		"CREATE TABLE "+pgx.Identifier{name}.Sanitize()+" ("+columns+");")
	return b
}

// Row adds an INSERT of values in column order.
func (b *SchemaBuilder) Row(table string, values ...any) *SchemaBuilder {
	literals := make([]string, len(values))
	for i, v := range values {
		literals[i] = db.QuoteLiteral(v)
	}
	b.statements = append(b.statements,
		"INSERT INTO "+pgx.Identifier{table}.Sanitize()+" VALUES ("+strings.Join(literals, ", ")+");")
	return b
}

// Exec adds an arbitrary statement.
func (b *SchemaBuilder) Exec(sql string) *SchemaBuilder {
	b.statements = append(b.statements, sql)
	return b
}

// Build returns all statements joined by newlines.
func (b *SchemaBuilder) Build() string {
	return strings.Join(b.statements, "\n")
}

// Shop returns the schema shared by the integration tests: users with a
// NULL email, orders referencing them, and an empty audit table.
func Shop() *SchemaBuilder {
	return NewSchemaBuilder().
		Table("users", "id int PRIMARY KEY, name text NOT NULL, email text, active boolean NOT NULL").
		Row("users", 1, "ada", "ada@example.com", true).
		Row("users", 2, "grace", nil, true).
		Row("users", 3, "linus", "linus@example.com", false).
		Table("orders", "id int PRIMARY KEY, user_id int REFERENCES users(id), total numeric(10,2), note text").
		Row("orders", 10, 1, 12.5, "it's fragile").
		Row("orders", 11, 2, 99.99, nil).
		Table("audit", "id serial PRIMARY KEY, action text")
}
