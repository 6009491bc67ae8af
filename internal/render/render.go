// Package render prints loaded rows as JSON, YAML or a terminal table.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/pgload/internal/tui"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatJSON, FormatYAML, FormatTable}

// ParseFormat validates a format name; empty means JSON.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatJSON, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (valid: json, yaml, table): %w", s, pgload.ErrUsage)
}

// Renderer writes results in one format.
type Renderer struct {
	Format Format
	// Styled enables lipgloss colors in table output.
	Styled bool
	// MaxCellWidth truncates table cells longer than this many runes; zero disables it.
	MaxCellWidth int
}

// Write renders v with an unstyled Renderer.
func Write(w io.Writer, format Format, v any) error {
	return Renderer{Format: format}.Write(w, v)
}

// Write renders a pgload.ResultSet, pgload.Loaded or []pgload.Row.
func (r Renderer) Write(w io.Writer, v any) error {
	tables, single, err := normalize(v)
	if err != nil {
		return err
	}

	switch r.Format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if single {
			return enc.Encode(rowsOrEmpty(tables[0].Rows))
		}
		return enc.Encode(documents(tables))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		if single {
			return enc.Encode(rowsOrEmpty(tables[0].Rows))
		}
		return enc.Encode(documents(tables))
	case FormatTable:
		return r.writeTables(w, tables, single)
	default:
		return fmt.Errorf("unknown output format %q: %w", r.Format, pgload.ErrUsage)
	}
}

// document is the serialized shape of one TableResult. A slice of documents
// keeps the request order that a JSON object would lose.
type document struct {
	Table   string       `json:"table" yaml:"table"`
	Outcome string       `json:"outcome" yaml:"outcome"`
	Rows    []pgload.Row `json:"rows" yaml:"rows"`
	Error   string       `json:"error,omitempty" yaml:"error,omitempty"`
}

func documents(tables []pgload.TableResult) []document {
	docs := make([]document, len(tables))
	for i, t := range tables {
		docs[i] = document{Table: t.Table, Outcome: t.Outcome.String(), Rows: rowsOrEmpty(t.Rows)}
		if t.Err != nil {
			docs[i].Error = t.Err.Error()
		}
	}
	return docs
}

func rowsOrEmpty(rows []pgload.Row) []pgload.Row {
	if rows == nil {
		return []pgload.Row{}
	}
	return rows
}

func normalize(v any) (tables []pgload.TableResult, single bool, err error) {
	switch x := v.(type) {
	case pgload.ResultSet:
		return x.Tables, false, nil
	case *pgload.ResultSet:
		return x.Tables, false, nil
	case pgload.Loaded:
		if x.Single() {
			return []pgload.TableResult{{Rows: x.Rows()}}, true, nil
		}
		return x.Set().Tables, false, nil
	case []pgload.Row:
		return []pgload.TableResult{{Rows: x}}, true, nil
	default:
		return nil, false, fmt.Errorf("cannot render %T", v)
	}
}

func (r Renderer) writeTables(w io.Writer, tables []pgload.TableResult, single bool) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if !single {
			title := fmt.Sprintf("%s (%d rows)", t.Table, len(t.Rows))
			if t.Outcome == pgload.OutcomeFailed {
				title = fmt.Sprintf("%s (failed: %v)", t.Table, t.Err)
			}
			if r.Styled {
				style := tui.TitleStyle
				if t.Outcome == pgload.OutcomeFailed {
					style = tui.FailedStyle
				}
				title = style.Render(title)
			}
			if _, err := fmt.Fprintln(w, title); err != nil {
				return err
			}
		}
		if len(t.Rows) == 0 {
			continue
		}
		if _, err := fmt.Fprintln(w, r.table(t.Rows)); err != nil {
			return err
		}
	}
	return nil
}

func (r Renderer) table(rows []pgload.Row) string {
	columns := Columns(rows)
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(columns...)

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = truncate(FormatValue(row[col]), r.MaxCellWidth)
		}
		tbl.Row(cells...)
	}

	if r.Styled {
		tbl.BorderStyle(tui.BorderStyle).StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tui.HeaderStyle
			}
			if row >= 0 && row < len(rows) && rows[row][columns[col]] == nil {
				return tui.NullStyle.Padding(0, 1)
			}
			return tui.CellStyle
		})
	}
	return tbl.String()
}

// Columns returns the union of column names across rows, sorted.
func Columns(rows []pgload.Row) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		for col := range row {
			seen[col] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// FormatValue renders a cell for table output.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case []byte:
		return string(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}
