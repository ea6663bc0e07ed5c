package store

import (
	"encoding/json"
	"fmt"
)

// Table is a query result: column names in the order the engine returned them
// and one value slice per row, aligned with Columns.
type Table struct {
	Columns []string
	Rows    [][]any
}

func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols, Rows: [][]any{}}
}

func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the named cell of row i, or nil if the column does not exist.
func (t *Table) Value(i int, name string) any {
	idx := t.Index(name)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return nil
	}
	return t.Rows[i][idx]
}

// AddColumn appends a column computed from each row. It is the only mutation
// a table supports; existing cells are never rewritten.
func (t *Table) AddColumn(name string, fn func(row []any) (any, error)) error {
	if t.Index(name) >= 0 {
		return fmt.Errorf("column %q already exists", name)
	}
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		v, err := fn(row)
		if err != nil {
			return fmt.Errorf("column %q row %d: %w", name, i, err)
		}
		values[i] = v
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

func (t *Table) MarshalJSON() ([]byte, error) {
	rows := t.Rows
	if rows == nil {
		rows = [][]any{}
	}
	return json.Marshal(struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}{Columns: t.Columns, Rows: rows})
}
