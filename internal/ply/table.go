package ply

import "fmt"

// Table holds the scalar properties of one element as float64 columns,
// in header order.
type Table struct {
	n     int
	names []string
	cols  map[string][]float64
}

// NewTable returns an empty table with n rows.
func NewTable(n int) *Table {
	return &Table{n: n, cols: make(map[string][]float64)}
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.n }

// Column returns the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	c, ok := t.cols[name]
	return c, ok
}

// Fields returns the column names in the order they were added.
func (t *Table) Fields() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Set adds or replaces a column. values must have Len() entries.
func (t *Table) Set(name string, values []float64) error {
	if len(values) != t.n {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.n)
	}
	if _, ok := t.cols[name]; !ok {
		t.names = append(t.names, name)
	}
	t.cols[name] = values
	return nil
}
