package correction

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// Kind identifies how a column stores its cells.
type Kind int

const (
	// KindNumeric columns store float64 cells; math.NaN() marks a missing value.
	KindNumeric Kind = iota
	// KindText columns store raw strings, typically a datetime column that has
	// not been converted to elapsed seconds yet.
	KindText
)

// Column is a single named column of a Table. Exactly one of Float or Text is
// populated, selected by Kind.
type Column struct {
	Name  string
	Kind  Kind
	Float []float64
	Text  []string
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	if c.Kind == KindText {
		return len(c.Text)
	}
	return len(c.Float)
}

// NumericColumn builds a numeric column from the given values.
func NumericColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: KindNumeric, Float: values}
}

// TextColumn builds a text column from the given cells.
func TextColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: KindText, Text: values}
}

// Table is an in-memory, column-major sample table: one time column plus one
// or more value columns, addressed by integer row position. Detectors treat a
// Table as read-only; correctors always work on a Copy.
type Table struct {
	cols []*Column
}

// NewTable assembles a table from columns. All columns must have the same
// length and distinct names.
func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{}
	for _, c := range cols {
		if err := t.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddColumn appends a column to the table.
func (t *Table) AddColumn(c *Column) error {
	if t.Column(c.Name) != nil {
		return fmt.Errorf("duplicate column name %q", c.Name)
	}
	if len(t.cols) > 0 && c.Len() != t.Len() {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.Len())
	}
	t.cols = append(t.cols, c)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil when absent.
func (t *Table) Column(name string) *Column {
	for _, c := range t.cols {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Values returns the live float slice of a numeric column, or nil when the
// column is absent or not numeric. Mutating the slice mutates the table.
func (t *Table) Values(name string) []float64 {
	c := t.Column(name)
	if c == nil || c.Kind != KindNumeric {
		return nil
	}
	return c.Float
}

// NumericColumnNames returns the names of all numeric columns in table order.
func (t *Table) NumericColumnNames() []string {
	var names []string
	for _, c := range t.cols {
		if c.Kind == KindNumeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	cp := &Table{cols: make([]*Column, 0, len(t.cols))}
	for _, c := range t.cols {
		nc := &Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == KindText {
			nc.Text = append([]string(nil), c.Text...)
		} else {
			nc.Float = append([]float64(nil), c.Float...)
		}
		cp.cols = append(cp.cols, nc)
	}
	return cp
}

// SortBy stably sorts all rows ascending by the named numeric column.
// Rows whose sort key is NaN are placed last.
func (t *Table) SortBy(name string) error {
	key := t.Values(name)
	if key == nil {
		return fmt.Errorf("sort column %q is absent or not numeric", name)
	}
	n := t.Len()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		x, y := key[perm[a]], key[perm[b]]
		if math.IsNaN(x) {
			return false
		}
		if math.IsNaN(y) {
			return true
		}
		return x < y
	})
	for _, c := range t.cols {
		if c.Kind == KindText {
			next := make([]string, n)
			for i, p := range perm {
				next[i] = c.Text[p]
			}
			c.Text = next
		} else {
			next := make([]float64, n)
			for i, p := range perm {
				next[i] = c.Float[p]
			}
			c.Float = next
		}
	}
	return nil
}

// InsertRows splices len(times) new rows into the table at position pos. The
// named time column receives the given timestamps; every other numeric column
// receives NaN and text columns receive empty strings.
func (t *Table) InsertRows(pos int, timeCol string, times []float64) error {
	if pos < 0 || pos > t.Len() {
		return fmt.Errorf("insert position %d out of range [0,%d]", pos, t.Len())
	}
	if t.Values(timeCol) == nil {
		return fmt.Errorf("time column %q is absent or not numeric", timeCol)
	}
	k := len(times)
	for _, c := range t.cols {
		if c.Kind == KindText {
			next := make([]string, 0, len(c.Text)+k)
			next = append(next, c.Text[:pos]...)
			next = append(next, make([]string, k)...)
			next = append(next, c.Text[pos:]...)
			c.Text = next
			continue
		}
		fill := make([]float64, k)
		if c.Name == timeCol {
			copy(fill, times)
		} else {
			for i := range fill {
				fill[i] = math.NaN()
			}
		}
		next := make([]float64, 0, len(c.Float)+k)
		next = append(next, c.Float[:pos]...)
		next = append(next, fill...)
		next = append(next, c.Float[pos:]...)
		c.Float = next
	}
	return nil
}

// loggerOrDefault lets components accept a nil logger.
func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
