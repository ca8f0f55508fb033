package dataprocessing

import (
	"fmt"
	"strings"
)

// Canonical channel names produced by header normalization for the
// standard test-station export format.
const (
	ColVoltage     = "i-v_voltage_ch1_v"
	ColCurrent     = "i-v_current_ch1_ma"
	ColTemperature = "temperature_k"

	// ColCurrentDensity is appended by WithCurrentDensity, not read
	// from the file.
	ColCurrentDensity = "current_density"
)

// Table is a cleaned, column-ordered numeric table. Missing or
// unparseable cells are NaN. A Table is immutable after load except for
// appending derived columns.
type Table struct {
	names   []string
	columns map[string][]float64
	rows    int
}

// NewTable creates a table from ordered column names and their values.
// All columns must have the same length.
func NewTable(names []string, columns map[string][]float64) (*Table, error) {
	rows := -1
	for _, name := range names {
		values, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("column %q listed but not provided", name)
		}
		if rows == -1 {
			rows = len(values)
		} else if len(values) != rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", name, len(values), rows)
		}
	}
	if rows == -1 {
		rows = 0
	}
	return &Table{names: append([]string(nil), names...), columns: columns, rows: rows}, nil
}

// ColumnNames returns the column names in file order
func (t *Table) ColumnNames() []string {
	return append([]string(nil), t.names...)
}

// NumRows returns the number of data rows
func (t *Table) NumRows() int {
	return t.rows
}

// HasColumn reports whether the named column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Column returns the values of the named column. The returned slice is
// shared; callers must not modify it.
func (t *Table) Column(name string) ([]float64, error) {
	values, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("no such column: %q (have %s)", name, strings.Join(t.names, ", "))
	}
	return values, nil
}

// AppendColumn adds a derived column. The column must match the row
// count and must not already exist.
func (t *Table) AppendColumn(name string, values []float64) error {
	if _, exists := t.columns[name]; exists {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(values) != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.rows)
	}
	t.names = append(t.names, name)
	t.columns[name] = values
	return nil
}
