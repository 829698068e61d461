package clickhouse

import (
	"fmt"
	"reflect"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
)

// Column is a named, typed sequence of scalar values.
type Column struct {
	Name   string
	Type   string
	Values []interface{}
}

// Table is the in-memory tabular structure parsed from, or sent as, delimited
// text. Every column holds the same number of values.
type Table struct {
	Columns []Column
}

// NewTable creates an empty Table with the given column names.
func NewTable(names ...string) *Table {
	t := &Table{Columns: make([]Column, len(names))}
	for i, name := range names {
		t.Columns[i] = Column{Name: name}
	}
	return t
}

// NewTableWithTypes creates an empty Table with named and typed columns.
func NewTableWithTypes(names []string, types []string) (*Table, error) {
	if len(names) != len(types) {
		return nil, fmt.Errorf("got %d column names and %d column types", len(names), len(types))
	}
	t := NewTable(names...)
	for i, typ := range types {
		t.Columns[i].Type = typ
	}
	return t, nil
}

// AppendRow adds one value per column.
func (t *Table) AppendRow(values ...interface{}) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.Columns))
	}
	for i, v := range values {
		t.Columns[i].Values = append(t.Columns[i].Values, v)
	}
	return nil
}

// GetRowCount returns how many rows in the Table
func (t *Table) GetRowCount() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// GetColumnCount returns how many columns in the Table
func (t *Table) GetColumnCount() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// GetColumnName returns column name given column index
func (t *Table) GetColumnName(columnIndex int) string {
	return t.Columns[columnIndex].Name
}

// GetColumnType returns the ClickHouse type name given column index
func (t *Table) GetColumnType(columnIndex int) string {
	return t.Columns[columnIndex].Type
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Get returns a Table entry given row index and column index
func (t *Table) Get(rowIndex int, columnIndex int) interface{} {
	return t.Columns[columnIndex].Values[rowIndex]
}

// Row returns the values of one row.
func (t *Table) Row(rowIndex int) []interface{} {
	row := make([]interface{}, len(t.Columns))
	for i := range t.Columns {
		row[i] = t.Columns[i].Values[rowIndex]
	}
	return row
}

// GetString returns a Table entry as a string given row index and column index
func (t *Table) GetString(rowIndex int, columnIndex int) string {
	v := t.Get(rowIndex, columnIndex)
	if v == nil {
		return ""
	}
	return formatText(v)
}

// GetLong returns a Table int64 entry given row index and column index
func (t *Table) GetLong(rowIndex int, columnIndex int) int64 {
	val, _ := toInt64(t.Get(rowIndex, columnIndex))
	return val
}

// GetDouble returns a Table float64 entry given row index and column index
func (t *Table) GetDouble(rowIndex int, columnIndex int) float64 {
	val, _ := toFloat64(t.Get(rowIndex, columnIndex))
	return val
}

// Equal reports whether both tables have the same column names and values.
// Column types are not compared.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t.GetColumnCount() == 0 && other.GetColumnCount() == 0
	}
	if t.GetColumnCount() != other.GetColumnCount() || t.GetRowCount() != other.GetRowCount() {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i].Name != other.Columns[i].Name {
			return false
		}
		for r := range t.Columns[i].Values {
			if !reflect.DeepEqual(t.Columns[i].Values[r], other.Columns[i].Values[r]) {
				return false
			}
		}
	}
	return true
}

// Render formats the table as a boxed text grid.
func (t *Table) Render() string {
	w := prettytable.NewWriter()
	header := make(prettytable.Row, t.GetColumnCount())
	for i, name := range t.ColumnNames() {
		header[i] = name
	}
	w.AppendHeader(header)
	for r := 0; r < t.GetRowCount(); r++ {
		w.AppendRow(prettytable.Row(t.Row(r)))
	}
	return w.Render()
}

func (t *Table) validate() error {
	rows := t.GetRowCount()
	for _, c := range t.Columns {
		if len(c.Values) != rows {
			return fmt.Errorf("column %s has %d values, expected %d", c.Name, len(c.Values), rows)
		}
	}
	return nil
}
