package columnar

// Table is an ordered sequence of column views, the unit passed to the
// flatten/unflatten transforms. A table never owns column storage.
type Table []ColumnView

// NumColumns returns the number of top-level columns
func (t Table) NumColumns() int {
	return len(t)
}

// NumRows returns the row count shared by the table's columns
func (t Table) NumRows() int {
	if len(t) == 0 {
		return 0
	}
	return t[0].Size
}

// HasNested returns whether any top-level column is struct- or list-typed
func (t Table) HasNested() bool {
	for _, col := range t {
		if col.DataType.IsNested() {
			return true
		}
	}
	return false
}
