package columnar

import (
	"reflect"
	"testing"
)

// makeMask builds a mask of n rows, valid everywhere except nullRows
func makeMask(n int, nullRows ...int) *Bitmask {
	mask := NewBitmask(n, true)
	for _, row := range nullRows {
		mask.SetInvalid(row)
	}
	return mask
}

// numsMember builds the 7-row numeric member used across superimpose tests
func numsMember(nullRows ...int) *Column {
	return NewColumn(DataTypeInt64, 7, []int64{10, 11, 12, 13, 14, 15, 16}, makeMask(7, nullRows...))
}

// listsMember builds the 7-row lists member used across superimpose tests,
// row i holding {20+i, 20+i}
func listsMember(nullRows ...int) *Column {
	elems := make([]int64, 0, 14)
	offsets := make([]int32, 0, 8)
	for i := 0; i < 7; i++ {
		offsets = append(offsets, int32(len(elems)))
		elems = append(elems, int64(20+i), int64(20+i))
	}
	offsets = append(offsets, int32(len(elems)))
	child := NewColumn(DataTypeInt64, len(elems), elems, nil)
	return NewListColumn(7, offsets, child, makeMask(7, nullRows...))
}

func int64Col(vals []int64, nullRows ...int) *Column {
	var mask *Bitmask
	if len(nullRows) > 0 {
		mask = makeMask(len(vals), nullRows...)
	}
	return NewColumn(DataTypeInt64, len(vals), vals, mask)
}

func stringCol(vals []string, nullRows ...int) *Column {
	var mask *Bitmask
	if len(nullRows) > 0 {
		mask = makeMask(len(vals), nullRows...)
	}
	return NewColumn(DataTypeString, len(vals), vals, mask)
}

// expectColumnsEquivalent fails the test unless both views have the same
// type and row count and every row is logically equal: same null state, and
// for valid rows the same materialized value at every nesting level
func expectColumnsEquivalent(t *testing.T, got, want ColumnView) {
	t.Helper()
	if got.DataType != want.DataType {
		t.Fatalf("Type mismatch: got %s, want %s", got.DataType, want.DataType)
	}
	if got.Size != want.Size {
		t.Fatalf("Row count mismatch: got %d, want %d", got.Size, want.Size)
	}
	for i := 0; i < got.Size; i++ {
		gotVal, gotValid := got.Value(i)
		wantVal, wantValid := want.Value(i)
		if gotValid != wantValid {
			t.Fatalf("Row %d: validity mismatch: got valid=%v, want valid=%v", i, gotValid, wantValid)
		}
		if gotValid && !reflect.DeepEqual(gotVal, wantVal) {
			t.Fatalf("Row %d: value mismatch: got %v, want %v", i, gotVal, wantVal)
		}
	}
}

// expectTablesEquivalent compares two tables column by column
func expectTablesEquivalent(t *testing.T, got, want Table) {
	t.Helper()
	if got.NumColumns() != want.NumColumns() {
		t.Fatalf("Column count mismatch: got %d, want %d", got.NumColumns(), want.NumColumns())
	}
	for i := range want {
		expectColumnsEquivalent(t, got[i], want[i])
	}
}

// invalidRows returns the invalid row indexes of a view, for error messages
// and direct null-position checks
func invalidRows(v ColumnView) []int {
	var rows []int
	for i := 0; i < v.Size; i++ {
		if !v.RowValid(i) {
			rows = append(rows, i)
		}
	}
	return rows
}

func expectInvalidRows(t *testing.T, v ColumnView, want []int) {
	t.Helper()
	got := invalidRows(v)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Invalid rows mismatch: got %v, want %v", got, want)
	}
}
