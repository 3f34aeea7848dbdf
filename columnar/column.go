package columnar

// Column owns the storage for one column: a typed value slice, an optional
// validity bitmask, and child columns for nested types. Views never own
// memory, so a Column must outlive every view taken from it.
type Column struct {
	DataType DataType
	Size     int
	Data     interface{} // typed slice ([]int64, []float64, []string, ...); nil for nested types
	Validity *Bitmask
	Offsets  []int32 // list columns only: element offsets into the child, len Size+1
	Children []*Column
}

// NewColumn creates a leaf column over an existing typed slice
func NewColumn(dt DataType, size int, data interface{}, validity *Bitmask) *Column {
	return &Column{
		DataType: dt,
		Size:     size,
		Data:     data,
		Validity: validity,
	}
}

// NewStructColumn creates a struct column over its member columns. Members
// are referenced, never copied, and must share the struct's row count.
func NewStructColumn(size int, validity *Bitmask, children ...*Column) *Column {
	return &Column{
		DataType: DataTypeStruct,
		Size:     size,
		Validity: validity,
		Children: children,
	}
}

// NewListColumn creates a list column whose i-th row spans child rows
// [offsets[i], offsets[i+1])
func NewListColumn(size int, offsets []int32, child *Column, validity *Bitmask) *Column {
	return &Column{
		DataType: DataTypeList,
		Size:     size,
		Validity: validity,
		Offsets:  offsets,
		Children: []*Column{child},
	}
}

// View returns a non-owning view over the whole column
func (c *Column) View() ColumnView {
	children := make([]ColumnView, len(c.Children))
	for i, child := range c.Children {
		children[i] = child.View()
	}
	return ColumnView{
		DataType: c.DataType,
		Size:     c.Size,
		Offset:   0,
		Data:     c.Data,
		Validity: c.Validity,
		Offsets:  c.Offsets,
		Children: children,
	}
}

// ColumnView is a non-owning descriptor of a column range: logical type,
// row count, row offset into the backing storage, optional validity
// reference and child views for nested types. Row i of the view is row
// Offset+i of the backing buffers.
type ColumnView struct {
	DataType DataType
	Size     int
	Offset   int
	Data     interface{}
	Validity *Bitmask
	Offsets  []int32
	Children []ColumnView
}

// Nullable returns whether the view carries a validity mask
func (v ColumnView) Nullable() bool {
	return v.Validity != nil
}

// RowValid returns whether row i of the view is valid at this level.
// Ancestor validity is not consulted; superimposition bakes it in.
func (v ColumnView) RowValid(i int) bool {
	return v.Validity.Valid(v.Offset + i)
}

// NullCount returns the number of invalid rows in the view's range
func (v ColumnView) NullCount() int {
	return v.Validity.CountInvalid(v.Offset, v.Size)
}

// Child returns the i-th child view
func (v ColumnView) Child(i int) ColumnView {
	return v.Children[i]
}

// Slice returns a zero-copy view of rows [begin, end). No buffers are
// copied; the slice only advances the row offset. Struct children share the
// parent's row alignment and are sliced along with it; a list child keeps
// its own row count and is left untouched.
func (v ColumnView) Slice(begin, end int) ColumnView {
	out := v
	out.Offset = v.Offset + begin
	out.Size = end - begin
	if v.DataType == DataTypeStruct {
		children := make([]ColumnView, len(v.Children))
		for i, child := range v.Children {
			children[i] = child.Slice(begin, end)
		}
		out.Children = children
	}
	return out
}

// Value returns the logical value of row i and whether it is valid at this
// level. Struct rows materialize as []interface{} of member values, list
// rows as []interface{} of element values.
func (v ColumnView) Value(i int) (interface{}, bool) {
	if !v.RowValid(i) {
		return nil, false
	}
	switch v.DataType {
	case DataTypeStruct:
		members := make([]interface{}, len(v.Children))
		for m, child := range v.Children {
			val, valid := child.Value(i)
			if !valid {
				val = nil
			}
			members[m] = val
		}
		return members, true
	case DataTypeList:
		begin := int(v.Offsets[v.Offset+i])
		end := int(v.Offsets[v.Offset+i+1])
		child := v.Children[0]
		elems := make([]interface{}, 0, end-begin)
		for e := begin; e < end; e++ {
			val, valid := child.Value(e - child.Offset)
			if !valid {
				val = nil
			}
			elems = append(elems, val)
		}
		return elems, true
	default:
		return v.leafValue(i), true
	}
}

func (v ColumnView) leafValue(i int) interface{} {
	row := v.Offset + i
	switch data := v.Data.(type) {
	case []int8:
		return data[row]
	case []int16:
		return data[row]
	case []int32:
		return data[row]
	case []int64:
		return data[row]
	case []float32:
		return data[row]
	case []float64:
		return data[row]
	case []bool:
		return data[row]
	case []string:
		return data[row]
	default:
		return nil
	}
}
