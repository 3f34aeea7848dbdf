package columnar

import (
	"fmt"
)

// SuperimposeParentNulls pushes each struct's validity down into its
// children, so that a child row reads as invalid when the child or any
// enclosing struct ancestor is invalid at that row. Non-struct inputs are
// returned unchanged with no backing buffers; list columns are opaque
// leaves for this operation and their elements are not descended into.
//
// The returned masks back the derived view. The caller must keep them alive
// for as long as the view is used; nothing else references them.
//
// Applying the operation to its own output is a no-op: once parent nulls
// are baked into a child mask, re-ANDing the same bits changes nothing.
func SuperimposeParentNulls(v ColumnView) (ColumnView, []*Bitmask, error) {
	if v.DataType != DataTypeStruct {
		return v, nil, nil
	}

	// The struct's own nulls only need pushing down if there is at least
	// one invalid row in the view's logical range.
	parentHasNulls := v.Validity.HasInvalid(v.Offset, v.Size)

	var buffers []*Bitmask
	children := make([]ColumnView, len(v.Children))
	for i, child := range v.Children {
		if child.Size != v.Size {
			return ColumnView{}, nil, fmt.Errorf("struct child %d has %d rows, parent has %d: %w",
				i, child.Size, v.Size, ErrRowAlignment)
		}

		if parentHasNulls {
			// Combine parent and child validity at the same logical row.
			// The new mask covers the child's full addressable range so the
			// derived view keeps its original row offset.
			combined := andMasksAt(v.Validity, v.Offset, child.Validity, child.Offset, child.Offset, v.Size)
			buffers = append(buffers, combined)
			child.Validity = combined
		}

		// Recurse regardless of the parent's nulls: a member struct still
		// has to push its own (possibly now combined) nulls to
		// grandchildren.
		derived, childBuffers, err := SuperimposeParentNulls(child)
		if err != nil {
			return ColumnView{}, nil, err
		}
		buffers = append(buffers, childBuffers...)
		children[i] = derived
	}

	out := v
	out.Children = children
	return out, buffers, nil
}
