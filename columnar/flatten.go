package columnar

import (
	"fmt"
)

// NullabilityPolicy controls the nullability of leaves emitted by
// FlattenNestedColumns
type NullabilityPolicy int

const (
	// NullabilityEquivalent preserves each leaf's original nullability: a
	// leaf is emitted non-nullable only if neither it nor any ancestor
	// carries a validity mask.
	NullabilityEquivalent NullabilityPolicy = iota
	// NullabilityForce guarantees every emitted leaf carries a validity
	// mask, allocating an all-valid one where needed, so downstream
	// consumers see one uniform null representation.
	NullabilityForce
)

// Order is the sort direction threaded through flattening per leaf column
type Order int

const (
	OrderAscending Order = iota
	OrderDescending
)

// NullOrder is the null precedence threaded through flattening per leaf
type NullOrder int

const (
	NullsBefore NullOrder = iota
	NullsAfter
)

// FlattenResult is a flattened table plus the ordering vectors extended
// 1:1 per emitted leaf. The result owns every mask synthesized during
// flattening; keep it alive as long as the flat table is used.
type FlattenResult struct {
	Table          Table
	Order          []Order
	NullPrecedence []NullOrder

	masks     []*Bitmask
	haveOrder bool
	havePrec  bool
}

// BackingMasks returns the validity buffers synthesized during flattening.
// Their lifetime is tied to the result; exposed so a caller can extend it.
func (r *FlattenResult) BackingMasks() []*Bitmask {
	return r.masks
}

// FlattenNestedColumns converts a table containing struct columns into an
// equivalent table of only leaf columns. Each struct has its own and its
// ancestors' nulls superimposed onto its children first, then its members
// are emitted in declaration order in place of the struct: {a, {c, d}}
// flattens to {a, c, d}. Leaf columns pass through unchanged, except that
// the FORCE policy rewraps mask-less leaves with an owned all-valid mask.
//
// order and nullPrecedence may each be nil or length len(t); they are
// replicated onto every leaf a column produces. A list column anywhere in
// the hierarchy fails the whole call with ErrListNotFlattenable: lists have
// their own row count and cannot be aligned with the flat table's rows.
func FlattenNestedColumns(t Table, order []Order, nullPrecedence []NullOrder, policy NullabilityPolicy) (*FlattenResult, error) {
	if len(order) != 0 && len(order) != len(t) {
		return nil, fmt.Errorf("%d orders for %d columns: %w", len(order), len(t), ErrOrderArity)
	}
	if len(nullPrecedence) != 0 && len(nullPrecedence) != len(t) {
		return nil, fmt.Errorf("%d null orders for %d columns: %w", len(nullPrecedence), len(t), ErrOrderArity)
	}

	r := &FlattenResult{
		haveOrder: len(order) != 0,
		havePrec:  len(nullPrecedence) != 0,
	}
	for i, col := range t {
		colOrder := OrderAscending
		if r.haveOrder {
			colOrder = order[i]
		}
		colPrec := NullsBefore
		if r.havePrec {
			colPrec = nullPrecedence[i]
		}
		if err := r.flattenColumn(col, colOrder, colPrec, policy); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *FlattenResult) flattenColumn(v ColumnView, order Order, prec NullOrder, policy NullabilityPolicy) error {
	switch v.DataType {
	case DataTypeList:
		return fmt.Errorf("column of type %s: %w", v.DataType, ErrListNotFlattenable)

	case DataTypeStruct:
		superimposed, buffers, err := SuperimposeParentNulls(v)
		if err != nil {
			return err
		}
		r.masks = append(r.masks, buffers...)
		for _, child := range superimposed.Children {
			if err := r.flattenColumn(child, order, prec, policy); err != nil {
				return err
			}
		}

	default:
		if policy == NullabilityForce && v.Validity == nil {
			mask := NewBitmask(v.Offset+v.Size, true)
			r.masks = append(r.masks, mask)
			v.Validity = mask
		}
		r.Table = append(r.Table, v)
		if r.haveOrder {
			r.Order = append(r.Order, order)
		}
		if r.havePrec {
			r.NullPrecedence = append(r.NullPrecedence, prec)
		}
	}
	return nil
}

// UnflattenNestedColumns reconstructs the nested shape described by
// template from a flat table, consuming flat columns left to right: one per
// template leaf, and for each struct position as many as its member count
// requires, rewrapped under the template's own validity. The template is
// read-only and typically the table the flat one was flattened from; the
// round trip is equivalence, not byte identity, since the flat leaves carry
// superimposed ancestor nulls.
func UnflattenNestedColumns(flat Table, template Table) (Table, error) {
	pos := 0
	out := make(Table, 0, len(template))
	for i, tmpl := range template {
		rebuilt, err := unflattenColumn(flat, &pos, tmpl)
		if err != nil {
			return nil, fmt.Errorf("template column %d: %w", i, err)
		}
		out = append(out, rebuilt)
	}
	return out, nil
}

func unflattenColumn(flat Table, pos *int, tmpl ColumnView) (ColumnView, error) {
	if tmpl.DataType != DataTypeStruct {
		if *pos >= len(flat) {
			return ColumnView{}, fmt.Errorf("flat table exhausted after %d columns: %w", *pos, ErrStructArity)
		}
		leaf := flat[*pos]
		*pos++
		return leaf, nil
	}

	children := make([]ColumnView, len(tmpl.Children))
	for i, tc := range tmpl.Children {
		child, err := unflattenColumn(flat, pos, tc)
		if err != nil {
			return ColumnView{}, err
		}
		children[i] = child
	}

	out := tmpl
	out.Children = children
	return out, nil
}
