// Package textnum converts between string columns and float columns. The
// conversions are total: rows that cannot be parsed become nulls rather than
// failing the whole column, and nulls pass through in both directions.
package textnum

import (
	"fmt"
	"math"
	"strconv"

	"nestcol/columnar"
)

// ParseFloats converts a STRING view into an owned FLOAT64 column. Null
// rows stay null; empty or unparseable strings become null. "Inf", "-Inf"
// and "NaN" (any case) parse to the corresponding IEEE values.
func ParseFloats(v columnar.ColumnView) (*columnar.Column, error) {
	strs, ok := v.Data.([]string)
	if !ok || v.DataType != columnar.DataTypeString {
		return nil, fmt.Errorf("parse floats from %s column: %w", v.DataType, columnar.ErrUnsupportedType)
	}

	vals := make([]float64, v.Size)
	var mask *columnar.Bitmask
	markNull := func(i int) {
		if mask == nil {
			mask = columnar.NewBitmask(v.Size, true)
		}
		mask.SetInvalid(i)
	}

	for i := 0; i < v.Size; i++ {
		if !v.RowValid(i) {
			markNull(i)
			continue
		}
		s := strs[v.Offset+i]
		if s == "" {
			markNull(i)
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			markNull(i)
			continue
		}
		vals[i] = f
	}
	return columnar.NewColumn(columnar.DataTypeFloat64, v.Size, vals, mask), nil
}

// FormatFloats converts a FLOAT64 view into an owned STRING column. Null
// rows stay null. Finite values use the shortest representation that
// round-trips; non-finite values format as "Inf", "-Inf" and "NaN".
func FormatFloats(v columnar.ColumnView) (*columnar.Column, error) {
	floats, ok := v.Data.([]float64)
	if !ok || v.DataType != columnar.DataTypeFloat64 {
		return nil, fmt.Errorf("format floats from %s column: %w", v.DataType, columnar.ErrUnsupportedType)
	}

	vals := make([]string, v.Size)
	var mask *columnar.Bitmask
	for i := 0; i < v.Size; i++ {
		if !v.RowValid(i) {
			if mask == nil {
				mask = columnar.NewBitmask(v.Size, true)
			}
			mask.SetInvalid(i)
			continue
		}
		vals[i] = formatFloat(floats[v.Offset+i])
	}
	return columnar.NewColumn(columnar.DataTypeString, v.Size, vals, mask), nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
