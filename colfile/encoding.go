package colfile

import (
	"fmt"
	"math"

	"nestcol/columnar"
)

// encodeValues serializes the values of a leaf view into a page payload.
// Rows are taken from the view's logical range, so sliced views encode only
// their visible rows. Values at invalid rows are encoded as stored; the
// null map is what gives them meaning.
func encodeValues(v columnar.ColumnView) ([]byte, error) {
	switch data := v.Data.(type) {
	case []int8:
		buf := make([]byte, v.Size)
		for i, x := range data[v.Offset : v.Offset+v.Size] {
			buf[i] = byte(x)
		}
		return buf, nil
	case []int16:
		buf := make([]byte, 2*v.Size)
		for i, x := range data[v.Offset : v.Offset+v.Size] {
			ByteOrder.PutUint16(buf[2*i:], uint16(x))
		}
		return buf, nil
	case []int32:
		buf := make([]byte, 4*v.Size)
		for i, x := range data[v.Offset : v.Offset+v.Size] {
			ByteOrder.PutUint32(buf[4*i:], uint32(x))
		}
		return buf, nil
	case []int64:
		buf := make([]byte, 8*v.Size)
		for i, x := range data[v.Offset : v.Offset+v.Size] {
			ByteOrder.PutUint64(buf[8*i:], uint64(x))
		}
		return buf, nil
	case []float32:
		buf := make([]byte, 4*v.Size)
		for i, x := range data[v.Offset : v.Offset+v.Size] {
			ByteOrder.PutUint32(buf[4*i:], math.Float32bits(x))
		}
		return buf, nil
	case []float64:
		buf := make([]byte, 8*v.Size)
		for i, x := range data[v.Offset : v.Offset+v.Size] {
			ByteOrder.PutUint64(buf[8*i:], math.Float64bits(x))
		}
		return buf, nil
	case []bool:
		buf := make([]byte, v.Size)
		for i, x := range data[v.Offset : v.Offset+v.Size] {
			if x {
				buf[i] = 1
			}
		}
		return buf, nil
	case []string:
		size := 0
		for _, s := range data[v.Offset : v.Offset+v.Size] {
			size += 4 + len(s)
		}
		buf := make([]byte, 0, size)
		for _, s := range data[v.Offset : v.Offset+v.Size] {
			var lenBuf [4]byte
			ByteOrder.PutUint32(lenBuf[:], uint32(len(s)))
			buf = append(buf, lenBuf[:]...)
			buf = append(buf, s...)
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("cannot encode column of type %s: %w", v.DataType, columnar.ErrUnsupportedType)
	}
}

// decodeValues deserializes a page payload back into a typed value slice
func decodeValues(dt columnar.DataType, rows int, payload []byte) (interface{}, error) {
	switch dt {
	case columnar.DataTypeInt8:
		vals := make([]int8, rows)
		for i := range vals {
			vals[i] = int8(payload[i])
		}
		return vals, nil
	case columnar.DataTypeInt16:
		vals := make([]int16, rows)
		for i := range vals {
			vals[i] = int16(ByteOrder.Uint16(payload[2*i:]))
		}
		return vals, nil
	case columnar.DataTypeInt32:
		vals := make([]int32, rows)
		for i := range vals {
			vals[i] = int32(ByteOrder.Uint32(payload[4*i:]))
		}
		return vals, nil
	case columnar.DataTypeInt64:
		vals := make([]int64, rows)
		for i := range vals {
			vals[i] = int64(ByteOrder.Uint64(payload[8*i:]))
		}
		return vals, nil
	case columnar.DataTypeFloat32:
		vals := make([]float32, rows)
		for i := range vals {
			vals[i] = math.Float32frombits(ByteOrder.Uint32(payload[4*i:]))
		}
		return vals, nil
	case columnar.DataTypeFloat64:
		vals := make([]float64, rows)
		for i := range vals {
			vals[i] = math.Float64frombits(ByteOrder.Uint64(payload[8*i:]))
		}
		return vals, nil
	case columnar.DataTypeBool:
		vals := make([]bool, rows)
		for i := range vals {
			vals[i] = payload[i] != 0
		}
		return vals, nil
	case columnar.DataTypeString:
		vals := make([]string, rows)
		pos := 0
		for i := range vals {
			if pos+4 > len(payload) {
				return nil, fmt.Errorf("string payload truncated at row %d", i)
			}
			n := int(ByteOrder.Uint32(payload[pos:]))
			pos += 4
			if pos+n > len(payload) {
				return nil, fmt.Errorf("string payload truncated at row %d", i)
			}
			vals[i] = string(payload[pos : pos+n])
			pos += n
		}
		return vals, nil
	default:
		return nil, fmt.Errorf("cannot decode column of type %s: %w", dt, columnar.ErrUnsupportedType)
	}
}
