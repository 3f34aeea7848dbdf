package columnar

import (
	"errors"
)

// DataType represents the data type of a column
type DataType uint8

const (
	DataTypeInt8 DataType = iota
	DataTypeInt16
	DataTypeInt32
	DataTypeInt64
	DataTypeFloat32
	DataTypeFloat64
	DataTypeBool
	DataTypeString
	DataTypeStruct // nested: children share the parent's row count
	DataTypeList   // nested: child has its own row count, addressed via offsets
)

// Errors
var (
	ErrListNotFlattenable = errors.New("list columns cannot be flattened")
	ErrStructArity        = errors.New("flat table does not match template arity")
	ErrRowAlignment       = errors.New("child row count does not match parent")
	ErrOrderArity         = errors.New("ordering vector length does not match table arity")
	ErrUnsupportedType    = errors.New("unsupported data type")
)

// IsNested returns true for types that carry child columns
func (dt DataType) IsNested() bool {
	return dt == DataTypeStruct || dt == DataTypeList
}

// String returns the name of the data type
func (dt DataType) String() string {
	switch dt {
	case DataTypeInt8:
		return "INT8"
	case DataTypeInt16:
		return "INT16"
	case DataTypeInt32:
		return "INT32"
	case DataTypeInt64:
		return "INT64"
	case DataTypeFloat32:
		return "FLOAT32"
	case DataTypeFloat64:
		return "FLOAT64"
	case DataTypeBool:
		return "BOOL"
	case DataTypeString:
		return "STRING"
	case DataTypeStruct:
		return "STRUCT"
	case DataTypeList:
		return "LIST"
	default:
		return "UNKNOWN"
	}
}

// GetDataTypeSize returns the size in bytes of a fixed-width data type.
// Variable-width and nested types return 0.
func GetDataTypeSize(dt DataType) int {
	switch dt {
	case DataTypeBool, DataTypeInt8:
		return 1
	case DataTypeInt16:
		return 2
	case DataTypeInt32, DataTypeFloat32:
		return 4
	case DataTypeInt64, DataTypeFloat64:
		return 8
	default:
		return 0
	}
}
