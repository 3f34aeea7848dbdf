package colfile

import (
	"encoding/binary"
	"errors"

	"nestcol/columnar"
)

// Constants
const (
	MagicNumber  = 0x4E434631 // "NCF1"
	MajorVersion = 1
	MinorVersion = 0

	// Fixed header size at the start of the file, rewritten on Close
	FileHeaderSize = 64

	// Page frame header size
	PageHeaderSize = 24
)

// Errors
var (
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported file version")
	ErrChecksumMismatch   = errors.New("page checksum mismatch")
	ErrNestedChunk        = errors.New("chunk contains nested columns")
	ErrSchemaMismatch     = errors.New("chunk does not match writer schema")
	ErrWriterClosed       = errors.New("writer is closed")
	ErrChunkOutOfRange    = errors.New("chunk index out of range")
)

// PageType represents the kind of page frame in the file
type PageType uint8

const (
	PageTypeData    PageType = 0x01
	PageTypeNullMap PageType = 0x02
	PageTypeFooter  PageType = 0x03
)

// ByteOrder is the byte order used for encoding
var ByteOrder = binary.LittleEndian

// FileHeader is the fixed-size header at offset 0. FooterOffset and the
// counts are filled in when the writer is closed.
type FileHeader struct {
	MagicNumber       uint32
	MajorVersion      uint16
	MinorVersion      uint16
	FooterOffset      uint64
	RowCount          uint64
	ChunkCount        uint32
	ColumnCount       uint32
	CreationTimestamp uint64
}

// LeafColumn describes one leaf column of the file schema
type LeafColumn struct {
	Name     string
	DataType columnar.DataType
	Nullable bool
}

// columnChunk locates one column's pages within a chunk
type columnChunk struct {
	DataOffset    uint64
	NullMapOffset uint64 // 0 when the column has no nulls in this chunk
	NullCount     uint64
}

// chunkInfo is one entry of the footer's chunk directory
type chunkInfo struct {
	RowOffset uint64 // first row of the chunk within the whole file
	Rows      uint64
	Columns   []columnChunk
}
