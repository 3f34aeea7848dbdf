package colfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"nestcol/columnar"
)

// ChunkedWriter writes a sequence of leaf-only tables ("chunks") into a
// single columnar file. The lifecycle spans three phases: NewChunkedWriter
// begins the file, WriteChunk appends any number of row chunks, and Close
// ends it by writing the footer directory and rewriting the header.
//
// Chunks must be leaf-only: callers flatten nested tables first (typically
// with columnar.FlattenNestedColumns under the FORCE policy, which also
// bakes ancestor nulls into the leaves this writer records).
type ChunkedWriter struct {
	file   *os.File
	offset uint64
	schema []LeafColumn
	opts   Options

	header FileHeader
	chunks []chunkInfo
	// running row offset of the next chunk within the whole file
	currentChunkOffset uint64
	closed             bool
}

// NewChunkedWriter creates a new columnar file and begins a chunked write
func NewChunkedWriter(path string, schema []LeafColumn, opts Options) (*ChunkedWriter, error) {
	for _, col := range schema {
		if col.DataType.IsNested() {
			return nil, fmt.Errorf("schema column %q is %s: %w", col.Name, col.DataType, ErrNestedChunk)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	w := &ChunkedWriter{
		file:   file,
		schema: schema,
		opts:   opts,
		header: FileHeader{
			MagicNumber:       MagicNumber,
			MajorVersion:      MajorVersion,
			MinorVersion:      MinorVersion,
			ColumnCount:       uint32(len(schema)),
			CreationTimestamp: uint64(time.Now().Unix()),
		},
	}

	// Write a placeholder header; Close rewrites it with the footer offset
	if err := w.writeHeader(); err != nil {
		file.Close()
		return nil, err
	}
	w.offset = FileHeaderSize
	return w, nil
}

// SchemaFromTable derives a writer schema from a flattened table, naming
// columns by position. Under FORCE flattening every column reports nullable.
func SchemaFromTable(t columnar.Table) []LeafColumn {
	schema := make([]LeafColumn, len(t))
	for i, col := range t {
		schema[i] = LeafColumn{
			Name:     fmt.Sprintf("c%d", i),
			DataType: col.DataType,
			Nullable: col.Nullable(),
		}
	}
	return schema
}

// WriteChunk appends one leaf-only table as a row chunk. All columns must
// match the writer schema and share one row count.
func (w *ChunkedWriter) WriteChunk(t columnar.Table) error {
	if w.closed {
		return ErrWriterClosed
	}
	if t.NumColumns() != len(w.schema) {
		return fmt.Errorf("chunk has %d columns, schema has %d: %w",
			t.NumColumns(), len(w.schema), ErrSchemaMismatch)
	}

	rows := t.NumRows()
	info := chunkInfo{
		RowOffset: w.currentChunkOffset,
		Rows:      uint64(rows),
	}

	for i, col := range t {
		if col.DataType.IsNested() {
			return fmt.Errorf("chunk column %d is %s: %w", i, col.DataType, ErrNestedChunk)
		}
		if col.DataType != w.schema[i].DataType {
			return fmt.Errorf("chunk column %d is %s, schema says %s: %w",
				i, col.DataType, w.schema[i].DataType, ErrSchemaMismatch)
		}
		if col.Size != rows {
			return fmt.Errorf("chunk column %d has %d rows, chunk has %d: %w",
				i, col.Size, rows, columnar.ErrRowAlignment)
		}

		payload, err := encodeValues(col)
		if err != nil {
			return err
		}
		page, err := newPage(PageTypeData, payload, w.opts.DataCompression)
		if err != nil {
			return err
		}
		cc := columnChunk{DataOffset: w.offset}
		n, err := writePage(w.file, page)
		if err != nil {
			return err
		}
		w.offset += uint64(n)

		if nullMap := nullMapFromView(col); nullMap != nil {
			data, err := marshalNullMap(nullMap)
			if err != nil {
				return err
			}
			nullPage, err := newPage(PageTypeNullMap, data, w.opts.NullMapCompression)
			if err != nil {
				return err
			}
			cc.NullMapOffset = w.offset
			cc.NullCount = nullMap.GetCardinality()
			n, err := writePage(w.file, nullPage)
			if err != nil {
				return err
			}
			w.offset += uint64(n)
		}

		info.Columns = append(info.Columns, cc)
	}

	w.chunks = append(w.chunks, info)
	w.currentChunkOffset += uint64(rows)
	w.header.RowCount += uint64(rows)
	w.header.ChunkCount++
	return nil
}

// Close ends the chunked write: it writes the footer directory, rewrites
// the header with the final counts and footer offset, and closes the file
func (w *ChunkedWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	footer, err := newPage(PageTypeFooter, w.marshalFooter(), CompressionNone)
	if err != nil {
		w.file.Close()
		return err
	}
	w.header.FooterOffset = w.offset
	if _, err := writePage(w.file, footer); err != nil {
		w.file.Close()
		return err
	}

	if err := w.writeHeader(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	return w.file.Close()
}

// writeHeader writes the fixed header at offset 0
func (w *ChunkedWriter) writeHeader() error {
	buf := make([]byte, FileHeaderSize)
	ByteOrder.PutUint32(buf[0:4], w.header.MagicNumber)
	ByteOrder.PutUint16(buf[4:6], w.header.MajorVersion)
	ByteOrder.PutUint16(buf[6:8], w.header.MinorVersion)
	ByteOrder.PutUint64(buf[8:16], w.header.FooterOffset)
	ByteOrder.PutUint64(buf[16:24], w.header.RowCount)
	ByteOrder.PutUint32(buf[24:28], w.header.ChunkCount)
	ByteOrder.PutUint32(buf[28:32], w.header.ColumnCount)
	ByteOrder.PutUint64(buf[32:40], w.header.CreationTimestamp)

	if _, err := w.file.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// marshalFooter serializes the schema and chunk directory
func (w *ChunkedWriter) marshalFooter() []byte {
	buf := new(bytes.Buffer)

	binary.Write(buf, ByteOrder, uint32(len(w.schema)))
	for _, col := range w.schema {
		binary.Write(buf, ByteOrder, uint16(len(col.Name)))
		buf.WriteString(col.Name)
		binary.Write(buf, ByteOrder, uint8(col.DataType))
		nullable := uint8(0)
		if col.Nullable {
			nullable = 1
		}
		binary.Write(buf, ByteOrder, nullable)
	}

	binary.Write(buf, ByteOrder, uint32(len(w.chunks)))
	for _, chunk := range w.chunks {
		binary.Write(buf, ByteOrder, chunk.RowOffset)
		binary.Write(buf, ByteOrder, chunk.Rows)
		for _, cc := range chunk.Columns {
			binary.Write(buf, ByteOrder, cc.DataOffset)
			binary.Write(buf, ByteOrder, cc.NullMapOffset)
			binary.Write(buf, ByteOrder, cc.NullCount)
		}
	}
	return buf.Bytes()
}
