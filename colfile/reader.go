package colfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"nestcol/columnar"
)

// Reader opens a columnar file and reconstructs its chunks as leaf tables
type Reader struct {
	file   *os.File
	header FileHeader
	schema []LeafColumn
	chunks []chunkInfo
}

// OpenReader opens an existing columnar file and reads its footer directory
func OpenReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{file: file}
	if err := r.readHeader(); err != nil {
		file.Close()
		return nil, err
	}
	if err := r.readFooter(); err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

// Schema returns the file's leaf column schema
func (r *Reader) Schema() []LeafColumn {
	return r.schema
}

// NumChunks returns the number of row chunks in the file
func (r *Reader) NumChunks() int {
	return len(r.chunks)
}

// NumRows returns the total row count across all chunks
func (r *Reader) NumRows() uint64 {
	return r.header.RowCount
}

// ReadChunk materializes chunk i as owned leaf columns. The returned
// columns own their buffers; views taken from them stay valid until the
// columns are released.
func (r *Reader) ReadChunk(i int) ([]*columnar.Column, error) {
	if i < 0 || i >= len(r.chunks) {
		return nil, fmt.Errorf("chunk %d of %d: %w", i, len(r.chunks), ErrChunkOutOfRange)
	}
	chunk := r.chunks[i]
	rows := int(chunk.Rows)

	columns := make([]*columnar.Column, len(r.schema))
	for c, cc := range chunk.Columns {
		page, err := readPageAt(r.file, int64(cc.DataOffset))
		if err != nil {
			return nil, fmt.Errorf("chunk %d column %d: %w", i, c, err)
		}
		if page.Type != PageTypeData {
			return nil, fmt.Errorf("chunk %d column %d: expected data page, got %d", i, c, page.Type)
		}
		payload, err := page.Payload()
		if err != nil {
			return nil, fmt.Errorf("chunk %d column %d: %w", i, c, err)
		}
		data, err := decodeValues(r.schema[c].DataType, rows, payload)
		if err != nil {
			return nil, fmt.Errorf("chunk %d column %d: %w", i, c, err)
		}

		var validity *columnar.Bitmask
		if cc.NullMapOffset != 0 {
			nullPage, err := readPageAt(r.file, int64(cc.NullMapOffset))
			if err != nil {
				return nil, fmt.Errorf("chunk %d column %d null map: %w", i, c, err)
			}
			if nullPage.Type != PageTypeNullMap {
				return nil, fmt.Errorf("chunk %d column %d: expected null map page, got %d", i, c, nullPage.Type)
			}
			nullPayload, err := nullPage.Payload()
			if err != nil {
				return nil, fmt.Errorf("chunk %d column %d null map: %w", i, c, err)
			}
			nullMap, err := unmarshalNullMap(nullPayload, cc.NullCount)
			if err != nil {
				return nil, fmt.Errorf("chunk %d column %d: %w", i, c, err)
			}
			validity = validityFromNullMap(nullMap, rows)
		} else if r.schema[c].Nullable {
			validity = columnar.NewBitmask(rows, true)
		}

		columns[c] = columnar.NewColumn(r.schema[c].DataType, rows, data, validity)
	}
	return columns, nil
}

// Close closes the underlying file
func (r *Reader) Close() error {
	return r.file.Close()
}

// readHeader reads and validates the fixed file header
func (r *Reader) readHeader() error {
	buf := make([]byte, FileHeaderSize)
	if _, err := r.file.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	r.header = FileHeader{
		MagicNumber:       ByteOrder.Uint32(buf[0:4]),
		MajorVersion:      ByteOrder.Uint16(buf[4:6]),
		MinorVersion:      ByteOrder.Uint16(buf[6:8]),
		FooterOffset:      ByteOrder.Uint64(buf[8:16]),
		RowCount:          ByteOrder.Uint64(buf[16:24]),
		ChunkCount:        ByteOrder.Uint32(buf[24:28]),
		ColumnCount:       ByteOrder.Uint32(buf[28:32]),
		CreationTimestamp: ByteOrder.Uint64(buf[32:40]),
	}

	if r.header.MagicNumber != MagicNumber {
		return ErrInvalidMagicNumber
	}
	if r.header.MajorVersion != MajorVersion {
		return fmt.Errorf("version %d.%d: %w", r.header.MajorVersion, r.header.MinorVersion, ErrInvalidVersion)
	}
	return nil
}

// readFooter reads the schema and chunk directory
func (r *Reader) readFooter() error {
	page, err := readPageAt(r.file, int64(r.header.FooterOffset))
	if err != nil {
		return fmt.Errorf("failed to read footer: %w", err)
	}
	if page.Type != PageTypeFooter {
		return fmt.Errorf("expected footer page, got %d", page.Type)
	}
	payload, err := page.Payload()
	if err != nil {
		return fmt.Errorf("failed to read footer: %w", err)
	}

	buf := bytes.NewReader(payload)

	var columnCount uint32
	if err := binary.Read(buf, ByteOrder, &columnCount); err != nil {
		return fmt.Errorf("failed to parse footer: %w", err)
	}
	r.schema = make([]LeafColumn, columnCount)
	for i := range r.schema {
		var nameLen uint16
		if err := binary.Read(buf, ByteOrder, &nameLen); err != nil {
			return fmt.Errorf("failed to parse footer: %w", err)
		}
		name := make([]byte, nameLen)
		if _, err := buf.Read(name); err != nil {
			return fmt.Errorf("failed to parse footer: %w", err)
		}
		var dataType, nullable uint8
		if err := binary.Read(buf, ByteOrder, &dataType); err != nil {
			return fmt.Errorf("failed to parse footer: %w", err)
		}
		if err := binary.Read(buf, ByteOrder, &nullable); err != nil {
			return fmt.Errorf("failed to parse footer: %w", err)
		}
		r.schema[i] = LeafColumn{
			Name:     string(name),
			DataType: columnar.DataType(dataType),
			Nullable: nullable != 0,
		}
	}

	var chunkCount uint32
	if err := binary.Read(buf, ByteOrder, &chunkCount); err != nil {
		return fmt.Errorf("failed to parse footer: %w", err)
	}
	r.chunks = make([]chunkInfo, chunkCount)
	for i := range r.chunks {
		chunk := chunkInfo{Columns: make([]columnChunk, columnCount)}
		if err := binary.Read(buf, ByteOrder, &chunk.RowOffset); err != nil {
			return fmt.Errorf("failed to parse footer: %w", err)
		}
		if err := binary.Read(buf, ByteOrder, &chunk.Rows); err != nil {
			return fmt.Errorf("failed to parse footer: %w", err)
		}
		for c := range chunk.Columns {
			cc := &chunk.Columns[c]
			if err := binary.Read(buf, ByteOrder, &cc.DataOffset); err != nil {
				return fmt.Errorf("failed to parse footer: %w", err)
			}
			if err := binary.Read(buf, ByteOrder, &cc.NullMapOffset); err != nil {
				return fmt.Errorf("failed to parse footer: %w", err)
			}
			if err := binary.Read(buf, ByteOrder, &cc.NullCount); err != nil {
				return fmt.Errorf("failed to parse footer: %w", err)
			}
		}
		r.chunks[i] = chunk
	}
	return nil
}
