package colfile

import (
	"fmt"
	"hash/crc32"
	"io"
)

// Page represents a single variable-length page frame: a fixed header
// followed by a (possibly compressed) payload. Frames are written
// sequentially and located by byte offset from the footer directory.
type Page struct {
	Type             PageType
	Compression      CompressionType
	UncompressedSize uint32
	Data             []byte // compressed payload
}

// Marshal serializes the page frame to bytes
func (p *Page) Marshal() []byte {
	buf := make([]byte, PageHeaderSize+len(p.Data))
	buf[0] = byte(p.Type)
	buf[1] = byte(p.Compression)
	ByteOrder.PutUint32(buf[4:8], p.UncompressedSize)
	ByteOrder.PutUint32(buf[8:12], uint32(len(p.Data)))
	ByteOrder.PutUint32(buf[12:16], p.checksum())
	copy(buf[PageHeaderSize:], p.Data)
	return buf
}

// checksum computes the CRC32 checksum of the page payload
func (p *Page) checksum() uint32 {
	return crc32.ChecksumIEEE(p.Data)
}

// writePage writes a page frame and returns its byte length
func writePage(w io.Writer, p *Page) (int, error) {
	buf := p.Marshal()
	if _, err := w.Write(buf); err != nil {
		return 0, fmt.Errorf("failed to write page: %w", err)
	}
	return len(buf), nil
}

// readPageAt reads and verifies a page frame at the given offset
func readPageAt(r io.ReaderAt, offset int64) (*Page, error) {
	header := make([]byte, PageHeaderSize)
	if _, err := r.ReadAt(header, offset); err != nil {
		return nil, fmt.Errorf("failed to read page header: %w", err)
	}

	p := &Page{
		Type:             PageType(header[0]),
		Compression:      CompressionType(header[1]),
		UncompressedSize: ByteOrder.Uint32(header[4:8]),
	}
	dataSize := ByteOrder.Uint32(header[8:12])
	storedChecksum := ByteOrder.Uint32(header[12:16])

	p.Data = make([]byte, dataSize)
	if _, err := r.ReadAt(p.Data, offset+PageHeaderSize); err != nil {
		return nil, fmt.Errorf("failed to read page data: %w", err)
	}

	if p.checksum() != storedChecksum {
		return nil, fmt.Errorf("page at offset %d: %w", offset, ErrChecksumMismatch)
	}
	return p, nil
}

// Payload returns the decompressed page payload
func (p *Page) Payload() ([]byte, error) {
	data, err := Decompress(p.Data, p.Compression)
	if err != nil {
		return nil, err
	}
	if len(data) != int(p.UncompressedSize) {
		return nil, fmt.Errorf("page payload size mismatch: expected %d, got %d",
			p.UncompressedSize, len(data))
	}
	return data, nil
}

// newPage compresses a payload into a page frame
func newPage(pageType PageType, payload []byte, ct CompressionType) (*Page, error) {
	compressed, err := Compress(payload, ct)
	if err != nil {
		return nil, err
	}
	return &Page{
		Type:             pageType,
		Compression:      ct,
		UncompressedSize: uint32(len(payload)),
		Data:             compressed,
	}, nil
}
