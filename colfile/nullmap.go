package colfile

import (
	"bytes"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"nestcol/columnar"
)

// nullMapFromView collects the invalid rows of a leaf view into a roaring
// bitmap of chunk-relative row indexes. Returns nil when every row is valid.
func nullMapFromView(v columnar.ColumnView) *roaring.Bitmap {
	if v.NullCount() == 0 {
		return nil
	}
	bitmap := roaring.New()
	for i := 0; i < v.Size; i++ {
		if !v.RowValid(i) {
			bitmap.Add(uint32(i))
		}
	}
	return bitmap
}

// marshalNullMap serializes a null-row bitmap for storage in a page
func marshalNullMap(bitmap *roaring.Bitmap) ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := bitmap.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to serialize null map: %w", err)
	}
	return buf.Bytes(), nil
}

// unmarshalNullMap deserializes a null-row bitmap and verifies its
// cardinality against the footer's recorded null count
func unmarshalNullMap(data []byte, expectedNulls uint64) (*roaring.Bitmap, error) {
	bitmap := roaring.New()
	if err := bitmap.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("failed to deserialize null map: %w", err)
	}
	if bitmap.GetCardinality() != expectedNulls {
		return nil, fmt.Errorf("null map cardinality mismatch: expected %d, got %d",
			expectedNulls, bitmap.GetCardinality())
	}
	return bitmap, nil
}

// validityFromNullMap converts a null-row bitmap back into a validity mask
// of rows rows
func validityFromNullMap(bitmap *roaring.Bitmap, rows int) *columnar.Bitmask {
	mask := columnar.NewBitmask(rows, true)
	iter := bitmap.Iterator()
	for iter.HasNext() {
		mask.SetInvalid(int(iter.Next()))
	}
	return mask
}
