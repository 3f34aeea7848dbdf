// Package ingest builds nested column trees from parquet files. Parquet
// groups map to struct columns, repeated fields to list columns and leaves
// to typed columns, with optionality carried over as validity masks.
package ingest

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/parquet-go/parquet-go"
	"howett.net/ranger"

	"nestcol/columnar"
)

// Reader reads a local or remote parquet file into columnar form
type Reader struct {
	source string
	file   *parquet.File
	schema *parquet.Schema
	closer io.Closer
}

// IsHTTPURL returns whether the path refers to a remote file
func IsHTTPURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Open opens a parquet file from a local path or an HTTP(S) URL. Remote
// files are read with range requests.
func Open(pathOrURL string) (*Reader, error) {
	if IsHTTPURL(pathOrURL) {
		return openHTTP(pathOrURL)
	}
	return openLocal(pathOrURL)
}

func openLocal(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}
	pf, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	return &Reader{
		source: path,
		file:   pf,
		schema: pf.Schema(),
		closer: file,
	}, nil
}

func openHTTP(urlStr string) (*Reader, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	httpRanger := &ranger.HTTPRanger{URL: parsedURL}
	reader, err := ranger.NewReader(httpRanger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP reader: %w", err)
	}
	length, err := reader.Length()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTTP content length: %w", err)
	}

	pf, err := parquet.OpenFile(reader, length)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote parquet file: %w", err)
	}
	return &Reader{
		source: urlStr,
		file:   pf,
		schema: pf.Schema(),
	}, nil
}

// Schema returns the underlying parquet schema
func (r *Reader) Schema() *parquet.Schema {
	return r.schema
}

// NumRows returns the total row count of the file
func (r *Reader) NumRows() int64 {
	total := int64(0)
	for _, rg := range r.file.RowGroups() {
		total += rg.NumRows()
	}
	return total
}

// Close closes the underlying file, if it owns one
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// ReadTable materializes up to limit rows (0 = all) as owned nested
// columns, one per top-level schema field, in schema order
func (r *Reader) ReadTable(limit int) ([]*columnar.Column, error) {
	rows, err := r.readRows(limit)
	if err != nil {
		return nil, err
	}

	fields := r.schema.Fields()
	columns := make([]*columnar.Column, len(fields))
	for i, field := range fields {
		values := make([]interface{}, len(rows))
		for j, row := range rows {
			values[j] = row[field.Name()]
		}
		col, err := buildColumn(field, values)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Name(), err)
		}
		columns[i] = col
	}
	return columns, nil
}

// readRows reads rows into generic maps; nested groups come back as nested
// maps and repeated fields as slices
func (r *Reader) readRows(limit int) ([]map[string]interface{}, error) {
	reader := parquet.NewReader(r.file)
	defer reader.Close()

	rows := make([]map[string]interface{}, 0)
	for limit <= 0 || len(rows) < limit {
		row := make(map[string]interface{})
		if err := reader.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows), err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// buildColumn converts one schema node plus its per-row values into an
// owned column. A nil value marks the row (and, for groups, every member
// row) as null.
func buildColumn(node parquet.Node, values []interface{}) (*columnar.Column, error) {
	if node.Repeated() {
		return buildListColumn(node, values)
	}
	if node.Leaf() {
		return buildLeafColumn(node, values)
	}
	return buildStructColumn(node, values)
}

func buildStructColumn(node parquet.Node, values []interface{}) (*columnar.Column, error) {
	rows := len(values)

	var mask *columnar.Bitmask
	for i, v := range values {
		if v == nil {
			if mask == nil {
				mask = columnar.NewBitmask(rows, true)
			}
			mask.SetInvalid(i)
		}
	}
	if mask == nil && node.Optional() {
		mask = columnar.NewBitmask(rows, true)
	}

	fields := node.Fields()
	children := make([]*columnar.Column, len(fields))
	for f, field := range fields {
		childValues := make([]interface{}, rows)
		for i, v := range values {
			if v == nil {
				continue
			}
			m, ok := v.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("row %d: expected group value, got %T", i, v)
			}
			childValues[i] = m[field.Name()]
		}
		child, err := buildColumn(field, childValues)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", field.Name(), err)
		}
		children[f] = child
	}
	return columnar.NewStructColumn(rows, mask, children...), nil
}

func buildListColumn(node parquet.Node, values []interface{}) (*columnar.Column, error) {
	rows := len(values)
	offsets := make([]int32, 0, rows+1)
	elems := make([]interface{}, 0)

	var mask *columnar.Bitmask
	for i, v := range values {
		offsets = append(offsets, int32(len(elems)))
		if v == nil {
			// An absent repeated field is an empty list, not a null row
			continue
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice {
			return nil, fmt.Errorf("row %d: expected repeated value, got %T", i, v)
		}
		for e := 0; e < rv.Len(); e++ {
			elems = append(elems, rv.Index(e).Interface())
		}
	}
	offsets = append(offsets, int32(len(elems)))

	var child *columnar.Column
	var err error
	if node.Leaf() {
		child, err = buildLeafColumn(node, elems)
	} else {
		child, err = buildStructColumn(node, elems)
	}
	if err != nil {
		return nil, fmt.Errorf("list element: %w", err)
	}
	return columnar.NewListColumn(rows, offsets, child, mask), nil
}

func buildLeafColumn(node parquet.Node, values []interface{}) (*columnar.Column, error) {
	rows := len(values)

	var mask *columnar.Bitmask
	markNull := func(i int) {
		if mask == nil {
			mask = columnar.NewBitmask(rows, true)
		}
		mask.SetInvalid(i)
	}
	if node.Optional() {
		mask = columnar.NewBitmask(rows, true)
	}

	switch node.Type().Kind() {
	case parquet.Boolean:
		vals := make([]bool, rows)
		for i, v := range values {
			if v == nil {
				markNull(i)
				continue
			}
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("row %d: expected bool, got %T", i, v)
			}
			vals[i] = b
		}
		return columnar.NewColumn(columnar.DataTypeBool, rows, vals, mask), nil

	case parquet.Int32:
		vals := make([]int32, rows)
		for i, v := range values {
			if v == nil {
				markNull(i)
				continue
			}
			n, err := toInt64(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			vals[i] = int32(n)
		}
		return columnar.NewColumn(columnar.DataTypeInt32, rows, vals, mask), nil

	case parquet.Int64:
		vals := make([]int64, rows)
		for i, v := range values {
			if v == nil {
				markNull(i)
				continue
			}
			n, err := toInt64(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			vals[i] = n
		}
		return columnar.NewColumn(columnar.DataTypeInt64, rows, vals, mask), nil

	case parquet.Float:
		vals := make([]float32, rows)
		for i, v := range values {
			if v == nil {
				markNull(i)
				continue
			}
			f, err := toFloat64(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			vals[i] = float32(f)
		}
		return columnar.NewColumn(columnar.DataTypeFloat32, rows, vals, mask), nil

	case parquet.Double:
		vals := make([]float64, rows)
		for i, v := range values {
			if v == nil {
				markNull(i)
				continue
			}
			f, err := toFloat64(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			vals[i] = f
		}
		return columnar.NewColumn(columnar.DataTypeFloat64, rows, vals, mask), nil

	case parquet.ByteArray, parquet.FixedLenByteArray:
		vals := make([]string, rows)
		for i, v := range values {
			if v == nil {
				markNull(i)
				continue
			}
			switch s := v.(type) {
			case string:
				vals[i] = s
			case []byte:
				vals[i] = string(s)
			default:
				return nil, fmt.Errorf("row %d: expected string, got %T", i, v)
			}
		}
		return columnar.NewColumn(columnar.DataTypeString, rows, vals, mask), nil

	default:
		return nil, fmt.Errorf("parquet kind %s: %w", node.Type().Kind(), columnar.ErrUnsupportedType)
	}
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func toFloat64(v interface{}) (float64, error) {
	switch f := v.(type) {
	case float32:
		return float64(f), nil
	case float64:
		return f, nil
	default:
		return 0, fmt.Errorf("expected float, got %T", v)
	}
}
