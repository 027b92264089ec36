package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"

	parquet "github.com/segmentio/parquet-go"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

// Reader reads flat Parquet files. Nested columns are not supported.
type Reader struct {
	file   *os.File
	reader *parquet.Reader
	schema ds.Schema
}

func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := parquet.NewReader(f)
	schema, err := frameSchema(r.Schema())
	if err != nil {
		_ = r.Close()
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Reader{file: f, reader: r, schema: schema}, nil
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

func (r *Reader) Schema() ds.Schema { return r.schema }

// frameSchema maps the file's leaf columns to Frame kinds: booleans to bool,
// integers to int, floating point to float and byte arrays to string.
func frameSchema(s *parquet.Schema) (ds.Schema, error) {
	var out ds.Schema
	for _, field := range s.Fields() {
		if !field.Leaf() {
			return ds.Schema{}, fmt.Errorf("nested column %q is not supported", field.Name())
		}
		var k ds.Kind
		switch field.Type().Kind() {
		case parquet.Boolean:
			k = ds.KindBool
		case parquet.Int32, parquet.Int64:
			k = ds.KindInt
		case parquet.Float, parquet.Double:
			k = ds.KindFloat
		case parquet.ByteArray, parquet.FixedLenByteArray:
			k = ds.KindString
		default:
			return ds.Schema{}, fmt.Errorf("column %q has unsupported type %v", field.Name(), field.Type())
		}
		out.Columns = append(out.Columns, ds.ColumnSchema{Name: field.Name(), Type: k, Nullable: field.Optional()})
	}
	return out, nil
}

func (r *Reader) ReadAll() (*ds.Frame, error) {
	f := ds.NewFrame(r.schema)
	cols := f.Columns()
	buf := make([]parquet.Row, 1024)
	for {
		n, err := r.reader.ReadRows(buf)
		for i := 0; i < n; i++ {
			f.AppendNullRow()
			row := f.Rows() - 1
			for _, v := range buf[i] {
				if v.IsNull() || v.Column() < 0 || v.Column() >= len(cols) {
					continue
				}
				if err := ds.SetValue(cols[v.Column()], row, value(v)); err != nil {
					return nil, err
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return f, nil
}

func value(v parquet.Value) any {
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	}
	return string(v.ByteArray())
}

// ReadAll reads a whole Parquet file into a Frame.
func ReadAll(path string) (*ds.Frame, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.ReadAll()
}
