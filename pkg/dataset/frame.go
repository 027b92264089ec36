package dataset

import "fmt"

// Frame is a columnar container for tabular data.
//
// A built Frame is treated as an immutable value: every operation returns a new
// Frame that shares the columns it did not change.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

// NewFrame creates an empty frame for schema s. It panics on an invalid kind or
// a duplicated column name.
func NewFrame(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		if _, dup := f.index[cs.Name]; dup {
			panic("duplicate column name: " + cs.Name)
		}
		c, err := NewColumn(cs.Name, cs.Type, 0)
		if err != nil {
			panic("invalid column kind")
		}
		f.cols[i] = c
		f.index[cs.Name] = i
	}
	return f
}

// FromColumns assembles a frame from equally long, uniquely named columns.
func FromColumns(cols ...Column) (*Frame, error) {
	f := &Frame{cols: make([]Column, 0, len(cols)), index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := f.index[c.Name()]; dup {
			return nil, &SchemaError{Column: c.Name(), Msg: "duplicate column"}
		}
		if i > 0 && c.Len() != f.nrows {
			return nil, &SchemaError{Column: c.Name(), Msg: fmt.Sprintf("has %d rows, expected %d", c.Len(), f.nrows)}
		}
		f.nrows = c.Len()
		f.index[c.Name()] = i
		f.cols = append(f.cols, c)
		f.schema.Columns = append(f.schema.Columns, ColumnSchema{Name: c.Name(), Type: c.Kind(), Nullable: true})
	}
	return f, nil
}

func (f *Frame) Schema() Schema { return f.schema }
func (f *Frame) Rows() int      { return f.nrows }
func (f *Frame) Cols() int      { return len(f.cols) }

// Columns returns the frame's columns in schema order.
func (f *Frame) Columns() []Column { return append([]Column(nil), f.cols...) }

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Column is ColumnByName returning a SchemaError for unknown names.
func (f *Frame) Column(name string) (Column, error) {
	c, ok := f.ColumnByName(name)
	if !ok {
		return nil, missingColumn(name)
	}
	return c, nil
}

// Value returns a single cell, nil when null.
func (f *Frame) Value(row int, name string) (any, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= f.nrows {
		return nil, fmt.Errorf("row %d out of range [0,%d)", row, f.nrows)
	}
	return c.Value(row), nil
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		switch col := c.(type) {
		case *BoolColumn:
			col.AppendNull()
		case *IntColumn:
			col.AppendNull()
		case *FloatColumn:
			col.AppendNull()
		case *StringColumn:
			col.AppendNull()
		case *TimeColumn:
			col.AppendNull()
		default:
			panic("unknown column type")
		}
	}
	f.nrows++
}

// SetCell sets a single cell value by name (row must exist). It is meant for
// populating a frame under construction.
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	return SetValue(f.cols[i], row, v)
}

// FromRows builds a frame from row-major values in schema order. nil is null;
// values must already have the column's kind (ints may fill float columns).
func FromRows(s Schema, rows [][]any) (*Frame, error) {
	f := NewFrame(s)
	for r, row := range rows {
		if len(row) != len(f.cols) {
			return nil, fmt.Errorf("row %d has %d values, schema has %d columns", r, len(row), len(f.cols))
		}
		f.AppendNullRow()
		for i, v := range row {
			if err := SetValue(f.cols[i], r, Normalize(v)); err != nil {
				return nil, &SchemaError{Column: f.cols[i].Name(), Msg: fmt.Sprintf("row %d", r), Err: err}
			}
		}
	}
	return f, nil
}

// with returns a frame over cols, rebuilding schema and index.
func (f *Frame) with(cols []Column, nrows int) *Frame {
	out := &Frame{cols: cols, index: make(map[string]int, len(cols)), nrows: nrows}
	out.schema.Columns = make([]ColumnSchema, len(cols))
	for i, c := range cols {
		nullable := true
		if j, ok := f.index[c.Name()]; ok && f.cols[j] == c {
			nullable = f.schema.Columns[j].Nullable
		}
		out.schema.Columns[i] = ColumnSchema{Name: c.Name(), Type: c.Kind(), Nullable: nullable}
		out.index[c.Name()] = i
	}
	return out
}
