package dataset

import (
	"fmt"
	"strings"
	"time"
)

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		out[i] = cs.Name
	}
	return out
}

// Equal reports whether both schemas have the same column names and kinds in the same order.
func (s Schema) Equal(o Schema) bool {
	if len(s.Columns) != len(o.Columns) {
		return false
	}
	for i := range s.Columns {
		if s.Columns[i].Name != o.Columns[i].Name || s.Columns[i].Type != o.Columns[i].Type {
			return false
		}
	}
	return true
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// ParseKind maps a type name, including the SQL spellings used in cleaning
// configs (double, bigint, varchar, timestamp, ...), to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "double", "float", "float64", "float32", "decimal", "real", "numeric":
		return KindFloat, nil
	case "int", "integer", "bigint", "long", "smallint", "tinyint", "int64", "int32":
		return KindInt, nil
	case "string", "str", "varchar", "text":
		return KindString, nil
	case "boolean", "bool":
		return KindBool, nil
	case "timestamp", "date", "datetime", "time":
		return KindTime, nil
	}
	return KindInvalid, fmt.Errorf("unknown type name %q", name)
}

// Column is a typed, nullable column abstraction.
//
// Columns reachable from a built Frame are shared between frames and must be
// treated as read-only; only columns being populated by a builder may be mutated.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	// Value returns the cell as bool, int64, float64, string or time.Time, or nil when null.
	Value(i int) any
}

type BoolColumn struct {
	name  string
	data  []bool
	nulls []bool
}

func NewBoolColumn(name string, n int) *BoolColumn {
	return &BoolColumn{name: name, data: make([]bool, n), nulls: allNull(n)}
}
func (c *BoolColumn) Name() string           { return c.name }
func (c *BoolColumn) Kind() Kind             { return KindBool }
func (c *BoolColumn) Len() int               { return len(c.data) }
func (c *BoolColumn) IsNull(i int) bool      { return c.nulls[i] }
func (c *BoolColumn) SetNull(i int)          { c.nulls[i] = true }
func (c *BoolColumn) Get(i int) (bool, bool) { return c.data[i], !c.nulls[i] }
func (c *BoolColumn) Set(i int, v bool)      { c.data[i] = v; c.nulls[i] = false }
func (c *BoolColumn) AppendNull()            { c.data = append(c.data, false); c.nulls = append(c.nulls, true) }
func (c *BoolColumn) Append(v bool)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *BoolColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

type IntColumn struct {
	name  string
	data  []int64
	nulls []bool
}

func NewIntColumn(name string, n int) *IntColumn {
	return &IntColumn{name: name, data: make([]int64, n), nulls: allNull(n)}
}
func (c *IntColumn) Name() string            { return c.name }
func (c *IntColumn) Kind() Kind              { return KindInt }
func (c *IntColumn) Len() int                { return len(c.data) }
func (c *IntColumn) IsNull(i int) bool       { return c.nulls[i] }
func (c *IntColumn) SetNull(i int)           { c.nulls[i] = true }
func (c *IntColumn) Get(i int) (int64, bool) { return c.data[i], !c.nulls[i] }
func (c *IntColumn) Set(i int, v int64)      { c.data[i] = v; c.nulls[i] = false }
func (c *IntColumn) AppendNull()             { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *IntColumn) Append(v int64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *IntColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

type FloatColumn struct {
	name  string
	data  []float64
	nulls []bool
}

func NewFloatColumn(name string, n int) *FloatColumn {
	return &FloatColumn{name: name, data: make([]float64, n), nulls: allNull(n)}
}
func (c *FloatColumn) Name() string              { return c.name }
func (c *FloatColumn) Kind() Kind                { return KindFloat }
func (c *FloatColumn) Len() int                  { return len(c.data) }
func (c *FloatColumn) IsNull(i int) bool         { return c.nulls[i] }
func (c *FloatColumn) SetNull(i int)             { c.nulls[i] = true }
func (c *FloatColumn) Get(i int) (float64, bool) { return c.data[i], !c.nulls[i] }
func (c *FloatColumn) Set(i int, v float64)      { c.data[i] = v; c.nulls[i] = false }
func (c *FloatColumn) AppendNull()               { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *FloatColumn) Append(v float64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *FloatColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

type StringColumn struct {
	name  string
	data  []string
	nulls []bool
}

func NewStringColumn(name string, n int) *StringColumn {
	return &StringColumn{name: name, data: make([]string, n), nulls: allNull(n)}
}
func (c *StringColumn) Name() string             { return c.name }
func (c *StringColumn) Kind() Kind               { return KindString }
func (c *StringColumn) Len() int                 { return len(c.data) }
func (c *StringColumn) IsNull(i int) bool        { return c.nulls[i] }
func (c *StringColumn) SetNull(i int)            { c.nulls[i] = true }
func (c *StringColumn) Get(i int) (string, bool) { return c.data[i], !c.nulls[i] }
func (c *StringColumn) Set(i int, v string)      { c.data[i] = v; c.nulls[i] = false }
func (c *StringColumn) AppendNull()              { c.data = append(c.data, ""); c.nulls = append(c.nulls, true) }
func (c *StringColumn) Append(v string)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *StringColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

type TimeColumn struct {
	name  string
	data  []time.Time
	nulls []bool
}

func NewTimeColumn(name string, n int) *TimeColumn {
	return &TimeColumn{name: name, data: make([]time.Time, n), nulls: allNull(n)}
}
func (c *TimeColumn) Name() string                { return c.name }
func (c *TimeColumn) Kind() Kind                  { return KindTime }
func (c *TimeColumn) Len() int                    { return len(c.data) }
func (c *TimeColumn) IsNull(i int) bool           { return c.nulls[i] }
func (c *TimeColumn) SetNull(i int)               { c.nulls[i] = true }
func (c *TimeColumn) Get(i int) (time.Time, bool) { return c.data[i], !c.nulls[i] }
func (c *TimeColumn) Set(i int, v time.Time)      { c.data[i] = v; c.nulls[i] = false }
func (c *TimeColumn) AppendNull() {
	c.data = append(c.data, time.Time{})
	c.nulls = append(c.nulls, true)
}
func (c *TimeColumn) Append(v time.Time) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}
func (c *TimeColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

func allNull(n int) []bool {
	nulls := make([]bool, n)
	for i := range nulls {
		nulls[i] = true
	}
	return nulls
}

// NewColumn allocates an all-null column of kind k with n rows.
func NewColumn(name string, k Kind, n int) (Column, error) {
	switch k {
	case KindBool:
		return NewBoolColumn(name, n), nil
	case KindInt:
		return NewIntColumn(name, n), nil
	case KindFloat:
		return NewFloatColumn(name, n), nil
	case KindString:
		return NewStringColumn(name, n), nil
	case KindTime:
		return NewTimeColumn(name, n), nil
	}
	return nil, fmt.Errorf("invalid column kind %v for %s", k, name)
}

// SetValue stores v at row i, widening between int and float. A nil v sets null.
func SetValue(c Column, i int, v any) error {
	if v == nil {
		c.SetNull(i)
		return nil
	}
	switch col := c.(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool, got %T", col.name, v)
		}
		col.Set(i, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(i, int64(t))
		case int32:
			col.Set(i, int64(t))
		case int64:
			col.Set(i, t)
		case float64:
			col.Set(i, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64, got %T", col.name, v)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(i, float64(t))
		case float64:
			col.Set(i, t)
		case int:
			col.Set(i, float64(t))
		case int32:
			col.Set(i, float64(t))
		case int64:
			col.Set(i, float64(t))
		default:
			return fmt.Errorf("column %s expects float64, got %T", col.name, v)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string, got %T", col.name, v)
		}
		col.Set(i, s)
	case *TimeColumn:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("column %s expects time.Time, got %T", col.name, v)
		}
		col.Set(i, t)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}

// renameColumn copies c under a new name.
func renameColumn(c Column, name string) Column {
	switch col := c.(type) {
	case *BoolColumn:
		return &BoolColumn{name: name, data: append([]bool(nil), col.data...), nulls: append([]bool(nil), col.nulls...)}
	case *IntColumn:
		return &IntColumn{name: name, data: append([]int64(nil), col.data...), nulls: append([]bool(nil), col.nulls...)}
	case *FloatColumn:
		return &FloatColumn{name: name, data: append([]float64(nil), col.data...), nulls: append([]bool(nil), col.nulls...)}
	case *StringColumn:
		return &StringColumn{name: name, data: append([]string(nil), col.data...), nulls: append([]bool(nil), col.nulls...)}
	case *TimeColumn:
		return &TimeColumn{name: name, data: append([]time.Time(nil), col.data...), nulls: append([]bool(nil), col.nulls...)}
	}
	panic("unknown column type")
}

// takeColumn copies the given rows of c, in order.
func takeColumn(c Column, rows []int) Column {
	out, err := NewColumn(c.Name(), c.Kind(), len(rows))
	if err != nil {
		panic(err)
	}
	for i, r := range rows {
		if err := SetValue(out, i, c.Value(r)); err != nil {
			panic(err)
		}
	}
	return out
}
