// Package golearn converts between dataset Frames and
// github.com/sjwhitworth/golearn/base DenseInstances.
package golearn

import (
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/base"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

// NullCategory is the category used for null non-numeric cells.
const NullCategory = "<null>"

// Converter turns frames sharing one schema into DenseInstances built on the
// same attributes, so instances converted from a train and a test split are
// compatible with each other.
type Converter struct {
	schema ds.Schema
	attrs  []base.Attribute
	class  int
}

// NewConverter prepares attributes for schema: float and int columns become
// FloatAttributes, all others CategoricalAttributes. class names the class
// column; when empty the last column is used.
func NewConverter(schema ds.Schema, class string) (*Converter, error) {
	if len(schema.Columns) == 0 {
		return nil, fmt.Errorf("golearn: empty schema")
	}
	c := &Converter{schema: schema, attrs: make([]base.Attribute, len(schema.Columns)), class: len(schema.Columns) - 1}
	if class != "" {
		c.class = -1
	}
	for i, cs := range schema.Columns {
		switch cs.Type {
		case ds.KindFloat, ds.KindInt:
			c.attrs[i] = base.NewFloatAttribute(cs.Name)
		default:
			ca := new(base.CategoricalAttribute)
			ca.SetName(cs.Name)
			c.attrs[i] = ca
		}
		if cs.Name == class {
			c.class = i
		}
	}
	if c.class < 0 {
		return nil, ds.MissingColumn(class)
	}
	return c, nil
}

// Convert builds DenseInstances holding every row of f. Null numbers become
// NaN and null categories NullCategory.
func (c *Converter) Convert(f *ds.Frame) (*base.DenseInstances, error) {
	if !f.Schema().Equal(c.schema) {
		return nil, &ds.SchemaError{Msg: fmt.Sprintf("golearn: frame columns %v do not match converter columns %v", f.Schema().Names(), c.schema.Names())}
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(c.attrs))
	for i, a := range c.attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.AddClassAttribute(c.attrs[c.class]); err != nil {
		return nil, err
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}
	for i, col := range f.Columns() {
		for r := 0; r < f.Rows(); r++ {
			v := col.Value(r)
			if _, ok := c.attrs[i].(*base.FloatAttribute); ok {
				fv := math.NaN()
				if x, ok := ds.CastValue(v, ds.KindFloat); ok {
					fv = x.(float64)
				}
				inst.Set(specs[i], r, base.PackFloatToBytes(fv))
				continue
			}
			s := NullCategory
			if v != nil {
				x, _ := ds.CastValue(v, ds.KindString)
				s = x.(string)
			}
			inst.Set(specs[i], r, c.attrs[i].GetSysValFromString(s))
		}
	}
	return inst, nil
}

// ToDenseInstances converts a Frame into golearn DenseInstances with class as
// the class attribute (the last column when empty).
func ToDenseInstances(f *ds.Frame, class string) (*base.DenseInstances, error) {
	c, err := NewConverter(f.Schema(), class)
	if err != nil {
		return nil, err
	}
	return c.Convert(f)
}

// FromDenseInstances converts golearn instances into a Frame. Float attributes
// become float columns, NaN reading as null; everything else becomes strings.
func FromDenseInstances(inst base.FixedDataGrid) (*ds.Frame, error) {
	attrs := inst.AllAttributes()
	schema := ds.Schema{Columns: make([]ds.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		k := ds.KindString
		if a.GetType() == base.Float64Type {
			k = ds.KindFloat
		}
		schema.Columns[i] = ds.ColumnSchema{Name: a.GetName(), Type: k, Nullable: true}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	f := ds.NewFrame(schema)
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		f.AppendNullRow()
		for c, cs := range schema.Columns {
			raw := inst.Get(specs[c], r)
			var v any
			if cs.Type == ds.KindFloat {
				if x := base.UnpackBytesToFloat(raw); !math.IsNaN(x) {
					v = x
				}
			} else if s := specs[c].GetAttribute().GetStringFromSysVal(raw); s != NullCategory {
				v = s
			}
			if err := f.SetCell(r, cs.Name, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}
