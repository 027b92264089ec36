package dataset

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Distinct returns the distinct values of a column in order of first
// appearance. A null stratum is reported as nil.
func (f *Frame) Distinct(name string) ([]any, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[any]struct{})
	var out []any
	for i := 0; i < c.Len(); i++ {
		v := c.Value(i)
		k := StratumKey(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// StratumKey maps a cell value to a comparable map key. NaN floats, which never
// compare equal to themselves, share one key; times are keyed by instant.
func StratumKey(v any) any {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) {
			return nanKey{}
		}
	case time.Time:
		return t.UnixNano()
	}
	return v
}

type nanKey struct{}

// Take returns a frame holding the given rows, in the given order.
func (f *Frame) Take(rows []int) *Frame {
	cols := make([]Column, len(f.cols))
	for i, c := range f.cols {
		cols[i] = takeColumn(c, rows)
	}
	out := f.with(cols, len(rows))
	out.schema = f.schema
	return out
}

// SampleBy draws a stratified Bernoulli sample: each row is kept with the
// fraction assigned to its value of column name. Rows are visited in order with
// a generator seeded by seed, so identical inputs give identical samples.
// Every stratum present in the column must have a fraction in [0, 1]; fractions
// are keyed by cell value (see StratumKey).
func (f *Frame) SampleBy(name string, fractions map[any]float64, seed int64) (*Frame, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	byKey := make(map[any]float64, len(fractions))
	for v, frac := range fractions {
		if math.IsNaN(frac) || frac < 0 || frac > 1 {
			return nil, &SamplingError{Column: name, Msg: fmt.Sprintf("fraction %v for stratum %v outside [0, 1]", frac, v)}
		}
		byKey[StratumKey(v)] = frac
	}
	rnd := rand.New(rand.NewSource(seed))
	keep := make([]int, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		v := c.Value(i)
		frac, ok := byKey[StratumKey(v)]
		if !ok {
			return nil, &SamplingError{Column: name, Msg: fmt.Sprintf("no fraction for stratum %v", v)}
		}
		if rnd.Float64() < frac {
			keep = append(keep, i)
		}
	}
	return f.Take(keep), nil
}

// Subtract returns the rows of f not matched by a row of other, comparing full
// rows. Each row of other cancels at most one equal row of f, so duplicates are
// handled as a multiset and f.Subtract(s) together with s covers f exactly when s
// was sampled from f.
func (f *Frame) Subtract(other *Frame) (*Frame, error) {
	if !f.schema.Equal(other.schema) {
		return nil, &SchemaError{Msg: fmt.Sprintf("subtract needs identical schemas, got %v and %v", f.schema.Names(), other.schema.Names())}
	}
	d := xxhash.New()
	pending := make(map[uint64][]int, other.nrows)
	for r := 0; r < other.nrows; r++ {
		h := rowHash(d, other.cols, r)
		pending[h] = append(pending[h], r)
	}
	keep := make([]int, 0, f.nrows)
	for r := 0; r < f.nrows; r++ {
		h := rowHash(d, f.cols, r)
		cands := pending[h]
		matched := false
		for k, orow := range cands {
			if rowsEqual(f.cols, r, other.cols, orow) {
				pending[h] = append(cands[:k:k], cands[k+1:]...)
				matched = true
				break
			}
		}
		if !matched {
			keep = append(keep, r)
		}
	}
	return f.Take(keep), nil
}

func rowHash(d *xxhash.Digest, cols []Column, row int) uint64 {
	d.Reset()
	var buf [8]byte
	for _, c := range cols {
		if c.IsNull(row) {
			_, _ = d.Write([]byte{0})
			continue
		}
		_, _ = d.Write([]byte{1})
		switch col := c.(type) {
		case *BoolColumn:
			if v, _ := col.Get(row); v {
				_, _ = d.Write([]byte{1})
			} else {
				_, _ = d.Write([]byte{0})
			}
		case *IntColumn:
			v, _ := col.Get(row)
			binary.LittleEndian.PutUint64(buf[:], uint64(v))
			_, _ = d.Write(buf[:])
		case *FloatColumn:
			v, _ := col.Get(row)
			if math.IsNaN(v) {
				v = math.NaN()
			}
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = d.Write(buf[:])
		case *StringColumn:
			v, _ := col.Get(row)
			binary.LittleEndian.PutUint64(buf[:], uint64(len(v)))
			_, _ = d.Write(buf[:])
			_, _ = d.WriteString(v)
		case *TimeColumn:
			v, _ := col.Get(row)
			binary.LittleEndian.PutUint64(buf[:], uint64(v.UnixNano()))
			_, _ = d.Write(buf[:])
		}
	}
	return d.Sum64()
}

func rowsEqual(a []Column, ra int, b []Column, rb int) bool {
	for i := range a {
		if !ValuesEqual(a[i].Value(ra), b[i].Value(rb)) {
			return false
		}
	}
	return true
}

// ValuesEqual compares two cell values, treating NaN as equal to NaN and times
// by instant.
func ValuesEqual(x, y any) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	switch a := x.(type) {
	case float64:
		b, ok := y.(float64)
		return ok && (a == b || (math.IsNaN(a) && math.IsNaN(b)))
	case time.Time:
		b, ok := y.(time.Time)
		return ok && a.Equal(b)
	}
	return x == y
}

// Equal reports whether both frames have the same schema and the same rows in
// the same order.
func (f *Frame) Equal(o *Frame) bool {
	if !f.schema.Equal(o.schema) || f.nrows != o.nrows {
		return false
	}
	for r := 0; r < f.nrows; r++ {
		if !rowsEqual(f.cols, r, o.cols, r) {
			return false
		}
	}
	return true
}

// WithColumn returns a frame containing c. A column with the same name is
// replaced at its position; otherwise c is appended.
func (f *Frame) WithColumn(c Column) (*Frame, error) {
	if len(f.cols) > 0 && c.Len() != f.nrows {
		return nil, &SchemaError{Column: c.Name(), Msg: fmt.Sprintf("has %d rows, frame has %d", c.Len(), f.nrows)}
	}
	cols := append([]Column(nil), f.cols...)
	if i, ok := f.index[c.Name()]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return f.with(cols, c.Len()), nil
}

// DropColumn returns a frame without the named column.
func (f *Frame) DropColumn(name string) (*Frame, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, missingColumn(name)
	}
	cols := make([]Column, 0, len(f.cols)-1)
	cols = append(cols, f.cols[:i]...)
	cols = append(cols, f.cols[i+1:]...)
	return f.with(cols, f.nrows), nil
}

// RenameColumn returns a frame where column old is called to.
func (f *Frame) RenameColumn(old, to string) (*Frame, error) {
	i, ok := f.index[old]
	if !ok {
		return nil, missingColumn(old)
	}
	if old == to {
		return f, nil
	}
	if _, taken := f.index[to]; taken {
		return nil, &SchemaError{Column: to, Msg: "already exists"}
	}
	cols := append([]Column(nil), f.cols...)
	cols[i] = renameColumn(f.cols[i], to)
	return f.with(cols, f.nrows), nil
}

// CastColumn returns a frame where the named column holds kind k, keeping its
// name and position. Casting to the current kind is a no-op.
func (f *Frame) CastColumn(name string, k Kind) (*Frame, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, missingColumn(name)
	}
	if _, err := NewColumn(name, k, 0); err != nil {
		return nil, &SchemaError{Column: name, Msg: "invalid cast target", Err: err}
	}
	if f.cols[i].Kind() == k {
		return f, nil
	}
	cols := append([]Column(nil), f.cols...)
	cols[i] = castColumn(f.cols[i], k)
	return f.with(cols, f.nrows), nil
}

// FillNulls replaces nulls in the named columns with value. Columns whose kind
// the value cannot fill (see CanFill) are left unchanged.
func (f *Frame) FillNulls(names []string, value any) (*Frame, error) {
	value = Normalize(value)
	cols := append([]Column(nil), f.cols...)
	for _, name := range names {
		i, ok := f.index[name]
		if !ok {
			return nil, missingColumn(name)
		}
		c := cols[i]
		if value == nil || !CanFill(value, c.Kind()) {
			continue
		}
		fill, ok := CastValue(value, c.Kind())
		if !ok {
			continue
		}
		out := renameColumn(c, c.Name())
		for r := 0; r < out.Len(); r++ {
			if out.IsNull(r) {
				if err := SetValue(out, r, fill); err != nil {
					return nil, err
				}
			}
		}
		cols[i] = out
	}
	return f.with(cols, f.nrows), nil
}

// Coalesce returns, per row, the first non-null value of columns a and b as a
// column named a. The result kind is Promote(kind(a), kind(b)).
func (f *Frame) Coalesce(a, b string) (Column, error) {
	ca, err := f.Column(a)
	if err != nil {
		return nil, err
	}
	cb, err := f.Column(b)
	if err != nil {
		return nil, err
	}
	return CoalesceColumns(a, ca, cb)
}

// CoalesceColumns is Coalesce over detached columns of equal length.
func CoalesceColumns(name string, cols ...Column) (Column, error) {
	if len(cols) == 0 {
		return nil, &SchemaError{Column: name, Msg: "coalesce needs at least one column"}
	}
	k := KindInvalid
	n := cols[0].Len()
	for _, c := range cols {
		if c.Len() != n {
			return nil, &SchemaError{Column: c.Name(), Msg: fmt.Sprintf("has %d rows, expected %d", c.Len(), n)}
		}
		k = Promote(k, c.Kind())
	}
	out, err := NewColumn(name, k, n)
	if err != nil {
		return nil, err
	}
	for r := 0; r < n; r++ {
		for _, c := range cols {
			if c.IsNull(r) {
				continue
			}
			if v, ok := CastValue(c.Value(r), k); ok {
				if err := SetValue(out, r, v); err != nil {
					return nil, err
				}
			}
			break
		}
	}
	return out, nil
}

// Concat stacks frames with identical schemas into a new frame.
func Concat(frames ...*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return nil, &SchemaError{Msg: "concat needs at least one frame"}
	}
	first := frames[0]
	out := NewFrame(first.schema)
	for _, f := range frames {
		if !f.schema.Equal(first.schema) {
			return nil, &SchemaError{Msg: fmt.Sprintf("concat needs identical schemas, got %v and %v", first.schema.Names(), f.schema.Names())}
		}
		for r := 0; r < f.nrows; r++ {
			out.AppendNullRow()
			for i, c := range f.cols {
				if err := SetValue(out.cols[i], out.nrows-1, c.Value(r)); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}
