package expression

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/expr-lang/expr"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

var zeroTime time.Time

// columnFunctions take a column name as their first argument.
var columnFunctions = map[string]bool{
	"rank":         true,
	"dense_rank":   true,
	"percent_rank": true,
	"mean_of":      true,
	"median_of":    true,
	"mode_of":      true,
	"min_of":       true,
	"max_of":       true,
	"count_of":     true,
}

// functionError marks failures raised by the column functions; they are never
// turned into null by row-level null propagation.
type functionError struct{ err error }

func (e *functionError) Error() string { return e.err.Error() }
func (e *functionError) Unwrap() error { return e.err }

func fnErr(format string, args ...any) error {
	return &functionError{err: fmt.Errorf(format, args...)}
}

// rowState is the frame and current row seen by the column functions. Results
// over a whole column are computed once per Program and cached by key.
type rowState struct {
	frame *ds.Frame
	row   int
	cache map[string]any
}

func (s *rowState) functions() []expr.Option {
	return []expr.Option{
		expr.Function("rank", s.window("rank", competitionRank)),
		expr.Function("dense_rank", s.window("dense_rank", denseRank)),
		expr.Function("percent_rank", s.window("percent_rank", percentRank)),
		expr.Function("row_number", func(params ...any) (any, error) { return int64(s.row + 1), nil }),
		expr.Function("mean_of", s.aggregate("mean_of", mean)),
		expr.Function("median_of", s.aggregate("median_of", median)),
		expr.Function("mode_of", s.aggregate("mode_of", mode)),
		expr.Function("min_of", s.aggregate("min_of", extreme(-1))),
		expr.Function("max_of", s.aggregate("max_of", extreme(1))),
		expr.Function("count_of", s.aggregate("count_of", count)),
		expr.Function("coalesce", func(params ...any) (any, error) {
			for _, p := range params {
				if p != nil {
					return p, nil
				}
			}
			return nil, nil
		}),
		expr.Function("clip", clip),
	}
}

// clip bounds a number to [lo, hi]; a nil bound is open. Ints stay ints.
func clip(params ...any) (any, error) {
	if len(params) != 3 {
		return nil, fnErr("clip: expected (value, lo, hi), got %d arguments", len(params))
	}
	if params[0] == nil {
		return nil, nil
	}
	x, ok := toFloat(params[0])
	if !ok {
		return nil, fnErr("clip: value must be a number, got %T", params[0])
	}
	for i, b := range params[1:] {
		if b == nil {
			continue
		}
		bound, ok := toFloat(b)
		if !ok {
			return nil, fnErr("clip: bound must be a number or nil, got %T", b)
		}
		if (i == 0 && x < bound) || (i == 1 && x > bound) {
			x = bound
		}
	}
	if _, isInt := ds.Normalize(params[0]).(int64); isInt {
		return int64(x), nil
	}
	return x, nil
}

func toFloat(v any) (float64, bool) {
	switch t := ds.Normalize(v).(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

func (s *rowState) columnArg(fn string, params []any) (ds.Column, bool, error) {
	if len(params) == 0 || len(params) > 2 {
		return nil, false, fnErr("%s expects a column name and an optional order", fn)
	}
	name, ok := params[0].(string)
	if !ok {
		return nil, false, fnErr("%s: column name must be a string, got %T", fn, params[0])
	}
	c, ok := s.frame.ColumnByName(name)
	if !ok {
		return nil, false, fnErr("%s: column %q does not exist", fn, name)
	}
	desc := false
	if len(params) == 2 {
		order, _ := params[1].(string)
		switch strings.ToLower(order) {
		case "asc":
		case "desc":
			desc = true
		default:
			return nil, false, fnErr("%s: order must be \"asc\" or \"desc\", got %v", fn, params[1])
		}
	}
	return c, desc, nil
}

func (s *rowState) window(fn string, compute func(c ds.Column, desc bool) []any) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		c, desc, err := s.columnArg(fn, params)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("%s/%s/%v", fn, c.Name(), desc)
		vals, ok := s.cache[key].([]any)
		if !ok {
			vals = compute(c, desc)
			s.cache[key] = vals
		}
		return vals[s.row], nil
	}
}

func (s *rowState) aggregate(fn string, compute func(c ds.Column) (any, error)) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fnErr("%s expects exactly one column name", fn)
		}
		c, _, err := s.columnArg(fn, params)
		if err != nil {
			return nil, err
		}
		key := fn + "/" + c.Name()
		if v, ok := s.cache[key]; ok {
			return v, nil
		}
		v, err := compute(c)
		if err != nil {
			return nil, &functionError{err: fmt.Errorf("%s(%q): %w", fn, c.Name(), err)}
		}
		s.cache[key] = v
		return v, nil
	}
}

// order returns the row indexes sorted by value, nulls last; desc reverses the
// order of the non-null values only. Ties keep row order.
func order(c ds.Column, desc bool) []int {
	idx := make([]int, c.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := c.Value(idx[a]), c.Value(idx[b])
		if va == nil || vb == nil {
			return va != nil
		}
		cmp := compare(va, vb)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return idx
}

func compare(a, b any) int {
	switch x := a.(type) {
	case int64:
		return cmpFloat(float64(x), b.(int64))
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		return strings.Compare(x, b.(string))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case time.Time:
		return x.Compare(b.(time.Time))
	}
	return 0
}

func cmpFloat(x float64, y int64) int {
	switch fy := float64(y); {
	case x < fy:
		return -1
	case x > fy:
		return 1
	}
	return 0
}

// ranks orders the non-null values of c; null rows rank as nil. n is the number
// of ranked rows.
func ranks(c ds.Column, desc bool, dense bool) (out []any, n int) {
	idx := order(c, desc)
	out = make([]any, len(idx))
	var cur int64
	for pos, r := range idx {
		if c.IsNull(r) {
			break
		}
		n++
		if pos == 0 {
			cur = 1
		} else if !ds.ValuesEqual(c.Value(idx[pos-1]), c.Value(r)) {
			if dense {
				cur++
			} else {
				cur = int64(pos + 1)
			}
		}
		out[r] = cur
	}
	return out, n
}

func competitionRank(c ds.Column, desc bool) []any {
	out, _ := ranks(c, desc, false)
	return out
}

func denseRank(c ds.Column, desc bool) []any {
	out, _ := ranks(c, desc, true)
	return out
}

// percentRank is (rank-1)/(n-1) over the n non-null rows, 0 when n is 1.
func percentRank(c ds.Column, desc bool) []any {
	rs, n := ranks(c, desc, false)
	out := make([]any, len(rs))
	for i, r := range rs {
		switch {
		case r == nil:
		case n < 2:
			out[i] = 0.0
		default:
			out[i] = float64(r.(int64)-1) / float64(n-1)
		}
	}
	return out
}

func numbers(c ds.Column) ([]float64, error) {
	if c.Kind() != ds.KindInt && c.Kind() != ds.KindFloat {
		return nil, fmt.Errorf("needs a numeric column, got %v", c.Kind())
	}
	vals := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := ds.CastValue(c.Value(i), ds.KindFloat); ok {
			vals = append(vals, v.(float64))
		}
	}
	return vals, nil
}

func mean(c ds.Column) (any, error) {
	vals, err := numbers(c)
	if err != nil || len(vals) == 0 {
		return nil, err
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), nil
}

func median(c ds.Column) (any, error) {
	vals, err := numbers(c)
	if err != nil || len(vals) == 0 {
		return nil, err
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 0 {
		return (vals[mid-1] + vals[mid]) / 2, nil
	}
	return vals[mid], nil
}

// mode returns the most frequent non-null value; ties go to the value seen first.
func mode(c ds.Column) (any, error) {
	counts := map[any]int{}
	for i := 0; i < c.Len(); i++ {
		if v := c.Value(i); v != nil {
			counts[ds.StratumKey(v)]++
		}
	}
	var best any
	bestc := 0
	for i := 0; i < c.Len(); i++ {
		v := c.Value(i)
		if v == nil {
			continue
		}
		if n := counts[ds.StratumKey(v)]; n > bestc {
			best, bestc = v, n
		}
	}
	return best, nil
}

func extreme(sign int) func(c ds.Column) (any, error) {
	return func(c ds.Column) (any, error) {
		var best any
		for i := 0; i < c.Len(); i++ {
			v := c.Value(i)
			if v == nil {
				continue
			}
			if f, ok := v.(float64); ok && math.IsNaN(f) {
				continue
			}
			if best == nil || compare(v, best)*sign > 0 {
				best = v
			}
		}
		return best, nil
	}
}

func count(c ds.Column) (any, error) {
	var n int64
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			n++
		}
	}
	return n, nil
}
