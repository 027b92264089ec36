package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CastValue converts v to kind k with SQL cast semantics. ok is false when the
// value has no representation in k, in which case the cast yields null.
func CastValue(v any, k Kind) (out any, ok bool) {
	if v == nil {
		return nil, false
	}
	switch k {
	case KindFloat:
		switch t := v.(type) {
		case bool:
			if t {
				return 1.0, true
			}
			return 0.0, true
		case int:
			return float64(t), true
		case int64:
			return float64(t), true
		case float64:
			return t, true
		case string:
			x, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			return x, err == nil
		case time.Time:
			return float64(t.UnixNano()) / 1e9, true
		}
	case KindInt:
		switch t := v.(type) {
		case bool:
			if t {
				return int64(1), true
			}
			return int64(0), true
		case int:
			return int64(t), true
		case int64:
			return t, true
		case float64:
			return truncate(t)
		case string:
			s := strings.TrimSpace(t)
			if x, err := strconv.ParseInt(s, 10, 64); err == nil {
				return x, true
			}
			if x, err := strconv.ParseFloat(s, 64); err == nil {
				return truncate(x)
			}
			return nil, false
		case time.Time:
			return t.Unix(), true
		}
	case KindString:
		switch t := v.(type) {
		case bool:
			return strconv.FormatBool(t), true
		case int:
			return strconv.Itoa(t), true
		case int64:
			return strconv.FormatInt(t, 10), true
		case float64:
			return strconv.FormatFloat(t, 'g', -1, 64), true
		case string:
			return t, true
		case time.Time:
			return t.Format(time.RFC3339), true
		}
	case KindBool:
		switch t := v.(type) {
		case bool:
			return t, true
		case int:
			return t != 0, true
		case int64:
			return t != 0, true
		case float64:
			if math.IsNaN(t) {
				return nil, false
			}
			return t != 0, true
		case string:
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "true", "t", "yes", "y", "1":
				return true, true
			case "false", "f", "no", "n", "0":
				return false, true
			}
			return nil, false
		}
	case KindTime:
		switch t := v.(type) {
		case time.Time:
			return t, true
		case int64:
			return time.Unix(t, 0).UTC(), true
		case int:
			return time.Unix(int64(t), 0).UTC(), true
		case float64:
			if math.IsNaN(t) || math.IsInf(t, 0) {
				return nil, false
			}
			sec, frac := math.Modf(t)
			return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
		case string:
			s := strings.TrimSpace(t)
			for _, layout := range timeLayouts {
				if ts, err := time.Parse(layout, s); err == nil {
					return ts, true
				}
			}
			return nil, false
		}
	}
	return nil, false
}

// castColumn converts every value of c to kind k. Values without a
// representation in k become null.
func castColumn(c Column, k Kind) Column {
	if c.Kind() == k {
		return c
	}
	out, err := NewColumn(c.Name(), k, c.Len())
	if err != nil {
		panic(err)
	}
	for i := 0; i < c.Len(); i++ {
		if v, ok := CastValue(c.Value(i), k); ok {
			if err := SetValue(out, i, v); err != nil {
				panic(err)
			}
		}
	}
	return out
}

// Promote returns the kind able to hold values of both a and b: equal kinds
// stay, int and float widen to float, any other mix becomes string.
func Promote(a, b Kind) Kind {
	switch {
	case a == b:
		return a
	case a == KindInvalid:
		return b
	case b == KindInvalid:
		return a
	case (a == KindInt && b == KindFloat) || (a == KindFloat && b == KindInt):
		return KindFloat
	}
	return KindString
}

// KindOf reports the Kind of a Go value as produced by Column.Value or by an
// expression, and KindInvalid for nil or unsupported values.
func KindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return KindInt
	case float32, float64:
		return KindFloat
	case string:
		return KindString
	case time.Time:
		return KindTime
	}
	return KindInvalid
}

// truncate converts x to int64 toward zero; NaN, infinities and values
// outside the int64 range have no int representation.
func truncate(x float64) (any, bool) {
	if math.IsNaN(x) || x >= 1<<63 || x < -(1<<63) {
		return nil, false
	}
	return int64(x), true
}

// Normalize widens integer and float values to int64 and float64 so they can be
// handed to SetValue or CastValue.
func Normalize(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case float32:
		return float64(t)
	}
	return v
}

// CanFill reports whether a fill value applies to columns of kind k. Numbers fill
// numeric columns, strings fill string columns, bools fill bool columns.
func CanFill(v any, k Kind) bool {
	vk := KindOf(v)
	switch k {
	case KindInt, KindFloat:
		return vk == KindInt || vk == KindFloat
	default:
		return vk != KindInvalid && vk == k
	}
}
