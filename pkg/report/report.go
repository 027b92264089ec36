// Package report summarizes frames produced by the splitter and the cleaning
// stages.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

// NullStratum labels the stratum of rows whose stratum value is null.
const NullStratum = "<null>"

type NumStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

type ColumnSummary struct {
	Name  string    `json:"name"`
	Kind  string    `json:"kind"`
	Count int       `json:"count"`
	Nulls int       `json:"nulls"`
	Num   *NumStats `json:"num,omitempty"`
}

type Summary struct {
	Name    string          `json:"name"`
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
	// Strata counts rows per value of the stratum column, when one was given.
	Strata map[string]int `json:"strata,omitempty"`
}

// Summarize counts rows and nulls per column of f. With a non-empty
// stratumColumn it also counts rows per stratum.
func Summarize(name string, f *ds.Frame, stratumColumn string) (Summary, error) {
	s := Summary{Name: name, Rows: f.Rows()}
	for _, c := range f.Columns() {
		cs := ColumnSummary{Name: c.Name(), Kind: c.Kind().String()}
		var num *NumStats
		var sum float64
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				cs.Nulls++
				continue
			}
			cs.Count++
			if c.Kind() != ds.KindInt && c.Kind() != ds.KindFloat {
				continue
			}
			v, _ := ds.CastValue(c.Value(i), ds.KindFloat)
			fv := v.(float64)
			if num == nil {
				num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
			}
			num.Min = math.Min(num.Min, fv)
			num.Max = math.Max(num.Max, fv)
			sum += fv
		}
		if num != nil {
			num.Mean = sum / float64(cs.Count)
			cs.Num = num
		}
		s.Columns = append(s.Columns, cs)
	}
	if stratumColumn == "" {
		return s, nil
	}
	c, err := f.Column(stratumColumn)
	if err != nil {
		return Summary{}, err
	}
	s.Strata = make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		s.Strata[label(c.Value(i))]++
	}
	return s, nil
}

func label(v any) string {
	if v == nil {
		return NullStratum
	}
	s, _ := ds.CastValue(v, ds.KindString)
	return s.(string)
}

// Text renders the summary for terminals and logs.
func (s Summary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d rows\n", s.Name, s.Rows)
	for _, c := range s.Columns {
		fmt.Fprintf(&b, "- %s (%s): count=%d nulls=%d", c.Name, c.Kind, c.Count, c.Nulls)
		if c.Num != nil {
			fmt.Fprintf(&b, " min=%.6g max=%.6g mean=%.6g", c.Num.Min, c.Num.Max, c.Num.Mean)
		}
		b.WriteString("\n")
	}
	if len(s.Strata) > 0 {
		keys := make([]string, 0, len(s.Strata))
		for k := range s.Strata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("strata:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "  %q: %d\n", k, s.Strata[k])
		}
	}
	return b.String()
}
