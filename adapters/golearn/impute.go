package golearn

import (
	"math"

	"github.com/sjwhitworth/golearn/base"
)

// FillNaN replaces NaN cells of every float attribute in inst with value, in
// place, and returns the number of cells replaced. Converted frames carry
// their numeric nulls as NaN, which most golearn estimators cannot handle.
func FillNaN(inst *base.DenseInstances, value float64) (int, error) {
	var specs []base.AttributeSpec
	for _, a := range inst.AllAttributes() {
		if a.GetType() != base.Float64Type {
			continue
		}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return 0, err
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return 0, nil
	}
	fill := base.PackFloatToBytes(value)
	n := 0
	err := inst.MapOverRows(specs, func(vals [][]byte, row int) (bool, error) {
		for i, v := range vals {
			if math.IsNaN(base.UnpackBytesToFloat(v)) {
				inst.Set(specs[i], row, fill)
				n++
			}
		}
		return true, nil
	})
	return n, err
}
