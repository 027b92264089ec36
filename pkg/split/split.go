// Package split divides a Frame into train and test subsets stratified by the
// values of one column.
package split

import (
	"fmt"
	"math"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

const (
	DefaultRatio       = 0.8
	DefaultSeed  int64 = 76
)

// Stratified splits frames by Column, sampling each stratum with Ratio.
type Stratified struct {
	Column string
	Ratio  float64
	Seed   int64
}

// New returns a Stratified splitter with the default ratio and seed.
func New(column string) Stratified {
	return Stratified{Column: column, Ratio: DefaultRatio, Seed: DefaultSeed}
}

func (s Stratified) Split(f *ds.Frame) (train, test *ds.Frame, err error) {
	return Split(f, s.Column, s.Ratio, s.Seed)
}

// Split samples roughly ratio of the rows of every stratum of column into
// train and returns the remaining rows as test. The two frames are disjoint,
// together hold every row of f, and are identical across calls with the same
// inputs.
func Split(f *ds.Frame, column string, ratio float64, seed int64) (train, test *ds.Frame, err error) {
	fractions, err := Fractions(f, column, ratio)
	if err != nil {
		return nil, nil, err
	}
	train, err = f.SampleBy(column, fractions, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("sample %s: %w", column, err)
	}
	test, err = f.Subtract(train)
	if err != nil {
		return nil, nil, fmt.Errorf("subtract train: %w", err)
	}
	return train, test, nil
}

// Fractions assigns ratio to every distinct value of column.
func Fractions(f *ds.Frame, column string, ratio float64) (map[any]float64, error) {
	if math.IsNaN(ratio) || ratio <= 0 || ratio > 1 {
		return nil, &ds.SamplingError{Column: column, Msg: fmt.Sprintf("ratio %v outside (0, 1]", ratio)}
	}
	strata, err := f.Distinct(column)
	if err != nil {
		return nil, err
	}
	fractions := make(map[any]float64, len(strata))
	for _, v := range strata {
		fractions[v] = ratio
	}
	return fractions, nil
}
