package split_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
	"github.com/wdm0006/mlprep/pkg/split"
)

func labeled(t *testing.T, n int) *ds.Frame {
	t.Helper()
	rows := make([][]any, n)
	for i := range rows {
		var label any = fmt.Sprintf("c%d", i%3)
		if i%7 == 0 {
			label = nil
		}
		rows[i] = []any{int64(i), float64(i%5) / 2, label}
	}
	f, err := ds.FromRows(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "id", Type: ds.KindInt},
		{Name: "x", Type: ds.KindFloat},
		{Name: "label", Type: ds.KindString, Nullable: true},
	}}, rows)
	require.NoError(t, err)
	return f
}

func ids(t *testing.T, f *ds.Frame) []int64 {
	t.Helper()
	c, err := f.Column("id")
	require.NoError(t, err)
	out := make([]int64, c.Len())
	for i := range out {
		out[i] = c.Value(i).(int64)
	}
	return out
}

func TestSplitCoversInput(t *testing.T) {
	f := labeled(t, 500)
	train, test, err := split.Split(f, "label", 0.8, split.DefaultSeed)
	require.NoError(t, err)
	require.Equal(t, f.Rows(), train.Rows()+test.Rows())
	require.True(t, train.Schema().Equal(f.Schema()))
	require.True(t, test.Schema().Equal(f.Schema()))

	seen := map[int64]int{}
	for _, id := range append(ids(t, train), ids(t, test)...) {
		seen[id]++
	}
	require.Len(t, seen, f.Rows())
	for id, n := range seen {
		require.Equal(t, 1, n, "row %d", id)
	}
	require.InDelta(t, 400, train.Rows(), 50)
}

func TestSplitIsReproducible(t *testing.T) {
	f := labeled(t, 200)
	s := split.New("label")
	a, _, err := s.Split(f)
	require.NoError(t, err)
	b, _, err := s.Split(f)
	require.NoError(t, err)
	require.True(t, a.Equal(b))

	c, _, err := split.Split(f, "label", split.DefaultRatio, 7)
	require.NoError(t, err)
	require.False(t, a.Equal(c))
}

func TestSplitEveryStratumSampled(t *testing.T) {
	f := labeled(t, 300)
	train, _, err := split.Split(f, "label", 0.5, 1)
	require.NoError(t, err)
	strata, err := train.Distinct("label")
	require.NoError(t, err)
	require.ElementsMatch(t, []any{"c0", "c1", "c2", nil}, strata)
}

func TestSplitDuplicateRows(t *testing.T) {
	rows := make([][]any, 40)
	for i := range rows {
		rows[i] = []any{"same", int64(1)}
	}
	f, err := ds.FromRows(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "label", Type: ds.KindString},
		{Name: "v", Type: ds.KindInt},
	}}, rows)
	require.NoError(t, err)
	train, test, err := split.Split(f, "label", 0.5, split.DefaultSeed)
	require.NoError(t, err)
	require.Equal(t, 40, train.Rows()+test.Rows())
}

func TestSplitRatioOne(t *testing.T) {
	f := labeled(t, 50)
	train, test, err := split.Split(f, "label", 1, split.DefaultSeed)
	require.NoError(t, err)
	require.True(t, train.Equal(f))
	require.Equal(t, 0, test.Rows())
}

func TestSplitEmpty(t *testing.T) {
	f := labeled(t, 0)
	train, test, err := split.Split(f, "label", 0.8, split.DefaultSeed)
	require.NoError(t, err)
	require.Equal(t, 0, train.Rows())
	require.Equal(t, 0, test.Rows())

	_, _, err = split.Split(f, "missing", 0.8, split.DefaultSeed)
	var se *ds.SchemaError
	require.True(t, errors.As(err, &se))
}

func TestSplitErrors(t *testing.T) {
	f := labeled(t, 10)
	_, _, err := split.Split(f, "nope", 0.8, split.DefaultSeed)
	var se *ds.SchemaError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "nope", se.Column)

	for _, r := range []float64{0, -0.1, 1.5} {
		_, _, err = split.Split(f, "label", r, split.DefaultSeed)
		var sampling *ds.SamplingError
		require.True(t, errors.As(err, &sampling), "ratio %v", r)
	}
}
