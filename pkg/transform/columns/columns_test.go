package columns

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

func frame(t *testing.T) *ds.Frame {
	t.Helper()
	f, err := ds.FromRows(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "a", Type: ds.KindString, Nullable: true},
		{Name: "b", Type: ds.KindString, Nullable: true},
		{Name: "c", Type: ds.KindInt, Nullable: true},
	}}, [][]any{
		{"1.5", "true", 1},
		{"x", "no", nil},
		{nil, "2", 3},
	})
	require.NoError(t, err)
	return f
}

func TestDrop(t *testing.T) {
	f := frame(t)
	out, err := (&Drop{Columns: []string{"a", "c"}}).Apply(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, out.Schema().Names())
	require.Equal(t, []string{"a", "b", "c"}, f.Schema().Names())

	_, err = (&Drop{Columns: []string{"b", "zz"}}).Apply(context.Background(), f)
	var se *ds.SchemaError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "zz", se.Column)
}

func TestCast(t *testing.T) {
	f := frame(t)
	out, err := (&Cast{Columns: []string{"a", "c"}, Type: ds.KindFloat}).Apply(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, out.Schema().Names())
	a, _ := out.ColumnByName("a")
	require.Equal(t, ds.KindFloat, a.Kind())
	require.Equal(t, 1.5, a.Value(0))
	require.Nil(t, a.Value(1))
	require.Nil(t, a.Value(2))
	c, _ := out.ColumnByName("c")
	require.Equal(t, 3.0, c.Value(2))

	out, err = (&Cast{Columns: []string{"b"}, Type: ds.KindBool}).Apply(context.Background(), f)
	require.NoError(t, err)
	b, _ := out.ColumnByName("b")
	require.Equal(t, []any{true, false, nil}, []any{b.Value(0), b.Value(1), b.Value(2)})

	_, err = (&Cast{Columns: []string{"q"}, Type: ds.KindInt}).Apply(context.Background(), f)
	var se *ds.SchemaError
	require.True(t, errors.As(err, &se))
}
