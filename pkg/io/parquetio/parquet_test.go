package parquetio

import (
	"os"
	"path/filepath"
	"testing"

	parquet "github.com/segmentio/parquet-go"
	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

type flower struct {
	Species string   `parquet:"species"`
	Petal   *float64 `parquet:"petal,optional"`
	Count   *int64   `parquet:"count,optional"`
	Wild    bool     `parquet:"wild"`
}

func TestReadAll(t *testing.T) {
	p := filepath.Join(t.TempDir(), "flowers.parquet")
	out, err := os.Create(p)
	require.NoError(t, err)
	petal, count := 1.5, int64(3)
	w := parquet.NewGenericWriter[flower](out)
	_, err = w.Write([]flower{
		{Species: "setosa", Petal: &petal, Count: &count, Wild: true},
		{Species: "virginica"},
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())

	f, err := ReadAll(p)
	require.NoError(t, err)
	require.Equal(t, []string{"species", "petal", "count", "wild"}, f.Schema().Names())
	require.Equal(t, 2, f.Rows())
	kinds := []ds.Kind{ds.KindString, ds.KindFloat, ds.KindInt, ds.KindBool}
	for i, k := range kinds {
		require.Equal(t, k, f.Schema().Columns[i].Type)
	}
	v, _ := f.Value(0, "petal")
	require.Equal(t, 1.5, v)
	v, _ = f.Value(0, "count")
	require.Equal(t, int64(3), v)
	v, _ = f.Value(1, "petal")
	require.Nil(t, v)
	v, _ = f.Value(1, "species")
	require.Equal(t, "virginica", v)
}

func TestWriteAll(t *testing.T) {
	p := filepath.Join(t.TempDir(), "frame.parquet")
	require.NoError(t, WriteAll(p, makeFrame(100)))
	st, err := os.Stat(p)
	require.NoError(t, err)
	require.Greater(t, st.Size(), int64(0))

	back, err := ReadAll(p)
	require.NoError(t, err)
	require.Equal(t, 100, back.Rows())
	require.Equal(t, []string{"a", "b"}, back.Schema().Names())
}
