package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

const iris = `sepal_length;petal_width;in_sample;observed;species
5.1;0.2;true;2021-03-04;setosa
4.9;NA;false;2021-03-05;setosa
7;1.4;true;;versicolor
6.3;2;;2021-03-07;
`

func TestInferAndRead(t *testing.T) {
	p := filepath.Join(t.TempDir(), "iris.csv")
	require.NoError(t, os.WriteFile(p, []byte(iris), 0o644))

	r, err := Open(p, ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	schema, err := r.InferSchema()
	require.NoError(t, err)
	require.Equal(t, []string{"sepal_length", "petal_width", "in_sample", "observed", "species"}, schema.Names())
	kinds := []ds.Kind{ds.KindFloat, ds.KindFloat, ds.KindBool, ds.KindTime, ds.KindString}
	for i, k := range kinds {
		require.Equal(t, k, schema.Columns[i].Type, schema.Columns[i].Name)
	}

	f, err := r.ReadAll(schema)
	require.NoError(t, err)
	require.Equal(t, 4, f.Rows())
	v, _ := f.Value(1, "petal_width")
	require.Nil(t, v)
	v, _ = f.Value(3, "species")
	require.Nil(t, v)
	v, _ = f.Value(0, "observed")
	require.Equal(t, time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), v)
	require.Empty(t, r.Warnings())
}

func TestReadWithoutHeaderAndCustomNulls(t *testing.T) {
	r := NewReaderFrom(strings.NewReader("1,x\n2,-\n3,z\n"), ReaderOptions{NullValues: []string{"-"}})
	schema, err := r.InferSchema()
	require.NoError(t, err)
	require.Equal(t, []string{"col_0", "col_1"}, schema.Names())
	require.Equal(t, ds.KindInt, schema.Columns[0].Type)
	f, err := r.ReadAll(schema)
	require.NoError(t, err)
	require.Equal(t, 3, f.Rows())
	v, _ := f.Value(1, "col_1")
	require.Nil(t, v)
}

func TestStrictShortRecord(t *testing.T) {
	in := "a,b\n1,2\n3\n"
	r := NewReaderFrom(strings.NewReader(in), ReaderOptions{HasHeader: true, SampleRows: 1})
	schema, err := r.InferSchema()
	require.NoError(t, err)
	f, err := r.ReadAll(schema)
	require.NoError(t, err)
	require.Equal(t, 2, f.Rows())
	require.Equal(t, "short_records=1", r.Warnings())

	r = NewReaderFrom(strings.NewReader(in), ReaderOptions{HasHeader: true, SampleRows: 1, Strict: true})
	schema, err = r.InferSchema()
	require.NoError(t, err)
	_, err = r.ReadAll(schema)
	require.Error(t, err)
}

func TestDuplicateHeaderNames(t *testing.T) {
	r := NewReaderFrom(strings.NewReader("a,a,a_1,b,a\n1,2,3,4,5\n"), ReaderOptions{HasHeader: true})
	schema, err := r.InferSchema()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "a_2", "a_1", "b", "a_3"}, schema.Names())
	f, err := r.ReadAll(schema)
	require.NoError(t, err)
	v, _ := f.Value(0, "a_1")
	require.Equal(t, int64(3), v)
	v, _ = f.Value(0, "a_2")
	require.Equal(t, int64(2), v)
}
