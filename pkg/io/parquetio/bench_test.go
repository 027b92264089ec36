package parquetio

import (
	"path/filepath"
	"testing"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

func makeFrame(rows int) *ds.Frame {
	s := ds.Schema{Columns: []ds.ColumnSchema{{Name: "a", Type: ds.KindFloat, Nullable: true}, {Name: "b", Type: ds.KindInt, Nullable: true}}}
	f := ds.NewFrame(s)
	for i := 0; i < rows; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "a", float64(i%100))
		if i%7 != 0 {
			_ = f.SetCell(i, "b", int64(i%10))
		}
	}
	return f
}

func BenchmarkParquetWrite(b *testing.B) {
	f := makeFrame(50000)
	path := filepath.Join(b.TempDir(), "bench.parquet")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := WriteAll(path, f); err != nil {
			b.Fatal(err)
		}
	}
}
