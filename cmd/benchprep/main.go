// Command benchprep measures clean and split throughput on generated data.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/wdm0006/mlprep/pkg/clean"
	ds "github.com/wdm0006/mlprep/pkg/dataset"
	"github.com/wdm0006/mlprep/pkg/split"
	"github.com/wdm0006/mlprep/pkg/transform/derive"
	"github.com/wdm0006/mlprep/pkg/transform/impute"
)

var labels = []string{"alpha", "beta", "gamma", "delta"}

func generate(schema ds.Schema, rows int, missp float64, rnd *rand.Rand) *ds.Frame {
	f := ds.NewFrame(schema)
	for i := 0; i < rows; i++ {
		f.AppendNullRow()
		for _, cs := range schema.Columns {
			if cs.Name != "label" && rnd.Float64() < missp {
				continue
			}
			var v any
			switch cs.Type {
			case ds.KindFloat:
				v = rnd.Float64() * 100
			case ds.KindInt:
				v = int64(rnd.Intn(100))
			case ds.KindString:
				v = labels[rnd.Intn(len(labels))]
			}
			_ = f.SetCell(i, cs.Name, v)
		}
	}
	return f
}

func main() {
	var (
		rows    = flag.Int("rows", 200_000, "rows to generate")
		fcols   = flag.Int("float-cols", 4, "number of float columns")
		icols   = flag.Int("int-cols", 2, "number of int columns")
		missp   = flag.Float64("missing", 0.05, "probability of a missing cell")
		ratio   = flag.Float64("ratio", split.DefaultRatio, "train fraction per stratum")
		jsonOut = flag.Bool("json", false, "emit JSON summary")
		seed    = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	var cols []ds.ColumnSchema
	for i := 0; i < *fcols; i++ {
		cols = append(cols, ds.ColumnSchema{Name: fmt.Sprintf("f%d", i), Type: ds.KindFloat, Nullable: true})
	}
	for i := 0; i < *icols; i++ {
		cols = append(cols, ds.ColumnSchema{Name: fmt.Sprintf("i%d", i), Type: ds.KindInt, Nullable: true})
	}
	cols = append(cols, ds.ColumnSchema{Name: "label", Type: ds.KindString})
	f := generate(ds.Schema{Columns: cols}, *rows, *missp, rand.New(rand.NewSource(*seed)))

	raw := map[string]any{
		"fill_na":      []any{[]any{"i0"}, 0},
		"impute_cols":  []any{[]any{"f1", `mean_of("f1")`}},
		"rank_cols":    []any{[]any{"f1_rank", `dense_rank("f1")`}},
		"convert_cols": []any{[]any{"f2_high", "f2 > 50.0"}},
	}
	if *icols > 0 {
		raw["cast_cols_dtype"] = []any{[]any{"i0"}, "double"}
	}

	runtime.GC()
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()
	cleaned, err := clean.CleanRaw(context.Background(), f, raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	post := ds.NewPipeline().
		Add(impute.Median("f0")).
		Add(&derive.MapValues{Column: "label", To: "label_code", Map: map[any]any{"alpha": 0, "beta": 1, "gamma": 2, "delta": 3}, Default: -1})
	if *icols > 1 {
		post.Add(impute.Mode("i1"))
	}
	cleaned, err = post.Run(context.Background(), cleaned)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cleanDone := time.Since(start)
	train, test, err := split.Split(cleaned, "label", *ratio, split.DefaultSeed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)

	summary := map[string]any{
		"rows":                  *rows,
		"clean_ms":              cleanDone.Milliseconds(),
		"split_ms":              (elapsed - cleanDone).Milliseconds(),
		"rows_per_sec":          float64(*rows) / elapsed.Seconds(),
		"train_rows":            train.Rows(),
		"test_rows":             test.Rows(),
		"mem_total_alloc_bytes": after.TotalAlloc - before.TotalAlloc,
		"gc_num":                after.NumGC - before.NumGC,
		"missing_prob":          *missp,
	}
	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Rows: %d (train %d, test %d)\n", *rows, train.Rows(), test.Rows())
	fmt.Printf("Clean: %s\n", cleanDone)
	fmt.Printf("Split: %s\n", elapsed-cleanDone)
	fmt.Printf("Throughput: %.0f rows/s\n", float64(*rows)/elapsed.Seconds())
	fmt.Printf("Total Alloc (delta): %d MB\n", (after.TotalAlloc-before.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", after.NumGC-before.NumGC)
}
