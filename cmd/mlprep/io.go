package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wdm0006/mlprep/pkg/config"
	ds "github.com/wdm0006/mlprep/pkg/dataset"
	"github.com/wdm0006/mlprep/pkg/io/csvio"
	"github.com/wdm0006/mlprep/pkg/io/parquetio"
)

func readFrame(in config.Input) (*ds.Frame, error) {
	switch in.Type {
	case "", config.TypeCSV:
		return csvio.ReadFile(in.Path, csvio.ReaderOptions{HasHeader: in.HasHeader, Delimiter: in.DelimiterRune()})
	case config.TypeParquet:
		return parquetio.ReadAll(in.Path)
	}
	return nil, &ds.ConfigError{Key: "input.type", Msg: fmt.Sprintf("unsupported type %q", in.Type)}
}

// writeFrame writes f as <dir>/<name>/part-*.csv or <dir>/<name>.parquet and
// returns the files written.
func writeFrame(out config.Output, name string, f *ds.Frame) ([]string, error) {
	switch out.Type {
	case "", config.TypeCSV:
		return csvio.WriteParts(filepath.Join(out.Dir, name), f, csvio.WriterOptions{RowsPerPart: out.RowsPerPart})
	case config.TypeParquet:
		if err := os.MkdirAll(out.Dir, 0o755); err != nil {
			return nil, err
		}
		path := filepath.Join(out.Dir, name+".parquet")
		if err := parquetio.WriteAll(path, f); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return nil, &ds.ConfigError{Key: "output.type", Msg: fmt.Sprintf("unsupported type %q", out.Type)}
}
