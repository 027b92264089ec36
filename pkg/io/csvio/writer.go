package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
	iox "github.com/wdm0006/mlprep/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
	// NullValue is written for null cells, default empty.
	NullValue string
	// RowsPerPart bounds the rows of each file written by WriteParts; 0 writes
	// one part.
	RowsPerPart int
}

// DefaultPartPattern matches the files produced by WriteParts.
const DefaultPartPattern = `^part`

// WriteAll writes a Frame to a CSV file with headers. Paths ending in .gz are
// gzip compressed; "-" writes to stdout.
func WriteAll(path string, f *ds.Frame, opt WriterOptions) (err error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Write(out, f, opt)
}

// Write writes the header and every row of f to w.
func Write(w io.Writer, f *ds.Frame, opt WriterOptions) error {
	return writeRows(w, f, 0, f.Rows(), opt)
}

func writeRows(w io.Writer, f *ds.Frame, from, to int, opt WriterOptions) error {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	cols := f.Columns()
	if err := cw.Write(f.Schema().Names()); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for r := from; r < to; r++ {
		for c, col := range cols {
			row[c] = format(col.Value(r), opt.NullValue)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func format(v any, null string) string {
	switch t := v.(type) {
	case nil:
		return null
	case time.Time:
		return t.Format(time.RFC3339Nano)
	}
	s, _ := ds.CastValue(v, ds.KindString)
	return s.(string)
}

// WriteParts writes f into dir as part-00000.csv, part-00001.csv, ... each
// with a header row, and returns the paths written. Existing part files in dir
// are removed first. An empty frame still
// produces one part holding the header.
func WriteParts(dir string, f *ds.Frame, opt WriterOptions) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// parts left by an earlier write would be read back with these
	stale, err := ListParts(dir, DefaultPartPattern)
	if err != nil {
		return nil, err
	}
	for _, p := range stale {
		if err := os.Remove(p); err != nil {
			return nil, fmt.Errorf("remove stale part: %w", err)
		}
	}
	per := opt.RowsPerPart
	if per <= 0 || per > f.Rows() {
		per = f.Rows()
	}
	var paths []string
	for part, from := 0, 0; from < f.Rows() || part == 0; part, from = part+1, from+per {
		to := from + per
		if to > f.Rows() {
			to = f.Rows()
		}
		p := filepath.Join(dir, fmt.Sprintf("part-%05d.csv", part))
		if err := writePart(p, f, from, to, opt); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
		if per == 0 {
			break
		}
	}
	return paths, nil
}

func writePart(path string, f *ds.Frame, from, to int, opt WriterOptions) (err error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return writeRows(out, f, from, to, opt)
}

// ListParts returns the files in dir whose base name matches pattern
// (DefaultPartPattern when empty), sorted by name.
func ListParts(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPartPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("part pattern: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !re.MatchString(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// ReadParts reads every part file in dir into one Frame. All parts must share
// the schema inferred from the first one.
func ReadParts(dir, pattern string, opt ReaderOptions) (*ds.Frame, error) {
	paths, err := ListParts(dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no part files in %s", dir)
	}
	var schema ds.Schema
	var frames []*ds.Frame
	for i, p := range paths {
		r, err := Open(p, opt)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			if schema, err = r.InferSchema(); err != nil {
				_ = r.Close()
				return nil, fmt.Errorf("infer schema %s: %w", p, err)
			}
		} else if _, err = r.InferSchema(); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("read header %s: %w", p, err)
		}
		f, err := r.ReadAll(schema)
		_ = r.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		frames = append(frames, f)
	}
	return ds.Concat(frames...)
}
