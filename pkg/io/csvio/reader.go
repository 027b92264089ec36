// Package csvio reads and writes Frames as delimited text.
package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
	iox "github.com/wdm0006/mlprep/pkg/io/ioutils"
)

// DefaultNullValues are the cell values read as null.
var DefaultNullValues = []string{"", "NA", "NaN", "null"}

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records
	// NullValues replaces DefaultNullValues when non-nil.
	NullValues []string
}

type Reader struct {
	r     *csv.Reader
	close func() error
	opt   ReaderOptions
	nulls map[string]bool
	buf   [][]string
	// repair/warning counters
	shortRecords int
	longRecords  int
}

// Open opens a CSV file, possibly gzip compressed, or stdin for "-". The
// caller closes the Reader.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(rc)
	if opt.Delimiter == 0 {
		d, lazy := sniffDelimiter(br)
		opt.Delimiter = d
		r := newReader(br, opt)
		r.r.LazyQuotes = lazy
		r.close = rc.Close
		return r, nil
	}
	r := newReader(br, opt)
	r.close = rc.Close
	return r, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	return newReader(r, opt)
}

func newReader(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	nullValues := opt.NullValues
	if nullValues == nil {
		nullValues = DefaultNullValues
	}
	nulls := make(map[string]bool, len(nullValues))
	for _, v := range nullValues {
		nulls[v] = true
	}
	return &Reader{r: rr, opt: opt, nulls: nulls, close: func() error { return nil }}
}

func (r *Reader) Close() error { return r.close() }

func (r *Reader) isNull(v string) bool { return r.nulls[v] }

// InferSchema reads header (if present) and samples rows to determine column
// kinds. Sampled rows are kept for ReadAll.
func (r *Reader) InferSchema() (ds.Schema, error) {
	rec, err := r.r.Read()
	if err == io.EOF {
		return ds.Schema{}, nil
	}
	if err != nil {
		return ds.Schema{}, err
	}
	var names []string
	if r.opt.HasHeader {
		names = make([]string, len(rec))
		for i := range rec {
			names[i] = strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
		r.buf = append(r.buf, rec)
	}

	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for len(r.buf) < max {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ds.Schema{}, err
		}
		r.buf = append(r.buf, rec)
	}

	kinds := r.inferKinds(r.buf, len(names))
	schema := ds.Schema{Columns: make([]ds.ColumnSchema, len(names))}
	taken := make(map[string]bool, len(names))
	for _, name := range names {
		taken[name] = true
	}
	assigned := make(map[string]bool, len(names))
	for i, name := range names {
		if assigned[name] {
			// a_1, a_2, ... skipping names the header already uses
			for n := 1; ; n++ {
				c := fmt.Sprintf("%s_%d", names[i], n)
				if !taken[c] && !assigned[c] {
					name = c
					break
				}
			}
		}
		assigned[name] = true
		schema.Columns[i] = ds.ColumnSchema{Name: name, Type: kinds[i], Nullable: true}
	}
	return schema, nil
}

// ReadAll loads the sampled rows and the rest of the input into a Frame.
// Values that do not parse as their column's kind are read as null.
func (r *Reader) ReadAll(schema ds.Schema) (*ds.Frame, error) {
	f := ds.NewFrame(schema)
	for _, rec := range r.buf {
		if err := r.appendRecord(f, schema, rec); err != nil {
			return nil, err
		}
	}
	r.buf = nil
	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, schema, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (r *Reader) appendRecord(f *ds.Frame, schema ds.Schema, rec []string) error {
	if len(rec) > len(schema.Columns) {
		r.longRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv long record at row %d: need %d fields, got %d", f.Rows()+1, len(schema.Columns), len(rec))
		}
	}
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range schema.Columns {
		if i >= len(rec) {
			r.shortRecords++
			if r.opt.Strict {
				return fmt.Errorf("csv short record at row %d: need %d fields, got %d", row+1, len(schema.Columns), len(rec))
			}
			break
		}
		val := strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		if r.isNull(val) {
			continue
		}
		if v, ok := ds.CastValue(val, cs.Type); ok {
			if err := f.SetCell(row, cs.Name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

func (r *Reader) inferKinds(rows [][]string, ncol int) []ds.Kind {
	kinds := make([]ds.Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, boolean, times, str := 0, 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if r.isNull(v) {
				continue
			}
			switch lv := strings.ToLower(v); {
			case numre.MatchString(v):
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
			case lv == "true" || lv == "false":
				boolean++
			default:
				if _, ok := ds.CastValue(v, ds.KindTime); ok {
					times++
				} else {
					str++
				}
			}
		}
		switch {
		case str > 0 || (num > 0 && (boolean > 0 || times > 0)) || (boolean > 0 && times > 0):
			kinds[c] = ds.KindString
		case num > 0 && integer == num:
			kinds[c] = ds.KindInt
		case num > 0:
			kinds[c] = ds.KindFloat
		case boolean > 0:
			kinds[c] = ds.KindBool
		case times > 0:
			kinds[c] = ds.KindTime
		default:
			kinds[c] = ds.KindString
		}
	}
	return kinds
}

// sniffDelimiter picks the most frequent candidate delimiter in the first
// buffered block without consuming it.
func sniffDelimiter(br *bufio.Reader) (rune, bool) {
	sample, _ := br.Peek(4096)
	if len(sample) == 0 {
		return ',', false
	}
	if i := strings.IndexByte(string(sample), '\n'); i > 0 {
		sample = sample[:i]
	}
	best, bestCount := byte(','), 0
	for _, c := range []byte{',', '\t', ';', '|'} {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	quotes := strings.Count(string(sample), `"`)
	return rune(best), quotes%2 != 0
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	if r.shortRecords == 0 && r.longRecords == 0 {
		return ""
	}
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}

// ReadFile opens, infers and reads path in one call.
func ReadFile(path string, opt ReaderOptions) (*ds.Frame, error) {
	r, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		return nil, fmt.Errorf("infer schema %s: %w", path, err)
	}
	f, err := r.ReadAll(schema)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}
