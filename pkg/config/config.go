// Package config loads mlprep job files. A job names an input dataset, an
// output directory, the stratified split and the cleaning stages to run.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
	"github.com/wdm0006/mlprep/pkg/split"
)

// Supported dataset types.
const (
	TypeCSV     = "csv"
	TypeParquet = "parquet"
)

type Input struct {
	Path      string `json:"path" yaml:"path" toml:"path"`
	Type      string `json:"type" yaml:"type" toml:"type"` // csv|parquet (default csv)
	HasHeader bool   `json:"has_header" yaml:"has_header" toml:"has_header"`
	Delimiter string `json:"delimiter" yaml:"delimiter" toml:"delimiter"` // empty = sniff
}

type Output struct {
	Dir         string `json:"dir" yaml:"dir" toml:"dir"`
	Type        string `json:"type" yaml:"type" toml:"type"`
	RowsPerPart int    `json:"rows_per_part" yaml:"rows_per_part" toml:"rows_per_part"`
}

// Split configures the stratified split. Ratio and Seed default to
// split.DefaultRatio and split.DefaultSeed when absent.
type Split struct {
	Column string   `json:"column" yaml:"column" toml:"column"`
	Ratio  *float64 `json:"ratio" yaml:"ratio" toml:"ratio"`
	Seed   *int64   `json:"seed" yaml:"seed" toml:"seed"`
}

// Job is one mlprep run. Stages holds the raw cleaning configuration handed
// to clean.ParseConfig.
type Job struct {
	Input  Input          `json:"input" yaml:"input" toml:"input"`
	Output Output         `json:"output" yaml:"output" toml:"output"`
	Split  *Split         `json:"split" yaml:"split" toml:"split"`
	Strict bool           `json:"strict" yaml:"strict" toml:"strict"`
	Stages map[string]any `json:"stages" yaml:"stages" toml:"stages"`
}

// Default returns a Job with a header-bearing CSV input and CSV output.
func Default() Job {
	return Job{
		Input:  Input{Type: TypeCSV, HasHeader: true},
		Output: Output{Dir: "out", Type: TypeCSV},
	}
}

// Format returns the decoder name for path by extension: json, yaml or toml.
func Format(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	}
	return "", &ds.ConfigError{Key: "path", Msg: fmt.Sprintf("cannot tell the format of %q, use .json, .yaml or .toml", path)}
}

// Load reads and validates the job file at path.
func Load(path string) (Job, error) {
	format, err := Format(path)
	if err != nil {
		return Job{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("read job %s: %w", path, err)
	}
	job, err := Decode(b, format)
	if err != nil {
		return Job{}, fmt.Errorf("job %s: %w", path, err)
	}
	return job, nil
}

// Decode parses a job in the given format over Default and validates it.
func Decode(b []byte, format string) (Job, error) {
	job := Default()
	var err error
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		err = dec.Decode(&job)
		if job.Stages != nil {
			numbers(job.Stages)
		}
	case "yaml":
		err = yaml.Unmarshal(b, &job)
	case "toml":
		err = toml.Unmarshal(b, &job)
	default:
		return Job{}, &ds.ConfigError{Key: "format", Msg: fmt.Sprintf("unsupported format %q", format)}
	}
	if err != nil {
		return Job{}, &ds.ConfigError{Msg: "decode " + format, Err: err}
	}
	if job.Stages == nil {
		job.Stages = map[string]any{}
	}
	return job, job.Validate()
}

// numbers turns json.Number values into int64 where they are integral and
// float64 otherwise, so JSON jobs decode like YAML and TOML ones.
func numbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = numbers(e)
		}
	case []any:
		for i, e := range t {
			t[i] = numbers(e)
		}
	}
	return v
}

// Validate reports every problem with the job at once.
func (j Job) Validate() error {
	var result *multierror.Error
	bad := func(key, format string, args ...any) {
		result = multierror.Append(result, &ds.ConfigError{Key: key, Msg: fmt.Sprintf(format, args...)})
	}
	if j.Input.Path == "" {
		bad("input.path", "required")
	}
	if t := j.Input.Type; t != TypeCSV && t != TypeParquet {
		bad("input.type", "unsupported type %q", t)
	}
	if d := j.Input.Delimiter; d != "" && utf8.RuneCountInString(d) != 1 {
		bad("input.delimiter", "must be a single character, got %q", d)
	}
	if j.Output.Dir == "" {
		bad("output.dir", "required")
	}
	if t := j.Output.Type; t != TypeCSV && t != TypeParquet {
		bad("output.type", "unsupported type %q", t)
	}
	if j.Output.RowsPerPart < 0 {
		bad("output.rows_per_part", "must not be negative")
	}
	if s := j.Split; s != nil {
		if s.Column == "" {
			bad("split.column", "required")
		}
		if r := s.Ratio; r != nil && (*r <= 0 || *r > 1) {
			bad("split.ratio", "must be in (0, 1], got %v", *r)
		}
	}
	return result.ErrorOrNil()
}

// DelimiterRune returns the configured input delimiter, 0 meaning sniff.
func (in Input) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(in.Delimiter)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// RatioOrDefault returns the split ratio, defaulting to split.DefaultRatio.
func (s Split) RatioOrDefault() float64 {
	if s.Ratio == nil {
		return split.DefaultRatio
	}
	return *s.Ratio
}

// SeedOrDefault returns the split seed, defaulting to split.DefaultSeed.
func (s Split) SeedOrDefault() int64 {
	if s.Seed == nil {
		return split.DefaultSeed
	}
	return *s.Seed
}
