package clean

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
	"github.com/wdm0006/mlprep/pkg/expression"
)

// ParseConfig builds a Config from loosely-typed configuration, as decoded from
// JSON, YAML or TOML. Each stage accepts a tuple form and an object form:
//
//	drop_cols:       ["a", "b"] | "a"
//	cast_cols_dtype: [["a", "b"], "double"] | {columns: [...], type: "double"}
//	fill_na:         [["a"], 0] | {columns: [...], value: 0}
//	impute_cols, rank_cols, convert_cols:
//	                 [["col", "formula"], ...] | [{column: "col", expr: "formula", inputs: [...]}, ...]
//
// Malformed parameters are reported as SchemaErrors. Every problem is collected
// and returned together. Unrecognized keys are listed in Config.Ignored, or
// fail with a ConfigError under Strict.
func ParseConfig(raw map[string]any, opts ...Option) (Config, error) {
	o := newOptions(opts)
	var cfg Config
	var result *multierror.Error

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := raw[key]
		var err error
		switch key {
		case KeyDrop:
			var cols []string
			if cols, err = stringList(key, v); err == nil {
				cfg.Drop = &DropStage{Columns: cols}
			}
		case KeyCast:
			cfg.Cast, err = parseCast(v)
		case KeyFillNA:
			cfg.FillNA, err = parseFill(v)
		case KeyImpute:
			var rules []expression.Assignment
			if rules, err = parseRules(key, v); err == nil {
				cfg.Impute = &ImputeStage{Rules: rules}
			}
		case KeyRank, KeyConvert:
			var rules []expression.Assignment
			if rules, err = parseRules(key, v); err == nil {
				if key == KeyRank {
					cfg.Rank = &DeriveStage{Rules: rules}
				} else {
					cfg.Convert = &DeriveStage{Rules: rules}
				}
			}
		default:
			if o.strict {
				err = &ds.ConfigError{Key: key, Msg: fmt.Sprintf("unrecognized stage, expected one of %v", Keys)}
			} else {
				cfg.Ignored = append(cfg.Ignored, key)
				o.log.Debug("ignoring unrecognized stage key", zap.String("key", key))
			}
		}
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func malformed(key, format string, args ...any) error {
	return &ds.SchemaError{Msg: fmt.Sprintf("%s: ", key) + fmt.Sprintf(format, args...)}
}

// stringList accepts a single name or a list of names.
func stringList(key string, v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []string:
		return append([]string(nil), t...), nil
	case []any:
		out := make([]string, 0, len(t))
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, malformed(key, "entry %d must be a column name, got %T", i, e)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, malformed(key, "expected a column name or a list of names, got %T", v)
}

// pair splits the tuple or object forms of cast_cols_dtype and fill_na into
// their column list and second element.
func pair(key string, v any, second string) (cols []string, arg any, err error) {
	switch t := v.(type) {
	case []any:
		if len(t) != 2 {
			return nil, nil, malformed(key, "expected [columns, %s], got %d elements", second, len(t))
		}
		cols, err = stringList(key, t[0])
		return cols, t[1], err
	case map[string]any:
		c, ok := t["columns"]
		if !ok {
			return nil, nil, malformed(key, "missing \"columns\"")
		}
		arg, ok = t[second]
		if !ok {
			return nil, nil, malformed(key, "missing %q", second)
		}
		cols, err = stringList(key, c)
		return cols, arg, err
	}
	return nil, nil, malformed(key, "expected [columns, %s] or an object, got %T", second, v)
}

func parseCast(v any) (*CastStage, error) {
	cols, arg, err := pair(KeyCast, v, "type")
	if err != nil {
		return nil, err
	}
	name, ok := arg.(string)
	if !ok {
		return nil, malformed(KeyCast, "type must be a type name, got %T", arg)
	}
	k, err := ds.ParseKind(name)
	if err != nil {
		return nil, &ds.SchemaError{Msg: KeyCast, Err: err}
	}
	return &CastStage{Columns: cols, Type: k}, nil
}

func parseFill(v any) (*FillNAStage, error) {
	cols, arg, err := pair(KeyFillNA, v, "value")
	if err != nil {
		return nil, err
	}
	switch ds.Normalize(arg).(type) {
	case bool, int64, float64, string:
	default:
		return nil, malformed(KeyFillNA, "value must be a scalar, got %T", arg)
	}
	return &FillNAStage{Columns: cols, Value: ds.Normalize(arg)}, nil
}

func parseRules(key string, v any) ([]expression.Assignment, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, malformed(key, "expected a list of [column, expression] pairs, got %T", v)
	}
	rules := make([]expression.Assignment, 0, len(list))
	for i, e := range list {
		var col, formula any
		var inputs []string
		switch t := e.(type) {
		case []any:
			if len(t) != 2 {
				return nil, malformed(key, "rule %d: expected [column, expression], got %d elements", i, len(t))
			}
			col, formula = t[0], t[1]
		case map[string]any:
			col, formula = t["column"], t["expr"]
			if in, ok := t["inputs"]; ok {
				var err error
				if inputs, err = stringList(key, in); err != nil {
					return nil, err
				}
			}
		default:
			return nil, malformed(key, "rule %d: expected a pair or an object, got %T", i, e)
		}
		name, ok := col.(string)
		if !ok || name == "" {
			return nil, malformed(key, "rule %d: column must be a non-empty name, got %v", i, col)
		}
		f, ok := formula.(string)
		if !ok || f == "" {
			return nil, malformed(key, "rule %d: expression must be a non-empty string, got %v", i, formula)
		}
		rules = append(rules, expression.Assignment{Column: name, Expr: expression.New(f, inputs...)})
	}
	return rules, nil
}
