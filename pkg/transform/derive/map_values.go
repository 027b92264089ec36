package derive

import (
	"context"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
	"github.com/wdm0006/mlprep/pkg/expression"
)

// MapValues adds column To holding Map[value of Column], or Default when the
// value has no entry or is null.
type MapValues struct {
	Column  string
	To      string
	Map     map[any]any
	Default any
}

func (t *MapValues) Name() string { return "map_values" }

func (t *MapValues) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	e, err := expression.Mapping(t.Column, t.Map, t.Default)
	if err != nil {
		return nil, err
	}
	d := &Derive{Key: t.Name(), Rules: []expression.Assignment{{Column: t.To, Expr: e}}}
	return d.Apply(ctx, f)
}
