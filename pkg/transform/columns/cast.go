package columns

import (
	"context"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

// Cast converts columns to Type in place. Values that do not convert become null.
type Cast struct {
	Columns []string
	Type    ds.Kind
}

func (t *Cast) Name() string { return "cast_cols_dtype" }

func (t *Cast) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	out := f
	for _, name := range t.Columns {
		var err error
		if out, err = out.CastColumn(name, t.Type); err != nil {
			return nil, err
		}
	}
	return out, nil
}
