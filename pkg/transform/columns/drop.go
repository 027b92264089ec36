package columns

import (
	"context"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

// Drop removes columns. Every listed column must exist.
type Drop struct{ Columns []string }

func (t *Drop) Name() string { return "drop_cols" }

func (t *Drop) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	out := f
	for _, name := range t.Columns {
		var err error
		if out, err = out.DropColumn(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}
