// Package derive adds computed columns to a frame.
package derive

import (
	"context"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
	"github.com/wdm0006/mlprep/pkg/expression"
)

// Derive appends one column per rule holding the rule's expression result.
// Key names the stage, e.g. "rank_cols" or "convert_cols". A rule naming an
// existing column fails with a SchemaError; rules see the columns added before
// them.
type Derive struct {
	Key   string
	Rules []expression.Assignment
}

func (t *Derive) Name() string {
	if t.Key == "" {
		return "derive"
	}
	return t.Key
}

func (t *Derive) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	out := f
	for _, r := range t.Rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if out.HasColumn(r.Column) {
			return nil, &ds.SchemaError{Column: r.Column, Msg: "already exists, derived columns must be new"}
		}
		c, err := expression.Evaluate(out, r.Expr, r.Column)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}
