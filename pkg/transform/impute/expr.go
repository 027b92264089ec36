package impute

import (
	"context"
	"fmt"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
	"github.com/wdm0006/mlprep/pkg/expression"
)

// Expr fills the nulls of each rule's column with the rule's expression,
// evaluated on the null rows only. The column keeps its name and position; its
// kind widens to hold the imputed values. Rules apply in order, so a rule sees
// the columns imputed before it.
type Expr struct{ Rules []expression.Assignment }

func (t *Expr) Name() string { return "impute_cols" }

func (t *Expr) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	out := f
	for _, r := range t.Rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		col, err := out.Column(r.Column)
		if err != nil {
			return nil, err
		}
		var nulls []int
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				nulls = append(nulls, i)
			}
		}
		if len(nulls) == 0 {
			continue
		}
		p, err := r.Expr.Bind(out)
		if err != nil {
			return nil, err
		}
		filled, err := p.EvalRows(nulls)
		if err != nil {
			return nil, err
		}
		vals := make([]any, col.Len())
		for i := range vals {
			vals[i] = col.Value(i)
		}
		for i, row := range nulls {
			vals[row] = filled[i]
		}
		next, err := expression.Build(r.Column, col.Kind(), vals)
		if err != nil {
			return nil, fmt.Errorf("impute %s: %w", r.Column, err)
		}
		if out, err = out.WithColumn(next); err != nil {
			return nil, err
		}
	}
	return out, nil
}
