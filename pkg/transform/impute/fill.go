package impute

import (
	"context"

	"go.uber.org/zap"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

// FillNull replaces nulls in Columns with Value, coerced per column kind. A
// column whose kind the value cannot fill is left as is.
type FillNull struct {
	Columns []string
	// use any; will be coerced per column kind
	Value any
	Log   *zap.Logger
}

func (t *FillNull) Name() string { return "fill_na" }

func (t *FillNull) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	log := t.Log
	if log == nil {
		log = zap.NewNop()
	}
	value := ds.Normalize(t.Value)
	fill := make([]string, 0, len(t.Columns))
	for _, name := range t.Columns {
		col, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		if !ds.CanFill(value, col.Kind()) {
			log.Debug("fill value does not apply to column kind, skipping",
				zap.String("column", name),
				zap.Stringer("kind", col.Kind()),
				zap.Any("value", t.Value))
			continue
		}
		fill = append(fill, name)
	}
	return f.FillNulls(fill, value)
}
