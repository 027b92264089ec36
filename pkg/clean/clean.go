package clean

import (
	"context"
	"time"

	"go.uber.org/zap"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

// Clean applies the configured stages to f in execution order and stops at the
// first failing stage. f is never modified.
func Clean(ctx context.Context, f *ds.Frame, cfg Config, opts ...Option) (*ds.Frame, error) {
	o := newOptions(opts)
	if len(cfg.Ignored) > 0 {
		o.log.Info("ignored unrecognized stage keys", zap.Strings("keys", cfg.Ignored))
	}
	p := ds.NewPipeline()
	for _, t := range cfg.stages(o.log) {
		p.Add(t)
	}
	start := time.Now()
	p.Observe = func(step ds.Transform, out *ds.Frame) {
		o.log.Debug("stage done",
			zap.String("stage", step.Name()),
			zap.Int("rows", out.Rows()),
			zap.Strings("columns", out.Schema().Names()),
			zap.Duration("elapsed", time.Since(start)))
	}
	out, err := p.Run(ctx, f)
	if err != nil {
		o.log.Debug("clean failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

// CleanRaw parses raw with ParseConfig and runs Clean.
func CleanRaw(ctx context.Context, f *ds.Frame, raw map[string]any, opts ...Option) (*ds.Frame, error) {
	cfg, err := ParseConfig(raw, opts...)
	if err != nil {
		return nil, err
	}
	return Clean(ctx, f, cfg, opts...)
}
