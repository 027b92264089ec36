package dataset

import (
	"context"
	"fmt"
)

// Transform is a stage applied to a Frame. Apply must not mutate f; it returns
// the transformed frame, which may share columns with f.
type Transform interface {
	Name() string
	Apply(ctx context.Context, f *Frame) (*Frame, error)
}

// Pipeline composes a sequence of Transforms.
type Pipeline struct {
	steps []Transform
	// Observe, when set, is called after each successful step.
	Observe func(step Transform, out *Frame)
}

func NewPipeline() *Pipeline { return &Pipeline{} }

func (p *Pipeline) Add(t Transform) *Pipeline {
	p.steps = append(p.steps, t)
	return p
}

// Steps returns the transforms in execution order.
func (p *Pipeline) Steps() []Transform { return append([]Transform(nil), p.steps...) }

// Run applies the steps in order and stops at the first failure. The input
// frame is left untouched, so on error the caller still holds the last good value.
func (p *Pipeline) Run(ctx context.Context, f *Frame) (*Frame, error) {
	var err error
	cur := f
	for _, t := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur, err = t.Apply(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", t.Name(), err)
		}
		if p.Observe != nil {
			p.Observe(t, cur)
		}
	}
	return cur, nil
}
