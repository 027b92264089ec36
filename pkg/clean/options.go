package clean

import "go.uber.org/zap"

type options struct {
	strict bool
	log    *zap.Logger
}

// Option configures ParseConfig and Clean.
type Option func(*options)

// Strict makes ParseConfig reject unrecognized keys with a ConfigError instead
// of ignoring them.
func Strict() Option { return func(o *options) { o.strict = true } }

// WithLogger sets the logger used to report stage progress and skipped work.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
