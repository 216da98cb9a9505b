package kernel

import (
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/host/gohost"
	"go.uber.org/zap"
)

type options struct {
	host            host.Host
	logger          *zap.Logger
	scalarBroadcast bool
}

// Option configures program instantiation.
type Option func(*options)

// WithHost sets the dynamic value system programs convert from and to.
// The default is gohost.Default.
func WithHost(h host.Host) Option {
	return func(o *options) {
		o.host = h
	}
}

// WithScalarBroadcast lets a value nested less deeply than the destination's
// dimensions stand in for a one-element sequence, so that a single value fills
// a whole tuple, struct or array.
func WithScalarBroadcast(enabled bool) Option {
	return func(o *options) {
		o.scalarBroadcast = enabled
	}
}

// WithLogger sets the logger used for instantiation and teardown events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.host == nil {
		o.host = gohost.Default
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return o
}
