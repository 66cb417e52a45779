package view

import (
	"io"
	"log/slog"
)

// Option configures a view.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the structured logger used to trace delegation.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = discardLogger
	}
	return o
}

var discardLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return discardLogger
	}
	return l
}
