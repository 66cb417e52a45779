package view

import (
	"log/slog"

	"github.com/sghaida/facet/capability"
)

// Operation names reported in capability errors and logs.
const (
	OpSimple       = "SimpleMethod"
	OpCached       = "CachedMethod"
	OpDefaultCache = "DefaultCache"
)

// Front is the surface every view over argument type A exposes.
type Front[A any] interface {
	Method(arg A) error
}

// delegate resolves C on model's fallback chain and hands the binding to call.
func delegate[C any](logger *slog.Logger, model any, op string, call func(C) error) error {
	b, err := capability.Resolve[C](model, op)
	if err != nil {
		logger.Warn("delegation failed",
			"op", op,
			"model", capability.TypeName(model),
			"error", err,
		)
		return err
	}

	logger.Debug("delegating",
		"op", op,
		"model", capability.TypeName(model),
		"link", b.Link,
		"depth", b.Depth,
	)
	return call(b.Impl)
}
