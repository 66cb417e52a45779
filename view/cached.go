package view

import (
	"log/slog"

	"github.com/sghaida/facet/capability"
	"github.com/sghaida/facet/selfref"
)

// CachedCapability is implemented by models that serve Cached views.
// It is distinct from SimpleCapability: a model may provide either, both or none.
type CachedCapability[A, M, C any] interface {
	CachedMethod(v *Cached[A, M, C], arg A) error
}

// CacheDefaulter is an optional model capability supplying the cache value a
// view starts with when the caller gives none.
type CacheDefaulter[C any] interface {
	DefaultCache() C
}

// Cached forwards Method to the model's CachedMethod and carries a cache value
// fixed at construction.
//
// The view never replaces its cache, but the guarantee is shallow: when C is a
// slice, map or pointer, Cache hands out the same backing data and a model can
// change its contents. Use a value type for C when the contents must not change.
type Cached[A, M, C any] struct {
	model  M
	cache  C
	anchor selfref.Anchor[*Cached[A, M, C]]
	logger *slog.Logger
}

var _ Front[int] = (*Cached[int, any, int])(nil)

// NewCached builds a Cached view over model holding cache.
func NewCached[A, M, C any](model M, cache C, opts ...Option) *Cached[A, M, C] {
	o := newOptions(opts)
	c := &Cached[A, M, C]{model: model, cache: cache, logger: o.logger}
	c.anchor.MustBind(c)
	return c
}

// NewCachedChecked is NewCached for model types whose method set provides
// CachedCapability[A, M, C]. Passing any other type fails to compile.
func NewCachedChecked[A any, M CachedCapability[A, M, C], C any](model M, cache C, opts ...Option) *Cached[A, M, C] {
	return NewCached[A](model, cache, opts...)
}

// NewCachedDefault builds a Cached view whose cache comes from the model's
// DefaultCache, looked up along its chain, or is the zero value of C.
func NewCachedDefault[A, M, C any](model M, opts ...Option) *Cached[A, M, C] {
	var cache C
	if d, _, ok := capability.Lookup[CacheDefaulter[C]](model); ok {
		cache = d.DefaultCache()
	}
	return NewCached[A](model, cache, opts...)
}

// Method delegates to the first link of the model's chain that provides
// CachedMethod and returns its result unchanged.
func (c *Cached[A, M, C]) Method(arg A) error {
	self, err := c.anchor.Self()
	if err != nil {
		return err
	}
	return delegate(loggerOr(c.logger), c.model, OpCached, func(impl CachedCapability[A, M, C]) error {
		return impl.CachedMethod(self, arg)
	})
}

// Cache returns the value the view was built with. It is a plain copy, so
// reference types share their contents with the view.
func (c *Cached[A, M, C]) Cache() C { return c.cache }

// Model returns the wrapped model.
func (c *Cached[A, M, C]) Model() M { return c.model }

// Supports reports whether the model's chain provides CachedMethod, without calling it.
func (c *Cached[A, M, C]) Supports() capability.Verdict {
	return capability.Probe[CachedCapability[A, M, C]](c.model)
}
