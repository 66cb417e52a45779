package view

import (
	"log/slog"

	"github.com/sghaida/facet/capability"
	"github.com/sghaida/facet/selfref"
)

// SimpleCapability is implemented by models that serve Simple views.
//
// v is the calling view, typed with the same M the view was built for, so an
// implementation can keep it or call back into it.
type SimpleCapability[A, M any] interface {
	SimpleMethod(v *Simple[A, M], arg A) error
}

// Simple forwards Method to the model's SimpleMethod.
type Simple[A, M any] struct {
	model  M
	anchor selfref.Anchor[*Simple[A, M]]
	logger *slog.Logger
}

var _ Front[int] = (*Simple[int, any])(nil)

// NewSimple builds a Simple view over model.
//
// M may be any type. When no link of the model's chain provides
// SimpleCapability[A, M], Method fails with capability.MissingCapabilityError.
func NewSimple[A, M any](model M, opts ...Option) *Simple[A, M] {
	o := newOptions(opts)
	s := &Simple[A, M]{model: model, logger: o.logger}
	s.anchor.MustBind(s)
	return s
}

// NewSimpleChecked is NewSimple for model types whose method set provides
// SimpleCapability[A, M]. Passing any other type fails to compile.
func NewSimpleChecked[A any, M SimpleCapability[A, M]](model M, opts ...Option) *Simple[A, M] {
	return NewSimple[A](model, opts...)
}

// Method delegates to the first link of the model's chain that provides
// SimpleMethod and returns its result unchanged.
func (s *Simple[A, M]) Method(arg A) error {
	self, err := s.anchor.Self()
	if err != nil {
		return err
	}
	return delegate(loggerOr(s.logger), s.model, OpSimple, func(c SimpleCapability[A, M]) error {
		return c.SimpleMethod(self, arg)
	})
}

// Model returns the wrapped model.
func (s *Simple[A, M]) Model() M { return s.model }

// Supports reports whether the model's chain provides SimpleMethod, without calling it.
func (s *Simple[A, M]) Supports() capability.Verdict {
	return capability.Probe[SimpleCapability[A, M]](s.model)
}
