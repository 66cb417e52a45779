// Package selfref lets a value hand out the handle it was published under.
//
// A value embeds an Anchor parameterised by its own pointer type and its
// factory binds the anchor right after allocation. From then on the value can
// pass itself, typed as the most derived type, into callbacks. A value built
// without its factory (a zero value or a composite literal) has an unbound
// anchor, and asking it for a handle fails with NotOwnedError.
//
// Handles are ordinary pointers; the garbage collector keeps the referent alive
// for as long as any holder references it.
package selfref

import (
	"errors"
	"reflect"

	"github.com/sghaida/facet/capability"
)

var (
	// ErrNotOwned is matched by NotOwnedError.
	ErrNotOwned = errors.New("selfref: handle requested before ownership was established")

	// ErrAlreadyBound is returned when an anchor is bound a second time.
	ErrAlreadyBound = errors.New("selfref: anchor already bound")

	// ErrNilHandle is returned when binding a nil handle.
	ErrNilHandle = errors.New("selfref: nil handle")
)

// NotOwnedError is returned by Anchor.Self on an anchor that was never bound.
type NotOwnedError struct {
	// Type is the handle type that was requested.
	Type string
}

// Error implements the error interface.
func (e NotOwnedError) Error() string {
	// Example: selfref: *view.Simple[string,*app.Leaf] is not owned; construct it through its factory
	return "selfref: " + e.Type + " is not owned; construct it through its factory"
}

// Is reports whether target is ErrNotOwned.
func (e NotOwnedError) Is(target error) bool { return target == ErrNotOwned }

// Anchor stores the handle of the value that embeds it.
//
// The zero value is unbound. An anchor is bound once, by the embedding value's
// factory, before the value is shared; after that it is read-only and safe for
// concurrent reads.
type Anchor[H any] struct {
	self  H
	bound bool
}

// Bind records self as the handle of the embedding value.
func (a *Anchor[H]) Bind(self H) error {
	if a.bound {
		return ErrAlreadyBound
	}
	if capability.IsNil(self) {
		return ErrNilHandle
	}
	a.self = self
	a.bound = true
	return nil
}

// MustBind is Bind that panics on error. Factories use it right after
// allocating the value, where failure is a programming error.
func (a *Anchor[H]) MustBind(self H) {
	if err := a.Bind(self); err != nil {
		panic(err)
	}
}

// Self returns the bound handle.
func (a *Anchor[H]) Self() (H, error) {
	if a == nil || !a.bound {
		var zero H
		return zero, NotOwnedError{Type: reflect.TypeFor[H]().String()}
	}
	return a.self, nil
}

// MustSelf returns the bound handle or panics with NotOwnedError.
func (a *Anchor[H]) MustSelf() H {
	h, err := a.Self()
	if err != nil {
		panic(err)
	}
	return h
}

// Owned reports whether the anchor has been bound.
func (a *Anchor[H]) Owned() bool { return a != nil && a.bound }
