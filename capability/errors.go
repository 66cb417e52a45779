package capability

import (
	"errors"
	"reflect"
	"strconv"
)

var (
	// ErrMissingCapability is matched by MissingCapabilityError.
	ErrMissingCapability = errors.New("capability: missing capability")

	// ErrNilModel is returned when a chain walk starts from a nil model.
	ErrNilModel = errors.New("capability: nil model")

	// ErrChainTooDeep is matched by ChainTooDeepError.
	ErrChainTooDeep = errors.New("capability: fallback chain too deep")
)

// MissingCapabilityError is returned when no link of a model's fallback chain
// provides the requested operation.
type MissingCapabilityError struct {
	// Op is the operation name the caller asked for.
	Op string

	// Model is the dynamic type of the model the walk started from.
	Model string

	// Capability is the interface type that was probed.
	Capability string
}

// Error implements the error interface.
func (e MissingCapabilityError) Error() string {
	// Example: capability: "SimpleMethod" not provided by *app.Leaf (view.SimpleCapability[string,*app.Leaf])
	msg := "capability: " + strconv.Quote(e.Op) + " not provided by " + e.Model
	if e.Capability != "" {
		msg += " (" + e.Capability + ")"
	}
	return msg
}

// Is reports whether target is ErrMissingCapability.
func (e MissingCapabilityError) Is(target error) bool { return target == ErrMissingCapability }

// ChainTooDeepError is returned when a fallback chain has more than MaxChainDepth
// links. A chain whose Base links loop back on themselves ends up here.
type ChainTooDeepError struct {
	Model string
	Limit int
}

// Error implements the error interface.
func (e ChainTooDeepError) Error() string {
	return "capability: fallback chain of " + e.Model + " exceeds " + strconv.Itoa(e.Limit) + " links"
}

// Is reports whether target is ErrChainTooDeep.
func (e ChainTooDeepError) Is(target error) bool { return target == ErrChainTooDeep }

// TypeName returns the dynamic type name of v, or "<nil>".
func TypeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}

// TypeNameOf returns the name of T, including interface types.
func TypeNameOf[T any]() string {
	return reflect.TypeFor[T]().String()
}
