package capability

import (
	"reflect"
	"sync"
)

// Verdict is the outcome of probing for a capability.
type Verdict uint8

const (
	Absent Verdict = iota
	Present
)

// String implements fmt.Stringer.
func (v Verdict) String() string {
	if v == Present {
		return "present"
	}
	return "absent"
}

// Probe reports whether m, or any link of its fallback chain, provides C.
func Probe[C any](m any) Verdict {
	if _, _, ok := Lookup[C](m); ok {
		return Present
	}
	return Absent
}

// Lookup returns the first link of m's fallback chain that provides C, and its
// depth on the chain (0 for m itself).
//
// ok is false when no link provides C, m is nil, or the chain is too deep.
func Lookup[C any](m any) (impl C, depth int, ok bool) {
	d := 0
	err := walk(m, func(link any) bool {
		if c, hit := link.(C); hit {
			impl, ok = c, true
			return true
		}
		d++
		return false
	})
	if err != nil || !ok {
		var zero C
		return zero, -1, false
	}
	return impl, d, true
}

// Binding is a resolved capability together with the link that supplied it.
type Binding[C any] struct {
	// Impl is the link, viewed through the capability interface.
	Impl C

	// Depth is the link's position on the chain; 0 when the model itself provides C.
	Depth int

	// Link is the dynamic type name of the supplying link.
	Link string
}

// Resolve walks m's fallback chain for C.
//
// It returns:
//   - ErrNilModel if m is nil
//   - ChainTooDeepError if the chain exceeds MaxChainDepth links
//   - MissingCapabilityError naming op if no link provides C
func Resolve[C any](m any, op string) (Binding[C], error) {
	var b Binding[C]
	found := false
	depth := 0

	err := walk(m, func(link any) bool {
		if c, hit := link.(C); hit {
			b = Binding[C]{Impl: c, Depth: depth, Link: TypeName(link)}
			found = true
			return true
		}
		depth++
		return false
	})
	if err != nil {
		return Binding[C]{}, err
	}
	if !found {
		return Binding[C]{}, MissingCapabilityError{
			Op:         op,
			Model:      TypeName(m),
			Capability: TypeNameOf[C](),
		}
	}
	return b, nil
}

// MustResolve is Resolve that panics on error.
func MustResolve[C any](m any, op string) C {
	b, err := Resolve[C](m, op)
	if err != nil {
		panic(err)
	}
	return b.Impl
}

type typePair struct {
	model      reflect.Type
	capability reflect.Type
}

// verdicts memoises Implements per (model, capability) pair.
var verdicts sync.Map // map[typePair]Verdict

// Implements reports whether the method set of M satisfies the interface C,
// without needing a value of M. Methods promoted through embedding count;
// Base links do not, since they are only reachable from a value.
//
// A non-interface C is always Absent.
func Implements[M, C any]() Verdict {
	key := typePair{model: reflect.TypeFor[M](), capability: reflect.TypeFor[C]()}
	if v, ok := verdicts.Load(key); ok {
		return v.(Verdict)
	}

	v := Absent
	if key.capability.Kind() == reflect.Interface && key.model.Implements(key.capability) {
		v = Present
	}
	actual, _ := verdicts.LoadOrStore(key, v)
	return actual.(Verdict)
}
