package capability

import "reflect"

// MaxChainDepth bounds the number of links walked on a fallback chain.
const MaxChainDepth = 64

// Model is implemented by values that take part in a fallback chain.
//
// Base returns the next link of the chain, or nil at its root. A value that
// does not implement Model is a chain of one link.
type Model interface {
	Base() Model
}

// Root terminates a fallback chain. Embed it in the top-most model type.
type Root struct{}

// Base implements Model.
func (Root) Base() Model { return nil }

// Chain returns the links of m's fallback chain, starting with m itself.
func Chain(m any) ([]any, error) {
	var links []any
	err := walk(m, func(link any) bool {
		links = append(links, link)
		return false
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// walk calls visit on every link of m's chain until visit returns true or the
// chain ends.
func walk(m any, visit func(link any) bool) error {
	if IsNil(m) {
		return ErrNilModel
	}

	cur := m
	for depth := 0; ; depth++ {
		if depth >= MaxChainDepth {
			return ChainTooDeepError{Model: TypeName(m), Limit: MaxChainDepth}
		}
		if visit(cur) {
			return nil
		}

		link, ok := cur.(Model)
		if !ok {
			return nil
		}
		next := link.Base()
		if IsNil(next) {
			return nil
		}
		cur = next
	}
}

// IsNil reports whether v is nil or a typed nil reference (pointer, map,
// slice, func, chan or interface).
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
