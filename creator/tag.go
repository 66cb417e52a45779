// Package creator builds models through a pluggable strategy.
//
// A Creator accumulates words and, on Create, either hands them to the model's
// Factory together with a Tag selecting the factory variant (Simple and Cached
// strategies), or returns a copy of a prebuilt instance (Fixed strategy).
//
// The factory is a method on the model type called on its zero value, so a
// pointer model must not dereference its receiver in Make:
//
//	type Text struct{ Body string }
//
//	func (*Text) Make(tag creator.Tag, words []string, extra []any) (*Text, error) {
//		switch tag {
//		case creator.Spaced:
//			return &Text{Body: strings.Join(words, " ")}, nil
//		...
//		}
//	}
//
//	t, err := creator.NewSimple[*Text]().AddWord("a").AddWord("b").Create(creator.Spaced)
package creator

import (
	"errors"
	"strconv"
	"strings"
)

// Tag selects among the variants of a model factory.
type Tag uint8

const (
	// Plain joins words with nothing between them.
	Plain Tag = iota
	// Spaced joins words with single spaces.
	Spaced
	// Newline joins words with line breaks.
	Newline
)

var tagNames = [...]string{Plain: "plain", Spaced: "spaced", Newline: "newline"}

// String implements fmt.Stringer.
func (t Tag) String() string {
	if t.Valid() {
		return tagNames[t]
	}
	return "tag(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is one of the declared tags.
func (t Tag) Valid() bool { return int(t) < len(tagNames) }

// ParseTag returns the tag named s, ignoring case.
func ParseTag(s string) (Tag, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range tagNames {
		if n == name {
			return Tag(i), nil
		}
	}
	return 0, UnknownTagError{Tag: s}
}

var (
	// ErrUnknownTag is matched by UnknownTagError.
	ErrUnknownTag = errors.New("creator: unknown tag")

	// ErrMisuse is matched by MisuseError.
	ErrMisuse = errors.New("creator: strategy misuse")
)

// UnknownTagError is returned for a tag outside the declared set.
type UnknownTagError struct{ Tag string }

// Error implements the error interface.
func (e UnknownTagError) Error() string {
	return "creator: unknown tag " + strconv.Quote(e.Tag)
}

// Is reports whether target is ErrUnknownTag.
func (e UnknownTagError) Is(target error) bool { return target == ErrUnknownTag }

// MisuseError is returned when an operation is called on a strategy that does
// not support it. It is a programming error; retrying cannot succeed.
type MisuseError struct {
	Op       string
	Strategy string
}

// Error implements the error interface.
func (e MisuseError) Error() string {
	return "creator: " + e.Op + " is not supported by the " + e.Strategy + " strategy"
}

// Is reports whether target is ErrMisuse.
func (e MisuseError) Is(target error) bool { return target == ErrMisuse }
