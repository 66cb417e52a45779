package creator

import (
	"reflect"
	"slices"

	"github.com/sghaida/facet/capability"
)

// Strategy names used in errors and logs.
const (
	StrategySimple = "simple"
	StrategyFixed  = "fixed"
	StrategyCached = "cached"
)

// Factory is the model capability a delegating strategy calls. It is invoked
// on the zero value of M.
type Factory[M any] interface {
	Make(tag Tag, words []string, extra []any) (M, error)
}

// Cloner is an optional model capability used by the fixed strategy to copy
// its held instance. Without it the instance is copied shallowly.
type Cloner[M any] interface {
	Clone() M
}

// Call is a tag and extra arguments stored for replay.
type Call struct {
	Tag   Tag
	Extra []any
}

// Strategy decides how a Creator produces a model.
type Strategy[M any] interface {
	// AddWord records a word for the factory.
	AddWord(word string)

	// Words returns the recorded words.
	Words() []string

	// Delegate reports whether Create goes through the model's Factory.
	Delegate() bool

	// Create builds a model without the factory. Delegating strategies
	// return a MisuseError.
	Create() (M, error)

	// Name identifies the strategy in errors and logs.
	Name() string
}

// SimpleStrategy collects words for the model's factory.
type SimpleStrategy[M any] struct {
	words []string
}

func (s *SimpleStrategy[M]) AddWord(word string) { s.words = append(s.words, word) }
func (s *SimpleStrategy[M]) Words() []string     { return slices.Clone(s.words) }
func (s *SimpleStrategy[M]) Delegate() bool      { return true }
func (s *SimpleStrategy[M]) Name() string        { return StrategySimple }

// Create always fails: a simple strategy builds only through the factory.
func (s *SimpleStrategy[M]) Create() (M, error) {
	var zero M
	return zero, MisuseError{Op: "Create", Strategy: s.Name()}
}

// FixedStrategy returns copies of a prebuilt instance and ignores words.
type FixedStrategy[M any] struct {
	held M
}

// NewFixedStrategy holds m.
func NewFixedStrategy[M any](m M) *FixedStrategy[M] { return &FixedStrategy[M]{held: m} }

func (*FixedStrategy[M]) AddWord(string)  {}
func (*FixedStrategy[M]) Words() []string { return nil }
func (*FixedStrategy[M]) Delegate() bool  { return false }
func (*FixedStrategy[M]) Name() string    { return StrategyFixed }
func (f *FixedStrategy[M]) Held() M       { return f.held }

// Create returns Clone() of the held instance when M provides Cloner,
// otherwise a shallow copy: a new pointee for pointer models, the value itself
// for value models. Models holding a bound self-anchor should provide Cloner,
// since a shallow copy keeps the original's handle.
func (f *FixedStrategy[M]) Create() (M, error) {
	if capability.IsNil(f.held) {
		var zero M
		return zero, capability.ErrNilModel
	}
	if c, ok := any(f.held).(Cloner[M]); ok {
		return c.Clone(), nil
	}

	rv := reflect.ValueOf(f.held)
	if rv.Kind() != reflect.Pointer {
		return f.held, nil
	}
	cp := reflect.New(rv.Elem().Type())
	cp.Elem().Set(rv.Elem())
	return cp.Interface().(M), nil
}

// CachedStrategy is a SimpleStrategy that also stores a Call for replay.
type CachedStrategy[M any] struct {
	SimpleStrategy[M]
	call Call
}

// NewCachedStrategy stores call; its extra arguments are copied.
func NewCachedStrategy[M any](call Call) *CachedStrategy[M] {
	call.Extra = slices.Clone(call.Extra)
	return &CachedStrategy[M]{call: call}
}

func (c *CachedStrategy[M]) Name() string { return StrategyCached }

// Create always fails, like SimpleStrategy.Create.
func (c *CachedStrategy[M]) Create() (M, error) {
	var zero M
	return zero, MisuseError{Op: "Create", Strategy: c.Name()}
}

// Stored returns the call recorded at construction.
func (c *CachedStrategy[M]) Stored() Call {
	return Call{Tag: c.call.Tag, Extra: slices.Clone(c.call.Extra)}
}
