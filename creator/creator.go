package creator

import (
	"io"
	"log/slog"

	"github.com/sghaida/facet/capability"
)

// OpMake names the Factory capability in errors and logs.
const OpMake = "Make"

// Creator produces models of type M through its strategy. It is not safe for
// concurrent AddWord calls.
type Creator[M any] struct {
	strategy Strategy[M]
	logger   *slog.Logger
}

// Option configures a Creator.
type Option func(*creatorOptions)

type creatorOptions struct {
	logger *slog.Logger
}

// WithLogger sets the structured logger used to trace creation.
func WithLogger(logger *slog.Logger) Option {
	return func(o *creatorOptions) {
		o.logger = logger
	}
}

// New returns a Creator driven by strategy. A nil strategy is replaced by a
// SimpleStrategy.
func New[M any](strategy Strategy[M], opts ...Option) *Creator[M] {
	var o creatorOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if strategy == nil {
		strategy = &SimpleStrategy[M]{}
	}
	return &Creator[M]{strategy: strategy, logger: o.logger}
}

// NewSimple returns a Creator that hands its words to M's Factory.
func NewSimple[M any](opts ...Option) *Creator[M] {
	return New[M](&SimpleStrategy[M]{}, opts...)
}

// NewFixed returns a Creator that yields copies of m.
func NewFixed[M any](m M, opts ...Option) *Creator[M] {
	return New[M](NewFixedStrategy(m), opts...)
}

// NewCached returns a delegating Creator that remembers call for CreateStored.
func NewCached[M any](call Call, opts ...Option) *Creator[M] {
	return New[M](NewCachedStrategy[M](call), opts...)
}

// AddWord records word with the strategy and returns c for chaining.
func (c *Creator[M]) AddWord(word string) *Creator[M] {
	c.strategy.AddWord(word)
	return c
}

// Words returns the words recorded so far.
func (c *Creator[M]) Words() []string { return c.strategy.Words() }

// Strategy returns the creator's strategy.
func (c *Creator[M]) Strategy() Strategy[M] { return c.strategy }

// Create builds a model.
//
// A delegating strategy calls M's Factory with tag, the recorded words and
// extra. It returns:
//   - UnknownTagError if tag is not declared
//   - MissingCapabilityError if M has no Make method
//   - the factory's error unchanged
//
// A fixed strategy ignores tag, words and extra.
func (c *Creator[M]) Create(tag Tag, extra ...any) (M, error) {
	if !c.strategy.Delegate() {
		c.logger.Debug("creating",
			"strategy", c.strategy.Name(),
			"model", capability.TypeNameOf[M](),
		)
		return c.strategy.Create()
	}

	var zero M
	if !tag.Valid() {
		return zero, UnknownTagError{Tag: tag.String()}
	}

	factory, ok := factoryOf[M]()
	if !ok {
		err := capability.MissingCapabilityError{
			Op:         OpMake,
			Model:      capability.TypeNameOf[M](),
			Capability: capability.TypeNameOf[Factory[M]](),
		}
		c.logger.Warn("creation failed", "strategy", c.strategy.Name(), "error", err)
		return zero, err
	}

	words := c.strategy.Words()
	c.logger.Debug("creating",
		"strategy", c.strategy.Name(),
		"model", capability.TypeNameOf[M](),
		"tag", tag.String(),
		"words", words,
	)
	return factory.Make(tag, words, extra)
}

// CreateStored replays the call stored by a cached strategy. A fixed strategy
// creates as usual; a simple strategy has nothing stored and returns a
// MisuseError.
func (c *Creator[M]) CreateStored() (M, error) {
	if s, ok := c.strategy.(interface{ Stored() Call }); ok {
		call := s.Stored()
		return c.Create(call.Tag, call.Extra...)
	}
	if !c.strategy.Delegate() {
		return c.strategy.Create()
	}
	var zero M
	return zero, MisuseError{Op: "CreateStored", Strategy: c.strategy.Name()}
}

// MustCreate is Create that panics on error.
func (c *Creator[M]) MustCreate(tag Tag, extra ...any) M {
	m, err := c.Create(tag, extra...)
	if err != nil {
		panic(err)
	}
	return m
}

// factoryOf returns the Factory of M's zero value. Interface model types have
// a nil zero value and never provide one.
func factoryOf[M any]() (Factory[M], bool) {
	if capability.Implements[M, Factory[M]]() == capability.Absent {
		return nil, false
	}
	var zero M
	f, ok := any(zero).(Factory[M])
	return f, ok
}
