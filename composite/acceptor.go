package composite

import (
	"errors"
	"io"
	"log/slog"
	"strconv"

	"github.com/sghaida/facet/capability"
)

// OpTraverse names the Traverser capability in logs.
const OpTraverse = "Traverse"

var (
	// ErrNilNode is returned when an acceptor is asked to walk a nil node.
	ErrNilNode = errors.New("composite: nil node")

	// ErrUnknownOrder is matched by UnknownOrderError.
	ErrUnknownOrder = errors.New("composite: unknown traversal order")
)

// UnknownOrderError is returned for an Order outside PreOrder and PostOrder.
type UnknownOrderError struct{ Order Order }

// Error implements the error interface.
func (e UnknownOrderError) Error() string {
	return "composite: unknown traversal order " + strconv.Itoa(int(e.Order))
}

// Is reports whether target is ErrUnknownOrder.
func (e UnknownOrderError) Is(target error) bool { return target == ErrUnknownOrder }

// TraversalError reports the node whose visit failed and aborted the walk.
type TraversalError struct {
	Node  string
	Order Order
	Err   error
}

// Error implements the error interface.
func (e *TraversalError) Error() string {
	return "composite: " + e.Order.String() + " visit of " + e.Node + " failed: " + e.Err.Error()
}

// Unwrap returns the visitor's error.
func (e *TraversalError) Unwrap() error { return e.Err }

// Acceptor walks a tree rooted at a node with a fixed visitor.
type Acceptor[V any] struct {
	root    Node[V]
	visitor V
	logger  *slog.Logger
}

// Option configures an Acceptor.
type Option func(*acceptorOptions)

type acceptorOptions struct {
	logger *slog.Logger
}

// WithLogger sets the structured logger used to trace visits.
func WithLogger(logger *slog.Logger) Option {
	return func(o *acceptorOptions) {
		o.logger = logger
	}
}

// NewAcceptor binds visitor to the tree rooted at root.
func NewAcceptor[V any](root Node[V], visitor V, opts ...Option) *Acceptor[V] {
	var o acceptorOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Acceptor[V]{root: root, visitor: visitor, logger: o.logger}
}

// PreOrder walks the tree visiting each node before its children.
func (a *Acceptor[V]) PreOrder() error { return a.Accept(a.root, PreOrder) }

// PostOrder walks the tree visiting each node after its children.
func (a *Acceptor[V]) PostOrder() error { return a.Accept(a.root, PostOrder) }

// Visitor returns the bound visitor.
func (a *Acceptor[V]) Visitor() V { return a.visitor }

// Accept walks the subtree rooted at n. A node providing Traverser, directly
// or through its fallback chain, walks its own subtree; any other node gets Walk.
//
// A nil node, including a typed nil, yields ErrNilNode. A fallback chain
// longer than capability.MaxChainDepth yields capability.ChainTooDeepError.
func (a *Acceptor[V]) Accept(n Node[V], order Order) error {
	b, err := capability.Resolve[Traverser[V]](n, OpTraverse)
	switch {
	case err == nil:
		a.logger.Debug("custom traversal",
			"op", OpTraverse,
			"node", capability.TypeName(n),
			"link", b.Link,
			"depth", b.Depth,
			"order", order.String(),
		)
		return b.Impl.Traverse(a, n, order)
	case errors.Is(err, capability.ErrMissingCapability):
		return a.Walk(n, order)
	case errors.Is(err, capability.ErrNilModel):
		return ErrNilNode
	default:
		return err
	}
}

// Walk is the default traversal of n's subtree.
func (a *Acceptor[V]) Walk(n Node[V], order Order) error {
	switch order {
	case PreOrder:
		if err := a.VisitSelf(n, order); err != nil {
			return err
		}
		return a.Descend(n, order)
	case PostOrder:
		if err := a.Descend(n, order); err != nil {
			return err
		}
		return a.VisitSelf(n, order)
	default:
		return UnknownOrderError{Order: order}
	}
}

// Descend accepts each child of n in list order, stopping at the first error.
func (a *Acceptor[V]) Descend(n Node[V], order Order) error {
	for _, child := range n.Children() {
		if err := a.Accept(child, order); err != nil {
			return err
		}
	}
	return nil
}

// VisitSelf dispatches the visitor on n alone.
func (a *Acceptor[V]) VisitSelf(n Node[V], order Order) error {
	if capability.IsNil(n) {
		return ErrNilNode
	}
	a.logger.Debug("visit", "node", capability.TypeName(n), "order", order.String())
	if err := n.Visit(a.visitor); err != nil {
		return &TraversalError{Node: capability.TypeName(n), Order: order, Err: err}
	}
	return nil
}
