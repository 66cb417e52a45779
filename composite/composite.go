// Package composite walks trees of model nodes with a closed visitor set.
//
// A hierarchy declares its visitor as an interface V with one operation per
// concrete node type. Each node implements Node[V]: Visit calls the operation
// of V matching the node's own type (double dispatch), and Children lists its
// children in traversal order. Adding a node type means extending V.
//
// An Acceptor binds a root and a visitor and walks the tree in pre-order or
// post-order. A node can replace the default walk for its subtree by providing
// the Traverser capability, itself or through its fallback chain.
//
// Traversal is a synchronous recursive walk; depth is bounded only by the
// tree's depth.
package composite

import (
	"slices"
	"strconv"
)

// Order selects when a node is visited relative to its children.
type Order uint8

const (
	// PreOrder visits a node, then its children.
	PreOrder Order = iota
	// PostOrder visits a node's children, then the node.
	PostOrder
)

// String implements fmt.Stringer.
func (o Order) String() string {
	switch o {
	case PreOrder:
		return "pre-order"
	case PostOrder:
		return "post-order"
	default:
		return "order(" + strconv.Itoa(int(o)) + ")"
	}
}

// Node is an element of a composite tree visited by V.
type Node[V any] interface {
	// Visit calls the operation of v that matches the node's concrete type.
	Visit(v V) error
	// Children returns the node's children in traversal order.
	Children() []Node[V]
}

// Traverser is an optional node capability replacing the default walk of the
// node's subtree. self is the node being accepted, which differs from the
// receiver when the capability comes from a Base link. Implementations build
// on Acceptor.Walk, Descend and VisitSelf; calling Accept on self recurses forever.
type Traverser[V any] interface {
	Traverse(a *Acceptor[V], self Node[V], order Order) error
}

// Branch holds a child list fixed at construction. Embed it in node types
// that have children.
type Branch[V any] struct {
	children []Node[V]
}

// NewBranch returns a Branch over children, in order.
func NewBranch[V any](children ...Node[V]) Branch[V] {
	return Branch[V]{children: slices.Clone(children)}
}

// Children returns a copy of the child list.
func (b Branch[V]) Children() []Node[V] { return slices.Clone(b.children) }

// Leaf is embedded by node types without children.
type Leaf[V any] struct{}

// Children returns nil.
func (Leaf[V]) Children() []Node[V] { return nil }
