// Package capability detects and resolves optional behaviour on user models.
//
// A capability is a Go interface naming one method with an exact signature.
// A model provides a capability when its method set satisfies that interface.
// Models form a fallback chain through Model.Base: when a link lacks the
// capability, the next link is consulted, until the chain ends.
//
// Three levels of checking are available:
//
//   - compile time: constrain a type parameter by the capability interface
//     (see view.NewSimpleChecked), or assert it with var _ C = (*T)(nil).
//   - type level: Implements[M, C] inspects method sets only, without a value
//     of M, and memoises the verdict per (M, C) pair.
//   - value level: Probe, Lookup and Resolve walk a model's fallback chain.
//
// Signature, not name, is the contract. A link declaring a method with the
// right name but a different signature does not provide the capability, and
// the walk moves on to its Base.
//
// Resolution has no mutable state: for a fixed chain of dynamic types the
// outcome never changes.
package capability
