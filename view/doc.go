// Package view provides front-ends that delegate to optional model behaviour.
//
// A view wraps a model M and exposes a fixed surface, Front[A]. Calling
// Method looks up the matching capability on the model's fallback chain and
// invokes it with the view itself as the first argument, so the model can call
// back into the view (double dispatch):
//
//	view.Method(arg)
//	  -> capability.Resolve(model chain, SimpleCapability[A, M])
//	  -> link.SimpleMethod(view, arg)
//
// Two shapes exist:
//
//   - Simple: delegates to SimpleMethod.
//   - Cached: carries an immutable cache value fixed at construction and
//     delegates to CachedMethod; the model reads the value through Cache().
//
// Views are only usable when built by their factories (NewSimple, NewCached,
// ...). A zero-value view has no self-handle and every call fails with
// selfref.NotOwnedError.
//
// Two policies exist for a missing capability. The Checked factories constrain
// M by the capability interface, so a model type that can never provide it is a
// compile error. The plain factories accept any M (typically an interface type
// selected at run time) and report capability.MissingCapabilityError from
// Method.
package view
