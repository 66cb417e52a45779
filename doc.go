// Package facet is a capability-based delegation engine for Go.
//
// A model is any user type. It may implement capabilities (single-method
// interfaces) itself, or declare a fallback link through Base() and let an
// ancestor provide them. Views wrap a model and forward to the first link of
// its fallback chain that provides what they need.
//
// The repository is organised in small packages:
//
//   - capability: probing, fallback chains and resolution (Probe, Lookup, Resolve, Implements)
//   - selfref: anchors handing out typed self-handles bound at construction
//   - view: Simple and Cached front-ends delegating to models
//   - composite: pre-order and post-order walks of node trees with a closed visitor set
//   - creator: model creation through simple, fixed and cached strategies
//   - cmd/capgen: generator for capability interfaces, probes and delegators
//
// Capability checks happen at three levels. A view built with a Checked
// constructor fails to compile when the model type lacks the capability.
// Implements answers the same question at run time for a type. Probe and
// Resolve answer it for a model value, walking its chain, and report
// capability.MissingCapabilityError when no link provides it.
package facet
