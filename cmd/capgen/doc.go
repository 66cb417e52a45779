// Command capgen generates capability interfaces, probes and delegators.
//
// A capability is a single-method interface a model may implement itself or
// inherit from a link of its fallback chain (see package capability). Writing
// the interface, its probe and its delegator by hand is repetitive; capgen
// produces all three from a short spec.
//
// What capgen generates
//
// For every capability in the spec:
//
//   - type <Name> interface { <Method>(params...) results }
//   - Has<Name>(m any) bool, true when m or a link of its chain provides <Name>
//   - Call<Method>(m any, params...) (results..., err error), which resolves
//     <Name> along m's chain and calls the first provider
//
// Call<Method> returns capability.MissingCapabilityError when no link provides
// the capability. When the method itself returns an error as its last result,
// that error is returned as err; otherwise err is only set by resolution.
//
// Spec format
//
// Specs are YAML (JSON is accepted as well). Unknown fields are rejected.
//
//	package: shapes
//	imports:
//	  - path: context
//	capabilities:
//	  - name: Area
//	    method: Area
//	    returns:
//	      - type: float64
//	  - name: Scaler
//	    method: Scale
//	    doc: resizes a model in place.
//	    params:
//	      - {name: ctx, type: context.Context}
//	      - {name: factor, type: float64}
//	    returns:
//	      - type: error
//
// Capability import
//
// The generated file imports the capability runtime. Its path is taken from
// capabilityImport when set, else from an import already used by the target
// package's non-generated files, else from the module containing capgen.
//
// Typical go:generate usage
//
//	//go:generate go run ../../cmd/capgen --spec shapes.cap.yaml --out shapes_cap.gen.go
//
// Exit codes: 0 on success, 1 when generation fails, 2 on usage errors.
package main
