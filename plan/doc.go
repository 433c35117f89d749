// Package plan builds transduction pipelines from declarative YAML
// definitions.
//
// A Definition names an ordered list of steps. Each step selects one
// operator by Op and carries its parameters; map and filter steps refer to
// functions by name in a Registry. An include step splices in the steps of
// another plan found through the Loader.
//
//	name: top-evens
//	steps:
//	  - op: filter
//	    pred: even
//	  - op: map
//	    fn: square
//	  - op: take
//	    limit: 3
//
// Items are untyped (any) so the same plan runs over JSON values from the
// CLI, the HTTP server or a broker source.
package plan
