// Package transducer provides composable, single-pass reducing pipelines.
//
// A Transducer turns a downstream Reducer into an upstream one. Operators
// such as Mapping, Filtering, Take or Batching are stacked with Compose or
// Chain and then driven over a source by Transduce. No intermediate
// collections are built: every item flows through the whole chain before the
// next one is pulled.
//
// # Contract
//
// A Reducer is called exactly once with Initial, then Step for each item, then
// exactly once with Complete. A Step may return Reduced to request early
// termination; the driver stops pulling and completes with the unwrapped
// accumulator.
//
// Reducers that hold resources can implement Scoped. Every built-in operator
// forwards Enter and Exit to its downstream, so a scoped terminal sees them
// even when wrapped.
//
// # Usage
//
//	xf := transducer.Compose(
//	    transducer.Mapping[[]int](transducer.Lift(func(n int) int { return n * 2 })),
//	    transducer.Filtering[[]int](transducer.LiftPredicate(func(n int) bool { return n > 4 })),
//	)
//	out, err := transducer.Collect(xf, slices.Values([]int{1, 2, 3, 4, 5, 6}))
//	// out == []int{6, 8, 10, 12}
//
// The async subpackage mirrors every operator over a context-aware pull
// source.
package transducer
