// Package source provides the pull-based Iterator consumed by the async
// transducer driver, together with adapters for slices, range-over-func
// sequences, channels and callbacks.
//
// Every Next call is a suspension point: built-in iterators check the context
// before yielding, so cancelling it stops a run between items.
//
//	it := source.FromSlice([]int{1, 2, 3})
//	defer it.Close()
//	for {
//	    v, ok, err := it.Next(ctx)
//	    if err != nil || !ok {
//	        break
//	    }
//	    use(v)
//	}
package source
