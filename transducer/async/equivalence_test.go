package async

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/kbukum/transducekit/source"
	"github.com/kbukum/transducekit/transducer"
)

// runBoth reduces items through the sync and async form of the same pipeline
// and returns both outcomes rendered as strings.
func runBoth[U any](items []int, sync transducer.Transducer[[]U, int, U], async Transducer[[]U, int, U]) (string, string) {
	s, serr := transducer.Collect(sync, slices.Values(items))
	a, aerr := Collect(context.Background(), async, source.FromSlice(items))
	return fmt.Sprint(s, serr), fmt.Sprint(a, aerr)
}

func TestSyncAsyncEquivalence(t *testing.T) {
	even := func(n int) bool { return n%2 == 0 }
	inputs := [][]int{{}, {1}, {1, 2, 3, 4, 5, 6, 7}, {0, 0, 3}}

	cases := []struct {
		name string
		run  func(items []int) (string, string)
	}{
		{"mapping", func(items []int) (string, string) {
			f := func(n int) int { return n + 10 }
			return runBoth(items, transducer.Mapping[[]int](transducer.Lift(f)), Mapping[[]int](Lift(f)))
		}},
		{"filtering", func(items []int) (string, string) {
			return runBoth(items, transducer.Filtering[[]int](transducer.LiftPredicate(even)), Filtering[[]int](LiftPredicate(even)))
		}},
		{"enumerating", func(items []int) (string, string) {
			return runBoth(items, transducer.Enumerating[[]transducer.Indexed[int], int](3), Enumerating[[]transducer.Indexed[int], int](3))
		}},
		{"repeating", func(items []int) (string, string) {
			return runBoth(items, transducer.Must(transducer.Repeating[[]int, int](2)), Must(Repeating[[]int, int](2)))
		}},
		{"batching", func(items []int) (string, string) {
			return runBoth(items, transducer.Must(transducer.Batching[[][]int, int](3)), Must(Batching[[][]int, int](3)))
		}},
		{"take", func(items []int) (string, string) {
			return runBoth(items, transducer.Take[[]int, int](2), Take[[]int, int](2))
		}},
		{"take zero", func(items []int) (string, string) {
			return runBoth(items, transducer.Take[[]int, int](0), Take[[]int, int](0))
		}},
		{"drop", func(items []int) (string, string) {
			return runBoth(items, transducer.Drop[[]int, int](2), Drop[[]int, int](2))
		}},
		{"first true", func(items []int) (string, string) {
			return runBoth(items, transducer.FirstTrue[[]int](transducer.LiftPredicate(even)), FirstTrue[[]int](LiftPredicate(even)))
		}},
		{"first truthy", func(items []int) (string, string) {
			return runBoth(items, transducer.FirstTrue[[]int, int](nil), FirstTrue[[]int, int](nil))
		}},
		{"nth", func(items []int) (string, string) {
			return runBoth(items, transducer.Must(transducer.Nth[[]int](3, -1)), Must(Nth[[]int](3, -1)))
		}},
		{"expecting single", func(items []int) (string, string) {
			return runBoth(items, transducer.ExpectingSingle[[]int, int](), ExpectingSingle[[]int, int]())
		}},
		{"take last", func(items []int) (string, string) {
			return runBoth(items, transducer.TakeLast[[]int, int](2), TakeLast[[]int, int](2))
		}},
		{"drop last", func(items []int) (string, string) {
			return runBoth(items, transducer.DropLast[[]int, int](2), DropLast[[]int, int](2))
		}},
		{"composed", func(items []int) (string, string) {
			return runBoth(items,
				transducer.Compose(transducer.Drop[[]int, int](1), transducer.Take[[]int, int](3)),
				Compose(Drop[[]int, int](1), Take[[]int, int](3)))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, items := range inputs {
				s, a := tc.run(items)
				if s != a {
					t.Errorf("input %v: sync %q, async %q", items, s, a)
				}
			}
		})
	}
}
