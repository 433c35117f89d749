// Package window trims the tail of sliceable accumulators for the TakeLast
// and DropLast operators.
package window

import "reflect"

// Sliceable is the structural interface a custom accumulator implements to
// take part in windowing.
type Sliceable[A any] interface {
	Len() int
	Slice(lo, hi int) A
}

// Last keeps the trailing limit elements of acc. It returns false when acc
// cannot be sliced.
func Last[A any](acc A, limit int) (A, bool) {
	n, ok := length(acc)
	if !ok {
		return acc, false
	}
	switch {
	case limit <= 0:
		return slice(acc, n, n), true
	case limit >= n:
		return acc, true
	default:
		return slice(acc, n-limit, n), true
	}
}

// DropLast removes the trailing limit elements of acc. It returns false when
// acc cannot be sliced.
func DropLast[A any](acc A, limit int) (A, bool) {
	n, ok := length(acc)
	if !ok {
		return acc, false
	}
	switch {
	case limit <= 0:
		return acc, true
	case limit >= n:
		return slice(acc, 0, 0), true
	default:
		return slice(acc, 0, n-limit), true
	}
}

func length[A any](acc A) (int, bool) {
	if s, ok := any(acc).(Sliceable[A]); ok {
		return s.Len(), true
	}
	v := reflect.ValueOf(acc)
	switch v.Kind() {
	case reflect.Slice, reflect.String:
		return v.Len(), true
	default:
		return 0, false
	}
}

// slice assumes length already accepted acc.
func slice[A any](acc A, lo, hi int) A {
	if s, ok := any(acc).(Sliceable[A]); ok {
		return s.Slice(lo, hi)
	}
	v := reflect.ValueOf(acc)
	if v.Kind() == reflect.Slice {
		// Full slice expression so later appends never overwrite the
		// dropped tail of the original backing array.
		return v.Slice3(lo, hi, hi).Interface().(A)
	}
	return v.Slice(lo, hi).Interface().(A)
}
