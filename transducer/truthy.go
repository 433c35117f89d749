package transducer

import "reflect"

// Truthy reports whether v counts as true when FirstTrue has no predicate.
// Nil, zero values and empty strings, slices, maps, arrays and channels are
// false.
func Truthy(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return !rv.IsNil()
	default:
		return !rv.IsZero()
	}
}
