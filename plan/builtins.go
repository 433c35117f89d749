package plan

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/kbukum/transducekit/errors"
	"github.com/kbukum/transducekit/transducer"
)

// Builtins returns a Registry preloaded with the standard functions.
//
// Transforms: identity, double, square, negate, increment, to_string,
// upper, lower, length. Predicates: truthy, even, odd, positive, negative,
// not_nil. Numeric functions accept any Go number or json.Number and return
// float64.
func Builtins() *Registry {
	r := NewRegistry()

	r.RegisterTransform("identity", func(v any) (any, error) { return v, nil })
	r.RegisterTransform("double", numeric("double", func(f float64) float64 { return f * 2 }))
	r.RegisterTransform("square", numeric("square", func(f float64) float64 { return f * f }))
	r.RegisterTransform("negate", numeric("negate", func(f float64) float64 { return -f }))
	r.RegisterTransform("increment", numeric("increment", func(f float64) float64 { return f + 1 }))
	r.RegisterTransform("to_string", func(v any) (any, error) { return fmt.Sprint(v), nil })
	r.RegisterTransform("upper", text("upper", strings.ToUpper))
	r.RegisterTransform("lower", text("lower", strings.ToLower))
	r.RegisterTransform("length", length)

	r.RegisterPredicate("truthy", func(v any) (bool, error) { return transducer.Truthy(v), nil })
	r.RegisterPredicate("even", whole("even", func(n int64) bool { return n%2 == 0 }))
	r.RegisterPredicate("odd", whole("odd", func(n int64) bool { return n%2 != 0 }))
	r.RegisterPredicate("positive", compare("positive", func(f float64) bool { return f > 0 }))
	r.RegisterPredicate("negative", compare("negative", func(f float64) bool { return f < 0 }))
	r.RegisterPredicate("not_nil", func(v any) (bool, error) { return v != nil, nil })

	return r
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func typeError(fn string, want string, v any) error {
	return errors.InvalidInput("item", fmt.Sprintf("%s expects %s, got %T", fn, want, v))
}

func numeric(name string, fn func(float64) float64) Transform {
	return func(v any) (any, error) {
		f, ok := toFloat(v)
		if !ok {
			return nil, typeError(name, "a number", v)
		}
		return fn(f), nil
	}
}

func text(name string, fn func(string) string) Transform {
	return func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, typeError(name, "a string", v)
		}
		return fn(s), nil
	}
}

func length(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return len(x), nil
	case []any:
		return len(x), nil
	case map[string]any:
		return len(x), nil
	}
	return nil, typeError("length", "a string, array or object", v)
}

func whole(name string, fn func(int64) bool) Predicate {
	return func(v any) (bool, error) {
		f, ok := toFloat(v)
		if !ok || f != math.Trunc(f) {
			return false, typeError(name, "an integer", v)
		}
		return fn(int64(f)), nil
	}
}

func compare(name string, fn func(float64) bool) Predicate {
	return func(v any) (bool, error) {
		f, ok := toFloat(v)
		if !ok {
			return false, typeError(name, "a number", v)
		}
		return fn(f), nil
	}
}
