package plan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	apperrors "github.com/kbukum/transducekit/errors"
	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/observe"
	"github.com/kbukum/transducekit/source"
	"github.com/kbukum/transducekit/transducer"
)

const topEvens = `
name: top-evens
description: squares of the first even numbers
steps:
  - op: filter
    pred: even
  - op: map
    fn: square
  - op: take
    limit: 3
`

func ints(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func codeOf(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr.Code
}

func TestParse_Success(t *testing.T) {
	def, err := Parse([]byte(topEvens))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "top-evens" || len(def.Steps) != 3 {
		t.Fatalf("got %+v", def)
	}
	if def.Steps[2].Op != OpTake || def.Steps[2].Limit != 3 {
		t.Errorf("got step %+v, want take limit 3", def.Steps[2])
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "name: x\nsteps:\n  - op: batch\n    sizee: 2\n"},
		{"unknown op", "name: x\nsteps:\n  - op: explode\n"},
		{"no steps", "name: x\nsteps: []\n"},
		{"map without fn", "name: x\nsteps:\n  - op: map\n"},
		{"filter without pred", "name: x\nsteps:\n  - op: filter\n"},
		{"self include", "name: x\nsteps:\n  - op: include\n    plan: x\n"},
		{"bad collector", "name: x\ncollector: set\nsteps:\n  - op: take\n"},
		{"not yaml", "name: [x\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := codeOf(t, err); got != apperrors.ErrCodeInvalidInput {
				t.Errorf("got %s, want INVALID_INPUT", got)
			}
		})
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	// name is taken from the file when omitted
	body := strings.Replace(topEvens, "name: top-evens\n", "", 1)
	if err := os.WriteFile(filepath.Join(dir, "top-evens.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "shared"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := "name: evens\nsteps:\n  - op: filter\n    pred: even\n"
	if err := os.WriteFile(filepath.Join(dir, "shared", "evens.yml"), []byte(nested), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewFileLoader(filepath.Join(dir, "missing"), dir)

	def, err := loader.Load("top-evens")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "top-evens" {
		t.Errorf("got name %q, want top-evens", def.Name)
	}
	if _, err := loader.Load("evens"); err != nil {
		t.Errorf("nested plan: %v", err)
	}

	names, err := loader.List()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"evens", "top-evens"}) {
		t.Errorf("got %v, want [evens top-evens]", names)
	}

	if _, err := loader.Load("nonexistent"); codeOf(t, err) != apperrors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
	if _, err := loader.Load("../top-evens"); codeOf(t, err) != apperrors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for a path, got %v", err)
	}
}

func TestEngine_Run(t *testing.T) {
	def, err := Parse([]byte(topEvens))
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(Builtins(), Static(def))

	got, err := e.Run(context.Background(), "top-evens", ints(10))
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(got) != "[4 16 36]" {
		t.Errorf("got %v, want [4 16 36]", got)
	}
}

func TestEngine_Operators(t *testing.T) {
	tests := []struct {
		name  string
		steps []Step
		items []any
		want  string
	}{
		{"enumerate", []Step{{Op: OpEnumerate, Start: 1}}, []any{"a", "b"}, "[{1 a} {2 b}]"},
		{"batch", []Step{{Op: OpBatch, Size: 2}}, ints(3), "[[1 2] [3]]"},
		{"repeat", []Step{{Op: OpRepeat, Count: 2}}, ints(2), "[1 1 2 2]"},
		{"drop", []Step{{Op: OpDrop, Limit: 2}}, ints(4), "[3 4]"},
		{"take_last", []Step{{Op: OpTakeLast, Limit: 2}}, ints(4), "[3 4]"},
		{"drop_last", []Step{{Op: OpDropLast, Limit: 1}}, ints(3), "[1 2]"},
		{"first_true truthy", []Step{{Op: OpFirstTrue}}, []any{0, "", 7, 8}, "[7]"},
		{"first_true pred", []Step{{Op: OpFirstTrue, Pred: "negative"}}, []any{1, -2, -3}, "[-2]"},
		{"nth", []Step{{Op: OpNth, N: 2}}, ints(3), "[2]"},
		{"nth default", []Step{{Op: OpNth, N: 5, Default: "none"}}, ints(2), "[none]"},
		{"single", []Step{{Op: OpSingle}}, []any{"only"}, "[only]"},
		{"to_string upper", []Step{{Op: OpMap, Fn: "to_string"}, {Op: OpMap, Fn: "upper"}}, []any{"a", true}, "[A TRUE]"},
	}
	e := NewEngine(Builtins(), nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := &Definition{Name: tc.name, Steps: tc.steps}

			got, err := e.RunDefinition(context.Background(), def, tc.items)
			if err != nil {
				t.Fatalf("sync: %v", err)
			}
			if fmt.Sprint(got) != tc.want {
				t.Errorf("sync: got %v, want %s", got, tc.want)
			}

			got, err = e.RunDefinitionAsync(context.Background(), def, source.FromSlice(tc.items))
			if err != nil {
				t.Fatalf("async: %v", err)
			}
			if fmt.Sprint(got) != tc.want {
				t.Errorf("async: got %v, want %s", got, tc.want)
			}
		})
	}
}

func TestEngine_Conj(t *testing.T) {
	def := &Definition{Name: "c", Collector: CollectConj, Steps: []Step{{Op: OpMap, Fn: "increment"}}}
	got, err := NewEngine(Builtins(), nil).RunDefinition(context.Background(), def, ints(3))
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(got) != "[2 3 4]" {
		t.Errorf("got %v, want [2 3 4]", got)
	}
}

func TestEngine_Include(t *testing.T) {
	evens := &Definition{Name: "evens", Steps: []Step{{Op: OpFilter, Pred: "even"}}}
	top := &Definition{Name: "top", Steps: []Step{{Op: OpInclude, Plan: "evens"}, {Op: OpTake, Limit: 2}}}
	e := NewEngine(Builtins(), Static(evens, top))

	got, err := e.Run(context.Background(), "top", ints(10))
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(got) != "[2 4]" {
		t.Errorf("got %v, want [2 4]", got)
	}

	names, _ := e.Plans()
	if !slices.Equal(names, []string{"evens", "top"}) {
		t.Errorf("got %v", names)
	}
}

func TestEngine_BuildErrors(t *testing.T) {
	a := &Definition{Name: "a", Steps: []Step{{Op: OpInclude, Plan: "b"}}}
	b := &Definition{Name: "b", Steps: []Step{{Op: OpInclude, Plan: "a"}}}
	e := NewEngine(Builtins(), Static(a, b))

	tests := []struct {
		name string
		def  *Definition
		code apperrors.ErrorCode
	}{
		{"circular include", a, apperrors.ErrCodeInvalidConfig},
		{"missing include", &Definition{Name: "m", Steps: []Step{{Op: OpInclude, Plan: "gone"}}}, apperrors.ErrCodeNotFound},
		{"unknown transform", &Definition{Name: "u", Steps: []Step{{Op: OpMap, Fn: "nope"}}}, apperrors.ErrCodeNotFound},
		{"unknown predicate", &Definition{Name: "u", Steps: []Step{{Op: OpFirstTrue, Pred: "nope"}}}, apperrors.ErrCodeNotFound},
		{"batch size", &Definition{Name: "s", Steps: []Step{{Op: OpBatch}}}, apperrors.ErrCodeInvalidConfig},
		{"negative repeat", &Definition{Name: "r", Steps: []Step{{Op: OpRepeat, Count: -1}}}, apperrors.ErrCodeInvalidConfig},
		{"nth zero", &Definition{Name: "n", Steps: []Step{{Op: OpNth}}}, apperrors.ErrCodeInvalidConfig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.Build(tc.def); codeOf(t, err) != tc.code {
				t.Errorf("sync: got %v, want %s", err, tc.code)
			}
			if _, err := e.BuildAsync(tc.def); codeOf(t, err) != tc.code {
				t.Errorf("async: got %v, want %s", err, tc.code)
			}
		})
	}
}

func TestEngine_RunErrors(t *testing.T) {
	e := NewEngine(Builtins(), nil)

	single := &Definition{Name: "s", Steps: []Step{{Op: OpSingle}}}
	if _, err := e.RunDefinition(context.Background(), single, ints(2)); !errors.Is(err, transducer.ErrTooManyItems) {
		t.Errorf("got %v, want ErrTooManyItems", err)
	}

	square := &Definition{Name: "sq", Steps: []Step{{Op: OpMap, Fn: "square"}}}
	if _, err := e.RunDefinition(context.Background(), square, []any{"x"}); codeOf(t, err) != apperrors.ErrCodeInvalidInput {
		t.Errorf("got %v, want INVALID_INPUT", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.RunDefinitionAsync(ctx, square, source.FromSlice(ints(3))); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if _, err := e.Run(context.Background(), "anything", nil); codeOf(t, err) != apperrors.ErrCodeNotFound {
		t.Errorf("got %v, want NOT_FOUND without a loader", err)
	}
}

func TestEngine_WithObserve(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: "json"}, "test", &buf)
	def, _ := Parse([]byte(topEvens))
	e := NewEngine(Builtins(), Static(def), WithObserve(observe.WithLogger(log)))

	if _, err := e.RunAsync(context.Background(), "top-evens", source.FromSlice(ints(10))); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"pipeline":"top-evens"`) || !strings.Contains(out, "transduction finished") {
		t.Errorf("unexpected log output %q", out)
	}
}

func TestBuiltins(t *testing.T) {
	r := Builtins()

	double, _ := r.Transform("double")
	if got, _ := double(int64(21)); got != float64(42) {
		t.Errorf("double: got %v", got)
	}
	length, _ := r.Transform("length")
	if got, _ := length([]any{1, 2}); got != 2 {
		t.Errorf("length: got %v", got)
	}
	if _, err := length(3); err == nil {
		t.Error("length of a number should fail")
	}

	even, _ := r.Predicate("even")
	if ok, _ := even(4.0); !ok {
		t.Error("4.0 should be even")
	}
	if _, err := even(3.5); err == nil {
		t.Error("3.5 should not be accepted as an integer")
	}

	if !slices.Contains(r.Transforms(), "square") || !slices.Contains(r.Predicates(), "truthy") {
		t.Errorf("missing builtins: %v %v", r.Transforms(), r.Predicates())
	}
}
