package plan

import (
	"context"
	"fmt"
	"slices"

	"github.com/kbukum/transducekit/errors"
	"github.com/kbukum/transducekit/observe"
	"github.com/kbukum/transducekit/source"
	"github.com/kbukum/transducekit/transducer"
	"github.com/kbukum/transducekit/transducer/async"
)

// SyncTransducer is the shape every sync plan builds to.
type SyncTransducer = transducer.Transducer[[]any, any, any]

// AsyncTransducer is the shape every async plan builds to.
type AsyncTransducer = async.Transducer[[]any, any, any]

// Engine builds and runs plans against a Registry. It is safe for
// concurrent use; every run gets fresh reducer state.
type Engine struct {
	registry *Registry
	loader   Loader
	observe  []observe.Option
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithObserve instruments every run with the given options.
func WithObserve(opts ...observe.Option) EngineOption {
	return func(e *Engine) { e.observe = append(e.observe, opts...) }
}

// NewEngine creates an Engine. loader resolves plans by name and include
// steps; it may be nil when only definitions are run.
func NewEngine(registry *Registry, loader Loader, opts ...EngineOption) *Engine {
	e := &Engine{registry: registry, loader: loader}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plans lists the plans the loader knows.
func (e *Engine) Plans() ([]string, error) {
	if e.loader == nil {
		return []string{}, nil
	}
	return e.loader.List()
}

// Load resolves a plan by name.
func (e *Engine) Load(name string) (*Definition, error) {
	if e.loader == nil {
		return nil, errors.NotFound("plan", name)
	}
	return e.loader.Load(name)
}

// Build turns def into a sync transducer.
func (e *Engine) Build(def *Definition) (SyncTransducer, error) {
	steps, err := e.resolve(def)
	if err != nil {
		return nil, err
	}
	xfs := make([]SyncTransducer, 0, len(steps))
	for i, s := range steps {
		xf, err := e.syncStep(s)
		if err != nil {
			return nil, fmt.Errorf("plan %q step %d (%s): %w", def.Name, i, s.Op, err)
		}
		xfs = append(xfs, xf)
	}
	return transducer.Chain(xfs...), nil
}

// BuildAsync turns def into an async transducer. Registry functions run as
// async callbacks that ignore the context.
func (e *Engine) BuildAsync(def *Definition) (AsyncTransducer, error) {
	steps, err := e.resolve(def)
	if err != nil {
		return nil, err
	}
	xfs := make([]AsyncTransducer, 0, len(steps))
	for i, s := range steps {
		xf, err := e.asyncStep(s)
		if err != nil {
			return nil, fmt.Errorf("plan %q step %d (%s): %w", def.Name, i, s.Op, err)
		}
		xfs = append(xfs, xf)
	}
	return async.Chain(xfs...), nil
}

// Run loads the named plan and reduces items through it.
func (e *Engine) Run(ctx context.Context, name string, items []any) ([]any, error) {
	def, err := e.Load(name)
	if err != nil {
		return nil, err
	}
	return e.RunDefinition(ctx, def, items)
}

// RunDefinition reduces items through def synchronously. ctx parents the
// run span and is checked once before the run starts.
func (e *Engine) RunDefinition(ctx context.Context, def *Definition, items []any) ([]any, error) {
	xf, err := e.Build(def)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(e.observe) > 0 {
		opts := append(slices.Clone(e.observe), observe.WithParent(ctx))
		xf = transducer.Compose(observe.Instrument[[]any, any](def.Name, opts...), xf)
	}
	return transducer.Transduce(xf, slices.Values(items), syncCollector(def.Collector))
}

// RunAsync loads the named plan and reduces src through it. src is closed
// before returning.
func (e *Engine) RunAsync(ctx context.Context, name string, src source.Iterator[any]) ([]any, error) {
	def, err := e.Load(name)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return e.RunDefinitionAsync(ctx, def, src)
}

// RunDefinitionAsync reduces src through def, honouring ctx cancellation
// between items.
func (e *Engine) RunDefinitionAsync(ctx context.Context, def *Definition, src source.Iterator[any]) ([]any, error) {
	xf, err := e.BuildAsync(def)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	if len(e.observe) > 0 {
		xf = async.Compose(observe.InstrumentAsync[[]any, any](def.Name, e.observe...), xf)
	}
	return async.Transduce(ctx, xf, src, asyncCollector(def.Collector))
}

// resolve flattens include steps. Includes may repeat across branches but
// not recurse.
func (e *Engine) resolve(def *Definition) ([]Step, error) {
	return e.flatten(def, make(map[string]bool))
}

func (e *Engine) flatten(def *Definition, stack map[string]bool) ([]Step, error) {
	if stack[def.Name] {
		return nil, errors.InvalidConfig(OpInclude, fmt.Sprintf("circular include of plan %q", def.Name))
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	stack[def.Name] = true
	defer delete(stack, def.Name)

	var out []Step
	for _, s := range def.Steps {
		if s.Op != OpInclude {
			out = append(out, s)
			continue
		}
		sub, err := e.Load(s.Plan)
		if err != nil {
			return nil, fmt.Errorf("plan %q: including %q: %w", def.Name, s.Plan, err)
		}
		steps, err := e.flatten(sub, stack)
		if err != nil {
			return nil, err
		}
		out = append(out, steps...)
	}
	return out, nil
}

func (e *Engine) transform(name string) (Transform, error) {
	if fn, ok := e.registry.Transform(name); ok {
		return fn, nil
	}
	return nil, errors.NotFound("transform", name)
}

// predicate returns nil for an empty name, which first_true reads as
// truthiness.
func (e *Engine) predicate(name string) (Predicate, error) {
	if name == "" {
		return nil, nil
	}
	if fn, ok := e.registry.Predicate(name); ok {
		return fn, nil
	}
	return nil, errors.NotFound("predicate", name)
}

func box[T any](v T) (any, error) { return v, nil }

func (e *Engine) syncStep(s Step) (SyncTransducer, error) {
	switch s.Op {
	case OpMap:
		fn, err := e.transform(s.Fn)
		if err != nil {
			return nil, err
		}
		return transducer.Mapping[[]any, any, any](fn), nil
	case OpFilter:
		pred, err := e.predicate(s.Pred)
		if err != nil {
			return nil, err
		}
		return transducer.Filtering[[]any, any](pred), nil
	case OpFirstTrue:
		pred, err := e.predicate(s.Pred)
		if err != nil {
			return nil, err
		}
		return transducer.FirstTrue[[]any, any](pred), nil
	case OpEnumerate:
		return transducer.Compose(
			transducer.Enumerating[[]any, any](s.Start),
			transducer.Mapping[[]any](box[transducer.Indexed[any]]),
		), nil
	case OpRepeat:
		return transducer.Repeating[[]any, any](s.Count)
	case OpBatch:
		batch, err := transducer.Batching[[]any, any](s.Size)
		if err != nil {
			return nil, err
		}
		return transducer.Compose(batch, transducer.Mapping[[]any](box[[]any])), nil
	case OpTake:
		return transducer.Take[[]any, any](s.Limit), nil
	case OpDrop:
		return transducer.Drop[[]any, any](s.Limit), nil
	case OpTakeLast:
		return transducer.TakeLast[[]any, any](s.Limit, syncWindow(s)...), nil
	case OpDropLast:
		return transducer.DropLast[[]any, any](s.Limit, syncWindow(s)...), nil
	case OpNth:
		return transducer.Nth[[]any, any](s.N, s.Default)
	case OpSingle:
		return transducer.ExpectingSingle[[]any, any](), nil
	}
	return nil, errors.InvalidConfig(s.Op, "unknown operator")
}

func (e *Engine) asyncStep(s Step) (AsyncTransducer, error) {
	switch s.Op {
	case OpMap:
		fn, err := e.transform(s.Fn)
		if err != nil {
			return nil, err
		}
		return async.Mapping[[]any](async.FromSync[any, any](fn)), nil
	case OpFilter:
		pred, err := e.predicate(s.Pred)
		if err != nil {
			return nil, err
		}
		return async.Filtering[[]any](async.FromSync[any, bool](pred)), nil
	case OpFirstTrue:
		pred, err := e.predicate(s.Pred)
		if err != nil {
			return nil, err
		}
		if pred == nil {
			return async.FirstTrue[[]any, any](nil), nil
		}
		return async.FirstTrue[[]any](async.FromSync[any, bool](pred)), nil
	case OpEnumerate:
		return async.Compose(
			async.Enumerating[[]any, any](s.Start),
			async.Mapping[[]any](async.FromSync(box[transducer.Indexed[any]])),
		), nil
	case OpRepeat:
		return async.Repeating[[]any, any](s.Count)
	case OpBatch:
		batch, err := async.Batching[[]any, any](s.Size)
		if err != nil {
			return nil, err
		}
		return async.Compose(batch, async.Mapping[[]any](async.FromSync(box[[]any]))), nil
	case OpTake:
		return async.Take[[]any, any](s.Limit), nil
	case OpDrop:
		return async.Drop[[]any, any](s.Limit), nil
	case OpTakeLast:
		return async.TakeLast[[]any, any](s.Limit, asyncWindow(s)...), nil
	case OpDropLast:
		return async.DropLast[[]any, any](s.Limit, asyncWindow(s)...), nil
	case OpNth:
		return async.Nth[[]any, any](s.N, s.Default)
	case OpSingle:
		return async.ExpectingSingle[[]any, any](), nil
	}
	return nil, errors.InvalidConfig(s.Op, "unknown operator")
}

func syncWindow(s Step) []transducer.WindowOption {
	if s.Passthrough {
		return []transducer.WindowOption{transducer.WithPassthrough()}
	}
	return nil
}

func asyncWindow(s Step) []async.WindowOption {
	if s.Passthrough {
		return []async.WindowOption{async.WithPassthrough()}
	}
	return nil
}

func syncCollector(name string) transducer.Reducer[[]any, any] {
	if name == CollectConj {
		return transducer.Conjoining[any]()
	}
	return transducer.Appending[any]()
}

func asyncCollector(name string) async.Reducer[[]any, any] {
	if name == CollectConj {
		return async.Conjoining[any]()
	}
	return async.Appending[any]()
}
