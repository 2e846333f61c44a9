package template

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// maxNestedRenders bounds renders triggered from inside an evaluation, such
// as lookup("template", path) loading another template.
const maxNestedRenders = 16

// DefaultRecursivePasses is the pass bound used by RenderRecursive callers
// that do not pick their own.
const DefaultRecursivePasses = 8

// Observer receives evaluation outcomes. The telemetry package implements it
// over Prometheus counters; the zero observer is a no-op.
type Observer interface {
	RenderCompleted(duration time.Duration, err error)
	ConditionEvaluated(duration time.Duration, err error)
	CacheLookup(hit bool)
}

// Engine renders templates and evaluates conditions against a Context. An
// Engine is safe for concurrent use; each call carries its own Context, so
// one Engine can serve many concurrent renders with different variables.
type Engine struct {
	reg      *Registry
	limits   Limits
	strict   bool
	log      zerolog.Logger
	observer Observer
	cache    sync.Map // source string -> *Template
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the builtin registry.
func WithRegistry(reg *Registry) Option {
	return func(e *Engine) { e.reg = reg }
}

// WithLimits overrides the evaluation resource limits. Zero fields keep
// their defaults.
func WithLimits(limits Limits) Option {
	return func(e *Engine) {
		if limits.MaxDepth > 0 {
			e.limits.MaxDepth = limits.MaxDepth
		}
		if limits.MaxNodes > 0 {
			e.limits.MaxNodes = limits.MaxNodes
		}
	}
}

// WithStrictVariables makes unresolved variables a name error instead of
// none.
func WithStrictVariables() Option {
	return func(e *Engine) { e.strict = true }
}

// WithLogger attaches a logger. The engine logs at debug level only.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithObserver attaches an evaluation observer.
func WithObserver(obs Observer) Option {
	return func(e *Engine) { e.observer = obs }
}

// New creates an Engine with the builtin registry and default limits.
func New(opts ...Option) *Engine {
	e := &Engine{
		reg:    NewBuiltinRegistry(),
		limits: DefaultLimits,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's registry, for registering additional filters
// and functions.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// RegisterFilter adds a custom filter to the engine's registry.
func (e *Engine) RegisterFilter(entry FilterEntry) error {
	return e.reg.RegisterFilter(entry)
}

// RegisterFunction adds a custom function to the engine's registry.
func (e *Engine) RegisterFunction(entry FunctionEntry) error {
	return e.reg.RegisterFunction(entry)
}

// Render renders a template source against ctx. Literal text passes through
// untouched; expressions are evaluated and formatted canonically.
func (e *Engine) Render(src string, ctx *Context) (string, error) {
	start := time.Now()
	out, err := e.renderNested(src, ctx, 0)
	if e.observer != nil {
		e.observer.RenderCompleted(time.Since(start), err)
	}
	if err != nil {
		e.log.Debug().Err(err).Str("template", src).Msg("render failed")
		return "", err
	}
	return out, nil
}

// RenderValue renders a template, returning the typed result when the source
// is a single bare expression. Everything else renders to a string value.
func (e *Engine) RenderValue(src string, ctx *Context) (Value, error) {
	t, err := e.template(src)
	if err != nil {
		return None, err
	}
	return t.renderValue(e.evaluator(ctx, 0))
}

// EvaluateCondition decides a when-style condition. Embedded {{ }} segments
// are rendered first; the result is then parsed as a single expression and
// reduced to its truthiness.
func (e *Engine) EvaluateCondition(cond string, ctx *Context) (bool, error) {
	start := time.Now()
	ok, err := e.evaluateCondition(cond, ctx)
	if e.observer != nil {
		e.observer.ConditionEvaluated(time.Since(start), err)
	}
	return ok, err
}

func (e *Engine) evaluateCondition(cond string, ctx *Context) (bool, error) {
	expr := strings.TrimSpace(cond)
	if expr == "" {
		return false, nil
	}
	if strings.Contains(expr, openDelim) {
		rendered, err := e.renderNested(expr, ctx, 0)
		if err != nil {
			return false, err
		}
		expr = strings.TrimSpace(rendered)
		if expr == "" {
			return false, nil
		}
	}
	n, err := parseExpressionSource(expr, 0)
	if err != nil {
		return false, withSource(err, expr)
	}
	v, err := e.evaluator(ctx, 0).eval(n, 0)
	if err != nil {
		return false, withSource(err, expr)
	}
	return v.Truth(), nil
}

// RenderRecursive re-renders until the output stops containing expression
// delimiters or maxPasses is reached. Values that themselves hold template
// text get expanded this way.
func (e *Engine) RenderRecursive(src string, ctx *Context, maxPasses int) (string, error) {
	if maxPasses <= 0 {
		maxPasses = DefaultRecursivePasses
	}
	out := src
	for pass := 0; pass < maxPasses; pass++ {
		if !strings.Contains(out, openDelim) {
			return out, nil
		}
		rendered, err := e.renderNested(out, ctx, 0)
		if err != nil {
			return "", err
		}
		if rendered == out {
			return out, nil
		}
		out = rendered
	}
	if strings.Contains(out, openDelim) {
		return "", limitErrorf(-1, "template still contains expressions after %d passes", maxPasses)
	}
	return out, nil
}

func (e *Engine) renderNested(src string, ctx *Context, depth int) (string, error) {
	if depth > maxNestedRenders {
		return "", limitErrorf(-1, "nested render depth exceeds %d", maxNestedRenders)
	}
	t, err := e.template(src)
	if err != nil {
		return "", err
	}
	return t.render(e.evaluator(ctx, depth))
}

// template returns the cached compiled form of src, parsing on first use.
// Parse failures are not cached; a broken source is rare and retrying is
// cheap next to evaluation.
func (e *Engine) template(src string) (*Template, error) {
	if cached, ok := e.cache.Load(src); ok {
		if e.observer != nil {
			e.observer.CacheLookup(true)
		}
		return cached.(*Template), nil
	}
	if e.observer != nil {
		e.observer.CacheLookup(false)
	}
	t, err := Parse(src)
	if err != nil {
		return nil, err
	}
	actual, _ := e.cache.LoadOrStore(src, t)
	return actual.(*Template), nil
}

func (e *Engine) evaluator(ctx *Context, depth int) *evaluator {
	if ctx == nil {
		ctx = NewContext()
	}
	ev := &evaluator{
		reg:    e.reg,
		ctx:    ctx,
		strict: e.strict,
		limits: e.limits,
	}
	ev.render = func(src string) (string, error) {
		return e.renderNested(src, ctx, depth+1)
	}
	return ev
}
