package tasks

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/driftless-hq/driftless/pkg/template"
)

// Result is the outcome a task registers for later expressions. Registered
// under a name, its fields are addressable as name.stdout, name.rc and so on.
type Result struct {
	Changed bool
	Failed  bool
	Skipped bool
	RC      int
	Stdout  string
	Stderr  string
	Msg     string
	// Extra carries task-specific keys merged into the result map.
	Extra map[string]template.Value
}

// Value converts the result into the map form expressions see.
func (r Result) Value() template.Value {
	m := template.NewMap()
	m.Set("changed", template.Bool(r.Changed))
	m.Set("failed", template.Bool(r.Failed))
	m.Set("skipped", template.Bool(r.Skipped))
	m.Set("rc", template.Int(int64(r.RC)))
	m.Set("stdout", template.StringValue(r.Stdout))
	m.Set("stderr", template.StringValue(r.Stderr))
	m.Set("msg", template.StringValue(r.Msg))
	if len(r.Extra) > 0 {
		keys := make([]string, 0, len(r.Extra))
		for key := range r.Extra {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			m.Set(key, r.Extra[key])
		}
	}
	return template.MapValue(m)
}

// ContextBuilder assembles a template.Context from the pieces a task run
// accumulates. Scope precedence is fixed by the context itself; the builder
// only routes each piece to the right scope.
type ContextBuilder struct {
	facts      map[string]template.Value
	vars       map[string]template.Value
	registered map[string]template.Value
	locals     map[string]template.Value
	env        map[string]string
}

// NewContextBuilder returns an empty builder.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{
		facts:      make(map[string]template.Value),
		vars:       make(map[string]template.Value),
		registered: make(map[string]template.Value),
		locals:     make(map[string]template.Value),
		env:        make(map[string]string),
	}
}

// Facts merges collected facts into the facts scope.
func (b *ContextBuilder) Facts(facts map[string]template.Value) *ContextBuilder {
	for name, v := range facts {
		b.facts[name] = v
	}
	return b
}

// Vars merges user variables into the vars scope.
func (b *ContextBuilder) Vars(vars map[string]template.Value) *ContextBuilder {
	for name, v := range vars {
		b.vars[name] = v
	}
	return b
}

// Var sets a single user variable.
func (b *ContextBuilder) Var(name string, v template.Value) *ContextBuilder {
	b.vars[name] = v
	return b
}

// Register stores a task result under name for later expressions.
func (b *ContextBuilder) Register(name string, r Result) *ContextBuilder {
	b.registered[name] = r.Value()
	return b
}

// Local sets a per-call local, such as a loop variable.
func (b *ContextBuilder) Local(name string, v template.Value) *ContextBuilder {
	b.locals[name] = v
	return b
}

// Env merges environment variables into the env scope.
func (b *ContextBuilder) Env(env map[string]string) *ContextBuilder {
	for key, val := range env {
		b.env[key] = val
	}
	return b
}

// Build produces the context. The builder can keep accumulating and build
// again; each call returns an independent context.
func (b *ContextBuilder) Build() *template.Context {
	ctx := template.NewContext().
		SetFacts(b.facts).
		SetVars(b.vars).
		SetEnviron(b.env)
	for name, v := range b.registered {
		ctx.SetRegistered(name, v)
	}
	for name, v := range b.locals {
		ctx.SetLocal(name, v)
	}
	return ctx
}

// Gate decides whether a task runs based on its when clauses.
type Gate struct {
	eng *template.Engine
	log zerolog.Logger
}

// NewGate creates a gate over eng.
func NewGate(eng *template.Engine) *Gate {
	return &Gate{eng: eng, log: zerolog.Nop()}
}

// WithLogger attaches a logger for skip decisions.
func (g *Gate) WithLogger(log zerolog.Logger) *Gate {
	g.log = log
	return g
}

// ShouldRun evaluates the when clauses against ctx. All clauses must hold
// for the task to run; no clauses means run. A clause that fails to
// evaluate fails the task rather than skipping it, so the error is
// returned as-is.
func (g *Gate) ShouldRun(when []string, ctx *template.Context) (bool, error) {
	for _, clause := range when {
		ok, err := g.eng.EvaluateCondition(clause, ctx)
		if err != nil {
			return false, fmt.Errorf("when clause %q: %w", clause, err)
		}
		if !ok {
			g.log.Debug().Str("clause", clause).Msg("task skipped")
			return false, nil
		}
	}
	return true, nil
}

// RenderFields renders every value of fields against ctx, returning a new
// map. The first failing field aborts with its name wrapped around the
// engine error.
func RenderFields(eng *template.Engine, fields map[string]string, ctx *template.Context) (map[string]string, error) {
	rendered := make(map[string]string, len(fields))
	for name, src := range fields {
		out, err := eng.Render(src, ctx)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		rendered[name] = out
	}
	return rendered, nil
}
