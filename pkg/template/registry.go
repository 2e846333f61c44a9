package template

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// FilterFunc transforms an input value using optional arguments. Filters are
// pure: they must not read ambient state, so the same input always yields the
// same output.
type FilterFunc func(input Value, args []Value) (Value, error)

// FunctionFunc implements a template function. Functions receive a FuncContext
// because some of them (lookup, query) resolve against the render context or
// read external resources.
type FunctionFunc func(fc *FuncContext, args []Value) (Value, error)

// FuncContext is the environment handed to template functions at call time.
type FuncContext struct {
	// Context holds the variable scopes of the current render.
	Context *Context

	// Render renders a nested template source against Context. It is set by
	// the evaluator so functions such as lookup("template", ...) can reuse
	// the engine's own renderer.
	Render func(src string) (string, error)
}

// ArgSpec documents one argument of a filter or function. Arguments beyond
// MinArgs are optional; for variadic entries the last spec describes the
// repeated argument.
type ArgSpec struct {
	Name        string
	Description string
}

// FilterEntry describes a registered filter.
type FilterEntry struct {
	Name        string
	Description string
	Category    string
	MinArgs     int
	MaxArgs     int // -1 means variadic
	Args        []ArgSpec
	Fn          FilterFunc
}

// Signature renders the call shape for listings, with optional arguments in
// brackets, e.g. "truncate(length, [killwords], [end])".
func (e FilterEntry) Signature() string {
	return e.Name + formatArgs(e.Args, e.MinArgs, e.MaxArgs)
}

// FunctionEntry describes a registered function.
type FunctionEntry struct {
	Name        string
	Description string
	Category    string
	MinArgs     int
	MaxArgs     int // -1 means variadic
	Args        []ArgSpec
	Fn          FunctionFunc
}

// Signature renders the call shape for listings.
func (e FunctionEntry) Signature() string {
	return e.Name + formatArgs(e.Args, e.MinArgs, e.MaxArgs)
}

func formatArgs(args []ArgSpec, minArgs, maxArgs int) string {
	if len(args) == 0 {
		return "()"
	}
	parts := make([]string, 0, len(args))
	for i, a := range args {
		name := a.Name
		if i >= minArgs {
			name = "[" + name + "]"
		}
		parts = append(parts, name)
	}
	sig := "(" + strings.Join(parts, ", ")
	if maxArgs < 0 {
		sig += "..."
	}
	return sig + ")"
}

// Registry holds the filters and functions available to an engine. A Registry
// is safe for concurrent use; registration and lookup may interleave freely.
type Registry struct {
	mu        sync.RWMutex
	filters   map[string]*FilterEntry
	functions map[string]*FunctionEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		filters:   make(map[string]*FilterEntry),
		functions: make(map[string]*FunctionEntry),
	}
}

// NewBuiltinRegistry returns a registry pre-populated with the builtin
// filters and functions.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	registerBuiltins(r)
	return r
}

// RegisterFilter adds a filter. Registering a name that already exists is an
// error; builtins cannot be shadowed.
func (r *Registry) RegisterFilter(entry FilterEntry) error {
	if entry.Name == "" {
		return fmt.Errorf("filter name must not be empty")
	}
	if entry.Fn == nil {
		return fmt.Errorf("filter %q has no implementation", entry.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.filters[entry.Name]; ok {
		return fmt.Errorf("filter %q is already registered", entry.Name)
	}
	e := entry
	r.filters[entry.Name] = &e
	return nil
}

// RegisterFunction adds a function. Registering a name that already exists is
// an error.
func (r *Registry) RegisterFunction(entry FunctionEntry) error {
	if entry.Name == "" {
		return fmt.Errorf("function name must not be empty")
	}
	if entry.Fn == nil {
		return fmt.Errorf("function %q has no implementation", entry.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.functions[entry.Name]; ok {
		return fmt.Errorf("function %q is already registered", entry.Name)
	}
	e := entry
	r.functions[entry.Name] = &e
	return nil
}

// Filter returns the named filter, or false when it is not registered.
func (r *Registry) Filter(name string) (*FilterEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.filters[name]
	return e, ok
}

// Function returns the named function, or false when it is not registered.
func (r *Registry) Function(name string) (*FunctionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.functions[name]
	return e, ok
}

// Filters returns all registered filters sorted by name.
func (r *Registry) Filters() []FilterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FilterEntry, 0, len(r.filters))
	for _, e := range r.filters {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Functions returns all registered functions sorted by name.
func (r *Registry) Functions() []FunctionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FunctionEntry, 0, len(r.functions))
	for _, e := range r.functions {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// checkFilterArity validates the argument count for a filter call.
func checkFilterArity(e *FilterEntry, n, pos int) error {
	if n < e.MinArgs {
		return arityErrorf(pos, "filter %q requires at least %d argument(s), got %d", e.Name, e.MinArgs, n)
	}
	if e.MaxArgs >= 0 && n > e.MaxArgs {
		return arityErrorf(pos, "filter %q accepts at most %d argument(s), got %d", e.Name, e.MaxArgs, n)
	}
	return nil
}

// checkFunctionArity validates the argument count for a function call.
func checkFunctionArity(e *FunctionEntry, n, pos int) error {
	if n < e.MinArgs {
		return arityErrorf(pos, "function %q requires at least %d argument(s), got %d", e.Name, e.MinArgs, n)
	}
	if e.MaxArgs >= 0 && n > e.MaxArgs {
		return arityErrorf(pos, "function %q accepts at most %d argument(s), got %d", e.Name, e.MaxArgs, n)
	}
	return nil
}
