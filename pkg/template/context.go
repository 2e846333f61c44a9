package template

// Scope names, in resolution order. Locals win over registered task outputs,
// which win over user variables, which win over facts, which win over the
// process environment.
const (
	ScopeLocals     = "locals"
	ScopeRegistered = "registered"
	ScopeVars       = "vars"
	ScopeFacts      = "facts"
	ScopeEnv        = "env"
)

// Context is the layered set of variable scopes consulted during evaluation.
// A Context is built by the caller before each render/evaluate call and is
// read-only from the engine's perspective; once populated it may be shared
// across concurrent calls.
type Context struct {
	locals     map[string]Value
	registered map[string]Value
	vars       map[string]Value
	facts      map[string]Value
	env        *Map
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{
		locals:     make(map[string]Value),
		registered: make(map[string]Value),
		vars:       make(map[string]Value),
		facts:      make(map[string]Value),
		env:        NewMap(),
	}
}

// SetLocal defines a per-call local (loop variable, override).
func (c *Context) SetLocal(name string, v Value) *Context {
	c.locals[name] = v
	return c
}

// SetRegistered stores a task-registered output under name, addressable by
// dotted path in later expressions (for example result.stdout).
func (c *Context) SetRegistered(name string, v Value) *Context {
	c.registered[name] = v
	return c
}

// SetVar defines a user variable.
func (c *Context) SetVar(name string, v Value) *Context {
	c.vars[name] = v
	return c
}

// SetVars defines user variables in bulk.
func (c *Context) SetVars(vars map[string]Value) *Context {
	for name, v := range vars {
		c.vars[name] = v
	}
	return c
}

// SetFact defines a collected fact.
func (c *Context) SetFact(name string, v Value) *Context {
	c.facts[name] = v
	return c
}

// SetFacts defines facts in bulk.
func (c *Context) SetFacts(facts map[string]Value) *Context {
	for name, v := range facts {
		c.facts[name] = v
	}
	return c
}

// SetEnviron exposes the given environment variables as the env map.
func (c *Context) SetEnviron(env map[string]string) *Context {
	for key, val := range env {
		c.env.Set(key, StringValue(val))
	}
	return c
}

// Resolve looks name up through the scope chain, highest precedence first.
// The env scope defines the single variable "env" holding the environment
// map.
func (c *Context) Resolve(name string) (Value, bool) {
	if v, ok := c.locals[name]; ok {
		return v, true
	}
	if v, ok := c.registered[name]; ok {
		return v, true
	}
	if v, ok := c.vars[name]; ok {
		return v, true
	}
	if v, ok := c.facts[name]; ok {
		return v, true
	}
	if name == ScopeEnv {
		return MapValue(c.env), true
	}
	return None, false
}
