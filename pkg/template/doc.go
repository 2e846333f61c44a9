// Package template implements the Driftless template and expression engine.
//
// # Overview
//
// Task arguments, file templates, and when-conditions in Driftless all share
// one expression language. The engine renders template strings containing
// {{ expression }} segments and evaluates standalone boolean conditions
// against a layered variable Context:
//
//	eng := template.New()
//	ctx := template.NewContext().SetVar("name", template.StringValue("web01"))
//	out, err := eng.Render("host: {{ name | upper }}", ctx)
//
// # Core Types
//
//   - Value: the typed union flowing through evaluation (none, bool, int,
//     float, string, list, map)
//   - Context: five variable scopes resolved in precedence order (locals,
//     registered results, vars, facts, environment)
//   - Registry: named filters and functions, builtin plus caller-registered
//   - Engine: the render/evaluate entry points with an AST cache and
//     resource limits
//
// # Expression Language
//
// Expressions support literals, variable references with attribute and index
// access (a.b, a[0], a["key"]), list literals, boolean operators (and, or,
// not), comparisons, membership (in, not in), definedness tests (is defined,
// is not defined, is none), filter pipes (value | filter(args)), and function
// calls (lookup("env", "HOME")). There are no arithmetic operators and no
// statement blocks; the language is for wiring values, not programming.
//
// # Error Handling
//
// Every entry point returns *Error with a Kind classifying the failure
// (syntax, name, type, arity, mandatory, resource_limit, evaluation). In the
// default lenient mode unresolved variables evaluate to none; strict mode
// turns them into name errors. The mandatory filter forces a hard failure
// for values that must be present.
//
// # Concurrency
//
// An Engine is safe for concurrent use. Compiled templates are cached and
// shared; each render call builds its own evaluator around the caller's
// Context, so goroutines rendering with different variables never contend on
// anything but the cache.
package template
