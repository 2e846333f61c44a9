package template

import (
	"errors"
	"strings"
)

// Limits bounds the work a single evaluation may perform. Zero values fall
// back to the engine defaults.
type Limits struct {
	// MaxDepth caps AST nesting during evaluation.
	MaxDepth int
	// MaxNodes caps the total number of AST nodes visited per expression.
	MaxNodes int
}

// DefaultLimits are applied when the caller does not override them.
var DefaultLimits = Limits{
	MaxDepth: 64,
	MaxNodes: 10000,
}

// evaluator walks an expression AST against a context. One evaluator is built
// per render call; it is not shared between goroutines.
type evaluator struct {
	reg    *Registry
	ctx    *Context
	strict bool
	limits Limits
	nodes  int

	// render is threaded through to FuncContext for functions that expand
	// nested templates.
	render func(src string) (string, error)
}

func (ev *evaluator) eval(n node, depth int) (Value, error) {
	if depth > ev.limits.MaxDepth {
		return None, limitErrorf(n.pos(), "expression nesting exceeds %d levels", ev.limits.MaxDepth)
	}
	ev.nodes++
	if ev.nodes > ev.limits.MaxNodes {
		return None, limitErrorf(n.pos(), "expression exceeds %d nodes", ev.limits.MaxNodes)
	}

	switch n := n.(type) {
	case *literalNode:
		return n.val, nil

	case *varNode:
		v, ok := ev.ctx.Resolve(n.name)
		if !ok {
			if ev.strict {
				return None, nameErrorf(n.at, "undefined variable %q", n.name)
			}
			return None, nil
		}
		return v, nil

	case *listNode:
		items := make([]Value, 0, len(n.items))
		for _, item := range n.items {
			v, err := ev.eval(item, depth+1)
			if err != nil {
				return None, err
			}
			items = append(items, v)
		}
		return List(items...), nil

	case *getAttrNode:
		base, err := ev.eval(n.base, depth+1)
		if err != nil {
			return None, err
		}
		return ev.attr(base, n.name, n.at)

	case *getIndexNode:
		base, err := ev.eval(n.base, depth+1)
		if err != nil {
			return None, err
		}
		index, err := ev.eval(n.index, depth+1)
		if err != nil {
			return None, err
		}
		return ev.index(base, index, n.at)

	case *unaryNode:
		operand, err := ev.eval(n.operand, depth+1)
		if err != nil {
			return None, err
		}
		return Bool(!operand.Truth()), nil

	case *binaryNode:
		return ev.binary(n, depth)

	case *testNode:
		return ev.test(n, depth)

	case *filterNode:
		input, err := ev.eval(n.input, depth+1)
		if err != nil {
			return None, err
		}
		args, err := ev.evalArgs(n.args, depth)
		if err != nil {
			return None, err
		}
		return ev.applyFilter(n.name, input, args, n.at)

	case *callNode:
		entry, ok := ev.reg.Function(n.name)
		if !ok {
			return None, nameErrorf(n.at, "unknown function %q", n.name)
		}
		args, err := ev.evalArgs(n.args, depth)
		if err != nil {
			return None, err
		}
		if err := checkFunctionArity(entry, len(args), n.at); err != nil {
			return None, err
		}
		fc := &FuncContext{Context: ev.ctx, Render: ev.render}
		out, err := entry.Fn(fc, args)
		if err != nil {
			return None, positioned(err, n.at)
		}
		return out, nil
	}
	return None, evalErrorf(n.pos(), "unhandled expression node")
}

func (ev *evaluator) evalArgs(nodes []node, depth int) ([]Value, error) {
	args := make([]Value, 0, len(nodes))
	for _, arg := range nodes {
		v, err := ev.eval(arg, depth+1)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (ev *evaluator) applyFilter(name string, input Value, args []Value, pos int) (Value, error) {
	entry, ok := ev.reg.Filter(name)
	if !ok {
		return None, nameErrorf(pos, "unknown filter %q", name)
	}
	if err := checkFilterArity(entry, len(args), pos); err != nil {
		return None, err
	}
	out, err := entry.Fn(input, args)
	if err != nil {
		return None, positioned(err, pos)
	}
	return out, nil
}

func (ev *evaluator) binary(n *binaryNode, depth int) (Value, error) {
	// and/or short-circuit on the left operand's truthiness.
	switch n.op {
	case "and":
		left, err := ev.eval(n.left, depth+1)
		if err != nil {
			return None, err
		}
		if !left.Truth() {
			return Bool(false), nil
		}
		right, err := ev.eval(n.right, depth+1)
		if err != nil {
			return None, err
		}
		return Bool(right.Truth()), nil
	case "or":
		left, err := ev.eval(n.left, depth+1)
		if err != nil {
			return None, err
		}
		if left.Truth() {
			return Bool(true), nil
		}
		right, err := ev.eval(n.right, depth+1)
		if err != nil {
			return None, err
		}
		return Bool(right.Truth()), nil
	}

	left, err := ev.eval(n.left, depth+1)
	if err != nil {
		return None, err
	}
	right, err := ev.eval(n.right, depth+1)
	if err != nil {
		return None, err
	}

	switch n.op {
	case "==":
		return Bool(left.Equal(right)), nil
	case "!=":
		return Bool(!left.Equal(right)), nil
	case "<", "<=", ">", ">=":
		cmp, err := left.Compare(right)
		if err != nil {
			return None, positioned(err, n.at)
		}
		switch n.op {
		case "<":
			return Bool(cmp < 0), nil
		case "<=":
			return Bool(cmp <= 0), nil
		case ">":
			return Bool(cmp > 0), nil
		default:
			return Bool(cmp >= 0), nil
		}
	case "in":
		ok, err := contains(right, left, n.at)
		return Bool(ok), err
	case "not in":
		ok, err := contains(right, left, n.at)
		return Bool(!ok), err
	}
	return None, evalErrorf(n.at, "unknown operator %q", n.op)
}

// contains implements the "in" operator: substring for strings, element for
// lists, key for maps.
func contains(container, item Value, pos int) (bool, error) {
	switch container.Kind() {
	case KindString:
		needle, ok := item.AsString()
		if !ok {
			return false, typeErrorf(pos, "\"in\" on a string requires a string operand, got %s", item.Kind())
		}
		return strings.Contains(container.s, needle), nil
	case KindList:
		for _, v := range container.list {
			if v.Equal(item) {
				return true, nil
			}
		}
		return false, nil
	case KindMap:
		key, ok := item.AsString()
		if !ok {
			return false, typeErrorf(pos, "\"in\" on a map requires a string key, got %s", item.Kind())
		}
		_, ok = container.m.Get(key)
		return ok, nil
	}
	return false, typeErrorf(pos, "\"in\" requires a string, list, or map on the right, got %s", container.Kind())
}

// test evaluates "is defined" style tests. The operand is resolved without
// raising name errors so that "x is defined" works in strict mode.
func (ev *evaluator) test(n *testNode, depth int) (Value, error) {
	var result bool
	switch n.test {
	case "defined", "undefined":
		defined, err := ev.isDefined(n.operand, depth)
		if err != nil {
			return None, err
		}
		result = defined
		if n.test == "undefined" {
			result = !result
		}
	case "none":
		v, err := ev.eval(n.operand, depth+1)
		if err != nil {
			return None, err
		}
		result = v.IsNone()
	default:
		return None, evalErrorf(n.at, "unknown test %q", n.test)
	}
	if n.negated {
		result = !result
	}
	return Bool(result), nil
}

// isDefined reports whether a variable or access path resolves to a value.
// Non-path operands are always defined once they evaluate without error.
func (ev *evaluator) isDefined(n node, depth int) (bool, error) {
	switch n := n.(type) {
	case *varNode:
		_, ok := ev.ctx.Resolve(n.name)
		return ok, nil
	case *getAttrNode:
		defined, err := ev.isDefined(n.base, depth+1)
		if err != nil || !defined {
			return false, err
		}
		base, err := ev.eval(n.base, depth+1)
		if err != nil {
			return false, err
		}
		if base.Kind() != KindMap {
			return false, nil
		}
		_, ok := base.m.Get(n.name)
		return ok, nil
	case *getIndexNode:
		defined, err := ev.isDefined(n.base, depth+1)
		if err != nil || !defined {
			return false, err
		}
		base, err := ev.eval(n.base, depth+1)
		if err != nil {
			return false, err
		}
		index, err := ev.eval(n.index, depth+1)
		if err != nil {
			return false, err
		}
		switch base.Kind() {
		case KindMap:
			key, ok := index.AsString()
			if !ok {
				return false, nil
			}
			_, ok = base.m.Get(key)
			return ok, nil
		case KindList:
			i, ok := index.AsInt()
			if !ok {
				return false, nil
			}
			i = normalizeIndex(i, len(base.list))
			return i >= 0 && int(i) < len(base.list), nil
		}
		return false, nil
	default:
		_, err := ev.eval(n, depth+1)
		if err != nil {
			return false, err
		}
		return true, nil
	}
}

func (ev *evaluator) attr(base Value, name string, pos int) (Value, error) {
	switch base.Kind() {
	case KindMap:
		if v, ok := base.m.Get(name); ok {
			return v, nil
		}
		if ev.strict {
			return None, nameErrorf(pos, "map has no key %q", name)
		}
		return None, nil
	case KindNone:
		if ev.strict {
			return None, nameErrorf(pos, "cannot access %q on none", name)
		}
		return None, nil
	case KindBool, KindInt, KindFloat, KindString:
		// Scalar bases resolve to none, like any other failed lookup.
		if ev.strict {
			return None, typeErrorf(pos, "cannot access attribute %q on %s", name, base.Kind())
		}
		return None, nil
	}
	return None, typeErrorf(pos, "cannot access attribute %q on %s", name, base.Kind())
}

func (ev *evaluator) index(base, index Value, pos int) (Value, error) {
	switch base.Kind() {
	case KindMap:
		key, ok := index.AsString()
		if !ok {
			return None, typeErrorf(pos, "map index must be a string, got %s", index.Kind())
		}
		if v, ok := base.m.Get(key); ok {
			return v, nil
		}
		if ev.strict {
			return None, nameErrorf(pos, "map has no key %q", key)
		}
		return None, nil
	case KindList:
		i, ok := index.AsInt()
		if !ok {
			return None, typeErrorf(pos, "list index must be an integer, got %s", index.Kind())
		}
		items := base.list
		i = normalizeIndex(i, len(items))
		if i < 0 || int(i) >= len(items) {
			if ev.strict {
				return None, nameErrorf(pos, "list index %s out of range", index.String())
			}
			return None, nil
		}
		return items[i], nil
	case KindString:
		i, ok := index.AsInt()
		if !ok {
			return None, typeErrorf(pos, "string index must be an integer, got %s", index.Kind())
		}
		runes := []rune(base.s)
		i = normalizeIndex(i, len(runes))
		if i < 0 || int(i) >= len(runes) {
			if ev.strict {
				return None, nameErrorf(pos, "string index %s out of range", index.String())
			}
			return None, nil
		}
		return StringValue(string(runes[i])), nil
	case KindNone:
		if ev.strict {
			return None, nameErrorf(pos, "cannot index none")
		}
		return None, nil
	}
	// Scalar bases resolve to none, like any other failed lookup.
	if ev.strict {
		return None, typeErrorf(pos, "cannot index %s", base.Kind())
	}
	return None, nil
}

// normalizeIndex maps negative indices to offsets from the end.
func normalizeIndex(i int64, length int) int64 {
	if i < 0 {
		return i + int64(length)
	}
	return i
}

// positioned attaches a position to an error that does not already carry one.
// Plain errors from builtins are promoted to evaluation errors.
func positioned(err error, pos int) error {
	var engErr *Error
	if errors.As(err, &engErr) {
		if engErr.Pos < 0 {
			engErr.Pos = pos
		}
		return engErr
	}
	return &Error{Kind: KindEvaluation, Message: err.Error(), Pos: pos, Err: err}
}
