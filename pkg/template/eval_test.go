package template

import (
	"testing"
)

func evalString(t *testing.T, src string, ctx *Context) Value {
	t.Helper()
	v, err := New().RenderValue("{{ "+src+" }}", ctx)
	if err != nil {
		t.Fatalf("Evaluating %q failed: %v", src, err)
	}
	return v
}

func evalErrTest(t *testing.T, src string, ctx *Context, kind ErrorKind) error {
	t.Helper()
	_, err := New().RenderValue("{{ "+src+" }}", ctx)
	if err == nil {
		t.Fatalf("Evaluating %q: expected %s error", src, kind)
	}
	if !IsKind(err, kind) {
		t.Fatalf("Evaluating %q: expected %s error, got %v", src, kind, err)
	}
	return err
}

func TestEval_Logical(t *testing.T) {
	ctx := NewContext().
		SetVar("yes", Bool(true)).
		SetVar("no", Bool(false)).
		SetVar("name", StringValue("web"))

	tests := []struct {
		src  string
		want bool
	}{
		{"yes and name", true},
		{"yes and no", false},
		{"no or name", true},
		{"no or no", false},
		{"not no", true},
		{"not name", false},
		{"not missing", true},
	}
	for _, tt := range tests {
		v := evalString(t, tt.src, ctx)
		if got := v.Truth(); got != tt.want {
			t.Errorf("%q = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestEval_ShortCircuit(t *testing.T) {
	// The right side would raise an unknown-filter error if evaluated.
	ctx := NewContext().SetVar("no", Bool(false))
	v := evalString(t, "no and (1 | nosuchfilter)", ctx)
	if v.Truth() {
		t.Error("Expected false from short-circuited and")
	}
}

func TestEval_Comparison(t *testing.T) {
	ctx := NewContext().
		SetVar("count", Int(7)).
		SetVar("ratio", Float(0.5)).
		SetVar("name", StringValue("abc"))

	tests := []struct {
		src  string
		want bool
	}{
		{"count == 7", true},
		{"count != 7", false},
		{"count > 5", true},
		{"count >= 7", true},
		{"count < 7", false},
		{"count <= 6", false},
		{"ratio < 1", true},
		{"count == 7.0", true},
		{"name == 'abc'", true},
		{"name < 'abd'", true},
		{"name == 7", false},
	}
	for _, tt := range tests {
		v := evalString(t, tt.src, ctx)
		if got := v.Truth(); got != tt.want {
			t.Errorf("%q = %v, want %v", tt.src, got, tt.want)
		}
	}

	evalErrTest(t, "name < 7", ctx, KindType)
}

func TestEval_Membership(t *testing.T) {
	m := NewMap()
	m.Set("port", Int(80))
	ctx := NewContext().
		SetVar("items", List(StringValue("a"), Int(2))).
		SetVar("cfg", MapValue(m)).
		SetVar("text", StringValue("hello world"))

	tests := []struct {
		src  string
		want bool
	}{
		{"'a' in items", true},
		{"2 in items", true},
		{"'z' in items", false},
		{"'z' not in items", true},
		{"'port' in cfg", true},
		{"'host' in cfg", false},
		{"'world' in text", true},
		{"'mars' in text", false},
	}
	for _, tt := range tests {
		v := evalString(t, tt.src, ctx)
		if got := v.Truth(); got != tt.want {
			t.Errorf("%q = %v, want %v", tt.src, got, tt.want)
		}
	}

	evalErrTest(t, "'x' in 42", ctx, KindType)
}

func TestEval_PathResolution(t *testing.T) {
	inner := NewMap()
	inner.Set("stdout", StringValue("ok"))
	result := NewMap()
	result.Set("cmd", MapValue(inner))
	ctx := NewContext().
		SetRegistered("result", MapValue(result)).
		SetVar("items", List(Int(10), Int(20), Int(30)))

	if v := evalString(t, "result.cmd.stdout", ctx); !v.Equal(StringValue("ok")) {
		t.Errorf("Expected ok, got %s", v.String())
	}
	if v := evalString(t, `result["cmd"]["stdout"]`, ctx); !v.Equal(StringValue("ok")) {
		t.Errorf("Expected ok via bracket access, got %s", v.String())
	}
	if v := evalString(t, "items[1]", ctx); !v.Equal(Int(20)) {
		t.Errorf("Expected 20, got %s", v.String())
	}
	if v := evalString(t, "items[-1]", ctx); !v.Equal(Int(30)) {
		t.Errorf("Expected 30 for negative index, got %s", v.String())
	}
	if v := evalString(t, "items.0", ctx); !v.Equal(Int(10)) {
		t.Errorf("Expected 10 for .0 access, got %s", v.String())
	}

	// Lenient mode: missing keys and out-of-range indices yield none.
	if v := evalString(t, "result.cmd.missing", ctx); !v.IsNone() {
		t.Errorf("Expected none for missing key, got %s", v.String())
	}
	if v := evalString(t, "items[99]", ctx); !v.IsNone() {
		t.Errorf("Expected none for out-of-range index, got %s", v.String())
	}
	if v := evalString(t, "missing.a.b", ctx); !v.IsNone() {
		t.Errorf("Expected none for unresolved path, got %s", v.String())
	}

	evalErrTest(t, "items.x", ctx, KindType)
	evalErrTest(t, "result[0]", ctx, KindType)
}

func TestEval_ScalarBaseAccess(t *testing.T) {
	ctx := NewContext().
		SetVar("n", Int(5)).
		SetVar("s", StringValue("web"))

	// Attribute and index access on scalar bases resolves to none, so
	// when-style paths over scalars skip instead of failing.
	for _, src := range []string{"n.foo", "s.foo", "n[0]", "n.foo.bar"} {
		if v := evalString(t, src, ctx); !v.IsNone() {
			t.Errorf("%q = %s, want none", src, v.String())
		}
	}

	out, err := New().Render("{{ n.foo }}", ctx)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if out != "" {
		t.Errorf("Expected empty output, got %q", out)
	}

	ok, err := New().EvaluateCondition("s.enabled", ctx)
	if err != nil {
		t.Fatalf("EvaluateCondition failed: %v", err)
	}
	if ok {
		t.Error("Expected false for attribute on a scalar")
	}

	// Strict mode still rejects the access.
	eng := New(WithStrictVariables())
	if _, err := eng.RenderValue("{{ n.foo }}", ctx); !IsKind(err, KindType) {
		t.Errorf("Expected type error in strict mode, got %v", err)
	}
	if _, err := eng.RenderValue("{{ n[0] }}", ctx); !IsKind(err, KindType) {
		t.Errorf("Expected type error in strict mode, got %v", err)
	}
}

func TestEval_StrictMode(t *testing.T) {
	eng := New(WithStrictVariables())
	ctx := NewContext()

	_, err := eng.RenderValue("{{ missing }}", ctx)
	if !IsKind(err, KindName) {
		t.Fatalf("Expected name error in strict mode, got %v", err)
	}

	// Definedness tests still work against missing names in strict mode.
	v, err := eng.RenderValue("{{ missing is not defined }}", ctx)
	if err != nil {
		t.Fatalf("Definedness test failed in strict mode: %v", err)
	}
	if !v.Truth() {
		t.Error("Expected missing to be not defined")
	}
}

func TestEval_DefinednessTests(t *testing.T) {
	m := NewMap()
	m.Set("present", Int(1))
	ctx := NewContext().
		SetVar("cfg", MapValue(m)).
		SetVar("nothing", None)

	tests := []struct {
		src  string
		want bool
	}{
		{"cfg is defined", true},
		{"missing is defined", false},
		{"missing is not defined", true},
		{"missing is undefined", true},
		{"cfg.present is defined", true},
		{"cfg.absent is defined", false},
		{"nothing is none", true},
		{"cfg is none", false},
		{"missing is none", true},
	}
	for _, tt := range tests {
		v := evalString(t, tt.src, ctx)
		if got := v.Truth(); got != tt.want {
			t.Errorf("%q = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestEval_UnknownNames(t *testing.T) {
	ctx := NewContext().SetVar("x", Int(1))
	evalErrTest(t, "x | nosuchfilter", ctx, KindName)
	evalErrTest(t, "nosuchfunction()", ctx, KindName)
}

func TestEval_Arity(t *testing.T) {
	ctx := NewContext().SetVar("x", StringValue("s"))
	evalErrTest(t, "x | ternary", ctx, KindArity)
	evalErrTest(t, "uuid(1)", ctx, KindArity)
	evalErrTest(t, "lookup('env')", ctx, KindArity)
}

func TestEval_NodeBudget(t *testing.T) {
	eng := New(WithLimits(Limits{MaxNodes: 10}))
	ctx := NewContext()
	_, err := eng.RenderValue("{{ [1, 2, 3, 4, 5, 6, 7, 8, 9, 10] }}", ctx)
	if !IsKind(err, KindResourceLimit) {
		t.Fatalf("Expected resource limit error, got %v", err)
	}
}

func TestEval_DepthBudget(t *testing.T) {
	eng := New(WithLimits(Limits{MaxDepth: 3}))
	ctx := NewContext()
	_, err := eng.RenderValue("{{ [[[[[1]]]]] }}", ctx)
	if !IsKind(err, KindResourceLimit) {
		t.Fatalf("Expected resource limit error, got %v", err)
	}
}

func TestContext_Precedence(t *testing.T) {
	ctx := NewContext().
		SetFact("who", StringValue("from-facts")).
		SetVar("who", StringValue("from-vars"))

	if v := evalString(t, "who", ctx); !v.Equal(StringValue("from-vars")) {
		t.Errorf("Expected vars to shadow facts, got %s", v.String())
	}

	ctx.SetRegistered("who", StringValue("from-registered"))
	if v := evalString(t, "who", ctx); !v.Equal(StringValue("from-registered")) {
		t.Errorf("Expected registered to shadow vars, got %s", v.String())
	}

	ctx.SetLocal("who", StringValue("from-locals"))
	if v := evalString(t, "who", ctx); !v.Equal(StringValue("from-locals")) {
		t.Errorf("Expected locals to win, got %s", v.String())
	}
}

func TestContext_EnvScope(t *testing.T) {
	ctx := NewContext().SetEnviron(map[string]string{"HOME": "/home/svc"})

	if v := evalString(t, "env.HOME", ctx); !v.Equal(StringValue("/home/svc")) {
		t.Errorf("Expected env map access, got %s", v.String())
	}
}
