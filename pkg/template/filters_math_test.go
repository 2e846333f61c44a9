package template

import (
	"math"
	"testing"
)

func TestMathFilters_Abs(t *testing.T) {
	ctx := NewContext().
		SetVar("n", Int(-5)).
		SetVar("f", Float(-2.5))

	if v := evalString(t, "n | abs", ctx); !v.Equal(Int(5)) {
		t.Errorf("abs int = %s", v.String())
	}
	if v := evalString(t, "f | abs", ctx); !v.Equal(Float(2.5)) {
		t.Errorf("abs float = %s", v.String())
	}
}

func TestMathFilters_Round(t *testing.T) {
	ctx := NewContext().
		SetVar("pi", Float(3.14159)).
		SetVar("half", Float(2.5)).
		SetVar("n", Int(7))

	if v := evalString(t, "pi | round(2)", ctx); !v.Equal(Float(3.14)) {
		t.Errorf("round(2) = %s", v.String())
	}
	// Integral results collapse to Int.
	if v := evalString(t, "half | round", ctx); !v.Equal(Int(3)) {
		t.Errorf("round = %s", v.String())
	}
	if v := evalString(t, "n | round(3)", ctx); !v.Equal(Int(7)) {
		t.Errorf("round on int = %s", v.String())
	}
}

func TestMathFilters_BoolTernary(t *testing.T) {
	ctx := NewContext().
		SetVar("yes", Int(1)).
		SetVar("no", StringValue(""))

	if v := evalString(t, "yes | bool", ctx); !v.Equal(Bool(true)) {
		t.Errorf("bool = %s", v.String())
	}
	if v := evalString(t, "no | ternary('on', 'off')", ctx); !v.Equal(StringValue("off")) {
		t.Errorf("ternary = %s", v.String())
	}
	if v := evalString(t, "yes | ternary('on')", ctx); !v.Equal(StringValue("on")) {
		t.Errorf("ternary one arg = %s", v.String())
	}
	if v := evalString(t, "no | ternary('on')", ctx); !v.Equal(Bool(false)) {
		t.Errorf("Expected false for false one-arg ternary, got %s", v.String())
	}
}

func TestMathFilters_Conversions(t *testing.T) {
	ctx := NewContext().
		SetVar("s", StringValue("42")).
		SetVar("hex", StringValue("ff")).
		SetVar("junk", StringValue("nope"))

	if v := evalString(t, "s | int", ctx); !v.Equal(Int(42)) {
		t.Errorf("int = %s", v.String())
	}
	if v := evalString(t, "hex | int(0, 16)", ctx); !v.Equal(Int(255)) {
		t.Errorf("int base 16 = %s", v.String())
	}
	if v := evalString(t, "junk | int(9)", ctx); !v.Equal(Int(9)) {
		t.Errorf("int default = %s", v.String())
	}
	if v := evalString(t, "s | float", ctx); !v.Equal(Float(42)) {
		t.Errorf("float = %s", v.String())
	}
	if v := evalString(t, "junk | float(1.5)", ctx); !v.Equal(Float(1.5)) {
		t.Errorf("float default = %s", v.String())
	}
}

func TestMathFilters_LogPowSqrt(t *testing.T) {
	ctx := NewContext().
		SetVar("e2", Float(math.E*math.E)).
		SetVar("hundred", Int(100)).
		SetVar("two", Int(2)).
		SetVar("nine", Int(9)).
		SetVar("neg", Int(-4))

	v := evalString(t, "e2 | log", ctx)
	f, _ := v.AsFloat()
	if math.Abs(f-2) > 1e-9 {
		t.Errorf("log = %v", f)
	}
	v = evalString(t, "hundred | log(10)", ctx)
	f, _ = v.AsFloat()
	if math.Abs(f-2) > 1e-9 {
		t.Errorf("log base 10 = %v", f)
	}
	v = evalString(t, "two | pow(10)", ctx)
	f, _ = v.AsFloat()
	if f != 1024 {
		t.Errorf("pow = %v", f)
	}
	v = evalString(t, "nine | sqrt", ctx)
	f, _ = v.AsFloat()
	if f != 3 {
		t.Errorf("sqrt = %v", f)
	}
	v = evalString(t, "neg | sqrt", ctx)
	f, _ = v.AsFloat()
	if !math.IsNaN(f) {
		t.Errorf("Expected NaN for negative sqrt, got %v", f)
	}
}

func TestMathFilters_Random(t *testing.T) {
	ctx := NewContext().
		SetVar("n", Int(10)).
		SetVar("items", List(Int(1), Int(2), Int(3)))

	for i := 0; i < 50; i++ {
		v := evalString(t, "n | random", ctx)
		got, ok := v.AsInt()
		if !ok || got < 0 || got > 10 {
			t.Fatalf("random out of range: %s", v.String())
		}
	}
	for i := 0; i < 50; i++ {
		v := evalString(t, "n | random(20)", ctx)
		got, ok := v.AsInt()
		if !ok || got < 10 || got > 20 {
			t.Fatalf("random range out of bounds: %s", v.String())
		}
	}
	v := evalString(t, "items | random", ctx)
	n, ok := v.AsInt()
	if !ok || n < 1 || n > 3 {
		t.Errorf("random element = %s", v.String())
	}
}
