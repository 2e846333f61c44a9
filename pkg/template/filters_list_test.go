package template

import (
	"testing"
)

func TestListFilters_Combine(t *testing.T) {
	base := NewMap()
	base.Set("a", Int(1))
	base.Set("b", Int(2))
	override := NewMap()
	override.Set("b", Int(20))
	override.Set("c", Int(30))
	ctx := NewContext().
		SetVar("base", MapValue(base)).
		SetVar("override", MapValue(override))

	v := evalString(t, "base | combine(override)", ctx)
	m, ok := v.AsMap()
	if !ok {
		t.Fatalf("Expected map, got %s", v.Kind())
	}
	if got, _ := m.Get("b"); !got.Equal(Int(20)) {
		t.Errorf("Expected later map to override, got %s", got.String())
	}
	if got, _ := m.Get("a"); !got.Equal(Int(1)) {
		t.Errorf("Expected base key preserved, got %s", got.String())
	}
	if m.Len() != 3 {
		t.Errorf("Expected 3 keys, got %d", m.Len())
	}
}

func TestListFilters_DictItemsRoundTrip(t *testing.T) {
	m := NewMap()
	m.Set("x", Int(1))
	m.Set("y", StringValue("two"))
	ctx := NewContext().SetVar("cfg", MapValue(m))

	v := evalString(t, "cfg | dict2items", ctx)
	items, ok := v.AsList()
	if !ok || len(items) != 2 {
		t.Fatalf("Expected 2 items, got %s", v.String())
	}
	first, _ := items[0].AsMap()
	if key, _ := first.Get("key"); !key.Equal(StringValue("x")) {
		t.Errorf("Expected first key x, got %s", key.String())
	}

	// dict2items then items2dict is the identity.
	back := evalString(t, "cfg | dict2items | items2dict", ctx)
	if !back.Equal(MapValue(m)) {
		t.Errorf("Round trip mismatch: %s", back.String())
	}
}

func TestListFilters_Dictsort(t *testing.T) {
	m := NewMap()
	m.Set("b", Int(2))
	m.Set("A", Int(1))
	m.Set("c", Int(3))
	ctx := NewContext().SetVar("cfg", MapValue(m))

	v := evalString(t, "cfg | dictsort", ctx)
	sorted, _ := v.AsMap()
	keys := sorted.Keys()
	want := []string{"A", "b", "c"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("Expected case-insensitive key order %v, got %v", want, keys)
		}
	}

	v = evalString(t, "cfg | dictsort(false, 'key', true)", ctx)
	sorted, _ = v.AsMap()
	if sorted.Keys()[0] != "c" {
		t.Errorf("Expected reversed order, got %v", sorted.Keys())
	}
}

func TestListFilters_Flatten(t *testing.T) {
	ctx := NewContext().SetVar("nested", List(
		Int(1),
		List(Int(2), List(Int(3), Int(4))),
		Int(5),
	))
	v := evalString(t, "nested | flatten", ctx)
	if !v.Equal(List(Int(1), Int(2), Int(3), Int(4), Int(5))) {
		t.Errorf("flatten = %s", v.String())
	}
}

func TestListFilters_Map(t *testing.T) {
	a := NewMap()
	a.Set("name", StringValue("web01"))
	b := NewMap()
	b.Set("name", StringValue("web02"))
	c := NewMap()
	c.Set("other", Int(1))
	ctx := NewContext().SetVar("hosts", List(MapValue(a), MapValue(b), MapValue(c)))

	v := evalString(t, "hosts | map('name')", ctx)
	items, _ := v.AsList()
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	if !items[0].Equal(StringValue("web01")) || !items[1].Equal(StringValue("web02")) {
		t.Errorf("map extracted wrong values: %s", v.String())
	}
	if !items[2].IsNone() {
		t.Errorf("Expected none for missing attribute, got %s", items[2].String())
	}
}

func TestListFilters_SelectReject(t *testing.T) {
	ctx := NewContext().SetVar("items", List(
		Int(1), Int(0), StringValue(""), StringValue("x"), None,
	))

	v := evalString(t, "items | select('truthy')", ctx)
	if !v.Equal(List(Int(1), StringValue("x"))) {
		t.Errorf("select truthy = %s", v.String())
	}

	v = evalString(t, "items | reject('none')", ctx)
	items, _ := v.AsList()
	if len(items) != 4 {
		t.Errorf("Expected 4 items after rejecting none, got %d", len(items))
	}

	v = evalString(t, "items | select('equalto', 0)", ctx)
	if !v.Equal(List(Int(0))) {
		t.Errorf("select equalto = %s", v.String())
	}

	ctx = NewContext().SetVar("names", List(
		StringValue("web01"), StringValue("db01"), StringValue("web02"),
	))
	v = evalString(t, "names | select('match', 'web')", ctx)
	if !v.Equal(List(StringValue("web01"), StringValue("web02"))) {
		t.Errorf("select match = %s", v.String())
	}

	evalErrTest(t, "names | select('match', '(')", ctx, KindEvaluation)
}

func TestListFilters_Zip(t *testing.T) {
	ctx := NewContext().
		SetVar("a", List(Int(1), Int(2), Int(3))).
		SetVar("b", List(StringValue("x"), StringValue("y")))

	v := evalString(t, "a | zip(b)", ctx)
	want := List(
		List(Int(1), StringValue("x")),
		List(Int(2), StringValue("y")),
	)
	if !v.Equal(want) {
		t.Errorf("zip = %s", v.String())
	}
}

func TestListFilters_SliceAndBatch(t *testing.T) {
	ctx := NewContext().SetVar("items", List(Int(1), Int(2), Int(3), Int(4), Int(5)))

	v := evalString(t, "items | slice(2)", ctx)
	want := List(
		List(Int(1), Int(2)),
		List(Int(3), Int(4)),
		List(Int(5)),
	)
	if !v.Equal(want) {
		t.Errorf("slice = %s", v.String())
	}

	v = evalString(t, "items | batch(2, 0)", ctx)
	want = List(
		List(Int(1), Int(2)),
		List(Int(3), Int(4)),
		List(Int(5), Int(0)),
	)
	if !v.Equal(want) {
		t.Errorf("batch = %s", v.String())
	}
}

func TestListFilters_SortUnique(t *testing.T) {
	ctx := NewContext().SetVar("items", List(Int(3), Int(1), Int(2), Int(1)))

	v := evalString(t, "items | sort", ctx)
	if !v.Equal(List(Int(1), Int(1), Int(2), Int(3))) {
		t.Errorf("sort = %s", v.String())
	}

	v = evalString(t, "items | sort(true)", ctx)
	if !v.Equal(List(Int(3), Int(2), Int(1), Int(1))) {
		t.Errorf("sort reverse = %s", v.String())
	}

	v = evalString(t, "items | unique", ctx)
	if !v.Equal(List(Int(3), Int(1), Int(2))) {
		t.Errorf("unique = %s", v.String())
	}
}

func TestListFilters_FirstLastJoin(t *testing.T) {
	ctx := NewContext().
		SetVar("items", List(StringValue("a"), StringValue("b"), StringValue("c"))).
		SetVar("empty", List())

	if v := evalString(t, "items | first", ctx); !v.Equal(StringValue("a")) {
		t.Errorf("first = %s", v.String())
	}
	if v := evalString(t, "items | last", ctx); !v.Equal(StringValue("c")) {
		t.Errorf("last = %s", v.String())
	}
	if v := evalString(t, "empty | first", ctx); !v.IsNone() {
		t.Errorf("Expected none for empty first, got %s", v.String())
	}
	if got := renderString(t, "{{ items | join(', ') }}", ctx); got != "a, b, c" {
		t.Errorf("join = %q", got)
	}
}

func TestListFilters_Default(t *testing.T) {
	ctx := NewContext().SetVar("empty", StringValue("")).SetVar("set", Int(5))

	if v := evalString(t, "missing | default('fallback')", ctx); !v.Equal(StringValue("fallback")) {
		t.Errorf("default on missing = %s", v.String())
	}
	if v := evalString(t, "set | default(0)", ctx); !v.Equal(Int(5)) {
		t.Errorf("default on present = %s", v.String())
	}
	// Empty string only falls back when the boolean flag is set.
	if v := evalString(t, "empty | default('x')", ctx); !v.Equal(StringValue("")) {
		t.Errorf("default without flag = %s", v.String())
	}
	if v := evalString(t, "empty | default('x', true)", ctx); !v.Equal(StringValue("x")) {
		t.Errorf("default with flag = %s", v.String())
	}
}
