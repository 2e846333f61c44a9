package tasks

import (
	"strings"
	"testing"

	"github.com/driftless-hq/driftless/pkg/template"
)

func TestResult_Value(t *testing.T) {
	r := Result{
		Changed: true,
		RC:      0,
		Stdout:  "inactive",
		Extra:   map[string]template.Value{"backup_file": template.StringValue("/tmp/bak")},
	}
	ctx := template.NewContext().SetRegistered("svc", r.Value())

	eng := template.New()
	out, err := eng.Render("{{ svc.stdout }} rc={{ svc.rc }} backup={{ svc.backup_file }}", ctx)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if out != "inactive rc=0 backup=/tmp/bak" {
		t.Errorf("Rendered %q", out)
	}

	ok, err := eng.EvaluateCondition("svc.changed and not svc.failed", ctx)
	if err != nil {
		t.Fatalf("EvaluateCondition failed: %v", err)
	}
	if !ok {
		t.Error("Expected changed and not failed")
	}
}

func TestContextBuilder_Precedence(t *testing.T) {
	ctx := NewContextBuilder().
		Facts(map[string]template.Value{"name": template.StringValue("from-facts")}).
		Vars(map[string]template.Value{"name": template.StringValue("from-vars")}).
		Local("name", template.StringValue("from-locals")).
		Build()

	v, ok := ctx.Resolve("name")
	if !ok || !v.Equal(template.StringValue("from-locals")) {
		t.Errorf("Expected locals to win, got %s", v.String())
	}
}

func TestContextBuilder_Accumulates(t *testing.T) {
	b := NewContextBuilder().
		Var("pkg", template.StringValue("nginx")).
		Env(map[string]string{"HOME": "/root"})

	eng := template.New()
	first := b.Build()
	out, err := eng.Render("{{ pkg }} in {{ env.HOME }}", first)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if out != "nginx in /root" {
		t.Errorf("Rendered %q", out)
	}

	// Register a result after the first task and build again.
	b.Register("install", Result{Changed: true, Stdout: "installed"})
	second := b.Build()
	ok, err := eng.EvaluateCondition("install.changed", second)
	if err != nil {
		t.Fatalf("EvaluateCondition failed: %v", err)
	}
	if !ok {
		t.Error("Expected registered result visible in second context")
	}
}

func TestGate_ShouldRun(t *testing.T) {
	eng := template.New()
	gate := NewGate(eng)
	ctx := NewContextBuilder().
		Var("count", template.Int(7)).
		Var("os", template.StringValue("debian")).
		Build()

	tests := []struct {
		name string
		when []string
		want bool
	}{
		{"no clauses", nil, true},
		{"single true", []string{"count >= 5"}, true},
		{"single false", []string{"count >= 50"}, false},
		{"all of, all hold", []string{"count >= 5", "os == 'debian'"}, true},
		{"all of, one fails", []string{"count >= 5", "os == 'redhat'"}, false},
		{"undefined guard", []string{"api_key is not defined"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gate.ShouldRun(tt.when, ctx)
			if err != nil {
				t.Fatalf("ShouldRun failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldRun(%v) = %v, want %v", tt.when, got, tt.want)
			}
		})
	}
}

func TestGate_ShouldRun_EvalErrorFails(t *testing.T) {
	gate := NewGate(template.New())
	ctx := NewContextBuilder().Build()

	_, err := gate.ShouldRun([]string{"count >="}, ctx)
	if err == nil {
		t.Fatal("Expected a broken clause to fail, not skip")
	}
	if !template.IsKind(err, template.KindSyntax) {
		t.Errorf("Expected wrapped syntax error, got %v", err)
	}
	if !strings.Contains(err.Error(), "when clause") {
		t.Errorf("Expected clause in message, got %q", err.Error())
	}
}

func TestRenderFields(t *testing.T) {
	eng := template.New()
	ctx := NewContextBuilder().
		Var("pkg", template.StringValue("nginx")).
		Var("conf_dir", template.StringValue("/etc/nginx")).
		Build()

	fields := map[string]string{
		"name": "{{ pkg }}",
		"path": "{{ conf_dir }}/{{ pkg }}.conf",
		"mode": "0644",
	}
	rendered, err := RenderFields(eng, fields, ctx)
	if err != nil {
		t.Fatalf("RenderFields failed: %v", err)
	}
	if rendered["path"] != "/etc/nginx/nginx.conf" {
		t.Errorf("path = %q", rendered["path"])
	}
	if rendered["mode"] != "0644" {
		t.Errorf("mode = %q", rendered["mode"])
	}
}

func TestRenderFields_ErrorNamesField(t *testing.T) {
	eng := template.New()
	ctx := NewContextBuilder().Build()

	_, err := RenderFields(eng, map[string]string{"key": "{{ missing | mandatory }}"}, ctx)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), `field "key"`) {
		t.Errorf("Expected field name in error, got %q", err.Error())
	}
	if !template.IsKind(err, template.KindMandatory) {
		t.Errorf("Expected wrapped mandatory error, got %v", err)
	}
}
