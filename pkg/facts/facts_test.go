package facts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/driftless-hq/driftless/pkg/template"
)

func TestCollect(t *testing.T) {
	facts := Collect("1.2.3")

	version, ok := facts["driftless_version"]
	if !ok || !version.Equal(template.StringValue("1.2.3")) {
		t.Errorf("driftless_version = %v", version)
	}
	for _, key := range []string{"driftless_os_family", "driftless_architecture"} {
		v, ok := facts[key]
		if !ok {
			t.Errorf("Missing fact %q", key)
			continue
		}
		if s, _ := v.AsString(); s == "" {
			t.Errorf("Fact %q is empty", key)
		}
	}
}

func TestCollect_InContext(t *testing.T) {
	ctx := template.NewContext().SetFacts(Collect("1.2.3"))
	out, err := template.New().Render("v{{ driftless_version }}", ctx)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if out != "v1.2.3" {
		t.Errorf("Expected v1.2.3, got %q", out)
	}
}

func TestEnviron(t *testing.T) {
	t.Setenv("DRIFTLESS_FACTS_TEST", "yes")
	env := Environ()
	if env["DRIFTLESS_FACTS_TEST"] != "yes" {
		t.Errorf("Expected env var in snapshot, got %q", env["DRIFTLESS_FACTS_TEST"])
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.env")
	content := `# comment
ROLE=web

PORT = 8080
QUOTED="with spaces"
SINGLE='single'
noequals
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	env, err := LoadEnvFile(path)
	if err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	want := map[string]string{
		"ROLE":   "web",
		"PORT":   "8080",
		"QUOTED": "with spaces",
		"SINGLE": "single",
	}
	if len(env) != len(want) {
		t.Errorf("Expected %d entries, got %d: %v", len(want), len(env), env)
	}
	for key, val := range want {
		if env[key] != val {
			t.Errorf("env[%q] = %q, want %q", key, env[key], val)
		}
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	env, err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	if err != nil {
		t.Fatalf("Expected missing file to be ignored, got %v", err)
	}
	if len(env) != 0 {
		t.Errorf("Expected empty map, got %v", env)
	}
}
