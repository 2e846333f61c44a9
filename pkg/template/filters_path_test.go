package template

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathFilters_Basename(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/etc/nginx/nginx.conf", "nginx.conf"},
		{"nginx.conf", "nginx.conf"},
		{"/etc/nginx/", ""},
		{"/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		ctx := NewContext().SetVar("p", StringValue(tt.path))
		if got := renderString(t, "{{ p | basename }}", ctx); got != tt.want {
			t.Errorf("basename(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestPathFilters_Dirname(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/etc/nginx/nginx.conf", "/etc/nginx"},
		{"/etc/nginx/", "/etc/nginx"},
		{"nginx.conf", ""},
		{"/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		ctx := NewContext().SetVar("p", StringValue(tt.path))
		if got := renderString(t, "{{ p | dirname }}", ctx); got != tt.want {
			t.Errorf("dirname(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestPathFilters_Expanduser(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	ctx := NewContext().SetVar("p", StringValue("~/.config/driftless"))
	want := filepath.Join(home, ".config/driftless")
	if got := renderString(t, "{{ p | expanduser }}", ctx); got != want {
		t.Errorf("expanduser = %q, want %q", got, want)
	}

	// Other-user and plain paths pass through unchanged.
	for _, p := range []string{"~root/x", "/etc/hosts"} {
		ctx := NewContext().SetVar("p", StringValue(p))
		if got := renderString(t, "{{ p | expanduser }}", ctx); got != p {
			t.Errorf("expanduser(%q) = %q", p, got)
		}
	}
}

func TestPathFilters_Realpath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	ctx := NewContext().SetVar("p", StringValue(link))
	got := renderString(t, "{{ p | realpath }}", ctx)
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		t.Fatal(err)
	}
	if got != resolved {
		t.Errorf("realpath = %q, want %q", got, resolved)
	}

	// Nonexistent paths come back untouched.
	ctx = NewContext().SetVar("p", StringValue("/no/such/path/driftless"))
	if got := renderString(t, "{{ p | realpath }}", ctx); got != "/no/such/path/driftless" {
		t.Errorf("realpath on missing path = %q", got)
	}
}
