package template

import (
	"os"
	"path/filepath"
	"strings"
)

func registerPathFilters(r *Registry) {
	mustFilter(r, FilterEntry{
		Name:        "basename",
		Description: "Return the final component of a path",
		Category:    CategoryPath,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			return StringValue(pathBase(stringOf(input))), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "dirname",
		Description: "Return the directory part of a path",
		Category:    CategoryPath,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			return StringValue(pathDir(stringOf(input))), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "expanduser",
		Description: "Expand a leading ~ to the user's home directory",
		Category:    CategoryPath,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			if input.IsNone() {
				return None, evalErrorf(-1, "expanduser received none")
			}
			s, ok := input.AsString()
			if !ok {
				return input, nil
			}
			return StringValue(expandUser(s)), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "realpath",
		Description: "Resolve a path to its canonical absolute form",
		Category:    CategoryPath,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			if input.IsNone() {
				return None, evalErrorf(-1, "realpath received none")
			}
			s, ok := input.AsString()
			if !ok {
				return input, nil
			}
			resolved, err := filepath.EvalSymlinks(s)
			if err != nil {
				// Nonexistent paths pass through unchanged.
				return StringValue(s), nil
			}
			abs, err := filepath.Abs(resolved)
			if err != nil {
				return StringValue(s), nil
			}
			return StringValue(abs), nil
		},
	})
}

// pathBase returns the final path component. Paths with a trailing slash
// (other than the root) have an empty basename.
func pathBase(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasSuffix(path, "/") && path != "/" {
		return ""
	}
	base := filepath.Base(path)
	if base == "/" || base == "." {
		return ""
	}
	return base
}

// pathDir returns the directory part of a path. A trailing slash is treated
// as an empty final component, so the dirname is the path without it.
func pathDir(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasSuffix(path, "/") {
		return strings.TrimRight(path, "/")
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

func expandUser(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		// ~user lookups are not supported.
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
