package facts

import (
	"bufio"
	"os"
	"runtime"
	"strings"

	"github.com/driftless-hq/driftless/pkg/template"
)

// Collect gathers the built-in local facts for the facts scope. version is
// the agent version string reported as driftless_version.
func Collect(version string) map[string]template.Value {
	facts := map[string]template.Value{
		"driftless_version":      template.StringValue(version),
		"driftless_os_family":    template.StringValue(osFamily()),
		"driftless_architecture": template.StringValue(runtime.GOARCH),
	}
	if hostname, err := os.Hostname(); err == nil {
		facts["driftless_hostname"] = template.StringValue(hostname)
	}
	return facts
}

func osFamily() string {
	switch runtime.GOOS {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	default:
		return "Unix"
	}
}

// Environ returns the process environment as a key/value map, suitable for
// Context.SetEnviron.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, val, ok := strings.Cut(kv, "="); ok {
			env[key] = val
		}
	}
	return env
}

// LoadEnvFile reads a .env file of KEY=value lines into a map. Blank lines
// and # comments are skipped, and single or double quotes around a value are
// stripped. A missing file is not an error and yields an empty map.
func LoadEnvFile(path string) (map[string]string, error) {
	env := make(map[string]string)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return env, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		env[strings.TrimSpace(key)] = unquote(strings.TrimSpace(val))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return env, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
