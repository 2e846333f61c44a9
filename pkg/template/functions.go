package template

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ManagedBanner is returned by the driftless_managed function, for marking
// generated files.
const ManagedBanner = "Driftless managed"

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

func registerFunctions(r *Registry) {
	mustFunction(r, FunctionEntry{
		Name:        "length",
		Description: "Return the length of a string, list, or map",
		Category:    CategoryUtility,
		MinArgs:     1,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "value", Description: "String, list, or map to measure"},
		},
		Fn: func(_ *FuncContext, args []Value) (Value, error) {
			n, _ := args[0].Len()
			return Int(int64(n)), nil
		},
	})

	mustFunction(r, FunctionEntry{
		Name:        "basename",
		Description: "Return the final component of a path",
		Category:    CategoryPath,
		MinArgs:     1,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "path", Description: "Path to take the final component of"},
		},
		Fn: func(_ *FuncContext, args []Value) (Value, error) {
			return StringValue(pathBase(stringOf(args[0]))), nil
		},
	})

	mustFunction(r, FunctionEntry{
		Name:        "dirname",
		Description: "Return the directory part of a path",
		Category:    CategoryPath,
		MinArgs:     1,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "path", Description: "Path to take the directory part of"},
		},
		Fn: func(_ *FuncContext, args []Value) (Value, error) {
			return StringValue(pathDir(stringOf(args[0]))), nil
		},
	})

	mustFunction(r, FunctionEntry{
		Name:        "lookup",
		Description: "Look up a value from an external source (env, file, template, pipe)",
		Category:    CategoryLookup,
		MinArgs:     2,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "type", Description: "Source type: env, file, template, or pipe"},
			{Name: "key", Description: "Variable name, path, or command for the source"},
		},
		Fn: lookupFn,
	})

	mustFunction(r, FunctionEntry{
		Name:        "query",
		Description: "Query a data source (inventory_hostnames, file, fileglob)",
		Category:    CategoryLookup,
		MinArgs:     1,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "type", Description: "Source type: inventory_hostnames, file, or fileglob"},
			{Name: "argument", Description: "Path or pattern for the source"},
		},
		Fn: queryFn,
	})

	mustFunction(r, FunctionEntry{
		Name:        "hash",
		Description: "Hash a string with md5, sha1, sha256, sha384, or sha512",
		Category:    CategoryUtility,
		MinArgs:     2,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "value", Description: "String to hash"},
			{Name: "algorithm", Description: "md5, sha1, sha256, sha384, or sha512"},
		},
		Fn: func(_ *FuncContext, args []Value) (Value, error) {
			value := stringOf(args[0])
			algorithm := stringOf(args[1])
			digest, err := hashString(value, algorithm)
			if err != nil {
				return None, err
			}
			return StringValue(digest), nil
		},
	})

	mustFunction(r, FunctionEntry{
		Name:        "uuid",
		Description: "Generate a random UUID",
		Category:    CategoryUtility,
		MaxArgs:     0,
		Fn: func(_ *FuncContext, _ []Value) (Value, error) {
			return StringValue(uuid.NewString()), nil
		},
	})

	mustFunction(r, FunctionEntry{
		Name:        "timestamp",
		Description: "Return the current UTC time, ISO 8601 or a strftime format",
		Category:    CategoryUtility,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "format", Description: "strftime format; ISO 8601 when omitted"},
		},
		Fn: func(_ *FuncContext, args []Value) (Value, error) {
			now := time.Now().UTC()
			if format := strArg(args, 0, ""); format != "" {
				return StringValue(strftime(now, format)), nil
			}
			return StringValue(now.Format(time.RFC3339)), nil
		},
	})

	mustFunction(r, FunctionEntry{
		Name:        "now",
		Description: "Return the current local time, ISO 8601 or a strftime format",
		Category:    CategoryUtility,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "format", Description: "strftime format; ISO 8601 when omitted"},
		},
		Fn: func(_ *FuncContext, args []Value) (Value, error) {
			now := time.Now()
			if format := strArg(args, 0, ""); format != "" {
				return StringValue(strftime(now, format)), nil
			}
			return StringValue(now.Format(time.RFC3339)), nil
		},
	})

	mustFunction(r, FunctionEntry{
		Name:        "driftless_managed",
		Description: "Return the managed-file banner string",
		Category:    CategoryUtility,
		MaxArgs:     0,
		Fn: func(_ *FuncContext, _ []Value) (Value, error) {
			return StringValue(ManagedBanner), nil
		},
	})

	mustFunction(r, FunctionEntry{
		Name:        "driftless_date_time",
		Description: "Return a map of current date and time fields",
		Category:    CategoryUtility,
		MaxArgs:     0,
		Fn: func(_ *FuncContext, _ []Value) (Value, error) {
			return dateTimeMap(time.Now()), nil
		},
	})

	mustFunction(r, FunctionEntry{
		Name:        "expandvars",
		Description: "Expand $VAR and ${VAR} environment references in a string",
		Category:    CategoryUtility,
		MinArgs:     1,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "text", Description: "String with $VAR or ${VAR} references"},
		},
		Fn: func(fc *FuncContext, args []Value) (Value, error) {
			return StringValue(expandVars(stringOf(args[0]), fc)), nil
		},
	})

	mustFunction(r, FunctionEntry{
		Name:        "include_vars",
		Description: "Load variables from a YAML or JSON file",
		Category:    CategoryUtility,
		MinArgs:     1,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "path", Description: "YAML or JSON file to load"},
		},
		Fn: func(_ *FuncContext, args []Value) (Value, error) {
			return includeVars(stringOf(args[0])), nil
		},
	})

	mustFunction(r, FunctionEntry{
		Name:        "range",
		Description: "Generate a list of integers in a half-open range",
		Category:    CategoryGen,
		MinArgs:     1,
		MaxArgs:     3,
		Args: []ArgSpec{
			{Name: "start", Description: "Lower bound, inclusive; 0 when omitted"},
			{Name: "end", Description: "Upper bound, exclusive"},
			{Name: "step", Description: "Increment, may be negative"},
		},
		Fn: func(_ *FuncContext, args []Value) (Value, error) {
			var start, end, step int64
			step = 1
			switch len(args) {
			case 1:
				end, _ = args[0].AsInt()
			case 2:
				start, _ = args[0].AsInt()
				end, _ = args[1].AsInt()
			default:
				start, _ = args[0].AsInt()
				end, _ = args[1].AsInt()
				step = intArg(args, 2, 1)
			}
			return makeRange(start, end, step), nil
		},
	})

	mustFunction(r, FunctionEntry{
		Name:        "random",
		Description: "Generate a random float, or an integer within bounds",
		Category:    CategoryGen,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "start", Description: "Lower bound, inclusive"},
			{Name: "end", Description: "Upper bound, exclusive"},
		},
		Fn: func(_ *FuncContext, args []Value) (Value, error) {
			switch len(args) {
			case 0:
				return Float(rand.Float64()), nil
			case 1:
				max, _ := args[0].AsInt()
				if max <= 0 {
					return Int(0), nil
				}
				return Int(rand.Int63n(max)), nil
			default:
				min, _ := args[0].AsInt()
				max, _ := args[1].AsInt()
				if min >= max {
					return Int(min), nil
				}
				return Int(min + rand.Int63n(max-min)), nil
			}
		},
	})
}

func lookupFn(fc *FuncContext, args []Value) (Value, error) {
	kind := stringOf(args[0])
	key := stringOf(args[1])
	switch kind {
	case "env":
		// The context's env scope takes precedence over the process
		// environment, so tests and callers can inject values.
		if fc != nil && fc.Context != nil && fc.Context.env != nil {
			if v, ok := fc.Context.env.Get(key); ok {
				return StringValue(v.String()), nil
			}
		}
		return StringValue(os.Getenv(key)), nil
	case "file":
		content, err := os.ReadFile(key)
		if err != nil {
			return StringValue(""), nil
		}
		return StringValue(string(content)), nil
	case "template":
		content, err := os.ReadFile(key)
		if err != nil {
			return StringValue(""), nil
		}
		if fc == nil || fc.Render == nil {
			return StringValue(string(content)), nil
		}
		rendered, err := fc.Render(string(content))
		if err != nil {
			return None, err
		}
		return StringValue(rendered), nil
	case "pipe":
		out, err := exec.Command("sh", "-c", key).Output()
		if err != nil {
			return StringValue(""), nil
		}
		return StringValue(strings.TrimSpace(string(out))), nil
	}
	return None, nil
}

func queryFn(_ *FuncContext, args []Value) (Value, error) {
	switch stringOf(args[0]) {
	case "inventory_hostnames":
		return List(StringValue("localhost")), nil
	case "file":
		if len(args) > 1 {
			content, err := os.ReadFile(stringOf(args[1]))
			if err != nil {
				return StringValue(""), nil
			}
			return StringValue(string(content)), nil
		}
		return StringValue(""), nil
	case "fileglob":
		if len(args) > 1 {
			matches, err := filepath.Glob(stringOf(args[1]))
			if err != nil {
				return List(), nil
			}
			out := make([]Value, 0, len(matches))
			for _, m := range matches {
				out = append(out, StringValue(m))
			}
			return List(out...), nil
		}
		return List(), nil
	}
	return List(), nil
}

func hashString(value, algorithm string) (string, error) {
	var sum []byte
	switch algorithm {
	case "md5":
		h := md5.Sum([]byte(value))
		sum = h[:]
	case "sha1":
		h := sha1.Sum([]byte(value))
		sum = h[:]
	case "sha256":
		h := sha256.Sum256([]byte(value))
		sum = h[:]
	case "sha384":
		h := sha512.Sum384([]byte(value))
		sum = h[:]
	case "sha512":
		h := sha512.Sum512([]byte(value))
		sum = h[:]
	default:
		return "", evalErrorf(-1, "unsupported hash algorithm %q", algorithm)
	}
	return hex.EncodeToString(sum), nil
}

// expandVars substitutes $VAR and ${VAR} references. The context's env scope
// wins over the process environment; unknown variables are left intact.
func expandVars(s string, fc *FuncContext) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.Trim(strings.TrimPrefix(match, "$"), "{}")
		if fc != nil && fc.Context != nil && fc.Context.env != nil {
			if v, ok := fc.Context.env.Get(name); ok {
				return v.String()
			}
		}
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return match
	})
}

func includeVars(path string) Value {
	content, err := os.ReadFile(path)
	if err != nil {
		return MapValue(NewMap())
	}
	var decoded interface{}
	if err := yaml.Unmarshal(content, &decoded); err != nil {
		return MapValue(NewMap())
	}
	v := FromAny(decoded)
	if v.Kind() != KindMap {
		return MapValue(NewMap())
	}
	return v
}

func dateTimeMap(now time.Time) Value {
	utc := now.UTC()
	m := NewMap()
	m.Set("year", StringValue(strftime(utc, "%Y")))
	m.Set("month", StringValue(strftime(utc, "%m")))
	m.Set("day", StringValue(strftime(utc, "%d")))
	m.Set("hour", StringValue(strftime(utc, "%H")))
	m.Set("minute", StringValue(strftime(utc, "%M")))
	m.Set("second", StringValue(strftime(utc, "%S")))
	m.Set("epoch", Int(utc.Unix()))
	m.Set("epoch_int", Int(utc.Unix()))
	m.Set("date", StringValue(strftime(utc, "%Y-%m-%d")))
	m.Set("time", StringValue(strftime(utc, "%H:%M:%S")))
	m.Set("iso8601", StringValue(utc.Format(time.RFC3339)))
	m.Set("iso8601_basic", StringValue(utc.Format("20060102T150405")))
	m.Set("iso8601_basic_short", StringValue(utc.Format("20060102150405")))
	m.Set("iso8601_micro", StringValue(utc.Format("2006-01-02T15:04:05.000000Z")))
	m.Set("tz", StringValue(strftime(utc, "%Z")))
	m.Set("tz_offset", StringValue(strftime(utc, "%z")))
	m.Set("weekday", StringValue(strftime(utc, "%A")))
	m.Set("weekday_number", StringValue(strftime(utc, "%w")))
	m.Set("weeknumber", StringValue(strftime(utc, "%V")))
	m.Set("day_of_year", StringValue(strftime(utc, "%j")))

	local := now.Local()
	m.Set("hour_local", StringValue(strftime(local, "%H")))
	m.Set("minute_local", StringValue(strftime(local, "%M")))
	m.Set("second_local", StringValue(strftime(local, "%S")))
	m.Set("tz_local", StringValue(strftime(local, "%Z")))
	m.Set("tz_offset_local", StringValue(strftime(local, "%z")))
	return MapValue(m)
}
