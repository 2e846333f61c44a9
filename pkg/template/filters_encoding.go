package template

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

func registerEncodingFilters(r *Registry) {
	mustFilter(r, FilterEntry{
		Name:        "b64encode",
		Description: "Encode a string as base64",
		Category:    CategoryEncoding,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			s, ok := input.AsString()
			if !ok {
				s = input.String()
			}
			return StringValue(base64.StdEncoding.EncodeToString([]byte(s))), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "b64decode",
		Description: "Decode a base64 encoded string",
		Category:    CategoryEncoding,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			s, ok := input.AsString()
			if !ok {
				return None, typeErrorf(-1, "b64decode requires a string, got %s", input.Kind())
			}
			raw, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return None, evalError(err, "invalid base64 input")
			}
			return StringValue(string(raw)), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "to_json",
		Description: "Serialize a value to JSON, optionally indented",
		Category:    CategoryEncoding,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "indent", Description: "Spaces per level; 0 emits compact output"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			indent := int(intArg(args, 0, 0))
			if indent > 0 {
				return StringValue(input.JSONIndent(strings.Repeat(" ", indent))), nil
			}
			return StringValue(input.JSON()), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "to_nice_json",
		Description: "Serialize a value to indented JSON",
		Category:    CategoryEncoding,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "indent", Description: "Spaces per level, 2 by default"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			indent := int(intArg(args, 0, 2))
			if indent < 1 {
				indent = 2
			}
			return StringValue(input.JSONIndent(strings.Repeat(" ", indent))), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "from_json",
		Description: "Parse a JSON string into a value",
		Category:    CategoryEncoding,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			s, ok := input.AsString()
			if !ok {
				return None, typeErrorf(-1, "from_json requires a string, got %s", input.Kind())
			}
			var decoded interface{}
			dec := json.NewDecoder(strings.NewReader(s))
			dec.UseNumber()
			if err := dec.Decode(&decoded); err != nil {
				return None, evalError(err, "invalid JSON input")
			}
			return fromJSONAny(decoded), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "to_yaml",
		Description: "Serialize a value to YAML",
		Category:    CategoryEncoding,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			return marshalYAML(input, 4)
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "to_nice_yaml",
		Description: "Serialize a value to YAML with the given indentation",
		Category:    CategoryEncoding,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "indent", Description: "Spaces per level, 2 by default"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			indent := int(intArg(args, 0, 2))
			if indent < 1 {
				indent = 2
			}
			return marshalYAML(input, indent)
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "from_yaml",
		Description: "Parse a YAML string into a value",
		Category:    CategoryEncoding,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			s, ok := input.AsString()
			if !ok {
				return None, typeErrorf(-1, "from_yaml requires a string, got %s", input.Kind())
			}
			var decoded interface{}
			if err := yaml.Unmarshal([]byte(s), &decoded); err != nil {
				return None, evalError(err, "invalid YAML input")
			}
			return FromAny(decoded), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "mandatory",
		Description: "Fail rendering when the value is none",
		Category:    CategoryEncoding,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "message", Description: "Error message raised for a none input"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			if input.IsNone() {
				msg := strArg(args, 0, "mandatory value is not defined")
				return None, mandatoryErrorf("%s", msg)
			}
			return input, nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "regex_escape",
		Description: "Escape regex metacharacters in a string",
		Category:    CategoryEncoding,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			s, ok := input.AsString()
			if !ok {
				return input, nil
			}
			return StringValue(regexp.QuoteMeta(s)), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "regex_findall",
		Description: "Find all matches of a pattern in a string",
		Category:    CategoryEncoding,
		MinArgs:     1,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "pattern", Description: "Regular expression to match"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			s, ok := input.AsString()
			if !ok {
				return List(), nil
			}
			re, err := compilePattern(strArg(args, 0, ""))
			if err != nil {
				return None, err
			}
			var out []Value
			for _, m := range re.FindAllString(s, -1) {
				out = append(out, StringValue(m))
			}
			return List(out...), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "regex_replace",
		Description: "Replace all matches of a pattern in a string",
		Category:    CategoryEncoding,
		MinArgs:     1,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "pattern", Description: "Regular expression to match"},
			{Name: "replacement", Description: "Replacement text, may use $1 group references"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			s, ok := input.AsString()
			if !ok {
				return input, nil
			}
			re, err := compilePattern(strArg(args, 0, ""))
			if err != nil {
				return None, err
			}
			replacement := strArg(args, 1, "")
			return StringValue(re.ReplaceAllString(s, replacement)), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "regex_search",
		Description: "Return the first match of a pattern, or none",
		Category:    CategoryEncoding,
		MinArgs:     1,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "pattern", Description: "Regular expression to match"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			s, ok := input.AsString()
			if !ok {
				return None, nil
			}
			re, err := compilePattern(strArg(args, 0, ""))
			if err != nil {
				return None, err
			}
			if m := re.FindString(s); m != "" || re.MatchString(s) {
				return StringValue(m), nil
			}
			return None, nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "urlencode",
		Description: "Percent-encode a string for use in a URL",
		Category:    CategoryEncoding,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			s, ok := input.AsString()
			if !ok {
				s = input.String()
			}
			// QueryEscape emits + for spaces; normalize to %20.
			return StringValue(strings.ReplaceAll(url.QueryEscape(s), "+", "%20")), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "urldecode",
		Description: "Decode a percent-encoded string",
		Category:    CategoryEncoding,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			s, ok := input.AsString()
			if !ok {
				return input, nil
			}
			decoded, err := url.QueryUnescape(s)
			if err != nil {
				return input, nil
			}
			return StringValue(decoded), nil
		},
	})
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, evalError(err, "invalid pattern %q", pattern)
	}
	return re, nil
}

// fromJSONAny converts decoded JSON into a Value, keeping integral
// json.Number values as ints.
func fromJSONAny(v interface{}) Value {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return Int(n)
		}
		if f, err := t.Float64(); err == nil {
			return Float(f)
		}
		return StringValue(t.String())
	case []interface{}:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, fromJSONAny(item))
		}
		return List(items...)
	case map[string]interface{}:
		converted := make(map[string]interface{}, len(t))
		for k, item := range t {
			converted[k] = fromJSONAny(item)
		}
		return FromAny(converted)
	default:
		return FromAny(v)
	}
}

func marshalYAML(v Value, indent int) (Value, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(v.ToAny()); err != nil {
		return None, evalError(err, "value is not YAML serializable")
	}
	if err := enc.Close(); err != nil {
		return None, evalError(err, "value is not YAML serializable")
	}
	return StringValue(buf.String()), nil
}
