package template

import (
	"regexp"
	"sort"
	"strings"
)

func registerListFilters(r *Registry) {
	mustFilter(r, FilterEntry{
		Name:        "combine",
		Description: "Merge maps left to right, later keys overriding earlier ones",
		Category:    CategoryList,
		MaxArgs:     -1,
		Args: []ArgSpec{
			{Name: "maps", Description: "Maps merged over the input"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			out := NewMap()
			merge := func(v Value) {
				if m, ok := v.AsMap(); ok {
					for _, key := range m.Keys() {
						item, _ := m.Get(key)
						out.Set(key, item)
					}
				}
			}
			merge(input)
			for _, arg := range args {
				merge(arg)
			}
			return MapValue(out), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "dict2items",
		Description: "Convert a map into a list of {key, value} entries",
		Category:    CategoryList,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			m, ok := input.AsMap()
			if !ok {
				return List(), nil
			}
			items := make([]Value, 0, m.Len())
			for _, key := range m.Keys() {
				v, _ := m.Get(key)
				entry := NewMap()
				entry.Set("key", StringValue(key))
				entry.Set("value", v)
				items = append(items, MapValue(entry))
			}
			return List(items...), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "items2dict",
		Description: "Convert a list of {key, value} entries back into a map",
		Category:    CategoryList,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			items, ok := input.AsList()
			if !ok {
				return MapValue(NewMap()), nil
			}
			out := NewMap()
			for _, item := range items {
				m, ok := item.AsMap()
				if !ok {
					continue
				}
				key, ok := m.Get("key")
				if !ok {
					continue
				}
				keyStr, ok := key.AsString()
				if !ok {
					continue
				}
				if v, ok := m.Get("value"); ok {
					out.Set(keyStr, v)
				}
			}
			return MapValue(out), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "dictsort",
		Description: "Sort a map by key or value",
		Category:    CategoryList,
		MaxArgs:     3,
		Args: []ArgSpec{
			{Name: "case_sensitive", Description: "Compare without lowercasing first"},
			{Name: "by", Description: "\"key\" or \"value\""},
			{Name: "reverse", Description: "Sort descending"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			m, ok := input.AsMap()
			if !ok {
				return input, nil
			}
			caseSensitive := boolArg(args, 0, false)
			by := strArg(args, 1, "key")
			reverse := boolArg(args, 2, false)

			keys := m.Keys()
			sort.SliceStable(keys, func(i, j int) bool {
				var a, b string
				if by == "value" {
					av, _ := m.Get(keys[i])
					bv, _ := m.Get(keys[j])
					a, b = av.String(), bv.String()
				} else {
					a, b = keys[i], keys[j]
				}
				if !caseSensitive {
					a, b = strings.ToLower(a), strings.ToLower(b)
				}
				if reverse {
					return a > b
				}
				return a < b
			})

			out := NewMap()
			for _, key := range keys {
				v, _ := m.Get(key)
				out.Set(key, v)
			}
			return MapValue(out), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "flatten",
		Description: "Flatten nested lists into a single list",
		Category:    CategoryList,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			var out []Value
			var walk func(v Value)
			walk = func(v Value) {
				if items, ok := v.AsList(); ok {
					for _, item := range items {
						walk(item)
					}
					return
				}
				out = append(out, v)
			}
			walk(input)
			return List(out...), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "map",
		Description: "Extract an attribute from each map in a list",
		Category:    CategoryList,
		MinArgs:     1,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "attribute", Description: "Key extracted from each entry"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			attr := strArg(args, 0, "")
			items, ok := input.AsList()
			if !ok || attr == "" {
				return input, nil
			}
			out := make([]Value, 0, len(items))
			for _, item := range items {
				if m, ok := item.AsMap(); ok {
					if v, ok := m.Get(attr); ok {
						out = append(out, v)
					} else {
						out = append(out, None)
					}
					continue
				}
				out = append(out, item)
			}
			return List(out...), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "select",
		Description: "Keep the list items that pass a test",
		Category:    CategoryList,
		MinArgs:     1,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "test", Description: "Test name, such as defined, truthy, equalto, match"},
			{Name: "argument", Description: "Comparison value or pattern for the test"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			return filterByTest(input, args, true)
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "reject",
		Description: "Drop the list items that pass a test",
		Category:    CategoryList,
		MinArgs:     1,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "test", Description: "Test name, such as defined, truthy, equalto, match"},
			{Name: "argument", Description: "Comparison value or pattern for the test"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			return filterByTest(input, args, false)
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "zip",
		Description: "Zip lists together into a list of tuples",
		Category:    CategoryList,
		MaxArgs:     -1,
		Args: []ArgSpec{
			{Name: "lists", Description: "Lists zipped with the input"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			var sequences [][]Value
			for _, v := range append([]Value{input}, args...) {
				if items, ok := v.AsList(); ok {
					sequences = append(sequences, items)
				}
			}
			if len(sequences) == 0 {
				return List(), nil
			}
			minLen := len(sequences[0])
			for _, seq := range sequences[1:] {
				if len(seq) < minLen {
					minLen = len(seq)
				}
			}
			out := make([]Value, 0, minLen)
			for i := 0; i < minLen; i++ {
				tuple := make([]Value, 0, len(sequences))
				for _, seq := range sequences {
					tuple = append(tuple, seq[i])
				}
				out = append(out, List(tuple...))
			}
			return List(out...), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "slice",
		Description: "Split a list into chunks of the given size",
		Category:    CategoryList,
		MinArgs:     1,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "size", Description: "Chunk size"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			return chunkList(input, int(intArg(args, 0, 1)), nil)
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "batch",
		Description: "Split a list into chunks, padding the last chunk with a fill value",
		Category:    CategoryList,
		MinArgs:     1,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "size", Description: "Chunk size"},
			{Name: "fill", Description: "Value padding the last chunk to size"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			var fill *Value
			if len(args) > 1 {
				fill = &args[1]
			}
			return chunkList(input, int(intArg(args, 0, 1)), fill)
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "sort",
		Description: "Sort a list, numbers and strings by natural order",
		Category:    CategoryList,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "reverse", Description: "Sort descending"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			items, ok := input.AsList()
			if !ok {
				return input, nil
			}
			reverse := boolArg(args, 0, false)
			out := make([]Value, len(items))
			copy(out, items)
			sort.SliceStable(out, func(i, j int) bool {
				cmp, err := out[i].Compare(out[j])
				if err != nil {
					// Mixed kinds fall back to canonical string order.
					cmp = strings.Compare(out[i].String(), out[j].String())
				}
				if reverse {
					return cmp > 0
				}
				return cmp < 0
			})
			return List(out...), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "unique",
		Description: "Drop duplicate list items, keeping first occurrences",
		Category:    CategoryList,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			items, ok := input.AsList()
			if !ok {
				return input, nil
			}
			var out []Value
			for _, item := range items {
				seen := false
				for _, kept := range out {
					if kept.Equal(item) {
						seen = true
						break
					}
				}
				if !seen {
					out = append(out, item)
				}
			}
			return List(out...), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "first",
		Description: "Return the first item of a list or character of a string",
		Category:    CategoryList,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			if items, ok := input.AsList(); ok {
				if len(items) == 0 {
					return None, nil
				}
				return items[0], nil
			}
			if s, ok := input.AsString(); ok {
				runes := []rune(s)
				if len(runes) == 0 {
					return None, nil
				}
				return StringValue(string(runes[0])), nil
			}
			return None, nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "last",
		Description: "Return the last item of a list or character of a string",
		Category:    CategoryList,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			if items, ok := input.AsList(); ok {
				if len(items) == 0 {
					return None, nil
				}
				return items[len(items)-1], nil
			}
			if s, ok := input.AsString(); ok {
				runes := []rune(s)
				if len(runes) == 0 {
					return None, nil
				}
				return StringValue(string(runes[len(runes)-1])), nil
			}
			return None, nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "join",
		Description: "Join list items into a string with a separator",
		Category:    CategoryList,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "separator", Description: "String placed between items, empty by default"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			items, ok := input.AsList()
			if !ok {
				return StringValue(input.String()), nil
			}
			sep := strArg(args, 0, "")
			parts := make([]string, 0, len(items))
			for _, item := range items {
				parts = append(parts, item.String())
			}
			return StringValue(strings.Join(parts, sep)), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "default",
		Description: "Substitute a fallback for none, or for any falsy value when the second argument is true",
		Category:    CategoryList,
		MinArgs:     1,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "fallback", Description: "Value substituted for the input"},
			{Name: "falsy", Description: "Also substitute for falsy inputs, not just none"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			useFalsy := boolArg(args, 1, false)
			if input.IsNone() || (useFalsy && !input.Truth()) {
				return args[0], nil
			}
			return input, nil
		},
	})
}

// filterByTest implements select (keep=true) and reject (keep=false).
func filterByTest(input Value, args []Value, keep bool) (Value, error) {
	items, ok := input.AsList()
	if !ok {
		return input, nil
	}
	test := strArg(args, 0, "")

	var re *regexp.Regexp
	if test == "match" || test == "search" {
		pattern := strArg(args, 1, "")
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return None, evalError(err, "invalid pattern %q", pattern)
		}
	}

	var out []Value
	for _, item := range items {
		pass := false
		switch test {
		case "defined":
			pass = !item.IsNone()
		case "undefined", "none":
			pass = item.IsNone()
		case "truthy":
			pass = item.Truth()
		case "falsy":
			pass = !item.Truth()
		case "equalto":
			pass = len(args) > 1 && item.Equal(args[1])
		case "match", "search":
			if s, ok := item.AsString(); ok {
				pass = re.MatchString(s)
			}
		case "version_compare":
			if s, ok := item.AsString(); ok {
				pass = s == strArg(args, 1, "")
			}
		default:
			// Unknown tests keep everything in select, nothing changes in
			// reject.
			pass = keep
		}
		if pass == keep {
			out = append(out, item)
		}
	}
	return List(out...), nil
}

// chunkList splits a list into fixed-size chunks. When fill is non-nil the
// last chunk is padded to size with it.
func chunkList(input Value, size int, fill *Value) (Value, error) {
	if size <= 0 {
		return List(), nil
	}
	items, ok := input.AsList()
	if !ok {
		return List(), nil
	}
	var out []Value
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunk := make([]Value, end-start, size)
		copy(chunk, items[start:end])
		if fill != nil {
			for len(chunk) < size {
				chunk = append(chunk, *fill)
			}
		}
		out = append(out, List(chunk...))
	}
	return List(out...), nil
}
