package template

import (
	"strings"
	"unicode"
)

func registerStringFilters(r *Registry) {
	mustFilter(r, FilterEntry{
		Name:        "upper",
		Description: "Convert a string to uppercase",
		Category:    CategoryString,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			return StringValue(strings.ToUpper(stringOf(input))), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "lower",
		Description: "Convert a string to lowercase",
		Category:    CategoryString,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			return StringValue(strings.ToLower(stringOf(input))), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "capitalize",
		Description: "Capitalize the first character of a string, lowercasing the rest",
		Category:    CategoryString,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			s := stringOf(input)
			if s == "" {
				return StringValue(""), nil
			}
			runes := []rune(s)
			head := strings.ToUpper(string(runes[0]))
			tail := strings.ToLower(string(runes[1:]))
			return StringValue(head + tail), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "trim",
		Description: "Strip leading and trailing whitespace, or a custom cutset",
		Category:    CategoryString,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "cutset", Description: "Characters to strip instead of whitespace"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			s := stringOf(input)
			if cutset := strArg(args, 0, ""); cutset != "" {
				return StringValue(strings.Trim(s, cutset)), nil
			}
			return StringValue(strings.TrimSpace(s)), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "center",
		Description: "Center a string in a field of the given width",
		Category:    CategoryString,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "width", Description: "Field width, 80 by default"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			s := stringOf(input)
			width := int(intArg(args, 0, 80))
			n := len([]rune(s))
			if n >= width {
				return StringValue(s), nil
			}
			left := (width - n) / 2
			right := width - n - left
			return StringValue(strings.Repeat(" ", left) + s + strings.Repeat(" ", right)), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "wordwrap",
		Description: "Wrap text at the given line width",
		Category:    CategoryString,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "width", Description: "Maximum line width, 79 by default"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			s := stringOf(input)
			width := int(intArg(args, 0, 79))
			if width <= 0 {
				return StringValue(s), nil
			}
			return StringValue(wordwrap(s, width)), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "length",
		Description: "Return the length of a string, list, or map",
		Category:    CategoryString,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			n, _ := input.Len()
			return Int(int64(n)), nil
		},
	})

	// Accepts truncate(length), truncate(length, end), and
	// truncate(length, killwords, end).
	mustFilter(r, FilterEntry{
		Name:        "truncate",
		Description: "Truncate a string to the given length, appending an end marker",
		Category:    CategoryString,
		MaxArgs:     3,
		Args: []ArgSpec{
			{Name: "length", Description: "Maximum length including the end marker"},
			{Name: "killwords", Description: "Cut mid-word instead of at word boundaries"},
			{Name: "end", Description: "Marker appended after the cut, \"...\" by default"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			s := stringOf(input)
			length := int(intArg(args, 0, 255))
			killwords := false
			end := "..."
			switch {
			case len(args) >= 3:
				killwords = args[1].Truth() || strArg(args, 1, "") == "true"
				end = strArg(args, 2, "...")
			case len(args) == 2:
				end = strArg(args, 1, "...")
			}
			return StringValue(truncate(s, length, killwords, end)), nil
		},
	})
}

func truncate(s string, length int, killwords bool, end string) string {
	if len(s) <= length {
		return s
	}
	if killwords {
		keep := length - len(end)
		if keep < 0 {
			keep = 0
		}
		runes := []rune(s)
		if keep > len(runes) {
			keep = len(runes)
		}
		return string(runes[:keep]) + end
	}

	// Fit whole words, then fall back to a character cut when none fit.
	words := strings.Fields(s)
	var b strings.Builder
	count := 0
	for _, word := range words {
		need := len(word)
		if b.Len() > 0 {
			need++
		}
		if count+need+len(end) > length {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
			count++
		}
		b.WriteString(word)
		count += len(word)
	}
	if b.Len() == 0 && len(words) > 0 {
		keep := length - len(end)
		if keep < 0 {
			keep = 0
		}
		runes := []rune(s)
		if keep > len(runes) {
			keep = len(runes)
		}
		b.WriteString(string(runes[:keep]))
	}
	b.WriteString(end)
	return b.String()
}

// wordwrap breaks text into lines no longer than width, preserving existing
// newlines. Words longer than width are emitted on their own line unbroken.
func wordwrap(s string, width int) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if len([]rune(line)) <= width {
			out = append(out, line)
			continue
		}
		var cur strings.Builder
		curLen := 0
		for _, word := range strings.FieldsFunc(line, unicode.IsSpace) {
			wl := len([]rune(word))
			if curLen > 0 && curLen+1+wl > width {
				out = append(out, cur.String())
				cur.Reset()
				curLen = 0
			}
			if curLen > 0 {
				cur.WriteByte(' ')
				curLen++
			}
			cur.WriteString(word)
			curLen += wl
		}
		if cur.Len() > 0 {
			out = append(out, cur.String())
		}
	}
	return strings.Join(out, "\n")
}
