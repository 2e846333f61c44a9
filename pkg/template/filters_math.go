package template

import (
	"math"
	"math/rand"
	"strconv"
)

func registerMathFilters(r *Registry) {
	mustFilter(r, FilterEntry{
		Name:        "abs",
		Description: "Return the absolute value of a number",
		Category:    CategoryMath,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			if n, ok := input.AsInt(); ok && input.Kind() != KindFloat {
				if n < 0 {
					n = -n
				}
				return Int(n), nil
			}
			if f, ok := input.AsFloat(); ok {
				return Float(math.Abs(f)), nil
			}
			return Int(0), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "round",
		Description: "Round a number to the given number of decimal places",
		Category:    CategoryMath,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "precision", Description: "Decimal places to keep, 0 by default"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			if input.Kind() == KindInt {
				return input, nil
			}
			f, ok := input.AsFloat()
			if !ok {
				return Int(0), nil
			}
			precision := intArg(args, 0, 0)
			mult := math.Pow(10, float64(precision))
			rounded := math.Round(f*mult) / mult
			if rounded == math.Trunc(rounded) {
				return Int(int64(rounded)), nil
			}
			return Float(rounded), nil
		},
	})

	// Without arguments the input bounds the draw; with one argument it is
	// the upper bound and the input the lower; with two arguments the input
	// is ignored. String and list inputs draw a random element.
	mustFilter(r, FilterEntry{
		Name:        "random",
		Description: "Return a random number or element",
		Category:    CategoryMath,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "start", Description: "Lower bound, inclusive"},
			{Name: "end", Description: "Upper bound, inclusive"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			if len(args) >= 2 {
				start := intArg(args, 0, 0)
				end := intArg(args, 1, 0)
				return Int(randInclusive(start, end)), nil
			}
			if len(args) == 1 {
				end := intArg(args, 0, 0)
				start := int64(0)
				if n, ok := input.AsInt(); ok {
					start = n
				}
				return Int(randInclusive(start, end)), nil
			}
			if n, ok := input.AsInt(); ok && input.Kind() != KindString {
				return Int(randInclusive(0, n)), nil
			}
			if s, ok := input.AsString(); ok {
				runes := []rune(s)
				if len(runes) == 0 {
					return StringValue(""), nil
				}
				return StringValue(string(runes[rand.Intn(len(runes))])), nil
			}
			if items, ok := input.AsList(); ok {
				if len(items) == 0 {
					return Int(randInclusive(0, 100)), nil
				}
				return items[rand.Intn(len(items))], nil
			}
			return Int(randInclusive(0, 100)), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "bool",
		Description: "Convert a value to its truthiness",
		Category:    CategoryMath,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			return Bool(input.Truth()), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "ternary",
		Description: "Return the first argument when the input is truthy, the second otherwise",
		Category:    CategoryMath,
		MinArgs:     1,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "truthy", Description: "Value returned for truthy input"},
			{Name: "falsy", Description: "Value returned for falsy input, false by default"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			if input.Truth() {
				return args[0], nil
			}
			if len(args) > 1 {
				return args[1], nil
			}
			return Bool(false), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "float",
		Description: "Convert a value to a float, with an optional default",
		Category:    CategoryMath,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "default", Description: "Value returned when the input is not numeric"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			if f, ok := input.AsFloat(); ok {
				return Float(f), nil
			}
			def := 0.0
			if len(args) > 0 {
				if f, ok := args[0].AsFloat(); ok {
					def = f
				}
			}
			return Float(def), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "int",
		Description: "Convert a value to an integer, with optional default and base",
		Category:    CategoryMath,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "default", Description: "Value returned when the input does not parse"},
			{Name: "base", Description: "Numeric base for string inputs, 10 by default"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			def := intArg(args, 0, 0)
			base := int(intArg(args, 1, 10))
			if input.Kind() == KindInt || input.Kind() == KindBool || input.Kind() == KindFloat {
				if n, ok := input.AsInt(); ok {
					return Int(n), nil
				}
				if f, ok := input.AsFloat(); ok {
					return Int(int64(f)), nil
				}
			}
			s := stringOf(input)
			if n, err := strconv.ParseInt(s, base, 64); err == nil {
				return Int(n), nil
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return Int(int64(f)), nil
			}
			return Int(def), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "log",
		Description: "Return the logarithm of a number, natural by default",
		Category:    CategoryMath,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "base", Description: "Logarithm base, e by default"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			f, ok := input.AsFloat()
			if !ok || f <= 0 {
				return Float(math.NaN()), nil
			}
			base := math.E
			if len(args) > 0 {
				if b, ok := args[0].AsFloat(); ok {
					base = b
				}
			}
			switch {
			case math.Abs(base-math.E) < 1e-15:
				return Float(math.Log(f)), nil
			case base == 10:
				return Float(math.Log10(f)), nil
			case base == 2:
				return Float(math.Log2(f)), nil
			default:
				return Float(math.Log(f) / math.Log(base)), nil
			}
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "pow",
		Description: "Raise a number to a power",
		Category:    CategoryMath,
		MinArgs:     1,
		MaxArgs:     1,
		Args: []ArgSpec{
			{Name: "exponent", Description: "Power to raise the input to"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			base, ok := input.AsFloat()
			if !ok {
				return Float(math.NaN()), nil
			}
			exp, ok := args[0].AsFloat()
			if !ok {
				exp = 1
			}
			return Float(math.Pow(base, exp)), nil
		},
	})

	mustFilter(r, FilterEntry{
		Name:        "sqrt",
		Description: "Return the square root of a number",
		Category:    CategoryMath,
		MaxArgs:     0,
		Fn: func(input Value, _ []Value) (Value, error) {
			f, ok := input.AsFloat()
			if !ok || f < 0 {
				return Float(math.NaN()), nil
			}
			return Float(math.Sqrt(f)), nil
		},
	})

	// The filter form takes its bounds from the input value: value|range is
	// range(value), value|range(end) is range(value, end), and
	// value|range(end, step) adds the step.
	mustFilter(r, FilterEntry{
		Name:        "range",
		Description: "Generate a list of integers in a half-open range",
		Category:    CategoryMath,
		MaxArgs:     2,
		Args: []ArgSpec{
			{Name: "end", Description: "Upper bound, exclusive"},
			{Name: "step", Description: "Increment, may be negative"},
		},
		Fn: func(input Value, args []Value) (Value, error) {
			var start, end, step int64
			switch len(args) {
			case 0:
				end, _ = input.AsInt()
				step = 1
			case 1:
				start, _ = input.AsInt()
				end = intArg(args, 0, 0)
				step = 1
			default:
				start, _ = input.AsInt()
				end = intArg(args, 0, 0)
				step = intArg(args, 1, 1)
			}
			return makeRange(start, end, step), nil
		},
	})
}

func randInclusive(start, end int64) int64 {
	if end < start {
		start, end = end, start
	}
	return start + rand.Int63n(end-start+1)
}

func makeRange(start, end, step int64) Value {
	var out []Value
	switch {
	case step > 0:
		for i := start; i < end; i += step {
			out = append(out, Int(i))
		}
	case step < 0:
		for i := start; i > end; i += step {
			out = append(out, Int(i))
		}
	}
	return List(out...)
}
