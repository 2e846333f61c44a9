package template

// Builtin category names, surfaced through the registry listings and the
// builtins CLI command.
const (
	CategoryString   = "String Operations"
	CategoryList     = "List/Dict Operations"
	CategoryMath     = "Math/Logic Operations"
	CategoryEncoding = "Encoding/Decoding"
	CategoryPath     = "Path Operations"
	CategoryUtility  = "Utility Functions"
	CategoryLookup   = "Lookup Functions"
	CategoryGen      = "Generator Functions"
)

// registerBuiltins installs the builtin filters and functions into r.
func registerBuiltins(r *Registry) {
	registerStringFilters(r)
	registerListFilters(r)
	registerMathFilters(r)
	registerEncodingFilters(r)
	registerPathFilters(r)
	registerFunctions(r)
}

// mustFilter registers a builtin filter. Builtin names are unique by
// construction, so a failure here is a programming error.
func mustFilter(r *Registry, e FilterEntry) {
	if err := r.RegisterFilter(e); err != nil {
		panic(err)
	}
}

func mustFunction(r *Registry, e FunctionEntry) {
	if err := r.RegisterFunction(e); err != nil {
		panic(err)
	}
}

// stringOf returns the string payload, or the empty string for any other
// kind. Builtins that only operate on text treat non-strings as empty rather
// than erroring, matching how templates usually feed them.
func stringOf(v Value) string {
	if s, ok := v.AsString(); ok {
		return s
	}
	return ""
}

// intArg returns args[i] as an integer, or def when absent or unconvertible.
func intArg(args []Value, i int, def int64) int64 {
	if i < len(args) {
		if n, ok := args[i].AsInt(); ok {
			return n
		}
	}
	return def
}

// strArg returns args[i] as a string, or def when absent or not a string.
func strArg(args []Value, i int, def string) string {
	if i < len(args) {
		if s, ok := args[i].AsString(); ok {
			return s
		}
	}
	return def
}

// boolArg returns the truthiness of args[i], or def when absent.
func boolArg(args []Value, i int, def bool) bool {
	if i < len(args) {
		return args[i].Truth()
	}
	return def
}
