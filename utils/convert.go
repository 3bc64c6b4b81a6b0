package utils

// AnyToString extracts a string from a decoded JSON value, returning ""
// for anything else.
func AnyToString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// AnyToInt extracts a JSON number as an int. Decoded JSON numbers
// arrive as float64.
func AnyToInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// AnyToIntDefault is AnyToInt with a fallback for absent or
// non-numeric values.
func AnyToIntDefault(v any, def int) int {
	if n, ok := AnyToInt(v); ok {
		return n
	}
	return def
}
