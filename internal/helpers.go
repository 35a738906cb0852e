package internal

import "strconv"

// ContextValue returns the value stored under key with Set, or T's zero value.
func ContextValue[T any](rc *RequestContext, key any) T {
	if v, ok := rc.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// InputDefault returns the input value of name converted to T, or
// defaultValue when it is missing, empty or cannot be parsed.
func InputDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](in Input, name string, defaultValue T) T {
	raw := in.String(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// convertParam converts raw to T.
func convertParam[T ~string | ~int | ~int64 | ~float64 | ~bool](raw string) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		return any(raw).(T), true
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	}
	return zero, false
}
