package internal

import "strconv"

// Scalar lists the types the typed request helpers convert to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the value stored under key with Set, or the zero
// value of T when it is missing or of another type.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// Param returns the URL parameter name converted to T.
// Rule defaults apply when the URL does not carry the parameter.
func Param[T Scalar](c Context, name string) T {
	v, _ := parseScalar[T](c.Param(name))
	return v
}

// Query returns the query parameter name converted to T.
func Query[T Scalar](c Context, name string) T {
	v, _ := parseScalar[T](c.Query(name))
	return v
}

// QueryDefault is like Query but returns defaultValue when the parameter
// is missing or does not parse.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	v, ok := parseScalar[T](c.Query(name))
	if !ok {
		return defaultValue
	}
	return v
}

// ExtensionAs returns the extension registered as name when it has type T.
func ExtensionAs[T any](c Context, name string) (T, bool) {
	ext, _ := c.Extension(name)
	v, ok := ext.(T)
	return v, ok
}

// ServiceAs returns the service registered as name when it has type T.
func ServiceAs[T any](c Context, name string) (T, bool) {
	svc, _ := c.Service(name)
	v, ok := svc.(T)
	return v, ok
}

func parseScalar[T Scalar](raw string) (T, bool) {
	var zero T
	if raw == "" {
		return zero, false
	}

	var (
		v   any
		err error
	)
	switch any(zero).(type) {
	case string:
		v = raw
	case int:
		v, err = strconv.Atoi(raw)
	case int64:
		v, err = strconv.ParseInt(raw, 10, 64)
	case float64:
		v, err = strconv.ParseFloat(raw, 64)
	case bool:
		v, err = strconv.ParseBool(raw)
	default:
		return zero, false
	}
	if err != nil {
		return zero, false
	}
	return v.(T), true
}
