package query

import (
	"net/url"
	"time"

	"github.com/araddon/dateparse"
)

// Param reads an optional filter value from a query string. Missing,
// empty, and unparseable values all yield nil.
func Param[T any](values url.Values, key string, parse func(string) (T, error)) *T {
	raw := values.Get(key)
	if raw == "" {
		return nil
	}
	v, err := parse(raw)
	if err != nil {
		return nil
	}
	return &v
}

// Text accepts any non-empty value as is.
func Text(s string) (string, error) { return s, nil }

// Date accepts the loose date and time layouts dateparse recognizes,
// such as "2024-03-01", "March 1, 2024", or RFC 3339.
func Date(s string) (time.Time, error) {
	return dateparse.ParseAny(s)
}
