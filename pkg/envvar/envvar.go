// Package envvar applies environment variable overrides onto config fields.
// Each helper is a no-op when the variable name is empty, the variable is
// unset, or its value does not parse.
package envvar

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Lookup returns the value of name when both are non-empty.
func Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}

func String(name string, dst *string) {
	if v, ok := Lookup(name); ok {
		*dst = v
	}
}

func Int(name string, dst *int) {
	if v, ok := Lookup(name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// PositiveInt is Int restricted to values greater than zero.
func PositiveInt(name string, dst *int) {
	if v, ok := Lookup(name); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func Float(name string, dst *float64) {
	if v, ok := Lookup(name); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func Bool(name string, dst *bool) {
	if v, ok := Lookup(name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Duration stores the raw value after checking it parses as a time.Duration.
func Duration(name string, dst *string) {
	if v, ok := Lookup(name); ok {
		if _, err := time.ParseDuration(v); err == nil {
			*dst = v
		}
	}
}

// List splits a comma-separated value, trimming blanks.
func List(name string, dst *[]string) {
	v, ok := Lookup(name)
	if !ok {
		return
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}
