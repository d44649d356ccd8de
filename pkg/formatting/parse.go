// Package formatting recovers structured values from free-form model output.
package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrParseFailed is returned when no candidate in the content decodes.
var ErrParseFailed = errors.New("failed to parse response")

// ErrPartial is matched by a *PartialError.
var ErrPartial = errors.New("response partially parsed")

// PartialError reports the object members Parse had to drop. The value
// returned alongside it holds every member that did decode.
type PartialError struct {
	Fields []string
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%s: dropped %s", ErrPartial, strings.Join(e.Fields, ", "))
}

func (e *PartialError) Unwrap() error { return ErrPartial }

var fence = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// excerpt bounds how much of the rejected content an error carries.
const excerpt = 200

// Parse decodes content into T. It tries, in order, the whole content, the
// body of the first markdown code fence, and the first balanced object
// embedded in prose. Candidates that are not valid JSON are skipped.
//
// When no candidate decodes whole, the first JSON object that decodes
// member by member is returned with a *PartialError: members whose type
// does not fit T keep their zero value.
func Parse[T any](content string) (T, error) {
	content = strings.TrimSpace(content)

	var objects []string
	for _, candidate := range candidates(content) {
		if !gjson.Valid(candidate) {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(candidate), &v); err == nil {
			return v, nil
		}
		objects = append(objects, candidate)
	}

	for _, candidate := range objects {
		if v, dropped, ok := decodeMembers[T](candidate); ok {
			return v, &PartialError{Fields: dropped}
		}
	}

	var zero T
	if len(content) > excerpt {
		content = content[:excerpt] + "..."
	}
	return zero, fmt.Errorf("%w: %q", ErrParseFailed, content)
}

// decodeMembers decodes each member of a JSON object into v on its own.
// ok is false when candidate is not an object or no member fits.
func decodeMembers[T any](candidate string) (v T, dropped []string, ok bool) {
	obj := gjson.Parse(candidate)
	if !obj.IsObject() {
		return v, nil, false
	}

	obj.ForEach(func(key, value gjson.Result) bool {
		member := []byte("{" + key.Raw + ":" + value.Raw + "}")
		var trial T
		if err := json.Unmarshal(member, &trial); err != nil {
			dropped = append(dropped, key.String())
			return true
		}
		if err := json.Unmarshal(member, &v); err != nil {
			dropped = append(dropped, key.String())
			return true
		}
		ok = true
		return true
	})
	return v, dropped, ok
}

func candidates(content string) []string {
	out := []string{content}
	if m := fence.FindStringSubmatch(content); m != nil {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if obj, ok := ExtractObject(content); ok {
		out = append(out, obj)
	}
	return out
}

// ExtractObject returns the first balanced {...} in s, ignoring braces
// inside string literals.
func ExtractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	var depth int
	var quoted, escaped bool
	for i, c := range []byte(s[start:]) {
		switch {
		case escaped:
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '{':
			depth++
		case c == '}':
			if depth--; depth == 0 {
				return s[start : start+i+1], true
			}
		}
	}
	return "", false
}
