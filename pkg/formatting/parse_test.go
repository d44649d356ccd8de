package formatting_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/inquest/pkg/formatting"
)

type sample struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    sample
		wantErr error
	}{
		{"direct", `{"name":"test","value":42}`, sample{"test", 42}, nil},
		{"padded", "  {\"name\":\"padded\",\"value\":1}\n", sample{"padded", 1}, nil},
		{"json fence", "```json\n{\"name\":\"fenced\",\"value\":7}\n```", sample{"fenced", 7}, nil},
		{"bare fence", "```\n{\"name\":\"bare\",\"value\":3}\n```", sample{"bare", 3}, nil},
		{"fence in prose", "Here is the result:\n```json\n{\"name\":\"wrapped\",\"value\":5}\n```\nDone.", sample{"wrapped", 5}, nil},
		{"object in prose", `The classification is {"name":"prose","value":9} based on the report.`, sample{"prose", 9}, nil},
		{"wrong field type keeps the rest", `{"name":"x","value":"nine"}`, sample{Name: "x"}, formatting.ErrPartial},
		{"fenced with wrong field type", "```json\n{\"value\":[1],\"name\":\"y\"}\n```", sample{Name: "y"}, formatting.ErrPartial},
		{"no member fits", `{"name":7,"value":"nine"}`, sample{}, formatting.ErrParseFailed},
		{"broken fence falls back to nothing", "```json\n{broken\n```", sample{}, formatting.ErrParseFailed},
		{"unbalanced", `result: {"name":"open"`, sample{}, formatting.ErrParseFailed},
		{"plain text", "not json at all", sample{}, formatting.ErrParseFailed},
		{"empty", "", sample{}, formatting.ErrParseFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[sample](tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParsePartialNamesDroppedFields(t *testing.T) {
	_, err := formatting.Parse[sample](`{"name":"x","value":"nine","extra":true}`)

	var partial *formatting.PartialError
	if !errors.As(err, &partial) {
		t.Fatalf("error = %v, want *PartialError", err)
	}
	if len(partial.Fields) != 1 || partial.Fields[0] != "value" {
		t.Errorf("Fields = %v, want [value]", partial.Fields)
	}
	if !strings.Contains(err.Error(), "value") {
		t.Errorf("Error() = %q, want the dropped field named", err)
	}
}

func TestParseOtherShapes(t *testing.T) {
	m, err := formatting.Parse[map[string]any](`{"key":"value"}`)
	if err != nil || m["key"] != "value" {
		t.Errorf("Parse map = %v, %v", m, err)
	}

	xs, err := formatting.Parse[[]int](`[1,2,3]`)
	if err != nil || len(xs) != 3 || xs[2] != 3 {
		t.Errorf("Parse slice = %v, %v", xs, err)
	}
}

func TestParseErrorExcerpt(t *testing.T) {
	_, err := formatting.Parse[sample](strings.Repeat("x", 1000))
	if err == nil {
		t.Fatal("Parse succeeded on plain text")
	}
	if n := len(err.Error()); n > 300 {
		t.Errorf("error length = %d, want a bounded excerpt", n)
	}
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"leading prose", `answer: {"a":1} thanks`, `{"a":1}`, true},
		{"nested", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`, true},
		{"brace in string", `{"a":"}{"} tail`, `{"a":"}{"}`, true},
		{"escaped quote", `{"a":"say \"hi\" }"}`, `{"a":"say \"hi\" }"}`, true},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`, true},
		{"no object", "plain text", "", false},
		{"unterminated", `{"a":{"b":1}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := formatting.ExtractObject(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ExtractObject = %q, want %q", got, tt.want)
			}
		})
	}
}
