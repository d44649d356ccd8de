package fetch_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/inquest/internal/fetch"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse spaces", "Regulation   28\t\treport", "Regulation 28 report"},
		{"strip controls", "Matters\x00 of\x07 concern", "Matters of concern"},
		{"blank lines", "one\n\n\n\ntwo", "one\n\ntwo"},
		{"carriage returns", "one\r\ntwo\rthree", "one\ntwo\nthree"},
		{"trim lines", "  one  \n  two  ", "one\ntwo"},
		{"nfc", "cafe\u0301", "caf\u00e9"},
		{"empty", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fetch.CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

type scriptedExtractor struct {
	name string
	text string
	err  error
}

func (s scriptedExtractor) Name() string                   { return s.name }
func (s scriptedExtractor) Extract([]byte) (string, error) { return s.text, s.err }

func TestExtractTextFallback(t *testing.T) {
	tests := []struct {
		name    string
		chain   []fetch.Extractor
		want    string
		wantErr error
	}{
		{
			name: "primary",
			chain: []fetch.Extractor{
				scriptedExtractor{name: "a", text: "primary text"},
				scriptedExtractor{name: "b", text: "secondary text"},
			},
			want: "primary text",
		},
		{
			name: "falls back on error",
			chain: []fetch.Extractor{
				scriptedExtractor{name: "a", err: errors.New("bad xref")},
				scriptedExtractor{name: "b", text: "secondary text"},
			},
			want: "secondary text",
		},
		{
			name: "falls back on empty text",
			chain: []fetch.Extractor{
				scriptedExtractor{name: "a", text: "  \n "},
				scriptedExtractor{name: "b", text: "secondary text"},
			},
			want: "secondary text",
		},
		{
			name: "all fail",
			chain: []fetch.Extractor{
				scriptedExtractor{name: "a", err: errors.New("bad xref")},
			},
			wantErr: fetch.ErrExtractFailed,
		},
		{
			name:    "no chain",
			wantErr: fetch.ErrNoExtractor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fetch.ExtractText(tt.chain, []byte("%PDF-1.4"))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ExtractText() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractors(t *testing.T) {
	chain, err := fetch.Extractors("pdfcpu", "unknown", "LEDONGTHUC")
	if err != nil {
		t.Fatalf("Extractors() error = %v", err)
	}
	if len(chain) != 2 || chain[0].Name() != "pdfcpu" || chain[1].Name() != "ledongthuc" {
		t.Errorf("chain = %v, want pdfcpu then ledongthuc", chain)
	}
}
