package processor_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/internal/processor"
)

func TestSlug(t *testing.T) {
	id := uuid.MustParse("3f2b8c1d-0000-4000-8000-000000000000")

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Missed Sepsis in A&E", "missed-sepsis-in-a-e-3f2b8c1d"},
		{"accents", "Défaillance à l'hôpital Zürich", "defaillance-a-l-hopital-zurich-3f2b8c1d"},
		{"punctuation runs", "  --Insulin:  double dose!!  ", "insulin-double-dose-3f2b8c1d"},
		{"no usable characters", "§§§", "3f2b8c1d"},
		{"non-latin dropped", "Ward 7 病院", "ward-7-3f2b8c1d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := processor.Slug(tt.title, id); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugCapsLength(t *testing.T) {
	id := uuid.New()
	got := processor.Slug(strings.Repeat("word ", 60), id)

	base, suffix, ok := strings.Cut(got, "-"+id.String()[:8])
	if !ok || suffix != "" {
		t.Fatalf("Slug = %q, want finding id suffix", got)
	}
	if len(base) > 150 {
		t.Errorf("base length = %d, want <= 150", len(base))
	}
	if strings.HasSuffix(base, "-") {
		t.Errorf("base %q ends with a dash", base)
	}
}
