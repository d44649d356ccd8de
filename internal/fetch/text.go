package fetch

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t\x{00A0}]+`)
	blankLines      = regexp.MustCompile(`\n\s*\n+`)
)

// CleanText normalizes extracted text: NFC form, control characters
// removed, runs of spaces collapsed, and at most one blank line between
// paragraphs.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	t := transform.Chain(norm.NFC, runes.Remove(runes.Predicate(isNoise)))
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}

	s = horizontalSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")

	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func isNoise(r rune) bool {
	return (unicode.IsControl(r) && r != '\n' && r != '\t') || r == unicode.ReplacementChar
}
