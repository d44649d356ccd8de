package processor

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugBase = 150

var foldAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug derives a post slug from title, suffixed with the first eight
// characters of the finding id so equal titles stay distinct.
func Slug(title string, findingID uuid.UUID) string {
	folded, _, err := transform.String(foldAccents, strings.ToLower(title))
	if err != nil {
		folded = strings.ToLower(title)
	}

	var b strings.Builder
	dash := false
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	base := b.String()
	if len(base) > maxSlugBase {
		base = base[:maxSlugBase]
	}
	base = strings.Trim(base, "-")

	suffix := findingID.String()[:8]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
