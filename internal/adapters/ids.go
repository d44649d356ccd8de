package adapters

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
)

const (
	maxExternalID = 80
	keepExternal  = 70
)

// ExternalID joins the non-empty parts with "_". Results longer than 80
// characters keep their first 70 and gain an 8-character md5 suffix so the
// identifier stays deterministic.
func ExternalID(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	id := strings.Join(kept, "_")
	if utf8.RuneCountInString(id) <= maxExternalID {
		return id
	}
	sum := md5.Sum([]byte(id))
	return prefix(id, keepExternal) + "_" + hex.EncodeToString(sum[:])[:8]
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// ExternalIDFromURL derives an external id from the last non-empty path
// segment of rawURL, falling back to the dash-joined path.
func ExternalIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ExternalID(rawURL)
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ExternalID(u.Host)
	}
	segments := strings.Split(path, "/")
	if last := segments[len(segments)-1]; last != "" {
		return ExternalID(last)
	}
	return ExternalID(strings.ReplaceAll(path, "/", "-"))
}

var ordinal = regexp.MustCompile(`(\d+)(st|nd|rd|th)\b`)

var dateLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"2/1/2006",
	"2-1-2006",
	"2006-01-02",
	"2.1.2006",
}

// ParseDate parses the day-first dates coronial sites publish, trying
// free-form parsing last. It returns nil when nothing matches.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(ordinal.ReplaceAllString(s, "$1"))
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	if t, err := dateparse.ParseAny(s); err == nil {
		return &t
	}
	return nil
}
