package adapters

import (
	"fmt"
	"maps"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/JaimeStill/inquest/internal/fetch"
)

const (
	DefaultMaxPages     = 10
	DefaultRequestDelay = 2.0
	DefaultPageParam    = "paged"
)

// Settings is the decoded per-source adapter configuration. Unknown keys
// in the source's config bag are ignored.
type Settings struct {
	MaxPages         int               `mapstructure:"max_pages" json:"max_pages"`
	RequestDelay     float64           `mapstructure:"request_delay" json:"request_delay"`
	Keywords         []string          `mapstructure:"keywords" json:"keywords"`
	Categories       []string          `mapstructure:"categories" json:"categories"`
	Selectors        map[string]string `mapstructure:"selectors" json:"selectors"`
	UseRenderedFetch bool              `mapstructure:"use_rendered_fetch" json:"use_rendered_fetch"`
	WaitSelector     string            `mapstructure:"wait_selector" json:"wait_selector"`
	PageParam        string            `mapstructure:"page_param" json:"page_param"`
	StripPrefixes    []string          `mapstructure:"strip_prefixes" json:"strip_prefixes"`
}

// DecodeSettings decodes a config bag over the profile's defaults.
// Selectors merge key by key; list keys replace the default only when
// present, so an explicit empty list disables that filter.
func DecodeSettings(bag map[string]any, p Profile) (Settings, error) {
	s := Settings{
		MaxPages:      DefaultMaxPages,
		RequestDelay:  DefaultRequestDelay,
		PageParam:     DefaultPageParam,
		Keywords:      p.Keywords,
		Categories:    p.Categories,
		StripPrefixes: p.StripPrefixes,
	}

	var decoded Settings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return Settings{}, err
	}
	if err := dec.Decode(bag); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, ok := bag["max_pages"]; ok {
		s.MaxPages = decoded.MaxPages
	}
	if _, ok := bag["request_delay"]; ok {
		s.RequestDelay = decoded.RequestDelay
	}
	if _, ok := bag["keywords"]; ok {
		s.Keywords = decoded.Keywords
	}
	if _, ok := bag["categories"]; ok {
		s.Categories = decoded.Categories
	}
	if _, ok := bag["strip_prefixes"]; ok {
		s.StripPrefixes = decoded.StripPrefixes
	}
	if decoded.PageParam != "" {
		s.PageParam = decoded.PageParam
	}
	s.UseRenderedFetch = decoded.UseRenderedFetch
	s.WaitSelector = decoded.WaitSelector

	s.Selectors = maps.Clone(p.Selectors)
	if s.Selectors == nil {
		s.Selectors = make(map[string]string)
	}
	maps.Copy(s.Selectors, decoded.Selectors)

	if s.MaxPages < 1 {
		return Settings{}, fmt.Errorf("%w: max_pages must be positive", ErrInvalidConfig)
	}
	if s.RequestDelay < 0 {
		return Settings{}, fmt.Errorf("%w: request_delay must not be negative", ErrInvalidConfig)
	}

	return s, nil
}

// Delay returns the politeness interval between requests.
func (s Settings) Delay() time.Duration {
	return time.Duration(s.RequestDelay * float64(time.Second))
}

// FetchOptions returns the fetch options pages of this source need.
func (s Settings) FetchOptions() fetch.Options {
	if !s.UseRenderedFetch {
		return fetch.Options{Mode: fetch.Plain}
	}
	return fetch.Options{Mode: fetch.Rendered, WaitSelector: s.WaitSelector}
}

// Relevant applies the keyword and category filters. Each configured
// filter must match; an empty filter accepts everything.
func (s Settings) Relevant(text string, categories []string) bool {
	return matchKeywords(s.Keywords, text) && matchCategories(s.Categories, categories)
}

func matchKeywords(keywords []string, text string) bool {
	if len(keywords) == 0 {
		return true
	}
	text = strings.ToLower(text)
	for _, k := range keywords {
		if k != "" && strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// matchCategories matches by substring in either direction, so a
// configured "Hospital Death" accepts "Hospital Death (Clinical)" and
// a configured "Medical cause of death" accepts a "Medical cause" tag.
func matchCategories(wanted, have []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		w = strings.ToLower(w)
		for _, h := range have {
			h = strings.ToLower(h)
			if h == "" {
				continue
			}
			if strings.Contains(h, w) || strings.Contains(w, h) {
				return true
			}
		}
	}
	return false
}

// listingURL sets the page parameter on base for pages after the first.
func listingURL(base, param string, page int) string {
	if page <= 1 {
		return base
	}
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set(param, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
