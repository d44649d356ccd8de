package adapters

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/JaimeStill/inquest/internal/fetch"
	"github.com/JaimeStill/inquest/internal/sources"
)

// Selector keys understood by the selector adapter. A key mapped to an
// empty selector is skipped.
const (
	SelListContainer = "list_container"
	SelTitle         = "title"
	SelLink          = "link"
	SelDate          = "date"
	SelCategories    = "categories"
	SelExcerpt       = "excerpt"
	SelCoroner       = "coroner"
	SelPagination    = "pagination"
	SelContent       = "content"
	SelPDFLink       = "pdf_link"
	SelDeceased      = "deceased_name"
	SelDateOfDeath   = "date_of_death"
	SelDateOfFinding = "date_of_finding"
	SelLocation      = "location"
	SelAddressee     = "addressee"
)

// Profile holds the defaults an adapter applies before a source's own
// configuration.
type Profile struct {
	Name          string
	Version       string
	Selectors     map[string]string
	Keywords      []string
	Categories    []string
	StripPrefixes []string
}

// GenericProfile serves sources whose markup follows common article
// listing conventions; most sources only override selectors.
var GenericProfile = Profile{
	Name:    "selector",
	Version: "1.0.0",
	Selectors: map[string]string{
		SelListContainer: "article",
		SelTitle:         "h2 a, h3 a",
		SelLink:          "a[href]",
		SelDate:          "time, .date",
		SelCategories:    ".category a, .categories a",
		SelExcerpt:       ".excerpt, .summary",
		SelCoroner:       ".coroner",
		SelPagination:    "a.next, a[rel='next']",
		SelContent:       ".entry-content, main article, article",
		SelPDFLink:       "a[href$='.pdf'], a[href*='.pdf']",
		SelDeceased:      ".deceased",
		SelDateOfDeath:   ".date-of-death",
		SelDateOfFinding: ".date-of-finding",
		SelLocation:      ".location",
		SelAddressee:     ".addressee",
	},
	StripPrefixes: []string{"Coroner:", "Deceased:", "Name:", "Date of death:"},
}

// SelectorAdapter parses pages with CSS selectors from its profile and the
// source configuration.
type SelectorAdapter struct {
	profile  Profile
	base     string
	settings Settings
	now      func() time.Time
}

// NewSelector returns a Factory building selector adapters over p.
func NewSelector(p Profile) Factory {
	return func(src sources.Source) (Adapter, error) {
		settings, err := DecodeSettings(src.Config, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Code, err)
		}
		if _, err := url.Parse(src.BaseURL); err != nil || src.BaseURL == "" {
			return nil, fmt.Errorf("%w: %s: base url %q", ErrInvalidConfig, src.Code, src.BaseURL)
		}
		return &SelectorAdapter{
			profile:  p,
			base:     strings.TrimRight(src.BaseURL, "/"),
			settings: settings,
			now:      time.Now,
		}, nil
	}
}

func (a *SelectorAdapter) Name() string       { return a.profile.Name }
func (a *SelectorAdapter) Version() string    { return a.profile.Version }
func (a *SelectorAdapter) Settings() Settings { return a.settings }

func (a *SelectorAdapter) ListingURL(page int) string {
	return listingURL(a.base, a.settings.PageParam, page)
}

func (a *SelectorAdapter) ParseListing(doc *fetch.Document, pageURL string) ([]Candidate, string, error) {
	root, err := parse(doc)
	if err != nil {
		return nil, "", err
	}
	base := resolveBase(doc, pageURL)

	var candidates []Candidate
	root.Find(a.sel(SelListContainer)).Each(func(_ int, item *goquery.Selection) {
		if c, ok := a.candidate(item, base); ok {
			candidates = append(candidates, c)
		}
	})

	next := ""
	if sel := a.sel(SelPagination); sel != "" {
		if href, ok := root.Find(sel).First().Attr("href"); ok {
			next = resolve(base, href)
		}
	}
	return candidates, next, nil
}

func (a *SelectorAdapter) candidate(item *goquery.Selection, base *url.URL) (Candidate, bool) {
	titleSel := item.Find(a.sel(SelTitle)).First()
	title := text(titleSel)
	if title == "" {
		return Candidate{}, false
	}

	href, ok := titleSel.Attr("href")
	if !ok || href == "" {
		if sel := a.sel(SelLink); sel != "" {
			href, _ = item.Find(sel).First().Attr("href")
		}
	}
	if href == "" {
		return Candidate{}, false
	}
	sourceURL := resolve(base, href)

	var categories []string
	if sel := a.sel(SelCategories); sel != "" {
		item.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if t := text(s); t != "" {
				categories = append(categories, t)
			}
		})
	}
	summary := a.field(item, SelExcerpt)

	if !a.settings.Relevant(title+" "+summary, categories) {
		return Candidate{}, false
	}

	return Candidate{
		ExternalID:    ExternalIDFromURL(sourceURL),
		Title:         title,
		SourceURL:     sourceURL,
		Summary:       summary,
		CoronerName:   a.field(item, SelCoroner),
		DateOfFinding: ParseDate(a.field(item, SelDate)),
		Categories:    categories,
		Metadata: map[string]any{
			"scraped_at":      a.now().UTC().Format(time.RFC3339),
			"adapter_version": a.profile.Version,
		},
	}, true
}

func (a *SelectorAdapter) ParseDetail(doc *fetch.Document, c Candidate) (Candidate, error) {
	root, err := parse(doc)
	if err != nil {
		return c, err
	}
	out := c.clone()
	base := resolveBase(doc, c.SourceURL)

	content := root.Find(a.sel(SelContent)).First()
	if a.sel(SelContent) != "" && content.Length() > 0 {
		html, err := goquery.OuterHtml(content)
		if err == nil {
			out.ContentHTML = html
		}
		out.ContentText = fetch.CleanText(blockText(content))
	} else if html, txt := readable(doc.Body, base); txt != "" {
		out.ContentHTML = html
		out.ContentText = fetch.CleanText(txt)
		out.Metadata["content_fallback"] = "readability"
	}

	if sel := a.sel(SelPDFLink); sel != "" {
		if href, ok := root.Find(sel).First().Attr("href"); ok && href != "" {
			out.PDFURL = resolve(base, href)
		}
	}

	if v := a.field(root.Selection, SelDeceased); v != "" {
		out.DeceasedName = v
	}
	if d := ParseDate(a.field(root.Selection, SelDateOfDeath)); d != nil {
		out.DateOfDeath = d
	}
	if out.DateOfFinding == nil {
		out.DateOfFinding = ParseDate(a.field(root.Selection, SelDateOfFinding))
	}
	if out.CoronerName == "" {
		out.CoronerName = a.field(root.Selection, SelCoroner)
	}
	if v := a.field(root.Selection, SelLocation); v != "" {
		out.Metadata["location"] = v
	}
	if v := a.field(root.Selection, SelAddressee); v != "" {
		out.Metadata["addressees"] = v
	}

	return out, nil
}

func (a *SelectorAdapter) sel(key string) string {
	return a.settings.Selectors[key]
}

// field returns the prefix-stripped text of the first match of key in s.
func (a *SelectorAdapter) field(s *goquery.Selection, key string) string {
	sel := a.sel(key)
	if sel == "" {
		return ""
	}
	return stripPrefixes(text(s.Find(sel).First()), a.settings.StripPrefixes)
}

func parse(doc *fetch.Document) (*goquery.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrParse)
	}
	root, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, doc.URL, err)
	}
	return root, nil
}

func resolveBase(doc *fetch.Document, fallback string) *url.URL {
	for _, raw := range []string{doc.FinalURL, fallback, doc.URL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil {
			return u
		}
	}
	return &url.URL{}
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func stripPrefixes(s string, prefixes []string) string {
	for _, p := range prefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return strings.TrimSpace(s[len(p):])
		}
	}
	return s
}

// blockText collects the text nodes under s in document order, one per
// line, skipping scripts and styles.
func blockText(s *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, n *goquery.Selection) {
			switch goquery.NodeName(n) {
			case "#text":
				if t := strings.TrimSpace(n.Text()); t != "" {
					parts = append(parts, t)
				}
			case "script", "style", "noscript", "#comment":
			default:
				walk(n)
			}
		})
	}
	walk(s)
	return strings.Join(parts, "\n")
}

// readable extracts the main article of a page whose content selector
// matched nothing.
func readable(body []byte, base *url.URL) (html, txt string) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", ""
	}
	article, err := readability.FromReader(bytes.NewReader(body), base)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(article.Content), strings.TrimSpace(article.TextContent)
}
