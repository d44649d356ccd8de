package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const (
	robotsTTL      = 24 * time.Hour
	robotsRetryTTL = time.Minute
	robotsMaxBody  = 512 * 1024
)

// Robots checks URLs against their host's robots.txt. Entries are cached
// per host; a missing or unreachable robots.txt allows everything. An
// unreachable one is asked for again after a minute.
type Robots struct {
	client    *http.Client
	userAgent string
	ttl       time.Duration
	now       func() time.Time

	mu    sync.RWMutex
	hosts map[string]robotsEntry
}

type robotsEntry struct {
	group   *robotstxt.Group
	expires time.Time
}

// NewRobots creates a checker identifying itself as userAgent.
func NewRobots(client *http.Client, userAgent string) *Robots {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Robots{
		client:    client,
		userAgent: userAgent,
		ttl:       robotsTTL,
		now:       time.Now,
		hosts:     make(map[string]robotsEntry),
	}
}

// Allowed reports whether rawURL may be fetched.
func (r *Robots) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("robots: parse url: %w", err)
	}
	if u.Host == "" {
		return false, fmt.Errorf("robots: empty host in %q", rawURL)
	}

	entry := r.entry(ctx, u)
	if entry.group == nil {
		return true, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return entry.group.Test(path), nil
}

// CrawlDelay returns the cached crawl delay for host, or zero.
func (r *Robots) CrawlDelay(host string) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.hosts[strings.ToLower(host)]
	if !ok || entry.group == nil {
		return 0
	}
	return entry.group.CrawlDelay
}

func (r *Robots) entry(ctx context.Context, u *url.URL) robotsEntry {
	host := strings.ToLower(u.Host)

	r.mu.RLock()
	entry, ok := r.hosts[host]
	r.mu.RUnlock()

	if ok && r.now().Before(entry.expires) {
		return entry
	}

	data, ttl := r.fetch(ctx, u.Scheme, host)
	entry = robotsEntry{expires: r.now().Add(ttl)}
	if data != nil {
		entry.group = data.FindGroup(r.userAgent)
	}

	if ctx.Err() != nil {
		return entry
	}

	r.mu.Lock()
	r.hosts[host] = entry
	r.mu.Unlock()

	return entry
}

// fetch returns the parsed robots.txt for host and how long the answer
// holds. Transport failures and server errors hold for robotsRetryTTL.
func (r *Robots) fetch(ctx context.Context, scheme, host string) (*robotstxt.RobotsData, time.Duration) {
	if scheme == "" {
		scheme = "https"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scheme+"://"+host+"/robots.txt", http.NoBody)
	if err != nil {
		return nil, r.ttl
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, robotsRetryTTL
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, robotsRetryTTL
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, r.ttl
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, robotsMaxBody))
	if err != nil {
		return nil, robotsRetryTTL
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, r.ttl
	}
	return data, r.ttl
}
