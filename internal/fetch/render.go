package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	waitSelectorTimeout = 10 * time.Second
	networkIdleTimeout  = 15 * time.Second
)

var errNotIdle = errors.New("network still busy")

// renderer owns a lazily started headless browser.
type renderer struct {
	userAgent string
	timeout   time.Duration
	logger    *slog.Logger

	mu            sync.Mutex
	browser       context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

func newRenderer(userAgent string, timeout time.Duration, logger *slog.Logger) *renderer {
	return &renderer{
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger,
	}
}

func (r *renderer) start() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(r.userAgent),
		chromedp.DisableGPU,
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// The browser process is bound to the context of its first Run.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("%w: start browser: %w", ErrRender, err)
	}

	r.browser = browserCtx
	r.cancelAlloc = cancelAlloc
	r.cancelBrowser = cancelBrowser

	r.logger.Info("headless browser started")
	return browserCtx, nil
}

// render navigates a fresh tab to url, waits for the main document to load
// and the network to go idle and, when set, for waitSelector to be visible,
// then returns the page's outer HTML. A document status of 400 or above is
// an ErrStatus failure, as for plain fetches.
func (r *renderer) render(ctx context.Context, url, waitSelector string) (*Document, error) {
	browser, err := r.start()
	if err != nil {
		return nil, err
	}

	tab, cancelTab := chromedp.NewContext(browser)
	defer cancelTab()

	tab, cancelTimeout := context.WithTimeout(tab, r.timeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	idle := newIdleWatch()
	chromedp.ListenTarget(tab, idle.handle)

	if err := chromedp.Run(tab, page.SetLifecycleEventsEnabled(true)); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, url, err)
	}

	resp, err := chromedp.RunResponse(tab, chromedp.Navigate(url))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, url, err)
	}
	status, err := documentStatus(resp)
	if err != nil {
		return nil, err
	}

	if err := idle.wait(tab, min(networkIdleTimeout, r.timeout/2)); err != nil {
		if tab.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRender, url, err)
		}
		r.logger.Warn("network not idle, capturing page as is", "url", url, "error", err)
	}

	if waitSelector != "" {
		waitCtx, cancelWait := context.WithTimeout(tab, waitSelectorTimeout)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
		cancelWait()
		if err != nil {
			r.logger.Warn("wait selector not visible", "url", url, "selector", waitSelector, "error", err)
		}
	}

	var html, location string
	if err := chromedp.Run(tab,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, url, err)
	}

	return &Document{
		URL:         url,
		FinalURL:    location,
		StatusCode:  status,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
		Rendered:    true,
	}, nil
}

// documentStatus reads the main document's HTTP status. A navigation that
// reported no response, such as a file or data URL, has status zero.
func documentStatus(resp *network.Response) (int, error) {
	if resp == nil {
		return 0, nil
	}
	status := int(resp.Status)
	if status >= http.StatusBadRequest {
		return status, fmt.Errorf("%w: %d", ErrStatus, status)
	}
	return status, nil
}

// idleWatch closes idle when the main frame's committed document reports
// the networkIdle lifecycle event. Events for the blank page a new tab
// starts on, and for child frames, are ignored.
type idleWatch struct {
	mu     sync.Mutex
	loader cdp.LoaderID
	once   sync.Once
	idle   chan struct{}
}

func newIdleWatch() *idleWatch {
	return &idleWatch{idle: make(chan struct{})}
}

func (w *idleWatch) handle(ev any) {
	switch e := ev.(type) {
	case *page.EventFrameNavigated:
		if e.Frame == nil || e.Frame.ParentID != "" || e.Frame.URL == "about:blank" {
			return
		}
		w.mu.Lock()
		w.loader = e.Frame.LoaderID
		w.mu.Unlock()
	case *page.EventLifecycleEvent:
		if e.Name != "networkIdle" {
			return
		}
		w.mu.Lock()
		ok := w.loader != "" && e.LoaderID == w.loader
		w.mu.Unlock()
		if ok {
			w.once.Do(func() { close(w.idle) })
		}
	}
}

// wait blocks until the network is idle, d elapses, or ctx ends.
func (w *idleWatch) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-w.idle:
		return nil
	case <-timer.C:
		return errNotIdle
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *renderer) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}

	r.cancelBrowser()
	r.cancelAlloc()
	r.browser = nil
	r.logger.Info("headless browser stopped")
	return nil
}
