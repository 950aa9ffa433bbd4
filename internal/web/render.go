package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/joseph-ayodele/tupa-scraper/internal/common"
)

// RenderFetcher loads pages in a headless browser so script-built content
// is present in the returned HTML. The browser starts on first use.
type RenderFetcher struct {
	timeout time.Duration
	limits  *hostLimits
	logger  *slog.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func NewRenderFetcher(cfg common.ScraperConfig, logger *slog.Logger) *RenderFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderFetcher{
		timeout: cfg.Timeout,
		limits:  newHostLimits(cfg.PolitenessDelay),
		logger:  logger,
	}
}

// BrowserAvailable reports whether a local Chromium binary can be found.
func BrowserAvailable() (string, bool) {
	return launcher.LookPath()
}

func (r *RenderFetcher) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}
	l := launcher.New().Headless(true)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, common.NewAppError(common.CodeFetch, "launch browser", err)
	}
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, common.NewAppError(common.CodeFetch, "connect browser", err)
	}
	r.launcher, r.browser = l, b
	r.logger.Info("web.render.browser_started")
	return b, nil
}

// Fetch navigates to rawURL, waits for the load event and returns the DOM as HTML.
func (r *RenderFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := parseHTTPURL(rawURL)
	if err != nil {
		return nil, err
	}
	if err := r.limits.Wait(ctx, u.Host); err != nil {
		return nil, err
	}
	b, err := r.connect()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, common.NewAppError(common.CodeFetch, "open tab", err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx).Timeout(r.timeout)
	if err := p.Navigate(u.String()); err != nil {
		r.logger.Warn("web.render.navigate_failed", "url", rawURL, "error", err)
		return nil, common.NewAppError(common.CodeFetch, "navigate "+rawURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, common.NewAppError(common.CodeFetch, "wait load "+rawURL, err)
	}
	html, err := p.HTML()
	if err != nil {
		return nil, common.NewAppError(common.CodeFetch, "read html "+rawURL, err)
	}
	r.logger.Debug("web.render.ok", "url", rawURL, "bytes", len(html), "dur_ms", time.Since(start).Milliseconds())
	return &Page{URL: rawURL, StatusCode: http.StatusOK, Body: []byte(html)}, nil
}

// Close shuts the browser down if it was started.
func (r *RenderFetcher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}
