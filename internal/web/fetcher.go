package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/joseph-ayodele/tupa-scraper/internal/common"
)

// ErrStatus is returned when a page answers with anything but 200.
var ErrStatus = errors.New("unexpected http status")

// Page is a fetched HTML document.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher retrieves one page. Implementations apply per-host politeness.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// HTTPFetcher fetches static pages with resty.
type HTTPFetcher struct {
	client *resty.Client
	logger *slog.Logger
}

// NewHTTPFetcher builds a client with the configured user agent, timeout and retry budget.
func NewHTTPFetcher(cfg common.ScraperConfig, logger *slog.Logger) *HTTPFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New()
	client.SetHeader("user-agent", cfg.UserAgent)
	client.SetHeader("accept-language", "es-PE,es;q=0.9,en;q=0.5")
	client.SetHeader("accept", "text/html,application/xhtml+xml")
	client.SetTimeout(cfg.Timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	client.SetRetryCount(cfg.Retries)
	client.SetRetryWaitTime(500 * time.Millisecond)
	client.SetRetryMaxWaitTime(5 * time.Second)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || (res != nil && res.StatusCode() >= http.StatusInternalServerError)
	})

	// one request per politeness delay and host, retries included
	limits := newHostLimits(cfg.PolitenessDelay)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		u, err := url.Parse(req.URL)
		if err != nil {
			return err
		}
		return limits.Wait(req.Context(), u.Host)
	})
	return &HTTPFetcher{client: client, logger: logger}
}

// Fetch GETs rawURL; the client waits out the host's politeness delay first.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := parseHTTPURL(rawURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := f.client.R().SetContext(ctx).Get(u.String())
	dur := time.Since(start)
	if err != nil {
		f.logger.Warn("web.fetch.error", "url", rawURL, "dur_ms", dur.Milliseconds(), "error", err)
		return nil, common.NewAppError(common.CodeFetch, "GET "+rawURL, err)
	}
	if res.StatusCode() != http.StatusOK {
		f.logger.Warn("web.fetch.status", "url", rawURL, "status", res.StatusCode(), "dur_ms", dur.Milliseconds())
		return nil, common.NewAppError(common.CodeFetch, fmt.Sprintf("GET %s: %d", rawURL, res.StatusCode()), ErrStatus)
	}
	f.logger.Debug("web.fetch.ok", "url", rawURL, "bytes", len(res.Body()), "dur_ms", dur.Milliseconds())
	return &Page{URL: rawURL, StatusCode: res.StatusCode(), Body: res.Body()}, nil
}

func parseHTTPURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedScheme, rawURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u, nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedScheme, rawURL)
	}
}
