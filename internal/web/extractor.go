package web

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

// Extractor fetches procedure pages and maps them onto canonical records.
type Extractor struct {
	fetcher  Fetcher
	registry *Registry
	uit      float64
	logger   *slog.Logger
}

func NewExtractor(fetcher Fetcher, registry *Registry, uitValue float64, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Extractor{fetcher: fetcher, registry: registry, uit: uitValue, logger: logger}
}

// Extract returns the record on rawURL. Fetch failures, non-200 answers and
// pages without a title yield ok=false and no error; only a non-http scheme
// or a cancelled context is an error.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*entity.Procedure, bool, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := parseHTTPURL(rawURL)
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		e.logger.Warn("web.extract.fetch_failed", "url", rawURL, "error", err)
		return nil, false, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		e.logger.Warn("web.extract.parse_failed", "url", rawURL, "error", err)
		return nil, false, nil
	}

	rule := e.registry.Lookup(u.Hostname())
	pc := &PageContext{URL: u, Doc: doc, Text: BlockText(doc.Selection), UIT: e.uit}
	p, ok := rule.Handle(pc)
	if !ok || p == nil {
		e.logger.Info("web.extract.empty", "url", rawURL, "rule", rule.Name)
		return nil, false, nil
	}
	p.SourceURL = rawURL
	if err := enrich.Finalize(p); err != nil {
		e.logger.Warn("web.extract.invalid", "url", rawURL, "rule", rule.Name, "error", err)
		return nil, false, nil
	}
	e.logger.Info("web.extract.ok", "url", rawURL, "rule", rule.Name, "tupa_code", p.TupaCode)
	return p, true, nil
}
