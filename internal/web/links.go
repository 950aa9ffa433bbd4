package web

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joseph-ayodele/tupa-scraper/internal/common"
	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
)

var linkSelectors = []string{
	`a[href*="/tramites/"]`,
	`a[href*="/procedimiento"]`,
	`a[href*="/servicio"]`,
	`a[href*="tupa"]`,
	".tramite-link a",
	".procedimiento-link a",
	`[data-testid="search-result"] a`,
}

var procedureURLWords = []string{
	"tramite", "procedimiento", "servicio", "solicitud",
	"dni", "ruc", "licencia", "certificado", "registro",
}

// DiscoverLinks fetches a listing page and returns up to max distinct
// procedure URLs it links to, resolved against the page URL.
func (e *Extractor) DiscoverLinks(ctx context.Context, seedURL string, max int) ([]string, error) {
	base, err := parseHTTPURL(seedURL)
	if err != nil {
		return nil, err
	}
	page, err := e.fetcher.Fetch(ctx, seedURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger.Warn("web.discover.fetch_failed", "url", seedURL, "error", err)
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		e.logger.Warn("web.discover.parse_failed", "url", seedURL, "error", err)
		return nil, nil
	}

	seen := map[string]struct{}{}
	var links []string
	for _, sel := range linkSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, ok := a.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				return true
			}
			ref, err := base.Parse(strings.TrimSpace(href))
			if err != nil {
				return true
			}
			ref.Fragment = ""
			abs := ref.String()
			if _, dup := seen[abs]; dup || !IsProcedureURL(abs) || !govHost(ref.Hostname()) {
				return true
			}
			if _, err := parseHTTPURL(abs); err != nil {
				return true
			}
			seen[abs] = struct{}{}
			links = append(links, abs)
			return max <= 0 || len(links) < max
		})
		if max > 0 && len(links) >= max {
			break
		}
	}
	e.logger.Info("web.discover.ok", "url", seedURL, "links", len(links))
	return links, nil
}

// IsProcedureURL reports whether a URL looks like a single procedure page.
func IsProcedureURL(rawURL string) bool {
	return rawURL != "" && enrich.ContainsAny(rawURL, procedureURLWords...)
}

var govHost = HostIs("gob.pe")

// LoadURLList reads the lines that start with http, in file order. Blanks,
// comments and anything else are ignored.
func LoadURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.WrapError(err, "open url list")
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(strings.ToLower(line), "http") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, common.WrapError(err, "read url list")
	}
	return urls, nil
}
