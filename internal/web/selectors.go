package web

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
)

var requirementMarkers = []string{"requisito", "documento", "presenta", "adjunta"}

// firstText returns the first element text, across selectors in order, longer
// than minLen characters, clipped to maxLen.
func firstText(doc *goquery.Document, selectors []string, minLen, maxLen int) string {
	for _, sel := range selectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			t := enrich.CollapseSpace(s.Text())
			if enrich.RuneLen(t) > minLen {
				found = enrich.Clip(t, maxLen)
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// cleanTitle drops a trailing " | site" suffix from document titles.
func cleanTitle(s string) string {
	if i := strings.Index(s, " | "); i > 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func metaDescription(doc *goquery.Document) string {
	return enrich.CollapseSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
}

// requirementsNear collects list items that follow a heading or label
// mentioning requirements, plus items inside requirement-classed containers.
func requirementsNear(doc *goquery.Document, minLen, maxLen, max int) []string {
	var out []string
	collect := func(list *goquery.Selection) {
		list.Find("li").Each(func(_ int, li *goquery.Selection) {
			t := enrich.CollapseSpace(li.Text())
			if n := enrich.RuneLen(t); n >= minLen && n <= maxLen {
				out = append(out, t)
			}
		})
	}

	doc.Find("h1, h2, h3, h4, h5, h6, strong, b, p, dt, caption, summary").Each(func(_ int, s *goquery.Selection) {
		label := enrich.CollapseSpace(s.Text())
		if label == "" || enrich.RuneLen(label) > 120 || !enrich.ContainsAny(label, requirementMarkers...) {
			return
		}
		list := s.NextAllFiltered("ul, ol").First()
		if list.Length() == 0 {
			list = s.Parent().NextAllFiltered("ul, ol").First()
		}
		collect(list)
	})
	collect(doc.Find(`[class*="requisit"], [id*="requisit"], [class*="requirement"]`))
	return enrich.DedupCap(out, max)
}

// contentListItems returns list items outside navigation chrome.
func contentListItems(doc *goquery.Document, minLen, maxLen, max int) []string {
	var out []string
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		if li.ParentsFiltered("nav, header, footer, menu").Length() > 0 {
			return
		}
		t := enrich.CollapseSpace(li.Text())
		if n := enrich.RuneLen(t); n >= minLen && n <= maxLen {
			out = append(out, t)
		}
	})
	return enrich.DedupCap(out, max)
}

type entityHint struct {
	code  string
	words []string
}

var entityHints = []entityHint{
	{"SUNAT", []string{"sunat"}},
	{"RENIEC", []string{"reniec"}},
	{"SUNARP", []string{"sunarp"}},
	{"MINSA", []string{"minsa", "salud"}},
	{"MTC", []string{"mtc"}},
	{"MUNI", []string{"municap", "municipal"}},
}

var entityLabelSelectors = []string{".entidad", ".entity", ".institucion", ".organismo"}

// inferEntity picks the agency from the URL first, then from a short entity
// label on the page. The label text becomes the display name when present.
func inferEntity(pc *PageContext) (code, name string) {
	for _, h := range entityHints {
		if enrich.ContainsAny(pc.URL.String(), h.words...) {
			return h.code, ""
		}
	}
	label := firstText(pc.Doc, entityLabelSelectors, 1, 100)
	if label == "" {
		return "", ""
	}
	for _, h := range entityHints {
		if enrich.ContainsAny(label, h.words...) {
			return h.code, label
		}
	}
	return "", label
}
