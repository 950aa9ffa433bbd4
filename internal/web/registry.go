package web

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

// PageContext is what a site handler sees of a fetched page.
type PageContext struct {
	URL  *url.URL
	Doc  *goquery.Document
	Text string // visible text, one line per block element
	UIT  float64
}

// Handler turns a parsed page into a draft record, or reports that the page
// holds no procedure.
type Handler func(pc *PageContext) (*entity.Procedure, bool)

// Rule binds a host predicate to a handler.
type Rule struct {
	Name   string
	Match  func(host string) bool
	Handle Handler
}

// Registry dispatches on the first matching rule, in registration order,
// and falls back to a catch-all rule.
type Registry struct {
	rules    []Rule
	fallback Rule
}

func NewRegistry(fallback Rule, rules ...Rule) *Registry {
	return &Registry{rules: rules, fallback: fallback}
}

// DefaultRegistry tries the agency sites before the shared gob.pe portal so
// that sunat.gob.pe never lands on the portal handler.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Rule{Name: "generic", Handle: extractGeneric},
		Rule{Name: "sunat", Match: HostIs("sunat.gob.pe"), Handle: extractSunat},
		Rule{Name: "reniec", Match: HostIs("reniec.gob.pe"), Handle: extractReniec},
		Rule{Name: "mtc", Match: HostIs("mtc.gob.pe"), Handle: extractMTC},
		Rule{Name: "gob.pe", Match: HostIs("gob.pe"), Handle: extractGobPe},
	)
}

// HostIs matches domain itself and any of its subdomains.
func HostIs(domain string) func(string) bool {
	domain = strings.ToLower(domain)
	return func(host string) bool {
		host = strings.ToLower(host)
		return host == domain || strings.HasSuffix(host, "."+domain)
	}
}

// Lookup returns the rule for host.
func (r *Registry) Lookup(host string) Rule {
	for _, rule := range r.rules {
		if rule.Match != nil && rule.Match(host) {
			return rule
		}
	}
	return r.fallback
}
