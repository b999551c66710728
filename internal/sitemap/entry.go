// Package sitemap implements bounded-depth, cycle-safe traversal of an XML
// sitemap graph (sitemap-index and urlset documents per sitemaps.org schema
// 0.9), producing a flat list of urlset entries.
package sitemap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/ethicrawl/internal/urlx"
)

// lastmodFormats enumerates the W3C datetime layouts a <lastmod> value may
// take. The set is deliberately generous: real-world sitemaps are sloppy
// about which of the several W3C-legal forms they emit.
var lastmodFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05.999999999",
}

func validateLastmod(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	for _, layout := range lastmodFormats {
		if _, err := time.Parse(layout, value); err == nil {
			return value, nil
		}
	}
	return "", fmt.Errorf("invalid lastmod date format: %s", value)
}

var validChangeFreqs = map[string]struct{}{
	"always":  {},
	"hourly":  {},
	"daily":   {},
	"weekly":  {},
	"monthly": {},
	"yearly":  {},
	"never":   {},
}

func validateChangefreq(value string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if _, ok := validChangeFreqs[normalized]; !ok {
		return "", fmt.Errorf("invalid change frequency: %q", value)
	}
	return normalized, nil
}

func validatePriority(value string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("priority must be a number, got %q", value)
	}
	if p < 0.0 || p > 1.0 {
		return 0, fmt.Errorf("priority must be between 0.0 and 1.0, got %v", p)
	}
	return p, nil
}

// IndexEntry is a <sitemap> reference found inside a sitemap index: a
// location and an optional last-modified date.
type IndexEntry struct {
	Loc     urlx.Url
	Lastmod string
}

// NewIndexEntry validates lastmod (if non-empty) and builds an IndexEntry.
func NewIndexEntry(loc urlx.Url, lastmod string) (IndexEntry, error) {
	lm, err := validateLastmod(lastmod)
	if err != nil {
		return IndexEntry{}, err
	}
	return IndexEntry{Loc: loc, Lastmod: lm}, nil
}

func (e IndexEntry) String() string {
	if e.Lastmod != "" {
		return fmt.Sprintf("%s (last modified: %s)", e.Loc.String(), e.Lastmod)
	}
	return e.Loc.String()
}

// UrlsetEntry is a <url> found inside a urlset document: a location plus the
// optional lastmod/changefreq/priority hints.
type UrlsetEntry struct {
	Loc        urlx.Url
	Lastmod    string
	Changefreq string
	Priority   *float64
}

// NewUrlsetEntry validates the optional fields and builds a UrlsetEntry.
// changefreq and priority are accepted as raw strings, mirroring how they
// arrive as XML character data; an empty string for either means absent.
func NewUrlsetEntry(loc urlx.Url, lastmod, changefreq, priority string) (UrlsetEntry, error) {
	lm, err := validateLastmod(lastmod)
	if err != nil {
		return UrlsetEntry{}, err
	}

	var cf string
	if strings.TrimSpace(changefreq) != "" {
		cf, err = validateChangefreq(changefreq)
		if err != nil {
			return UrlsetEntry{}, err
		}
	}

	var prio *float64
	if strings.TrimSpace(priority) != "" {
		p, err := validatePriority(priority)
		if err != nil {
			return UrlsetEntry{}, err
		}
		prio = &p
	}

	return UrlsetEntry{Loc: loc, Lastmod: lm, Changefreq: cf, Priority: prio}, nil
}

func (e UrlsetEntry) String() string {
	parts := []string{e.Loc.String()}
	if e.Lastmod != "" {
		parts = append(parts, "last modified: "+e.Lastmod)
	}
	if e.Changefreq != "" {
		parts = append(parts, "frequency: "+e.Changefreq)
	}
	if e.Priority != nil {
		parts = append(parts, fmt.Sprintf("priority: %v", *e.Priority))
	}
	return strings.Join(parts, " | ")
}
