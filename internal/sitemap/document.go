package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"

	"github.com/rohmanhakim/ethicrawl/internal/urlx"
)

// sitemapNS is the only namespace a conforming sitemap document may declare
// as its default namespace.
const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

const (
	kindURLSet       = "urlset"
	kindSitemapIndex = "sitemapindex"
)

// maxElementDepth bounds how deeply nested a document's elements may be.
// Real sitemaps never nest past three or four levels; this exists purely
// to refuse pathological input before it reaches the tree-building pass.
const maxElementDepth = 64

// unescapedAmpersand matches a bare "&" not already the start of a valid
// entity or character reference. Sitemap producers in the wild routinely
// emit literal "&" in URLs without escaping it.
var unescapedAmpersand = regexp.MustCompile(`&(?:[a-zA-Z]+|#[0-9]+|#x[0-9a-fA-F]+);|&`)

func escapeUnescapedAmpersands(document string) string {
	return unescapedAmpersand.ReplaceAllStringFunc(document, func(match string) string {
		if match == "&" {
			return "&amp;"
		}
		return match
	})
}

// Document is either an IndexDocument or a UrlsetDocument, classified by the
// sitemap document's XML root local-name.
type Document interface {
	Kind() string
}

// IndexDocument holds the <sitemap> references of a sitemap-index document.
type IndexDocument struct {
	Entries []IndexEntry
}

func (IndexDocument) Kind() string { return kindSitemapIndex }

// UrlsetDocument holds the <url> entries of a urlset (leaf) document.
type UrlsetDocument struct {
	Entries []UrlsetEntry
}

func (UrlsetDocument) Kind() string { return kindURLSet }

type rawIndexEntry struct {
	Loc     string `xml:"loc"`
	Lastmod string `xml:"lastmod"`
}

type rawIndexDocument struct {
	XMLName  xml.Name        `xml:"sitemapindex"`
	Sitemaps []rawIndexEntry `xml:"sitemap"`
}

type rawUrlEntry struct {
	Loc        string `xml:"loc"`
	Lastmod    string `xml:"lastmod"`
	Changefreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type rawUrlsetDocument struct {
	XMLName xml.Name      `xml:"urlset"`
	Urls    []rawUrlEntry `xml:"url"`
}

// ParseDocument validates and decodes a sitemap document fetched from
// sourceURL (used only for error messages). It rejects documents whose
// default namespace isn't the sitemaps.org 0.9 namespace, documents whose
// root local-name isn't "urlset" or "sitemapindex", and documents that
// exceed maxElementDepth. Invalid individual entries are skipped with the
// caller's logger, not surfaced as an error: only document-level failures
// return InvalidSitemap / UnsupportedSitemapKind.
func ParseDocument(sourceURL string, body []byte, warn func(format string, args ...any)) (Document, error) {
	escaped := escapeUnescapedAmpersands(string(body))

	root, err := firstElement(escaped)
	if err != nil {
		return nil, &InvalidSitemap{URL: sourceURL, Reason: err.Error()}
	}
	if root.Space != sitemapNS {
		return nil, &InvalidSitemap{URL: sourceURL, Reason: fmt.Sprintf("required default namespace not found: %s", sitemapNS)}
	}

	if err := checkDepth(escaped); err != nil {
		return nil, &InvalidSitemap{URL: sourceURL, Reason: err.Error()}
	}

	switch root.Local {
	case kindSitemapIndex:
		return decodeIndex(sourceURL, escaped, warn)
	case kindURLSet:
		return decodeUrlset(sourceURL, escaped, warn)
	default:
		return nil, &UnsupportedSitemapKind{URL: sourceURL, LocalName: root.Local}
	}
}

// firstElement returns the qualified name of the document's root element,
// with Space resolved to the default namespace in effect at that element.
func firstElement(document string) (xml.Name, error) {
	dec := xml.NewDecoder(bytes.NewReader([]byte(document)))
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return xml.Name{}, fmt.Errorf("empty document")
			}
			return xml.Name{}, fmt.Errorf("invalid XML syntax: %v", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name, nil
		}
	}
}

// checkDepth walks the full token stream and rejects documents whose
// element nesting exceeds maxElementDepth.
func checkDepth(document string) error {
	dec := xml.NewDecoder(bytes.NewReader([]byte(document)))
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("invalid XML syntax: %v", err)
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxElementDepth {
				return fmt.Errorf("element nesting exceeds %d", maxElementDepth)
			}
		case xml.EndElement:
			depth--
		}
	}
}

func decodeIndex(sourceURL, document string, warn func(string, ...any)) (Document, error) {
	var raw rawIndexDocument
	if err := xml.Unmarshal([]byte(document), &raw); err != nil {
		return nil, &InvalidSitemap{URL: sourceURL, Reason: fmt.Sprintf("invalid XML syntax: %v", err)}
	}

	entries := make([]IndexEntry, 0, len(raw.Sitemaps))
	for _, s := range raw.Sitemaps {
		if s.Loc == "" {
			if warn != nil {
				warn("skipping sitemap reference with no loc in %s", sourceURL)
			}
			continue
		}
		loc, err := urlx.Parse(s.Loc, false)
		if err != nil {
			if warn != nil {
				warn("skipping sitemap reference with invalid loc %q in %s: %v", s.Loc, sourceURL, err)
			}
			continue
		}
		entry, err := NewIndexEntry(loc, s.Lastmod)
		if err != nil {
			if warn != nil {
				warn("skipping sitemap reference %q in %s: %v", s.Loc, sourceURL, err)
			}
			continue
		}
		entries = append(entries, entry)
	}
	return IndexDocument{Entries: entries}, nil
}

func decodeUrlset(sourceURL, document string, warn func(string, ...any)) (Document, error) {
	var raw rawUrlsetDocument
	if err := xml.Unmarshal([]byte(document), &raw); err != nil {
		return nil, &InvalidSitemap{URL: sourceURL, Reason: fmt.Sprintf("invalid XML syntax: %v", err)}
	}

	entries := make([]UrlsetEntry, 0, len(raw.Urls))
	for _, u := range raw.Urls {
		if u.Loc == "" {
			if warn != nil {
				warn("skipping url entry with no loc in %s", sourceURL)
			}
			continue
		}
		loc, err := urlx.Parse(u.Loc, false)
		if err != nil {
			if warn != nil {
				warn("skipping url entry with invalid loc %q in %s: %v", u.Loc, sourceURL, err)
			}
			continue
		}
		entry, err := NewUrlsetEntry(loc, u.Lastmod, u.Changefreq, u.Priority)
		if err != nil {
			if warn != nil {
				warn("skipping url entry %q in %s: %v", u.Loc, sourceURL, err)
			}
			continue
		}
		entries = append(entries, entry)
	}
	return UrlsetDocument{Entries: entries}, nil
}
