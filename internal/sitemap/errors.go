package sitemap

import (
	"fmt"

	"github.com/rohmanhakim/ethicrawl/pkg/failure"
)

// InvalidSitemap reports that a fetched document failed XML syntax or
// namespace validation. Raised at the document level only; individual
// malformed entries inside an otherwise valid document are dropped with a
// warning instead, never raised.
type InvalidSitemap struct {
	URL    string
	Reason string
}

func (e *InvalidSitemap) Error() string {
	return fmt.Sprintf("invalid sitemap at %s: %s", e.URL, e.Reason)
}

func (e *InvalidSitemap) Severity() failure.Severity { return failure.SeverityRecoverable }

var _ failure.ClassifiedError = (*InvalidSitemap)(nil)

// UnsupportedSitemapKind reports that a document's root local-name is
// neither "urlset" nor "sitemapindex".
type UnsupportedSitemapKind struct {
	URL       string
	LocalName string
}

func (e *UnsupportedSitemapKind) Error() string {
	return fmt.Sprintf("unsupported sitemap root element %q at %s", e.LocalName, e.URL)
}

func (e *UnsupportedSitemapKind) Severity() failure.Severity { return failure.SeverityRecoverable }

var _ failure.ClassifiedError = (*UnsupportedSitemapKind)(nil)
