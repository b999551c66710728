package sitemap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rohmanhakim/ethicrawl/internal/fetcher"
	"github.com/rohmanhakim/ethicrawl/internal/frontier"
	"github.com/rohmanhakim/ethicrawl/internal/resource"
	"github.com/rohmanhakim/ethicrawl/internal/urlx"
)

const fetchTimeout = 30 * time.Second

// Parser performs bounded-depth, cycle-safe traversal of a sitemap graph,
// fetching child documents through f, and flattening every reachable
// UrlsetEntry into a single ordered slice.
type Parser struct {
	fetcher        fetcher.Fetcher
	maxDepth       int
	followExternal bool
	originDomain   string
	logger         *slog.Logger
}

// NewParser builds a Parser. maxDepth bounds recursion (must be >= 1).
// followExternal controls whether an index entry pointing off
// originBase's registrable domain is followed at all: false (the
// sitemap.follow_external default) skips it with a logged warning instead
// of fetching it. For a bare IP or single-label origin host, originDomain
// is that host, so only entries on the same host pass. originDomain
// resolution failure (a file:// origin) disables the filter entirely
// rather than refusing to traverse anything. A nil logger
// defaults to slog.Default().
func NewParser(f fetcher.Fetcher, maxDepth int, followExternal bool, originBase urlx.Url, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	domain, _ := originBase.RegistrableDomain()
	return &Parser{
		fetcher:        f,
		maxDepth:       maxDepth,
		followExternal: followExternal,
		originDomain:   domain,
		logger:         logger.With("component", "sitemap"),
	}
}

// Parse traverses the sitemap graph rooted at seeds and returns the
// flattened, order-preserving list of UrlsetEntry reachable from it. A nil
// or empty seeds list produces an empty result.
func (p *Parser) Parse(ctx context.Context, seeds []urlx.Url) []UrlsetEntry {
	root := make([]IndexEntry, 0, len(seeds))
	for _, s := range seeds {
		root = append(root, IndexEntry{Loc: s})
	}
	visited := frontier.NewSet[string]()
	return p.traverse(ctx, root, 0, visited)
}

func (p *Parser) traverse(ctx context.Context, entries []IndexEntry, depth int, visited frontier.Set[string]) []UrlsetEntry {
	if depth >= p.maxDepth {
		p.logger.Warn("maximum recursion depth reached, stopping traversal", "maxDepth", p.maxDepth)
		return nil
	}

	var all []UrlsetEntry
	for _, entry := range entries {
		all = append(all, p.processEntry(ctx, entry, depth, visited)...)
	}
	return all
}

func (p *Parser) processEntry(ctx context.Context, entry IndexEntry, depth int, visited frontier.Set[string]) []UrlsetEntry {
	key := entry.Loc.String()

	if visited.Contains(key) {
		p.logger.Warn("cycle detected, skipping", "url", key)
		return nil
	}
	// Mark visited before fetching: a document that references itself
	// (directly or through an already-in-flight sibling) must not be
	// fetched a second time even though this call hasn't returned yet.
	visited.Add(key)

	if !p.followExternal && p.originDomain != "" {
		if domain, err := entry.Loc.RegistrableDomain(); err == nil && domain != p.originDomain {
			p.logger.Warn("external sitemap reference, skipping", "url", key, "origin_domain", p.originDomain, "entry_domain", domain)
			return nil
		}
	}

	doc, err := p.fetch(ctx, entry.Loc)
	if err != nil {
		p.logger.Warn("failed to fetch or parse sitemap", "url", key, "error", err)
		return nil
	}

	switch d := doc.(type) {
	case IndexDocument:
		p.logger.Debug("descending into sitemap index", "url", key, "entries", len(d.Entries))
		return p.traverse(ctx, d.Entries, depth+1, visited)
	case UrlsetDocument:
		p.logger.Debug("found urlset", "url", key, "entries", len(d.Entries))
		return d.Entries
	default:
		return nil
	}
}

func (p *Parser) fetch(ctx context.Context, loc urlx.Url) (Document, error) {
	res := resource.New(loc)
	req := fetcher.NewRequest(res, fetchTimeout, nil)
	resp, err := p.fetcher.Get(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseDocument(loc.String(), resp.Content(), func(format string, args ...any) {
		p.logger.Warn(fmt.Sprintf(format, args...))
	})
}
