// Package origin bundles everything the crawler knows about one registered
// site: its robots policy, its sitemap parser, the Fetcher used to reach it,
// and a component-scoped logger. One OriginContext exists per bound origin.
package origin

import (
	"context"
	"log/slog"

	"github.com/rohmanhakim/ethicrawl/internal/fetcher"
	"github.com/rohmanhakim/ethicrawl/internal/resource"
	"github.com/rohmanhakim/ethicrawl/internal/robots"
	"github.com/rohmanhakim/ethicrawl/internal/robots/cache"
	"github.com/rohmanhakim/ethicrawl/internal/sitemap"
	"github.com/rohmanhakim/ethicrawl/internal/urlx"
)

// Context is the per-origin bundle the Scheduler hands out: a base URL, the
// Fetcher bound to it, an eagerly-built RobotsPolicy, and a lazily-built
// SitemapParser. The Scheduler exclusively owns every Context it creates;
// a Context in turn exclusively owns its RobotsPolicy, SitemapParser and
// Fetcher.
type Context struct {
	base             urlx.Url
	fetcher          fetcher.Fetcher
	robotsPolicy     robots.RobotsPolicy
	defaultUserAgent string
	maxSitemapDepth  int
	followExternal   bool
	logger           *slog.Logger

	sitemapParser *sitemap.Parser
	sitemapFrom   fetcher.Fetcher
}

// New constructs a Context for base, eagerly fetching base/robots.txt
// through f so that transport or DNS failures surface at bind time rather
// than on first use. sitemapFetcher, if non-nil, is the Fetcher the lazily
// built SitemapParser will use instead of f — the Scheduler passes in an
// adapter that loops requests back through Scheduler.get so that sitemap
// traversal is rate-limited and robots-checked exactly like any other
// fetch; a nil sitemapFetcher falls back to f directly, which is what
// standalone (non-Scheduler-mediated) use of this package gets.
func New(ctx context.Context, base urlx.Url, f fetcher.Fetcher, sitemapFetcher fetcher.Fetcher, defaultUserAgent string, robotsCache cache.Cache, maxSitemapDepth int, followExternal bool, logger *slog.Logger) (Context, *robots.FetchFailure) {
	if logger == nil {
		logger = slog.Default()
	}

	policy, failure := robots.Fetch(ctx, f, base, defaultUserAgent, robotsCache)

	sf := sitemapFetcher
	if sf == nil {
		sf = f
	}

	return Context{
		base:             base,
		fetcher:          f,
		robotsPolicy:     policy,
		defaultUserAgent: defaultUserAgent,
		maxSitemapDepth:  maxSitemapDepth,
		followExternal:   followExternal,
		logger:           logger.With("origin", base.String()),
		sitemapFrom:      sf,
	}, failure
}

// Base returns the origin this Context was bound for.
func (c Context) Base() urlx.Url { return c.base }

// Fetcher returns the Fetcher bound to this origin.
func (c Context) Fetcher() fetcher.Fetcher { return c.fetcher }

// Robots returns the origin's RobotsPolicy.
func (c Context) Robots() robots.RobotsPolicy { return c.robotsPolicy }

// Sitemap lazily builds (on first call) and returns this origin's
// SitemapParser.
func (c *Context) Sitemap() *sitemap.Parser {
	if c.sitemapParser == nil {
		c.sitemapParser = sitemap.NewParser(c.sitemapFrom, c.maxSitemapDepth, c.followExternal, c.base, c.Logger("sitemap"))
	}
	return c.sitemapParser
}

// Logger returns a *slog.Logger scoped to component, attributed to this
// origin, so every log line a Context or its children emit is traceable to
// the origin and subsystem that produced it.
func (c Context) Logger(component string) *slog.Logger {
	return c.logger.With("component", component)
}

// DeclaredSitemaps returns the Sitemap: directives declared in this
// origin's robots.txt, as resources ready to hand to the SitemapParser.
func (c Context) DeclaredSitemaps() []resource.Resource {
	urls := c.robotsPolicy.DeclaredSitemaps()
	out := make([]resource.Resource, 0, len(urls))
	for _, u := range urls {
		out = append(out, resource.New(u))
	}
	return out
}
