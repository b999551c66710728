// Package crawler provides Crawler, the small façade an embedder actually
// talks to: bind a root site, optionally whitelist a few more origins, then
// fetch pages, read the bound origin's robots policy, or walk its sitemap.
// Every origin Crawler registers, root or whitelisted, is a peer
// origin.Context inside the Scheduler it wraps — there is no special-cased
// root origin the way the legacy facade this package is grounded on had
// one.
package crawler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rohmanhakim/ethicrawl/internal/fetcher"
	"github.com/rohmanhakim/ethicrawl/internal/headers"
	"github.com/rohmanhakim/ethicrawl/internal/metadata"
	"github.com/rohmanhakim/ethicrawl/internal/resource"
	"github.com/rohmanhakim/ethicrawl/internal/robots"
	"github.com/rohmanhakim/ethicrawl/internal/robots/cache"
	"github.com/rohmanhakim/ethicrawl/internal/scheduler"
	"github.com/rohmanhakim/ethicrawl/internal/sitemap"
)

const defaultGetTimeout = 30 * time.Second

// Crawler is the embedder-facing entry point: Bind a root site, Whitelist
// any additional origins that root's pages legitimately link out to, then
// use Get/Robots/Sitemaps. It is a thin wrapper over a Scheduler, adding
// only the "must bind exactly once before use" state the Scheduler itself
// doesn't enforce, plus the per-bind correlation ID a metadata.Recorder
// mints. The Scheduler itself is built fresh on each Bind rather than once
// in New: that's what lets every log line its OriginContexts and
// SitemapParsers emit carry the same crawl_id for exactly one
// bind-to-unbind lifetime.
type Crawler struct {
	mu sync.Mutex

	defaultFetcher  fetcher.Fetcher
	userAgent       string
	rateLimit       float64
	jitter          time.Duration
	maxSitemapDepth int
	followExternal  bool
	robotsCache     cache.Cache
	logger          *slog.Logger

	scheduler *scheduler.Scheduler
	recorder  *metadata.Recorder

	bound       bool
	root        resource.Resource
	whitelisted []resource.Resource
}

// New builds an unbound Crawler. The arguments parameterize every Scheduler
// a subsequent Bind constructs: defaultFetcher and userAgent are used by
// Bind/Whitelist calls that omit an explicit Fetcher, rateLimit/jitter
// configure the RateLimiter each bind's Scheduler builds, and
// maxSitemapDepth/robotsCache are passed straight through to each origin's
// RobotsPolicy/SitemapParser, and followExternal to each origin's
// SitemapParser (sitemap.follow_external).
func New(defaultFetcher fetcher.Fetcher, userAgent string, rateLimit float64, jitter time.Duration, maxSitemapDepth int, followExternal bool, robotsCache cache.Cache, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		defaultFetcher:  defaultFetcher,
		userAgent:       userAgent,
		rateLimit:       rateLimit,
		jitter:          jitter,
		maxSitemapDepth: maxSitemapDepth,
		followExternal:  followExternal,
		robotsCache:     robotsCache,
		logger:          logger,
	}
}

// Bind registers res as the root site. Re-binding while already bound fails
// with *AlreadyBound; callers must Unbind first. f, if nil, falls back to
// the Crawler's default Fetcher. Bind mints a fresh crawl correlation ID
// and builds this lifetime's Scheduler around a logger scoped to it.
func (c *Crawler) Bind(ctx context.Context, res resource.Resource, f fetcher.Fetcher) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bound {
		return &AlreadyBound{URL: res.Key()}
	}

	c.recorder = metadata.New(c.logger)
	c.scheduler = scheduler.New(c.defaultFetcher, c.userAgent, c.rateLimit, c.jitter, c.maxSitemapDepth, c.followExternal, c.robotsCache, c.recorder.Logger())

	// The eager robots.txt fetch behind Scheduler.Bind is reported but
	// never fatal to binding: a transport failure yields the maximally
	// restrictive deny-all policy rather than blocking Bind outright.
	c.scheduler.Bind(ctx, res, f)

	c.bound = true
	c.root = res
	return nil
}

// Unbind releases the root binding, every whitelisted origin, and this
// lifetime's crawl correlation ID. It is safe to call on an
// already-unbound Crawler.
func (c *Crawler) Unbind() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.bound {
		return nil
	}

	c.scheduler.Unbind(c.root)
	for _, res := range c.whitelisted {
		c.scheduler.Unbind(res)
	}

	c.bound = false
	c.root = resource.Resource{}
	c.whitelisted = nil
	c.scheduler = nil
	c.recorder = nil
	return nil
}

// Whitelist registers an additional origin res's scheme+authority belongs
// to, giving it its own origin.Context alongside the root. f, if nil,
// falls back to the Crawler's default Fetcher. Whitelisting an origin
// already whitelisted replaces its Context, matching Scheduler.Bind's own
// idempotent-rebind behavior.
func (c *Crawler) Whitelist(ctx context.Context, res resource.Resource, f fetcher.Fetcher) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.bound {
		return &NotBound{}
	}

	c.scheduler.Bind(ctx, res, f)
	c.whitelisted = append(c.whitelisted, res)
	return nil
}

// Get fetches res, subject to the robots policy and rate limit of whichever
// registered origin (root or whitelisted) res belongs to. Fetching a
// resource whose origin was never bound or whitelisted fails with
// *scheduler.NotWhitelisted; calling Get before Bind (or after Unbind)
// fails with *NotBound.
func (c *Crawler) Get(ctx context.Context, res resource.Resource, hdrs *headers.Headers) (fetcher.Response, error) {
	c.mu.Lock()
	bound, s := c.bound, c.scheduler
	c.mu.Unlock()

	if !bound {
		return fetcher.Response{}, &NotBound{}
	}
	req := fetcher.NewRequest(res, defaultGetTimeout, hdrs)
	return s.Get(ctx, req)
}

// Robots returns the root origin's RobotsPolicy, or *NotBound if Bind has
// not been called.
func (c *Crawler) Robots() (robots.RobotsPolicy, error) {
	c.mu.Lock()
	bound, root := c.bound, c.root
	c.mu.Unlock()

	if !bound {
		return robots.RobotsPolicy{}, &NotBound{}
	}
	return c.scheduler.Robot(root)
}

// Sitemaps returns the root origin's SitemapParser, or *NotBound if Bind
// has not been called.
func (c *Crawler) Sitemaps() (*sitemap.Parser, error) {
	c.mu.Lock()
	bound, root := c.bound, c.root
	c.mu.Unlock()

	if !bound {
		return nil, &NotBound{}
	}
	return c.scheduler.Sitemap(root)
}

// Bound reports whether Bind has been called without a matching Unbind.
func (c *Crawler) Bound() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bound
}

// CrawlID returns the correlation ID tagging every log line emitted during
// the current bind lifetime, or "" if unbound.
func (c *Crawler) CrawlID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recorder == nil {
		return ""
	}
	return c.recorder.CrawlID()
}
