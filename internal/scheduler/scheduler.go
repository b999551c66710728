/*
Package scheduler implements Scheduler, the sole control-plane authority
governing which bytes this crawler is allowed to pull off the network.

Determinism and admission guarantees:
  - Scheduler is the ONLY component allowed to decide whether a request may
    reach the network.
  - Every semantic admission check (origin whitelist, robots.txt policy,
    rate limiting) is completed inside Get before the underlying Fetcher is
    ever invoked.
  - No other component bypasses Get to reach a Fetcher directly; this is
    the design's key invariant — there is one and only one path from "we
    have a URL" to "a byte leaves the machine," and that path enforces the
    whole policy. SitemapParser, when built through a bound Context, routes
    its own internal fetches back through this same Get.

Scheduler owns every Context it binds; a Context in turn exclusively owns
its RobotsPolicy, SitemapParser and Fetcher.
*/
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rohmanhakim/ethicrawl/internal/fetcher"
	"github.com/rohmanhakim/ethicrawl/internal/origin"
	"github.com/rohmanhakim/ethicrawl/internal/ratelimit"
	"github.com/rohmanhakim/ethicrawl/internal/resource"
	"github.com/rohmanhakim/ethicrawl/internal/robots"
	"github.com/rohmanhakim/ethicrawl/internal/robots/cache"
	"github.com/rohmanhakim/ethicrawl/internal/sitemap"
	"github.com/rohmanhakim/ethicrawl/internal/urlx"
)

const defaultRequestTimeout = 30 * time.Second

// Scheduler holds one Context per bound origin, a single shared
// RateLimiter, and the default Fetcher used when bind is called without an
// explicit one. Its internal map is guarded by an RWMutex: reads (get,
// robot, sitemap) take the read lock, bind/unbind take the write lock — an
// explicit, minimal concurrency-safety mechanism that lets multiple
// goroutines safely share one Scheduler even though the algorithm below is
// written as if single-threaded.
type Scheduler struct {
	mu sync.RWMutex

	contexts        map[string]*origin.Context
	rateLimiter     *ratelimit.RateLimiter
	defaultFetcher  fetcher.Fetcher
	robotsCache     cache.Cache
	userAgent       string
	maxSitemapDepth int
	followExternal  bool
	requestTimeout  time.Duration
	logger          *slog.Logger
}

// New builds an empty Scheduler. defaultFetcher is used by Bind calls that
// pass a nil Fetcher. rateLimit and jitter parameterize the single shared
// RateLimiter every bound origin draws from. followExternal is passed
// straight through to every bound origin's SitemapParser (sitemap.follow_external).
func New(defaultFetcher fetcher.Fetcher, userAgent string, rateLimit float64, jitter time.Duration, maxSitemapDepth int, followExternal bool, robotsCache cache.Cache, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		contexts:        make(map[string]*origin.Context),
		rateLimiter:     ratelimit.New(rateLimit, jitter),
		defaultFetcher:  defaultFetcher,
		robotsCache:     robotsCache,
		userAgent:       userAgent,
		maxSitemapDepth: maxSitemapDepth,
		followExternal:  followExternal,
		requestTimeout:  defaultRequestTimeout,
		logger:          logger.With("component", "scheduler"),
	}
}

// Bind registers res's origin, building a Context for it. f, if nil, falls
// back to the Scheduler's default Fetcher. Re-binding an already-bound
// origin replaces its prior Context outright. The robots.txt fetch behind
// the new Context happens eagerly and is never fatal to Bind — a transport
// failure yields the maximally restrictive deny-all policy plus the
// returned FetchFailure, purely for observability.
func (s *Scheduler) Bind(ctx context.Context, res resource.Resource, f fetcher.Fetcher) *robots.FetchFailure {
	if f == nil {
		f = s.defaultFetcher
	}
	key := res.Base()

	// The origin a Context represents is scheme+authority only: a bound
	// resource may carry a path (a seed page, not a bare origin), but
	// robots.txt and sitemap resolution both need the bare origin to
	// extend paths from.
	originBase, err := urlx.Parse(key, false)
	if err != nil {
		return &robots.FetchFailure{Message: err.Error(), Cause: robots.ErrCauseTransport}
	}

	adapter := &routedFetcher{scheduler: s, underlying: f}
	built, failure := origin.New(ctx, originBase, f, adapter, s.userAgent, s.robotsCache, s.maxSitemapDepth, s.followExternal, s.logger)

	s.mu.Lock()
	s.contexts[key] = &built
	s.mu.Unlock()

	return failure
}

// Unbind removes res's origin's Context. Returns *NotBound if the origin
// was never bound.
func (s *Scheduler) Unbind(res resource.Resource) error {
	key := res.Base()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contexts[key]; !ok {
		return &NotBound{URL: key}
	}
	delete(s.contexts, key)
	return nil
}

func (s *Scheduler) lookup(res resource.Resource) (*origin.Context, error) {
	key := res.Base()

	s.mu.RLock()
	ctx, ok := s.contexts[key]
	s.mu.RUnlock()

	if !ok {
		return nil, &NotWhitelisted{URL: res.Key()}
	}
	return ctx, nil
}

// Get is the single gate every outbound request passes through: (1) look
// up the Context bound to res's origin, failing with NotWhitelisted if
// none; (2) resolve the effective user-agent (an explicit User-Agent
// header wins, else the bound Fetcher's own); (3) ask the origin's
// RobotsPolicy whether that user-agent may fetch res, propagating
// *robots.Disallowed on denial; (4) wait for a rate-limiter slot; (5)
// perform the fetch.
func (s *Scheduler) Get(ctx context.Context, req fetcher.Request) (fetcher.Response, error) {
	res := req.Resource()

	originCtx, err := s.lookup(res)
	if err != nil {
		return fetcher.Response{}, err
	}

	explicitUA, _ := req.Headers().Get("User-Agent")
	if err := originCtx.Robots().CanFetch(res, explicitUA, originCtx.Fetcher().UserAgent()); err != nil {
		return fetcher.Response{}, err
	}

	s.rateLimiter.WaitForSlot()

	return originCtx.Fetcher().Get(ctx, req)
}

// Robot returns the RobotsPolicy bound to res's origin, or NotWhitelisted.
func (s *Scheduler) Robot(res resource.Resource) (robots.RobotsPolicy, error) {
	ctx, err := s.lookup(res)
	if err != nil {
		return robots.RobotsPolicy{}, err
	}
	return ctx.Robots(), nil
}

// Sitemap returns the SitemapParser bound to res's origin, or
// NotWhitelisted. Every fetch the returned Parser issues while descending
// the sitemap graph routes back through Scheduler.Get.
func (s *Scheduler) Sitemap(res resource.Resource) (*sitemap.Parser, error) {
	ctx, err := s.lookup(res)
	if err != nil {
		return nil, err
	}
	return ctx.Sitemap(), nil
}

// routedFetcher adapts a Scheduler into a fetcher.Fetcher whose Get calls
// loop back through Scheduler.Get, so that components constructed with it
// (today, only a bound origin's lazily-built SitemapParser) can never
// bypass rate limiting or robots enforcement. UserAgent/SetUserAgent pass
// straight through to the underlying Fetcher since they don't touch the
// network.
type routedFetcher struct {
	scheduler  *Scheduler
	underlying fetcher.Fetcher
}

func (r *routedFetcher) Get(ctx context.Context, req fetcher.Request) (fetcher.Response, error) {
	return r.scheduler.Get(ctx, req)
}

func (r *routedFetcher) UserAgent() string      { return r.underlying.UserAgent() }
func (r *routedFetcher) SetUserAgent(ua string) { r.underlying.SetUserAgent(ua) }

var _ fetcher.Fetcher = (*routedFetcher)(nil)
