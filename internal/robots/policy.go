package robots

import (
	"context"
	"time"

	"github.com/rohmanhakim/ethicrawl/internal/fetcher"
	"github.com/rohmanhakim/ethicrawl/internal/resource"
	"github.com/rohmanhakim/ethicrawl/internal/robots/cache"
	"github.com/rohmanhakim/ethicrawl/internal/urlx"
)

// maxBodySize bounds how much of a robots.txt response body is read, to
// protect against a misbehaving or malicious server.
const maxBodySize = 500 * 1024

const fetchTimeout = 15 * time.Second

// RobotsPolicy answers whether a user-agent may fetch a given resource, and
// exposes the Sitemap directives declared in the robots.txt, in document
// order with duplicates preserved.
type RobotsPolicy struct {
	originBase       urlx.Url
	groups           []UserAgentGroup
	declaredSitemaps []urlx.Url
	defaultUserAgent string
}

// Fetch constructs a RobotsPolicy for originBase by GETting
// {originBase}/robots.txt through f. On HTTP 404 the result is the
// permissive empty policy. On any other non-200 response, or a transport
// failure, the result is the maximally restrictive deny-all policy. cache,
// if non-nil, is consulted before the fetch and populated after a
// successful one, keyed by originBase.
func Fetch(ctx context.Context, f fetcher.Fetcher, originBase urlx.Url, defaultUserAgent string, c cache.Cache) (RobotsPolicy, *FetchFailure) {
	key := originBase.String() + "/robots.txt"

	if c != nil {
		if body, found := c.Get(key); found {
			return buildPolicy(originBase, defaultUserAgent, body), nil
		}
	}

	robotsURL := originBase.ExtendPath("/robots.txt")
	res := resource.New(robotsURL)
	req := fetcher.NewRequest(res, fetchTimeout, nil)

	resp, err := f.Get(ctx, req)
	if err != nil {
		return denyAllPolicy(originBase, defaultUserAgent), &FetchFailure{
			Message: err.Error(),
			Cause:   ErrCauseTransport,
		}
	}

	switch resp.Status() {
	case 404:
		return allowAllPolicy(originBase, defaultUserAgent), nil
	case 200:
		body := resp.Content()
		if len(body) > maxBodySize {
			body = body[:maxBodySize]
		}
		policy := buildPolicy(originBase, defaultUserAgent, string(body))
		if c != nil {
			c.Put(key, string(body))
		}
		return policy, nil
	default:
		return denyAllPolicy(originBase, defaultUserAgent), &FetchFailure{
			Message: "unexpected status fetching robots.txt",
			Cause:   ErrCauseUnexpectedHTTP,
		}
	}
}

func buildPolicy(originBase urlx.Url, defaultUserAgent, body string) RobotsPolicy {
	parsed := parseRobotsTxt(body)

	var sitemaps []urlx.Url
	for _, raw := range parsed.declaredSitemaps {
		u, err := urlx.Parse(raw, false)
		if err == nil {
			sitemaps = append(sitemaps, u)
		}
	}

	return RobotsPolicy{
		originBase:       originBase,
		groups:           parsed.groups,
		declaredSitemaps: sitemaps,
		defaultUserAgent: defaultUserAgent,
	}
}

func allowAllPolicy(originBase urlx.Url, defaultUserAgent string) RobotsPolicy {
	return RobotsPolicy{originBase: originBase, defaultUserAgent: defaultUserAgent}
}

func denyAllPolicy(originBase urlx.Url, defaultUserAgent string) RobotsPolicy {
	return RobotsPolicy{
		originBase:       originBase,
		defaultUserAgent: defaultUserAgent,
		groups: []UserAgentGroup{{
			UserAgents: []string{"*"},
			Disallows:  []PathRule{{Path: "/"}},
		}},
	}
}

// OriginBase returns the origin this policy was built for.
func (p RobotsPolicy) OriginBase() urlx.Url { return p.originBase }

// DeclaredSitemaps returns the Sitemap: directives from the robots.txt, in
// document order, duplicates included.
func (p RobotsPolicy) DeclaredSitemaps() []urlx.Url {
	out := make([]urlx.Url, len(p.declaredSitemaps))
	copy(out, p.declaredSitemaps)
	return out
}

// CanFetch reports whether res may be fetched under the effective
// user-agent. Resolution order for the effective UA: explicitArg (if
// non-empty), fetcherUserAgent (if non-empty), then the policy's configured
// default. Returns nil on allow, or *Disallowed on deny.
func (p RobotsPolicy) CanFetch(res resource.Resource, explicitArg, fetcherUserAgent string) error {
	ua := p.defaultUserAgent
	if fetcherUserAgent != "" {
		ua = fetcherUserAgent
	}
	if explicitArg != "" {
		ua = explicitArg
	}

	group := findBestMatchingGroup(p.groups, ua)
	if pathAllowed(group, res.Url().Path()) {
		return nil
	}
	return &Disallowed{URL: res.Key(), UserAgent: ua}
}
