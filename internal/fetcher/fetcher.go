// Package fetcher defines the Fetcher capability: anything that can turn a
// Request into a Response. internal/httpfetch supplies the net/http-backed
// implementation this repo ships; a headless-browser driver or any other
// transport can satisfy the same interface without this package knowing
// about it.
package fetcher

import "context"

// Fetcher performs a single request and returns the raw response. It does
// not interpret status codes or content types; that is left to callers
// (RobotsPolicy, SitemapParser, Scheduler) who know what a given response
// means in their context.
type Fetcher interface {
	Get(ctx context.Context, req Request) (Response, error)

	// UserAgent returns the effective user-agent this Fetcher sends.
	UserAgent() string

	// SetUserAgent updates the effective user-agent. Implementations whose
	// UA is fixed (e.g. a headless browser with a baked-in UA string) may
	// treat this as advisory: they log the request but need not change
	// behavior. That is a documented contract, not a bug.
	SetUserAgent(ua string)
}
