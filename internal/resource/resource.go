// Package resource defines Resource, the identity primitive used as cache
// and visited-set keys throughout the crawler.
package resource

import "github.com/rohmanhakim/ethicrawl/internal/urlx"

// Resource wraps a Url and is the identity used for equality, hashing (as a
// map key via its normalized string form), and cache keys.
type Resource struct {
	url urlx.Url
}

// New wraps u as a Resource.
func New(u urlx.Url) Resource {
	return Resource{url: u}
}

// Url returns the wrapped Url.
func (r Resource) Url() urlx.Url { return r.url }

// Key returns the normalized string used for equality and as a map key.
func (r Resource) Key() string { return r.url.String() }

// Base returns the resource's origin (scheme://authority, or "file://").
func (r Resource) Base() string { return r.url.Base() }
