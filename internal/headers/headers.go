// Package headers implements a case-insensitive HTTP header map, grounded
// on the same contract as net/http.Header but with the lowercasing and
// nil-removes-key semantics this crawler's RobotsPolicy/Fetcher boundary
// requires.
package headers

import (
	"fmt"
	"strings"

	"github.com/rohmanhakim/ethicrawl/pkg/failure"
)

// InvalidHeaderKeyError reports a header key that is not a string. Every
// operation in this package takes string keys, so none of them returns it;
// Get and Contains degrade gracefully instead of raising.
type InvalidHeaderKeyError struct {
	Key any
}

func (e *InvalidHeaderKeyError) Error() string {
	return fmt.Sprintf("invalid header key: %v", e.Key)
}

func (e *InvalidHeaderKeyError) Severity() failure.Severity {
	return failure.SeverityFatal
}

var _ failure.ClassifiedError = (*InvalidHeaderKeyError)(nil)

// Headers is a case-insensitive string-to-string map. The zero value is not
// usable; construct with New.
type Headers struct {
	values map[string]string // keyed by lowercased header name
	casing map[string]string // lowercased -> first-seen original casing
}

// New builds a Headers from any number of maps, or from nothing at all.
// Key-value string pairs go through FromPairs.
func New(sources ...map[string]string) *Headers {
	h := &Headers{
		values: make(map[string]string),
		casing: make(map[string]string),
	}
	for _, src := range sources {
		for k, v := range src {
			h.Set(k, v)
		}
	}
	return h
}

// FromPairs builds a Headers from an even-length list of key, value, key,
// value, ... strings.
func FromPairs(kv ...string) *Headers {
	h := New()
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func normalize(key string) string {
	return strings.ToLower(key)
}

// Set assigns value under key, case-insensitively. Any non-string value
// passed through Insert is stringified via fmt.Sprint; Set itself only
// accepts strings, matching the typed Go signature.
func (h *Headers) Set(key, value string) {
	lk := normalize(key)
	h.values[lk] = value
	if _, exists := h.casing[lk]; !exists {
		h.casing[lk] = key
	}
}

// Insert stringifies an arbitrary value before storing it, matching the
// source contract that non-string values are stringified on insert.
func (h *Headers) Insert(key string, value any) {
	h.Set(key, fmt.Sprint(value))
}

// Remove deletes key. Assigning nil/absent is modeled as calling Remove.
func (h *Headers) Remove(key string) {
	lk := normalize(key)
	delete(h.values, lk)
	delete(h.casing, lk)
}

// Get returns the value for key and whether it was present. Degrades
// gracefully (returns "", false) rather than raising on malformed input.
func (h *Headers) Get(key string) (string, bool) {
	v, ok := h.values[normalize(key)]
	return v, ok
}

// GetDefault returns the value for key, or def if absent.
func (h *Headers) GetDefault(key, def string) string {
	if v, ok := h.Get(key); ok {
		return v
	}
	return def
}

// Contains reports whether key is present, case-insensitively.
func (h *Headers) Contains(key string) bool {
	_, ok := h.values[normalize(key)]
	return ok
}

// Len returns the number of distinct header keys.
func (h *Headers) Len() int { return len(h.values) }

// Clone returns a deep copy.
func (h *Headers) Clone() *Headers {
	clone := New()
	for lk, v := range h.values {
		clone.values[lk] = v
		clone.casing[lk] = h.casing[lk]
	}
	return clone
}

// Merge returns a new Headers with other's entries overlaid on h's, without
// mutating either. Used to implement "default headers inherit from process
// config without overriding caller-specified ones" by calling
// defaults.Merge(callerHeaders).
func (h *Headers) Merge(overlay *Headers) *Headers {
	merged := h.Clone()
	if overlay == nil {
		return merged
	}
	for lk, v := range overlay.values {
		merged.values[lk] = v
		if _, exists := merged.casing[lk]; !exists {
			merged.casing[lk] = overlay.casing[lk]
		} else {
			merged.casing[lk] = overlay.casing[lk]
		}
	}
	return merged
}

// Each calls fn once per header, in the original casing it was first set
// with.
func (h *Headers) Each(fn func(key, value string)) {
	for lk, v := range h.values {
		fn(h.casing[lk], v)
	}
}

// ToMap returns a plain map[string]string snapshot, keyed by original
// casing.
func (h *Headers) ToMap() map[string]string {
	out := make(map[string]string, len(h.values))
	h.Each(func(k, v string) { out[k] = v })
	return out
}
