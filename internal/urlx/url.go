// Package urlx is the system's identity primitive: a Url decomposed into
// scheme/authority/path/query/fragment, validated once at construction so
// every downstream component can treat it as trusted input.
package urlx

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// QueryParam is one key-value pair of a Url's query string, in document order.
type QueryParam struct {
	Key   string
	Value string
}

// Url is an immutable, validated URL. Only http, https, and file schemes are
// accepted. Authority, query, and fragment are only meaningful for http(s)
// URLs; accessing them on a file Url returns InvalidOperationError.
type Url struct {
	scheme    string
	authority string
	path      string
	query     []QueryParam
	fragment  string
}

// Parse decomposes s into a Url. If validate is true and the scheme is
// http(s), the hostname must resolve via DNS or UnresolvableHostError is
// returned.
func Parse(s string, validate bool) (Url, error) {
	parsed, err := url.Parse(s)
	if err != nil {
		return Url{}, &InvalidUrlError{Input: s, Reason: err.Error()}
	}

	switch parsed.Scheme {
	case "http", "https":
		if parsed.Host == "" {
			return Url{}, &InvalidUrlError{Input: s, Reason: "missing authority"}
		}
	case "file":
		if parsed.Path == "" {
			return Url{}, &InvalidUrlError{Input: s, Reason: "missing path"}
		}
	default:
		return Url{}, &InvalidUrlError{Input: s, Reason: fmt.Sprintf("unsupported scheme %q", parsed.Scheme)}
	}

	if validate && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		host := parsed.Hostname()
		if _, err := net.LookupHost(host); err != nil {
			return Url{}, &UnresolvableHostError{Host: parsed.Host}
		}
	}

	u := Url{
		scheme:    parsed.Scheme,
		authority: parsed.Host,
		path:      parsed.Path,
		fragment:  parsed.Fragment,
	}
	if parsed.RawQuery != "" {
		u.query = parseQuery(parsed.RawQuery)
	}
	return u, nil
}

// MustParse is Parse without validation, panicking on error. Reserved for
// constants and tests; library code always uses Parse.
func MustParse(s string) Url {
	u, err := Parse(s, false)
	if err != nil {
		panic(err)
	}
	return u
}

func parseQuery(raw string) []QueryParam {
	var params []QueryParam
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		key, _ := url.QueryUnescape(kv[0])
		value := ""
		if len(kv) == 2 {
			value, _ = url.QueryUnescape(kv[1])
		}
		params = append(params, QueryParam{Key: key, Value: value})
	}
	return params
}

func (u Url) httpOnly(op string) error {
	if u.scheme != "http" && u.scheme != "https" {
		return &InvalidOperationError{Op: op}
	}
	return nil
}

// Scheme returns "http", "https", or "file".
func (u Url) Scheme() string { return u.scheme }

// Authority returns scheme-authority for http(s); error for file.
func (u Url) Authority() (string, error) {
	if err := u.httpOnly("authority"); err != nil {
		return "", err
	}
	return u.authority, nil
}

// Path returns the path component; valid for every scheme.
func (u Url) Path() string { return u.path }

// Query returns the ordered query parameters; error for file.
func (u Url) Query() ([]QueryParam, error) {
	if err := u.httpOnly("query"); err != nil {
		return nil, err
	}
	out := make([]QueryParam, len(u.query))
	copy(out, u.query)
	return out, nil
}

// Fragment returns the fragment; error for file.
func (u Url) Fragment() (string, error) {
	if err := u.httpOnly("fragment"); err != nil {
		return "", err
	}
	return u.fragment, nil
}

// Base returns scheme://authority for http(s), or the literal "file://" for
// file URLs.
func (u Url) Base() string {
	if u.scheme == "file" {
		return "file://"
	}
	return fmt.Sprintf("%s://%s", u.scheme, u.authority)
}

// String reconstructs the canonical string form of the Url.
func (u Url) String() string {
	var b strings.Builder
	if u.scheme == "file" {
		b.WriteString("file://")
		b.WriteString(u.path)
		return b.String()
	}
	b.WriteString(u.Base())
	b.WriteString(u.path)
	if len(u.query) > 0 {
		b.WriteByte('?')
		for i, q := range u.query {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(q.Key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(q.Value))
		}
	}
	if u.fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.fragment)
	}
	return b.String()
}

// ExtendPath joins pathSegment onto the Url's path: a leading "/" on the
// argument replaces a trailing "/" on the existing path; otherwise a
// separator is inserted if one is missing. Valid for every scheme.
func (u Url) ExtendPath(pathSegment string) Url {
	next := u
	current := u.path
	switch {
	case strings.HasPrefix(pathSegment, "/") && strings.HasSuffix(current, "/"):
		next.path = current + pathSegment[1:]
	case strings.HasPrefix(pathSegment, "/") || strings.HasSuffix(current, "/"):
		next.path = current + pathSegment
	default:
		next.path = current + "/" + pathSegment
	}
	return next
}

// ExtendQuery merges params into the Url's query string. http(s) only.
func (u Url) ExtendQuery(params []QueryParam) (Url, error) {
	if err := u.httpOnly("extend-query"); err != nil {
		return Url{}, err
	}
	next := u
	merged := make([]QueryParam, len(u.query))
	copy(merged, u.query)

	for _, p := range params {
		replaced := false
		for i := range merged {
			if merged[i].Key == p.Key {
				merged[i].Value = p.Value
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, p)
		}
	}
	next.query = merged
	return next, nil
}

// ExtendQueryPair is the single key/value convenience form of ExtendQuery.
func (u Url) ExtendQueryPair(key, value string) (Url, error) {
	return u.ExtendQuery([]QueryParam{{Key: key, Value: value}})
}

// Equal compares two Urls by their canonical string form.
func (u Url) Equal(other Url) bool {
	return u.String() == other.String()
}

// RegistrableDomain returns u's eTLD+1 (e.g. "example.com" for
// "docs.example.com:8080"), for the "same site" comparisons
// sitemap.follow_external needs instead of an exact-host match. http(s)
// only; returns InvalidOperationError for file Urls.
func (u Url) RegistrableDomain() (string, error) {
	if err := u.httpOnly("registrable-domain"); err != nil {
		return "", err
	}
	host := u.authority
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if net.ParseIP(host) != nil {
		// A bare IP has no registrable domain; the address itself is the
		// most specific comparable unit.
		return host, nil
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Not registrable under the public suffix list (a single-label
		// host like "localhost") — the host itself is the most specific
		// comparable unit.
		return host, nil
	}
	return domain, nil
}

// SameRegistrableDomain reports whether u and other share an eTLD+1.
func SameRegistrableDomain(u, other Url) bool {
	a, errA := u.RegistrableDomain()
	b, errB := other.RegistrableDomain()
	if errA != nil || errB != nil {
		return false
	}
	return a == b
}
