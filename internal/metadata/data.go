package metadata

import "time"

/*
ErrorCause is a closed, canonical classification used exclusively for
observability (logging, metrics, reporting).

Rules:
  - ErrorCause is for observability only.
  - It must never be used to derive retry, continuation, or abort decisions.
  - Any use of metadata.ErrorCause outside logging, metrics, or reporting is a design violation.
  - ErrorCause MUST NOT influence control flow.
  - ErrorCause values MUST have stable, package-agnostic semantics.
  - Packages MAY map their own local cause enums to ErrorCause, but MUST NOT invent new meanings.

Non-goals:
  - ErrorCause does not encode severity.
  - ErrorCause does not imply retryability.
  - ErrorCause does not imply crawl termination.

If a failure does not clearly map to a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

// Canonical ErrorCause table. CauseNetworkFailure, CausePolicyDisallow and
// CauseInvariantViolation are the causes this crawler's own packages map to
// (robots.FetchFailure, fetcher.TransportError); CauseContentInvalid and
// CauseStorageFailure have no package-scoped cause mapped to them.
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseInvariantViolation
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// ErrorRecord is one observability-only entry: a packaged-up failure tagged
// with its canonical cause, ready to become a structured log line. It is
// never read back for control flow.
type ErrorRecord struct {
	packageName string
	action      string
	cause       ErrorCause
	errorString string
	observedAt  time.Time
	attrs       []Attribute
}

// Attribute is one extra structured field attached to a log record, keyed
// by one of the canonical AttributeKeys below.
type Attribute struct {
	Key   AttributeKey
	Value string
}

// NewAttr builds an Attribute.
func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{Key: key, Value: val}
}

// AttributeKey is a closed set of structured-log field names, kept stable
// across packages so log output can be queried uniformly.
type AttributeKey string

const (
	AttrTime       AttributeKey = "time"
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrDepth      AttributeKey = "depth"
	AttrHTTPStatus AttributeKey = "http_status"
)
