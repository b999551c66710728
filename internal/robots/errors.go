package robots

import (
	"fmt"

	"github.com/rohmanhakim/ethicrawl/internal/metadata"
	"github.com/rohmanhakim/ethicrawl/pkg/failure"
)

// RobotsErrorCause enumerates the internal reasons a robots.txt fetch can
// fail to produce a usable policy. The policy is still always constructed
// (deny-all on any non-404 failure); this cause is for observability only.
type RobotsErrorCause string

const (
	ErrCauseTransport      RobotsErrorCause = "transport failure fetching robots.txt"
	ErrCauseUnexpectedHTTP RobotsErrorCause = "unexpected http status fetching robots.txt"
)

// Disallowed is raised by RobotsPolicy.CanFetch when the effective
// user-agent is denied access to a resource. It is an error, not a boolean
// false, so callers can't accidentally treat a denial as success.
type Disallowed struct {
	URL       string
	UserAgent string
}

func (e *Disallowed) Error() string {
	return fmt.Sprintf("robots.txt disallows %q for user-agent %q", e.URL, e.UserAgent)
}

func (e *Disallowed) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

var _ failure.ClassifiedError = (*Disallowed)(nil)

// FetchFailure records that constructing a RobotsPolicy hit a non-404
// problem (deny-all was applied). Carried for logging; never influences
// whether the deny-all policy takes effect.
type FetchFailure struct {
	Message string
	Cause   RobotsErrorCause
}

func (e *FetchFailure) Error() string {
	return fmt.Sprintf("robots fetch failure: %s: %s", e.Cause, e.Message)
}

func (e *FetchFailure) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

var _ failure.ClassifiedError = (*FetchFailure)(nil)

// MapFetchFailureToMetadataCause maps a FetchFailure's cause to the
// canonical metadata.ErrorCause table. Observational only.
func MapFetchFailureToMetadataCause(err *FetchFailure) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTransport:
		return metadata.CauseNetworkFailure
	case ErrCauseUnexpectedHTTP:
		return metadata.CausePolicyDisallow
	default:
		return metadata.CauseUnknown
	}
}
