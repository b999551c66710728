package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/ethicrawl/internal/metadata"
	"github.com/rohmanhakim/ethicrawl/pkg/failure"
)

// FetchErrorCause enumerates the reasons a Fetcher can fail to produce a
// Response at all (as opposed to producing a non-2xx Response, which is not
// an error from the Fetcher's point of view).
type FetchErrorCause string

const (
	ErrCauseDNSFailure        FetchErrorCause = "dns resolution failed"
	ErrCauseConnectionRefused FetchErrorCause = "connection refused"
	ErrCauseTLSError          FetchErrorCause = "tls handshake failed"
	ErrCauseTimeout           FetchErrorCause = "request timed out"
	ErrCauseContextCanceled   FetchErrorCause = "context canceled"
	ErrCauseRequestInvalid    FetchErrorCause = "malformed request"
	ErrCauseReadBody          FetchErrorCause = "failed to read response body"
)

// TransportError is raised when a Fetcher cannot complete the round trip:
// DNS failure, connection refused, TLS error, timeout, or cancellation.
// Getting back an HTTP response, even a 5xx one, is not a TransportError.
type TransportError struct {
	Message   string
	Retryable bool
	Cause     FetchErrorCause
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch transport error: %s: %s", e.Cause, e.Message)
}

func (e *TransportError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// IsRetryable reports whether pkg/retry should attempt this request again.
func (e *TransportError) IsRetryable() bool {
	return e.Retryable
}

var _ failure.ClassifiedError = (*TransportError)(nil)

// MapFetchErrorToMetadataCause maps a TransportError's local cause to the
// canonical metadata.ErrorCause table. Observational only; never consulted
// for control flow.
func MapFetchErrorToMetadataCause(err *TransportError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseDNSFailure, ErrCauseConnectionRefused, ErrCauseTLSError,
		ErrCauseTimeout, ErrCauseContextCanceled:
		return metadata.CauseNetworkFailure
	case ErrCauseRequestInvalid:
		return metadata.CauseInvariantViolation
	case ErrCauseReadBody:
		return metadata.CauseNetworkFailure
	default:
		return metadata.CauseUnknown
	}
}
