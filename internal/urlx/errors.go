package urlx

import (
	"fmt"

	"github.com/rohmanhakim/ethicrawl/pkg/failure"
)

// InvalidUrlError is raised when a string cannot be parsed into a Url: an
// unsupported scheme, a missing authority on http(s), or a missing path on
// file.
type InvalidUrlError struct {
	Input  string
	Reason string
}

func (e *InvalidUrlError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.Input, e.Reason)
}

func (e *InvalidUrlError) Severity() failure.Severity {
	return failure.SeverityFatal
}

// UnresolvableHostError is raised by Parse(s, validate=true) when the
// hostname cannot be resolved via DNS.
type UnresolvableHostError struct {
	Host string
}

func (e *UnresolvableHostError) Error() string {
	return fmt.Sprintf("cannot resolve hostname: %s", e.Host)
}

func (e *UnresolvableHostError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// InvalidOperationError is raised when an http(s)-only operation (authority,
// query, fragment, extend-query) is invoked on a file:// Url.
type InvalidOperationError struct {
	Op string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %q on a non-http(s) url", e.Op)
}

func (e *InvalidOperationError) Severity() failure.Severity {
	return failure.SeverityFatal
}
