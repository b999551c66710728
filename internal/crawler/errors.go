package crawler

import (
	"fmt"

	"github.com/rohmanhakim/ethicrawl/pkg/failure"
)

// AlreadyBound is raised by Bind when a root origin is already bound.
// Callers must Unbind first.
type AlreadyBound struct {
	URL string
}

func (e *AlreadyBound) Error() string {
	return fmt.Sprintf("already bound to %s: unbind before binding again", e.URL)
}

func (e *AlreadyBound) Severity() failure.Severity { return failure.SeverityRecoverable }

var _ failure.ClassifiedError = (*AlreadyBound)(nil)

// NotBound is raised by Robots/Sitemaps/Get when called before Bind.
type NotBound struct{}

func (e *NotBound) Error() string {
	return "not bound to a site: call Bind before using this method"
}

func (e *NotBound) Severity() failure.Severity { return failure.SeverityRecoverable }

var _ failure.ClassifiedError = (*NotBound)(nil)
