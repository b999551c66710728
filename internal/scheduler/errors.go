package scheduler

import (
	"fmt"

	"github.com/rohmanhakim/ethicrawl/pkg/failure"
)

// NotWhitelisted is raised by get/robot/sitemap when the resource's origin
// has no bound Context.
type NotWhitelisted struct {
	URL string
}

func (e *NotWhitelisted) Error() string {
	return fmt.Sprintf("%s is not whitelisted: bind its origin before use", e.URL)
}

func (e *NotWhitelisted) Severity() failure.Severity { return failure.SeverityRecoverable }

var _ failure.ClassifiedError = (*NotWhitelisted)(nil)

// NotBound is raised by unbind when the given origin has no bound Context.
type NotBound struct {
	URL string
}

func (e *NotBound) Error() string {
	return fmt.Sprintf("%s is not bound", e.URL)
}

func (e *NotBound) Severity() failure.Severity { return failure.SeverityRecoverable }

var _ failure.ClassifiedError = (*NotBound)(nil)
