// Package metadata is the observability-only layer: structured log
// records and a closed ErrorCause taxonomy, plus the per-crawl correlation
// ID a Recorder stamps onto every log line emitted during one bind-to-unbind
// lifetime. Nothing in this package ever drives control flow.
package metadata

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rohmanhakim/ethicrawl/pkg/failure"
)

// Recorder mints a crawl ID at construction and returns a logger scoped to
// it, so every component built downstream of one Recorder (Scheduler,
// OriginContext, SitemapParser) tags its log output with the same crawl_id
// for the life of that bind.
type Recorder struct {
	crawlID string
	logger  *slog.Logger
}

// New builds a Recorder with a fresh crawl ID, scoping logger (or
// slog.Default() if nil) with it.
func New(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Recorder{
		crawlID: id,
		logger:  logger.With("crawl_id", id),
	}
}

// CrawlID returns the correlation ID minted for this bind lifetime.
func (r *Recorder) CrawlID() string { return r.crawlID }

// Logger returns the crawl-ID-scoped logger components downstream of this
// Recorder should be constructed with.
func (r *Recorder) Logger() *slog.Logger { return r.logger }

// RecordError logs err as a structured ErrorRecord, picking a log level
// from its Severity: Fatal and Recoverable log at warn (the crawl
// continues either way; only the caller decides whether to abort),
// Warning logs at info. cause and attrs are carried as structured fields
// for later querying; they never feed back into any decision this crawler
// makes.
func (r *Recorder) RecordError(packageName, action string, cause ErrorCause, err failure.ClassifiedError, attrs ...Attribute) {
	rec := ErrorRecord{
		packageName: packageName,
		action:      action,
		cause:       cause,
		errorString: err.Error(),
		observedAt:  time.Now(),
		attrs:       attrs,
	}

	args := make([]any, 0, 10+len(attrs)*2)
	args = append(args,
		"package", rec.packageName,
		"action", rec.action,
		"cause", rec.cause.String(),
		"error", rec.errorString,
		"observed_at", rec.observedAt,
	)
	for _, a := range rec.attrs {
		args = append(args, string(a.Key), a.Value)
	}

	switch err.Severity() {
	case failure.SeverityWarning:
		r.logger.Info("crawl event", args...)
	default:
		r.logger.Warn("crawl event", args...)
	}
}
