package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry configures the global Sentry client. An empty DSN disables
// reporting; the returned func flushes pending events on shutdown.
func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// Reporter sends errors to a Sentry hub.
type Reporter struct {
	hub *sentry.Hub
}

// NewReporter wraps hub; nil uses the process-wide hub.
func NewReporter(hub *sentry.Hub) *Reporter {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &Reporter{hub: hub}
}

// Capture reports err with tags attached to an isolated scope.
func (r *Reporter) Capture(err error, tags map[string]string) {
	if r == nil || err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			if v != "" {
				scope.SetTag(k, v)
			}
		}
		r.hub.CaptureException(err)
	})
}
