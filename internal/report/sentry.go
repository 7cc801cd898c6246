package report

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SetupSentry initialises the Sentry client. An empty DSN leaves Sentry
// disabled; every report call then becomes a no-op.
func SetupSentry(dsn, env, version string) error {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          "stopfinder@" + version,
		EnableTracing:    true,
		TracesSampleRate: 0.2,
	}); err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}
	if dsn != "" {
		sentry.CaptureMessage("stopfinder started")
	}
	return nil
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
