package report

import (
	"os"
	"runtime"
	"strconv"

	"github.com/getsentry/sentry-go"
)

// ConfigureScope tags every event with the deployment and the host it runs on.
func ConfigureScope(env, version string) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("env", env)
		scope.SetTag("app_version", version)
		scope.SetTag("go_version", runtime.Version())
		scope.SetContext("host_info", map[string]interface{}{
			"hostname": hostname,
		})
	})
}

// Tags builds a single-entry tag map for SentryReportOptions.
func Tags(key, value string) map[string]string {
	return map[string]string{key: value}
}

// SentryReportOptions provides optional data for reporting.
type SentryReportOptions struct {
	ExtraContext map[string]interface{}
	Tags         map[string]string
	Level        sentry.Level
}

// ReportError captures err at the given level, sentry.LevelError by default.
func ReportError(err error, levels ...sentry.Level) {
	opts := SentryReportOptions{}
	if len(levels) > 0 {
		opts.Level = levels[0]
	}
	ReportErrorWithSentryOptions(err, opts)
}

// ReportFeedError captures a failure tied to one configured feed. The source
// is the URL or path that failed and is attached under sourceKey.
func ReportFeedError(err error, feedID int, sourceKey, source string) {
	ReportErrorWithSentryOptions(err, SentryReportOptions{
		Tags:         Tags("feed_id", strconv.Itoa(feedID)),
		ExtraContext: map[string]interface{}{sourceKey: source},
	})
}

// ReportErrorWithSentryOptions reports the error with additional options (tags, context, level).
func ReportErrorWithSentryOptions(err error, opts SentryReportOptions) {
	if err == nil {
		return
	}

	level := opts.Level
	if level == "" {
		level = sentry.LevelError
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		if opts.ExtraContext != nil {
			scope.SetContext("extra", opts.ExtraContext)
		}
		for k, v := range opts.Tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}
