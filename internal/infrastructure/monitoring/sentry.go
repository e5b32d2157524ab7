package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kidpech/logviewer/internal/config"
)

// InitSentry configures sentry if DSN provided.
func InitSentry(cfg config.MonitoringConfig, app config.AppConfig) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Release:          app.Version,
		Environment:      app.Env,
		TracesSampleRate: cfg.SentrySampleRate,
	})
}

// ReportError forwards a captured Error line to sentry, tagged with the
// logger that produced it. No-op until sentry is configured.
func ReportError(hub *sentry.Hub, logger, message string) {
	if hub == nil || hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetTag("source", "logviewer")
		if logger != "" {
			scope.SetTag("logger", logger)
		}
		hub.CaptureMessage(message)
	})
}

// Flush ensures buffered events ship.
func Flush() {
	sentry.Flush(2 * time.Second)
}
