// Package logger constructs the zap.SugaredLogger used throughout the store,
// tagging every logger with the service name that produced it.
package logger

import "go.uber.org/zap"

// New builds a production-configured, service-tagged SugaredLogger. If the
// underlying zap logger fails to build — which only happens for invalid
// static configuration — it falls back to zap's no-op logger rather than
// panicking, since logger construction must never be the reason a store
// fails to open.
func New(service string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return base.Named(service).Sugar()
}
