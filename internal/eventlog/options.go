package eventlog

import (
	"time"

	"github.com/surfguard/surfguard/pkg/logger"
)

// Option applies a configuration option to the Log.
type Option func(*Log)

// WithExportDir sets the directory used for timestamp-derived export paths.
func WithExportDir(dir string) Option {
	return func(l *Log) {
		if dir != "" {
			l.exportDir = dir
		}
	}
}

// WithNow overrides the clock, primarily for tests.
func WithNow(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets a custom logger for the event log.
func WithLogger(lg logger.Logger) Option {
	return func(l *Log) {
		if lg != nil {
			l.logger = lg
		}
	}
}
