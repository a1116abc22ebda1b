package app

import (
	"github.com/surfguard/surfguard/internal/blur"
	"github.com/surfguard/surfguard/internal/domain/gaze"
	"github.com/surfguard/surfguard/internal/eventlog"
	"github.com/surfguard/surfguard/internal/perf"
	"github.com/surfguard/surfguard/pkg/logger"
)

// Option applies a configuration option to the System.
type Option func(*System)

// WithGazeEstimator enables the gaze alert rule backed by the estimator.
func WithGazeEstimator(e *gaze.Estimator) Option {
	return func(s *System) {
		if e != nil {
			s.estimator = e
			s.gazeEnabled = true
		}
	}
}

// WithBlurManager sets the blur state manager driving the overlay.
func WithBlurManager(m *blur.Manager) Option {
	return func(s *System) {
		if m != nil {
			s.blurMgr = m
		}
	}
}

// WithEventLog sets the session event log.
func WithEventLog(l *eventlog.Log) Option {
	return func(s *System) {
		if l != nil {
			s.events = l
		}
	}
}

// WithMonitor sets the shared performance monitor.
func WithMonitor(m *perf.Monitor) Option {
	return func(s *System) {
		if m != nil {
			s.monitor = m
		}
	}
}

// WithMinFacesForAlert sets the face-count alert threshold.
func WithMinFacesForAlert(n int) Option {
	return func(s *System) {
		if n > 0 {
			s.minFacesForAlert = n
		}
	}
}

// WithFrameSkip processes only every nth captured frame.
func WithFrameSkip(n int) Option {
	return func(s *System) {
		if n > 0 {
			s.frameSkip = int64(n)
		}
	}
}

// WithLatencyCeiling sets the advisory per-tick latency ceiling in
// milliseconds.
func WithLatencyCeiling(ms float64) Option {
	return func(s *System) {
		if ms > 0 {
			s.latencyCeilingMS = ms
		}
	}
}

// WithBlurEnabled toggles whether alerts drive the blur overlay.
func WithBlurEnabled(enabled bool) Option {
	return func(s *System) {
		s.blurEnabled = enabled
	}
}

// WithLogger sets a custom logger for the system.
func WithLogger(l logger.Logger) Option {
	return func(s *System) {
		if l != nil {
			s.logger = l
		}
	}
}
