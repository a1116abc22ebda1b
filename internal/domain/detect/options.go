package detect

import (
	"github.com/surfguard/surfguard/internal/perf"
	"github.com/surfguard/surfguard/pkg/logger"
)

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithConfidenceThreshold sets the minimum confidence for a detection to
// survive filtering.
func WithConfidenceThreshold(threshold float64) Option {
	return func(d *Detector) {
		if threshold > 0 && threshold <= 1 {
			d.confidenceThreshold = threshold
		}
	}
}

// WithIoUThreshold sets the overlap ratio above which two detections are
// considered duplicates.
func WithIoUThreshold(threshold float64) Option {
	return func(d *Detector) {
		if threshold > 0 && threshold < 1 {
			d.iouThreshold = threshold
		}
	}
}

// WithMonitor routes backend latency samples into a performance monitor.
func WithMonitor(m *perf.Monitor) Option {
	return func(d *Detector) {
		if m != nil {
			d.monitor = m
		}
	}
}

// WithLogger sets a custom logger for the detector.
func WithLogger(l logger.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}
