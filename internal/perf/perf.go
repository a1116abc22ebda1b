// Package perf tracks rolling-window latency statistics for the
// detection pipeline.
package perf

import (
	"sync"

	"github.com/surfguard/surfguard/pkg/metrics"
)

// Default monitor configuration constants.
const (
	defaultWindowSize = 30
	msPerSecond       = 1000.0
)

// Window is a fixed-capacity FIFO ring of latency samples in milliseconds.
// When full, the oldest sample is evicted. Length never exceeds capacity.
type Window struct {
	samples []float64
	head    int
	count   int
}

// NewWindow creates a ring with the given capacity. Capacities below one
// fall back to the default.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = defaultWindowSize
	}
	return &Window{samples: make([]float64, capacity)}
}

// Record appends a sample, evicting the oldest when the ring is full.
func (w *Window) Record(ms float64) {
	w.samples[w.head] = ms
	w.head = (w.head + 1) % len(w.samples)
	if w.count < len(w.samples) {
		w.count++
	}
}

// Len returns the current number of samples.
func (w *Window) Len() int { return w.count }

// Avg returns the mean of the held samples, or 0 for an empty window.
func (w *Window) Avg() float64 {
	if w.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < w.count; i++ {
		sum += w.samples[i]
	}
	return sum / float64(w.count)
}

// Monitor aggregates frame and detection latency windows. It has its own
// narrow lock so recorders never contend with the orchestrator state lock.
type Monitor struct {
	mu             sync.Mutex
	frameTimes     *Window
	detectionTimes *Window
}

// Option applies a configuration option to the Monitor.
type Option func(*Monitor)

// WithWindowSize sets the sample window capacity for both windows.
func WithWindowSize(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.frameTimes = NewWindow(n)
			m.detectionTimes = NewWindow(n)
		}
	}
}

// NewMonitor creates a monitor with configuration options.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		frameTimes:     NewWindow(defaultWindowSize),
		detectionTimes: NewWindow(defaultWindowSize),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecordFrameTime records one frame's end-to-end processing latency.
func (m *Monitor) RecordFrameTime(ms float64) {
	m.mu.Lock()
	m.frameTimes.Record(ms)
	m.mu.Unlock()
	metrics.RecordFrameLatency(ms)
}

// RecordDetectionTime records one backend detection call's latency.
func (m *Monitor) RecordDetectionTime(ms float64) {
	m.mu.Lock()
	m.detectionTimes.Record(ms)
	m.mu.Unlock()
	metrics.RecordDetectionLatency(ms)
}

// AvgFrameTime returns the mean frame latency in milliseconds.
func (m *Monitor) AvgFrameTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frameTimes.Avg()
}

// AvgDetectionTime returns the mean detection latency in milliseconds.
func (m *Monitor) AvgDetectionTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detectionTimes.Avg()
}

// FPS derives frames-per-second from the frame window: 1000/avg for
// non-empty windows, 0 otherwise.
func (m *Monitor) FPS() float64 {
	avg := m.AvgFrameTime()
	if avg <= 0 {
		return 0
	}
	return msPerSecond / avg
}

// Snapshot is the read-only performance view exposed to transports.
type Snapshot struct {
	FPS                float64 `json:"fps"`
	AvgFrameTimeMS     float64 `json:"avg_frame_time_ms"`
	AvgDetectionTimeMS float64 `json:"avg_detection_time_ms"`
}

// Metrics returns the current performance snapshot and refreshes the
// exported FPS gauge.
func (m *Monitor) Metrics() Snapshot {
	s := Snapshot{
		FPS:                m.FPS(),
		AvgFrameTimeMS:     m.AvgFrameTime(),
		AvgDetectionTimeMS: m.AvgDetectionTime(),
	}
	metrics.UpdateFPS(s.FPS)
	return s
}
