// Package detect runs pluggable face-detection backends and filters
// duplicate detections via IoU suppression.
package detect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/surfguard/surfguard/internal/domain/model"
	"github.com/surfguard/surfguard/internal/perf"
	"github.com/surfguard/surfguard/pkg/logger"
	"github.com/surfguard/surfguard/pkg/metrics"
)

// Default detector configuration constants.
const (
	defaultConfidenceThreshold = 0.5
	defaultIoUThreshold        = 0.3
)

// Backend is a concrete face-detection model. Implementations are not
// assumed reentrant; the detector serializes calls through its own lock.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Detect finds faces in a well-formed frame.
	Detect(ctx context.Context, frame *model.Frame) ([]model.FaceDetection, error)
}

// Loader constructs a Backend, typically loading model weights from disk.
type Loader func() (Backend, error)

// Detector wraps a backend with confidence filtering and degradation
// handling. Construction walks the loader chain in order and keeps the
// first backend that loads, logging every fallback.
type Detector struct {
	mu      sync.Mutex
	backend Backend

	confidenceThreshold float64
	iouThreshold        float64
	monitor             *perf.Monitor
	logger              logger.Logger
}

// New builds a Detector from a fallback chain of backend loaders.
// It fails only when no loader in the chain succeeds.
func New(ctx context.Context, loaders []Loader, opts ...Option) (*Detector, error) {
	d := &Detector{
		confidenceThreshold: defaultConfidenceThreshold,
		iouThreshold:        defaultIoUThreshold,
		logger:              logger.Named("detect"),
	}

	for _, opt := range opts {
		opt(d)
	}

	if len(loaders) == 0 {
		return nil, ErrNoBackend
	}

	var lastErr error
	for i, load := range loaders {
		backend, err := load()
		if err != nil {
			lastErr = err
			d.logger.Warn(ctx, "face-detection backend unavailable, falling back",
				logger.Int("chain_index", i),
				logger.Error(err),
			)
			continue
		}
		d.backend = backend
		if i > 0 {
			d.logger.Warn(ctx, "running degraded face-detection backend",
				logger.String("backend", backend.Name()),
			)
		} else {
			d.logger.Info(ctx, "face-detection backend loaded",
				logger.String("backend", backend.Name()),
			)
		}
		break
	}

	if d.backend == nil {
		return nil, fmt.Errorf("%w: %w", ErrNoBackend, lastErr)
	}

	return d, nil
}

// BackendName returns the name of the active backend.
func (d *Detector) BackendName() string {
	return d.backend.Name()
}

// IoUThreshold returns the configured overlap-suppression threshold.
func (d *Detector) IoUThreshold() float64 {
	return d.iouThreshold
}

// Detect finds faces in the frame. A malformed frame or a backend failure
// yields an empty list, never a panic; failures are logged and counted.
func (d *Detector) Detect(ctx context.Context, frame *model.Frame) []model.FaceDetection {
	if !frame.Valid() {
		return nil
	}

	start := time.Now()
	d.mu.Lock()
	detections, err := d.backend.Detect(ctx, frame)
	d.mu.Unlock()
	if d.monitor != nil {
		d.monitor.RecordDetectionTime(float64(time.Since(start).Microseconds()) / 1000.0)
	}

	if err != nil {
		metrics.RecordBackendError(d.backend.Name())
		d.logger.Warn(ctx, "face detection failed, skipping frame",
			logger.String("backend", d.backend.Name()),
			logger.Error(err),
		)
		return nil
	}

	kept := detections[:0:0]
	for _, det := range detections {
		if det.Confidence >= d.confidenceThreshold {
			kept = append(kept, det)
		}
	}
	return kept
}
