// Package gaze derives gaze direction, eye openness and confidence from a
// pluggable facial-landmark backend.
package gaze

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/surfguard/surfguard/internal/domain/model"
	"github.com/surfguard/surfguard/internal/perf"
	"github.com/surfguard/surfguard/pkg/logger"
	"github.com/surfguard/surfguard/pkg/metrics"
)

// Landmark is one point of a face mesh, with x/y normalized to [0,1] in
// frame coordinates and z carrying the backend's depth/quality estimate.
type Landmark struct {
	X float64
	Y float64
	Z float64
}

// Mesh is the full landmark set for a single face.
type Mesh []Landmark

// Backend produces face meshes from frames. Return an empty slice when no
// faces are found. Backends are not assumed reentrant.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Meshes returns one landmark mesh per face found in the frame.
	Meshes(ctx context.Context, frame *model.Frame) ([]Mesh, error)

	// Close releases backend resources.
	Close() error
}

// Estimator turns landmark meshes into gaze results. A nil or failed
// backend makes the estimator permanently unavailable; callers check
// Available and disable the gaze alert rule instead of erroring.
type Estimator struct {
	mu      sync.Mutex
	backend Backend
	monitor *perf.Monitor
	logger  logger.Logger
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithMonitor routes backend latency samples into a performance monitor.
func WithMonitor(m *perf.Monitor) Option {
	return func(e *Estimator) {
		if m != nil {
			e.monitor = m
		}
	}
}

// WithLogger sets a custom logger for the estimator.
func WithLogger(l logger.Logger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an estimator over the given mesh backend. backend may be
// nil, in which case the estimator reports unavailable.
func New(ctx context.Context, backend Backend, opts ...Option) *Estimator {
	e := &Estimator{
		backend: backend,
		logger:  logger.Named("gaze"),
	}
	for _, opt := range opts {
		opt(e)
	}

	if backend == nil {
		e.logger.Warn(ctx, "no landmark backend configured, gaze estimation disabled")
	} else {
		e.logger.Info(ctx, "gaze estimation enabled", logger.String("backend", backend.Name()))
	}
	return e
}

// Available reports whether a landmark backend is loaded.
func (e *Estimator) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backend != nil
}

// Estimate returns one gaze result per face mesh found in the frame.
// It returns an empty list when the backend is unavailable or fails.
func (e *Estimator) Estimate(ctx context.Context, frame *model.Frame) []model.GazeResult {
	if !frame.Valid() {
		return nil
	}

	e.mu.Lock()
	backend := e.backend
	e.mu.Unlock()
	if backend == nil {
		return nil
	}

	start := time.Now()
	e.mu.Lock()
	meshes, err := backend.Meshes(ctx, frame)
	e.mu.Unlock()
	if e.monitor != nil {
		e.monitor.RecordDetectionTime(float64(time.Since(start).Microseconds()) / 1000.0)
	}

	if err != nil {
		metrics.RecordBackendError(backend.Name())
		e.logger.Warn(ctx, "gaze estimation failed, skipping frame",
			logger.String("backend", backend.Name()),
			logger.Error(err),
		)
		return nil
	}

	results := make([]model.GazeResult, 0, len(meshes))
	for _, mesh := range meshes {
		if r, ok := e.processMesh(mesh, frame.Width, frame.Height); ok {
			results = append(results, r)
		}
	}
	return results
}

// Close releases the landmark backend.
func (e *Estimator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return nil
	}
	err := e.backend.Close()
	e.backend = nil
	return err
}

// processMesh derives the gaze result for one face. Meshes too short to
// index the landmark sets are discarded.
func (e *Estimator) processMesh(mesh Mesh, width, height int) (model.GazeResult, bool) {
	if len(mesh) <= maxLandmarkIndex {
		return model.GazeResult{}, false
	}

	leftEye := centroid(mesh, leftEyeIndices, width, height)
	rightEye := centroid(mesh, rightEyeIndices, width, height)
	leftIris := centroid(mesh, leftIrisIndices, width, height)
	rightIris := centroid(mesh, rightIrisIndices, width, height)

	// Per-eye gaze is iris center minus eye-socket center; the face gaze
	// is the average of both eyes.
	gx := ((leftIris.x - leftEye.x) + (rightIris.x - rightEye.x)) / 2
	gy := ((leftIris.y - leftEye.y) + (rightIris.y - rightEye.y)) / 2

	mag := math.Hypot(gx, gy)
	if mag > 0 {
		gx /= mag
		gy /= mag
	} else {
		gx, gy = 0, 0
	}

	direction, looking := Classify(gx, gy)

	return model.GazeResult{
		GazeX:             gx,
		GazeY:             gy,
		Direction:         direction,
		IsLookingAtScreen: looking,
		EyeOpenness:       eyeOpenness(mesh),
		Confidence:        meshConfidence(mesh),
	}, true
}

type point struct {
	x, y float64
}

// centroid averages landmark positions scaled to pixel coordinates.
func centroid(mesh Mesh, indices []int, width, height int) point {
	var sx, sy float64
	for _, i := range indices {
		sx += mesh[i].X * float64(width)
		sy += mesh[i].Y * float64(height)
	}
	n := float64(len(indices))
	return point{x: sx / n, y: sy / n}
}
