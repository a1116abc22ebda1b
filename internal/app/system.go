// Package app coordinates the per-frame detection pipeline: face detect,
// overlap suppression, gaze classification, the alert decision, blur
// transitions and event/metrics bookkeeping.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/surfguard/surfguard/internal/blur"
	"github.com/surfguard/surfguard/internal/domain/detect"
	"github.com/surfguard/surfguard/internal/domain/gaze"
	"github.com/surfguard/surfguard/internal/domain/model"
	"github.com/surfguard/surfguard/internal/eventlog"
	"github.com/surfguard/surfguard/internal/perf"
	"github.com/surfguard/surfguard/pkg/logger"
	"github.com/surfguard/surfguard/pkg/metrics"
)

// Default orchestrator configuration constants.
const (
	defaultMinFacesForAlert = 2
	defaultFrameSkip        = 1
	defaultLatencyCeilingMS = 200.0
	gazeAlertConfidence     = 0.6
	loopIdleDelay           = time.Millisecond
)

// Camera is the external frame source. It must tolerate repeated
// open/close cycles across system restarts.
type Camera interface {
	Open(ctx context.Context) error
	ReadFrame(ctx context.Context) (*model.Frame, error)
	Close() error
	Properties() map[string]any
}

// MetricsSnapshot is the metrics contract polled by transports and
// dashboards.
type MetricsSnapshot struct {
	Performance      perf.Snapshot    `json:"performance"`
	DetectionSummary eventlog.Summary `json:"detection_summary"`
	BlurActive       bool             `json:"blur_active"`
	FrameCount       int64            `json:"frame_count"`
}

// System owns the detection lifecycle and all mutable session state. The
// state lock is held only for state reads/writes, never across camera or
// backend calls, so UI-thread callers are never stalled by a slow frame.
type System struct {
	mu sync.Mutex

	// State, guarded by mu.
	isRunning         bool
	isPaused          bool
	frameCounter      int64
	consecutiveAlerts int
	sessionID         string

	// Configuration, guarded by mu where mutable at runtime.
	minFacesForAlert int
	frameSkip        int64
	latencyCeilingMS float64
	gazeEnabled      bool
	blurEnabled      bool

	// Collaborators.
	camera    Camera
	detector  *detect.Detector
	estimator *gaze.Estimator
	blurMgr   *blur.Manager
	events    *eventlog.Log
	monitor   *perf.Monitor
	logger    logger.Logger
}

// New constructs a detection system from its collaborators.
func New(camera Camera, detector *detect.Detector, opts ...Option) *System {
	s := &System{
		camera:           camera,
		detector:         detector,
		minFacesForAlert: defaultMinFacesForAlert,
		frameSkip:        defaultFrameSkip,
		latencyCeilingMS: defaultLatencyCeilingMS,
		blurEnabled:      true,
		monitor:          perf.NewMonitor(),
		logger:           logger.Named("system"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.blurMgr == nil {
		s.blurMgr = blur.New(nil)
	}
	if s.events == nil {
		s.events = eventlog.New(nil)
	}
	return s
}

// Start acquires the camera and transitions to RUNNING. It returns false,
// with a warning, when already running, and false when the camera cannot
// be opened.
func (s *System) Start(ctx context.Context) bool {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		s.logger.Warn(ctx, "system already running")
		return false
	}
	camera := s.camera
	s.mu.Unlock()

	// Camera acquisition happens outside the state lock; it can block.
	if err := camera.Open(ctx); err != nil {
		metrics.RecordCameraError()
		s.logger.Error(ctx, "failed to open camera", logger.Error(err))
		return false
	}

	s.mu.Lock()
	s.isRunning = true
	s.isPaused = false
	s.frameCounter = 0
	s.consecutiveAlerts = 0
	s.sessionID = uuid.NewString()
	sessionID := s.sessionID
	s.mu.Unlock()

	s.events.Record(ctx, model.EventSystemStart, map[string]any{
		"session_id":        sessionID,
		"camera_properties": camera.Properties(),
	})
	s.logger.Info(ctx, "detection system started", logger.String("session_id", sessionID))
	return true
}

// Stop releases the camera and gaze resources, forces blur off and
// records the session summary. Stopping a stopped system is a no-op.
func (s *System) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.isPaused = false
	camera := s.camera
	s.mu.Unlock()

	if err := camera.Close(); err != nil {
		s.logger.Warn(ctx, "camera close failed", logger.Error(err))
	}
	if s.estimator != nil {
		if err := s.estimator.Close(); err != nil {
			s.logger.Warn(ctx, "gaze backend close failed", logger.Error(err))
		}
	}
	s.blurMgr.Disable()

	s.events.Record(ctx, model.EventSystemStop, map[string]any{
		"session_summary": s.events.Summary(),
	})
	s.logger.Info(ctx, "detection system stopped")
}

// Pause suspends the alert rule and event recording without touching the
// camera or the overlay.
func (s *System) Pause(ctx context.Context) {
	s.mu.Lock()
	s.isPaused = true
	s.mu.Unlock()
	s.logger.Info(ctx, "detection paused")
}

// Resume re-enables the alert rule.
func (s *System) Resume(ctx context.Context) {
	s.mu.Lock()
	s.isPaused = false
	s.mu.Unlock()
	s.logger.Info(ctx, "detection resumed")
}

// Running reports whether the system is in the RUNNING or PAUSED state.
func (s *System) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Paused reports whether the alert rule is suspended.
func (s *System) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isPaused
}

// SetMinFacesForAlert updates the face-count alert threshold.
func (s *System) SetMinFacesForAlert(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	s.minFacesForAlert = n
	s.mu.Unlock()
}

// SetBlurEnabled toggles whether alerts drive the blur overlay.
func (s *System) SetBlurEnabled(enabled bool) {
	s.mu.Lock()
	s.blurEnabled = enabled
	s.mu.Unlock()
}

// ProcessTick runs one full pipeline pass: read frame, decimate, detect,
// suppress duplicates, estimate gaze, decide the alert, drive blur and
// record events and latency.
func (s *System) ProcessTick(ctx context.Context) model.TickResult {
	start := time.Now()

	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return model.TickResult{Err: ErrNotRunning}
	}
	camera := s.camera
	s.mu.Unlock()

	frame, err := camera.ReadFrame(ctx)
	if err != nil {
		metrics.RecordCameraError()
		return model.TickResult{Err: fmt.Errorf("%w: %w", ErrFrameRead, err)}
	}

	s.mu.Lock()
	s.frameCounter++
	counter := s.frameCounter
	skip := s.frameSkip
	gazeEnabled := s.gazeEnabled
	blurEnabled := s.blurEnabled
	s.mu.Unlock()

	if counter%skip != 0 {
		metrics.RecordFrameSkipped()
		return model.TickResult{Skipped: true}
	}

	faces := s.detector.Detect(ctx, frame)
	faces = detect.SuppressOverlaps(faces, s.detector.IoUThreshold())
	metrics.RecordFacesDetected(len(faces))

	var gazeResults []model.GazeResult
	if gazeEnabled && s.estimator != nil && s.estimator.Available() {
		gazeResults = s.estimator.Estimate(ctx, frame)
	}

	alert, paused := s.evaluateAlert(faces, gazeResults, gazeEnabled)

	if blurEnabled {
		if edge := s.blurMgr.Apply(alert); edge {
			if alert {
				s.logger.Warn(ctx, "screen blur activated",
					logger.Int("face_count", len(faces)),
				)
			} else {
				s.logger.Info(ctx, "screen blur deactivated")
			}
		}
		s.blurMgr.StepTransition()
	}

	if alert && !paused {
		s.events.Record(ctx, model.EventDetected, map[string]any{
			"face_count": len(faces),
		})
		s.events.Record(ctx, model.EventAlert, map[string]any{
			"face_count":  len(faces),
			"gaze_threat": len(gazeResults) > 0,
		})
		metrics.RecordAlert()
	}

	latency := float64(time.Since(start).Microseconds()) / 1000.0
	s.monitor.RecordFrameTime(latency)
	metrics.RecordFrameProcessed()

	s.mu.Lock()
	ceiling := s.latencyCeilingMS
	s.mu.Unlock()
	if latency > ceiling {
		metrics.RecordLatencyWarning()
		s.logger.Warn(ctx, "high frame latency",
			logger.Float64("latency_ms", latency),
			logger.Float64("ceiling_ms", ceiling),
		)
	}

	return model.TickResult{
		Success:   true,
		Faces:     faces,
		Gaze:      gazeResults,
		Alert:     alert,
		FaceCount: len(faces),
		LatencyMS: latency,
	}
}

// evaluateAlert applies the alert rule and maintains the consecutive
// alert counter. A paused system never alerts.
func (s *System) evaluateAlert(faces []model.FaceDetection, gazeResults []model.GazeResult, gazeEnabled bool) (alert, paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isPaused {
		return false, true
	}

	if len(faces) >= s.minFacesForAlert {
		s.consecutiveAlerts++
		return true, false
	}
	s.consecutiveAlerts = 0

	if gazeEnabled {
		for _, g := range gazeResults {
			if !g.IsLookingAtScreen && g.Confidence > gazeAlertConfidence {
				return true, false
			}
		}
	}
	return false, false
}

// Run drives ProcessTick until the duration elapses (when positive), the
// system is stopped, or ctx is canceled. Stop always runs on exit so the
// camera and overlay are released even on failure paths.
func (s *System) Run(ctx context.Context, duration time.Duration) error {
	if !s.Start(ctx) {
		return ErrStartFailed
	}
	defer s.Stop(ctx)

	deadline := time.Time{}
	if duration > 0 {
		deadline = time.Now().Add(duration)
	}

	for s.Running() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "detection loop interrupted")
			return nil
		default:
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			return nil
		}

		result := s.ProcessTick(ctx)
		switch {
		case result.Err != nil && errors.Is(result.Err, ErrNotRunning):
			return nil
		case result.Err != nil:
			s.logger.Warn(ctx, "tick failed", logger.Error(result.Err))
		case result.Success:
			s.logger.Debug(ctx, "tick",
				logger.Int("faces", result.FaceCount),
				logger.Bool("alert", result.Alert),
				logger.Float64("latency_ms", result.LatencyMS),
			)
		}

		// Brief idle to avoid spinning when frames are instant.
		time.Sleep(loopIdleDelay)
	}
	return nil
}

// Metrics returns the snapshot polled by the transport layer.
func (s *System) Metrics() MetricsSnapshot {
	s.mu.Lock()
	frameCount := s.frameCounter
	s.mu.Unlock()

	return MetricsSnapshot{
		Performance:      s.monitor.Metrics(),
		DetectionSummary: s.events.Summary(),
		BlurActive:       s.blurMgr.Active(),
		FrameCount:       frameCount,
	}
}

// ExportReport serializes the session event log; an empty path derives a
// timestamped one. Returns the path written.
func (s *System) ExportReport(ctx context.Context, path string) (string, error) {
	return s.events.Export(ctx, path)
}
