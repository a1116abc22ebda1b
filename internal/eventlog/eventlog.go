// Package eventlog keeps the append-only record of detection events for a
// session and derives the session summary from it.
package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/surfguard/surfguard/internal/domain/model"
	"github.com/surfguard/surfguard/pkg/logger"
)

// Sink persists events one record at a time. Rotation, retention and any
// other file policy belong to the sink, not the log.
type Sink interface {
	Append(ctx context.Context, event model.DetectionEvent) error
}

// Summary aggregates the session's events.
type Summary struct {
	TotalDetections int    `json:"total_detections"`
	TotalAlerts     int    `json:"total_alerts"`
	SessionDuration string `json:"session_duration"`
	FalsePositives  int    `json:"false_positives"`
}

// Log is the in-memory ordered event record plus its persisted sink.
// Record is safe under concurrent callers; a single mutex guards the
// append and the sink write together so order is preserved.
type Log struct {
	mu     sync.Mutex
	events []model.DetectionEvent

	sink      Sink
	exportDir string
	now       func() time.Time
	logger    logger.Logger
}

// New creates an event log. sink may be nil for a memory-only log.
func New(sink Sink, opts ...Option) *Log {
	l := &Log{
		sink:      sink,
		exportDir: "logs",
		now:       time.Now,
		logger:    logger.Named("events"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends a timestamped event to the in-memory log and the sink.
// Sink failures are logged, never silent, and do not drop the in-memory
// record.
func (l *Log) Record(ctx context.Context, eventType model.EventType, data map[string]any) {
	event := model.DetectionEvent{
		ID:        uuid.NewString(),
		Timestamp: l.now(),
		Type:      eventType,
		Data:      data,
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	var sinkErr error
	if l.sink != nil {
		sinkErr = l.sink.Append(ctx, event)
	}
	l.mu.Unlock()

	if sinkErr != nil {
		l.logger.Error(ctx, "failed to persist event",
			logger.String("event_type", string(eventType)),
			logger.Error(sinkErr),
		)
	}

	switch eventType {
	case model.EventAlert:
		l.logger.Warn(ctx, "alert recorded", logger.Any("data", data))
	case model.EventDetected:
		l.logger.Info(ctx, "detection recorded", logger.Any("data", data))
	default:
		l.logger.Debug(ctx, string(eventType), logger.Any("data", data))
	}
}

// Len returns the number of events recorded this session.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Events returns a copy of the session's events in record order.
func (l *Log) Events() []model.DetectionEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.DetectionEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Summary derives event counts and the session duration from the log.
func (l *Log) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Summary{SessionDuration: "0s"}
	for _, e := range l.events {
		switch e.Type {
		case model.EventDetected:
			s.TotalDetections++
		case model.EventAlert:
			s.TotalAlerts++
		case model.EventFalsePositive:
			s.FalsePositives++
		}
	}

	if len(l.events) > 0 {
		first := l.events[0].Timestamp
		last := l.events[len(l.events)-1].Timestamp
		s.SessionDuration = formatDuration(last.Sub(first))
	}
	return s
}

// Export serializes the full in-memory log as indented JSON. An empty
// path derives a timestamped file name under the export directory.
// Returns the path written.
func (l *Log) Export(ctx context.Context, path string) (string, error) {
	if path == "" {
		name := fmt.Sprintf("detection_logs_%s.json", l.now().Format("20060102_150405"))
		path = filepath.Join(l.exportDir, name)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	l.mu.Lock()
	data, err := json.MarshalIndent(l.events, "", "  ")
	l.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	l.logger.Info(ctx, "event log exported", logger.String("path", path))
	return path, nil
}

// formatDuration renders a duration showing only the largest non-zero
// unit and below: "2m 5s", "1h 0m 3s", "0s".
func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	mins := (total % 3600) / 60
	secs := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, mins, secs)
	case mins > 0:
		return fmt.Sprintf("%dm %ds", mins, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
