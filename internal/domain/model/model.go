// Package model contains domain models passed between layers.
package model

import "time"

// Frame is a single captured camera image. The pixel buffer is grayscale,
// row-major, Width*Height bytes. Frames are borrowed by the pipeline for the
// duration of one tick and must not be retained past it.
type Frame struct {
	Pixels    []uint8
	Width     int
	Height    int
	Timestamp time.Time
}

// Valid reports whether the frame carries a well-formed pixel buffer.
func (f *Frame) Valid() bool {
	return f != nil && f.Width > 0 && f.Height > 0 && len(f.Pixels) == f.Width*f.Height
}

// BBox is an axis-aligned bounding box in pixel coordinates.
type BBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Area returns the box area; degenerate boxes yield zero or negative values
// and are treated as empty by IoU computations.
func (b BBox) Area() int { return b.W * b.H }

// FaceDetection is one detected face in a frame. Detections are produced
// fresh each tick; there is no identity across frames.
type FaceDetection struct {
	BBox       BBox    `json:"bbox"`
	Confidence float64 `json:"confidence"`
	CenterX    int     `json:"center_x"`
	CenterY    int     `json:"center_y"`
}

// NewFaceDetection builds a detection and derives the box center.
func NewFaceDetection(bbox BBox, confidence float64) FaceDetection {
	return FaceDetection{
		BBox:       bbox,
		Confidence: confidence,
		CenterX:    bbox.X + bbox.W/2,
		CenterY:    bbox.Y + bbox.H/2,
	}
}

// GazeDirection classifies where a face is looking relative to the screen.
type GazeDirection string

// Gaze direction values.
const (
	GazeLeft   GazeDirection = "left"
	GazeRight  GazeDirection = "right"
	GazeCenter GazeDirection = "center"
	GazeDown   GazeDirection = "down"
)

// GazeResult is the gaze estimate for a single face in a frame.
type GazeResult struct {
	// GazeX and GazeY form the unit-normalized gaze vector in
	// screen-relative axes. The zero vector means "no measurable gaze".
	GazeX float64 `json:"gaze_x"`
	GazeY float64 `json:"gaze_y"`

	Direction         GazeDirection `json:"direction"`
	Confidence        float64       `json:"confidence"`
	IsLookingAtScreen bool          `json:"is_looking_at_screen"`
	EyeOpenness       float64       `json:"eye_openness"`
}

// EventType identifies the kind of a detection event.
type EventType string

// Event types recorded over a session.
const (
	EventDetected      EventType = "detected"
	EventAlert         EventType = "alert"
	EventSystemStart   EventType = "system_start"
	EventSystemStop    EventType = "system_stop"
	EventFalsePositive EventType = "false_positive"
)

// DetectionEvent is an immutable, timestamped session event.
type DetectionEvent struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"event_type"`
	Data      map[string]any `json:"data,omitempty"`
}

// TickResult is the structured outcome of processing one camera tick.
type TickResult struct {
	Success   bool
	Skipped   bool
	Err       error
	Faces     []FaceDetection
	Gaze      []GazeResult
	Alert     bool
	FaceCount int
	LatencyMS float64
}
