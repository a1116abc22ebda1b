// Package testfeed provides deterministic synthetic collaborators: a
// scripted camera, face-detection backend and landmark backend. They
// drive end-to-end tests and the feed-camera tool without hardware.
package testfeed

import (
	"context"
	"sync"
	"time"

	"github.com/surfguard/surfguard/internal/domain/detect"
	"github.com/surfguard/surfguard/internal/domain/gaze"
	"github.com/surfguard/surfguard/internal/domain/model"
)

// Synthetic frame geometry constants.
const (
	FrameWidth  = 640
	FrameHeight = 480

	faceSize    = 120
	faceSpacing = 160
)

// Camera produces gray synthetic frames. It satisfies the orchestrator's
// camera contract and tolerates repeated open/close cycles.
type Camera struct {
	mu     sync.Mutex
	open   bool
	frames int
	fps    int
}

// NewCamera creates a synthetic camera.
func NewCamera(fps int) *Camera {
	if fps <= 0 {
		fps = 30
	}
	return &Camera{fps: fps}
}

// Open marks the camera available.
func (c *Camera) Open(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	return nil
}

// ReadFrame returns the next synthetic frame.
func (c *Camera) ReadFrame(_ context.Context) (*model.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil, ErrClosed
	}
	c.frames++
	return &model.Frame{
		Pixels:    make([]uint8, FrameWidth*FrameHeight),
		Width:     FrameWidth,
		Height:    FrameHeight,
		Timestamp: time.Now(),
	}, nil
}

// Close marks the camera unavailable.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// Properties describes the synthetic capture.
func (c *Camera) Properties() map[string]any {
	return map[string]any{
		"width":  FrameWidth,
		"height": FrameHeight,
		"fps":    c.fps,
		"source": "synthetic",
	}
}

// FrameCount returns how many frames were read.
func (c *Camera) FrameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Backend is a scripted face-detection backend: call i returns the ith
// face count from the script, repeating the final entry when exhausted.
// An empty script yields no faces.
type Backend struct {
	mu     sync.Mutex
	script []int
	calls  int
}

// NewBackend creates a scripted backend from a face-count script.
func NewBackend(script []int) *Backend {
	return &Backend{script: script}
}

// NewBackendLoader wraps a scripted backend in a detector loader.
func NewBackendLoader(script []int) detect.Loader {
	return func() (detect.Backend, error) {
		return NewBackend(script), nil
	}
}

// Name identifies the backend.
func (b *Backend) Name() string { return "scripted" }

// Detect fabricates the scripted number of non-overlapping detections.
func (b *Backend) Detect(_ context.Context, _ *model.Frame) ([]model.FaceDetection, error) {
	b.mu.Lock()
	idx := b.calls
	b.calls++
	if idx >= len(b.script) {
		idx = len(b.script) - 1
	}
	b.mu.Unlock()

	if idx < 0 {
		return nil, nil
	}
	return Faces(b.script[idx]), nil
}

// Faces fabricates n laterally spaced detections with high confidence.
func Faces(n int) []model.FaceDetection {
	faces := make([]model.FaceDetection, 0, n)
	for i := 0; i < n; i++ {
		faces = append(faces, model.NewFaceDetection(model.BBox{
			X: 20 + i*faceSpacing,
			Y: 80,
			W: faceSize,
			H: faceSize,
		}, 0.95))
	}
	return faces
}

// Mesh landmark constants for fabricated face meshes.
const meshSize = 478

var irisIndices = []int{468, 469, 470, 471, 472, 473, 474, 475, 476, 477}

// MeshAt fabricates a full face mesh whose iris centroids are offset from
// the eye centroids by (dx, dy), with every landmark carrying depth z.
// After normalization the estimator sees a unit gaze vector along (dx, dy).
func MeshAt(dx, dy, z float64) gaze.Mesh {
	mesh := make(gaze.Mesh, meshSize)
	for i := range mesh {
		mesh[i] = gaze.Landmark{X: 0.5, Y: 0.5, Z: z}
	}
	for _, i := range irisIndices {
		mesh[i] = gaze.Landmark{X: 0.5 + dx, Y: 0.5 + dy, Z: z}
	}
	return mesh
}

// MeshBackend is a scripted landmark backend returning a fixed mesh per
// configured gaze vector.
type MeshBackend struct {
	mu     sync.Mutex
	meshes []gaze.Mesh
	closed bool
}

// NewMeshBackend creates a landmark backend that always reports the
// given meshes.
func NewMeshBackend(meshes ...gaze.Mesh) *MeshBackend {
	return &MeshBackend{meshes: meshes}
}

// Name identifies the backend.
func (m *MeshBackend) Name() string { return "scripted-mesh" }

// Meshes returns the scripted meshes.
func (m *MeshBackend) Meshes(_ context.Context, _ *model.Frame) ([]gaze.Mesh, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.meshes, nil
}

// Close marks the backend released.
func (m *MeshBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
