// Package blur tracks the screen-blur overlay state and drives an
// external overlay collaborator through edge-triggered transitions.
package blur

import (
	"math"
	"sync"

	"github.com/surfguard/surfguard/pkg/metrics"
)

// Default overlay configuration constants.
const (
	defaultIntensity      = 25
	defaultOpacity        = 0.85
	transitionRate        = 0.1
	transitionSnapEpsilon = 0.01
)

// Overlay is the external display sink. Calls are fire-and-forget; the
// manager consumes no return values.
type Overlay interface {
	Enable()
	Disable()
	SetIntensity(n int)
	SetOpacity(f float64)
}

// Manager tracks blur on/off state. Transitions are idempotent: enabling
// while active (or disabling while inactive) is a no-op and must not
// re-fire the overlay side effect. Camera-processing and UI threads both
// touch this state, so every access goes through the mutex.
type Manager struct {
	mu        sync.Mutex
	active    bool
	intensity int
	opacity   float64
	overlay   Overlay

	// Smooth-transition state, advanced once per pipeline tick.
	currentOpacity float64
	targetOpacity  float64
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithIntensity sets the initial blur kernel size.
func WithIntensity(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.intensity = oddKernel(n)
		}
	}
}

// WithOpacity sets the initial overlay opacity.
func WithOpacity(f float64) Option {
	return func(m *Manager) {
		m.opacity = clamp01(f)
	}
}

// New creates a blur manager driving the given overlay. overlay may be
// nil, in which case only state is tracked.
func New(overlay Overlay, opts ...Option) *Manager {
	m := &Manager{
		overlay:   overlay,
		intensity: defaultIntensity,
		opacity:   defaultOpacity,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enable transitions to the active state. Returns true only on the
// inactive-to-active edge.
func (m *Manager) Enable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return false
	}
	m.active = true
	m.targetOpacity = m.opacity
	if m.overlay != nil {
		m.overlay.Enable()
	}
	metrics.UpdateBlurActive(true)
	metrics.RecordBlurTransition("on")
	return true
}

// Disable transitions to the inactive state. Returns true only on the
// active-to-inactive edge.
func (m *Manager) Disable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return false
	}
	m.active = false
	m.targetOpacity = 0
	if m.overlay != nil {
		m.overlay.Disable()
	}
	metrics.UpdateBlurActive(false)
	metrics.RecordBlurTransition("off")
	return true
}

// Apply forwards an alert judgment to the overlay, returning true when a
// state transition actually fired.
func (m *Manager) Apply(alert bool) bool {
	if alert {
		return m.Enable()
	}
	return m.Disable()
}

// Active reports the current blur state.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// SetIntensity updates the blur kernel size, normalizing even sizes up to
// the next odd value before forwarding downstream.
func (m *Manager) SetIntensity(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.intensity = oddKernel(n)
	if m.overlay != nil {
		m.overlay.SetIntensity(m.intensity)
	}
}

// Intensity returns the current (odd) kernel size.
func (m *Manager) Intensity() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intensity
}

// SetOpacity updates the overlay opacity, clamped to [0,1].
func (m *Manager) SetOpacity(f float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opacity = clamp01(f)
	if m.active {
		m.targetOpacity = m.opacity
	}
	if m.overlay != nil {
		m.overlay.SetOpacity(m.opacity)
	}
}

// Opacity returns the configured overlay opacity.
func (m *Manager) Opacity() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opacity
}

// StepTransition advances the smooth opacity interpolation by one tick
// and returns the interpolated opacity. The pipeline loop calls this so
// no hidden timer thread is needed.
func (m *Manager) StepTransition() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	diff := m.targetOpacity - m.currentOpacity
	if math.Abs(diff) < transitionSnapEpsilon {
		m.currentOpacity = m.targetOpacity
	} else {
		m.currentOpacity += diff * transitionRate
	}
	return m.currentOpacity
}

// oddKernel normalizes a kernel size to the next odd value.
func oddKernel(n int) int {
	if n%2 == 0 {
		return n + 1
	}
	return n
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
