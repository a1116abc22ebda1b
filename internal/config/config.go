// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers file and environment on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9180".
	Addr string `koanf:"addr"`

	// CameraURL is the WebSocket endpoint of the frame capture process.
	CameraURL string `koanf:"camera_url"`

	// CameraWidth/CameraHeight/CameraFPS describe the requested capture.
	CameraWidth  int `koanf:"camera_width"`
	CameraHeight int `koanf:"camera_height"`
	CameraFPS    int `koanf:"camera_fps"`

	// CascadePath points at the binary face-detection cascade file.
	CascadePath string `koanf:"cascade_path"`

	// FaceConfidence is the minimum detection confidence kept.
	FaceConfidence float64 `koanf:"face_confidence"`

	// IoUThreshold controls duplicate-detection suppression.
	IoUThreshold float64 `koanf:"iou_threshold"`

	// MinFacesForAlert is the face count that triggers an alert.
	MinFacesForAlert int `koanf:"min_faces_for_alert"`

	// FrameSkip processes every nth captured frame.
	FrameSkip int `koanf:"frame_skip"`

	// LatencyCeilingMS is the advisory per-tick latency ceiling.
	LatencyCeilingMS float64 `koanf:"latency_ceiling_ms"`

	// EnableGaze turns the gaze alert rule on when a backend is present.
	EnableGaze bool `koanf:"enable_gaze"`

	// EnableBlur forwards alerts to the blur overlay.
	EnableBlur bool `koanf:"enable_blur"`

	// BlurIntensity is the overlay kernel size (normalized to odd).
	BlurIntensity int `koanf:"blur_intensity"`

	// BlurOpacity is the overlay opacity in [0,1].
	BlurOpacity float64 `koanf:"blur_opacity"`

	// EventLogPath is the append-only JSONL event sink file.
	EventLogPath string `koanf:"event_log_path"`

	// ExportDir receives timestamp-derived report exports.
	ExportDir string `koanf:"export_dir"`

	// PerfWindowSize bounds the rolling latency windows.
	PerfWindowSize int `koanf:"perf_window_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9180",
		CameraURL:        "ws://127.0.0.1:9181/frames",
		CameraWidth:      640,
		CameraHeight:     480,
		CameraFPS:        30,
		CascadePath:      "models/facefinder",
		FaceConfidence:   0.5,
		IoUThreshold:     0.3,
		MinFacesForAlert: 2,
		FrameSkip:        1,
		LatencyCeilingMS: 200,
		EnableGaze:       true,
		EnableBlur:       true,
		BlurIntensity:    25,
		BlurOpacity:      0.85,
		EventLogPath:     "logs/detection_events.jsonl",
		ExportDir:        "logs",
		PerfWindowSize:   30,
	}
}
