package detect

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNoBackend    = errors.New("no face-detection backend available")
	ErrInvalidFrame = errors.New("invalid frame")
)
