package app

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotRunning  = errors.New("system not running")
	ErrFrameRead   = errors.New("failed to read frame")
	ErrStartFailed = errors.New("failed to start system")
)
