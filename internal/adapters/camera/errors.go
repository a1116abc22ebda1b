package camera

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrOpenFailed = errors.New("camera open failed")
	ErrNotOpen    = errors.New("camera not open")
	ErrReadFailed = errors.New("frame read failed")
)
