package testfeed

import "errors"

// ErrClosed is returned when a synthetic source is used after Close.
var ErrClosed = errors.New("synthetic source closed")
