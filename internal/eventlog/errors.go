package eventlog

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrExportFailed = errors.New("event log export failed")
	ErrSinkClosed   = errors.New("event sink closed")
)
