package compositor

import "errors"

var (
	// ErrClosed is returned by operations on a closed compositor.
	ErrClosed = errors.New("compositor: closed")

	// ErrRunning is returned when Run is called while a frame loop is
	// already running.
	ErrRunning = errors.New("compositor: already running")
)
