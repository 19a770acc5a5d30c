package poller

import "errors"

var (
	errInvalidInterval = errors.New("poll interval must be positive")
	errNilTask         = errors.New("poll task is nil")
	errAlreadyStarted  = errors.New("poller already started")
	errStopped         = errors.New("poller stopped")
)
