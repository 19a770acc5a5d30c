package dashboard

import "errors"

var (
	errRefreshFailed = errors.New("dashboard refresh failed")
	ErrClosed        = errors.New("dashboard manager closed")
)
