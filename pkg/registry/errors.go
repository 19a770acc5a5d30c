package registry

import "errors"

var (
	ErrLoadFailed     = errors.New("failed to load registry")
	ErrRegisterFailed = errors.New("failed to register device")
)
