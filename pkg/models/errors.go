package models

import "errors"

var (
	ErrUnknownSignal       = errors.New("unknown signal")
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrInvalidRecord       = errors.New("invalid sensor record")
)
